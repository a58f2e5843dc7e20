package chain

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/mineralchain/roles-admin/internal/infrastructure/chain/contract"
)

// NameRegistry resolves human-readable names through the registry's
// getAddress(string) view. An unregistered name yields the zero address.
type NameRegistry struct {
	contract *bind.BoundContract
}

func NewNameRegistry(addr common.Address, backend bind.ContractCaller) (*NameRegistry, error) {
	parsed, err := abi.JSON(strings.NewReader(contract.NameRegistryABI))
	if err != nil {
		return nil, err
	}
	return &NameRegistry{
		contract: bind.NewBoundContract(addr, parsed, backend, nil, nil),
	}, nil
}

func (r *NameRegistry) ResolveName(ctx context.Context, name string) (string, error) {
	var out []interface{}
	if err := r.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getAddress", name); err != nil {
		return "", err
	}
	if len(out) == 0 {
		return "", fmt.Errorf("getAddress: empty result")
	}
	addr, ok := out[0].(common.Address)
	if !ok {
		return "", fmt.Errorf("getAddress: unexpected result type %T", out[0])
	}
	return addr.Hex(), nil
}
