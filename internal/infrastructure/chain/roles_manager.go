package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"

	"github.com/mineralchain/roles-admin/internal/core/domain"
	"github.com/mineralchain/roles-admin/internal/infrastructure/chain/contract"
)

const defaultTxTimeout = 2 * time.Minute

// RolesManager is the ports.RoleRegistry backed by the deployed contract.
type RolesManager struct {
	abi      abi.ABI
	address  common.Address
	contract *bind.BoundContract
	backend  Backend
	opts     *bind.TransactOpts
	timeout  time.Duration
	logger   zerolog.Logger

	// sendMu serializes submission so concurrent operations on different
	// roles do not pick the same pending nonce.
	sendMu sync.Mutex
}

// NewRolesManager binds the contract at addr. opts may be nil, in which case
// the adapter is read-only and Invoke fails.
func NewRolesManager(addr common.Address, backend Backend, opts *bind.TransactOpts, timeout time.Duration, logger zerolog.Logger) (*RolesManager, error) {
	parsed, err := abi.JSON(strings.NewReader(contract.RolesManagerABI))
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = defaultTxTimeout
	}
	return &RolesManager{
		abi:      parsed,
		address:  addr,
		contract: bind.NewBoundContract(addr, parsed, backend, backend, backend),
		backend:  backend,
		opts:     opts,
		timeout:  timeout,
		logger:   logger,
	}, nil
}

// Invoke submits a state-changing call and waits for it to be mined.
func (m *RolesManager) Invoke(ctx context.Context, function string, args ...any) (*domain.TxResult, error) {
	if m.opts == nil {
		return nil, ErrNoOperatorKey
	}
	if _, ok := m.abi.Methods[function]; !ok {
		return nil, fmt.Errorf("unknown contract function %q", function)
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	auth := *m.opts
	auth.Context = ctx

	m.sendMu.Lock()
	tx, err := m.contract.Transact(&auth, function, args...)
	m.sendMu.Unlock()
	if err != nil {
		return nil, DecodeRevert(m.abi, err)
	}

	log := m.logger.With().Str("function", function).Str("tx", tx.Hash().Hex()).Logger()
	log.Debug().Msg("transaction submitted")

	receipt, err := bind.WaitMined(ctx, m.backend, tx)
	if err != nil {
		return nil, fmt.Errorf("wait for %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		log.Warn().Uint64("block", receipt.BlockNumber.Uint64()).Msg("transaction reverted")
		return nil, m.replayRevert(ctx, auth.From, tx, receipt.BlockNumber)
	}

	return &domain.TxResult{
		Hash:        tx.Hash().Hex(),
		BlockNumber: receipt.BlockNumber.Uint64(),
		GasUsed:     receipt.GasUsed,
	}, nil
}

// replayRevert re-executes a failed transaction as a call at its block to
// recover the revert data the receipt does not carry.
func (m *RolesManager) replayRevert(ctx context.Context, from common.Address, tx *types.Transaction, block *big.Int) error {
	msg := ethereum.CallMsg{
		From:  from,
		To:    tx.To(),
		Gas:   tx.Gas(),
		Value: tx.Value(),
		Data:  tx.Data(),
	}
	_, err := m.backend.CallContract(ctx, msg, block)
	if err == nil {
		return &domain.RemoteError{Err: ErrTxReverted}
	}
	decoded := DecodeRevert(m.abi, err)
	var re *domain.RemoteError
	if errors.As(decoded, &re) {
		return &domain.RemoteError{Code: re.Code, Err: fmt.Errorf("%w: %v", ErrTxReverted, err)}
	}
	return fmt.Errorf("%w: %v", ErrTxReverted, err)
}

func (m *RolesManager) call(ctx context.Context, method string, args ...any) ([]interface{}, error) {
	var out []interface{}
	err := m.contract.Call(&bind.CallOpts{Context: ctx}, &out, method, args...)
	if err != nil {
		return nil, DecodeRevert(m.abi, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: empty result", method)
	}
	return out, nil
}

// RoleMemberCount returns the number of holders of the role identified by id.
func (m *RolesManager) RoleMemberCount(ctx context.Context, id [32]byte) (uint64, error) {
	out, err := m.call(ctx, "getRoleMemberCount", id)
	if err != nil {
		return 0, err
	}
	n, ok := out[0].(*big.Int)
	if !ok {
		return 0, fmt.Errorf("getRoleMemberCount: unexpected result type %T", out[0])
	}
	if !n.IsUint64() {
		return 0, fmt.Errorf("getRoleMemberCount: count %s overflows", n)
	}
	return n.Uint64(), nil
}

func (m *RolesManager) HasAdminRole(ctx context.Context, address string) (bool, error) {
	return m.boolCall(ctx, "hasAdminRole", address)
}

func (m *RolesManager) HasRole(ctx context.Context, role domain.Role, address string) (bool, error) {
	if !role.Valid() {
		return false, fmt.Errorf("unknown role %q", role)
	}
	return m.boolCall(ctx, role.HasRoleFunction(), address)
}

func (m *RolesManager) boolCall(ctx context.Context, method, address string) (bool, error) {
	out, err := m.call(ctx, method, common.HexToAddress(address))
	if err != nil {
		return false, err
	}
	ok, isBool := out[0].(bool)
	if !isBool {
		return false, fmt.Errorf("%s: unexpected result type %T", method, out[0])
	}
	return ok, nil
}

// RolesForAddress lists the role names held by address.
func (m *RolesManager) RolesForAddress(ctx context.Context, address string) ([]string, error) {
	out, err := m.call(ctx, "getRolesForAddress", common.HexToAddress(address))
	if err != nil {
		return nil, err
	}
	roles, ok := out[0].([]string)
	if !ok {
		return nil, fmt.Errorf("getRolesForAddress: unexpected result type %T", out[0])
	}
	return roles, nil
}
