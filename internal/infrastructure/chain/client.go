// Package chain adapts the RolesManager and name registry contracts to the
// core ports through go-ethereum's contract bindings.
package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Backend is everything the adapters need from a node connection.
// *ethclient.Client satisfies it.
type Backend interface {
	bind.ContractBackend
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	ChainID(ctx context.Context) (*big.Int, error)
}

// Dial connects to the JSON-RPC endpoint and checks that it serves the
// expected chain.
func Dial(ctx context.Context, rawurl string, chainID int64) (*ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, rawurl)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", rawurl, err)
	}
	id, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("chain id: %w", err)
	}
	if id.Int64() != chainID {
		client.Close()
		return nil, fmt.Errorf("chain id mismatch: node reports %s, configured %d", id, chainID)
	}
	return client, nil
}

// OperatorKey describes where the signing key comes from. Key is a hex
// private key; otherwise KeyFile and Passphrase point at an encrypted JSON
// keystore file.
type OperatorKey struct {
	Key        string
	KeyFile    string
	Passphrase string
}

// ErrNoOperatorKey is returned by NewTransactor when no key is configured.
var ErrNoOperatorKey = errors.New("no operator key configured")

// NewTransactor builds the signing options used for state-changing calls.
func NewTransactor(k OperatorKey, chainID int64) (*bind.TransactOpts, error) {
	id := big.NewInt(chainID)
	switch {
	case k.Key != "":
		key, err := parseKey(k.Key)
		if err != nil {
			return nil, err
		}
		return bind.NewKeyedTransactorWithChainID(key, id)
	case k.KeyFile != "":
		f, err := os.Open(k.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("open keyfile: %w", err)
		}
		defer f.Close()
		return bind.NewTransactorWithChainID(f, k.Passphrase, id)
	default:
		return nil, ErrNoOperatorKey
	}
}

func parseKey(hexKey string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse operator key: %w", err)
	}
	return key, nil
}
