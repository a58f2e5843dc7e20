package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"

	"github.com/mineralchain/roles-admin/internal/core/ports"
	"github.com/mineralchain/roles-admin/internal/infrastructure/chain"
	"github.com/mineralchain/roles-admin/internal/pkg/config"
)

// chainDeps are the contract adapters shared by every command.
type chainDeps struct {
	client   *ethclient.Client
	registry *chain.RolesManager
	resolver ports.NameResolver
}

func (d *chainDeps) Close() {
	d.client.Close()
}

// dialChain connects to the node and binds both contracts. Without an
// operator key the registry is read-only and state-changing calls fail.
func dialChain(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*chainDeps, error) {
	client, err := chain.Dial(ctx, cfg.Chain.RPCURL, cfg.Chain.ChainID)
	if err != nil {
		return nil, err
	}

	opts, err := chain.NewTransactor(chain.OperatorKey{
		Key:        cfg.Chain.OperatorKey,
		KeyFile:    cfg.Chain.OperatorKeyFile,
		Passphrase: cfg.Chain.OperatorPassphrase,
	}, cfg.Chain.ChainID)
	switch {
	case errors.Is(err, chain.ErrNoOperatorKey):
		log.Warn().Msg("no operator key configured, role changes are disabled")
		opts = nil
	case err != nil:
		client.Close()
		return nil, err
	default:
		log.Info().Str("operator", opts.From.Hex()).Msg("operator key loaded")
	}

	registry, err := chain.NewRolesManager(
		common.HexToAddress(cfg.Chain.RolesManagerAddress),
		client, opts, cfg.Chain.TxTimeout,
		log.With().Str("component", "roles_manager").Logger(),
	)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("bind roles manager: %w", err)
	}

	names, err := chain.NewNameRegistry(common.HexToAddress(cfg.Chain.NameRegistryAddress), client)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("bind name registry: %w", err)
	}

	return &chainDeps{client: client, registry: registry, resolver: names}, nil
}
