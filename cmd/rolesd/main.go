// rolesd administers supply-chain roles on the RolesManager contract.
//
// Usage:
//
//	rolesd serve
//	rolesd assign <role> <identifier>
//	rolesd revoke <role> <identifier> --reason <text>
//	rolesd counts
//	rolesd check <identifier>
//
// All settings come from the environment; see internal/pkg/config.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/mineralchain/roles-admin/internal/pkg/config"
	"github.com/mineralchain/roles-admin/pkg/logger"
)

const programName = "rolesd"

var globalFlags = struct {
	debug bool
}{}

// commonRun loads configuration and initialises the logger and GOMAXPROCS.
func commonRun() (*config.Config, zerolog.Logger, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("invalid configuration: %w", err)
	}

	level := cfg.LogLevel
	if globalFlags.debug {
		level = "debug"
	}
	log := logger.Init(logger.Options{
		Level:   level,
		Pretty:  cfg.IsDevelopment(),
		Service: programName,
	})

	// Toss the undo func; the process owns GOMAXPROCS for its lifetime.
	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, v ...any) {
		log.Info().Msgf(format, v...)
	})); err != nil {
		return nil, log, fmt.Errorf("set GOMAXPROCS: %w", err)
	}
	return cfg, log, nil
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Administer supply-chain roles on the RolesManager contract",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	// Global flags
	rootCmd.PersistentFlags().
		BoolVarP(&globalFlags.debug, "debug", "D", false, "enable debug logging")

	// Subcommands
	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(assignCommand())
	rootCmd.AddCommand(revokeCommand())
	rootCmd.AddCommand(countsCommand())
	rootCmd.AddCommand(checkCommand())
	return rootCmd
}

// @title                       Mineral Roles Admin API
// @version                     1.0
// @description                 Assigns and revokes supply-chain roles on the RolesManager contract.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	if err := newRootCommand().Execute(); err != nil {
		// cobra has already printed the error
		os.Exit(1)
	}
}
