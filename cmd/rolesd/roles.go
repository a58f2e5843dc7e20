package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mineralchain/roles-admin/internal/core/ports"
	"github.com/mineralchain/roles-admin/internal/core/service"
)

// cliActor is recorded as the actor of operations started from the command line.
func cliActor() string {
	if u := os.Getenv("USER"); u != "" {
		return "cli:" + u
	}
	return "cli"
}

// withRoleService runs fn against a RoleService talking straight to the chain.
// Mongo and Redis are not used: there is no audit trail and no cross-process lock.
func withRoleService(cmd *cobra.Command, fn func(ctx context.Context, svc *service.RoleService) error) error {
	cfg, log, err := commonRun()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := dialChain(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer deps.Close()

	svc := service.NewRoleService(deps.registry, deps.resolver, nil, log, service.RoleServiceOptions{
		NameSuffix: cfg.Chain.NameSuffix,
	})
	return fn(ctx, svc)
}

func assignCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "assign <role> <address-or-name>",
		Short: "Assign a role and wait for confirmation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRoleService(cmd, func(ctx context.Context, svc *service.RoleService) error {
				if _, err := svc.RefreshCounts(ctx); err != nil {
					return err
				}
				res, err := svc.Assign(ctx, ports.AssignInput{Role: args[0], Identifier: args[1], Actor: cliActor()})
				if err != nil {
					return err
				}
				printChange(cmd.OutOrStdout(), res)
				return nil
			})
		},
	}
}

func revokeCommand() *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "revoke <role> <address-or-name>",
		Short: "Revoke a role and wait for confirmation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRoleService(cmd, func(ctx context.Context, svc *service.RoleService) error {
				if _, err := svc.RefreshCounts(ctx); err != nil {
					return err
				}
				res, err := svc.Revoke(ctx, ports.RevokeInput{Role: args[0], Identifier: args[1], Reason: reason, Actor: cliActor()})
				if err != nil {
					return err
				}
				printChange(cmd.OutOrStdout(), res)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&reason, "reason", "r", "", "revocation reason recorded on chain (required)")
	return cmd
}

func countsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "counts",
		Short: "Print the member count of every role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRoleService(cmd, func(ctx context.Context, svc *service.RoleService) error {
				counts, err := svc.RefreshCounts(ctx)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ROLE\tMEMBERS")
				for _, c := range counts {
					fmt.Fprintf(w, "%s\t%d\n", c.Title, c.Count)
				}
				return w.Flush()
			})
		},
	}
}

func checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <address-or-name>",
		Short: "List the roles held by an address or name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRoleService(cmd, func(ctx context.Context, svc *service.RoleService) error {
				res, err := svc.CheckRoles(ctx, args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s (%s)\n", res.Identifier, res.Address)
				if len(res.Roles) == 0 {
					fmt.Fprintln(out, "  no roles")
					return nil
				}
				fmt.Fprintf(out, "  %s\n", strings.Join(res.Roles, ", "))
				return nil
			})
		},
	}
}

func printChange(w io.Writer, res *ports.RoleChangeResult) {
	fmt.Fprintln(w, res.Message)
	fmt.Fprintf(w, "  tx:    %s (block %d)\n", res.Tx.Hash, res.Tx.BlockNumber)
	fmt.Fprintf(w, "  count: %d\n", res.Count)
}
