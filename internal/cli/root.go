// Package cli holds the foodctl commands. They drive the same services as the
// HTTP API, in process, against the configured store.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/food-delivery-platform/backend/internal/app"
	"github.com/food-delivery-platform/backend/internal/config"
	"github.com/spf13/cobra"
)

var version = "dev"

type rootOptions struct {
	app        *app.App
	owned      bool
	jsonOutput bool
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "foodctl",
		Short:         "Operate the food delivery backend",
		Long:          "foodctl manages the catalog, orders, deliveries and users of the food delivery backend.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.app != nil {
				return nil
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a, err := app.New(cfg, app.NewLogger(cfg.Log))
			if err != nil {
				return fmt.Errorf("starting backend: %w", err)
			}
			opts.app = a
			opts.owned = true
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.owned {
				return opts.app.Close()
			}
			return nil
		},
	}
	cmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "print JSON instead of tables")

	cmd.AddCommand(newItemsCmd(opts))
	cmd.AddCommand(newBundlesCmd(opts))
	cmd.AddCommand(newOrdersCmd(opts))
	cmd.AddCommand(newDeliveriesCmd(opts))
	cmd.AddCommand(newUsersCmd(opts))
	cmd.AddCommand(newMigrateCmd())
	return cmd
}

// NewRootCmdForTest returns the root command bound to an existing backend.
func NewRootCmdForTest(a *app.App) *cobra.Command {
	return newRootCmd(&rootOptions{app: a})
}

func Execute() error {
	return newRootCmd(&rootOptions{}).Execute()
}

func (o *rootOptions) context(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// print writes v as indented JSON with --json, or the table otherwise.
func (o *rootOptions) print(w io.Writer, v interface{}, table func() string) error {
	if o.jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(w, table())
	return err
}
