package cli

import (
	"fmt"

	"github.com/food-delivery-platform/backend/internal/domain"
	"github.com/spf13/cobra"
)

func newBundlesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bundles",
		Short: "Manage bundles",
	}
	cmd.AddCommand(newBundlesListCmd(opts))
	cmd.AddCommand(newBundlesCreatePredefinedCmd(opts))
	cmd.AddCommand(newBundlesCreateDiscountedCmd(opts))
	cmd.AddCommand(newBundlesDeleteCmd(opts))
	return cmd
}

func newBundlesListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the bundles of the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bundles, err := opts.app.Catalog.ListBundles(opts.context(cmd))
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), bundles, func() string { return renderBundles(bundles) })
		},
	}
}

func newBundlesCreatePredefinedCmd(opts *rootOptions) *cobra.Command {
	var (
		name        string
		description string
		items       []string
		price       string
	)

	cmd := &cobra.Command{
		Use:   "create-predefined",
		Short: "Create a fixed-price bundle of at least two items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseUUIDs(items)
			if err != nil {
				return err
			}
			p, err := parseMoney(price)
			if err != nil {
				return err
			}
			bundle, err := opts.app.Catalog.CreatePredefinedBundle(opts.context(cmd), name, description, ids, p)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), bundle, func() string {
				return renderBundles([]domain.Bundle{bundle})
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "bundle name")
	cmd.Flags().StringVar(&description, "description", "", "bundle description")
	cmd.Flags().StringSliceVar(&items, "item", nil, "item id, repeat for each unit")
	cmd.Flags().StringVar(&price, "price", "", "bundle price")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func newBundlesCreateDiscountedCmd(opts *rootOptions) *cobra.Command {
	var (
		name        string
		description string
		types       []string
		discount    string
	)

	cmd := &cobra.Command{
		Use:   "create-discounted",
		Short: "Create a bundle that discounts one item of each required type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseMoney(discount)
			if err != nil {
				return err
			}
			bundle, err := opts.app.Catalog.CreateDiscountedBundle(opts.context(cmd), name, description, types, d)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), bundle, func() string {
				return renderBundles([]domain.Bundle{bundle})
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "bundle name")
	cmd.Flags().StringVar(&description, "description", "", "bundle description")
	cmd.Flags().StringSliceVar(&types, "type", nil, "required item type, repeat for each slot")
	cmd.Flags().StringVar(&discount, "discount", "", "discount as a fraction, e.g. 0.2")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("discount")
	return cmd
}

func newBundlesDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <bundle-id>",
		Short: "Remove a bundle from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUUID(args[0])
			if err != nil {
				return err
			}
			if err := opts.app.Catalog.DeleteBundle(opts.context(cmd), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Bundle %s deleted\n", id)
			return nil
		},
	}
}
