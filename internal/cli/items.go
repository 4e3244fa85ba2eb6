package cli

import (
	"fmt"

	"github.com/food-delivery-platform/backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newItemsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Manage catalog items",
	}
	cmd.AddCommand(newItemsListCmd(opts))
	cmd.AddCommand(newItemsCreateCmd(opts))
	cmd.AddCommand(newItemsUpdateCmd(opts))
	cmd.AddCommand(newItemsDeleteCmd(opts))
	return cmd
}

func newItemsListCmd(opts *rootOptions) *cobra.Command {
	var itemType string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items, optionally of one type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var t domain.ItemType
			if itemType != "" {
				parsed, err := domain.ParseItemType(itemType)
				if err != nil {
					return err
				}
				t = parsed
			}
			items, err := opts.app.Catalog.ListItems(opts.context(cmd), t)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), items, func() string { return renderItems(items) })
		},
	}
	cmd.Flags().StringVar(&itemType, "type", "", "starter, main, side, drink or dessert")
	return cmd
}

func newItemsCreateCmd(opts *rootOptions) *cobra.Command {
	var (
		name        string
		description string
		itemType    string
		price       string
		stock       int
		unavailable bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add an item to the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := domain.ParseItemType(itemType)
			if err != nil {
				return err
			}
			p, err := parseMoney(price)
			if err != nil {
				return err
			}
			item, err := opts.app.Catalog.CreateItem(opts.context(cmd), domain.NewItem{
				Name:         name,
				Description:  description,
				Price:        p,
				Stock:        stock,
				Availability: stock > 0 && !unavailable,
				Type:         t,
			})
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), item, func() string { return renderItems([]*domain.Item{item}) })
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "item name")
	cmd.Flags().StringVar(&description, "description", "", "item description")
	cmd.Flags().StringVar(&itemType, "type", "", "starter, main, side, drink or dessert")
	cmd.Flags().StringVar(&price, "price", "", "unit price, e.g. 4.50")
	cmd.Flags().IntVar(&stock, "stock", 0, "units in stock")
	cmd.Flags().BoolVar(&unavailable, "unavailable", false, "list the item as unavailable")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func newItemsUpdateCmd(opts *rootOptions) *cobra.Command {
	var (
		name        string
		description string
		itemType    string
		price       string
		stock       int
		available   bool
	)

	cmd := &cobra.Command{
		Use:   "update <item-id>",
		Short: "Change the fields given as flags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUUID(args[0])
			if err != nil {
				return err
			}

			var patch domain.ItemPatch
			flags := cmd.Flags()
			if flags.Changed("name") {
				patch.Name = &name
			}
			if flags.Changed("description") {
				patch.Description = &description
			}
			if flags.Changed("type") {
				t, err := domain.ParseItemType(itemType)
				if err != nil {
					return err
				}
				patch.Type = &t
			}
			if flags.Changed("price") {
				p, err := parseMoney(price)
				if err != nil {
					return err
				}
				patch.Price = &p
			}
			if flags.Changed("stock") {
				patch.Stock = &stock
			}
			if flags.Changed("available") {
				patch.Availability = &available
			}

			item, err := opts.app.Catalog.UpdateItem(opts.context(cmd), id, patch)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), item, func() string { return renderItems([]*domain.Item{item}) })
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "item name")
	cmd.Flags().StringVar(&description, "description", "", "item description")
	cmd.Flags().StringVar(&itemType, "type", "", "starter, main, side, drink or dessert")
	cmd.Flags().StringVar(&price, "price", "", "unit price")
	cmd.Flags().IntVar(&stock, "stock", 0, "units in stock")
	cmd.Flags().BoolVar(&available, "available", false, "availability")
	return cmd
}

func newItemsDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <item-id>",
		Short: "Remove an item from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUUID(args[0])
			if err != nil {
				return err
			}
			if err := opts.app.Catalog.DeleteItem(opts.context(cmd), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Item %s deleted\n", id)
			return nil
		},
	}
}

func parseUUID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, domain.InvalidArgumentf("invalid id %q", s)
	}
	return id, nil
}

func parseUUIDs(values []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := parseUUID(v)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseMoney(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, domain.InvalidArgumentf("invalid amount %q", s)
	}
	return d, nil
}
