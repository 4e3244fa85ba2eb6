package cli

import (
	"fmt"

	"github.com/food-delivery-platform/backend/internal/domain"
	"github.com/spf13/cobra"
)

func newOrdersCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Build, validate and inspect orders",
	}
	cmd.AddCommand(newOrdersCreateCmd(opts))
	cmd.AddCommand(newOrdersAddBundleCmd(opts))
	cmd.AddCommand(newOrdersAddItemCmd(opts))
	cmd.AddCommand(newOrdersValidateCmd(opts))
	cmd.AddCommand(newOrdersCancelCmd(opts))
	cmd.AddCommand(newOrdersShowCmd(opts))
	return cmd
}

func newOrdersCreateCmd(opts *rootOptions) *cobra.Command {
	var (
		customer string
		address  domain.Address
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Open an empty order for a customer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			customerID, err := parseUUID(customer)
			if err != nil {
				return err
			}
			ctx := opts.context(cmd)
			resolved, err := opts.app.Addresses.GetOrCreate(ctx, address)
			if err != nil {
				return err
			}
			order, err := opts.app.Orders.CreateOrder(ctx, customerID, resolved.ID)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), order, func() string { return renderOrder(order) })
		},
	}
	cmd.Flags().StringVar(&customer, "customer", "", "customer id")
	cmd.Flags().StringVar(&address.City, "city", "", "delivery city")
	cmd.Flags().StringVar(&address.PostalCode, "postal-code", "", "delivery postal code")
	cmd.Flags().StringVar(&address.StreetName, "street", "", "delivery street name")
	cmd.Flags().StringVar(&address.StreetNumber, "number", "", "delivery street number")
	cmd.Flags().StringVar(&address.ExtraInfo, "extra", "", "floor, door code...")
	_ = cmd.MarkFlagRequired("customer")
	return cmd
}

func newOrdersAddBundleCmd(opts *rootOptions) *cobra.Command {
	var selections []string

	cmd := &cobra.Command{
		Use:   "add-bundle <order-id> <bundle-id>",
		Short: "Add a catalog bundle to a pending order",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseUUIDs(args)
			if err != nil {
				return err
			}
			selected, err := parseUUIDs(selections)
			if err != nil {
				return err
			}
			order, err := opts.app.Orders.AddBundleToOrder(opts.context(cmd), ids[0], ids[1], selected)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), order, func() string { return renderOrder(order) })
		},
	}
	cmd.Flags().StringSliceVar(&selections, "select", nil, "item id chosen for a discounted bundle slot")
	return cmd
}

func newOrdersAddItemCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add-item <order-id> <item-id>",
		Short: "Add a single item to a pending order",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseUUIDs(args)
			if err != nil {
				return err
			}
			order, err := opts.app.Orders.AddItemToOrder(opts.context(cmd), ids[0], ids[1])
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), order, func() string { return renderOrder(order) })
		},
	}
}

func newOrdersValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <order-id>",
		Short: "Commit stock for a pending order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUUID(args[0])
			if err != nil {
				return err
			}
			order, err := opts.app.Orders.ValidateOrder(opts.context(cmd), id)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), order, func() string { return renderOrder(order) })
		},
	}
}

func newOrdersCancelCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <order-id>",
		Short: "Cancel a pending order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUUID(args[0])
			if err != nil {
				return err
			}
			if err := opts.app.Orders.CancelOrder(opts.context(cmd), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Order %s cancelled\n", id)
			return nil
		},
	}
}

func newOrdersShowCmd(opts *rootOptions) *cobra.Command {
	var customer bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show an order, or every order of a customer with --customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUUID(args[0])
			if err != nil {
				return err
			}
			if customer {
				orders, err := opts.app.Orders.ListOrdersForCustomer(opts.context(cmd), id)
				if err != nil {
					return err
				}
				return opts.print(cmd.OutOrStdout(), orders, func() string { return renderOrders(orders) })
			}
			order, err := opts.app.Orders.GetOrderDetails(opts.context(cmd), id)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), order, func() string { return renderOrder(order) })
		},
	}
	cmd.Flags().BoolVar(&customer, "customer", false, "treat the id as a customer id")
	return cmd
}
