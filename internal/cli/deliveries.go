package cli

import (
	"fmt"

	"github.com/food-delivery-platform/backend/internal/domain"
	"github.com/spf13/cobra"
)

func newDeliveriesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deliveries",
		Short: "Assign and track deliveries",
	}
	cmd.AddCommand(newDeliveriesAssignCmd(opts))
	cmd.AddCommand(newDeliveriesCompleteCmd(opts))
	cmd.AddCommand(newDeliveriesShowCmd(opts))
	cmd.AddCommand(newDeliveriesItineraryCmd(opts))
	cmd.AddCommand(newDeliveriesPendingCmd(opts))
	return cmd
}

func newDeliveriesAssignCmd(opts *rootOptions) *cobra.Command {
	var (
		driver string
		flow   string
	)

	cmd := &cobra.Command{
		Use:   "assign <order-id>...",
		Short: "Hand one or more orders to a driver",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			driverID, err := parseUUID(driver)
			if err != nil {
				return err
			}
			orderIDs, err := parseUUIDs(args)
			if err != nil {
				return err
			}
			delivery, err := opts.app.Deliveries.CreateAndAssignDelivery(opts.context(cmd),
				domain.AssignmentFlow(flow), orderIDs, driverID)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), delivery, func() string {
				return renderDeliveries([]*domain.Delivery{delivery})
			})
		},
	}
	cmd.Flags().StringVar(&driver, "driver", "", "driver id")
	cmd.Flags().StringVar(&flow, "flow", string(domain.FlowAdminDispatch), "driver_claim or admin_dispatch")
	_ = cmd.MarkFlagRequired("driver")
	return cmd
}

func newDeliveriesCompleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <delivery-id>",
		Short: "Mark a delivery as delivered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUUID(args[0])
			if err != nil {
				return err
			}
			delivery, err := opts.app.Deliveries.CompleteDelivery(opts.context(cmd), id)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), delivery, func() string {
				return renderDeliveries([]*domain.Delivery{delivery})
			})
		},
	}
}

func newDeliveriesShowCmd(opts *rootOptions) *cobra.Command {
	var driver bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a delivery, or every delivery of a driver with --driver",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUUID(args[0])
			if err != nil {
				return err
			}
			var deliveries []*domain.Delivery
			if driver {
				deliveries, err = opts.app.Deliveries.ListDeliveriesForDriver(opts.context(cmd), id)
			} else {
				var delivery *domain.Delivery
				delivery, err = opts.app.Deliveries.GetDeliveryDetails(opts.context(cmd), id)
				if delivery != nil {
					deliveries = []*domain.Delivery{delivery}
				}
			}
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), deliveries, func() string { return renderDeliveries(deliveries) })
		},
	}
	cmd.Flags().BoolVar(&driver, "driver", false, "treat the id as a driver id")
	return cmd
}

func newDeliveriesItineraryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "itinerary <driver-id>",
		Short: "Plan the route of a driver's delivery in progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUUID(args[0])
			if err != nil {
				return err
			}
			itinerary, err := opts.app.Deliveries.GetItinerary(opts.context(cmd), id)
			if err != nil {
				return err
			}
			if itinerary == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No delivery in progress")
				return nil
			}
			return opts.print(cmd.OutOrStdout(), itinerary, func() string { return renderItinerary(itinerary) })
		},
	}
}

func newDeliveriesPendingCmd(opts *rootOptions) *cobra.Command {
	var flow string

	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List orders a delivery can pick up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			orders, err := opts.app.Deliveries.ListAssignableOrders(opts.context(cmd), domain.AssignmentFlow(flow))
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), orders, func() string { return renderOrders(orders) })
		},
	}
	cmd.Flags().StringVar(&flow, "flow", string(domain.FlowDriverClaim), "driver_claim or admin_dispatch")
	return cmd
}
