package cli

import (
	"github.com/food-delivery-platform/backend/internal/domain"
	"github.com/spf13/cobra"
)

func newUsersCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage customers, drivers and admins",
	}
	cmd.AddCommand(newUsersRegisterCmd(opts))
	cmd.AddCommand(newUsersListCmd(opts))
	return cmd
}

func newUsersRegisterCmd(opts *rootOptions) *cobra.Command {
	var (
		reg      domain.Registration
		userType string
		customer domain.CustomerProfile
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a user account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg.Type = domain.UserType(userType)
			if reg.Type == domain.UserTypeCustomer {
				reg.Customer = &customer
			}
			user, err := opts.app.Users.Register(opts.context(cmd), reg)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), user, func() string { return renderUsers([]*domain.User{user}) })
		},
	}
	cmd.Flags().StringVar(&reg.Username, "username", "", "login name")
	cmd.Flags().StringVar(&reg.Password, "password", "", "password")
	cmd.Flags().StringVar(&userType, "type", string(domain.UserTypeCustomer), "customer, driver or admin")
	cmd.Flags().StringVar(&customer.FirstName, "first-name", "", "customer first name")
	cmd.Flags().StringVar(&customer.LastName, "last-name", "", "customer last name")
	cmd.Flags().StringVar(&customer.Email, "email", "", "customer email")
	cmd.Flags().StringVar(&customer.Phone, "phone", "", "customer phone")
	cmd.Flags().StringVar(&reg.VehicleType, "vehicle", "", "driver vehicle type")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newUsersListCmd(opts *rootOptions) *cobra.Command {
	var userType string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users, optionally of one type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := opts.app.Users.ListUsers(opts.context(cmd), domain.UserType(userType))
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), users, func() string { return renderUsers(users) })
		},
	}
	cmd.Flags().StringVar(&userType, "type", "", "customer, driver or admin")
	return cmd
}
