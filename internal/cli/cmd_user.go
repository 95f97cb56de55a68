package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/bamboobank/bamboo/internal/app"
	"github.com/spf13/cobra"
)

func newUserCommand(deps commandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Customer directory",
	}
	cmd.AddCommand(newUserAddCommand(deps), newUserListCommand(deps))
	return cmd
}

func newUserAddCommand(deps commandDeps) *cobra.Command {
	var req app.CreateUserRequest

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return usageErrorf("user add does not accept positional arguments")
			}
			if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Phone) == "" {
				return usageErrorf("user add requires --email and --phone")
			}

			return withLedger(cmd.Context(), deps, func(ctx context.Context, l *ledger) error {
				id, err := l.users.CreateUser(ctx, req)
				if err != nil {
					return err
				}
				out := map[string]any{"id": id, "email": req.Email}
				return emit(deps, out, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "user %d created (%s)\n", id, req.Email)
					return err
				})
			})
		},
	}

	cmd.Flags().StringVar(&req.LastName, "last-name", "", "Family name")
	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "Given name")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email address (unique)")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&req.Role, "role", app.RoleClient, "Role")
	cmd.Flags().StringVar(&req.Address, "address", "", "Postal address")
	cmd.Flags().StringVar(&req.City, "city", "", "City")
	cmd.Flags().StringVar(&req.Country, "country", "", "Country (defaults to ledger.default_country)")
	return cmd
}

func newUserListCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return usageErrorf("user ls does not accept positional arguments")
			}
			return withLedger(cmd.Context(), deps, func(ctx context.Context, l *ledger) error {
				users, err := l.users.ListUsers(ctx)
				if err != nil {
					return err
				}
				views := make([]userView, 0, len(users))
				for _, user := range users {
					views = append(views, toUserView(user))
				}
				return emit(deps, views, func(w io.Writer) error {
					for _, view := range views {
						if _, err := fmt.Fprintf(w, "id=%d name=%q email=%s phone=%s role=%s\n",
							view.ID, strings.TrimSpace(view.FirstName+" "+view.LastName), view.Email, view.Phone, view.Role); err != nil {
							return err
						}
					}
					return nil
				})
			})
		},
	}
}
