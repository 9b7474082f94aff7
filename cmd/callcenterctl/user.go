package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/repository"
	"github.com/spec-kit/callcenter-service/internal/service"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage dashboard accounts",
	}

	var name, email, password, role string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an agent or supervisor account",
		Long: `Create an account directly in the database.

Supervisors can only be provisioned here; public registration always yields agents.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			users := repository.NewUserRepository(rt.pg.PoolHandle())
			user, err := service.NewAuthService(rt.cfg.Auth, users).
				CreateUser(cmd.Context(), name, email, password, domain.Role(role))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s %q (id %d)\n", user.Role, user.Email, user.ID)
			return nil
		},
	}
	create.Flags().StringVar(&name, "name", "", "display name (required)")
	create.Flags().StringVar(&email, "email", "", "login email (required)")
	create.Flags().StringVar(&password, "password", "", "initial password (required)")
	create.Flags().StringVar(&role, "role", string(domain.RoleAgent), "agent or supervisor")
	_ = create.MarkFlagRequired("name")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("password")

	cmd.AddCommand(create)
	return cmd
}
