package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"screw-inspection/domain/models"
	"screw-inspection/pkg/apperrors"
)

func seedCommand() *cobra.Command {
	var (
		password string
		team     string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the default admin, technician and operator users and the settings row",
		Long: "Seed is idempotent: users that already exist are left untouched and the " +
			"global settings row is only created when missing.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(password) < 8 {
				return fmt.Errorf("--password must be at least 8 characters")
			}

			rt, err := openRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx, cancel := commandContext(time.Minute)
			defer cancel()

			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}

			for _, role := range []models.Role{models.RoleAdmin, models.RoleTechnician, models.RoleOperator} {
				username := string(role)
				_, err := rt.users.GetByUsername(ctx, username)
				switch {
				case err == nil:
					fmt.Fprintf(cmd.OutOrStdout(), "user %s exists, skipped\n", username)
					continue
				case !errors.Is(err, apperrors.ErrNotFound):
					return err
				}

				user := &models.User{
					Username:     username,
					Email:        username + "@inspection.local",
					PasswordHash: string(hash),
					Team:         team,
					Role:         role,
					IsActive:     true,
				}
				if err := rt.users.Create(ctx, user); err != nil {
					return fmt.Errorf("failed to create %s: %w", username, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", username, user.ID)
			}

			if _, err := rt.settings.GetOrCreate(ctx); err != nil {
				return fmt.Errorf("failed to create settings: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "global settings ready")
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "changeme123", "password for the seeded users")
	cmd.Flags().StringVar(&team, "team", models.DefaultTeam, "team the seeded users belong to")
	return cmd
}
