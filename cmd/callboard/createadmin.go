// AngelaMos | 2026
// createadmin.go

package main

import (
	"errors"
	"fmt"
	"net/mail"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/templates/callboard/internal/core"
	"github.com/carterperez-dev/templates/callboard/internal/user"
)

const minAdminPasswordLength = 8

func newCreateAdminCmd(opts *rootOptions) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "createadmin",
		Short: "Create an admin account, or promote an existing one",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateAdminInput(email, password); err != nil {
				return err
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			db, err := core.NewDatabase(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close() //nolint:errcheck // process exit

			hash, err := core.HashPassword(password)
			if err != nil {
				return err
			}

			svc := user.NewService(user.NewRepository(db.DB), setupLogger(cfg.Log))
			u, created, err := svc.EnsureAdmin(cmd.Context(), email, hash)
			if err != nil {
				return err
			}

			verb := "promoted"
			if created {
				verb = "created"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s admin %s (%s)\n", verb, u.Email, u.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "admin e-mail address")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	_ = cmd.MarkFlagRequired("email")    //nolint:errcheck // flag exists
	_ = cmd.MarkFlagRequired("password") //nolint:errcheck // flag exists

	return cmd
}

func validateAdminInput(email, password string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("invalid email %q: %w", email, err)
	}
	if len(password) < minAdminPasswordLength {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}
