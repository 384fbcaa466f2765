// seed.go - Database maintenance commands: seed and create-admin

package cmd

import (
	"fmt"

	"go-market-backend/services"

	"github.com/spf13/cobra"
)

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default admin and the sample catalog",
		Long:  "Creates the admin from ADMIN_EMAIL/ADMIN_PASSWORD and inserts sample products when the catalog is empty.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log := loadConfig(cmd)
			a, err := newApp(cfg, log, nil)
			if err != nil {
				return err
			}
			defer a.close()

			store, err := a.db.EnsureReady(cmd.Context())
			if err != nil {
				return err
			}

			b := a.bootstrapper(a.defaultAdmin(), true)
			admin, created, err := b.EnsureAdmin(cmd.Context(), store)
			if err != nil {
				return err
			}
			n, err := b.SeedProducts(cmd.Context(), store)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "admin %s (created: %t), %d sample products inserted\n", admin.Email, created, n)
			return nil
		},
	}
}

func newCreateAdminCommand() *cobra.Command {
	var account services.AdminAccount

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log := loadConfig(cmd)
			a, err := newApp(cfg, log, nil)
			if err != nil {
				return err
			}
			defer a.close()

			store, err := a.db.EnsureReady(cmd.Context())
			if err != nil {
				return err
			}

			user, created, err := a.bootstrapper(account, false).EnsureAdmin(cmd.Context(), store)
			if err != nil {
				return err
			}
			if !created {
				fmt.Fprintf(cmd.OutOrStdout(), "account %s already exists (role: %s)\n", user.Email, user.Role)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s created\n", user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&account.Email, "email", "", "Admin email")
	cmd.Flags().StringVar(&account.Password, "password", "", "Admin password")
	cmd.Flags().StringVar(&account.Name, "name", "Admin User", "Admin display name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
