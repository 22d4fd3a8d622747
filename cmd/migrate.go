package cmd

import (
	"github.com/spf13/cobra"

	"github.com/meinhoongagan/clinic-app/db"
	"github.com/meinhoongagan/clinic-app/services"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if err := cfg.RequireDatabase(); err != nil {
				return err
			}
			gdb, err := db.Open(cfg.DatabaseURL, log)
			if err != nil {
				return err
			}
			if err := db.Migrate(gdb); err != nil {
				return err
			}
			log.Info("migrations applied")
			return nil
		},
	}
}

func createAdminCmd() *cobra.Command {
	var in services.ProfileInput
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Provision an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			store, err := openStore(cfg, log, false)
			if err != nil {
				return err
			}
			svc := services.New(store, log, services.Options{})
			admin, err := svc.Accounts.CreateAdmin(cmd.Context(), in)
			if err != nil {
				return err
			}
			cmd.Printf("admin %q created (user id %d)\n", in.Username, admin.UserID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Username, "username", "", "Login name")
	cmd.Flags().StringVar(&in.Password, "password", "", "Password (at least 6 characters)")
	cmd.Flags().StringVar(&in.FullName, "full-name", "", "Display name")
	cmd.Flags().StringVar(&in.Email, "email", "", "Email address")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
