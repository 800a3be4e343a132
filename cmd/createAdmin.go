package cmd

import (
	"context"
	"errors"
	"time"

	"civic-issues-be/services"
	"civic-issues-be/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	adminName     string
	adminEmail    string
	adminPassword string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create the initial super administrator",
	Long: `Create a super_admin account if no account with that email exists yet.
Running it again is harmless.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if len(adminPassword) < 6 {
			return errors.New("password must be at least 6 characters")
		}
		cfg, log, err := loadRuntime()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		st, err := openStores(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer st.close(context.Background())

		tokens, err := utils.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
		if err != nil {
			return err
		}
		created, err := services.NewAuthService(st.admins, tokens, log).
			Bootstrap(ctx, adminName, adminEmail, adminPassword)
		if err != nil {
			return err
		}
		if created {
			log.Info("admin created", zap.String("email", adminEmail))
		} else {
			log.Info("admin already exists", zap.String("email", adminEmail))
		}
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminName, "name", "System Administrator", "display name")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "admin@civic.gov", "login email")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "login password (required)")
	_ = createAdminCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(createAdminCmd)
}
