package main

import (
	"fmt"

	"github.com/arzan03/OnboardGate/internal/config"
	"github.com/arzan03/OnboardGate/internal/logging"
	"github.com/arzan03/OnboardGate/internal/server"
	"github.com/arzan03/OnboardGate/internal/services"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Loads the default questionnaire and recreates the admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if err := checkSeedBackend(cfg); err != nil {
			return err
		}
		log := logging.New(cfg.LogLevel, cfg.LogFormat)

		email, _ := cmd.Flags().GetString("admin-email")
		if email == "" {
			email = cfg.Admin.Email
		}
		password, _ := cmd.Flags().GetString("admin-password")
		if password == "" {
			password = cfg.Admin.Password
		}

		ctx := cmd.Context()
		stores, err := server.OpenStores(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer stores.Close(ctx)

		admin, err := services.Seed(ctx, stores.Users, stores.Questions, email, password)
		if err != nil {
			return err
		}

		log.Info().
			Str("admin", admin.Email).
			Int("questions", len(services.DefaultQuestions)).
			Msg("seed complete")
		return nil
	},
}

// checkSeedBackend rejects backends that do not outlive the process.
func checkSeedBackend(cfg config.Config) error {
	if cfg.StoreBackend == config.BackendMemory {
		return fmt.Errorf("seed needs a persistent store: STORE_BACKEND=%s is seeded on every serve start", config.BackendMemory)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().String("admin-email", "", "administrator email (default ADMIN_EMAIL)")
	seedCmd.Flags().String("admin-password", "", "administrator password (default ADMIN_PASSWORD)")
}
