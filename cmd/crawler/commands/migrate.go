package commands

import (
	"fmt"
	"strconv"

	"lkcrawl/internal/db"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manages the database schema.",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Applies every pending migration.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, appLogger, err := setup()
		if err != nil {
			return err
		}
		defer func() {
			_ = appLogger.Sync()
		}()

		version, err := db.Migrate(cfg.DatabaseURL())
		if err != nil {
			return err
		}
		appLogger.Info("schema migrated", zap.Uint("version", version))
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Reverts the given number of migrations, all of them when omitted.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps := 0
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return fmt.Errorf("steps must be a positive integer, got %q", args[0])
			}
			steps = n
		}

		cfg, appLogger, err := setup()
		if err != nil {
			return err
		}
		defer func() {
			_ = appLogger.Sync()
		}()

		version, err := db.Rollback(cfg.DatabaseURL(), steps)
		if err != nil {
			return err
		}
		appLogger.Info("schema reverted", zap.Uint("version", version))
		return nil
	},
}
