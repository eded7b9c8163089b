package commands

import (
	"context"
	"fmt"
	"log"
	"os"

	"lkcrawl/internal/config"
	"lkcrawl/internal/db"
	"lkcrawl/internal/logger"
	"lkcrawl/internal/pkg/linkedin"
	"lkcrawl/internal/stocks"
	"lkcrawl/internal/tasks"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	showCookie bool
	offset     int
	limit      int
)

var rootCmd = &cobra.Command{
	Use:           "crawler",
	Short:         "crawler resolves listed stocks to companies and stores their staff profiles.",
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE:          runCrawl,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "settings.toml", "Path to config file")
	rootCmd.Flags().BoolVar(&showCookie, "cookie", false, "Just show cookie and exit")
	rootCmd.Flags().IntVar(&offset, "offset", 0, "Index of the first stock to crawl")
	rootCmd.Flags().IntVar(&limit, "limit", 0, "Number of stocks to crawl, 0 for all")
}

func ExecuteContext(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return err
}

// setup loads the configuration with a bootstrap logger and then builds the
// logger the configuration asks for.
func setup() (*config.Config, *zap.Logger, error) {
	initialLogger, err := logger.NewLogger("production", "info")
	if err != nil {
		log.Fatal("failed to initialize logger:", err)
	}
	defer func() {
		_ = initialLogger.Sync()
	}()

	initialLogger.Info("loading config", zap.String("path", configPath))
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		initialLogger.Error("invalid configuration", zap.Error(err))
		return nil, nil, err
	}

	appLogger, err := logger.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, appLogger, nil
}

func runCrawl(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, appLogger, err := setup()
	if err != nil {
		return err
	}
	defer func() {
		_ = appLogger.Sync()
	}()

	api, err := linkedin.Connect(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Error("failed to authenticate", zap.Error(err))
		return err
	}

	if showCookie {
		liAt, jsessionID := api.Cookies()
		printCookies(cmd.OutOrStdout(), liAt, jsessionID)
		return nil
	}

	version, err := db.Migrate(cfg.DatabaseURL())
	if err != nil {
		appLogger.Error("failed to migrate database", zap.Error(err))
		return err
	}
	appLogger.Info("database schema ready", zap.Uint("version", version))

	session, err := db.Open(ctx, cfg.DatabaseURL(), appLogger)
	if err != nil {
		appLogger.Error("failed to connect to database", zap.Error(err))
		return err
	}
	defer session.Close()

	list, err := stocks.LoadFile(cfg.StocksFile)
	if err != nil {
		appLogger.Error("failed to load stocks", zap.Error(err))
		return err
	}
	selected := stocks.Window(list, offset, limit)
	appLogger.Info("stocks loaded",
		zap.String("file", cfg.StocksFile),
		zap.Int("total", len(list)),
		zap.Int("selected", len(selected)),
	)

	processor := tasks.NewTaskProcessor(api, session, appLogger, cfg.CompanySearchLimit)
	report, err := processor.Run(ctx, selected)
	renderReport(cmd.OutOrStdout(), report)
	if err != nil {
		appLogger.Error("crawl aborted", zap.Error(err))
		return err
	}

	return nil
}
