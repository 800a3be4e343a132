package cmd

import (
	"context"
	"fmt"
	"os"

	"civic-issues-be/config"
	"civic-issues-be/repository"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "civic-issues",
	Short: "Civic issue reporting API",
	Long: `Backend for citizens reporting municipal problems and for staff who
triage them. Configuration is read from the environment and an optional
.env file.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadRuntime reads the configuration and builds the shared logger.
func loadRuntime() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log, err := config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	return cfg, log, nil
}

type stores struct {
	issues repository.IssueStore
	admins repository.AdminStore
	close  func(context.Context)
}

// openStores picks the persistence backend named by STORE_DRIVER.
func openStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*stores, error) {
	if cfg.StoreDriver == config.StoreMemory {
		log.Warn("using in-memory store, data is lost on restart")
		return &stores{
			issues: repository.NewMemoryIssueStore(),
			admins: repository.NewMemoryAdminStore(),
			close:  func(context.Context) {},
		}, nil
	}

	client, db, err := config.ConnectDB(ctx, cfg.MongoURI, cfg.MongoDatabase, log)
	if err != nil {
		return nil, err
	}
	issues := repository.NewMongoIssueStore(db)
	admins := repository.NewMongoAdminStore(db)
	if err := issues.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("issue indexes: %w", err)
	}
	if err := admins.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("admin indexes: %w", err)
	}

	return &stores{
		issues: issues,
		admins: admins,
		close: func(ctx context.Context) {
			if err := client.Disconnect(ctx); err != nil {
				log.Error("mongo disconnect", zap.Error(err))
			}
		},
	}, nil
}
