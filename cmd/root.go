package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/redealvo/rede-cli/internal/config"
	"github.com/redealvo/rede-cli/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "rede-cli",
	Short: "Performance scoring and ranking for the store network",
	Long:  "Scores each store across KPI plans and pillar evaluations, ranks the network, and serves the dashboard API.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// openStore connects to the configured backend and runs migrations so every
// command sees the full schema.
func openStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

// currentMonth is the default reference month for scoring commands.
func currentMonth() string {
	return time.Now().Format("2006-01")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
