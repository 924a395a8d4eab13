package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/redealvo/rede-cli/internal/engine"
	"github.com/redealvo/rede-cli/internal/model"
	"github.com/redealvo/rede-cli/internal/snapshot"
)

var scoreCmd = &cobra.Command{
	Use:   "score <store-id>",
	Short: "Break down one store's score for a month",
	Long: `Print the full scoring breakdown for a single store: per-KPI achievement
and weight, the weighted Performance score, every pillar score, the composite
and the resulting patent.

Examples:
  # Current month
  score 1b4e28ba-2fa1-11d2-883f-0016d3cca427

  # A specific month
  score 1b4e28ba-2fa1-11d2-883f-0016d3cca427 --month 2025-07`,
	Args: cobra.ExactArgs(1),
	RunE: runScoreStore,
}

func init() {
	scoreCmd.Flags().String("month", "", "reference month YYYY-MM (default: current month)")
	rootCmd.AddCommand(scoreCmd)
}

func runScoreStore(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storeID := args[0]
	month, _ := cmd.Flags().GetString("month")
	if month == "" {
		month = currentMonth()
	}
	if err := validateMonth(month); err != nil {
		return err
	}

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	snap, err := snapshot.Fetch(ctx, st)
	if err != nil {
		return eris.Wrap(err, "score: fetch snapshot")
	}

	var target *model.Store
	for i := range snap.Stores {
		if snap.Stores[i].ID == storeID {
			target = &snap.Stores[i]
			break
		}
	}
	if target == nil {
		return eris.Errorf("score: store %q not found", storeID)
	}

	eng := engine.New(engine.DefaultConfig())
	result := eng.ScoreStore(*target, snap.Evaluations, month)

	zap.L().Debug("store scored",
		zap.String("store_id", storeID),
		zap.String("month", month),
		zap.Int("composite", result.Composite),
	)

	printStoreScore(target, result, snap.Thresholds, month)
	return nil
}

func printStoreScore(st *model.Store, result engine.StoreScore, t model.PatentThresholds, month string) {
	fmt.Printf("Store:      %s\n", st.Name)
	fmt.Printf("ID:         %s\n", st.ID)
	fmt.Printf("Franchisee: %s\n", st.FranchiseeLabel())
	if st.Supervisor != "" {
		fmt.Printf("Supervisor: %s\n", st.Supervisor)
	}
	fmt.Printf("Month:      %s\n", month)

	goals := st.Goals.Month(month)
	results := st.Results.Month(month)
	weights := st.Weights.Month(month)

	fmt.Println("\nKPIs:")
	for _, kpi := range engine.DefaultConfig().KPIs {
		goal := goals[kpi]
		if goal <= 0 {
			fmt.Printf("  %-15s (no goal)\n", kpi)
			continue
		}
		a := engine.ScoreKPI(goal, results[kpi], weights[kpi])
		fmt.Printf("  %-15s goal %.2f  result %.2f  achievement %.1f%%  weight %.0f%%\n",
			kpi, goal, results[kpi], a.AchievementPct, weights[kpi])
	}

	fmt.Println("\nPillars:")
	for _, pillar := range model.Pillars() {
		fmt.Printf("  %-12s %d\n", pillar, result.Scores[pillar])
	}

	fmt.Printf("\nComposite: %d\n", result.Composite)
	fmt.Printf("Patent:    %s\n", engine.Classify(float64(result.Composite), t))
	if !result.HasData {
		fmt.Println("\nNote: this store has no KPI plan and no evaluations for the month; it is excluded from the ranking.")
	}
}
