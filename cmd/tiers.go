package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/redealvo/rede-cli/internal/engine"
	"github.com/redealvo/rede-cli/internal/model"
	"github.com/redealvo/rede-cli/internal/snapshot"
)

var tiersCmd = &cobra.Command{
	Use:   "tiers",
	Short: "Patent tier counts for a reference month",
	RunE:  runTiers,
}

func init() {
	tiersCmd.Flags().String("month", "", "reference month YYYY-MM (default: current month)")
	rootCmd.AddCommand(tiersCmd)
}

func runTiers(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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
		return eris.Wrap(err, "tiers: fetch snapshot")
	}

	eng := engine.New(engine.DefaultConfig())
	entries := eng.Rank(snap.Stores, snap.Evaluations, snap.Thresholds, month, engine.Filters{})
	counts := engine.SummarizeTiers(entries)

	fmt.Printf("Month: %s  (%d stores ranked)\n\n", month, len(entries))
	for _, tier := range model.PatentTiers() {
		fmt.Printf("%-8s %d\n", tier, counts[tier])
	}
	return nil
}
