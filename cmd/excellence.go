package main

import (
	"fmt"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/redealvo/rede-cli/internal/engine"
	"github.com/redealvo/rede-cli/internal/model"
	"github.com/redealvo/rede-cli/internal/snapshot"
)

var excellenceCmd = &cobra.Command{
	Use:   "excellence",
	Short: "Best and worst performer per pillar, grouped by franchisee",
	Long: `For each franchise owner, show the best and worst scoring store on every
pillar. Only stores with a positive score on a pillar qualify; a group with
no data on a pillar shows a dash.

  excellence --month 2025-07 --from 2025-07-01 --to 2025-07-31`,
	RunE: runExcellence,
}

func init() {
	f := excellenceCmd.Flags()
	f.String("month", "", "reference month YYYY-MM (default: current month)")
	f.String("from", "", "window start YYYY-MM-DD (default: open)")
	f.String("to", "", "window end YYYY-MM-DD (default: open)")

	rootCmd.AddCommand(excellenceCmd)
}

func runExcellence(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	month, _ := cmd.Flags().GetString("month")
	if month == "" {
		month = currentMonth()
	}
	if err := validateMonth(month); err != nil {
		return err
	}

	window, err := parseWindow(cmd)
	if err != nil {
		return err
	}

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	snap, err := snapshot.Fetch(ctx, st)
	if err != nil {
		return eris.Wrap(err, "excellence: fetch snapshot")
	}

	eng := engine.New(engine.DefaultConfig())
	groups := eng.BestWorstByGroup(snap.Stores, snap.Evaluations, month, window)

	printExcellence(groups)
	return nil
}

func parseWindow(cmd *cobra.Command) (engine.DateWindow, error) {
	var w engine.DateWindow

	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")

	if from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return w, eris.Wrapf(err, "excellence: invalid --from %q", from)
		}
		w.From = t
	}
	if to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return w, eris.Wrapf(err, "excellence: invalid --to %q", to)
		}
		// Include the whole final day.
		w.To = t.Add(24*time.Hour - time.Nanosecond)
	}
	return w, nil
}

func printExcellence(groups map[string]map[string]engine.PillarExtremes) {
	if len(groups) == 0 {
		fmt.Println("No stores found.")
		return
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Printf("%s\n", name)
		for _, pillar := range model.Pillars() {
			ex := groups[name][pillar]
			fmt.Printf("  %-12s best: %-35s worst: %s\n",
				pillar, standingLabel(ex.Best), standingLabel(ex.Worst))
		}
		fmt.Println()
	}
}

func standingLabel(s *engine.PillarStanding) string {
	if s == nil {
		return "-"
	}
	return fmt.Sprintf("%s (%d)", s.Name, s.Score)
}
