package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/redealvo/rede-cli/internal/engine"
	"github.com/redealvo/rede-cli/internal/model"
	"github.com/redealvo/rede-cli/internal/snapshot"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank the network by composite performance score",
	Long: `Score every store for a reference month and print the network ranking.

Stores without a KPI plan for the month and without any registered evaluation
are excluded. Filters match the store name and supervisor with accent folding,
so "sao goncalo" finds "São Gonçalo".

Examples:
  # Rank the whole network for the current month
  rank

  # Rank July 2025, company-owned stores only
  rank --month 2025-07 --franchisee "Loja Própria"

  # Export the ranking to CSV
  rank --format csv --output ranking.csv`,
	RunE: runRank,
}

func init() {
	f := rankCmd.Flags()
	f.String("month", "", "reference month YYYY-MM (default: current month)")
	f.String("query", "", "filter by store name or supervisor (accent-insensitive)")
	f.String("franchisee", "", "filter by franchise owner (exact match)")
	f.String("format", "table", "output format: table or csv")
	f.String("output", "", "output file path (default: stdout)")
	f.Bool("summary", false, "print the patent tier breakdown after the ranking")

	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := zap.L().With(zap.String("command", "rank"))

	month, _ := cmd.Flags().GetString("month")
	query, _ := cmd.Flags().GetString("query")
	franchisee, _ := cmd.Flags().GetString("franchisee")
	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")
	summary, _ := cmd.Flags().GetBool("summary")

	if month == "" {
		month = currentMonth()
	}
	if err := validateMonth(month); err != nil {
		return err
	}
	if format != "table" && format != "csv" {
		return eris.Errorf("rank: --format must be table or csv (got %q)", format)
	}

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	snap, err := snapshot.Fetch(ctx, st)
	if err != nil {
		return eris.Wrap(err, "rank: fetch snapshot")
	}

	eng := engine.New(engine.DefaultConfig())
	entries := eng.Rank(snap.Stores, snap.Evaluations, snap.Thresholds, month, engine.Filters{
		Query:      query,
		Franchisee: franchisee,
	})

	log.Info("ranking computed",
		zap.String("month", month),
		zap.Int("stores", len(snap.Stores)),
		zap.Int("ranked", len(entries)),
	)

	if err := outputRanking(entries, format, outputPath); err != nil {
		return err
	}

	if summary {
		printTierSummary(engine.SummarizeTiers(entries))
	}

	return nil
}

func validateMonth(month string) error {
	if len(month) != 7 || month[4] != '-' {
		return eris.Errorf("invalid month %q (want YYYY-MM)", month)
	}
	if _, err := strconv.Atoi(month[:4]); err != nil {
		return eris.Errorf("invalid month %q (want YYYY-MM)", month)
	}
	mm, err := strconv.Atoi(month[5:])
	if err != nil || mm < 1 || mm > 12 {
		return eris.Errorf("invalid month %q (want YYYY-MM)", month)
	}
	return nil
}

func outputRanking(entries []engine.RankingEntry, format, outputPath string) error {
	var w *os.File
	if outputPath != "" {
		var err error
		w, err = os.Create(outputPath)
		if err != nil {
			return eris.Wrapf(err, "rank: create output file %s", outputPath)
		}
		defer w.Close() //nolint:errcheck
	} else {
		w = os.Stdout
	}

	switch format {
	case "csv":
		return writeRankingCSV(w, entries)
	case "table":
		return writeRankingTable(w, entries)
	default:
		return eris.Errorf("rank: unsupported format %q", format)
	}
}

func writeRankingCSV(w *os.File, entries []engine.RankingEntry) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"position", "store_id", "name", "franchisee", "supervisor"}
	for _, p := range model.Pillars() {
		header = append(header, strings.ToLower(p))
	}
	header = append(header, "composite", "patent")
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "rank: write CSV header")
	}

	for i, e := range entries {
		row := []string{
			strconv.Itoa(i + 1),
			e.StoreID,
			e.Name,
			e.Franchisee,
			e.Supervisor,
		}
		for _, p := range model.Pillars() {
			row = append(row, strconv.Itoa(e.Pillars[p]))
		}
		row = append(row, strconv.Itoa(e.Composite), e.Patent)
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "rank: write CSV row")
		}
	}
	return nil
}

func writeRankingTable(w *os.File, entries []engine.RankingEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No stores ranked.")
		return err
	}

	header := fmt.Sprintf("%-4s %-30s %-20s %4s %4s %4s %4s %5s %-8s\n",
		"#", "Store", "Franchisee", "Pes", "Per", "Amb", "Dig", "Comp", "Patent")
	if _, err := fmt.Fprint(w, header); err != nil {
		return eris.Wrap(err, "rank: write table header")
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("-", len(header)-1)); err != nil {
		return eris.Wrap(err, "rank: write table separator")
	}

	for i, e := range entries {
		line := fmt.Sprintf("%-4d %-30s %-20s %4d %4d %4d %4d %5d %-8s\n",
			i+1,
			truncate(e.Name, 30),
			truncate(e.Franchisee, 20),
			e.Pillars[model.PillarPessoas],
			e.Pillars[model.PillarPerformance],
			e.Pillars[model.PillarAmbiencia],
			e.Pillars[model.PillarDigital],
			e.Composite,
			e.Patent,
		)
		if _, err := fmt.Fprint(w, line); err != nil {
			return eris.Wrap(err, "rank: write table row")
		}
	}
	return nil
}

func printTierSummary(counts map[string]int) {
	fmt.Printf("\n--- Patents ---\n")
	for _, tier := range model.PatentTiers() {
		fmt.Printf("%-8s %d\n", tier, counts[tier])
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
