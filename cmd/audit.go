package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/redealvo/rede-cli/internal/engine"
	"github.com/redealvo/rede-cli/internal/quality"
	"github.com/redealvo/rede-cli/internal/snapshot"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Report data quality problems in stored plans and evaluations",
	Long: `Scan the stored data for a reference month and list everything that the
scoring engine would silently skip or misrepresent: evaluations with unknown
pillar names or invalid scores, KPI weight sets that do not sum to 100, goals
without weights, and inconsistent patent thresholds.`,
	RunE: runAudit,
}

func init() {
	auditCmd.Flags().String("month", "", "reference month YYYY-MM (default: current month)")
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, _ []string) error {
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
		return eris.Wrap(err, "audit: fetch snapshot")
	}

	findings := quality.Audit(snap, month, engine.DefaultConfig().KPIs)

	zap.L().Info("audit complete",
		zap.String("month", month),
		zap.Int("findings", len(findings)),
	)

	if len(findings) == 0 {
		fmt.Println("No problems found.")
		return nil
	}

	for _, f := range findings {
		if f.StoreID != "" {
			fmt.Printf("%-24s %-36s %s\n", f.Code, f.StoreID, f.Detail)
		} else {
			fmt.Printf("%-24s %-36s %s\n", f.Code, "-", f.Detail)
		}
	}
	fmt.Printf("\n%d finding(s).\n", len(findings))
	return nil
}
