package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/redealvo/rede-cli/internal/model"
)

var thresholdsCmd = &cobra.Command{
	Use:   "thresholds",
	Short: "Show or update the patent tier thresholds",
}

var thresholdsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active patent thresholds",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		t, err := st.GetThresholds(ctx)
		if err != nil {
			return eris.Wrap(err, "thresholds: load")
		}

		printThresholds(t)
		return nil
	},
}

var thresholdsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Save new patent thresholds",
	Long: `Save a new threshold set. Values must be non-decreasing from Bronze to
Platina; invalid sets are rejected before anything is written.

  thresholds set --prata 70 --ouro 85 --platina 95`,
	RunE: runThresholdsSet,
}

func init() {
	f := thresholdsSetCmd.Flags()
	f.Float64("bronze", -1, "minimum composite for Bronze (default: keep current)")
	f.Float64("prata", -1, "minimum composite for Prata (default: keep current)")
	f.Float64("ouro", -1, "minimum composite for Ouro (default: keep current)")
	f.Float64("platina", -1, "minimum composite for Platina (default: keep current)")

	thresholdsCmd.AddCommand(thresholdsShowCmd)
	thresholdsCmd.AddCommand(thresholdsSetCmd)
	rootCmd.AddCommand(thresholdsCmd)
}

func runThresholdsSet(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	t, err := st.GetThresholds(ctx)
	if err != nil {
		return eris.Wrap(err, "thresholds: load current")
	}

	if v, _ := cmd.Flags().GetFloat64("bronze"); v >= 0 {
		t.Bronze = v
	}
	if v, _ := cmd.Flags().GetFloat64("prata"); v >= 0 {
		t.Prata = v
	}
	if v, _ := cmd.Flags().GetFloat64("ouro"); v >= 0 {
		t.Ouro = v
	}
	if v, _ := cmd.Flags().GetFloat64("platina"); v >= 0 {
		t.Platina = v
	}

	if err := st.SaveThresholds(ctx, t); err != nil {
		return eris.Wrap(err, "thresholds: save")
	}

	zap.L().Info("thresholds updated",
		zap.Float64("prata", t.Prata),
		zap.Float64("ouro", t.Ouro),
		zap.Float64("platina", t.Platina),
	)

	printThresholds(t)
	return nil
}

func printThresholds(t model.PatentThresholds) {
	fmt.Printf("Bronze:  >= %.0f\n", t.Bronze)
	fmt.Printf("Prata:   >= %.0f\n", t.Prata)
	fmt.Printf("Ouro:    >= %.0f\n", t.Ouro)
	fmt.Printf("Platina: >= %.0f\n", t.Platina)
}
