package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/redealvo/rede-cli/internal/ingest"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load stores, evaluations and KPI plans into the database",
	Long: `Import data from operator-maintained files.

  # Seed stores and evaluations from YAML
  import --file seed.yaml

  # Apply monthly KPI plans (goals, results, weights) from a workbook
  import --plan plano-julho.xlsx`,
	RunE: runImport,
}

func init() {
	f := importCmd.Flags()
	f.String("file", "", "YAML seed file with stores and evaluations")
	f.String("plan", "", "XLSX workbook with monthly KPI plan rows")

	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	seedPath, _ := cmd.Flags().GetString("file")
	planPath, _ := cmd.Flags().GetString("plan")

	if seedPath == "" && planPath == "" {
		return eris.New("import: provide --file and/or --plan")
	}

	log := zap.L().With(zap.String("command", "import"))

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	if seedPath != "" {
		seed, err := ingest.ReadSeedFile(seedPath)
		if err != nil {
			return err
		}
		stores, evals, err := seed.Models()
		if err != nil {
			return err
		}
		if len(stores) > 0 {
			if err := st.UpsertStores(ctx, stores); err != nil {
				return eris.Wrap(err, "import: upsert stores")
			}
		}
		if len(evals) > 0 {
			if err := st.InsertEvaluations(ctx, evals); err != nil {
				return eris.Wrap(err, "import: insert evaluations")
			}
		}
		log.Info("seed imported",
			zap.String("file", seedPath),
			zap.Int("stores", len(stores)),
			zap.Int("evaluations", len(evals)),
		)
		fmt.Printf("Imported %d store(s) and %d evaluation(s) from %s\n", len(stores), len(evals), seedPath)
	}

	if planPath != "" {
		rows, err := ingest.ReadPlanWorkbook(planPath)
		if err != nil {
			return err
		}

		stores, err := st.ListStores(ctx)
		if err != nil {
			return eris.Wrap(err, "import: list stores")
		}

		applied, unknown := ingest.ApplyPlans(stores, rows)
		if len(unknown) > 0 {
			log.Warn("plan rows reference unknown stores",
				zap.Strings("store_ids", unknown),
			)
			fmt.Printf("Skipped rows for unknown store(s): %s\n", strings.Join(unknown, ", "))
		}
		if applied == 0 {
			fmt.Println("No plan rows applied.")
			return nil
		}

		if err := st.UpsertStores(ctx, stores); err != nil {
			return eris.Wrap(err, "import: save plans")
		}
		log.Info("plan imported",
			zap.String("file", planPath),
			zap.Int("rows", applied),
		)
		fmt.Printf("Applied %d plan row(s) from %s\n", applied, planPath)
	}

	return nil
}
