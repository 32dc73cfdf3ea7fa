package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/enrich-cli/internal/pipeline"
	"github.com/sells-group/enrich-cli/internal/sheet"
)

var enrichFlags struct {
	inputFile   string
	sheet       string
	limit       int
	onlyMissing bool
	resume      bool
	start       int
}

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Enrich every selected row of an input workbook",
	Long:  "Reads the input sheet, enriches the selected rows one at a time, and checkpoints enriched.csv and the enriched workbook to the output directory.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		sheetName := enrichFlags.sheet
		if sheetName == "" {
			sheetName = cfg.Excel.Sheet
		}

		// Input errors abort before any row is processed.
		table, err := sheet.Read(enrichFlags.inputFile, sheetName)
		if err != nil {
			return eris.Wrap(err, "enrich: read input")
		}

		env, err := initPipeline(ctx, "enrich")
		if err != nil {
			return err
		}
		defer env.Close()

		indices := pipeline.SelectRows(table, cfg.Excel.OutCols, pipeline.SelectOptions{
			OnlyMissing: enrichFlags.onlyMissing,
			Resume:      enrichFlags.resume,
			Start:       enrichFlags.start,
			Limit:       enrichFlags.limit,
		})

		cp := pipeline.NewCheckpointer(cfg.Paths.OutputDir, cfg.Excel.OutCols)
		runner := pipeline.NewRunner(cfg, env.Pipeline, env.Store, cp)
		sum := runner.Run(ctx, table, indices)

		if n, err := env.Store.DeleteExpiredEvidence(ctx); err != nil {
			zap.L().Warn("enrich: prune evidence cache", zap.Error(err))
		} else if n > 0 {
			zap.L().Debug("enrich: pruned evidence cache", zap.Int("entries", n))
		}

		fmt.Fprintf(os.Stdout, "Processed %d/%d rows (%d failed, %d skipped) in %s\n",
			sum.Succeeded, sum.Total, sum.Failed, sum.Skipped, sum.Duration.Round(time.Second))
		fmt.Fprintf(os.Stdout, "Outputs: %s, %s\n", cp.CSVPath(), cp.WorkbookPath(table.Sheet))
		if sum.Interrupted {
			return eris.New("enrich: interrupted")
		}
		return nil
	},
}

func init() {
	f := enrichCmd.Flags()
	f.StringVar(&enrichFlags.inputFile, "input-file", "", "path to the input workbook (.xlsx or .csv)")
	f.StringVar(&enrichFlags.sheet, "sheet", "", "sheet name (default from config)")
	f.IntVar(&enrichFlags.limit, "limit", 0, "process at most this many rows (0 = all)")
	f.BoolVar(&enrichFlags.onlyMissing, "only-missing", false, "process only rows whose output columns are all empty")
	f.BoolVar(&enrichFlags.resume, "resume", false, "skip rows whose note column is already filled")
	f.IntVar(&enrichFlags.start, "start", 0, "start from this row index after filtering")
	_ = enrichCmd.MarkFlagRequired("input-file")
	rootCmd.AddCommand(enrichCmd)
}
