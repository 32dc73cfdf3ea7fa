package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/internal/reconcile"
	"github.com/sells-group/enrich-cli/internal/taxonomy"
)

var classifyFlags struct {
	country string
	text    string
}

var classifyCmd = &cobra.Command{
	Use:   "classify <name>",
	Short: "Classify an organization offline with the keyword tables",
	Long:  "Runs the keyword classifier and the record sanitizer on a name and optional evidence text, without search, scraping, or a language model.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cls, err := initClassifier()
		if err != nil {
			return err
		}

		org := model.Organization{Name: args[0], Country: classifyFlags.country}
		rec := classifyOffline(cls, org, classifyFlags.text)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"record": rec,
			"row":    reconcile.NormalizeToColumns(rec, cfg.Excel.OutCols),
		})
	},
}

func init() {
	classifyCmd.Flags().StringVar(&classifyFlags.country, "country", "", "organization country")
	classifyCmd.Flags().StringVar(&classifyFlags.text, "text", "", "evidence text to classify against")
	rootCmd.AddCommand(classifyCmd)
}

// classifyOffline builds the sanitized fallback record the pipeline writes
// when no model answers.
func classifyOffline(cls *taxonomy.Classifier, org model.Organization, text string) *model.ExtractionRecord {
	heuristic := cls.ClassifyHeuristically(org.Name, text)
	inferred := cls.InferSectors(text)
	return reconcile.New(cls).Sanitize(org, model.HeuristicRecord(org, heuristic), heuristic, inferred)
}
