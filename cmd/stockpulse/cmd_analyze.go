package main

import (
	"encoding/json"
	"fmt"
	"io"

	"StockPulse/internal/di"
	"StockPulse/internal/domain/models"
	"StockPulse/internal/usecase"

	"github.com/spf13/cobra"
)

var analyzeFlags struct {
	company string
	json    bool
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze SYMBOL",
	Short: "Run every analyzer once and print the report",
	Long: `Run the full analyzer set against one ticker and print the consolidated
report. Analyzers whose backend is not configured show up as failures.

  stockpulse analyze AAPL --company "Apple Inc."
  stockpulse analyze msft --json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeFlags.company, "company", "", "company name shown in the report header")
	f.BoolVar(&analyzeFlags.json, "json", false, "print the report as JSON")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	uc, cleanup, err := di.InitializeAnalysis(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := uc.Run(ctx, usecase.AnalyzeParams{Symbol: args[0], CompanyName: analyzeFlags.company})
	if err != nil {
		return err
	}
	return writeReport(cmd.OutOrStdout(), report, analyzeFlags.json)
}

func writeReport(w io.Writer, r *models.Report, asJSON bool) error {
	if !asJSON {
		_, err := fmt.Fprintln(w, r.Text)
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
