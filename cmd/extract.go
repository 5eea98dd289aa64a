package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leasingborsen/pricelist-cli/internal/export"
	"github.com/leasingborsen/pricelist-cli/internal/model"
)

var (
	extractFile   string
	extractDealer string
	extractJSON   string
	extractXLSX   string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract offers from a single price-list document",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("extract"); err != nil {
			return err
		}

		text, err := os.ReadFile(extractFile)
		if err != nil {
			return eris.Wrapf(err, "read %s", extractFile)
		}

		env, err := initEngine(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		outcome, err := env.orch.Extract(ctx, model.Document{
			Text:       string(text),
			DealerHint: extractDealer,
		})
		if err != nil {
			return err
		}

		zap.L().Info("extraction complete",
			zap.String("session_id", outcome.SessionID),
			zap.String("method", string(outcome.MethodUsed)),
			zap.Int("variants", len(outcome.Variants)),
			zap.Float64("confidence", outcome.ConfidenceScore),
		)

		if extractXLSX != "" {
			if err := export.WriteXLSX(outcome, extractXLSX); err != nil {
				return err
			}
		}

		return writeOutcome(outcome, extractJSON)
	},
}

// writeOutcome prints the outcome as indented JSON to stdout, or to the
// given file when one is set.
func writeOutcome(outcome *model.ExtractionOutcome, path string) error {
	data, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		return eris.Wrap(err, "marshal outcome")
	}

	if path == "" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	return eris.Wrapf(os.WriteFile(path, data, 0o644), "write %s", path)
}

func init() {
	extractCmd.Flags().StringVar(&extractFile, "file", "", "path to the price-list text file")
	extractCmd.Flags().StringVar(&extractDealer, "dealer", "", "dealer or brand hint")
	extractCmd.Flags().StringVar(&extractJSON, "json", "", "write the outcome to this JSON file instead of stdout")
	extractCmd.Flags().StringVar(&extractXLSX, "xlsx", "", "also write an .xlsx workbook to this path")
	extractCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(extractCmd)
}
