// Package export renders extraction outcomes to spreadsheet files for
// the dealer-facing review flow.
package export

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/leasingborsen/pricelist-cli/internal/model"
)

var variantHeader = []string{
	"Model", "Variant", "HK", "Elbil", "Rækkevidde (km)", "CO2 (g/km)",
	"Antal tilbud", "Confidence", "Kilde",
}

var pricingHeader = []string{
	"Model", "Variant", "Km/år", "Mdr.", "Totalpris (kr)",
	"Førstegangsydelse (kr)", "Pr. måned (kr)", "Min. pris 12 mdr. (kr)",
}

// WriteXLSX writes the outcome to an .xlsx workbook with a variant
// sheet, a pricing-row sheet, and a run summary.
func WriteXLSX(outcome *model.ExtractionOutcome, path string) error {
	file := xlsx.NewFile()

	if err := addVariantSheet(file, outcome); err != nil {
		return err
	}
	if err := addPricingSheet(file, outcome); err != nil {
		return err
	}
	if err := addSummarySheet(file, outcome); err != nil {
		return err
	}

	return eris.Wrapf(file.Save(path), "export: save %s", path)
}

func addVariantSheet(file *xlsx.File, outcome *model.ExtractionOutcome) error {
	sheet, err := file.AddSheet("Varianter")
	if err != nil {
		return eris.Wrap(err, "export: add variant sheet")
	}

	writeRow(sheet, variantHeader...)
	for _, v := range outcome.Variants {
		writeRow(sheet,
			v.Model,
			v.VariantName,
			fmt.Sprintf("%d", v.Horsepower),
			boolJaNej(v.IsElectric),
			zeroBlank(v.RangeKM),
			zeroBlank(v.CO2Emission),
			fmt.Sprintf("%d", v.RealPricingCount()),
			fmt.Sprintf("%.2f", v.ConfidenceScore),
			v.ProvenanceTag,
		)
	}
	return nil
}

func addPricingSheet(file *xlsx.File, outcome *model.ExtractionOutcome) error {
	sheet, err := file.AddSheet("Priser")
	if err != nil {
		return eris.Wrap(err, "export: add pricing sheet")
	}

	writeRow(sheet, pricingHeader...)
	for _, v := range outcome.Variants {
		for _, p := range v.PricingOptions {
			if p.IsPlaceholder() {
				continue
			}
			writeRow(sheet,
				v.Model,
				v.VariantName,
				fmt.Sprintf("%d", p.MileagePerYear),
				fmt.Sprintf("%d", p.PeriodMonths),
				fmt.Sprintf("%d", p.TotalCost),
				fmt.Sprintf("%d", p.Deposit),
				fmt.Sprintf("%d", p.MonthlyPrice),
				fmt.Sprintf("%d", p.MinPrice12Months),
			)
		}
	}
	return nil
}

func addSummarySheet(file *xlsx.File, outcome *model.ExtractionOutcome) error {
	sheet, err := file.AddSheet("Resume")
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}

	writeRow(sheet, "Session", outcome.SessionID)
	writeRow(sheet, "Metode", string(outcome.MethodUsed))
	writeRow(sheet, "Varianter", fmt.Sprintf("%d", len(outcome.Variants)))
	writeRow(sheet, "Confidence", fmt.Sprintf("%.2f", outcome.ConfidenceScore))
	writeRow(sheet, "Behandlingstid (ms)", fmt.Sprintf("%d", outcome.ProcessingTimeMs))
	writeRow(sheet, "AI-omkostning (cent)", fmt.Sprintf("%d", outcome.AICostCents))
	writeRow(sheet, "AI-tokens", fmt.Sprintf("%d", outcome.AITokensUsed))
	return nil
}

func writeRow(sheet *xlsx.Sheet, values ...string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().Value = v
	}
}

func boolJaNej(b bool) string {
	if b {
		return "Ja"
	}
	return "Nej"
}

func zeroBlank(n int) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("%d", n)
}
