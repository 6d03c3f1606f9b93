package export

import (
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"OpportunityValidator/internal/domain"
	"OpportunityValidator/internal/ports"
)

// Sheet names written by the exporter.
const (
	RankingsSheet = "Rankings"
	ScoresSheet   = "Scores"
)

var rankingHeader = []any{"Rank", "Opportunity", "Total", "Efficiency", "Recommendation", "Summary"}

// XLSXExporter writes comparisons as spreadsheets: one sheet with the
// ranking, one with the full rubric per opportunity.
type XLSXExporter struct{}

var _ ports.ComparisonExporter = (*XLSXExporter)(nil)

// NewXLSXExporter returns an exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// ExportComparison writes comparison and results to path.
func (e *XLSXExporter) ExportComparison(path string, comparison domain.Comparison, results []domain.ValidationResult) error {
	if filepath.Ext(path) != ".xlsx" {
		return fmt.Errorf("%w: export path %q must end in .xlsx", domain.ErrInvalidInput, path)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", RankingsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeRankings(f, comparison); err != nil {
		return err
	}

	if _, err := f.NewSheet(ScoresSheet); err != nil {
		return fmt.Errorf("create scores sheet: %w", err)
	}
	if err := writeScores(f, comparison, results); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func writeRankings(f *excelize.File, comparison domain.Comparison) error {
	if err := setRow(f, RankingsSheet, 1, rankingHeader); err != nil {
		return err
	}

	row := 2
	for _, r := range comparison.Rankings {
		values := []any{r.Rank, r.Name, r.Score, r.EfficiencyScore, r.Recommendation, r.Summary}
		if err := setRow(f, RankingsSheet, row, values); err != nil {
			return err
		}
		row++
	}

	row++
	if err := setRow(f, RankingsSheet, row, []any{"Recommendation", comparison.Recommendation}); err != nil {
		return err
	}
	row++
	stats := []any{"Mean", comparison.Stats.Mean, "Median", comparison.Stats.Median, "StdDev", comparison.Stats.StdDev}
	return setRow(f, RankingsSheet, row, stats)
}

func writeScores(f *excelize.File, comparison domain.Comparison, results []domain.ValidationResult) error {
	header := []any{"Opportunity"}
	for _, key := range domain.SubScoreKeys {
		header = append(header, key)
	}
	header = append(header, "total_score", "efficiency_score", "status")
	if err := setRow(f, ScoresSheet, 1, header); err != nil {
		return err
	}

	byName := make(map[string]domain.ValidationResult, len(results))
	for _, res := range results {
		byName[res.Opportunity.Name] = res
	}

	row := 2
	for _, r := range comparison.Rankings {
		res, ok := byName[r.Name]
		if !ok {
			continue
		}
		subScores := res.Score.SubScores()
		values := []any{r.Name}
		for _, key := range domain.SubScoreKeys {
			values = append(values, *subScores[key])
		}
		values = append(values, res.Score.TotalScore, res.Score.EfficiencyScore, string(res.Status))
		if err := setRow(f, ScoresSheet, row, values); err != nil {
			return err
		}
		row++
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
