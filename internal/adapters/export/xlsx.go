// Package export renders reports as XLSX workbooks.
package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/okian/gatecompass/internal/domain/types"
	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type of the workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet names, in workbook order.
const (
	SheetSummary         = "Summary"
	SheetRankings        = "Rankings"
	SheetTopics          = "Topics"
	SheetRecommendations = "Recommendations"
)

var (
	rankingHeader = []any{"Rank", "Topic", "Subject", "Marks", "Difficulty", "Priority", "Trend", "Importance"}
	topicHeader   = []any{"Topic", "Subject", "Questions", "Marks", "Years Observed", "Priority Score",
		"Growth %", "Consistency", "Projected Marks", "Preparation Hours"}
)

// WriteReport writes r as a workbook to w.
func WriteReport(w io.Writer, r types.Report) error {
	f, err := Workbook(r)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Workbook builds the workbook for r. The caller closes it.
func Workbook(r types.Report) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		_ = f.Close()
		return nil, err
	}
	for _, name := range []string{SheetRankings, SheetTopics, SheetRecommendations} {
		if _, err := f.NewSheet(name); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	steps := []func(*excelize.File, types.Report) error{summary, rankings, topics, recommendations}
	for _, step := range steps {
		if err := step(f, r); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("build workbook: %w", err)
		}
	}
	return f, nil
}

func summary(f *excelize.File, r types.Report) error {
	rows := [][]any{
		{"Status", r.Status},
		{"Analysis Date", r.AnalysisDate},
		{"Window", fmt.Sprintf("%d-%d", r.Window.StartYear, r.Window.EndYear)},
		{"Records", r.TotalRecords},
		{"Topics", r.TotalTopics},
		{"Total Marks", r.TotalMarks},
		{"Very High", r.Statistics.VeryHighCount},
		{"High", r.Statistics.HighCount},
		{"Medium", r.Statistics.MediumCount},
		{"Low", r.Statistics.LowCount},
		{"Trending", r.Statistics.TrendingCount},
		{"Declining", r.Statistics.DecliningCount},
	}
	return writeRows(f, SheetSummary, rows)
}

func rankings(f *excelize.File, r types.Report) error {
	rows := [][]any{rankingHeader}
	for i, e := range r.Rankings.AllTopics {
		rows = append(rows, []any{i + 1, e.Name, e.Subject, e.Marks, e.Difficulty, e.Priority, e.Trend, e.ImportanceScore})
	}
	return writeRows(f, SheetRankings, rows)
}

func topics(f *excelize.File, r types.Report) error {
	names := make([]string, 0, len(r.Topics))
	for name := range r.Topics {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := [][]any{topicHeader}
	for _, name := range names {
		d := r.Topics[name]
		rows = append(rows, []any{name, d.Subject, d.QuestionCount, d.Marks, d.YearsObserved, d.PriorityScore,
			d.GrowthRate, d.ConsistencyScore, d.ProjectedMarks, d.PreparationHours})
	}
	return writeRows(f, SheetTopics, rows)
}

func recommendations(f *excelize.File, r types.Report) error {
	rec := r.Recommendations
	rows := [][]any{
		{"Study Time", "Very High %", rec.StudyTimeAllocation.VeryHighPriority},
		{"", "High %", rec.StudyTimeAllocation.HighPriority},
		{"", "Medium %", rec.StudyTimeAllocation.MediumPriority},
		{},
	}
	rows = append(rows, list("Focus Order", rec.FocusOrder))
	rows = append(rows, list("Immediate Action", rec.ImmediateAction))
	rows = append(rows, list("Trending Watch", rec.TrendingWatch))
	rows = append(rows, list("Declining Review", rec.DecliningReview))
	rows = append(rows, []any{})
	for _, b := range rec.WeeklyPlan {
		rows = append(rows, list(b.Period, b.Topics))
	}
	return writeRows(f, SheetRecommendations, rows)
}

func list(label string, items []string) []any {
	row := make([]any, 0, len(items)+1)
	row = append(row, label)
	for _, it := range items {
		row = append(row, it)
	}
	return row
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
