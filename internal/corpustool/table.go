package corpustool

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/okian/gatecompass/internal/domain/types"
)

var (
	colorPrimary = lipgloss.Color("#7D56F4")
	styleMuted   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7A7A7A"))
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)

	tierStyles = map[string]lipgloss.Style{
		"Very High": lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E0443E")),
		"High":      lipgloss.NewStyle().Foreground(lipgloss.Color("#E8A33D")),
		"Medium":    lipgloss.NewStyle().Foreground(lipgloss.Color("#4C9BE8")),
		"Low":       styleMuted,
	}
)

// Table renders aligned columns with a styled header.
type Table struct {
	headers []string
	rows    [][]string
	widths  []int
}

// NewTable creates a table with the given column headers.
func NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	return &Table{headers: headers, widths: widths}
}

// AddRow adds a row. Missing values are left blank and extra ones dropped.
func (t *Table) AddRow(values ...string) {
	row := make([]string, len(t.headers))
	for i := range t.headers {
		if i < len(values) {
			row[i] = values[i]
		}
		t.widths[i] = max(t.widths[i], lipgloss.Width(row[i]))
	}
	t.rows = append(t.rows, row)
}

// Render returns the formatted table.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}
	header := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)

	var sb strings.Builder
	for i, h := range t.headers {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(header.Render(pad(h, t.widths[i])))
	}
	sb.WriteString("\n")
	for i, w := range t.widths {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(styleMuted.Render(strings.Repeat("─", w)))
	}
	sb.WriteString("\n")
	for _, row := range t.rows {
		for i, cell := range row {
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(pad(cell, t.widths[i]))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Table) String() string { return t.Render() }

func pad(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// RenderReport writes a summary, the top ranked topics and the study plan.
// top <= 0 prints every topic.
func RenderReport(w io.Writer, r types.Report, top int) error {
	var sb strings.Builder
	sb.WriteString(styleTitle.Render(fmt.Sprintf("Topic ranking %d-%d", r.Window.StartYear, r.Window.EndYear)))
	sb.WriteString("\n")
	sb.WriteString(styleMuted.Render(fmt.Sprintf("%s · %d records · %d topics · %.1f marks · %s",
		r.AnalysisDate, r.TotalRecords, r.TotalTopics, r.TotalMarks, r.Status)))
	sb.WriteString("\n\n")

	entries := r.Rankings.AllTopics
	if top > 0 && len(entries) > top {
		entries = entries[:top]
	}
	t := NewTable("#", "Topic", "Subject", "Marks", "Priority", "Trend", "Importance", "Hours")
	for i, e := range entries {
		style, ok := tierStyles[e.Priority]
		if !ok {
			style = lipgloss.NewStyle()
		}
		t.AddRow(
			strconv.Itoa(i+1),
			e.Name,
			e.Subject,
			strconv.FormatFloat(e.Marks, 'f', -1, 64),
			style.Render(e.Priority),
			e.Trend,
			strconv.FormatFloat(e.ImportanceScore, 'f', 2, 64),
			strconv.Itoa(r.Topics[e.Name].PreparationHours),
		)
	}
	sb.WriteString(t.Render())

	alloc := r.Recommendations.StudyTimeAllocation
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Study time: very high %d%% · high %d%% · medium %d%%\n",
		alloc.VeryHighPriority, alloc.HighPriority, alloc.MediumPriority))
	if len(r.Recommendations.FocusOrder) > 0 {
		sb.WriteString("Focus: " + strings.Join(r.Recommendations.FocusOrder, ", ") + "\n")
	}
	if len(r.Recommendations.TrendingWatch) > 0 {
		sb.WriteString("Rising: " + strings.Join(r.Recommendations.TrendingWatch, ", ") + "\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
