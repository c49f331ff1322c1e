package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/unimarks/internal/marks"
	"github.com/sadopc/unimarks/internal/store"
)

// reportsModel charts earned marks against outstanding exam weight per
// subject, one semester at a time.
type reportsModel struct {
	store  *store.Store
	engine *marks.Engine
	width  int
	height int

	decimals  int
	semester  string
	summaries []marks.SubjectSummary

	chart barchart.Model
}

func newReportsModel(s *store.Store, semester string, decimals int) reportsModel {
	return reportsModel{
		store:    s,
		semester: semester,
		decimals: decimals,
		chart:    barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

func (r *reportsModel) setEngine(e *marks.Engine) {
	r.engine = e
	r.summaries = nil
	if e == nil {
		return
	}
	if !e.Store().HasSemester(r.semester) {
		if sems := e.Store().Semesters(); len(sems) > 0 {
			r.semester = sems[0]
		}
	}
}

type reportsDataMsg struct {
	semester  string
	summaries []marks.SubjectSummary
}

func (r reportsModel) refresh() tea.Cmd {
	if r.engine == nil {
		return nil
	}
	engine, semester := r.engine, r.semester
	return func() tea.Msg {
		summaries, err := engine.Summaries(semester)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return reportsDataMsg{semester: semester, summaries: summaries}
	}
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		if msg.semester != r.semester {
			return r, nil
		}
		r.summaries = msg.summaries
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left), key.Matches(msg, keys.PrevSemester):
			r.cycleSemester(-1)
			return r, r.refresh()
		case key.Matches(msg, keys.Right), key.Matches(msg, keys.NextSemester):
			r.cycleSemester(1)
			return r, r.refresh()
		}
	}
	return r, nil
}

func (r *reportsModel) cycleSemester(delta int) {
	if r.engine == nil {
		return
	}
	sems := r.engine.Store().Semesters()
	if len(sems) == 0 {
		return
	}
	idx := 0
	for i, s := range sems {
		if s == r.semester {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(sems)) % len(sems)
	r.semester = sems[idx]
}

func (r *reportsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	earnedStyle := lipgloss.NewStyle().Foreground(colorPrimary)
	examStyle := lipgloss.NewStyle().Foreground(colorSecondary)

	var bars []barchart.BarData
	for _, s := range r.summaries {
		values := []barchart.BarValue{
			{Name: "earned", Value: s.AssessmentsTotal, Style: earnedStyle},
			{Name: "exam", Value: s.ExamWeight, Style: examStyle},
		}
		bars = append(bars, barchart.BarData{
			Label:  truncate(s.Code, 10),
			Values: values,
		})
	}

	if len(bars) == 0 {
		bars = []barchart.BarData{{
			Label:  "",
			Values: []barchart.BarValue{{Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}},
		}}
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) view() string {
	w := r.width - 4

	if r.engine == nil {
		content := lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Reports"),
			"",
			mutedStyle.Render("No year loaded. Press y to choose a year."),
		)
		return panelStyle.Width(w).Render(content)
	}

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ",
		activeTabStyle.Render(r.semester), "  ",
		mutedStyle.Render(r.engine.Store().Year()),
	)

	chartView := r.chart.View()
	legend := r.renderLegend()
	tableView := r.renderSummaryTable(w)
	nav := mutedStyle.Render("  ←/→: switch semester")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", chartView, "", legend, "", tableView, "", nav,
		),
	)
}

func (r reportsModel) renderLegend() string {
	earned := lipgloss.NewStyle().Foreground(colorPrimary).Render("■") + " marks earned"
	exam := lipgloss.NewStyle().Foreground(colorSecondary).Render("■") + " exam weight remaining"
	return "  " + earned + "  " + exam
}

func (r reportsModel) renderSummaryTable(w int) string {
	if len(r.summaries) == 0 {
		return mutedStyle.Render("  No subjects in this semester")
	}

	var rows []string
	headerRow := mutedStyle.Render(fmt.Sprintf("  %-12s %-24s %8s %8s %10s %8s",
		"Code", "Subject", "Earned", "Exam %", "Exam Mark", "Total"))
	rows = append(rows, headerRow)
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 76))))

	for _, s := range r.summaries {
		examMark := "-"
		if s.ExamWeight > 0 && s.ExamMark > 0 {
			examMark = formatFixed(s.ExamMark, r.decimals)
		}
		total := "-"
		if s.TotalMark > 0 {
			total = formatFixed(s.TotalMark, r.decimals)
		}
		rows = append(rows, fmt.Sprintf("  %-12s %-24s %8s %8s %10s %8s",
			s.Code,
			truncate(s.Name, 24),
			formatFixed(s.AssessmentsTotal, r.decimals),
			formatFixed(s.ExamWeight, 0),
			examMark,
			total,
		))
	}

	return strings.Join(rows, "\n")
}
