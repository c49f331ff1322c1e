package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/unimarks/internal/marks"
	"github.com/sadopc/unimarks/internal/store"
)

type overviewModel struct {
	store  *store.Store
	engine *marks.Engine
	width  int
	height int

	decimals  int
	semesters []semesterOverview
}

// semesterOverview is one dashboard panel's worth of aggregates.
type semesterOverview struct {
	name         string
	subjects     int
	assignments  int
	pendingExams int
	summaries    []marks.SubjectSummary
}

func newOverviewModel(s *store.Store, decimals int) overviewModel {
	return overviewModel{store: s, decimals: decimals}
}

func (o *overviewModel) setSize(w, h int) {
	o.width = w
	o.height = h
}

func (o *overviewModel) setEngine(e *marks.Engine) {
	o.engine = e
	o.semesters = nil
}

type overviewDataMsg struct {
	semesters []semesterOverview
}

func (o overviewModel) refresh() tea.Cmd {
	if o.engine == nil {
		return nil
	}
	engine := o.engine
	return func() tea.Msg {
		var out []semesterOverview
		for _, name := range engine.Store().Semesters() {
			summaries, err := engine.Summaries(name)
			if err != nil {
				continue
			}
			sv := semesterOverview{name: name, summaries: summaries}
			for _, s := range summaries {
				sv.subjects++
				sv.assignments += s.Assignments
				if s.ExamWeight > 0 && s.ExamMark == 0 {
					sv.pendingExams++
				}
			}
			out = append(out, sv)
		}
		return overviewDataMsg{semesters: out}
	}
}

func (o overviewModel) update(msg tea.Msg) (overviewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case overviewDataMsg:
		o.semesters = msg.semesters
		return o, nil
	}
	return o, nil
}

func (o overviewModel) view() string {
	if o.width < 20 {
		return "Terminal too small"
	}

	contentWidth := o.width - 4

	if o.engine == nil {
		content := lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Overview"),
			"",
			mutedStyle.Render("No year loaded. Press y to choose a year."),
		)
		return panelStyle.Width(contentWidth).Render(content)
	}

	var panels []string
	panels = append(panels, o.renderYearPanel(contentWidth))
	for _, sv := range o.semesters {
		panels = append(panels, o.renderSemesterPanel(contentWidth, sv))
	}

	return lipgloss.JoinVertical(lipgloss.Left, panels...)
}

func (o overviewModel) renderYearPanel(w int) string {
	year := highlightStyle.Render(o.engine.Store().Year())
	header := fmt.Sprintf("%s  %s", titleStyle.Render("Academic Year"), year)

	totalSubjects := 0
	for _, sv := range o.semesters {
		totalSubjects += sv.subjects
	}

	line := mutedStyle.Render(fmt.Sprintf("%d semesters, %d subjects", len(o.semesters), totalSubjects))

	content := lipgloss.JoinVertical(lipgloss.Left, header, line)
	return panelStyle.Width(w).Render(content)
}

func (o overviewModel) renderSemesterPanel(w int, sv semesterOverview) string {
	title := titleStyle.Render(sv.name)
	counts := mutedStyle.Render(fmt.Sprintf("%d subjects  %d assignments", sv.subjects, sv.assignments))
	header := fmt.Sprintf("%s  %s", title, counts)

	if len(sv.summaries) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			header,
			mutedStyle.Render("No subjects yet"),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, header)
	for _, s := range sv.summaries {
		exam := mutedStyle.Render("no exam")
		if s.ExamWeight > 0 {
			if s.ExamMark > 0 {
				exam = fmt.Sprintf("exam %s", formatFixed(s.ExamMark, o.decimals))
				if s.ExamMark > 100 {
					exam = warningStyle.Render(exam + " (over 100)")
				} else {
					exam = successStyle.Render(exam)
				}
			} else {
				exam = warningStyle.Render(fmt.Sprintf("exam pending (%s%%)", formatFixed(s.ExamWeight, 0)))
			}
		}
		row := fmt.Sprintf("  %-12s %-24s %8s  %s",
			s.Code,
			truncate(s.Name, 24),
			formatFixed(s.AssessmentsTotal, o.decimals),
			exam,
		)
		rows = append(rows, row)
	}

	if sv.pendingExams > 0 {
		rows = append(rows, "")
		rows = append(rows, warningStyle.Render(fmt.Sprintf("  %d subject(s) awaiting exam mark calculation", sv.pendingExams)))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
