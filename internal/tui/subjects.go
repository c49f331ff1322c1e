package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/unimarks/internal/marks"
	"github.com/sadopc/unimarks/internal/store"
)

// subjectsModel is the main table: one row per assignment under each
// subject, with the full column layout, plus huh forms for every
// mutation.
type subjectsModel struct {
	store  *store.Store
	engine *marks.Engine
	width  int
	height int

	decimals int
	semester string
	rows     []marks.Row
	cursor   int

	formActive bool
	form       *huh.Form
	formType   string // "subject", "entry", "total"

	// Form field pointers (survive value copies)
	formCode       *string
	formName       *string
	formSync       *bool
	formAssessment *string
	formWeighted   *string
	formWeight     *string
	formTotal      *string
}

func newSubjectsModel(s *store.Store, semester string, decimals int) subjectsModel {
	code, name, assessment, weighted, weight, total := "", "", "", "", "", ""
	sync := false
	return subjectsModel{
		store:          s,
		semester:       semester,
		decimals:       decimals,
		formCode:       &code,
		formName:       &name,
		formSync:       &sync,
		formAssessment: &assessment,
		formWeighted:   &weighted,
		formWeight:     &weight,
		formTotal:      &total,
	}
}

func (m *subjectsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

// setEngine swaps in a new year's engine and clamps the semester to one
// the year actually contains.
func (m *subjectsModel) setEngine(e *marks.Engine) {
	m.engine = e
	m.cursor = 0
	if e == nil {
		return
	}
	if !e.Store().HasSemester(m.semester) {
		if sems := e.Store().Semesters(); len(sems) > 0 {
			m.semester = sems[0]
		}
	}
}

type rowsMsg struct {
	semester string
	rows     []marks.Row
}

func (m subjectsModel) refresh() tea.Cmd {
	if m.engine == nil {
		return nil
	}
	engine, semester := m.engine, m.semester
	return func() tea.Msg {
		rows, err := engine.ViewData(semester)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return rowsMsg{semester: semester, rows: rows}
	}
}

func (m subjectsModel) update(msg tea.Msg) (subjectsModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case rowsMsg:
		if msg.semester != m.semester {
			return m, nil
		}
		m.rows = msg.rows
		if m.cursor >= len(m.rows) {
			m.cursor = max(0, len(m.rows)-1)
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m subjectsModel) updateKeys(msg tea.KeyMsg) (subjectsModel, tea.Cmd) {
	if m.engine == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.PrevSemester), key.Matches(msg, keys.Left):
		m.cycleSemester(-1)
		return m, m.refresh()
	case key.Matches(msg, keys.NextSemester), key.Matches(msg, keys.Right):
		m.cycleSemester(1)
		return m, m.refresh()
	case key.Matches(msg, keys.NewSubject):
		return m.showSubjectForm()
	case key.Matches(msg, keys.Entry):
		return m.showEntryForm()
	case key.Matches(msg, keys.Total):
		return m.showTotalForm()
	case key.Matches(msg, keys.DeleteEntry):
		return m.deleteEntry()
	case key.Matches(msg, keys.DeleteSubject):
		return m.deleteSubject()
	case key.Matches(msg, keys.Calc):
		return m.calcExamMark()
	}
	return m, nil
}

func (m *subjectsModel) cycleSemester(delta int) {
	sems := m.engine.Store().Semesters()
	if len(sems) == 0 {
		return
	}
	idx := 0
	for i, s := range sems {
		if s == m.semester {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(sems)) % len(sems)
	m.semester = sems[idx]
	m.cursor = 0
}

func (m subjectsModel) currentRow() (marks.Row, bool) {
	if m.cursor >= len(m.rows) {
		return marks.Row{}, false
	}
	return m.rows[m.cursor], true
}

func (m subjectsModel) deleteEntry() (subjectsModel, tea.Cmd) {
	row, ok := m.currentRow()
	if !ok {
		return m, nil
	}
	if row.Assessment == marks.NoAssignments {
		return m, report("No assignments to delete")
	}
	if err := m.engine.DeleteEntry(m.semester, row.SubjectCode, row.Assessment); err != nil {
		return m, reportError(err)
	}
	text := fmt.Sprintf("Deleted %s from %s", row.Assessment, row.SubjectCode)
	if row.Synced {
		text += " (Annual record)"
	}
	return m, tea.Batch(m.refresh(), report(text))
}

func (m subjectsModel) deleteSubject() (subjectsModel, tea.Cmd) {
	row, ok := m.currentRow()
	if !ok {
		return m, nil
	}
	if row.Synced {
		return m, report("Synced subjects are owned by Annual — delete them there")
	}
	if err := m.engine.DeleteSubject(m.semester, row.SubjectCode); err != nil {
		return m, reportError(err)
	}
	return m, tea.Batch(m.refresh(), report("Deleted subject "+row.SubjectCode))
}

func (m subjectsModel) calcExamMark() (subjectsModel, tea.Cmd) {
	row, ok := m.currentRow()
	if !ok {
		return m, nil
	}
	mark, applicable, err := m.engine.CalculateExamMark(m.semester, row.SubjectCode)
	if err != nil {
		return m, reportError(err)
	}
	if !applicable {
		return m, report(fmt.Sprintf("%s: exam weight is zero, exam mark not applicable", row.SubjectCode))
	}
	return m, tea.Batch(
		m.refresh(),
		report(fmt.Sprintf("%s: required exam mark %s", row.SubjectCode, formatFixed(mark, m.decimals))),
	)
}

func (m subjectsModel) showSubjectForm() (subjectsModel, tea.Cmd) {
	*m.formCode = ""
	*m.formName = ""
	*m.formSync = m.semester == marks.Annual
	m.formType = "subject"

	fields := []huh.Field{
		huh.NewInput().Title("Subject Code").Value(m.formCode),
		huh.NewInput().Title("Subject Name").Value(m.formName),
	}
	if m.semester == marks.Annual {
		fields = append(fields, huh.NewConfirm().
			Title("Project into Autumn and Spring views?").
			Value(m.formSync))
	}

	m.form = huh.NewForm(huh.NewGroup(fields...)).WithShowHelp(true).WithShowErrors(true)
	m.formActive = true
	return m, m.form.Init()
}

func (m subjectsModel) showEntryForm() (subjectsModel, tea.Cmd) {
	row, _ := m.currentRow()
	*m.formCode = row.SubjectCode
	*m.formAssessment, *m.formWeighted, *m.formWeight = entryPrefill(row)
	m.formType = "entry"

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Subject Code").Value(m.formCode),
			huh.NewInput().Title("Assessment").Value(m.formAssessment),
			huh.NewInput().Title("Weighted Mark").Value(m.formWeighted),
			huh.NewInput().Title("Mark Weight (%)").Value(m.formWeight),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m subjectsModel) showTotalForm() (subjectsModel, tea.Cmd) {
	row, ok := m.currentRow()
	if !ok {
		return m, nil
	}
	*m.formCode = row.SubjectCode
	*m.formTotal = ""
	m.formType = "total"

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Total Mark for %s (empty clears)", row.SubjectCode)).
				Value(m.formTotal),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m subjectsModel) updateForm(msg tea.Msg) (subjectsModel, tea.Cmd) {
	// Check for escape to cancel form
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		switch m.formType {
		case "subject":
			return m.submitSubject()
		case "entry":
			return m.submitEntry()
		case "total":
			return m.submitTotal()
		}
	}

	return m, cmd
}

func (m subjectsModel) submitSubject() (subjectsModel, tea.Cmd) {
	_, err := m.engine.AddSubject(m.semester, strings.TrimSpace(*m.formCode), *m.formName, *m.formSync)
	if err != nil {
		return m, reportError(err)
	}
	return m, tea.Batch(m.refresh(), report("Added subject "+*m.formCode))
}

func (m subjectsModel) submitEntry() (subjectsModel, tea.Cmd) {
	weighted, err := parseMark(*m.formWeighted)
	if err != nil {
		return m, reportError(fmt.Errorf("weighted mark: %v", err))
	}
	weight, err := parseMark(*m.formWeight)
	if err != nil {
		return m, reportError(fmt.Errorf("mark weight: %v", err))
	}

	code := strings.TrimSpace(*m.formCode)
	overrun, err := m.engine.AddEntry(m.semester, code, *m.formAssessment, weighted, weight)
	if err != nil {
		return m, reportError(err)
	}
	text := fmt.Sprintf("Saved %s on %s", *m.formAssessment, code)
	if overrun > 0 {
		text = fmt.Sprintf("%s — weights exceed 100 by %s", text, formatFixed(overrun, m.decimals))
	}
	return m, tea.Batch(m.refresh(), report(text))
}

func (m subjectsModel) submitTotal() (subjectsModel, tea.Cmd) {
	code := *m.formCode
	if strings.TrimSpace(*m.formTotal) == "" {
		if err := m.engine.ClearTotalMark(m.semester, code); err != nil {
			return m, reportError(err)
		}
		return m, tea.Batch(m.refresh(), report("Cleared total mark for "+code))
	}

	total, err := parseMark(*m.formTotal)
	if err != nil {
		return m, reportError(fmt.Errorf("total mark: %v", err))
	}
	if err := m.engine.SetTotalMark(m.semester, code, total); err != nil {
		return m, reportError(err)
	}
	return m, tea.Batch(m.refresh(), report(fmt.Sprintf("Total mark for %s set to %s", code, formatFixed(total, m.decimals))))
}

func (m subjectsModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("New Subject")
		switch m.formType {
		case "entry":
			title = titleStyle.Render("Add / Update Entry")
		case "total":
			title = titleStyle.Render("Total Mark")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View())
		return panelStyle.Width(w).Render(content)
	}

	if m.engine == nil {
		content := lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Subjects"),
			"",
			mutedStyle.Render("No year loaded. Press y to choose a year."),
		)
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render(fmt.Sprintf("Subjects — %s %s", m.semester, m.engine.Store().Year()))

	if len(m.rows) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render(fmt.Sprintf("No subjects in %s. Press n to add one.", m.semester)),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	// Table header, including the reserved Unweighted Mark column.
	header := mutedStyle.Render(fmt.Sprintf("  %-12s %-22s %-22s %-10s %-9s %-7s %-6s",
		"Code", "Subject Name", "Assessment", "Unweighted", "Weighted", "Weight", "Total"))
	rows = append(rows, header)

	for i, row := range m.rows {
		cursor := "  "
		style := normalItemStyle
		if row.Synced {
			style = syncedItemStyle
		}
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		line := fmt.Sprintf("%s%-12s %-22s %-22s %-10s %-9s %-7s %-6s",
			cursor,
			truncate(row.SubjectCode, 12),
			truncate(row.SubjectName, 22),
			truncate(row.Assessment, 22),
			row.UnweightedMark,
			row.WeightedMark,
			row.MarkWeight,
			row.TotalMark,
		)
		rows = append(rows, style.Render(line))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: subject  a: entry  d: del entry  D: del subject  c: exam  t: total  [/]: semester"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
