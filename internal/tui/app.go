package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/unimarks/internal/export"
	"github.com/sadopc/unimarks/internal/marks"
	"github.com/sadopc/unimarks/internal/store"
)

// App is the root Bubble Tea model.
type App struct {
	store   *store.Store
	dataDir string
	year    string
	engine  *marks.Engine
	width   int
	height  int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	yearPicking bool
	yearCursor  int
	yearList    []string

	// Semester-init form shown when a year has no document yet.
	initActive    bool
	initForm      *huh.Form
	initSemesters *[]string
	pendingYear   string

	overview overviewModel
	subjects subjectsModel
	reports  reportsModel
	settings settingsModel

	help   help.Model
	status string
}

func NewApp(s *store.Store, dataDir, year string) App {
	h := help.New()
	h.ShowAll = false

	semester := s.SettingOr(store.KeyDefaultSemester, marks.Autumn)
	decimals := s.SettingInt(store.KeyDecimals, 2)
	initSems := []string{}

	return App{
		store:         s,
		dataDir:       dataDir,
		year:          year,
		activeView:    viewOverview,
		overview:      newOverviewModel(s, decimals),
		subjects:      newSubjectsModel(s, semester, decimals),
		reports:       newReportsModel(s, semester, decimals),
		settings:      newSettingsModel(s),
		initSemesters: &initSems,
		help:          h,
	}
}

func (a App) Init() tea.Cmd {
	return a.loadYear(a.year)
}

func (a App) capMode() marks.CapMode {
	if a.store.SettingOr(store.KeyWeightCap, "off") == "warn" {
		return marks.CapWarn
	}
	return marks.CapOff
}

func (a App) loadYear(year string) tea.Cmd {
	dir, capMode := a.dataDir, a.capMode()
	return func() tea.Msg {
		ys, err := marks.OpenYear(dir, year)
		if err != nil {
			if errors.Is(err, marks.ErrNotFound) {
				return yearMissingMsg{year: year}
			}
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		engine := marks.NewEngine(ys)
		engine.SetCapMode(capMode)
		return yearOpenedMsg{engine: engine}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.overview.setSize(a.width, contentHeight)
		a.subjects.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case yearOpenedMsg:
		a.engine = msg.engine
		a.year = msg.engine.Store().Year()
		a.overview.setEngine(msg.engine)
		a.subjects.setEngine(msg.engine)
		a.reports.setEngine(msg.engine)
		a.status = "Opened year " + a.year
		return a, tea.Batch(
			a.overview.refresh(),
			a.subjects.refresh(),
			a.reports.refresh(),
		)

	case yearMissingMsg:
		return a.showInitForm(msg.year)

	case settingsSavedMsg:
		// Cap mode and decimals may have changed.
		decimals := a.store.SettingInt(store.KeyDecimals, 2)
		a.overview.decimals = decimals
		a.subjects.decimals = decimals
		a.reports.decimals = decimals
		if a.engine != nil {
			a.engine.SetCapMode(a.capMode())
		}
		a.status = "Settings saved"
		return a, nil

	case statusMsg:
		a.status = msg.text
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.exportPicking = false
		return a, nil

	case tea.KeyMsg:
		if a.initActive && a.initForm != nil {
			return a.updateInitForm(msg)
		}
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}
		if a.yearPicking {
			return a.updateYearPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Year):
			a.yearPicking = true
			a.yearList = yearChoices()
			a.yearCursor = 0
			for i, y := range a.yearList {
				if y == a.year {
					a.yearCursor = i
				}
			}
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewOverview
			return a, a.overview.refresh()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewSubjects
			return a, a.subjects.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewReports
			return a, a.reports.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % 4
			return a, a.refreshCurrentView()
		}
	}

	if a.initActive && a.initForm != nil {
		return a.updateInitForm(msg)
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewOverview:
		a.overview, cmd = a.overview.update(msg)
	case viewSubjects:
		a.subjects, cmd = a.subjects.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewSubjects:
		return a.subjects.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewOverview:
		return a.overview.refresh()
	case viewSubjects:
		return a.subjects.refresh()
	case viewReports:
		return a.reports.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

// ============================================================
// Semester-init form
// ============================================================

func (a App) showInitForm(year string) (tea.Model, tea.Cmd) {
	a.pendingYear = year
	*a.initSemesters = marks.SemesterNames

	var options []huh.Option[string]
	for _, name := range marks.SemesterNames {
		options = append(options, huh.NewOption(name, name).Selected(true))
	}

	a.initForm = huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title(fmt.Sprintf("No records for %s yet. Which semesters should it have?", year)).
				Options(options...).
				Value(a.initSemesters),
		),
	).WithShowHelp(true).WithShowErrors(true)

	a.initActive = true
	return a, a.initForm.Init()
}

func (a App) updateInitForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			a.initActive = false
			a.initForm = nil
			a.status = "Year creation cancelled"
			return a, nil
		}
	}

	form, cmd := a.initForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.initForm = f
	}

	if a.initForm.State == huh.StateCompleted {
		a.initActive = false
		a.initForm = nil
		semesters := *a.initSemesters
		if len(semesters) == 0 {
			semesters = marks.SemesterNames
		}
		return a, a.createYear(a.pendingYear, semesters)
	}

	return a, cmd
}

func (a App) createYear(year string, semesters []string) tea.Cmd {
	dir, capMode := a.dataDir, a.capMode()
	return func() tea.Msg {
		ys, err := marks.InitYear(dir, year, semesters)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		engine := marks.NewEngine(ys)
		engine.SetCapMode(capMode)
		return yearOpenedMsg{engine: engine}
	}
}

// ============================================================
// Year picker
// ============================================================

func yearChoices() []string {
	now := time.Now().Year()
	var years []string
	for y := now - 2; y <= now+1; y++ {
		years = append(years, strconv.Itoa(y))
	}
	return years
}

func (a App) updateYearPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.yearCursor > 0 {
			a.yearCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.yearCursor < len(a.yearList)-1 {
			a.yearCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.yearPicking = false
		return a, a.loadYear(a.yearList[a.yearCursor])
	case key.Matches(msg, keys.Back):
		a.yearPicking = false
	}
	return a, nil
}

func (a App) renderYearPicker() string {
	title := titleStyle.Render("Academic Year")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, y := range a.yearList {
		cursor := "  "
		style := normalItemStyle
		if i == a.yearCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		label := y
		if y == a.year {
			label += mutedStyle.Render("  (current)")
		}
		rows = append(rows, style.Render(cursor+label))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: open  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// ============================================================
// Export picker
// ============================================================

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	formats := []string{"CSV", "JSON"}
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < 1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	if a.engine == nil {
		return report("No year loaded, nothing to export")
	}
	engine, year, semester := a.engine, a.year, a.subjects.semester
	return func() tea.Msg {
		rows, err := engine.ViewData(semester)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		home, _ := os.UserHomeDir()
		dateStr := time.Now().Format("2006-01-02")
		base := fmt.Sprintf("unimarks-%s-%s-%s", year, semester, dateStr)

		var path string
		if format == 0 {
			path = filepath.Join(home, base+".csv")
			if err := export.ToCSV(rows, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(home, base+".json")
			if err := export.ToJSON(year, semester, rows, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}

// ============================================================
// View
// ============================================================

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewOverview:
		content = a.overview.view()
	case viewSubjects:
		content = a.subjects.view()
	case viewReports:
		content = a.reports.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	// Overlays
	if a.initActive && a.initForm != nil {
		content = activePanelStyle.Width(a.width - 4).Render(a.initForm.View())
	} else if a.exportPicking {
		content = a.renderExportPicker()
	} else if a.yearPicking {
		content = a.renderYearPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("unimarks")
	yearInfo := mutedStyle.Render(fmt.Sprintf(" %s · %s", a.year, a.subjects.semester))

	left := title + yearInfo
	gap := a.width - lipgloss.Width(left) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		status = mutedStyle.Render(" " + a.status)
	}

	left := footerStyle.Render(helpView)
	right := status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}
