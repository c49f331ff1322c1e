package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/unimarks/internal/marks"
	"github.com/sadopc/unimarks/internal/store"
)

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	defaultSemester *string
	weightCap       *string
	decimals        *string
	dataDir         *string
}

func newSettingsModel(s *store.Store) settingsModel {
	ds, wc, dec, dd := "", "", "", ""
	return settingsModel{
		store:           s,
		defaultSemester: &ds,
		weightCap:       &wc,
		decimals:        &dec,
		dataDir:         &dd,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, _ := s.store.GetAllSettings()
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.NewSubject):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.defaultSemester = s.store.SettingOr(store.KeyDefaultSemester, marks.Autumn)
	*s.weightCap = s.store.SettingOr(store.KeyWeightCap, "off")
	*s.decimals = s.store.SettingOr(store.KeyDecimals, "2")
	*s.dataDir = s.store.SettingOr(store.KeyDataDir, "")

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Default semester").
				Options(
					huh.NewOption(marks.Autumn, marks.Autumn),
					huh.NewOption(marks.Spring, marks.Spring),
					huh.NewOption(marks.Annual, marks.Annual),
				).Value(s.defaultSemester),
			huh.NewSelect[string]().Title("Weight cap at 100%").
				Options(
					huh.NewOption("Off", "off"),
					huh.NewOption("Warn", "warn"),
				).Value(s.weightCap),
			huh.NewInput().Title("Mark decimal places").Value(s.decimals).
				Validate(func(v string) error {
					n, err := strconv.Atoi(strings.TrimSpace(v))
					if err != nil || n < 0 || n > 6 {
						return fmt.Errorf("enter a number between 0 and 6")
					}
					return nil
				}),
			huh.NewInput().Title("Data directory (empty for default)").Value(s.dataDir),
		),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.saveSettings()
		return s, tea.Batch(
			s.refresh(),
			func() tea.Msg { return settingsSavedMsg{} },
		)
	}

	return s, cmd
}

func (s settingsModel) saveSettings() {
	s.store.SetSetting(store.KeyDefaultSemester, *s.defaultSemester)
	s.store.SetSetting(store.KeyWeightCap, *s.weightCap)
	s.store.SetSetting(store.KeyDecimals, strings.TrimSpace(*s.decimals))
	s.store.SetSetting(store.KeyDataDir, strings.TrimSpace(*s.dataDir))
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	switch k {
	case store.KeyDataDir:
		if v == "" {
			return "(default)"
		}
	case store.KeyWeightCap:
		if v == "warn" {
			return "warn when weights exceed 100%"
		}
		return "off"
	}
	return v
}
