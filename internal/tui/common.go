package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/unimarks/internal/marks"
)

// viewState represents the currently active view.
type viewState int

const (
	viewOverview viewState = iota
	viewSubjects
	viewReports
	viewSettings
)

var viewNames = []string{"Overview", "Subjects", "Reports", "Settings"}

// --- Messages ---

// yearOpenedMsg carries a freshly loaded year's engine.
type yearOpenedMsg struct {
	engine *marks.Engine
}

// yearMissingMsg signals that no document exists for the year yet; the app
// asks which semesters to create.
type yearMissingMsg struct {
	year string
}

type statusMsg struct {
	text    string
	isError bool
}

type settingsSavedMsg struct{}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func report(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

func reportError(err error) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true} }
}

// formatFixed renders a mark with the configured display precision.
func formatFixed(v float64, decimals int) string {
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// entryPrefill extracts add-entry form defaults from a view row.
// Placeholder literals are dropped and the weight loses its % suffix.
func entryPrefill(row marks.Row) (assessment, weighted, weight string) {
	if row.Assessment == marks.NoAssignments || row.Assessment == marks.SyncedSubject {
		return "", "", ""
	}
	return row.Assessment, row.WeightedMark, strings.TrimSuffix(row.MarkWeight, "%")
}

// parseMark coerces form text to a number; empty means 0.
func parseMark(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	return v, nil
}
