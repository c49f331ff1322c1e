package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	NewSubject    key.Binding
	Entry         key.Binding
	DeleteEntry   key.Binding
	DeleteSubject key.Binding
	Calc          key.Binding
	Total         key.Binding
	PrevSemester  key.Binding
	NextSemester  key.Binding
	Year          key.Binding
	Export        key.Binding
	Tab1          key.Binding
	Tab2          key.Binding
	Tab3          key.Binding
	Tab4          key.Binding
	Tab           key.Binding
	Help          key.Binding
	Enter         key.Binding
	Back          key.Binding
	Up            key.Binding
	Down          key.Binding
	Left          key.Binding
	Right         key.Binding
	Quit          key.Binding
}

var keys = keyMap{
	NewSubject: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new subject"),
	),
	Entry: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "add/update entry"),
	),
	DeleteEntry: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete entry"),
	),
	DeleteSubject: key.NewBinding(
		key.WithKeys("D"),
		key.WithHelp("D", "delete subject"),
	),
	Calc: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "exam mark"),
	),
	Total: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "total mark"),
	),
	PrevSemester: key.NewBinding(
		key.WithKeys("["),
		key.WithHelp("[", "prev semester"),
	),
	NextSemester: key.NewBinding(
		key.WithKeys("]"),
		key.WithHelp("]", "next semester"),
	),
	Year: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "year"),
	),
	Export: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "export"),
	),
	Tab1: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "overview"),
	),
	Tab2: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "subjects"),
	),
	Tab3: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "reports"),
	),
	Tab4: key.NewBinding(
		key.WithKeys("4"),
		key.WithHelp("4", "settings"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "left"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "right"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Entry, k.Calc, k.NewSubject, k.NextSemester, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NewSubject, k.Entry, k.Total},
		{k.DeleteEntry, k.DeleteSubject, k.Calc},
		{k.PrevSemester, k.NextSemester, k.Year, k.Export},
		{k.Tab1, k.Tab2, k.Tab3, k.Tab4},
		{k.Up, k.Down, k.Enter, k.Back, k.Quit},
	}
}
