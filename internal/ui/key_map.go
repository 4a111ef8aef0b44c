package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI. Each view picks the
// subset it renders in its help line.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	enter   key.Binding
	back    key.Binding
	yes     key.Binding
	no      key.Binding
	more    key.Binding
	less    key.Binding
	faster  key.Binding
	slower  key.Binding
	adult   key.Binding
	cancel  key.Binding
	restart key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		yes: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "start"),
		),
		no: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n", "go back"),
		),
		more: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+/-", "movies"),
		),
		less: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "fewer movies"),
		),
		faster: key.NewBinding(
			key.WithKeys(">", "."),
			key.WithHelp("</>", "workers"),
		),
		slower: key.NewBinding(
			key.WithKeys("<", ","),
			key.WithHelp("<", "fewer workers"),
		),
		adult: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "adult column"),
		),
		cancel: key.NewBinding(
			key.WithKeys("c", "esc"),
			key.WithHelp("c", "cancel"),
		),
		restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "new harvest"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements [help.KeyMap]
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.up, k.down, k.enter, k.quit}
}

// FullHelp implements [help.KeyMap]
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.more, k.faster, k.adult},
		{k.yes, k.no, k.cancel, k.restart, k.quit},
	}
}
