package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toss key.Binding
	Quit key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Toss: key.NewBinding(
			key.WithKeys(" ", "enter", "t"),
			key.WithHelp("space", "toss"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toss, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
