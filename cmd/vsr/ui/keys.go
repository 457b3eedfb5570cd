package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next         key.Binding
	Previous     key.Binding
	NextHeading  key.Binding
	PrevHeading  key.Binding
	NextLandmark key.Binding
	PrevLandmark key.Binding
	NextLink     key.Binding
	PrevLink     key.Binding
	Act          key.Binding
	Command      key.Binding
	Help         key.Binding
	Quit         key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next:         key.NewBinding(key.WithKeys("down", "j", "n"), key.WithHelp("↓/j", "next")),
		Previous:     key.NewBinding(key.WithKeys("up", "k", "p"), key.WithHelp("↑/k", "previous")),
		NextHeading:  key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "next heading")),
		PrevHeading:  key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "previous heading")),
		NextLandmark: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "next landmark")),
		PrevLandmark: key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "previous landmark")),
		NextLink:     key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "next link")),
		PrevLink:     key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "previous link")),
		Act:          key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "activate")),
		Command:      key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "run command")),
		Help:         key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Previous, k.NextHeading, k.Act, k.Command, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Previous, k.Act},
		{k.NextHeading, k.PrevHeading, k.NextLandmark, k.PrevLandmark},
		{k.NextLink, k.PrevLink, k.Command},
		{k.Help, k.Quit},
	}
}
