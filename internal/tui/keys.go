package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Add, Delete, Refresh, SignOut, Next, Submit, Cancel, Quit key.Binding
}

var keys = keyMap{
	Add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	Delete:  key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	SignOut: key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "sign out")),
	Next:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
	Submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "create")),
	Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Quit:    key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "quit")),
}

func (k keyMap) listHelp() []key.Binding {
	return []key.Binding{k.Add, k.Delete, k.Refresh, k.SignOut}
}
