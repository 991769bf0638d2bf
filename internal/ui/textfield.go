package ui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/idilsaglam/tadasync/internal/input"
)

// TextField is a labeled single-line input. The value is not pushed anywhere;
// owners pull it through Ref when the form is submitted.
type TextField struct {
	Label string
	Input textinput.Model
}

func NewTextField(label, placeholder string) *TextField {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = placeholder
	ti.CharLimit = 200
	return &TextField{Label: label, Input: ti}
}

// Ref is a handle on the field's current value.
func (f *TextField) Ref() input.Source { return input.NewRef(&f.Input) }

func (f *TextField) Focus() tea.Cmd { return f.Input.Focus() }
func (f *TextField) Blur()          { f.Input.Blur() }

func (f *TextField) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.Input, cmd = f.Input.Update(msg)
	return cmd
}

func (f *TextField) View() string {
	label := current.Muted.Render(f.Label)
	if f.Input.Focused() {
		label = current.Accent.Render(f.Label)
	}
	return label + "\n" + f.Input.View()
}
