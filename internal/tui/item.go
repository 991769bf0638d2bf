package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/idilsaglam/tadasync/internal/model"
	"github.com/idilsaglam/tadasync/internal/ui"
)

// listItem adapts model.Item to bubbles/list.Item
type listItem struct {
	item model.Item
}

func (i listItem) Title() string       { return i.item.Name }
func (i listItem) Description() string { return i.item.Description }
func (i listItem) FilterValue() string { return i.item.Name + " " + i.item.Description }

func toListItems(items []model.Item) []list.Item {
	out := make([]list.Item, 0, len(items))
	for _, it := range items {
		out = append(out, listItem{item: it})
	}
	return out
}

// Custom delegate: name and timestamp on the first line, description below.
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 2 }
func (d itemDelegate) Spacing() int                              { return 1 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	t := ui.Current()

	prefix := "  "
	name := t.Title.Render(it.item.Name)
	if index == m.Index() {
		prefix = t.Selected.Render("> ")
		name = t.Selected.Render(it.item.Name)
	}

	fmt.Fprintf(w, "%s%s  %s\n", prefix, name, t.Muted.Render(ui.FormatTime(it.item.UpdatedAt)))
	fmt.Fprintf(w, "    %s", it.item.Description)
}
