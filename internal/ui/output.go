package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/idilsaglam/tadasync/internal/model"
)

func OK(w io.Writer, msg string) {
	fmt.Fprintln(w, current.Success.Render(current.SymOK+" "+msg))
}

func Fail(w io.Writer, msg string) {
	fmt.Fprintln(w, current.Error.Render(current.SymFail+" "+msg))
}

// PanelString frames lines with the theme border.
func PanelString(lines []string) string {
	border := lipgloss.NewStyle().
		Border(current.Border).
		BorderForeground(current.Frame).
		Padding(0, 1)
	return border.Render(strings.Join(lines, "\n"))
}

func Panel(w io.Writer, lines []string) {
	fmt.Fprintln(w, PanelString(lines))
}

// FormatTime renders an UpdatedAt stamp in local time.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// ItemLines renders items as numbered lines for the plain list view.
func ItemLines(items []model.Item) []string {
	if len(items) == 0 {
		return []string{current.Muted.Render("no items")}
	}
	out := make([]string, 0, len(items)*2)
	for i, it := range items {
		name := it.Name
		if len(name) > 60 {
			name = name[:57] + "..."
		}
		out = append(out, fmt.Sprintf("%s %s %s  %s",
			current.Muted.Render(fmt.Sprintf("%2d.", i+1)),
			current.Accent.Render(current.SymItem),
			current.Title.Render(name),
			current.Muted.Render(FormatTime(it.UpdatedAt)),
		))
		out = append(out, "     "+it.Description)
	}
	return out
}

// Header is the list title with the item count.
func Header(user string, n int) string {
	h := fmt.Sprintf("%s  %s %d", current.Title.Render("Todos"), current.Accent.Render("Total"), n)
	if user != "" {
		h = current.Title.Render("Hello, "+user) + "   " + h
	}
	return h
}
