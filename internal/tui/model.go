// Package tui is the interactive view over a todo.Controller.
//
// Every remote operation runs as a tea.Cmd. Field values are read and the
// form is cleared inside Update; only the remote call and the refresh that
// follows happen off the event loop.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/idilsaglam/tadasync/internal/model"
	"github.com/idilsaglam/tadasync/internal/session"
	"github.com/idilsaglam/tadasync/internal/todo"
	"github.com/idilsaglam/tadasync/internal/ui"
)

const opTimeout = 30 * time.Second

type focus int

const (
	focusList focus = iota
	focusName
	focusDescription
)

// opDoneMsg reports the end of a remote operation and its trailing refresh.
type opDoneMsg struct {
	op  todo.Op
	err error
}

type Model struct {
	ctx  context.Context
	ctrl *todo.Controller
	sess *session.Session

	list    list.Model
	name    *ui.TextField
	desc    *ui.TextField
	spinner spinner.Model

	focus   focus
	pending int
	prompt  string

	width, height int
	signedOut     bool
}

func New(ctx context.Context, ctrl *todo.Controller, sess *session.Session) Model {
	l := list.New(toListItems(ctrl.Items()), itemDelegate{}, 76, 16)
	l.Title = "Todos"
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = ui.Current().Title
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("todo", "todos")
	l.AdditionalShortHelpKeys = keys.listHelp
	l.AdditionalFullHelpKeys = keys.listHelp

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = ui.Current().Accent

	return Model{
		ctx:     ctx,
		ctrl:    ctrl,
		sess:    sess,
		list:    l,
		name:    ui.NewTextField("Name", "Enter todo name"),
		desc:    ui.NewTextField("Description", "Enter todo description"),
		spinner: s,
		pending: 1, // the refresh issued by Init
		width:   80,
		height:  24,
	}
}

// SignedOut reports whether the program ended through sign-out.
func (m Model) SignedOut() bool { return m.signedOut }

// Init fetches the list once on mount.
func (m Model) Init() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, opTimeout)
		defer cancel()
		return opDoneMsg{op: todo.OpList, err: ctrl.Refresh(ctx)}
	})
}

// run starts op in the background and counts it as in flight.
func (m *Model) run(op todo.Op, f func(context.Context) error) tea.Cmd {
	m.pending++
	base := m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(base, opTimeout)
		defer cancel()
		return opDoneMsg{op: op, err: f(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case opDoneMsg:
		if m.pending > 0 {
			m.pending--
		}
		// Remote failures are logged by the controller; the view keeps the
		// last good snapshot.
		m.syncItems()
		return m, nil

	case spinner.TickMsg:
		if m.pending == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, keys.SignOut) {
			return m.signOut()
		}
		if m.focus != focusList {
			return m.updateForm(msg)
		}
		if m.list.FilterState() != list.Filtering {
			if next, cmd, ok := m.updateListKeys(msg); ok {
				return next, cmd
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, keys.Quit):
		if msg.String() == "esc" && m.list.FilterState() == list.FilterApplied {
			return m, nil, false
		}
		return m, tea.Quit, true

	case key.Matches(msg, keys.Add), key.Matches(msg, keys.Next):
		m.prompt = ""
		return m, m.setFocus(focusName), true

	case key.Matches(msg, keys.Refresh):
		return m, tea.Batch(m.spinner.Tick, m.run(todo.OpList, m.ctrl.Refresh)), true

	case key.Matches(msg, keys.Delete):
		li, ok := m.list.SelectedItem().(listItem)
		if !ok {
			return m, nil, true
		}
		item := li.item
		if item.ID == "" {
			m.prompt = "This todo has no id yet; refresh first"
			return m, nil, true
		}
		m.prompt = ""
		ctrl := m.ctrl
		return m, tea.Batch(m.spinner.Tick, m.run(todo.OpDelete, func(ctx context.Context) error {
			return ctrl.SubmitDelete(ctx, item)
		})), true
	}
	return m, nil, false
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Cancel):
		m.prompt = ""
		return m, m.setFocus(focusList)

	case key.Matches(msg, keys.Next):
		if m.focus == focusName {
			return m, m.setFocus(focusDescription)
		}
		return m, m.setFocus(focusName)

	case key.Matches(msg, keys.Submit):
		return m.submit()
	}

	if m.focus == focusName {
		return m, m.name.Update(msg)
	}
	return m, m.desc.Update(msg)
}

// signOut ends the program unless the token comes from the environment,
// which cannot be signed out from here.
func (m Model) signOut() (tea.Model, tea.Cmd) {
	if m.sess == nil || m.sess.Source == session.SourceEnv {
		m.prompt = "token is provided by " + session.EnvToken + " env var (nothing to sign out)"
		return m, nil
	}

	m.signedOut = true
	if m.sess.SignOut != nil {
		m.sess.SignOut()
	}
	return m, tea.Quit
}

// submit stages the form on the event loop and creates in the background.
func (m Model) submit() (tea.Model, tea.Cmd) {
	in, err := m.ctrl.Stage(m.name.Ref(), m.desc.Ref())
	if err != nil {
		var ve *todo.ValidationError
		if errors.As(err, &ve) {
			m.prompt = "Please enter a " + string(ve.Field)
			if ve.Field == todo.FieldName {
				return m, m.setFocus(focusName)
			}
			return m, m.setFocus(focusDescription)
		}
		return m, nil
	}

	m.prompt = ""
	focusCmd := m.setFocus(focusName)
	ctrl := m.ctrl
	create := m.run(todo.OpCreate, func(ctx context.Context) error {
		return ctrl.Create(ctx, in)
	})
	return m, tea.Batch(create, m.spinner.Tick, focusCmd)
}

func (m *Model) setFocus(f focus) tea.Cmd {
	m.focus = f
	m.name.Blur()
	m.desc.Blur()
	switch f {
	case focusName:
		return m.name.Focus()
	case focusDescription:
		return m.desc.Focus()
	}
	return nil
}

func (m *Model) syncItems() {
	items := m.ctrl.Items()
	sel := m.list.Index()
	m.list.SetItems(toListItems(items))
	if sel >= len(items) {
		sel = len(items) - 1
	}
	if sel >= 0 {
		m.list.Select(sel)
	}
}

func (m Model) View() string {
	t := ui.Current()

	user := ""
	if m.sess != nil {
		user = m.sess.User.Username
	}
	header := t.Title.Render("Hello, "+user) + "  " + t.Muted.Render("(ctrl+o sign out)")
	if m.pending > 0 {
		header += "  " + m.spinner.View() + t.Muted.Render(" syncing")
	}

	form := m.formView()
	listHeight := m.height - lipgloss.Height(header) - lipgloss.Height(form) - 4
	if listHeight < 4 {
		listHeight = 4
	}
	m.list.SetSize(m.width-4, listHeight)

	return ui.PanelString([]string{header, "", m.list.View(), form})
}

func (m Model) formView() string {
	t := ui.Current()

	bar := lipgloss.NewStyle().Border(t.Border).BorderForeground(t.Frame).Padding(0, 1)
	if m.focus != focusList {
		bar = bar.BorderForeground(lipgloss.Color("12"))
	}

	lines := []string{m.name.View(), m.desc.View()}
	if m.prompt != "" {
		lines = append(lines, t.Error.Render(m.prompt))
	} else if m.focus != focusList {
		lines = append(lines, t.Muted.Render("enter create • tab next field • esc back"))
	} else {
		lines = append(lines, t.Muted.Render("a add todo"))
	}
	return bar.Render(strings.Join(lines, "\n"))
}

// Items exposes what the list currently shows.
func (m Model) Items() []model.Item {
	out := make([]model.Item, 0, len(m.list.Items()))
	for _, it := range m.list.Items() {
		if li, ok := it.(listItem); ok {
			out = append(out, li.item)
		}
	}
	return out
}

// Run starts the program and blocks until it quits.
func Run(ctx context.Context, ctrl *todo.Controller, sess *session.Session) (Model, error) {
	p := tea.NewProgram(New(ctx, ctrl, sess), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return Model{}, err
	}
	fm, ok := final.(Model)
	if !ok {
		return Model{}, nil
	}
	return fm, nil
}
