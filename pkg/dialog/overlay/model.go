// Package overlay hosts a dialog.Provider inside a bubbletea program.
//
// The host model does not own the screen. The application keeps its own
// model, forwards messages to Model.Update first and wraps its view with
// Model.View:
//
//	func (a app) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
//	    if cmd, handled := a.dialogs.Update(msg); handled {
//	        return a, cmd
//	    }
//	    ...
//	}
//
//	func (a app) View() string {
//	    return a.dialogs.View(a.render())
//	}
package overlay

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/marcus/tdialog/pkg/dialog"
)

// ChangedMsg reports that the provider's set of dialogs changed.
type ChangedMsg struct{}

// Updater is implemented by nodes that react to messages.
type Updater interface {
	Update(msg tea.Msg) tea.Cmd
}

// Initializer is implemented by nodes that need a command once mounted.
type Initializer interface {
	Init() tea.Cmd
}

// Model renders a provider's dialogs and routes input to them.
type Model struct {
	provider *dialog.Provider
	events   <-chan struct{}
	stop     func()

	width   int
	height  int
	started map[int]bool

	cascade      int
	closingStyle lipgloss.Style
}

// Option configures a Model.
type Option func(*Model)

// WithCascade offsets each stacked dialog by n columns (and n/2 rows) from
// the one below it.
func WithCascade(n int) Option {
	return func(m *Model) {
		if n >= 0 {
			m.cascade = n
		}
	}
}

// WithClosingStyle sets the style used for dialogs in their grace delay.
func WithClosingStyle(s lipgloss.Style) Option {
	return func(m *Model) {
		m.closingStyle = s
	}
}

// New creates a host for p and subscribes to its changes.
func New(p *dialog.Provider, opts ...Option) *Model {
	events, stop := p.Subscribe()
	m := &Model{
		provider:     p,
		events:       events,
		stop:         stop,
		started:      make(map[int]bool),
		cascade:      2,
		closingStyle: lipgloss.NewStyle().Faint(true),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Provider returns the hosted provider.
func (m *Model) Provider() *dialog.Provider {
	return m.provider
}

// Init starts listening for provider changes.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.sync(), m.listen())
}

// Close stops listening for provider changes. It does not close the provider.
func (m *Model) Close() {
	m.stop()
}

func (m *Model) listen() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		if _, ok := <-events; !ok {
			return nil
		}
		return ChangedMsg{}
	}
}

// Active returns the topmost dialog that still accepts input.
func (m *Model) Active() (dialog.Instance, bool) {
	snap := m.provider.Snapshot()
	for i := len(snap) - 1; i >= 0; i-- {
		if snap[i].State != dialog.StateClosing {
			return snap[i], true
		}
	}
	return dialog.Instance{}, false
}

// Update routes msg to the dialogs. Key and mouse input goes to the active
// dialog only and is reported as handled; everything else is broadcast and
// left for the application as well.
func (m *Model) Update(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case ChangedMsg:
		return tea.Batch(m.sync(), m.listen()), true

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m.broadcast(msg), false

	case tea.KeyMsg, tea.MouseMsg:
		in, ok := m.Active()
		if !ok {
			return nil, false
		}
		if u, ok := in.Node.(Updater); ok {
			return u.Update(msg), true
		}
		return nil, true
	}
	return m.broadcast(msg), false
}

// sync runs Init for newly mounted nodes and forgets removed ones.
func (m *Model) sync() tea.Cmd {
	snap := m.provider.Snapshot()
	present := make(map[int]bool, len(snap))
	var cmds []tea.Cmd
	for _, in := range snap {
		present[in.Key] = true
		if m.started[in.Key] {
			continue
		}
		m.started[in.Key] = true
		if init, ok := in.Node.(Initializer); ok {
			cmds = append(cmds, init.Init())
		}
	}
	for key := range m.started {
		if !present[key] {
			delete(m.started, key)
		}
	}
	return tea.Batch(cmds...)
}

func (m *Model) broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for _, in := range m.provider.Snapshot() {
		if u, ok := in.Node.(Updater); ok {
			cmds = append(cmds, u.Update(msg))
		}
	}
	return tea.Batch(cmds...)
}

// View draws every mounted dialog over base in key order. Dialogs waiting
// out their grace delay are drawn with the closing style.
func (m *Model) View(base string) string {
	snap := m.provider.Snapshot()
	if len(snap) == 0 {
		return base
	}
	width, height := m.width, m.height
	if width <= 0 {
		width = lipgloss.Width(base)
	}
	if height <= 0 {
		height = lipgloss.Height(base)
	}

	out := base
	for i, in := range snap {
		view := in.Node.View()
		if in.State == dialog.StateClosing {
			view = m.closingStyle.Render(ansi.Strip(view))
		}
		out = Center(out, view, width, height, i*m.cascade, i*m.cascade/2)
	}
	return out
}

// Await turns a pending dialog result into a command. wrap builds the
// message delivered to the application.
func Await[R any](fut *dialog.Future[dialog.Result[R]], wrap func(dialog.Result[R]) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		res, err := fut.Wait(context.Background())
		if err != nil {
			return nil
		}
		return wrap(res)
	}
}

// Open mounts render on p right away and returns a command that delivers
// the result through wrap.
func Open[R any](p *dialog.Provider, render dialog.Renderer[R], wrap func(dialog.Result[R]) tea.Msg) tea.Cmd {
	return Await(dialog.Open(p, render), wrap)
}
