// Package demo is a small file browser that drives every built-in dialog
// through a dialog.Provider hosted in a bubbletea program.
package demo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/marcus/tdialog/pkg/dialog"
	"github.com/marcus/tdialog/pkg/dialog/modal"
	"github.com/marcus/tdialog/pkg/dialog/overlay"
)

const maxHistory = 8

// ErrNameTaken is returned by the rename backend for an existing name.
var ErrNameTaken = errors.New("name already exists")

// Options configures the demo.
type Options struct {
	GraceDelay    time.Duration
	Width         int
	MarkdownStyle string
	Logger        *slog.Logger

	// Latency delays simulated backend calls.
	Latency time.Duration
	// Copy writes text to the clipboard. Defaults to the system clipboard.
	Copy func(string) error
}

// Item is an entry in the demo's file list.
type Item struct {
	Name   string
	Kind   string
	Urgent bool
}

// NewItem is the value bound to the "new item" form.
type NewItem struct {
	Name   string
	Kind   string
	Urgent bool
}

type (
	deleteMsg    struct{ res dialog.Result[bool] }
	renameAskMsg struct{ res dialog.Result[bool] }
	renameMsg    struct{ res dialog.Result[string] }
	openMsg      struct{ res dialog.Result[string] }
	createMsg    struct{ res dialog.Result[NewItem] }
	sinkErrMsg   struct{ err error }
)

// Model is the demo's root bubbletea model.
type Model struct {
	provider *dialog.Provider
	dialogs  *overlay.Model
	errs     chan error
	opts     Options
	log      *slog.Logger

	items    []Item
	cursor   int
	history  []string
	status   string
	width    int
	height   int
	quitting bool
}

// New builds the demo and its provider.
func New(opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Width <= 0 {
		opts.Width = 56
	}
	if opts.Copy == nil {
		opts.Copy = clipboard.WriteAll
	}

	errs := make(chan error, 16)
	log := opts.Logger.With("component", "demo")
	provider := dialog.NewProvider(
		dialog.WithGraceDelay(opts.GraceDelay),
		dialog.WithLogger(opts.Logger),
		dialog.WithErrorSink(func(err error) {
			log.Warn("async dialog failure", "err", err)
			select {
			case errs <- err:
			default:
			}
		}),
	)

	return Model{
		provider: provider,
		dialogs:  overlay.New(provider),
		errs:     errs,
		opts:     opts,
		log:      log,
		items: []Item{
			{Name: "README.md", Kind: "note"},
			{Name: "draft.md", Kind: "note"},
			{Name: "release-checklist", Kind: "task", Urgent: true},
			{Name: "ideas.txt", Kind: "note"},
		},
		status: "ready",
	}
}

// Provider returns the demo's dialog provider.
func (m Model) Provider() *dialog.Provider {
	return m.provider
}

// Close stops the overlay and the provider.
func (m Model) Close() error {
	m.dialogs.Close()
	return m.provider.Close()
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.dialogs.Init(), m.waitForSinkErr())
}

func (m Model) waitForSinkErr() tea.Cmd {
	errs := m.errs
	return func() tea.Msg {
		return sinkErrMsg{err: <-errs}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if cmd, handled := m.dialogs.Update(msg); handled {
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case sinkErrMsg:
		m.status = "error: " + msg.err.Error()
		return m, m.waitForSinkErr()

	case deleteMsg:
		if !msg.res.Success {
			m.record("delete cancelled")
			return m, nil
		}
		if item, ok := m.selected(); ok {
			m.items = slices.Delete(m.items, m.cursor, m.cursor+1)
			m.cursor = min(m.cursor, max(len(m.items)-1, 0))
			m.record("deleted " + item.Name)
		}
		return m, nil

	case renameAskMsg:
		item, ok := m.selected()
		if !msg.res.Success || !ok {
			m.record("rename cancelled")
			return m, nil
		}
		// The prompt opens while the confirm is still fading out.
		return m, overlay.Open(m.provider, modal.Prompt("Rename "+item.Name,
			modal.WithWidth(m.opts.Width),
			modal.WithValue(item.Name),
			modal.WithCharLimit(64),
			modal.WithValidate(func(s string) error {
				if s == "" {
					return errors.New("name is required")
				}
				return nil
			}),
			modal.WithSubmit(m.renameBackend(item.Name), 5*time.Second),
		), func(r dialog.Result[string]) tea.Msg { return renameMsg{r} })

	case renameMsg:
		if !msg.res.Success {
			m.record("rename cancelled")
			return m, nil
		}
		if item, ok := m.selected(); ok {
			m.record(fmt.Sprintf("renamed %s to %s", item.Name, msg.res.Value))
			m.items[m.cursor].Name = msg.res.Value
		}
		return m, nil

	case openMsg:
		if !msg.res.Success {
			m.record("jump cancelled")
			return m, nil
		}
		for i, it := range m.items {
			if it.Name == msg.res.Value {
				m.cursor = i
			}
		}
		m.record("jumped to " + msg.res.Value)
		return m, nil

	case createMsg:
		if !msg.res.Success {
			m.record("create cancelled")
			return m, nil
		}
		v := msg.res.Value
		m.items = append(m.items, Item{Name: v.Name, Kind: v.Kind, Urgent: v.Urgent})
		m.record("created " + v.Name)
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case "d":
		item, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, overlay.Open(m.provider, modal.Confirm("Delete "+item.Name+"?",
			"The file is removed from the list. **This cannot be undone.**",
			modal.WithWidth(m.opts.Width),
			modal.WithVariant(modal.VariantDanger),
			modal.WithLabels("Delete", "Keep"),
			modal.WithMarkdown(m.opts.MarkdownStyle),
		), func(r dialog.Result[bool]) tea.Msg { return deleteMsg{r} })

	case "r":
		item, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, overlay.Open(m.provider, modal.Confirm("Rename",
			"Rename "+item.Name+"?",
			modal.WithWidth(m.opts.Width),
		), func(r dialog.Result[bool]) tea.Msg { return renameAskMsg{r} })

	case "/":
		items := make([]modal.ListItem, 0, len(m.items))
		for _, it := range m.items {
			items = append(items, modal.ListItem{ID: it.Name, Label: it.Name})
		}
		return m, overlay.Open(m.provider, modal.Select("Jump to", items,
			modal.WithWidth(m.opts.Width),
		), func(r dialog.Result[string]) tea.Msg { return openMsg{r} })

	case "n":
		return m, overlay.Open(m.provider, modal.Form("New item", newItemForm,
			modal.WithWidth(m.opts.Width),
		), func(r dialog.Result[NewItem]) tea.Msg { return createMsg{r} })

	case "y":
		if len(m.history) == 0 {
			return m, nil
		}
		if err := m.opts.Copy(m.history[len(m.history)-1]); err != nil {
			m.status = "copy failed: " + err.Error()
		} else {
			m.status = "copied"
		}
	}
	return m, nil
}

func newItemForm(v *NewItem) *huh.Form {
	v.Kind = "note"
	return huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Name").
			Value(&v.Name).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("name is required")
				}
				return nil
			}),
		huh.NewSelect[string]().
			Title("Kind").
			Options(huh.NewOptions("note", "task")...).
			Value(&v.Kind),
		huh.NewConfirm().
			Title("Urgent?").
			Value(&v.Urgent),
	))
}

// renameBackend simulates a server-side rename that rejects names already
// in the list.
func (m Model) renameBackend(current string) modal.SubmitFunc {
	taken := make(map[string]bool, len(m.items))
	for _, it := range m.items {
		if it.Name != current {
			taken[it.Name] = true
		}
	}
	latency := m.opts.Latency
	log := m.log
	return func(ctx context.Context, name string) (string, error) {
		log.Debug("rename requested", "from", current, "to", name)
		select {
		case <-time.After(latency):
		case <-ctx.Done():
			return "", fmt.Errorf("rename %s: %w", current, ctx.Err())
		}
		if taken[name] {
			return "", fmt.Errorf("rename to %q: %w", name, ErrNameTaken)
		}
		return name, nil
	}
}

func (m Model) selected() (Item, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return Item{}, false
	}
	return m.items[m.cursor], true
}

func (m *Model) record(entry string) {
	m.log.Info("dialog resolved", "outcome", entry)
	m.status = entry
	m.history = append(m.history, entry)
	if len(m.history) > maxHistory {
		m.history = m.history[len(m.history)-maxHistory:]
	}
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("45")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	urgentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.dialogs.View(m.render())
}

func (m Model) render() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("tdialog demo"))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(mutedStyle.Render("  (empty)"))
		b.WriteString("\n")
	}
	for i, it := range m.items {
		line := fmt.Sprintf("%-24s %s", it.Name, mutedStyle.Render(it.Kind))
		if it.Urgent {
			line += " " + urgentStyle.Render("!")
		}
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> ") + line)
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("history"))
	b.WriteString("\n")
	for _, h := range m.history {
		b.WriteString("  " + h + "\n")
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("status: %s · dialogs: %d\n", m.status, m.provider.Len()))
	b.WriteString(mutedStyle.Render("d delete · r rename · / jump · n new · y copy · q quit"))

	out := b.String()
	if m.width > 0 && m.height > 0 {
		out = lipgloss.Place(m.width, m.height, lipgloss.Left, lipgloss.Top, out)
	}
	return out
}
