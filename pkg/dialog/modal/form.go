package modal

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/marcus/tdialog/pkg/dialog"
)

// Form hosts a huh form as a dialog. build receives a pointer to a fresh
// result value and binds the form's fields to it; a completed form resolves
// with that value, an aborted one (Esc or ctrl+c) cancels.
func Form[R any](title string, build func(value *R) *huh.Form, opts ...Option) dialog.Renderer[R] {
	cfg := newConfig(opts)
	return func(h dialog.Handles[R]) dialog.Node {
		value := new(R)
		form := build(value).
			WithTheme(formTheme(cfg.variant)).
			WithWidth(cfg.contentWidth()).
			WithShowHelp(cfg.hints)
		// Embedded forms must not quit the host program.
		form.SubmitCmd = nil
		form.CancelCmd = nil
		return &formNode[R]{h: h, cfg: cfg, title: title, form: form, value: value}
	}
}

type formNode[R any] struct {
	h     dialog.Handles[R]
	cfg   config
	title string
	form  *huh.Form
	value *R
	done  bool
}

func (n *formNode[R]) Init() tea.Cmd {
	return n.form.Init()
}

func (n *formNode[R]) Update(msg tea.Msg) tea.Cmd {
	if n.done {
		return nil
	}
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// The dialog keeps its own width.
		return nil
	case tea.KeyMsg:
		if msg.String() == "esc" {
			n.done = true
			n.h.OnCancel()
			return nil
		}
	}

	model, cmd := n.form.Update(msg)
	if f, ok := model.(*huh.Form); ok {
		n.form = f
	}

	switch n.form.State {
	case huh.StateCompleted:
		n.done = true
		n.h.OnSuccess(*n.value)
	case huh.StateAborted:
		n.done = true
		n.h.OnCancel()
	}
	return cmd
}

func (n *formNode[R]) View() string {
	return n.cfg.card(n.title, n.form.View(), "")
}
