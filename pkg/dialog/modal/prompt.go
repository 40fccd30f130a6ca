package modal

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/tdialog/pkg/dialog"
)

// Prompt asks for a line of text. Enter resolves with the trimmed input,
// or with the result of the WithSubmit function when one is configured.
func Prompt(title string, opts ...Option) dialog.Renderer[string] {
	cfg := newConfig(opts)
	return func(h dialog.Handles[string]) dialog.Node {
		in := textinput.New()
		in.Prompt = "> "
		in.Placeholder = cfg.placeholder
		in.CharLimit = cfg.charLimit
		in.Width = cfg.contentWidth() - 2
		in.SetValue(cfg.value)
		in.Focus()
		return &promptNode{h: h, cfg: cfg, title: title, input: in}
	}
}

// submitDoneMsg reports the end of an async submit attempt.
type submitDoneMsg struct {
	node *promptNode
	err  error
}

type promptNode struct {
	h     dialog.Handles[string]
	cfg   config
	title string
	input textinput.Model
	err   error
	busy  bool
}

func (n *promptNode) Init() tea.Cmd {
	return textinput.Blink
}

func (n *promptNode) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case submitDoneMsg:
		if msg.node != n {
			return nil
		}
		n.busy = false
		n.err = msg.err
		return nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			n.h.OnCancel()
			return nil
		case "enter":
			return n.submit()
		}
		if n.busy {
			return nil
		}
	}

	var cmd tea.Cmd
	n.input, cmd = n.input.Update(msg)
	return cmd
}

func (n *promptNode) submit() tea.Cmd {
	if n.busy {
		return nil
	}
	value := strings.TrimSpace(n.input.Value())
	if n.cfg.validate != nil {
		if err := n.cfg.validate(value); err != nil {
			n.err = err
			return nil
		}
	}
	n.err = nil

	if n.cfg.submit == nil {
		n.h.OnSuccess(value)
		return nil
	}

	n.busy = true
	submit, timeout := n.cfg.submit, n.cfg.submitTimeout
	fut := dialog.Go(func() (string, error) {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return submit(ctx, value)
	})
	n.h.AsyncOnSuccess(fut)

	return func() tea.Msg {
		_, err := fut.Wait(context.Background())
		return submitDoneMsg{node: n, err: err}
	}
}

func (n *promptNode) View() string {
	body := n.input.View()
	switch {
	case n.busy:
		body += "\n" + MutedText.Render("working…")
	case n.err != nil:
		body += "\n" + ErrorText.Render(n.err.Error())
	}
	return n.cfg.card(n.title, body, "enter submit · esc cancel")
}
