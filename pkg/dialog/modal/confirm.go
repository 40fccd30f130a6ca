package modal

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/tdialog/pkg/dialog"
)

// Confirm asks a yes/no question. Yes resolves with true; No and Esc cancel.
func Confirm(title, body string, opts ...Option) dialog.Renderer[bool] {
	cfg := newConfig(opts)
	return func(h dialog.Handles[bool]) dialog.Node {
		return &confirmNode{
			h:     h,
			cfg:   cfg,
			title: title,
			body:  cfg.renderBody(body),
		}
	}
}

type confirmNode struct {
	h     dialog.Handles[bool]
	cfg   config
	title string
	body  string
	focus int // 0 = yes, 1 = no
}

func (n *confirmNode) Update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch key.String() {
	case "tab", "right", "l":
		n.focus = (n.focus + 1) % 2
	case "shift+tab", "left", "h":
		n.focus = (n.focus + 1) % 2
	case "y", "Y":
		n.h.OnSuccess(true)
	case "n", "N", "esc":
		n.h.OnCancel()
	case "enter":
		if n.focus == 0 {
			n.h.OnSuccess(true)
		} else {
			n.h.OnCancel()
		}
	}
	return nil
}

func (n *confirmNode) View() string {
	yes, no := Button, Button
	if n.cfg.variant == VariantDanger {
		yes = ButtonDanger
	}
	if n.focus == 0 {
		yes = ButtonFocused
		if n.cfg.variant == VariantDanger {
			yes = ButtonDangerFocused
		}
	} else {
		no = ButtonFocused
	}

	buttons := strings.Join([]string{
		yes.Render(n.cfg.yesLabel),
		no.Render(n.cfg.noLabel),
	}, "  ")

	return n.cfg.card(n.title, n.body+"\n\n"+buttons, "y/n · tab switch · enter choose · esc cancel")
}
