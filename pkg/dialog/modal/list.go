package modal

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/marcus/tdialog/pkg/dialog"
)

// ListItem is one choice in a select dialog.
type ListItem struct {
	ID    string // Value the dialog resolves with
	Label string // Display text, also what the filter matches against
}

type itemSource []ListItem

func (s itemSource) String(i int) string { return s[i].Label }
func (s itemSource) Len() int            { return len(s) }

// Select lets the user pick one item. Typing filters the list fuzzily;
// Enter resolves with the selected item's ID.
func Select(title string, items []ListItem, opts ...Option) dialog.Renderer[string] {
	cfg := newConfig(opts)
	return func(h dialog.Handles[string]) dialog.Node {
		filter := textinput.New()
		filter.Prompt = "/ "
		filter.Placeholder = "filter"
		filter.Width = cfg.contentWidth() - 2
		filter.Focus()

		n := &selectNode{
			h:      h,
			cfg:    cfg,
			title:  title,
			items:  append([]ListItem(nil), items...),
			filter: filter,
		}
		n.refilter()
		return n
	}
}

// row is a visible item with the byte offsets the filter matched.
type row struct {
	index   int
	matched []int
}

type selectNode struct {
	h      dialog.Handles[string]
	cfg    config
	title  string
	items  []ListItem
	filter textinput.Model

	rows         []row
	selected     int
	scrollOffset int
}

func (n *selectNode) Init() tea.Cmd {
	return textinput.Blink
}

func (n *selectNode) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			n.h.OnCancel()
			return nil
		case "enter":
			if id, ok := n.current(); ok {
				n.h.OnSuccess(id)
			}
			return nil
		case "up", "ctrl+p", "ctrl+k":
			if n.selected > 0 {
				n.selected--
			}
			return nil
		case "down", "ctrl+n", "ctrl+j":
			if n.selected < len(n.rows)-1 {
				n.selected++
			}
			return nil
		}
	}

	before := n.filter.Value()
	var cmd tea.Cmd
	n.filter, cmd = n.filter.Update(msg)
	if n.filter.Value() != before {
		n.refilter()
	}
	return cmd
}

func (n *selectNode) current() (string, bool) {
	if n.selected < 0 || n.selected >= len(n.rows) {
		return "", false
	}
	return n.items[n.rows[n.selected].index].ID, true
}

// refilter recomputes the visible rows, best match first.
func (n *selectNode) refilter() {
	pattern := strings.TrimSpace(n.filter.Value())
	n.rows = n.rows[:0]
	if pattern == "" {
		for i := range n.items {
			n.rows = append(n.rows, row{index: i})
		}
	} else {
		for _, m := range fuzzy.FindFrom(pattern, itemSource(n.items)) {
			n.rows = append(n.rows, row{index: m.Index, matched: m.MatchedIndexes})
		}
	}
	n.selected = 0
	n.scrollOffset = 0
}

func (n *selectNode) View() string {
	body := n.filter.View() + "\n\n" + n.renderList()
	return n.cfg.card(n.title, body, "type to filter · ↑/↓ move · enter select · esc cancel")
}

func (n *selectNode) renderList() string {
	if len(n.rows) == 0 {
		return MutedText.Render("(no matches)")
	}

	visibleCount := min(n.cfg.maxVisible, len(n.rows))

	// Keep the selection on screen
	if n.selected < n.scrollOffset {
		n.scrollOffset = n.selected
	} else if n.selected >= n.scrollOffset+visibleCount {
		n.scrollOffset = n.selected - visibleCount + 1
	}
	maxScroll := max(0, len(n.rows)-visibleCount)
	n.scrollOffset = min(max(n.scrollOffset, 0), maxScroll)

	var sb strings.Builder
	for i := 0; i < visibleCount; i++ {
		idx := n.scrollOffset + i
		if idx >= len(n.rows) {
			break
		}
		r := n.rows[idx]
		isSelected := idx == n.selected

		cursor := "  "
		style := ListItemNormal
		if isSelected {
			cursor = ListCursor.Render("> ")
			style = ListItemFocused
		}

		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(cursor + highlight(n.items[r.index].Label, r.matched, style))
	}

	content := sb.String()
	if n.scrollOffset > 0 {
		content = MutedText.Render("↑ more above") + "\n" + content
	}
	if n.scrollOffset+visibleCount < len(n.rows) {
		content = content + "\n" + MutedText.Render("↓ more below")
	}
	return content
}

// highlight renders label with the matched bytes emphasised.
func highlight(label string, matched []int, base lipgloss.Style) string {
	if len(matched) == 0 {
		return base.Render(label)
	}
	hit := make(map[int]bool, len(matched))
	for _, i := range matched {
		hit[i] = true
	}
	var sb strings.Builder
	for i, r := range label {
		if hit[i] {
			sb.WriteString(ListMatch.Inherit(base).Render(string(r)))
		} else {
			sb.WriteString(base.Render(string(r)))
		}
	}
	return sb.String()
}
