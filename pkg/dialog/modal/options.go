package modal

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
)

// SubmitFunc finishes a prompt asynchronously. Returning an error keeps the
// prompt open and shows the error.
type SubmitFunc func(ctx context.Context, value string) (string, error)

// Option configures a built-in dialog. Options that do not apply to a given
// dialog are ignored.
type Option func(*config)

type config struct {
	width         int
	variant       Variant
	hints         bool
	markdownStyle string

	yesLabel string
	noLabel  string

	placeholder   string
	value         string
	charLimit     int
	validate      func(string) error
	submit        SubmitFunc
	submitTimeout time.Duration

	maxVisible int
}

func newConfig(opts []Option) config {
	c := config{
		width:      50,
		hints:      true,
		yesLabel:   "Yes",
		noLabel:    "No",
		maxVisible: 8,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithWidth sets the dialog width (default: 50).
func WithWidth(w int) Option {
	return func(c *config) {
		if w > 10 {
			c.width = w
		}
	}
}

// WithVariant sets the accent color.
func WithVariant(v Variant) Option {
	return func(c *config) { c.variant = v }
}

// WithHints shows or hides the key hints line.
func WithHints(show bool) Option {
	return func(c *config) { c.hints = show }
}

// WithMarkdown renders the confirm body as markdown with the given glamour
// style ("dark", "light", "notty", ...).
func WithMarkdown(style string) Option {
	return func(c *config) { c.markdownStyle = style }
}

// WithLabels sets the confirm button labels.
func WithLabels(yes, no string) Option {
	return func(c *config) {
		if yes != "" {
			c.yesLabel = yes
		}
		if no != "" {
			c.noLabel = no
		}
	}
}

// WithPlaceholder sets the placeholder of a text field.
func WithPlaceholder(s string) Option {
	return func(c *config) { c.placeholder = s }
}

// WithValue pre-fills a text field.
func WithValue(s string) Option {
	return func(c *config) { c.value = s }
}

// WithCharLimit caps the text field length.
func WithCharLimit(n int) Option {
	return func(c *config) { c.charLimit = n }
}

// WithValidate rejects input synchronously before it is submitted.
func WithValidate(fn func(string) error) Option {
	return func(c *config) { c.validate = fn }
}

// WithSubmit completes a prompt through fn instead of resolving with the
// raw input. timeout bounds each attempt; zero means no limit.
func WithSubmit(fn SubmitFunc, timeout time.Duration) Option {
	return func(c *config) {
		c.submit = fn
		c.submitTimeout = timeout
	}
}

// WithMaxVisible sets how many list rows a select dialog shows.
func WithMaxVisible(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxVisible = n
		}
	}
}

// contentWidth is the usable width inside the card border and padding.
func (c config) contentWidth() int {
	return max(c.width-6, 10)
}

// card wraps title, body and hint into the dialog frame.
func (c config) card(title, body, hint string) string {
	var sb strings.Builder
	sb.WriteString(ModalTitle.Foreground(c.variant.color()).Render(title))
	if body != "" {
		sb.WriteString("\n\n")
		sb.WriteString(body)
	}
	if c.hints && hint != "" {
		sb.WriteString("\n\n")
		sb.WriteString(MutedText.Render(hint))
	}
	return cardStyle(c.variant, c.width).Render(sb.String())
}

// renderBody renders text as markdown when configured, plain otherwise.
func (c config) renderBody(text string) string {
	if c.markdownStyle == "" {
		return Body.Width(c.contentWidth()).Render(text)
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(c.markdownStyle),
		glamour.WithWordWrap(c.contentWidth()),
	)
	if err != nil {
		return Body.Width(c.contentWidth()).Render(text)
	}
	out, err := r.Render(text)
	if err != nil {
		return Body.Width(c.contentWidth()).Render(text)
	}
	return strings.Trim(out, "\n")
}
