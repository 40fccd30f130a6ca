package modal

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Palette shared by every built-in dialog.
var (
	Primary      = lipgloss.Color("212")
	Error        = lipgloss.Color("196")
	Warning      = lipgloss.Color("214")
	Info         = lipgloss.Color("45")
	Muted        = lipgloss.Color("241")
	BgSecondary  = lipgloss.Color("235")
	BorderNormal = lipgloss.Color("240")
)

// Button styles
var (
	Button = lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")).
		Background(lipgloss.Color("238")).
		Padding(0, 2)

	ButtonFocused = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(Primary).
			Bold(true).
			Padding(0, 2)

	ButtonDanger = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("238")).
			Padding(0, 2)

	ButtonDangerFocused = lipgloss.NewStyle().
				Foreground(lipgloss.Color("255")).
				Background(Error).
				Bold(true).
				Padding(0, 2)
)

// Text styles
var (
	ModalTitle = lipgloss.NewStyle().Bold(true)
	MutedText  = lipgloss.NewStyle().Foreground(Muted)
	ErrorText  = lipgloss.NewStyle().Foreground(Error)
	Body       = lipgloss.NewStyle()
)

// List styles
var (
	ListItemNormal = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	ListItemFocused = lipgloss.NewStyle().
			Background(lipgloss.Color("237")).
			Foreground(lipgloss.Color("255")).
			Bold(true)

	ListMatch = lipgloss.NewStyle().
			Foreground(Primary).
			Underline(true)

	ListCursor = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)
)

// Variant selects a dialog's accent color.
type Variant int

const (
	VariantDefault Variant = iota
	VariantDanger
	VariantWarning
	VariantInfo
)

func (v Variant) color() lipgloss.Color {
	switch v {
	case VariantDanger:
		return Error
	case VariantWarning:
		return Warning
	case VariantInfo:
		return Info
	default:
		return Primary
	}
}

func cardStyle(v Variant, width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(v.color()).
		Background(BgSecondary).
		Padding(1, 2).
		Width(width)
}

// formTheme styles huh forms to match the rest of the dialogs.
func formTheme(v Variant) *huh.Theme {
	theme := huh.ThemeBase()
	accent := v.color()

	theme.Group.Title = theme.Group.Title.Foreground(accent).Bold(true)
	theme.Group.Description = theme.Group.Description.Foreground(Muted)
	theme.FieldSeparator = lipgloss.NewStyle().SetString("\n\n")

	theme.Focused.Title = theme.Focused.Title.Foreground(lipgloss.Color("255")).Bold(true)
	theme.Focused.Description = theme.Focused.Description.Foreground(Muted)
	theme.Focused.ErrorIndicator = theme.Focused.ErrorIndicator.Foreground(Error)
	theme.Focused.ErrorMessage = theme.Focused.ErrorMessage.Foreground(Error)
	theme.Focused.SelectSelector = theme.Focused.SelectSelector.Foreground(accent)
	theme.Focused.MultiSelectSelector = theme.Focused.MultiSelectSelector.Foreground(accent)
	theme.Focused.TextInput.Prompt = theme.Focused.TextInput.Prompt.Foreground(accent)
	theme.Focused.TextInput.Placeholder = theme.Focused.TextInput.Placeholder.Foreground(Muted)
	theme.Focused.FocusedButton = theme.Focused.FocusedButton.Background(accent).Foreground(lipgloss.Color("255"))

	theme.Blurred = theme.Focused
	theme.Blurred.Base = theme.Blurred.Base.BorderStyle(lipgloss.HiddenBorder())
	theme.Blurred.Title = theme.Blurred.Title.Foreground(BorderNormal).Bold(false)
	return theme
}
