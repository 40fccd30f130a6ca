// Package modal provides ready-made dialog renderers for a dialog.Provider.
//
// Each constructor returns a dialog.Renderer; pass it to dialog.Open (or
// overlay.Open inside a bubbletea Update) and wait on the returned future.
//
// # Quick Start
//
//	fut := dialog.Open(p, modal.Confirm("Delete item?",
//	    "This cannot be undone.",
//	    modal.WithVariant(modal.VariantDanger),
//	    modal.WithLabels("Delete", "Keep"),
//	))
//
//	name := dialog.Open(p, modal.Prompt("Rename",
//	    modal.WithValue(current),
//	    modal.WithSubmit(renameOnServer, 5*time.Second),
//	))
//
// # Built-in Dialogs
//
//   - Confirm(title, body, opts...) - yes/no, resolves with true or cancels
//   - Prompt(title, opts...) - single line of text, optional async submit
//   - Select(title, items, opts...) - fuzzy-filtered list, resolves with an item ID
//   - Form(title, build, opts...) - any huh form, resolves with the bound value
//
// # Options
//
//   - WithWidth(w int) - dialog width (default: 50)
//   - WithVariant(v Variant) - accent color (Default, Danger, Warning, Info)
//   - WithHints(show bool) - show/hide keyboard hints
//   - WithMarkdown(style string) - render Confirm bodies with glamour
//   - WithLabels(yes, no string) - Confirm button labels
//   - WithPlaceholder, WithValue, WithCharLimit, WithValidate - Prompt input
//   - WithSubmit(fn, timeout) - finish a Prompt asynchronously; failures
//     keep the prompt open and reach the provider's error sink
//   - WithMaxVisible(n int) - Select rows on screen
package modal
