package dialog

// Result is what a caller of Open eventually receives. Value is only
// meaningful when Success is true.
type Result[R any] struct {
	Success bool
	Value   R
}

// Node is the renderable value a Renderer produces. Hosts decide how to
// display it; the provider only stores it.
type Node interface {
	View() string
}

// Renderer builds a dialog node. It is called exactly once per Open,
// synchronously, with freshly built handles.
type Renderer[R any] func(h Handles[R]) Node

// Handles are the resolution functions a dialog uses to report the user's
// decision. Only the first resolution counts; calling a second handle, or
// the same one twice, is ignored.
type Handles[R any] struct {
	onSuccess      func(R)
	asyncOnSuccess func(*Future[R])
	onCancel       func()
}

// OnSuccess resolves the dialog with value.
func (h Handles[R]) OnSuccess(value R) {
	if h.onSuccess != nil {
		h.onSuccess(value)
	}
}

// AsyncOnSuccess resolves the dialog with the value pending eventually
// produces. If pending fails, the error goes to the provider's error sink
// and the dialog stays open so the user can retry.
func (h Handles[R]) AsyncOnSuccess(pending *Future[R]) {
	if h.asyncOnSuccess != nil {
		h.asyncOnSuccess(pending)
	}
}

// OnCancel resolves the dialog without a value.
func (h Handles[R]) OnCancel() {
	if h.onCancel != nil {
		h.onCancel()
	}
}
