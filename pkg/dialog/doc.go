// Package dialog lets code open transient dialogs imperatively and wait for
// the user's decision through a future.
//
// A Provider owns the set of mounted dialogs. Open asks a Renderer to build
// the dialog's node, mounts it under a fresh key and returns a future that
// settles once the dialog calls one of its handles:
//
//	fut := dialog.Open(p, func(h dialog.Handles[string]) dialog.Node {
//	    return newRenameNode(h) // calls h.OnSuccess(name) or h.OnCancel()
//	})
//	res, err := fut.Wait(ctx)
//	if err == nil && res.Success {
//	    rename(res.Value)
//	}
//
// Resolved dialogs stay in Snapshot for the provider's grace delay so that
// hosts can play an exit transition, then disappear. The overlay subpackage
// hosts a provider inside a bubbletea program and the modal subpackage has
// ready-made dialogs.
//
// # Lifecycle
//
// Every instance moves through Open, Resolving (only while a future passed
// to AsyncOnSuccess is pending), Closing and finally leaves the registry.
// A failed async success returns the instance to Open and is reported to
// the error sink; the caller's future never fails.
package dialog
