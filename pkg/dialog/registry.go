package dialog

import "slices"

// State is the lifecycle phase of a dialog instance. Removed instances are
// simply absent from the registry.
type State int

const (
	// StateOpen is waiting for the user.
	StateOpen State = iota
	// StateResolving has an async success in flight.
	StateResolving
	// StateClosing has settled its future and is waiting out the grace delay.
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateResolving:
		return "resolving"
	case StateClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// Instance is a read-only view of one registry entry.
type Instance struct {
	Key   int
	Node  Node
	State State
}

type entry struct {
	node  Node
	state State
}

// registry is an immutable, key-ordered mapping. Every mutation returns a
// new value, so snapshots taken earlier never change underneath a reader.
type registry struct {
	keys    []int
	entries map[int]entry
}

func (r registry) len() int {
	return len(r.keys)
}

func (r registry) maxKey() int {
	if len(r.keys) == 0 {
		return 0
	}
	return r.keys[len(r.keys)-1]
}

func (r registry) get(key int) (entry, bool) {
	e, ok := r.entries[key]
	return e, ok
}

// with returns a copy of r holding e under key. Keys stay sorted, which is
// also insertion order since keys only grow.
func (r registry) with(key int, e entry) registry {
	entries := make(map[int]entry, len(r.entries)+1)
	for k, v := range r.entries {
		entries[k] = v
	}
	keys := r.keys
	if _, exists := r.entries[key]; !exists {
		pos, _ := slices.BinarySearch(r.keys, key)
		keys = slices.Insert(slices.Clone(r.keys), pos, key)
	}
	entries[key] = e
	return registry{keys: keys, entries: entries}
}

// without returns a copy of r lacking key. It returns r itself when key is
// not present.
func (r registry) without(key int) registry {
	if _, ok := r.entries[key]; !ok {
		return r
	}
	entries := make(map[int]entry, len(r.entries))
	for k, v := range r.entries {
		if k != key {
			entries[k] = v
		}
	}
	keys := make([]int, 0, len(r.keys))
	for _, k := range r.keys {
		if k != key {
			keys = append(keys, k)
		}
	}
	return registry{keys: keys, entries: entries}
}

func (r registry) instances() []Instance {
	out := make([]Instance, 0, len(r.keys))
	for _, k := range r.keys {
		e := r.entries[k]
		out = append(out, Instance{Key: k, Node: e.node, State: e.state})
	}
	return out
}
