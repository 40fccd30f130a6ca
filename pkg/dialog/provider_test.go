package dialog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type textNode string

func (n textNode) View() string { return string(n) }

type sinkRecorder struct {
	mu   sync.Mutex
	errs []error
	ch   chan error
}

func newSinkRecorder() *sinkRecorder {
	return &sinkRecorder{ch: make(chan error, 8)}
}

func (s *sinkRecorder) sink(err error) {
	s.mu.Lock()
	s.errs = append(s.errs, err)
	s.mu.Unlock()
	s.ch <- err
}

func (s *sinkRecorder) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.errs)
}

func newTestProvider(t *testing.T, opts ...Option) (*Provider, *manualClock) {
	t.Helper()
	clock := &manualClock{}
	base := []Option{
		WithClock(clock),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	p := NewProvider(append(base, opts...)...)
	t.Cleanup(func() { p.Close() })
	return p, clock
}

// openCapture opens a dialog whose node is name and hands back its handles.
func openCapture[R any](p *Provider, name string) (*Future[Result[R]], Handles[R]) {
	var h Handles[R]
	f := Open(p, func(handles Handles[R]) Node {
		h = handles
		return textNode(name)
	})
	return f, h
}

func keysOf(instances []Instance) []int {
	keys := make([]int, len(instances))
	for i, in := range instances {
		keys[i] = in.Key
	}
	return keys
}

func findInstance(p *Provider, key int) (Instance, bool) {
	for _, in := range p.Snapshot() {
		if in.Key == key {
			return in, true
		}
	}
	return Instance{}, false
}

func waitFor[T any](t *testing.T, f *Future[T]) T {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	v, err := f.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	return v
}

func TestOpenAllocatesIncreasingKeys(t *testing.T) {
	p, _ := newTestProvider(t)

	for i := 0; i < 5; i++ {
		openCapture[int](p, "d")
	}

	keys := keysOf(p.Snapshot())
	want := []int{1, 2, 3, 4, 5}
	if len(keys) != len(want) {
		t.Fatalf("got %d instances, want %d", len(keys), len(want))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("key[%d] = %d, want %d", i, keys[i], want[i])
		}
	}
}

func TestOpenRendersSynchronously(t *testing.T) {
	p, _ := newTestProvider(t)

	called := 0
	Open(p, func(h Handles[int]) Node {
		called++
		return textNode("x")
	})

	if called != 1 {
		t.Fatalf("renderer called %d times, want 1", called)
	}
	if p.Len() != 1 {
		t.Fatalf("Len = %d, want 1", p.Len())
	}
}

func TestOnSuccessResolvesOnlyItsRequest(t *testing.T) {
	p, _ := newTestProvider(t)

	f1, _ := openCapture[string](p, "one")
	f2, h2 := openCapture[string](p, "two")
	f3, _ := openCapture[string](p, "three")

	h2.OnSuccess("picked")

	res, err := f2.Result()
	if err != nil {
		t.Fatalf("f2 not settled: %v", err)
	}
	if !res.Success || res.Value != "picked" {
		t.Errorf("f2 = %+v, want {Success:true Value:picked}", res)
	}
	if f1.Settled() || f3.Settled() {
		t.Error("resolving one dialog settled another")
	}
}

func TestOnCancelResolvesWithoutValue(t *testing.T) {
	p, _ := newTestProvider(t)

	f, h := openCapture[string](p, "d")
	h.OnCancel()

	res, err := f.Result()
	if err != nil {
		t.Fatalf("future not settled: %v", err)
	}
	if res.Success {
		t.Error("cancel reported success")
	}
	if res.Value != "" {
		t.Errorf("cancel value = %q, want zero value", res.Value)
	}
}

func TestRemovalWaitsForGraceDelay(t *testing.T) {
	grace := 100 * time.Millisecond
	p, clock := newTestProvider(t, WithGraceDelay(grace))

	f, h := openCapture[int](p, "d")
	h.OnSuccess(7)

	if !f.Settled() {
		t.Fatal("future should settle synchronously with the handle call")
	}
	in, ok := findInstance(p, 1)
	if !ok {
		t.Fatal("instance removed synchronously with its resolution")
	}
	if in.State != StateClosing {
		t.Errorf("state = %v, want closing", in.State)
	}

	clock.Advance(grace - time.Millisecond)
	if _, ok := findInstance(p, 1); !ok {
		t.Fatal("instance removed before the grace delay elapsed")
	}

	clock.Advance(time.Millisecond)
	if _, ok := findInstance(p, 1); ok {
		t.Fatal("instance still present after the grace delay")
	}
	if p.Len() != 0 {
		t.Errorf("Len = %d, want 0", p.Len())
	}
}

func TestAsyncOnSuccessResolves(t *testing.T) {
	p, _ := newTestProvider(t)

	f, h := openCapture[string](p, "d")
	pending, resolve, _ := NewPromise[string]()
	h.AsyncOnSuccess(pending)

	in, _ := findInstance(p, 1)
	if in.State != StateResolving {
		t.Errorf("state while pending = %v, want resolving", in.State)
	}
	if f.Settled() {
		t.Fatal("future settled before the nested future")
	}

	resolve("done")
	res := waitFor(t, f)
	if !res.Success || res.Value != "done" {
		t.Errorf("result = %+v, want {Success:true Value:done}", res)
	}
}

func TestAsyncOnSuccessRejectionGoesToSink(t *testing.T) {
	rec := newSinkRecorder()
	p, clock := newTestProvider(t, WithErrorSink(rec.sink))

	f, h := openCapture[string](p, "d")
	boom := errors.New("network down")
	h.AsyncOnSuccess(Rejected[string](boom))

	select {
	case err := <-rec.ch:
		if !errors.Is(err, boom) {
			t.Errorf("sink got %v, want %v", err, boom)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("error sink was not called")
	}

	if f.Settled() {
		t.Error("caller future settled after a rejected async success")
	}
	if rec.count() != 1 {
		t.Errorf("sink called %d times, want 1", rec.count())
	}
	in, ok := findInstance(p, 1)
	if !ok {
		t.Fatal("instance removed after a rejected async success")
	}
	if in.State != StateOpen {
		t.Errorf("state = %v, want open", in.State)
	}
	if clock.pending() != 0 {
		t.Errorf("%d removal timers scheduled, want 0", clock.pending())
	}

	// The dialog can retry.
	h.OnSuccess("second try")
	res := waitFor(t, f)
	if !res.Success || res.Value != "second try" {
		t.Errorf("retry result = %+v", res)
	}
}

func TestConfirmThenRenameScenario(t *testing.T) {
	p, clock := newTestProvider(t)

	confirm, _ := openCapture[bool](p, "confirm")
	rename, renameHandles := openCapture[string](p, "rename")

	if keys := keysOf(p.Snapshot()); len(keys) != 2 || keys[0] != 1 || keys[1] != 2 {
		t.Fatalf("keys = %v, want [1 2]", keys)
	}

	renameHandles.OnSuccess("new-name")
	res := waitFor(t, rename)
	if !res.Success || res.Value != "new-name" {
		t.Errorf("rename result = %+v", res)
	}

	clock.Advance(p.GraceDelay())

	keys := keysOf(p.Snapshot())
	if len(keys) != 1 || keys[0] != 1 {
		t.Fatalf("keys after grace delay = %v, want [1]", keys)
	}
	if confirm.Settled() {
		t.Error("confirm dialog settled by the rename resolution")
	}
}

func TestDoubleResolutionIsIgnored(t *testing.T) {
	p, clock := newTestProvider(t)

	f, h := openCapture[int](p, "d")
	h.OnSuccess(1)
	h.OnSuccess(2)
	h.OnCancel()
	h.AsyncOnSuccess(Resolved(3))

	res, _ := f.Result()
	if !res.Success || res.Value != 1 {
		t.Errorf("result = %+v, want first resolution", res)
	}
	if clock.pending() != 1 {
		t.Errorf("%d removal timers, want 1", clock.pending())
	}
}

func TestResolveInsideRenderer(t *testing.T) {
	p, clock := newTestProvider(t)

	f := Open(p, func(h Handles[string]) Node {
		h.OnCancel()
		return textNode("gone")
	})

	if !f.Settled() {
		t.Fatal("future not settled")
	}
	in, ok := findInstance(p, 1)
	if !ok || in.State != StateClosing {
		t.Fatalf("instance = %+v (present=%v), want closing", in, ok)
	}

	clock.Advance(p.GraceDelay())
	if p.Len() != 0 {
		t.Errorf("Len = %d, want 0", p.Len())
	}
}

func TestKeysAreNotReused(t *testing.T) {
	p, clock := newTestProvider(t)

	openCapture[int](p, "a")
	_, h := openCapture[int](p, "b")
	h.OnCancel()
	clock.Advance(p.GraceDelay())

	openCapture[int](p, "c")
	keys := keysOf(p.Snapshot())
	if len(keys) != 2 || keys[0] != 1 || keys[1] != 3 {
		t.Errorf("keys = %v, want [1 3]", keys)
	}
}

func TestNestedOpenKeepsKeyOrder(t *testing.T) {
	p, _ := newTestProvider(t)

	Open(p, func(h Handles[int]) Node {
		openCapture[int](p, "inner")
		return textNode("outer")
	})

	snap := p.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("got %d instances, want 2", len(snap))
	}
	if snap[0].Key != 1 || snap[0].Node.View() != "outer" {
		t.Errorf("first = %d/%s, want 1/outer", snap[0].Key, snap[0].Node.View())
	}
	if snap[1].Key != 2 || snap[1].Node.View() != "inner" {
		t.Errorf("second = %d/%s, want 2/inner", snap[1].Key, snap[1].Node.View())
	}
}

func TestSnapshotIsStable(t *testing.T) {
	p, _ := newTestProvider(t)

	_, h := openCapture[int](p, "a")
	before := p.Snapshot()

	openCapture[int](p, "b")
	h.OnSuccess(1)

	if len(before) != 1 {
		t.Fatalf("old snapshot changed length to %d", len(before))
	}
	if before[0].State != StateOpen {
		t.Errorf("old snapshot state changed to %v", before[0].State)
	}
}

func TestSubscribeSignalsChanges(t *testing.T) {
	p, clock := newTestProvider(t)

	ch, cancel := p.Subscribe()
	defer cancel()

	expectSignal := func(what string) {
		t.Helper()
		select {
		case <-ch:
		default:
			t.Fatalf("no signal after %s", what)
		}
	}

	_, h := openCapture[int](p, "a")
	expectSignal("open")

	h.OnSuccess(1)
	expectSignal("resolve")

	clock.Advance(p.GraceDelay())
	expectSignal("removal")
}

func TestCloseCancelsPendingWork(t *testing.T) {
	p, clock := newTestProvider(t)

	open, _ := openCapture[int](p, "open")
	_, h := openCapture[int](p, "closing")
	h.OnSuccess(1)
	ch, _ := p.Subscribe()

	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	res, err := open.Result()
	if err != nil {
		t.Fatalf("open dialog not settled by Close: %v", err)
	}
	if res.Success {
		t.Error("Close resolved an open dialog as success")
	}
	if clock.pending() != 0 {
		t.Errorf("%d timers left after Close", clock.pending())
	}
	if p.Len() != 0 {
		t.Errorf("Len = %d after Close, want 0", p.Len())
	}
	if _, ok := <-ch; ok {
		t.Error("subscription channel not closed")
	}

	late := Open(p, func(h Handles[int]) Node { return textNode("late") })
	if res, err := late.Result(); err != nil || res.Success {
		t.Errorf("Open after Close = (%+v, %v), want cancelled", res, err)
	}
}

func TestContextRoundTrip(t *testing.T) {
	p, _ := newTestProvider(t)

	if _, ok := FromContext(context.Background()); ok {
		t.Fatal("empty context reported a provider")
	}
	got, ok := FromContext(NewContext(context.Background(), p))
	if !ok || got != p {
		t.Errorf("FromContext = (%p, %v), want (%p, true)", got, ok, p)
	}
}

func TestConcurrentOpen(t *testing.T) {
	t.Run("keys stay distinct and ordered", func(t *testing.T) {
		p, _ := newTestProvider(t)

		const n = 200
		var wg sync.WaitGroup
		futures := make([]*Future[Result[int]], n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				futures[i] = Open(p, func(h Handles[int]) Node { return textNode("d") })
			}(i)
		}
		wg.Wait()

		keys := keysOf(p.Snapshot())
		if len(keys) != n {
			t.Fatalf("got %d instances, want %d", len(keys), n)
		}
		for i, k := range keys {
			if k != i+1 {
				t.Fatalf("keys[%d] = %d, want %d", i, k, i+1)
			}
		}
		for i, f := range futures {
			if f.Settled() {
				t.Errorf("future %d settled without a handle call", i)
			}
		}
	})
}

func TestCloseFromErrorSink(t *testing.T) {
	closed := make(chan error, 1)
	var p *Provider
	p, _ = newTestProvider(t, WithErrorSink(func(error) {
		closed <- p.Close()
	}))

	f, h := openCapture[int](p, "d")
	h.AsyncOnSuccess(Rejected[int](errors.New("save failed")))

	select {
	case err := <-closed:
		if err != nil {
			t.Errorf("Close from sink: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Close called from the error sink did not return")
	}

	if res := waitFor(t, f); res.Success {
		t.Error("dialog open at Close resolved as success")
	}
	if p.Len() != 0 {
		t.Errorf("Len = %d after Close, want 0", p.Len())
	}
}

func TestRejectionAfterCloseSkipsSink(t *testing.T) {
	rec := newSinkRecorder()
	p, _ := newTestProvider(t, WithErrorSink(rec.sink))

	f, h := openCapture[int](p, "d")
	pending, _, reject := NewPromise[int]()
	h.AsyncOnSuccess(pending)

	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	reject(errors.New("too late"))

	select {
	case err := <-rec.ch:
		t.Errorf("sink called after Close with %v", err)
	case <-time.After(100 * time.Millisecond):
	}
	if res, err := f.Result(); err != nil || res.Success {
		t.Errorf("result = (%+v, %v), want cancelled", res, err)
	}
}
