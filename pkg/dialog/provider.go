package dialog

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultGraceDelay is how long a resolved dialog stays mounted so that its
// exit transition can finish.
const DefaultGraceDelay = 100 * time.Millisecond

// Provider owns the set of open dialogs. It is safe for concurrent use.
type Provider struct {
	id      string
	clock   Clock
	grace   time.Duration
	onError func(error)
	logger  *slog.Logger

	mu      sync.Mutex
	reg     registry
	lastKey int
	timers  map[int]Timer
	cancels map[int]func()
	subs    map[int]chan struct{}
	nextSub int
	closed  bool
	done    chan struct{}

	async errgroup.Group
}

// Option configures a Provider.
type Option func(*Provider)

// WithGraceDelay sets how long resolved dialogs stay in the snapshot.
func WithGraceDelay(d time.Duration) Option {
	return func(p *Provider) {
		if d >= 0 {
			p.grace = d
		}
	}
}

// WithErrorSink sets the function that receives failures of futures passed
// to AsyncOnSuccess. fn runs on its own goroutine and may call Close.
// Failures that arrive after Close are not reported.
func WithErrorSink(fn func(error)) Option {
	return func(p *Provider) {
		p.onError = fn
	}
}

// WithLogger sets the provider's logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithClock replaces the clock used for deferred removal.
func WithClock(c Clock) Option {
	return func(p *Provider) {
		if c != nil {
			p.clock = c
		}
	}
}

// NewProvider creates an empty provider.
func NewProvider(opts ...Option) *Provider {
	p := &Provider{
		id:      uuid.NewString(),
		clock:   systemClock{},
		grace:   DefaultGraceDelay,
		logger:  slog.Default(),
		timers:  make(map[int]Timer),
		cancels: make(map[int]func()),
		subs:    make(map[int]chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("provider", p.id)
	if p.onError == nil {
		p.onError = func(err error) {
			p.logger.Error("async dialog success failed", "err", err)
		}
	}
	return p
}

// ID returns the provider's instance identifier.
func (p *Provider) ID() string {
	return p.id
}

// GraceDelay returns the configured removal delay.
func (p *Provider) GraceDelay() time.Duration {
	return p.grace
}

// Open mounts the dialog built by render and returns a future that settles
// when the dialog calls one of its handles. The future never fails.
//
// render runs before Open returns. Open never blocks.
func Open[R any](p *Provider, render Renderer[R]) *Future[Result[R]] {
	fut := newFuture[Result[R]]()
	key, ok := p.allocate()
	if !ok {
		p.logger.Warn("open on closed provider")
		fut.settle(Result[R]{}, nil)
		return fut
	}

	req := &request[R]{p: p, key: key, fut: fut}
	node := render(Handles[R]{
		onSuccess:      req.success,
		asyncOnSuccess: req.asyncSuccess,
		onCancel:       req.cancel,
	})
	req.register(node)
	return fut
}

// Snapshot returns every mounted dialog in key order.
func (p *Provider) Snapshot() []Instance {
	p.mu.Lock()
	reg := p.reg
	p.mu.Unlock()
	return reg.instances()
}

// Len returns the number of mounted dialogs, closing ones included.
func (p *Provider) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reg.len()
}

// Subscribe returns a channel that receives a signal after registry changes.
// Signals coalesce; a reader should call Snapshot after each one. The channel
// is closed by the returned cancel function or when the provider closes.
func (p *Provider) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		close(ch)
		return ch, func() {}
	}
	id := p.nextSub
	p.nextSub++
	p.subs[id] = ch
	return ch, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if c, ok := p.subs[id]; ok {
			delete(p.subs, id)
			close(c)
		}
	}
}

// Close unmounts every dialog, cancels pending removals and stops watching
// async successes. Dialogs that were still open resolve as cancelled.
// Close waits for the async watchers to exit and always returns nil.
func (p *Provider) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	for key, t := range p.timers {
		t.Stop()
		delete(p.timers, key)
	}
	abandoned := make([]func(), 0, len(p.cancels))
	for _, cancel := range p.cancels {
		abandoned = append(abandoned, cancel)
	}
	p.reg = registry{}
	close(p.done)
	for id, ch := range p.subs {
		delete(p.subs, id)
		close(ch)
	}
	p.mu.Unlock()

	for _, cancel := range abandoned {
		cancel()
	}
	p.logger.Debug("provider closed", "abandoned", len(abandoned))
	// Watchers never return an error.
	_ = p.async.Wait()
	return nil
}

func (p *Provider) allocate() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, false
	}
	key := max(p.reg.maxKey(), p.lastKey) + 1
	p.lastKey = key
	return key, true
}

func (p *Provider) remove(key int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.timers, key)
	if p.closed {
		return
	}
	if _, ok := p.reg.get(key); !ok {
		return
	}
	p.reg = p.reg.without(key)
	p.notifyLocked()
	p.logger.Debug("dialog removed", "key", key)
}

func (p *Provider) scheduleRemovalLocked(key int) {
	if t, ok := p.timers[key]; ok {
		t.Stop()
	}
	p.timers[key] = p.clock.AfterFunc(p.grace, func() {
		p.remove(key)
	})
}

func (p *Provider) setStateLocked(key int, state State) {
	e, ok := p.reg.get(key)
	if !ok || e.state == state {
		return
	}
	e.state = state
	p.reg = p.reg.with(key, e)
	p.notifyLocked()
}

func (p *Provider) notifyLocked() {
	for _, ch := range p.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// request tracks one Open call. Fields other than p, key and fut are
// guarded by p.mu.
type request[R any] struct {
	p   *Provider
	key int
	fut *Future[Result[R]]

	registered bool
	closed     bool
	state      State
	inflight   int
}

func (r *request[R]) register(node Node) {
	p := r.p
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		r.closed = true
		r.fut.settle(Result[R]{}, nil)
		return
	}
	r.registered = true
	p.reg = p.reg.with(r.key, entry{node: node, state: r.state})
	if r.closed {
		// Resolved from inside the renderer.
		p.scheduleRemovalLocked(r.key)
	} else {
		p.cancels[r.key] = r.cancel
	}
	p.notifyLocked()
	p.logger.Debug("dialog opened", "key", r.key, "state", r.state)
}

func (r *request[R]) success(value R) {
	r.close(Result[R]{Success: true, Value: value})
}

func (r *request[R]) cancel() {
	r.close(Result[R]{})
}

// close schedules removal first, then settles the caller's future.
func (r *request[R]) close(res Result[R]) {
	p := r.p
	p.mu.Lock()
	if r.closed {
		p.mu.Unlock()
		p.logger.Debug("dialog already resolved", "key", r.key)
		return
	}
	r.closed = true
	r.state = StateClosing
	delete(p.cancels, r.key)
	if r.registered && !p.closed {
		p.setStateLocked(r.key, StateClosing)
		p.scheduleRemovalLocked(r.key)
	}
	p.mu.Unlock()

	r.fut.settle(res, nil)
}

func (r *request[R]) asyncSuccess(pending *Future[R]) {
	if pending == nil {
		return
	}
	p := r.p
	p.mu.Lock()
	defer p.mu.Unlock()
	if r.closed || p.closed {
		p.logger.Debug("async success after resolution", "key", r.key)
		return
	}
	r.inflight++
	r.state = StateResolving
	if r.registered {
		p.setStateLocked(r.key, StateResolving)
	}
	p.async.Go(func() error {
		r.await(pending)
		return nil
	})
}

func (r *request[R]) await(pending *Future[R]) {
	select {
	case <-pending.Done():
	case <-r.p.done:
		return
	}
	// Both may be ready at once; teardown wins.
	select {
	case <-r.p.done:
		return
	default:
	}
	v, err := pending.Result()
	if err != nil {
		r.fail(err)
		return
	}
	r.close(Result[R]{Success: true, Value: v})
}

// fail returns the dialog to open once no other async success is pending
// and reports err to the sink. The caller's future is left alone.
func (r *request[R]) fail(err error) {
	p := r.p
	p.mu.Lock()
	r.inflight--
	closed := p.closed
	if !r.closed && !closed && r.inflight == 0 {
		r.state = StateOpen
		if r.registered {
			p.setStateLocked(r.key, StateOpen)
		}
	}
	p.mu.Unlock()

	if closed {
		p.logger.Debug("async dialog success rejected after close", "key", r.key, "err", err)
		return
	}
	p.logger.Debug("async dialog success rejected", "key", r.key, "err", err)
	// Close waits for watchers, so the sink must not run on one.
	go p.onError(err)
}
