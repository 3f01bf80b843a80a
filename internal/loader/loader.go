// Package loader drives incremental pagination: it calls a page fetcher,
// accumulates results, tracks exhaustion, and loads more when the scroll
// owner nears its bottom edge.
package loader

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

const (
	DefaultLimit        = 10
	DefaultScrollOffset = 10
	DefaultRecheckDelay = 100 * time.Millisecond
)

// ErrClosed is returned by Activate once the loader has been deactivated.
var ErrClosed = errors.New("loader is deactivated")

// FetchFunc returns page (1-based) of at most limit items. A nil slice with a
// nil error is a void result: the page advances but nothing is appended.
type FetchFunc[T any] func(ctx context.Context, page, limit int) ([]T, error)

// Config controls paging and the scroll trigger.
type Config struct {
	Limit        int           // Page size; 0 selects DefaultLimit
	ScrollOffset int           // Rows from the bottom that trigger a load; 0 selects DefaultScrollOffset
	RecheckDelay time.Duration // Delay before re-checking scroll after becoming visible
	Container    ScrollOwner   // Scroll owner; nil means the page
}

// State is a snapshot of the loader.
type State[T any] struct {
	Page    int
	Loading bool
	Items   []T
	HasMore bool
}

// Observer receives a snapshot after every state transition.
type Observer[T any] interface {
	OnChange(State[T])
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc[T any] func(State[T])

func (f ObserverFunc[T]) OnChange(s State[T]) { f(s) }

// Loader accumulates pages from a FetchFunc. At most one fetch is in flight;
// LoadItems is a no-op while loading or after exhaustion.
type Loader[T any] struct {
	fetch    FetchFunc[T]
	cfg      Config
	page     Page
	owner    ScrollOwner
	logger   *slog.Logger
	observer Observer[T]

	mu      sync.Mutex
	current int
	loading bool
	items   []T
	hasMore bool

	active        bool
	closed        bool
	ctx           context.Context
	cancel        context.CancelFunc
	scrollSub     Subscription
	visibilitySub Subscription
	recheck       *time.Timer

	wg sync.WaitGroup
}

// New creates an inactive loader. page supplies visibility and is the scroll
// owner unless cfg.Container is set.
func New[T any](fetch FetchFunc[T], cfg Config, page Page, logger *slog.Logger) *Loader[T] {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	if cfg.ScrollOffset <= 0 {
		cfg.ScrollOffset = DefaultScrollOffset
	}
	if cfg.RecheckDelay <= 0 {
		cfg.RecheckDelay = DefaultRecheckDelay
	}

	var owner ScrollOwner = page
	if cfg.Container != nil {
		owner = cfg.Container
	}

	return &Loader[T]{
		fetch:   fetch,
		cfg:     cfg,
		page:    page,
		owner:   owner,
		logger:  logger,
		current: 1,
		hasMore: true,
		ctx:     context.Background(),
	}
}

// SetObserver installs the change observer. Call before Activate.
func (l *Loader[T]) SetObserver(o Observer[T]) {
	l.mu.Lock()
	l.observer = o
	l.mu.Unlock()
}

// State returns a snapshot. The Items slice is capacity-clipped so callers
// cannot append into the loader's backing array.
func (l *Loader[T]) State() State[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot()
}

func (l *Loader[T]) snapshot() State[T] {
	return State[T]{
		Page:    l.current,
		Loading: l.loading,
		Items:   l.items[:len(l.items):len(l.items)],
		HasMore: l.hasMore,
	}
}

// Activate performs the initial load and attaches the scroll and visibility
// listeners. Calling it on an active loader does nothing.
func (l *Loader[T]) Activate(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	if l.active {
		l.mu.Unlock()
		return nil
	}
	l.active = true
	l.ctx, l.cancel = context.WithCancel(ctx)
	l.scrollSub = l.owner.OnScroll(l.handleScroll)
	l.visibilitySub = l.page.OnVisibilityChange(l.handleVisibility)
	l.mu.Unlock()

	l.spawn()
	return nil
}

// Deactivate releases both listeners, stops any pending re-check and cancels
// the in-flight fetch. Results that arrive afterwards are discarded.
func (l *Loader[T]) Deactivate() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.active = false

	scrollSub, visibilitySub := l.scrollSub, l.visibilitySub
	l.scrollSub, l.visibilitySub = nil, nil
	if l.recheck != nil {
		l.recheck.Stop()
		l.recheck = nil
	}
	if l.cancel != nil {
		l.cancel()
	}
	l.mu.Unlock()

	if scrollSub != nil {
		scrollSub.Cancel()
	}
	if visibilitySub != nil {
		visibilitySub.Cancel()
	}
}

// Wait blocks until loads started by triggers have returned.
func (l *Loader[T]) Wait() {
	l.wg.Wait()
}

// LoadItems fetches the next page. It returns nil without fetching while a
// load is in flight or once the last page was short, and ErrClosed after
// Deactivate. Fetch errors are logged
// and returned; items and page are left untouched.
func (l *Loader[T]) LoadItems(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	if l.loading || !l.hasMore {
		l.mu.Unlock()
		return nil
	}
	l.loading = true
	page := l.current
	l.notifyLocked()

	items, err := l.fetch(ctx, page, l.cfg.Limit)

	l.mu.Lock()
	defer func() {
		l.loading = false
		l.notifyLocked()
	}()

	if err != nil {
		if l.closed && errors.Is(err, context.Canceled) {
			return nil
		}
		l.logger.Error("error loading items", "page", page, "limit", l.cfg.Limit, "error", err)
		return err
	}
	if l.closed {
		l.logger.Debug("discarding page after deactivation", "page", page)
		return nil
	}

	if items != nil {
		if len(items) < l.cfg.Limit {
			l.hasMore = false
		}
		l.items = append(l.items, items...)
	}
	l.current++
	return nil
}

// notifyLocked snapshots under l.mu, releases it, then calls the observer.
func (l *Loader[T]) notifyLocked() {
	snap := l.snapshot()
	observer := l.observer
	l.mu.Unlock()

	if observer != nil {
		observer.OnChange(snap)
	}
}

// CheckScroll loads the next page when the scroll owner is within
// ScrollOffset rows of the bottom and nothing is loading.
func (l *Loader[T]) CheckScroll() {
	l.mu.Lock()
	idle := l.active && !l.loading
	l.mu.Unlock()
	if !idle {
		return
	}

	if l.owner.Metrics().NearBottom(l.cfg.ScrollOffset) {
		l.spawn()
	}
}

func (l *Loader[T]) handleScroll() {
	l.CheckScroll()
}

func (l *Loader[T]) handleVisibility() {
	if !l.page.Visible() {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.active {
		return
	}
	if l.recheck != nil {
		l.recheck.Stop()
	}
	l.recheck = time.AfterFunc(l.cfg.RecheckDelay, l.CheckScroll)
}

// spawn runs LoadItems on the activation context in its own goroutine.
func (l *Loader[T]) spawn() {
	l.mu.Lock()
	if !l.active {
		l.mu.Unlock()
		return
	}
	ctx := l.ctx
	l.wg.Add(1)
	l.mu.Unlock()

	go func() {
		defer l.wg.Done()
		_ = l.LoadItems(ctx)
	}()
}
