package loader

import "sync"

// ScrollMetrics describes a scroll owner in rows.
type ScrollMetrics struct {
	ViewportHeight int // Rows visible at once
	ScrollTop      int // Index of the first visible row
	ContentHeight  int // Total rows of content
}

// NearBottom reports whether the viewport's bottom edge is within offset rows
// of the content's bottom edge.
func (m ScrollMetrics) NearBottom(offset int) bool {
	return m.ViewportHeight+m.ScrollTop+offset >= m.ContentHeight
}

// Subscription is the handle returned for a registered listener. Cancel
// removes exactly that registration and is safe to call more than once.
type Subscription interface {
	Cancel()
}

// ScrollOwner is anything that scrolls: a list widget or the whole page.
type ScrollOwner interface {
	Metrics() ScrollMetrics
	OnScroll(fn func()) Subscription
}

// Page is the default scroll owner. It also reports visibility, which
// containers do not.
type Page interface {
	ScrollOwner
	Visible() bool
	OnVisibilityChange(fn func()) Subscription
}

// Emitter is a minimal listener registry keyed by registration, not by
// function identity.
type Emitter struct {
	mu        sync.Mutex
	next      uint64
	listeners map[uint64]func()
}

// Subscribe registers fn and returns its handle.
func (e *Emitter) Subscribe(fn func()) Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.listeners == nil {
		e.listeners = make(map[uint64]func())
	}
	e.next++
	id := e.next
	e.listeners[id] = fn
	return &subscription{emitter: e, id: id}
}

// Emit calls every registered listener. Listeners run outside the lock so
// they may subscribe or cancel.
func (e *Emitter) Emit() {
	e.mu.Lock()
	fns := make([]func(), 0, len(e.listeners))
	for _, fn := range e.listeners {
		fns = append(fns, fn)
	}
	e.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Len returns the number of live registrations.
func (e *Emitter) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners)
}

type subscription struct {
	emitter *Emitter
	id      uint64
	once    sync.Once
}

func (s *subscription) Cancel() {
	s.once.Do(func() {
		s.emitter.mu.Lock()
		delete(s.emitter.listeners, s.id)
		s.emitter.mu.Unlock()
	})
}

// Surface is a concrete Page whose metrics and visibility are pushed in by
// the owner of the rendered content.
type Surface struct {
	scroll     Emitter
	visibility Emitter

	mu      sync.RWMutex
	metrics ScrollMetrics
	hidden  bool
}

// NewSurface returns a visible surface with zero metrics.
func NewSurface() *Surface {
	return &Surface{}
}

func (s *Surface) Metrics() ScrollMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metrics
}

func (s *Surface) Visible() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.hidden
}

func (s *Surface) OnScroll(fn func()) Subscription {
	return s.scroll.Subscribe(fn)
}

func (s *Surface) OnVisibilityChange(fn func()) Subscription {
	return s.visibility.Subscribe(fn)
}

// ScrollTo records new metrics and notifies scroll listeners.
func (s *Surface) ScrollTo(m ScrollMetrics) {
	s.mu.Lock()
	s.metrics = m
	s.mu.Unlock()
	s.scroll.Emit()
}

// SetMetrics records new metrics without emitting a scroll event.
func (s *Surface) SetMetrics(m ScrollMetrics) {
	s.mu.Lock()
	s.metrics = m
	s.mu.Unlock()
}

// SetVisible records visibility and notifies listeners when it changes.
func (s *Surface) SetVisible(visible bool) {
	s.mu.Lock()
	changed := s.hidden == visible
	s.hidden = !visible
	s.mu.Unlock()

	if changed {
		s.visibility.Emit()
	}
}

// Listeners returns the number of live scroll and visibility registrations.
func (s *Surface) Listeners() (scroll, visibility int) {
	return s.scroll.Len(), s.visibility.Len()
}
