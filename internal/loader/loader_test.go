package loader

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type testItem struct {
	ID   int
	Name string
}

// scriptedFetch replays queued results and records every call.
type scriptedFetch struct {
	mu      sync.Mutex
	calls   [][2]int
	results []fetchResult
}

type fetchResult struct {
	items []testItem
	err   error
	gate  chan struct{} // if set, the fetch blocks until closed
}

func (f *scriptedFetch) push(items []testItem) *scriptedFetch {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, fetchResult{items: items})
	return f
}

func (f *scriptedFetch) pushErr(err error) *scriptedFetch {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, fetchResult{err: err})
	return f
}

func (f *scriptedFetch) pushGated(items []testItem, gate chan struct{}) *scriptedFetch {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, fetchResult{items: items, gate: gate})
	return f
}

func (f *scriptedFetch) fetch(ctx context.Context, page, limit int) ([]testItem, error) {
	f.mu.Lock()
	f.calls = append(f.calls, [2]int{page, limit})
	var r fetchResult
	if len(f.results) > 0 {
		r = f.results[0]
		f.results = f.results[1:]
	}
	f.mu.Unlock()

	if r.gate != nil {
		select {
		case <-r.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return r.items, r.err
}

func (f *scriptedFetch) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func makeItems(from, n int) []testItem {
	items := make([]testItem, n)
	for i := range items {
		items[i] = testItem{ID: from + i, Name: "item"}
	}
	return items
}

func TestActivate_InitialLoad(t *testing.T) {
	mockItems := []testItem{{ID: 1, Name: "Item 1"}, {ID: 2, Name: "Item 2"}}
	f := (&scriptedFetch{}).push(mockItems)
	surface := NewSurface()

	l := New(f.fetch, Config{}, surface, nil)
	require.NoError(t, l.Activate(context.Background()))
	l.Wait()
	defer l.Deactivate()

	assert.Equal(t, [][2]int{{1, 10}}, f.calls)
	st := l.State()
	assert.Equal(t, mockItems, st.Items)
	assert.False(t, st.Loading)
	assert.False(t, st.HasMore)
	assert.Equal(t, 2, st.Page)
}

func TestLoadItems_ShortPageExhausts(t *testing.T) {
	f := (&scriptedFetch{}).push([]testItem{{ID: 1, Name: "Item 1"}})
	l := New(f.fetch, Config{Limit: 10, ScrollOffset: 10}, NewSurface(), nil)

	require.NoError(t, l.LoadItems(context.Background()))
	assert.False(t, l.State().HasMore)
}

func TestLoadItems_AppendsInFetchOrder(t *testing.T) {
	first := []testItem{{ID: 1, Name: "Item 1"}, {ID: 2, Name: "Item 2"}}
	second := []testItem{{ID: 3, Name: "Item 3"}, {ID: 4, Name: "Item 4"}}
	f := (&scriptedFetch{}).push(first).push(second)

	l := New(f.fetch, Config{Limit: 2}, NewSurface(), nil)
	require.NoError(t, l.Activate(context.Background()))
	l.Wait()
	defer l.Deactivate()

	assert.Equal(t, first, l.State().Items)
	assert.Equal(t, 1, f.callCount())

	require.NoError(t, l.LoadItems(context.Background()))

	assert.Equal(t, 2, f.callCount())
	assert.Equal(t, [][2]int{{1, 2}, {2, 2}}, f.calls)
	if diff := cmp.Diff(append(append([]testItem{}, first...), second...), l.State().Items); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadItems_ErrorLeavesStateUntouched(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	loadErr := errors.New("load failed")
	f := (&scriptedFetch{}).pushErr(loadErr)

	l := New(f.fetch, Config{}, NewSurface(), logger)
	err := l.LoadItems(context.Background())

	assert.ErrorIs(t, err, loadErr)
	st := l.State()
	assert.False(t, st.Loading)
	assert.Empty(t, st.Items)
	assert.Equal(t, 1, st.Page)
	assert.True(t, st.HasMore)
	assert.Contains(t, buf.String(), "error loading items")
	assert.Contains(t, buf.String(), "load failed")
}

func TestLoadItems_RetryAfterError(t *testing.T) {
	f := (&scriptedFetch{}).pushErr(errors.New("flaky")).push(makeItems(1, 10))
	l := New(f.fetch, Config{}, NewSurface(), slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	_ = l.LoadItems(context.Background())
	require.NoError(t, l.LoadItems(context.Background()))

	assert.Equal(t, [][2]int{{1, 10}, {1, 10}}, f.calls, "failed page is requested again")
	assert.Equal(t, 2, l.State().Page)
}

func TestLoadItems_VoidResultAdvancesPage(t *testing.T) {
	f := (&scriptedFetch{}).push(nil)
	l := New(f.fetch, Config{}, NewSurface(), nil)

	require.NoError(t, l.LoadItems(context.Background()))

	st := l.State()
	assert.Equal(t, 2, st.Page)
	assert.True(t, st.HasMore)
	assert.Empty(t, st.Items)
}

func TestLoadItems_EmptyPageExhausts(t *testing.T) {
	f := (&scriptedFetch{}).push([]testItem{})
	l := New(f.fetch, Config{}, NewSurface(), nil)

	require.NoError(t, l.LoadItems(context.Background()))

	st := l.State()
	assert.Equal(t, 2, st.Page)
	assert.False(t, st.HasMore)
}

func TestLoadItems_EndToEnd(t *testing.T) {
	f := (&scriptedFetch{}).push(makeItems(1, 10)).push(makeItems(11, 3))
	l := New(f.fetch, Config{Limit: 10}, NewSurface(), nil)
	ctx := context.Background()

	require.NoError(t, l.LoadItems(ctx))
	st := l.State()
	assert.True(t, st.HasMore)
	assert.Equal(t, 2, st.Page)

	require.NoError(t, l.LoadItems(ctx))
	st = l.State()
	assert.Len(t, st.Items, 13)
	assert.False(t, st.HasMore)
	assert.Equal(t, 3, st.Page)

	require.NoError(t, l.LoadItems(ctx))
	assert.Equal(t, 2, f.callCount(), "exhausted loader must not fetch")
	assert.Equal(t, st, l.State())
}

func TestLoadItems_PageAccounting(t *testing.T) {
	sizes := []int{5, 5, 5, 2}
	f := &scriptedFetch{}
	next := 1
	for _, n := range sizes {
		f.push(makeItems(next, n))
		next += n
	}
	l := New(f.fetch, Config{Limit: 5}, NewSurface(), nil)

	total := 0
	for k, n := range sizes {
		require.NoError(t, l.LoadItems(context.Background()))
		total += n
		st := l.State()
		assert.Len(t, st.Items, total)
		assert.Equal(t, k+2, st.Page)
		assert.Equal(t, n == 5, st.HasMore)
	}
}

func TestLoadItems_SuppressedWhileLoading(t *testing.T) {
	gate := make(chan struct{})
	f := (&scriptedFetch{}).pushGated(makeItems(1, 10), gate)
	l := New(f.fetch, Config{}, NewSurface(), nil)

	done := make(chan error, 1)
	go func() { done <- l.LoadItems(context.Background()) }()

	require.Eventually(t, func() bool { return l.State().Loading }, time.Second, time.Millisecond)
	before := l.State()

	require.NoError(t, l.LoadItems(context.Background()))
	assert.Equal(t, 1, f.callCount())
	assert.Equal(t, before, l.State())

	close(gate)
	require.NoError(t, <-done)
	assert.Len(t, l.State().Items, 10)
}

func TestActivate_RegistersListeners(t *testing.T) {
	f := (&scriptedFetch{}).push([]testItem{})
	surface := NewSurface()

	l := New(f.fetch, Config{}, surface, nil)
	require.NoError(t, l.Activate(context.Background()))
	l.Wait()

	scroll, visibility := surface.Listeners()
	assert.Equal(t, 1, scroll)
	assert.Equal(t, 1, visibility)

	l.Deactivate()
	scroll, visibility = surface.Listeners()
	assert.Zero(t, scroll)
	assert.Zero(t, visibility)

	// A second teardown must not release anything twice.
	l.Deactivate()
	assert.ErrorIs(t, l.Activate(context.Background()), ErrClosed)
}

func TestActivate_UsesContainer(t *testing.T) {
	f := (&scriptedFetch{}).push([]testItem{{ID: 1, Name: "Item 1"}})
	page := NewSurface()
	container := NewSurface()

	l := New(f.fetch, Config{Limit: 10, ScrollOffset: 10, Container: container}, page, nil)
	require.NoError(t, l.Activate(context.Background()))
	l.Wait()
	defer l.Deactivate()

	containerScroll, _ := container.Listeners()
	pageScroll, pageVisibility := page.Listeners()
	assert.Equal(t, 1, containerScroll)
	assert.Zero(t, pageScroll)
	assert.Equal(t, 1, pageVisibility, "visibility always comes from the page")
}

func TestScroll_NearBottomLoads(t *testing.T) {
	f := (&scriptedFetch{}).push(makeItems(1, 10)).push(makeItems(11, 10))
	surface := NewSurface()

	l := New(f.fetch, Config{ScrollOffset: 2}, surface, nil)
	require.NoError(t, l.Activate(context.Background()))
	l.Wait()
	defer l.Deactivate()

	// 5 visible rows at top of 10: 5+0+2 < 10
	surface.ScrollTo(ScrollMetrics{ViewportHeight: 5, ScrollTop: 0, ContentHeight: 10})
	l.Wait()
	assert.Equal(t, 1, f.callCount())

	// 5+3+2 >= 10
	surface.ScrollTo(ScrollMetrics{ViewportHeight: 5, ScrollTop: 3, ContentHeight: 10})
	l.Wait()
	assert.Equal(t, 2, f.callCount())
	assert.Len(t, l.State().Items, 20)
}

func TestVisibility_RechecksAfterDelay(t *testing.T) {
	f := (&scriptedFetch{}).push(makeItems(1, 10)).push(makeItems(11, 4))
	surface := NewSurface()

	l := New(f.fetch, Config{RecheckDelay: 10 * time.Millisecond}, surface, nil)
	require.NoError(t, l.Activate(context.Background()))
	l.Wait()
	defer func() {
		l.Deactivate()
		l.Wait()
	}()

	surface.SetVisible(false)
	surface.SetMetrics(ScrollMetrics{ViewportHeight: 10, ScrollTop: 0, ContentHeight: 10})
	surface.SetVisible(true)

	require.Eventually(t, func() bool {
		st := l.State()
		return len(st.Items) == 14 && !st.Loading
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, f.callCount())
}

func TestDeactivate_DiscardsLateResult(t *testing.T) {
	gate := make(chan struct{})
	f := (&scriptedFetch{}).pushGated(makeItems(1, 10), gate)
	l := New(f.fetch, Config{}, NewSurface(), nil)

	require.NoError(t, l.Activate(context.Background()))
	require.Eventually(t, func() bool { return l.State().Loading }, time.Second, time.Millisecond)

	l.Deactivate()
	l.Wait()

	st := l.State()
	assert.Empty(t, st.Items)
	assert.Equal(t, 1, st.Page)
	assert.False(t, st.Loading)
	assert.ErrorIs(t, l.LoadItems(context.Background()), ErrClosed)
	close(gate)
}

func TestObserver_SeesTransitions(t *testing.T) {
	f := (&scriptedFetch{}).push(makeItems(1, 3))
	l := New(f.fetch, Config{}, NewSurface(), nil)

	var states []State[testItem]
	l.SetObserver(ObserverFunc[testItem](func(s State[testItem]) {
		states = append(states, s)
	}))

	require.NoError(t, l.LoadItems(context.Background()))

	require.Len(t, states, 2)
	assert.True(t, states[0].Loading)
	assert.Empty(t, states[0].Items)
	assert.False(t, states[1].Loading)
	assert.Len(t, states[1].Items, 3)
}

func TestState_ItemsCannotBeAppendedInto(t *testing.T) {
	f := (&scriptedFetch{}).push(makeItems(1, 10)).push(makeItems(11, 1))
	l := New(f.fetch, Config{}, NewSurface(), nil)
	require.NoError(t, l.LoadItems(context.Background()))

	snap := l.State().Items
	_ = append(snap, testItem{ID: 99})

	require.NoError(t, l.LoadItems(context.Background()))
	assert.Equal(t, 11, l.State().Items[10].ID)
}

func TestScrollMetrics_NearBottom(t *testing.T) {
	tests := []struct {
		name   string
		m      ScrollMetrics
		offset int
		want   bool
	}{
		{"top of long list", ScrollMetrics{ViewportHeight: 20, ScrollTop: 0, ContentHeight: 100}, 10, false},
		{"inside offset", ScrollMetrics{ViewportHeight: 20, ScrollTop: 75, ContentHeight: 100}, 10, true},
		{"exact boundary", ScrollMetrics{ViewportHeight: 20, ScrollTop: 70, ContentHeight: 100}, 10, true},
		{"one short", ScrollMetrics{ViewportHeight: 20, ScrollTop: 69, ContentHeight: 100}, 10, false},
		{"content fits", ScrollMetrics{ViewportHeight: 20, ScrollTop: 0, ContentHeight: 5}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.m.NearBottom(tt.offset))
		})
	}
}

func TestEmitter_CancelRemovesOnlyItsRegistration(t *testing.T) {
	var e Emitter
	var a, b int
	subA := e.Subscribe(func() { a++ })
	e.Subscribe(func() { b++ })

	subA.Cancel()
	subA.Cancel()
	e.Emit()

	assert.Zero(t, a)
	assert.Equal(t, 1, b)
	assert.Equal(t, 1, e.Len())
}
