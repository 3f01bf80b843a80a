package tui

import (
	"context"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/catalog"
	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/directory"
	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/domain"
	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/loader"
	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/router"
	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/search"
	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/store"
	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/tui/components"
)

// dexClient serves total entries named "mon-<n>".
type dexClient struct {
	total int
}

func (c dexClient) ListPokemon(_ context.Context, page, limit int) ([]domain.Pokemon, error) {
	items := []domain.Pokemon{}
	for i := (page-1)*limit + 1; i <= page*limit && i <= c.total; i++ {
		items = append(items, domain.Pokemon{Name: fmt.Sprintf("mon-%d", i), ID: fmt.Sprint(i)})
	}
	return items, nil
}

func (c dexClient) GetPokemon(_ context.Context, name string) (*domain.PokemonDetail, error) {
	return &domain.PokemonDetail{ID: 7, Name: name, Types: []string{"water"}, Height: 5, Weight: 90}, nil
}

func newTestModel(t *testing.T, start string, total int) Model {
	t.Helper()
	m, _ := newTestModelWithStore(t, start, total)
	return m
}

func newTestModelWithStore(t *testing.T, start string, total int) (Model, store.KV) {
	t.Helper()

	kv, err := store.New(store.BackendMemory, "")
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	dir, err := directory.Open(kv, "", nil)
	require.NoError(t, err)

	r := router.New(router.Resolve(start), nil)
	ctrl := search.NewController(r, nil)
	t.Cleanup(ctrl.Close)

	m := NewModel(Options{
		Catalog: catalog.NewService(dexClient{total: total}, nil, dir, nil),
		Router:  r,
		Search:  ctrl,
		Loader:  loader.Config{Limit: 10, ScrollOffset: 1, RecheckDelay: 10 * time.Millisecond},
		ShowIDs: true,
	})
	return m, kv
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var enter = tea.KeyMsg{Type: tea.KeyEnter}

// settle waits for the loader and delivers change signals until no further
// page is requested.
func settle(t *testing.T, m Model) Model {
	t.Helper()
	require.NotNil(t, m.pager)
	for range 10 {
		m.pager.Wait()
		before := len(m.pager.State().Items)
		m, _ = update(t, m, LoaderChangedMsg{})
		m.pager.Wait()
		if len(m.pager.State().Items) == before {
			m, _ = update(t, m, LoaderChangedMsg{})
			return m
		}
	}
	t.Fatal("loader did not settle")
	return m
}

func TestHome_EnterOpensListing(t *testing.T) {
	m := newTestModel(t, "/", 25)
	defer func() { m.Close() }()

	assert.Equal(t, router.Home, m.Location().Name)
	assert.Nil(t, m.pager)

	m, _ = update(t, m, enter)
	assert.Equal(t, router.Pokemons, m.Location().Name)

	m = settle(t, m)
	assert.True(t, m.Dir.InitialLoad())
	assert.Equal(t, 10, m.List.ItemCount())
	assert.Equal(t, "mon-1", m.List.Selected())
}

func TestListing_ResizeAndScrollLoadMore(t *testing.T) {
	m := newTestModel(t, "/pokemons", 25)
	defer func() { m.Close() }()

	m = settle(t, m)
	assert.Equal(t, 10, m.List.ItemCount())

	// A viewport taller than the content asks for the next page
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 20})
	m = settle(t, m)
	assert.Equal(t, 20, m.List.ItemCount())

	// Scrolling to the bottom requests the last, short page
	m, _ = update(t, m, keyRunes("G"))
	m = settle(t, m)
	assert.Equal(t, 25, m.List.ItemCount())
	assert.False(t, m.pager.State().HasMore)
}

func TestListing_ToggleFavorite(t *testing.T) {
	m := newTestModel(t, "/pokemons", 5)
	defer func() { m.Close() }()
	m = settle(t, m)

	m, cmd := update(t, m, keyRunes("f"))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())

	assert.True(t, m.Dir.IsFavorite("mon-1"))
	assert.Equal(t, "Mon-1 added to favorites", m.StatusMsg)

	m, cmd = update(t, m, keyRunes("f"))
	m, _ = update(t, m, cmd())
	assert.False(t, m.Dir.IsFavorite("mon-1"))
}

func TestListing_DetailPanel(t *testing.T) {
	m := newTestModel(t, "/pokemons", 5)
	defer func() { m.Close() }()
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 20})
	m = settle(t, m)

	m, cmd := update(t, m, enter)
	require.NotNil(t, cmd)
	assert.True(t, m.ShowDetail)

	m, _ = update(t, m, cmd())
	assert.Equal(t, "mon-1", m.Detail.Name())
	assert.Contains(t, m.View(), "0.5 m")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.ShowDetail)
}

func TestSearch_SubmitNavigatesAndClear(t *testing.T) {
	m := newTestModel(t, "/pokemons", 25)
	defer func() { m.Close() }()
	m = settle(t, m)

	m, _ = update(t, m, keyRunes("s"))
	require.True(t, m.SearchBar.Focused())
	m, _ = update(t, m, keyRunes("mon-1"))

	m, cmd := update(t, m, enter)
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())

	assert.Equal(t, router.PokemonSearch, m.Location().Name)
	assert.Equal(t, "mon-1", m.Location().Param(router.ParamName))
	assert.Equal(t, "mon-1", m.Search.Term())
	assert.Equal(t, "mon-1", m.Dir.SearchTerm())
	assert.Equal(t, 2, m.List.ItemCount()) // mon-1, mon-10
	assert.NotNil(t, m.pager)

	m, _ = update(t, m, keyRunes("x"))
	assert.Equal(t, router.Pokemons, m.Location().Name)
	assert.Equal(t, "", m.Search.Term())
	assert.Equal(t, 10, m.List.ItemCount())
}

func TestSearch_BlankTermDoesNotNavigate(t *testing.T) {
	m := newTestModel(t, "/pokemons", 5)
	defer func() { m.Close() }()

	m, _ = update(t, m, keyRunes("s"))
	m, _ = update(t, m, keyRunes("   "))
	m, cmd := update(t, m, enter)
	m, _ = update(t, m, cmd())

	assert.Equal(t, router.Pokemons, m.Location().Name)
}

func TestDeepLink_SearchTermFromPath(t *testing.T) {
	m := newTestModel(t, "/search?name=mon-2", 25)
	defer func() { m.Close() }()

	assert.Equal(t, router.PokemonSearch, m.Location().Name)
	assert.Equal(t, "mon-2", m.Search.Term())
	assert.Equal(t, "mon-2", m.SearchBar.Value())

	m = settle(t, m)
	assert.Equal(t, []string{"mon-2"}, []string{m.List.Selected()})
}

func TestUnknownPathRedirectsHome(t *testing.T) {
	m := newTestModel(t, "/missingno", 5)
	defer func() { m.Close() }()
	assert.Equal(t, router.Home, m.Location().Name)
}

func TestFavorites_EmptyThenLostThenHome(t *testing.T) {
	m := newTestModel(t, "/", 5)
	defer func() { m.Close() }()
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 20})

	m, _ = update(t, m, keyRunes("3"))
	assert.Equal(t, router.Favorites, m.Location().Name)
	assert.Zero(t, m.List.ItemCount())
	assert.Contains(t, m.View(), emptyFavoritesTitle)

	require.NoError(t, m.Dir.AddFavorite("pikachu"))
	m, _ = update(t, m, keyRunes("s"))
	m, _ = update(t, m, keyRunes("zzz"))
	assert.True(t, m.lost)

	m, cmd := update(t, m, enter)
	m, _ = update(t, m, cmd())
	assert.Equal(t, router.Favorites, m.Location().Name)
	assert.True(t, m.lost)
	assert.Contains(t, m.View(), lostTitle)

	m, _ = update(t, m, enter)
	assert.Equal(t, router.Home, m.Location().Name)
	assert.Equal(t, "", m.Search.Term())
	assert.Equal(t, "", m.Dir.SearchTerm())
}

func TestFavorites_ListsSorted(t *testing.T) {
	m := newTestModel(t, "/favorites", 5)
	defer func() { m.Close() }()

	require.NoError(t, m.Dir.AddFavorite("squirtle"))
	require.NoError(t, m.Dir.AddFavorite("bulbasaur"))
	m, _ = update(t, m, FavoritesChangedMsg{})

	assert.Equal(t, 2, m.List.ItemCount())
	assert.Equal(t, "bulbasaur", m.List.Selected())
}

func TestLeavingListingReleasesLoader(t *testing.T) {
	m := newTestModel(t, "/pokemons", 25)
	defer func() { m.Close() }()
	m = settle(t, m)

	surface := m.surface
	scroll, visibility := surface.Listeners()
	assert.Equal(t, 1, scroll)
	assert.Equal(t, 1, visibility)

	m, _ = update(t, m, keyRunes("1"))
	assert.Nil(t, m.pager)
	scroll, visibility = surface.Listeners()
	assert.Zero(t, scroll)
	assert.Zero(t, visibility)
}

func TestFocusDrivesVisibility(t *testing.T) {
	m := newTestModel(t, "/pokemons", 5)
	defer func() { m.Close() }()
	m = settle(t, m)

	m, _ = update(t, m, tea.BlurMsg{})
	assert.False(t, m.surface.Visible())

	m, _ = update(t, m, tea.FocusMsg{})
	assert.True(t, m.surface.Visible())
}

func TestSearchBar_CancelRestoresTerm(t *testing.T) {
	m := newTestModel(t, "/search?name=mon", 5)
	defer func() { m.Close() }()

	m, _ = update(t, m, keyRunes("s"))
	m, _ = update(t, m, keyRunes("zz"))
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	msg := cmd()
	assert.IsType(t, components.SearchCancelMsg{}, msg)
	m, _ = update(t, m, msg)

	assert.Equal(t, "mon", m.SearchBar.Value())
	assert.Equal(t, router.PokemonSearch, m.Location().Name)
}

func TestEnteringScreenPicksUpExternalFavorites(t *testing.T) {
	m, kv := newTestModelWithStore(t, "/", 5)
	defer func() { m.Close() }()

	// Another process rewrites the slot while the app is on the home screen
	require.NoError(t, kv.Set(directory.DefaultFavoritesKey, `{"mew":"mew","eevee":"eevee"}`))
	assert.False(t, m.Dir.IsFavorite("mew"))

	m, _ = update(t, m, keyRunes("3"))
	assert.Equal(t, router.Favorites, m.Location().Name)
	assert.Equal(t, 2, m.List.ItemCount())
	assert.Equal(t, "eevee", m.List.Selected())

	require.NoError(t, kv.Set(directory.DefaultFavoritesKey, `{"ditto":"ditto"}`))
	m, _ = update(t, m, keyRunes("2"))
	m = settle(t, m)
	assert.True(t, m.Dir.IsFavorite("ditto"))
	assert.False(t, m.Dir.IsFavorite("mew"))
}
