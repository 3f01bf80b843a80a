package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/loader"
	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/router"
	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/tui/styles"
)

// Favorites view messages
const (
	emptyFavoritesTitle    = "You haven't caught any Pokémon yet!"
	emptyFavoritesSubtitle = "Add your favorite Pokémon to see them here"
	lostTitle              = "Uh-oh! You look lost on your journey!"
	lostSubtitle           = "Press enter to go back home"
)

// isListing reports whether name is served by the infinite-scroll loader.
func isListing(name router.Name) bool {
	return name == router.Pokemons || name == router.PokemonSearch
}

// navigate pushes loc and mounts it.
func (m *Model) navigate(loc router.Location) {
	m.Router.Push(loc)
	m.syncRoute()
}

// syncRoute mounts the router's current location: it mirrors the search
// term into the directory and the search bar, attaches or releases the
// listing loader, and rebuilds the rows.
func (m *Model) syncRoute() {
	loc := m.Router.Current()
	prev := m.location
	m.location = loc

	term := m.Search.Term()
	m.Dir.SetSearchTerm(term)
	m.SearchBar.SetValue(term)

	switch {
	case isListing(loc.Name) && m.pager == nil:
		m.mountLoader()
	case !isListing(loc.Name) && m.pager != nil:
		m.unmountLoader()
	}

	if prev.Path() != loc.Path() {
		m.List.ClearFilter()
		m.List.SetSelectedIndex(0)
		m.closeDetail()
		if loc.Name != router.Home {
			m.resyncFavorites()
		}
	}

	m.List.SetTitle(m.title())
	m.refreshRows()
}

// resyncFavorites re-reads the favorites slot so writes made by other
// processes show up when a screen is entered.
func (m *Model) resyncFavorites() {
	if err := m.Dir.Resync(); err != nil {
		m.logger.Error("failed to resync favorites", "error", err)
		m.StatusMsg = err.Error()
		m.StatusIsErr = true
	}
}

// mountLoader starts a fresh loader with the list as scroll owner.
func (m *Model) mountLoader() {
	m.surface = loader.NewSurface()
	m.surface.SetVisible(m.focused)
	m.List.AttachSurface(m.surface)

	m.pager = loader.New(m.Catalog.FetchPage, m.loaderCfg, m.surface, m.logger)
	m.pager.SetObserver(NewChannelObserver[string](m.loaderCh))
	if err := m.pager.Activate(m.ctx); err != nil && !errors.Is(err, loader.ErrClosed) {
		m.logger.Error("failed to activate loader", "error", err)
	}
}

// unmountLoader releases the loader's listeners and discards its in-flight
// fetch.
func (m *Model) unmountLoader() {
	m.pager.Deactivate()
	m.pager = nil
	m.List.AttachSurface(nil)
	m.List.SetLoading(false)
	m.surface = nil
}

func (m *Model) remountLoader() {
	if m.pager == nil {
		return
	}
	m.unmountLoader()
	m.mountLoader()
}

func (m *Model) title() string {
	switch m.location.Name {
	case router.Pokemons:
		return "All Pokémon"
	case router.PokemonSearch:
		return fmt.Sprintf("Results for %q", m.Search.Term())
	case router.Favorites:
		return "Favorites"
	default:
		return "Pokédex"
	}
}

// refreshRows rebuilds the list for the mounted location.
func (m *Model) refreshRows() {
	m.lost = false

	switch m.location.Name {
	case router.Pokemons:
		m.List.SetEmptyMessage("No pokémon", "")
		m.List.SetItems(m.Dir.GetFilteredPokemonList())

	case router.PokemonSearch:
		m.Search.UpdateCandidates(m.Dir.Names())
		names := m.Search.Filtered()
		sub := ""
		if len(names) == 0 {
			if suggestions := m.Search.Suggest(suggestLimit); len(suggestions) > 0 {
				display := make([]string, len(suggestions))
				for i, s := range suggestions {
					display[i] = styles.DisplayName(s)
				}
				sub = "Did you mean " + strings.Join(display, ", ") + "?"
			}
		}
		m.List.SetEmptyMessage(fmt.Sprintf("No pokémon matches %q", m.Search.Term()), sub)
		m.List.SetItems(names)

	case router.Favorites:
		names := m.Dir.GetFilteredFavorites()
		switch {
		case len(m.Dir.Favorites()) == 0:
			m.List.SetEmptyMessage(emptyFavoritesTitle, emptyFavoritesSubtitle)
		case len(names) == 0:
			m.lost = true
			m.List.SetEmptyMessage(lostTitle, lostSubtitle)
		}
		m.List.SetItems(names)

	default:
		m.List.SetItems(nil)
	}
}

// submitSearch applies a term entered in the search bar. On the favorites
// screen it filters in place; elsewhere it navigates to the results.
func (m Model) submitSearch(term string) (tea.Model, tea.Cmd) {
	m.Search.SetTerm(term)

	if m.location.Name == router.Favorites {
		m.Dir.SetSearchTerm(term)
		m.refreshRows()
		return m, nil
	}

	if !m.Search.HandleSearch() {
		m.SearchBar.SetValue(m.Search.Term())
		return m, nil
	}
	m.syncRoute()
	return m, nil
}

// goHome leaves a lost favorites screen: navigate home and clear the term.
func (m *Model) goHome() {
	m.navigate(router.To(router.Home))
	m.Search.SetTerm("")
	m.Dir.SetSearchTerm("")
	m.SearchBar.SetValue("")
}

func (m *Model) openDetail(name string) tea.Cmd {
	if name == "" {
		return nil
	}
	m.ShowDetail = true
	m.Detail.SetLoading(name)
	m.Detail.SetFavorite(m.Dir.IsFavorite(name))
	m.updateLayout()
	return FetchDetailCmd(m.Catalog, name)
}

func (m *Model) closeDetail() {
	if !m.ShowDetail {
		return
	}
	m.ShowDetail = false
	m.Detail.Clear()
	m.updateLayout()
}
