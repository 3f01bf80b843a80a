package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/router"
)

// handleKeyMsg routes keys: text inputs first, then global bindings, then
// the bindings of the mounted screen.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Search bar captures everything while focused
	if m.SearchBar.Focused() {
		var cmd tea.Cmd
		m.SearchBar, cmd = m.SearchBar.Update(msg)
		if m.location.Name == router.Favorites && m.SearchBar.Focused() {
			// Filter favorites as you type
			m.Dir.SetSearchTerm(m.SearchBar.Value())
			m.refreshRows()
		}
		return m, cmd
	}

	// Quick filter captures everything while typing
	if m.List.IsFilterTyping() {
		var cmd tea.Cmd
		m.List, cmd = m.List.Update(msg)
		return m, cmd
	}

	if m.ShowHelp {
		m.ShowHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, Keys.Help):
		m.ShowHelp = true
		return m, nil
	case key.Matches(msg, Keys.Search):
		return m, m.SearchBar.Focus()
	case key.Matches(msg, Keys.Home):
		m.navigate(router.To(router.Home))
		return m, nil
	case key.Matches(msg, Keys.Pokemons):
		m.navigate(router.To(router.Pokemons))
		return m, nil
	case key.Matches(msg, Keys.Favorites):
		m.navigate(router.To(router.Favorites))
		return m, nil
	case key.Matches(msg, Keys.ClearSearch):
		m.Search.ClearSearch()
		m.syncRoute()
		return m, nil
	case key.Matches(msg, Keys.Refresh):
		return m, RefreshCmd(m.Catalog)
	case key.Matches(msg, Keys.Escape) && m.ShowDetail:
		m.closeDetail()
		return m, nil
	case key.Matches(msg, Keys.Back):
		if m.Router.Back() {
			m.syncRoute()
		}
		return m, nil
	}

	if m.location.Name == router.Home {
		if key.Matches(msg, Keys.Enter) {
			m.navigate(router.To(router.Pokemons))
		}
		return m, nil
	}

	if m.lost && key.Matches(msg, Keys.Enter) {
		m.goHome()
		return m, nil
	}

	switch {
	case key.Matches(msg, Keys.Enter):
		return m, m.openDetail(m.List.Selected())
	case key.Matches(msg, Keys.Favorite):
		if name := m.List.Selected(); name != "" {
			return m, ToggleFavoriteCmd(m.Dir, name)
		}
		return m, nil
	case msg.String() == "/":
		m.List.ToggleFilter()
		return m, nil
	}

	var cmd tea.Cmd
	m.List, cmd = m.List.Update(msg)
	if m.ShowDetail && m.List.Selected() != m.Detail.Name() {
		return m, tea.Batch(cmd, m.openDetail(m.List.Selected()))
	}
	return m, cmd
}
