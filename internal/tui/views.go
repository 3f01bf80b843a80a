package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/router"
	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/tui/styles"
)

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	header := m.renderHeader()
	searchLine := m.SearchBar.View()
	footer := m.renderFooter()

	var body string
	switch {
	case m.ShowHelp:
		body = m.renderHelp()
	case m.location.Name == router.Home:
		body = m.renderHome()
	case isListing(m.location.Name) && !m.Dir.InitialLoad():
		body = m.renderCentered(m.Spinner.View() + " Loading pokémon...")
	case m.ShowDetail:
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.List.View(), m.Detail.View())
	default:
		body = m.List.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, searchLine, body, footer)
}

func (m Model) renderHeader() string {
	tabs := []struct {
		name  router.Name
		label string
	}{
		{router.Home, "1 Home"},
		{router.Pokemons, "2 All"},
		{router.Favorites, "3 Favorites"},
	}

	parts := []string{styles.BadgeStyle.Render("Pokédex")}
	for _, tab := range tabs {
		active := m.location.Name == tab.name ||
			(tab.name == router.Pokemons && m.location.Name == router.PokemonSearch)
		if active {
			parts = append(parts, styles.AccentStyle.Bold(true).Render(tab.label))
		} else {
			parts = append(parts, styles.DimStyle.Render(tab.label))
		}
	}

	left := strings.Join(parts, "  ")
	right := styles.DimStyle.Render(m.location.Path())

	gap := m.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderFooter() string {
	if m.StatusMsg != "" {
		if m.StatusIsErr {
			return styles.ErrorStyle.Render(m.StatusMsg)
		}
		return styles.SuccessStyle.Render(m.StatusMsg)
	}

	bindings := []key.Binding{Keys.Search, Keys.Favorite, Keys.Enter, Keys.Back, Keys.Help, Keys.Quit}
	if m.location.Name == router.Home {
		bindings = []key.Binding{Keys.Enter, Keys.Favorites, Keys.Search, Keys.Quit}
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, styles.HelpKeyStyle.Render(h.Key)+" "+styles.HelpDescStyle.Render(h.Desc))
	}
	return lipgloss.NewStyle().MaxWidth(max(m.Width, 1)).Render(strings.Join(hints, "  "))
}

func (m Model) renderHome() string {
	lines := []string{
		styles.TitleStyle.Render("Welcome to the Pokédex"),
		"",
		styles.SubtitleStyle.Render("The digital encyclopedia created by Professor Oak"),
		styles.SubtitleStyle.Render("is an invaluable tool to Trainers in the Pokémon world."),
		"",
		styles.BadgeStyle.Render("Press enter to get started"),
	}
	return m.renderCentered(strings.Join(lines, "\n"))
}

func (m Model) renderHelp() string {
	groups := [][]key.Binding{
		{Keys.Home, Keys.Pokemons, Keys.Favorites, Keys.Back},
		{Keys.Search, Keys.ClearSearch, Keys.Enter, Keys.Escape, Keys.Favorite, Keys.Refresh},
		{Keys.Help, Keys.Quit},
	}

	var lines []string
	lines = append(lines, styles.TitleStyle.Render("Keys"), "")
	for _, group := range groups {
		for _, b := range group {
			h := b.Help()
			lines = append(lines, styles.HelpKeyStyle.Render(padRight(h.Key, 10))+styles.HelpDescStyle.Render(h.Desc))
		}
		lines = append(lines, "")
	}
	lines = append(lines,
		styles.HelpKeyStyle.Render(padRight("/", 10))+styles.HelpDescStyle.Render("filter the current list"),
		styles.HelpKeyStyle.Render(padRight("j/k", 10))+styles.HelpDescStyle.Render("move"),
	)
	return m.renderCentered(strings.Join(lines, "\n"))
}

func (m Model) renderCentered(content string) string {
	height := max(m.Height-ChromeHeight, 1)
	return lipgloss.Place(m.Width, height, lipgloss.Center, lipgloss.Center, content)
}

func padRight(s string, width int) string {
	if n := width - lipgloss.Width(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}
