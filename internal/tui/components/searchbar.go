package components

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/tui/styles"
)

// SearchSubmitMsg is emitted when enter is pressed in the search bar.
type SearchSubmitMsg struct {
	Term string
}

// SearchCancelMsg is emitted when esc is pressed in the search bar.
type SearchCancelMsg struct{}

// SearchBar is a single-line search input.
type SearchBar struct {
	input textinput.Model
	width int
}

// NewSearchBar creates a blurred search bar
func NewSearchBar() SearchBar {
	ti := textinput.New()
	ti.Placeholder = "Search a pokémon by name"
	ti.Prompt = "Search: "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle
	ti.CharLimit = 64
	return SearchBar{input: ti}
}

func (s *SearchBar) Focus() tea.Cmd {
	return s.input.Focus()
}

func (s *SearchBar) Blur() {
	s.input.Blur()
}

func (s *SearchBar) Focused() bool {
	return s.input.Focused()
}

func (s *SearchBar) Value() string {
	return s.input.Value()
}

// SetValue replaces the text and moves the cursor to the end.
func (s *SearchBar) SetValue(v string) {
	s.input.SetValue(v)
	s.input.CursorEnd()
}

func (s *SearchBar) SetWidth(width int) {
	s.width = width
	s.input.Width = max(width-len(s.input.Prompt)-2, 10)
}

// Update routes keys to the input while focused. Enter and esc blur the bar
// and are reported as SearchSubmitMsg and SearchCancelMsg.
func (s SearchBar) Update(msg tea.Msg) (SearchBar, tea.Cmd) {
	if !s.input.Focused() {
		return s, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, SearchBarKeys.Submit):
			s.input.Blur()
			term := s.input.Value()
			return s, func() tea.Msg { return SearchSubmitMsg{Term: term} }
		case key.Matches(keyMsg, SearchBarKeys.Cancel):
			s.input.Blur()
			return s, func() tea.Msg { return SearchCancelMsg{} }
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s SearchBar) View() string {
	return s.input.View()
}
