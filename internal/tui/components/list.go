package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/loader"
	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/tui/styles"
)

// Layout constants for lists
const (
	// Border adds 1 char on each side
	BorderWidth  = 2
	BorderHeight = 2

	// Scroll indicators ("↑ more" and "↓ more") each take 1 line
	ScrollIndicatorLines = 2
)

// RowInfo supplies the per-row decorations for a name: its dex id and
// whether it is a favorite.
type RowInfo func(name string) (id string, favorite bool)

// PokemonList is a scrollable list of pokémon names. When a surface is
// attached the list publishes its scroll metrics to it, which makes the list
// the scroll owner for an infinite-scroll loader.
type PokemonList struct {
	names   []string
	info    RowInfo
	surface *loader.Surface

	// Selection
	cursor     int
	offset     int
	maxVisible int

	// Dimensions
	width   int
	height  int
	focused bool

	title   string
	showIDs bool

	// Loading more rows at the bottom
	loading bool

	// Shown when there are no rows
	emptyTitle    string
	emptySubtitle string

	// Quick filter state
	filterActive bool
	filterInput  textinput.Model
	filterQuery  string
	filteredIdx  []int // indices into names
}

// NewPokemonList creates a list with the given title. info may be nil.
func NewPokemonList(title string, info RowInfo) *PokemonList {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	return &PokemonList{
		title:       title,
		info:        info,
		filterInput: ti,
		showIDs:     true,
		emptyTitle:  "No pokémon",
	}
}

// AttachSurface makes the list publish metrics to s. Pass nil to detach.
func (l *PokemonList) AttachSurface(s *loader.Surface) {
	l.surface = s
	l.publish(false)
}

// Update handles navigation and quick filter keys when focused.
func (l *PokemonList) Update(msg tea.Msg) (*PokemonList, tea.Cmd) {
	if !l.focused {
		return l, nil
	}

	keyMsg, isKey := msg.(tea.KeyMsg)

	// Filter input focused (typing mode)
	if l.filterActive && l.filterInput.Focused() {
		if isKey {
			switch {
			case key.Matches(keyMsg, ListKeys.Escape):
				l.clearFilter()
				return l, nil
			case key.Matches(keyMsg, ListKeys.Enter):
				l.filterInput.Blur()
				return l, nil
			case keyMsg.String() == "backspace" && l.filterInput.Value() == "":
				l.clearFilter()
				return l, nil
			}
		}

		var cmd tea.Cmd
		l.filterInput, cmd = l.filterInput.Update(msg)
		l.applyFilter()
		return l, cmd
	}

	if !isKey {
		return l, nil
	}

	// Filter active but blurred (navigating the results)
	if l.filterActive {
		switch {
		case key.Matches(keyMsg, ListKeys.Escape):
			l.clearFilter()
			return l, nil
		case key.Matches(keyMsg, ListKeys.Filter):
			l.filterInput.Focus()
			return l, nil
		}
	}

	count := l.ItemCount()
	if count == 0 {
		return l, nil
	}

	prev := l.cursor
	switch {
	case key.Matches(keyMsg, ListKeys.Down):
		l.cursor++
	case key.Matches(keyMsg, ListKeys.Up):
		l.cursor--
	case key.Matches(keyMsg, ListKeys.Home):
		l.cursor = 0
	case key.Matches(keyMsg, ListKeys.End):
		l.cursor = count - 1
	case key.Matches(keyMsg, ListKeys.HalfDown):
		l.cursor += l.maxVisible / 2
	case key.Matches(keyMsg, ListKeys.HalfUp):
		l.cursor -= l.maxVisible / 2
	case key.Matches(keyMsg, ListKeys.PageDown):
		l.cursor += l.maxVisible
	case key.Matches(keyMsg, ListKeys.PageUp):
		l.cursor -= l.maxVisible
	default:
		return l, nil
	}

	l.cursor = max(0, min(l.cursor, count-1))
	if l.cursor != prev {
		l.ensureVisible()
		l.publish(true)
	}
	return l, nil
}

func (l *PokemonList) View() string {
	style := styles.InactiveBorder
	if l.focused {
		style = styles.ActiveBorder
	}

	frameW, frameH := style.GetFrameSize()
	return style.
		Width(max(l.width-frameW, 0)).
		Height(max(l.height-frameH, 0)).
		Render(l.renderContent())
}

// SetItems replaces the rows. The cursor stays on the same index when it
// is still in range, so appended pages do not move the selection.
func (l *PokemonList) SetItems(names []string) {
	l.names = names
	if l.filterActive {
		l.applyFilterKeepCursor()
	}
	if count := l.ItemCount(); l.cursor >= count {
		l.cursor = max(count-1, 0)
	}
	l.ensureVisible()
	l.publish(false)
}

func (l *PokemonList) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.recalcMaxVisible()
	l.ensureVisible()
	l.publish(false)
}

func (l *PokemonList) SetFocused(focused bool) {
	l.focused = focused
}

func (l *PokemonList) IsFocused() bool {
	return l.focused
}

func (l *PokemonList) SetTitle(title string) {
	l.title = title
}

func (l *PokemonList) Title() string {
	return l.title
}

func (l *PokemonList) SetShowIDs(show bool) {
	l.showIDs = show
}

// SetLoading toggles the "loading more" footer.
func (l *PokemonList) SetLoading(loading bool) {
	l.loading = loading
}

func (l *PokemonList) IsLoading() bool {
	return l.loading
}

// SetEmptyMessage sets what the list shows when it has no rows.
func (l *PokemonList) SetEmptyMessage(title, subtitle string) {
	l.emptyTitle = title
	l.emptySubtitle = subtitle
}

// Selected returns the name under the cursor, or "" when empty.
func (l *PokemonList) Selected() string {
	count := l.ItemCount()
	if count == 0 || l.cursor >= count {
		return ""
	}
	return l.names[l.mapIndex(l.cursor)]
}

func (l *PokemonList) SelectedIndex() int {
	return l.cursor
}

// SetSelectedIndex moves the cursor, clamped to the rows.
func (l *PokemonList) SetSelectedIndex(idx int) {
	count := l.ItemCount()
	if count == 0 {
		l.cursor = 0
		return
	}
	l.cursor = max(0, min(idx, count-1))
	l.ensureVisible()
	l.publish(true)
}

// ItemCount returns the number of visible rows (after the quick filter).
func (l *PokemonList) ItemCount() int {
	if l.filteredIdx != nil {
		return len(l.filteredIdx)
	}
	return len(l.names)
}

// Metrics returns the list's scroll metrics in rows.
func (l *PokemonList) Metrics() loader.ScrollMetrics {
	return loader.ScrollMetrics{
		ViewportHeight: l.maxVisible,
		ScrollTop:      l.offset,
		ContentHeight:  l.ItemCount(),
	}
}

// ToggleFilter activates the quick filter input
func (l *PokemonList) ToggleFilter() {
	l.filterActive = true
	l.filterInput.Focus()
	l.recalcMaxVisible()
}

func (l *PokemonList) IsFiltering() bool {
	return l.filterActive
}

// IsFilterTyping returns true if the filter is active AND its input is focused
func (l *PokemonList) IsFilterTyping() bool {
	return l.filterActive && l.filterInput.Focused()
}

func (l *PokemonList) ClearFilter() {
	l.clearFilter()
}

// Internal methods

func (l *PokemonList) publish(scrolled bool) {
	if l.surface == nil {
		return
	}
	if scrolled {
		l.surface.ScrollTo(l.Metrics())
	} else {
		l.surface.SetMetrics(l.Metrics())
	}
}

func (l *PokemonList) recalcMaxVisible() {
	// Interior minus title line and scroll indicators
	l.maxVisible = l.height - BorderHeight - ScrollIndicatorLines - 1
	if l.filterActive {
		l.maxVisible--
	}
	if l.maxVisible < 1 {
		l.maxVisible = 1
	}
}

func (l *PokemonList) ensureVisible() {
	if l.maxVisible <= 0 {
		return
	}
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+l.maxVisible {
		l.offset = l.cursor - l.maxVisible + 1
	}
	if maxOffset := max(l.ItemCount()-l.maxVisible, 0); l.offset > maxOffset {
		l.offset = maxOffset
	}
}

func (l *PokemonList) clearFilter() {
	l.filterActive = false
	l.filterQuery = ""
	l.filteredIdx = nil
	l.filterInput.SetValue("")
	l.filterInput.Blur()
	l.recalcMaxVisible()
	l.ensureVisible()
	l.publish(false)
}

func (l *PokemonList) applyFilter() {
	l.applyFilterKeepCursor()
	l.cursor = 0
	l.offset = 0
	l.publish(false)
}

func (l *PokemonList) applyFilterKeepCursor() {
	query := l.filterInput.Value()
	l.filterQuery = query

	if query == "" {
		l.filteredIdx = nil
		return
	}

	matches := fuzzy.Find(strings.ToLower(query), l.names)
	l.filteredIdx = make([]int, len(matches))
	for i, match := range matches {
		l.filteredIdx[i] = match.Index
	}
}

func (l *PokemonList) mapIndex(i int) int {
	if l.filteredIdx != nil && i < len(l.filteredIdx) {
		return l.filteredIdx[i]
	}
	return i
}

// Rendering

func (l *PokemonList) renderContent() string {
	itemWidth := max(l.width-BorderWidth, 10)
	titleLine := styles.AccentStyle.Render(styles.Truncate(l.title, itemWidth))

	count := l.ItemCount()
	if count == 0 {
		msg := l.emptyTitle
		sub := l.emptySubtitle
		if l.filterActive && l.filterQuery != "" {
			msg, sub = "No matches", ""
		}
		if l.loading {
			msg, sub = "Loading...", ""
		}
		lines := []string{titleLine, " ", styles.TitleStyle.Render(msg)}
		if sub != "" {
			lines = append(lines, styles.DimStyle.Render(sub))
		}
		if l.filterActive {
			lines = append(lines, l.renderFilterBar())
		}
		return strings.Join(lines, "\n")
	}

	end := min(l.offset+l.maxVisible, count)
	lines := make([]string, 0, end-l.offset)
	for i := l.offset; i < end; i++ {
		lines = append(lines, l.renderRow(l.names[l.mapIndex(i)], i == l.cursor, itemWidth))
	}

	header := " "
	if l.offset > 0 {
		header = styles.DimStyle.Render("↑ more")
	}

	footer := " "
	switch {
	case l.loading:
		footer = styles.DimStyle.Render("loading more...")
	case end < count:
		footer = styles.DimStyle.Render("↓ more")
	}

	content := titleLine + "\n" + header + "\n" + strings.Join(lines, "\n") + "\n" + footer
	if l.filterActive {
		content += "\n" + l.renderFilterBar()
	}
	return content
}

func (l *PokemonList) renderRow(name string, selected bool, width int) string {
	var id string
	var favorite bool
	if l.info != nil {
		id, favorite = l.info(name)
	}

	marker := styles.NotFavoriteChar
	markerFg := styles.DimGray
	if favorite {
		marker = styles.FavoriteChar
		markerFg = styles.Accent
	}

	parts := []styles.RowPart{{Text: marker, Foreground: &markerFg}}

	// width - marker(1) - space(1) - margins(2)
	available := width - 4
	if l.showIDs && id != "" {
		idText := fmt.Sprintf(" #%-4s", id)
		dim := styles.DimGray
		parts = append(parts, styles.RowPart{Text: idText, Foreground: &dim})
		available -= lipgloss.Width(idText)
	}
	parts = append(parts, styles.RowPart{Text: " " + styles.Truncate(styles.DisplayName(name), max(available, 5))})

	return styles.RenderListRow(parts, selected, width)
}

func (l *PokemonList) renderFilterBar() string {
	countStr := ""
	if l.filterQuery != "" {
		countStr = styles.DimStyle.Render(fmt.Sprintf(" [%d/%d]", l.ItemCount(), len(l.names)))
	}
	return l.filterInput.View() + countStr
}
