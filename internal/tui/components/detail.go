package components

import (
	"fmt"
	"strings"

	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/domain"
	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/tui/styles"
)

// DetailPanel shows the selected pokémon's record.
type DetailPanel struct {
	name     string
	detail   *domain.PokemonDetail
	err      error
	loading  bool
	favorite bool
	width    int
	height   int
}

func NewDetailPanel() DetailPanel {
	return DetailPanel{}
}

// SetLoading shows the panel for name while its record is fetched.
func (d *DetailPanel) SetLoading(name string) {
	d.name = name
	d.detail = nil
	d.err = nil
	d.loading = true
}

// SetDetail shows a fetched record or the error that replaced it. Results
// for a name other than the current one are ignored.
func (d *DetailPanel) SetDetail(name string, detail *domain.PokemonDetail, err error) {
	if name != d.name {
		return
	}
	d.detail = detail
	d.err = err
	d.loading = false
}

func (d *DetailPanel) SetFavorite(favorite bool) {
	d.favorite = favorite
}

// Name returns the pokémon the panel is showing, or "".
func (d *DetailPanel) Name() string {
	return d.name
}

func (d *DetailPanel) Clear() {
	*d = DetailPanel{width: d.width, height: d.height}
}

func (d *DetailPanel) SetSize(width, height int) {
	d.width = width
	d.height = height
}

func (d DetailPanel) View() string {
	style := styles.InactiveBorder
	frameW, frameH := style.GetFrameSize()
	return style.
		Width(max(d.width-frameW, 0)).
		Height(max(d.height-frameH, 0)).
		Render(d.renderContent())
}

func (d DetailPanel) renderContent() string {
	if d.name == "" {
		return styles.DimStyle.Render("Select a pokémon and press enter")
	}

	star := styles.DimStyle.Render(styles.NotFavoriteChar)
	if d.favorite {
		star = styles.AccentStyle.Render(styles.FavoriteChar)
	}
	title := star + " " + styles.TitleStyle.Render(styles.DisplayName(d.name))

	switch {
	case d.loading:
		return title + "\n\n" + styles.DimStyle.Render("Loading...")
	case d.err != nil:
		return title + "\n\n" + styles.ErrorStyle.Render(d.err.Error())
	case d.detail == nil:
		return title
	}

	lines := []string{
		title,
		"",
		field("Number", fmt.Sprintf("#%03d", d.detail.ID)),
		field("Types", styles.DisplayName(d.detail.TypeLine())),
		field("Height", d.detail.FormattedHeight()),
		field("Weight", d.detail.FormattedWeight()),
	}
	return strings.Join(lines, "\n")
}

func field(label, value string) string {
	return styles.SubtitleStyle.Render(fmt.Sprintf("%-8s", label)) + value
}
