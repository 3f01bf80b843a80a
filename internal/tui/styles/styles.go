package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Color palette
var (
	PokeRed    = lipgloss.Color("#EF5350")
	PikaYellow = lipgloss.Color("#FACC15")
	SlateDark  = lipgloss.Color("#1F2937")
	SlateLight = lipgloss.Color("#374151")
	DimGray    = lipgloss.Color("#6B7280")
	LightGray  = lipgloss.Color("#9CA3AF")
	White      = lipgloss.Color("#F9FAFB")
	Green      = lipgloss.Color("#10B981")
	Red        = lipgloss.Color("#EF4444")
)

// Accent is the theme color used for borders, titles and the favorite star.
var Accent = PokeRed

// Borders
var (
	ActiveBorder   lipgloss.Style
	InactiveBorder lipgloss.Style
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle lipgloss.Style

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green)

	BadgeStyle lipgloss.Style
)

// Help styles
var (
	HelpKeyStyle lipgloss.Style

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(DimGray)
)

// Spinner, search bar and filter styles
var (
	SpinnerStyle      lipgloss.Style
	FilterStyle       lipgloss.Style
	FilterPromptStyle lipgloss.Style
)

// Raw favorite markers (unstyled)
const (
	FavoriteChar    = "★"
	NotFavoriteChar = "☆"
)

func init() {
	SetTheme("default")
}

// SetTheme selects the accent color ("default" or "electric") and rebuilds
// every style derived from it. Unknown names keep the default.
func SetTheme(name string) {
	switch strings.ToLower(name) {
	case "electric":
		Accent = PikaYellow
	default:
		Accent = PokeRed
	}

	ActiveBorder = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Accent)
	InactiveBorder = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(DimGray)

	AccentStyle = lipgloss.NewStyle().Foreground(Accent)
	BadgeStyle = lipgloss.NewStyle().
		Foreground(SlateDark).
		Background(Accent).
		Padding(0, 1)
	HelpKeyStyle = lipgloss.NewStyle().Foreground(Accent)
	SpinnerStyle = lipgloss.NewStyle().Foreground(Accent)
	FilterStyle = lipgloss.NewStyle().Foreground(Accent)
	FilterPromptStyle = lipgloss.NewStyle().Foreground(Accent).Bold(true)
}

// Helper functions

var titleCaser = cases.Title(language.Und)

// DisplayName title-cases an API name for display ("mr-mime" -> "Mr-Mime").
func DisplayName(name string) string {
	return titleCaser.String(name)
}

// Truncate truncates a string to the given width with ellipsis
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	if width <= 3 {
		return string(runes[:min(width, len(runes))])
	}
	return string(runes[:min(width-3, len(runes))]) + "..."
}

// RenderListRow renders a complete list row with uniform background when selected.
// Each part is styled explicitly to avoid ANSI reset code issues.
func RenderListRow(parts []RowPart, selected bool, width int) string {
	bg := SlateLight
	defaultFg := LightGray
	selectedFg := White

	var b strings.Builder
	visibleLen := 0

	for _, part := range parts {
		style := lipgloss.NewStyle()
		if part.Foreground != nil {
			style = style.Foreground(*part.Foreground)
		} else if selected {
			style = style.Foreground(selectedFg)
		} else {
			style = style.Foreground(defaultFg)
		}
		if selected {
			style = style.Background(bg)
		}
		b.WriteString(style.Render(part.Text))
		visibleLen += lipgloss.Width(part.Text)
	}

	// Fill width (minus left/right margin)
	if pad := width - visibleLen - 2; pad > 0 {
		padStyle := lipgloss.NewStyle()
		if selected {
			padStyle = padStyle.Background(bg)
		}
		b.WriteString(padStyle.Render(strings.Repeat(" ", pad)))
	}

	marginStyle := lipgloss.NewStyle()
	if selected {
		marginStyle = marginStyle.Background(bg)
	}
	margin := marginStyle.Render(" ")

	return margin + b.String() + margin
}

// RowPart represents a part of a row with optional foreground color
type RowPart struct {
	Text       string
	Foreground *lipgloss.Color
}
