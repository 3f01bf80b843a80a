// Package tui is the terminal front end: a Bubble Tea program with a home
// screen, the infinite-scroll listing, search results and favorites.
package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/catalog"
	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/directory"
	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/loader"
	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/router"
	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/search"
	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/tui/components"
	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/tui/styles"
)

// Layout proportions
const (
	ListColumnPercent = 60 // List width when the detail panel is open
	MinColumnWidth    = 20

	// Header, search bar and footer lines
	ChromeHeight = 3

	statusTimeout = 3 * time.Second
	suggestLimit  = 3
)

// Options wires the model to its services.
type Options struct {
	Catalog *catalog.Service
	Router  *router.Router
	Search  *search.Controller
	Loader  loader.Config
	ShowIDs bool
	Logger  *slog.Logger

	// FavoritesChanged, when set, signals writes to the favorites slot made
	// by other processes.
	FavoritesChanged <-chan struct{}
}

// Model is the main Bubble Tea model for the application
type Model struct {
	Ready bool

	// Services
	Catalog *catalog.Service
	Dir     *directory.Directory
	Router  *router.Router
	Search  *search.Controller
	logger  *slog.Logger

	// UI Components
	List      *components.PokemonList
	SearchBar components.SearchBar
	Detail    components.DetailPanel
	Spinner   spinner.Model

	// Listing loader, mounted while a listing location is current
	ctx       context.Context
	cancel    context.CancelFunc
	loaderCfg loader.Config
	surface   *loader.Surface
	pager     *loader.Loader[string]
	loaderCh  chan struct{}
	favCh     <-chan struct{}

	// Mounted location
	location router.Location

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg   string
	StatusIsErr bool
	ShowHelp    bool
	ShowDetail  bool
	focused     bool
	lost        bool // favorites exist but none match the search term
}

// NewModel creates the application model positioned at the router's
// current location. The listing loader starts immediately when that
// location is a listing.
func NewModel(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	ctx, cancel := context.WithCancel(context.Background())

	m := Model{
		Catalog:   opts.Catalog,
		Dir:       opts.Catalog.Directory(),
		Router:    opts.Router,
		Search:    opts.Search,
		logger:    logger,
		SearchBar: components.NewSearchBar(),
		Detail:    components.NewDetailPanel(),
		Spinner:   sp,
		ctx:       ctx,
		cancel:    cancel,
		loaderCfg: opts.Loader,
		loaderCh:  make(chan struct{}, 1),
		favCh:     opts.FavoritesChanged,
		focused:   true,
	}

	m.List = components.NewPokemonList("", m.rowInfo)
	m.List.SetShowIDs(opts.ShowIDs)
	m.List.SetFocused(true)

	m.syncRoute()
	return m
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.Spinner.Tick,
		WaitForLoaderCmd(m.loaderCh),
		WaitForFavoritesCmd(m.favCh),
	)
}

// Close tears down the listing loader. Call after the program exits.
func (m Model) Close() {
	if m.pager != nil {
		m.pager.Deactivate()
	}
	m.cancel()
}

// Location returns the mounted location.
func (m Model) Location() router.Location {
	return m.location
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		if m.pager != nil {
			m.pager.CheckScroll()
		}
		return m, nil

	case tea.FocusMsg:
		m.focused = true
		if m.surface != nil {
			m.surface.SetVisible(true)
		}
		return m, nil

	case tea.BlurMsg:
		m.focused = false
		if m.surface != nil {
			m.surface.SetVisible(false)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case LoaderChangedMsg:
		if m.pager != nil {
			st := m.pager.State()
			m.List.SetLoading(st.Loading)
			m.refreshRows()
			if !st.Loading {
				// Keep loading until the viewport is full
				m.pager.CheckScroll()
			}
		}
		return m, WaitForLoaderCmd(m.loaderCh)

	case FavoritesChangedMsg:
		if err := m.Dir.Resync(); err != nil {
			m.logger.Error("failed to resync favorites", "error", err)
			return m, tea.Batch(m.setStatus(err.Error(), true), WaitForFavoritesCmd(m.favCh))
		}
		m.refreshRows()
		return m, WaitForFavoritesCmd(m.favCh)

	case components.SearchSubmitMsg:
		return m.submitSearch(msg.Term)

	case components.SearchCancelMsg:
		m.SearchBar.SetValue(m.Search.Term())
		return m, nil

	case DetailLoadedMsg:
		if msg.Err != nil {
			m.logger.Error("failed to load detail", "name", msg.Name, "error", msg.Err)
		}
		m.Detail.SetDetail(msg.Name, msg.Detail, msg.Err)
		return m, nil

	case FavoriteToggledMsg:
		m.refreshRows()
		if m.Detail.Name() == msg.Name {
			m.Detail.SetFavorite(msg.Favorite)
		}
		text := styles.DisplayName(msg.Name) + " added to favorites"
		if !msg.Favorite {
			text = styles.DisplayName(msg.Name) + " removed from favorites"
		}
		return m, m.setStatus(text, false)

	case RefreshDoneMsg:
		m.remountLoader()
		return m, m.setStatus("Refreshing pokémon list", false)

	case ErrMsg:
		m.logger.Error("operation failed", "context", msg.Context, "error", msg.Err)
		return m, m.setStatus(msg.Error(), true)

	case StatusMsg:
		return m, m.setStatus(msg.Message, msg.IsError)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil
	}

	return m, nil
}

func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.StatusMsg = text
	m.StatusIsErr = isErr
	return ClearStatusCmd(statusTimeout)
}

// rowInfo decorates list rows with the dex id and favorite marker.
func (m Model) rowInfo(name string) (string, bool) {
	id, _ := m.Dir.ID(name)
	return id, m.Dir.IsFavorite(name)
}

// updateLayout updates component sizes based on window size
func (m *Model) updateLayout() {
	if m.Width == 0 || m.Height == 0 {
		return
	}

	contentHeight := max(m.Height-ChromeHeight, 1)
	m.SearchBar.SetWidth(m.Width)

	if !m.ShowDetail {
		m.List.SetSize(m.Width, contentHeight)
		return
	}

	listWidth := max(m.Width*ListColumnPercent/100, MinColumnWidth)
	m.List.SetSize(listWidth, contentHeight)
	m.Detail.SetSize(max(m.Width-listWidth, MinColumnWidth), contentHeight)
}
