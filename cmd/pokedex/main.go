package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/adapter"
	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/catalog"
	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/directory"
	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/domain"
	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/loader"
	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/pokeapi"
	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/router"
	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/search"
	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/store"
	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/tui"
	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/tui/styles"
)

// Version is set at build time via -ldflags
var Version = "dev"

func getVersion() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// rootOptions are the flags shared by every command.
type rootOptions struct {
	configPath     string
	open           string
	resetFavorites bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "pokedex",
		Short:         "Browse, search and favorite Pokémon from the terminal",
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  pokedex
  pokedex --open "/search?name=char"
  pokedex search saur
  pokedex favorites export --format yaml`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/pokedex/config.yaml)")
	root.PersistentFlags().BoolVar(&opts.resetFavorites, "reset-favorites", false, "clear stored favorites before starting")
	root.Flags().StringVar(&opts.open, "open", "", "location to open, e.g. /pokemons or /search?name=char")

	root.AddCommand(
		newSearchCmd(opts),
		newFavoritesCmd(opts),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pokedex %s\n", getVersion())
		},
	}
}

// app holds the wired services for one invocation.
type app struct {
	cfg       *adapter.Config
	logger    *slog.Logger
	logCloser io.Closer
	kv        store.KV
	dir       *directory.Directory
	catalog   *catalog.Service
}

func (a *app) Close() {
	if a.kv != nil {
		if err := a.kv.Close(); err != nil {
			a.logger.Error("failed to close store", "error", err)
		}
	}
	if a.logCloser != nil {
		a.logCloser.Close()
	}
}

// setup loads config, opens the store and wires the catalog.
func setup(opts *rootOptions) (*app, error) {
	cfg, err := adapter.LoadConfig(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, closer, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger, closer = adapter.NullLogger(), nil
	}
	slog.SetDefault(logger)

	a := &app{cfg: cfg, logger: logger, logCloser: closer}

	kv, err := store.New(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Storage.Backend, err)
	}
	a.kv = kv

	if opts.resetFavorites {
		if err := kv.Set(cfg.Storage.FavoritesKey, "{}"); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to reset favorites: %w", err)
		}
		logger.Info("favorites reset", "key", cfg.Storage.FavoritesKey)
	}

	dir, err := directory.Open(kv, cfg.Storage.FavoritesKey, logger)
	if err != nil {
		a.Close()
		if errors.Is(err, domain.ErrMalformedValue) {
			return nil, fmt.Errorf("%w (run with --reset-favorites to start over)", err)
		}
		return nil, err
	}
	a.dir = dir

	var cache domain.PageCache
	if pc, ok := kv.(domain.PageCache); ok && cfg.Cache.Pages {
		cache = pc
	}

	client := pokeapi.NewClient(cfg.API.BaseURL, cfg.API.Timeout, logger)
	a.catalog = catalog.NewService(client, cache, dir, logger)
	return a, nil
}

func runTUI(ctx context.Context, opts *rootOptions) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("stdout is not a terminal; use `pokedex search` or `pokedex favorites` instead")
	}

	a, err := setup(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	a.logger.Info("starting pokedex", "version", getVersion(), "backend", a.cfg.Storage.Backend)
	styles.SetTheme(a.cfg.UI.Theme)

	start := router.To(router.Home)
	if opts.open != "" {
		start = router.Resolve(opts.open)
	}
	rt := router.New(start, a.logger)
	searchCtl := search.NewController(rt, a.logger)
	defer searchCtl.Close()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var favCh chan struct{}
	if a.cfg.Storage.Watch {
		favCh = make(chan struct{}, 1)
		go func() {
			err := a.dir.FavoritesSlot().Follow(ctx, a.logger, func() {
				select {
				case favCh <- struct{}{}:
				default:
				}
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("favorites watch stopped", "error", err)
			}
		}()
	}

	model := tui.NewModel(tui.Options{
		Catalog: a.catalog,
		Router:  rt,
		Search:  searchCtl,
		Loader: loader.Config{
			Limit:        a.cfg.Loader.Limit,
			ScrollOffset: a.cfg.Loader.ScrollOffset,
			RecheckDelay: a.cfg.Loader.RecheckDelay,
		},
		ShowIDs:          a.cfg.UI.ShowIDs,
		Logger:           a.logger,
		FavoritesChanged: favCh,
	})

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	)

	a.logger.Info("starting TUI")

	final, err := p.Run()
	if m, ok := final.(tui.Model); ok {
		m.Close()
	} else {
		model.Close()
	}
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		a.logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	a.logger.Info("shutting down")
	return nil
}
