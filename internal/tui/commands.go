package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/catalog"
	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/directory"
)

// Command factories for async operations

// WaitForLoaderCmd blocks until the listing loader signals a change
func WaitForLoaderCmd(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return LoaderChangedMsg{}
	}
}

// WaitForFavoritesCmd blocks until the favorites slot changes on disk
func WaitForFavoritesCmd(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return FavoritesChangedMsg{}
	}
}

// FetchDetailCmd loads the detail record for name
func FetchDetailCmd(svc *catalog.Service, name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		detail, err := svc.Detail(ctx, name)
		return DetailLoadedMsg{Name: name, Detail: detail, Err: err}
	}
}

// ToggleFavoriteCmd flips name's favorite state and persists it
func ToggleFavoriteCmd(dir *directory.Directory, name string) tea.Cmd {
	return func() tea.Msg {
		favorite, err := dir.ToggleFavorite(name)
		if err != nil {
			return ErrMsg{Err: err, Context: "saving favorites"}
		}
		return FavoriteToggledMsg{Name: name, Favorite: favorite}
	}
}

// RefreshCmd drops the page cache
func RefreshCmd(svc *catalog.Service) tea.Cmd {
	return func() tea.Msg {
		if err := svc.Refresh(); err != nil {
			return ErrMsg{Err: err, Context: "refreshing"}
		}
		return RefreshDoneMsg{}
	}
}

// ClearStatusCmd clears the status message after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
