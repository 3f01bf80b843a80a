package tui

import "github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/domain"

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// LoaderChangedMsg signals that the listing loader changed state
type LoaderChangedMsg struct{}

// FavoritesChangedMsg signals that the favorites slot was written by
// another process
type FavoritesChangedMsg struct{}

// DetailLoadedMsg carries a detail record (or the error fetching it)
type DetailLoadedMsg struct {
	Name   string
	Detail *domain.PokemonDetail
	Err    error
}

// FavoriteToggledMsg signals that a favorite was added or removed
type FavoriteToggledMsg struct {
	Name     string
	Favorite bool
}

// RefreshDoneMsg signals that the page cache was dropped
type RefreshDoneMsg struct{}

// StatusMsg sets a temporary status message
type StatusMsg struct {
	Message string
	IsError bool
}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}
