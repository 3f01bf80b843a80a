package domain

import "context"

// PokemonClient is the network collaborator behind the page fetcher.
type PokemonClient interface {
	// ListPokemon returns one page of entries. Pages are 1-based.
	ListPokemon(ctx context.Context, page, limit int) ([]Pokemon, error)

	// GetPokemon returns the detail record for a single pokémon by name.
	GetPokemon(ctx context.Context, name string) (*PokemonDetail, error)
}

// PageCache stores fetched pages so a restart can render without the network.
type PageCache interface {
	GetPage(page, limit int) ([]Pokemon, bool)
	SavePage(page, limit int, items []Pokemon) error
	InvalidatePages() error
}
