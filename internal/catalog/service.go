package catalog

import (
	"context"
	"log/slog"

	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/directory"
	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/domain"
)

const defaultPageSize = 100

// Service orchestrates client + page cache + directory merges.
type Service struct {
	client domain.PokemonClient
	cache  domain.PageCache // nil disables page caching
	dir    *directory.Directory
	logger *slog.Logger
}

// NewService creates a new catalog service. cache may be nil.
func NewService(client domain.PokemonClient, cache domain.PageCache, dir *directory.Directory, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, cache: cache, dir: dir, logger: logger}
}

// FetchPage returns the names on page (1-based). Every entry is merged into
// the directory and the first completed page marks the initial load. Its
// signature matches loader.FetchFunc[string].
func (s *Service) FetchPage(ctx context.Context, page, limit int) ([]string, error) {
	items, err := s.fetchPage(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	s.dir.SetPokemons(items)
	s.logger.Debug("merged page", "page", page, "known", s.dir.Len())
	if !s.dir.InitialLoad() {
		s.dir.SetInitialLoad(true)
	}

	return domain.Page{Number: page, Limit: limit, Items: items}.Names(), nil
}

func (s *Service) fetchPage(ctx context.Context, page, limit int) ([]domain.Pokemon, error) {
	if s.cache != nil {
		if items, ok := s.cache.GetPage(page, limit); ok {
			s.logger.Debug("page cache hit", "page", page, "limit", limit, "count", len(items))
			return items, nil
		}
	}

	items, err := s.client.ListPokemon(ctx, page, limit)
	if err != nil {
		s.logger.Error("failed to fetch page", "page", page, "limit", limit, "error", err)
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SavePage(page, limit, items); err != nil {
			s.logger.Error("failed to save page", "page", page, "error", err)
		}
	}
	s.logger.Debug("fetched page", "page", page, "limit", limit, "count", len(items))
	return items, nil
}

// Detail returns the detail record for name.
func (s *Service) Detail(ctx context.Context, name string) (*domain.PokemonDetail, error) {
	detail, err := s.client.GetPokemon(ctx, name)
	if err != nil {
		s.logger.Error("failed to fetch detail", "name", name, "error", err)
		return nil, err
	}
	return detail, nil
}

// FetchAll pages through the list until a short page, merging everything
// into the directory. onProgress receives the running total after each page.
func (s *Service) FetchAll(ctx context.Context, limit int, onProgress domain.ProgressFunc) ([]string, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	return fetchAll(ctx, s.FetchPage, limit, onProgress)
}

// Refresh drops every cached page so the next fetch goes to the network.
func (s *Service) Refresh() error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.InvalidatePages(); err != nil {
		s.logger.Error("failed to invalidate pages", "error", err)
		return err
	}
	s.logger.Info("page cache invalidated")
	return nil
}

// Directory returns the directory this service merges into.
func (s *Service) Directory() *directory.Directory {
	return s.dir
}
