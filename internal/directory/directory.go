// Package directory holds the application's pokémon state: every known
// entry, the durable favorites set, the current search term and the
// first-page indicator. One Directory is built per application instance and
// passed to whatever needs it.
package directory

import (
	"log/slog"
	"maps"
	"sort"
	"strings"
	"sync"

	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/domain"
	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/search"
	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/store"
)

// DefaultFavoritesKey is the durable slot holding the name -> name mapping.
const DefaultFavoritesKey = "pokemon-favorites"

// Favorites is the durable favorites slot.
type Favorites = store.PersistedValue[map[string]string]

// Directory is safe for concurrent use.
type Directory struct {
	favorites *Favorites
	logger    *slog.Logger

	mu          sync.RWMutex
	names       []string          // Insertion order of pokemons keys
	pokemons    map[string]string // name -> id
	searchTerm  string
	initialLoad bool
}

// New builds a directory over an opened favorites slot.
func New(favorites *Favorites, logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Directory{
		favorites: favorites,
		logger:    logger,
		pokemons:  make(map[string]string),
	}
}

// Open opens the favorites slot at key in kv and builds a directory over it.
// Malformed stored favorites are returned as an error.
func Open(kv store.KV, key string, logger *slog.Logger) (*Directory, error) {
	if key == "" {
		key = DefaultFavoritesKey
	}
	favorites, err := store.Open(kv, key, map[string]string{})
	if err != nil {
		return nil, err
	}
	return New(favorites, logger), nil
}

// === Pokemons ===

// SetPokemons merges batch into the known set. Existing names keep their
// position; their id is replaced. New names are appended in batch order.
func (d *Directory) SetPokemons(batch []domain.Pokemon) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, p := range batch {
		if _, ok := d.pokemons[p.Name]; !ok {
			d.names = append(d.names, p.Name)
		}
		d.pokemons[p.Name] = p.ID
	}
}

// Pokemons returns a copy of the name -> id mapping.
func (d *Directory) Pokemons() map[string]string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return maps.Clone(d.pokemons)
}

// Names returns every known name in insertion order.
func (d *Directory) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]string(nil), d.names...)
}

// ID returns the identifier recorded for name.
func (d *Directory) ID(name string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	id, ok := d.pokemons[name]
	return id, ok
}

// Len returns the number of known pokémon.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.names)
}

// === Initial load ===

func (d *Directory) SetInitialLoad(loaded bool) {
	d.mu.Lock()
	d.initialLoad = loaded
	d.mu.Unlock()
}

func (d *Directory) InitialLoad() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.initialLoad
}

// === Favorites ===

// AddFavorite records name as a favorite and persists the set.
func (d *Directory) AddFavorite(name string) error {
	err := d.favorites.Update(func(current map[string]string) map[string]string {
		next := maps.Clone(current)
		if next == nil {
			next = make(map[string]string)
		}
		next[name] = name
		return next
	})
	if err != nil {
		d.logger.Error("failed to add favorite", "name", name, "key", d.favorites.Key(), "error", err)
		return err
	}
	d.logger.Debug("added favorite", "name", name)
	return nil
}

// RemoveFavorite deletes name from the favorites. Removing a name that is
// not a favorite leaves the stored set untouched.
func (d *Directory) RemoveFavorite(name string) error {
	if _, ok := d.favorites.Get()[name]; !ok {
		return nil
	}
	err := d.favorites.Update(func(current map[string]string) map[string]string {
		next := maps.Clone(current)
		delete(next, name)
		return next
	})
	if err != nil {
		d.logger.Error("failed to remove favorite", "name", name, "key", d.favorites.Key(), "error", err)
		return err
	}
	d.logger.Debug("removed favorite", "name", name)
	return nil
}

// ToggleFavorite flips membership and returns the new state.
func (d *Directory) ToggleFavorite(name string) (bool, error) {
	if d.IsFavorite(name) {
		return false, d.RemoveFavorite(name)
	}
	return true, d.AddFavorite(name)
}

func (d *Directory) IsFavorite(name string) bool {
	return d.favorites.Get()[name] != ""
}

// Favorites returns the favorite names sorted alphabetically.
func (d *Directory) Favorites() []string {
	fav := d.favorites.Get()
	names := make([]string, 0, len(fav))
	for name := range fav {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FavoritesMap returns a copy of the stored name -> name mapping.
func (d *Directory) FavoritesMap() map[string]string {
	return maps.Clone(d.favorites.Get())
}

// Resync re-reads the favorites slot, picking up writes made before this
// instance became active.
func (d *Directory) Resync() error {
	_, err := d.favorites.Resync()
	return err
}

// FavoritesSlot exposes the durable handle for watchers.
func (d *Directory) FavoritesSlot() *Favorites {
	return d.favorites
}

// === Search ===

// SetSearchTerm stores term verbatim.
func (d *Directory) SetSearchTerm(term string) {
	d.mu.Lock()
	d.searchTerm = term
	d.mu.Unlock()
}

func (d *Directory) SearchTerm() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.searchTerm
}

// GetFilteredPokemonList returns every known name when the search term is
// blank, otherwise the names containing it (case-insensitive), order kept.
func (d *Directory) GetFilteredPokemonList() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := append([]string(nil), d.names...)
	if strings.TrimSpace(d.searchTerm) == "" {
		return names
	}
	return search.Filter(names, d.searchTerm)
}

// GetFilteredFavorites applies the same rule to the favorites.
func (d *Directory) GetFilteredFavorites() []string {
	return search.Filter(d.Favorites(), d.SearchTerm())
}
