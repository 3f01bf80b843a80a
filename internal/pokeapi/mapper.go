package pokeapi

import (
	"path"
	"sort"
	"strings"

	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/domain"
)

// IDFromURL extracts the trailing numeric segment of a resource URL
// ("https://pokeapi.co/api/v2/pokemon/25/" -> "25"). Returns "" when the
// URL carries no numeric id.
func IDFromURL(resourceURL string) string {
	id := path.Base(strings.TrimRight(resourceURL, "/"))
	if id == "" || strings.IndexFunc(id, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return ""
	}
	return id
}

// MapPokemonList converts list results, keeping API order. A result with no
// name is keyed by its dex id, which the detail endpoint also accepts, so a
// page keeps the length the API returned. Results with neither are dropped
// and counted.
func MapPokemonList(results []NamedResource) (items []domain.Pokemon, dropped int) {
	items = make([]domain.Pokemon, 0, len(results))
	for _, r := range results {
		id := IDFromURL(r.URL)
		name := r.Name
		if name == "" {
			name = id
		}
		if name == "" {
			dropped++
			continue
		}
		items = append(items, domain.Pokemon{Name: name, ID: id})
	}
	return items, dropped
}

// MapPokemonDetail converts a full resource into the detail entity
func MapPokemonDetail(r PokemonResource) *domain.PokemonDetail {
	slots := append([]TypeSlot(nil), r.Types...)
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].Slot < slots[j].Slot })

	types := make([]string, len(slots))
	for i, s := range slots {
		types[i] = s.Type.Name
	}

	return &domain.PokemonDetail{
		ID:     r.ID,
		Name:   r.Name,
		Types:  types,
		Height: r.Height,
		Weight: r.Weight,
	}
}
