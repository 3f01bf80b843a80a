package pokeapi

// NamedResourceList is the envelope of the paginated /pokemon endpoint
type NamedResourceList struct {
	Count    int             `json:"count"`
	Next     *string         `json:"next"`
	Previous *string         `json:"previous"`
	Results  []NamedResource `json:"results"`
}

// NamedResource is a name plus the URL of the full resource
type NamedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// PokemonResource is the subset of /pokemon/{name} the detail panel needs
type PokemonResource struct {
	ID     int        `json:"id"`
	Name   string     `json:"name"`
	Height int        `json:"height"`
	Weight int        `json:"weight"`
	Types  []TypeSlot `json:"types"`
}

// TypeSlot orders a pokémon's types
type TypeSlot struct {
	Slot int           `json:"slot"`
	Type NamedResource `json:"type"`
}
