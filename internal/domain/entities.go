package domain

import (
	"fmt"
	"strings"
)

// Pokemon is a single directory entry as returned by the list endpoint.
type Pokemon struct {
	Name string // Lowercase API name, e.g. "mr-mime"
	ID   string // National dex number as a string, e.g. "122"
}

// PokemonDetail holds the fields shown in the detail panel.
type PokemonDetail struct {
	ID     int
	Name   string
	Types  []string // Slot order, e.g. ["grass", "poison"]
	Height int      // Decimetres
	Weight int      // Hectograms
}

// FormattedHeight returns the height in metres (e.g. "1.7 m")
func (d PokemonDetail) FormattedHeight() string {
	return fmt.Sprintf("%.1f m", float64(d.Height)/10)
}

// FormattedWeight returns the weight in kilograms (e.g. "90.5 kg")
func (d PokemonDetail) FormattedWeight() string {
	return fmt.Sprintf("%.1f kg", float64(d.Weight)/10)
}

// TypeLine joins the types for display (e.g. "grass / poison")
func (d PokemonDetail) TypeLine() string {
	return strings.Join(d.Types, " / ")
}

// Page is one fetch unit: up to Limit entries starting at page Number (1-based).
type Page struct {
	Number int
	Limit  int
	Items  []Pokemon
}

// Offset returns the zero-based item offset of the page.
func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Limit
}

// Names returns the entry names in page order.
func (p Page) Names() []string {
	names := make([]string, len(p.Items))
	for i, item := range p.Items {
		names[i] = item.Name
	}
	return names
}
