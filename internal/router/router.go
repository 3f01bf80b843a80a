// Package router maps named locations to paths and carries query state so a
// search term survives navigation and can be shared as a path.
package router

import (
	"log/slog"
	"net/url"
	"strings"
	"sync"
)

// Name identifies a navigable location.
type Name string

const (
	Home          Name = "home"
	Pokemons      Name = "pokemons"
	PokemonSearch Name = "pokemon-search"
	Favorites     Name = "favorites"
)

// ParamName is the query parameter carrying the active search term.
const ParamName = "name"

var paths = map[Name]string{
	Home:          "/",
	Pokemons:      "/pokemons",
	PokemonSearch: "/search",
	Favorites:     "/favorites",
}

// Location is a named location plus its query parameters.
type Location struct {
	Name  Name
	Query url.Values
}

// To builds a location without query parameters.
func To(name Name) Location {
	return Location{Name: name}
}

// SearchFor builds the search-results location for term.
func SearchFor(term string) Location {
	return Location{Name: PokemonSearch, Query: url.Values{ParamName: []string{term}}}
}

// Param returns the first value of key, or "" when absent.
func (l Location) Param(key string) string {
	return l.Query.Get(key)
}

// Path renders the location as a shareable path, e.g. "/search?name=char".
func (l Location) Path() string {
	p, ok := paths[l.Name]
	if !ok {
		p = paths[Home]
	}
	if len(l.Query) == 0 {
		return p
	}
	return p + "?" + l.Query.Encode()
}

// Resolve parses a path into a location. Unknown paths redirect to Home.
func Resolve(raw string) Location {
	u, err := url.Parse(raw)
	if err != nil {
		return To(Home)
	}

	p := "/" + strings.Trim(u.Path, "/")
	for name, route := range paths {
		if route == p {
			q := u.Query()
			if len(q) == 0 {
				q = nil
			}
			return Location{Name: name, Query: q}
		}
	}
	return To(Home)
}

// Router holds the current location and a back stack, and notifies
// subscribers synchronously on every Push.
type Router struct {
	logger *slog.Logger

	mu        sync.Mutex
	current   Location
	history   []Location
	nextID    int
	listeners map[int]func(Location)
}

// New creates a router positioned at start.
func New(start Location, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		logger:    logger,
		current:   start,
		listeners: make(map[int]func(Location)),
	}
}

// Current returns the current location.
func (r *Router) Current() Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Push navigates to loc.
func (r *Router) Push(loc Location) {
	r.mu.Lock()
	r.history = append(r.history, r.current)
	r.current = loc
	r.mu.Unlock()

	r.logger.Debug("navigate", "path", loc.Path())
	r.notify(loc)
}

// Back returns to the previous location. It reports false at the root.
func (r *Router) Back() bool {
	r.mu.Lock()
	if len(r.history) == 0 {
		r.mu.Unlock()
		return false
	}
	loc := r.history[len(r.history)-1]
	r.history = r.history[:len(r.history)-1]
	r.current = loc
	r.mu.Unlock()

	r.notify(loc)
	return true
}

// Subscribe registers fn for location changes and returns its cancel func.
func (r *Router) Subscribe(fn func(Location)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	r.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.listeners, id)
			r.mu.Unlock()
		})
	}
}

func (r *Router) notify(loc Location) {
	r.mu.Lock()
	fns := make([]func(Location), 0, len(r.listeners))
	for _, fn := range r.listeners {
		fns = append(fns, fn)
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn(loc)
	}
}
