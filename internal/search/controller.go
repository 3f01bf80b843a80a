package search

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/router"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Navigator is the slice of the router the controller needs.
type Navigator interface {
	Current() router.Location
	Push(loc router.Location)
	Subscribe(fn func(router.Location)) func()
}

// Controller binds a search term to the "name" query parameter of the
// current location and filters a locally supplied candidate list.
type Controller struct {
	nav    Navigator
	logger *slog.Logger
	cancel func()

	mu         sync.RWMutex
	term       string
	candidates []string
}

// NewController reads the initial term from the current location and keeps
// following it until Close.
func NewController(nav Navigator, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		nav:    nav,
		logger: logger,
		term:   nav.Current().Param(router.ParamName),
	}
	c.cancel = nav.Subscribe(c.follow)
	return c
}

func (c *Controller) follow(loc router.Location) {
	c.mu.Lock()
	c.term = loc.Param(router.ParamName)
	c.mu.Unlock()
}

// Close stops following location changes.
func (c *Controller) Close() {
	c.cancel()
}

// Term returns the current term exactly as entered.
func (c *Controller) Term() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.term
}

// SetTerm replaces the term without navigating.
func (c *Controller) SetTerm(term string) {
	c.mu.Lock()
	c.term = term
	c.mu.Unlock()
}

// HandleSearch navigates to the search-results location carrying the term.
// A blank term is ignored; the return value reports whether it navigated.
func (c *Controller) HandleSearch() bool {
	term := c.Term()
	if strings.TrimSpace(term) == "" {
		return false
	}
	c.logger.Debug("search", "term", term)
	c.nav.Push(router.SearchFor(term))
	return true
}

// ClearSearch empties the term and navigates to the listing.
func (c *Controller) ClearSearch() {
	c.SetTerm("")
	c.nav.Push(router.To(router.Pokemons))
}

// UpdateCandidates replaces the list the controller filters.
func (c *Controller) UpdateCandidates(names []string) {
	c.mu.Lock()
	c.candidates = names
	c.mu.Unlock()
}

// Filtered returns the candidates containing the term, ignoring case. A
// blank term returns the candidate slice itself.
func (c *Controller) Filtered() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Filter(c.candidates, c.term)
}

// Suggest returns up to limit candidates that fuzzily resemble the term,
// closest first. Used to offer alternatives when Filtered is empty.
func (c *Controller) Suggest(limit int) []string {
	c.mu.RLock()
	term := strings.TrimSpace(c.term)
	candidates := c.candidates
	c.mu.RUnlock()

	if term == "" || limit <= 0 {
		return nil
	}

	ranks := fuzzy.RankFindNormalizedFold(term, candidates)
	if len(ranks) == 0 {
		// Subsequence match failed; fall back to edit distance.
		for _, name := range candidates {
			d := fuzzy.LevenshteinDistance(strings.ToLower(term), strings.ToLower(name))
			if d <= len(term)/2+1 {
				ranks = append(ranks, fuzzy.Rank{Source: term, Target: name, Distance: d})
			}
		}
	}

	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].Target < ranks[j].Target
	})

	if len(ranks) > limit {
		ranks = ranks[:limit]
	}
	out := make([]string, len(ranks))
	for i, r := range ranks {
		out[i] = r.Target
	}
	return out
}
