// Package pokeapi is a small client for the PokeAPI v2 REST endpoints used by
// the directory: the paginated pokémon list and the per-pokémon resource.
package pokeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/domain"
)

const (
	DefaultBaseURL = "https://pokeapi.co/api/v2"
	defaultTimeout = 15 * time.Second
	userAgent      = "pokedex-tui/1.0"
)

// Client implements domain.PokemonClient
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	group      singleflight.Group
}

// NewClient creates a PokeAPI client. An empty baseURL uses DefaultBaseURL and
// a non-positive timeout uses the package default.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// doRequest performs a GET and returns the body of a 200 response
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	reqURL := c.baseURL + path
	if query != nil {
		reqURL = fmt.Sprintf("%s?%s", reqURL, query.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("pokeapi request", "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Error("pokeapi request failed", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, domain.ErrNotFound
	case http.StatusTooManyRequests:
		return nil, domain.ErrRateLimited
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		c.logger.Error("pokeapi server error", "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: status %d", domain.ErrServerOffline, resp.StatusCode)
	}
	c.logger.Error("pokeapi request error", "status", resp.StatusCode, "body", string(body))
	return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
}

// get shares one in-flight request between identical callers and decodes
// the body into a fresh T. The shared request is detached from any single
// caller's cancellation and bounded by the client timeout; each caller still
// returns as soon as its own ctx is done.
func get[T any](ctx context.Context, c *Client, path string, query url.Values) (T, error) {
	var out T

	key := path
	if query != nil {
		key += "?" + query.Encode()
	}

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		return c.doRequest(detached, path, query)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return out, ctx.Err()
	case res = <-ch:
	}

	if res.Err != nil {
		return out, res.Err
	}
	if res.Shared {
		c.logger.Debug("pokeapi request shared", "key", key)
	}
	if err := json.Unmarshal(res.Val.([]byte), &out); err != nil {
		c.logger.Error("JSON parse error", "error", err, "path", path)
		return out, fmt.Errorf("failed to parse response: %w", err)
	}
	return out, nil
}

// ListPokemon returns page (1-based) of the national dex, limit entries per
// page. A page past the end returns an empty, non-nil slice.
func (c *Client) ListPokemon(ctx context.Context, page, limit int) ([]domain.Pokemon, error) {
	if page < 1 {
		page = 1
	}
	p := domain.Page{Number: page, Limit: limit}

	query := url.Values{}
	query.Set("offset", strconv.Itoa(p.Offset()))
	query.Set("limit", strconv.Itoa(limit))

	list, err := get[NamedResourceList](ctx, c, "/pokemon", query)
	if err != nil {
		return nil, fmt.Errorf("list pokemon page %d: %w", page, err)
	}
	items, dropped := MapPokemonList(list.Results)
	if dropped > 0 {
		c.logger.Warn("dropped unusable list results", "page", page, "dropped", dropped, "returned", len(list.Results))
	}
	return items, nil
}

// GetPokemon returns the detail record for name
func (c *Client) GetPokemon(ctx context.Context, name string) (*domain.PokemonDetail, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, domain.ErrNotFound
	}

	res, err := get[PokemonResource](ctx, c, "/pokemon/"+url.PathEscape(name), nil)
	if err != nil {
		return nil, fmt.Errorf("get pokemon %q: %w", name, err)
	}
	return MapPokemonDetail(res), nil
}

var _ domain.PokemonClient = (*Client)(nil)
