package catalog

import (
	"context"

	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/domain"
)

// fetchAll walks pages from 1 until one comes back shorter than limit.
func fetchAll[T any](
	ctx context.Context,
	fetch func(ctx context.Context, page, limit int) ([]T, error),
	limit int,
	onProgress domain.ProgressFunc,
) ([]T, error) {
	var all []T

	for page := 1; ; page++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		items, err := fetch(ctx, page, limit)
		if err != nil {
			return nil, err
		}

		all = append(all, items...)

		if onProgress != nil {
			onProgress(len(all), page)
		}

		if len(items) < limit {
			break
		}
	}

	return all, nil
}
