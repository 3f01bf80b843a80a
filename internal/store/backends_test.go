package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Backends(t *testing.T) {
	for _, backend := range []string{BackendBolt, BackendSQLite, BackendFile, BackendMemory} {
		t.Run(backend, func(t *testing.T) {
			kv, err := New(backend, t.TempDir())
			require.NoError(t, err)
			defer kv.Close()

			_, ok, err := kv.Get("missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, kv.Set("pokemon-favorites", `{"eevee":"eevee"}`))
			require.NoError(t, kv.Set("pokemon-favorites", `{"mew":"mew"}`))

			got, ok, err := kv.Get("pokemon-favorites")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `{"mew":"mew"}`, got)
		})
	}
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New("redis", t.TempDir())
	assert.Error(t, err)
}

func TestBoltStore_Pages(t *testing.T) {
	s, err := NewBoltStore(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	_, ok := s.GetPage(1, 10)
	assert.False(t, ok)

	items := []domain.Pokemon{{Name: "bulbasaur", ID: "1"}, {Name: "ivysaur", ID: "2"}}
	require.NoError(t, s.SavePage(1, 10, items))

	got, ok := s.GetPage(1, 10)
	require.True(t, ok)
	assert.Equal(t, items, got)

	_, ok = s.GetPage(1, 20)
	assert.False(t, ok, "pages are keyed by limit")

	require.NoError(t, s.InvalidatePages())
	_, ok = s.GetPage(1, 10)
	assert.False(t, ok)
}

func TestBoltStore_Closed(t *testing.T) {
	s := newMemory(t)
	require.NoError(t, s.Close())

	_, _, err := s.Get("k")
	assert.True(t, errors.Is(err, domain.ErrStoreClosed))
	assert.True(t, errors.Is(s.Set("k", "v"), domain.ErrStoreClosed))
}

func TestFileStore_FollowExternalWrite(t *testing.T) {
	dir := t.TempDir()
	ours, err := NewFileStore(dir)
	require.NoError(t, err)
	theirs, err := NewFileStore(dir)
	require.NoError(t, err)

	v, err := Open(ours, "pokemon-favorites", map[string]string{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	changed := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- v.Follow(ctx, nil, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, theirs.Set("pokemon-favorites", `{"ditto":"ditto"}`))

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("external write was not observed")
	}
	assert.Equal(t, map[string]string{"ditto": "ditto"}, v.Get())

	cancel()
	require.NoError(t, <-done)
}

func TestFollow_NoWatcherReturns(t *testing.T) {
	v, err := Open(newMemory(t), "k", 0)
	require.NoError(t, err)
	assert.NoError(t, v.Follow(context.Background(), nil, nil))
}

func TestBoltStore_FailedWriteIsNotCached(t *testing.T) {
	s, err := NewBoltStore(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	// bolt rejects empty keys
	v, err := Open(s, "", map[string]string{})
	require.NoError(t, err)
	require.Error(t, v.Set(map[string]string{"pikachu": "pikachu"}))

	_, ok, err := s.Get("")
	require.NoError(t, err)
	assert.False(t, ok)

	found, err := v.Resync()
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, v.Get())
}
