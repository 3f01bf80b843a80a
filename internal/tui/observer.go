package tui

import "github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/loader"

// ChannelObserver adapts loader.Observer to a channel for Bubble Tea.
// Signals are coalesced: the model reads the loader's State when it wakes.
type ChannelObserver[T any] struct {
	ch chan<- struct{}
}

// NewChannelObserver creates a new channel-based observer.
func NewChannelObserver[T any](ch chan<- struct{}) *ChannelObserver[T] {
	return &ChannelObserver[T]{ch: ch}
}

// OnChange signals the channel (non-blocking if a signal is pending).
func (o *ChannelObserver[T]) OnChange(loader.State[T]) {
	select {
	case o.ch <- struct{}{}:
	default: // Already signalled
	}
}
