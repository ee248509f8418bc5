package core

import (
	"context"
	"strconv"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"golang.org/x/sync/singleflight"
)

type cacheState int

const (
	cacheEmpty cacheState = iota
	cachePopulated
)

// lazySlot is one lazily computed field. It has no lock of its own; the
// owning object's mutex guards it.
type lazySlot[T any] struct {
	state cacheState
	epoch uint64
	value T
}

// invalidate empties the slot and starts a new epoch. Callers hold the
// owner's mutex.
func (s *lazySlot[T]) invalidate() {
	var zero T
	s.state = cacheEmpty
	s.value = zero
	s.epoch++
}

// seed stores value as the current epoch's result. Callers hold the owner's
// mutex.
func (s *lazySlot[T]) seed(value T) {
	s.value = value
	s.state = cachePopulated
}

// loadSlot returns the slot's value, running fetch when it is empty.
// Callers that arrive in the same epoch share one fetch. A result fetched
// in an epoch that was invalidated meanwhile is returned but not stored.
// The shared fetch is detached from cancellation; each caller stops
// waiting when its own ctx is done. mu must not be held by the caller.
func loadSlot[T any](ctx context.Context, mu *sync.Mutex, slot *lazySlot[T], group *singleflight.Group, name string, fetch func(context.Context) (T, error)) (T, error) {
	mu.Lock()
	if slot.state == cachePopulated {
		value := slot.value
		mu.Unlock()
		return value, nil
	}
	epoch := slot.epoch
	mu.Unlock()

	detached := context.WithoutCancel(ctx)
	ch := group.DoChan(name+"/"+strconv.FormatUint(epoch, 10), func() (any, error) {
		mu.Lock()
		if slot.epoch == epoch && slot.state == cachePopulated {
			value := slot.value
			mu.Unlock()
			return value, nil
		}
		mu.Unlock()

		value, err := fetch(detached)
		if err != nil {
			return nil, err
		}
		mu.Lock()
		if slot.epoch == epoch {
			slot.seed(value)
		}
		mu.Unlock()
		return value, nil
	})
	select {
	case <-ctx.Done():
		var zero T
		return zero, errbuilder.WrapIfContextError(ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			var zero T
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}
