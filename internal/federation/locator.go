package federation

import (
	"context"
	"time"
)

// ProbeFunc asks one shard whether it owns a row. found=false with a nil
// error is a clean negative.
type ProbeFunc[T any] func(ctx context.Context, shard *Shard) (row T, found bool, err error)

type probeResult[T any] struct {
	row   T
	found bool
	err   error
}

// Locate finds the shard owning a row when the caller supplied only a
// bare local id. All shards are probed in parallel, each under its own
// timeout, but the answer is decided strictly in registry order: the
// first shard (by declaration order) reporting a match wins, and a match
// is only trusted once every earlier shard has answered with a clean
// negative. If an earlier shard failed, the locate is reported as
// incomplete rather than guessing which region owns the row. ErrNotFound
// is returned only after every shard answered negative.
//
// Local ids can legitimately collide across shards for unrelated rows;
// the registry-order tie-break keeps repeated calls consistent.
func Locate[T any](ctx context.Context, reg *Registry, timeout time.Duration, probe ProbeFunc[T]) (*Shard, T, error) {
	var zero T

	results := make([]chan probeResult[T], reg.Len())
	for i, shard := range reg.Shards() {
		ch := make(chan probeResult[T], 1)
		results[i] = ch
		go func(shard *Shard, ch chan<- probeResult[T]) {
			probeCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			row, found, err := probe(probeCtx, shard)
			ch <- probeResult[T]{row: row, found: found, err: err}
		}(shard, ch)
	}

	// Receive in registry order so a slow later shard never delays a
	// positive answer from an earlier one.
	for i, shard := range reg.Shards() {
		res := <-results[i]
		if res.err != nil {
			return nil, zero, &LocateIncompleteError{Shard: shard.Name, Err: res.err}
		}
		if res.found {
			return shard, res.row, nil
		}
	}
	return nil, zero, ErrNotFound
}
