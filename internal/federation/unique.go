package federation

import (
	"context"
	"sync"
	"time"
)

// ExistsFunc reports whether one shard already holds a row with the
// candidate value. Must be side-effect free.
type ExistsFunc func(ctx context.Context, shard *Shard) (bool, error)

// CheckUnique verifies that no shard holds a row with the candidate value
// for a globally-unique field before the caller inserts on the target
// shard. All shards are checked concurrently; a match anywhere is enough
// to reject. An unreachable shard is treated conservatively: the check
// returns an IncompleteError and the caller must not proceed, because an
// unknown region might hold the duplicate this check exists to prevent.
//
// The check is advisory, not atomic. No lock spans the check and the
// subsequent insert, so two concurrent inserts of the same value can both
// pass and both land. That window is inherent to the architecture.
func CheckUnique(ctx context.Context, reg *Registry, timeout time.Duration, field, value string, exists ExistsFunc) error {
	n := reg.Len()
	matches := make([]bool, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i, shard := range reg.Shards() {
		wg.Add(1)
		go func(i int, shard *Shard) {
			defer wg.Done()
			shardCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			matches[i], errs[i] = exists(shardCtx, shard)
		}(i, shard)
	}
	wg.Wait()

	// A confirmed conflict outranks an unreachable shard: the insert is
	// rejected either way, but the conflict is actionable for the caller.
	for i, shard := range reg.Shards() {
		if errs[i] == nil && matches[i] {
			return &ConflictError{Field: field, Value: value, Shard: shard.Name}
		}
	}
	var failed []string
	for i, shard := range reg.Shards() {
		if errs[i] != nil {
			failed = append(failed, shard.Name)
		}
	}
	if len(failed) > 0 {
		return &IncompleteError{Field: field, FailedShards: failed}
	}
	return nil
}
