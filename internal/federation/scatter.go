package federation

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"
)

// Entity is any row type carrying a shard-local integer primary key.
type Entity interface {
	LocalID() int64
}

// Tagged wraps a row with its origin shard and the globally-unique
// composite id synthesized from it.
type Tagged[T Entity] struct {
	CompositeID string
	OriginShard string
	Row         T
}

// MarshalJSON flattens the row's own fields alongside composite_id and
// origin_shard, so callers see one object per entity.
func (t Tagged[T]) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(t.Row)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	cid, _ := json.Marshal(t.CompositeID)
	origin, _ := json.Marshal(t.OriginShard)
	fields["composite_id"] = cid
	fields["origin_shard"] = origin
	return json.Marshal(fields)
}

// QueryFunc runs one shard's share of a federated read.
type QueryFunc[T Entity] func(ctx context.Context, shard *Shard) ([]T, error)

// GatherOptions control the post-merge phase. Sorting and windowing are
// always applied to the merged set: a per-shard LIMIT would silently drop
// globally-ranked rows, which is exactly the bug this layer exists to
// prevent.
type GatherOptions[T Entity] struct {
	// Less orders the merged set. Nil keeps registry-order concatenation.
	Less func(a, b Tagged[T]) bool
	// Offset and Limit window the merged (and, if requested, sorted)
	// set. Limit 0 means no limit.
	Offset int
	Limit  int
}

// Gather fans a query out to every shard concurrently, tags each returned
// row with its origin, and concatenates results in registry order. Each
// shard call runs under its own timeout so one slow region cannot stall
// the federation. A failed shard contributes nothing; its failure is
// reported in the returned PartialFailure (nil when all shards answered)
// so callers can tell "zero matches" from "incomplete data".
func Gather[T Entity](ctx context.Context, reg *Registry, timeout time.Duration, query QueryFunc[T], opts GatherOptions[T]) ([]Tagged[T], *PartialFailure) {
	n := reg.Len()
	rows := make([][]T, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i, shard := range reg.Shards() {
		wg.Add(1)
		go func(i int, shard *Shard) {
			defer wg.Done()
			shardCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			rows[i], errs[i] = query(shardCtx, shard)
		}(i, shard)
	}
	wg.Wait()

	var merged []Tagged[T]
	var failures []ShardError
	for i, shard := range reg.Shards() {
		if errs[i] != nil {
			failures = append(failures, ShardError{Shard: shard.Name, Err: errs[i]})
			continue
		}
		for _, row := range rows[i] {
			merged = append(merged, Tagged[T]{
				CompositeID: CompositeID{Shard: shard.Name, LocalID: row.LocalID()}.String(),
				OriginShard: shard.Name,
				Row:         row,
			})
		}
	}

	if opts.Less != nil {
		sort.SliceStable(merged, func(a, b int) bool { return opts.Less(merged[a], merged[b]) })
	}
	merged = Window(merged, opts.Offset, opts.Limit)

	if len(failures) > 0 {
		return merged, &PartialFailure{Errors: failures}
	}
	return merged, nil
}

// Window applies an offset/limit to an already-merged (and, if needed,
// sorted) result set. Limit 0 means no limit.
func Window[T Entity](rows []Tagged[T], offset, limit int) []Tagged[T] {
	if offset > 0 {
		if offset >= len(rows) {
			return nil
		}
		rows = rows[offset:]
	}
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
