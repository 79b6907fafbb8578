package federation

import (
	"context"
	"sync"
	"time"
)

// PartialAggregate is one shard's share of a global statistic. Sum and
// Weight carry the raw material for a weighted average: Sum is the total
// of the measured values on that shard and Weight the number of rows that
// contributed to it. A shard with Weight 0 has no opinion on the average.
type PartialAggregate struct {
	ShardName string  `json:"shard"`
	Count     int64   `json:"count"`
	Sum       float64 `json:"sum"`
	Weight    int64   `json:"weight"`
}

// GlobalAggregate is the federation-wide statistic combined from the
// per-shard partials.
type GlobalAggregate struct {
	Count   int64   `json:"count"`
	Average float64 `json:"average"`
}

// CombineAggregates folds per-shard partials into the global statistic.
// The average is total sum over total weight, never the mean of per-shard averages,
// which would misweight regions with different row counts. Shards with
// weight 0 are skipped entirely rather than counted as an average of 0.
func CombineAggregates(partials []PartialAggregate) GlobalAggregate {
	var g GlobalAggregate
	var totalSum float64
	var totalWeight int64
	for _, p := range partials {
		g.Count += p.Count
		if p.Weight == 0 {
			continue
		}
		totalSum += p.Sum
		totalWeight += p.Weight
	}
	if totalWeight > 0 {
		g.Average = totalSum / float64(totalWeight)
	}
	return g
}

// AggregateFunc computes one shard's partial aggregate.
type AggregateFunc func(ctx context.Context, shard *Shard) (PartialAggregate, error)

// GatherPartials runs an aggregate query on every shard concurrently
// under the same partial-failure policy as Gather: a failed shard
// contributes nothing and is reported so callers can qualify the result.
func GatherPartials(ctx context.Context, reg *Registry, timeout time.Duration, fn AggregateFunc) ([]PartialAggregate, *PartialFailure) {
	n := reg.Len()
	partials := make([]PartialAggregate, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i, shard := range reg.Shards() {
		wg.Add(1)
		go func(i int, shard *Shard) {
			defer wg.Done()
			shardCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			partials[i], errs[i] = fn(shardCtx, shard)
			partials[i].ShardName = shard.Name
		}(i, shard)
	}
	wg.Wait()

	var ok []PartialAggregate
	var failures []ShardError
	for i, shard := range reg.Shards() {
		if errs[i] != nil {
			failures = append(failures, ShardError{Shard: shard.Name, Err: errs[i]})
			continue
		}
		ok = append(ok, partials[i])
	}
	if len(failures) > 0 {
		return ok, &PartialFailure{Errors: failures}
	}
	return ok, nil
}
