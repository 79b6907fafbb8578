package consultation

import (
	"context"
	"sort"
	"sync"

	"github.com/hms/hms/internal/federation"
)

// GlobalStats is the federation-wide consultation statistic: total rows
// plus the duration average weighted by each region's consultation
// count.
type GlobalStats struct {
	Total           int64                         `json:"total"`
	AverageDuration float64                       `json:"promedio_duracion"`
	PerShard        []federation.PartialAggregate `json:"por_region"`
	FailedShards    []string                      `json:"failed_shards,omitempty"`
}

// ShardCounts is one region's row counts for the dashboard.
type ShardCounts struct {
	Shard  string           `json:"shard"`
	Tables map[string]int64 `json:"tables"`
}

// CountsReport aggregates per-region table counts with the global sums.
type CountsReport struct {
	Regions      []ShardCounts    `json:"regiones"`
	Totals       map[string]int64 `json:"totales"`
	FailedShards []string         `json:"failed_shards,omitempty"`
}

// Stats computes the global consultation statistic. Averaging per-shard
// averages would misweight regions, so each shard reports its raw sum
// and row count and the combination happens here.
func (s *Service) Stats(ctx context.Context) (GlobalStats, error) {
	partials, partial := federation.GatherPartials(ctx, s.reg, s.timeout,
		func(ctx context.Context, sh *federation.Shard) (federation.PartialAggregate, error) {
			count, sum, err := s.repo.AggregateDuration(ctx, sh)
			if err != nil {
				return federation.PartialAggregate{}, err
			}
			return federation.PartialAggregate{Count: count, Sum: sum, Weight: count}, nil
		})
	global := federation.CombineAggregates(partials)
	stats := GlobalStats{
		Total:           global.Count,
		AverageDuration: global.Average,
		PerShard:        partials,
	}
	if partial != nil {
		stats.FailedShards = partial.FailedShards()
	}
	return stats, nil
}

// Counts reports per-region row counts for every hospital table plus
// the global sums. Each region is queried concurrently; an unreachable
// region is excluded and reported rather than failing the report.
func (s *Service) Counts(ctx context.Context) (CountsReport, error) {
	shards := s.reg.Shards()
	results := make([]map[string]int64, len(shards))
	errs := make([]error, len(shards))

	var wg sync.WaitGroup
	for i, shard := range shards {
		wg.Add(1)
		go func(i int, shard *federation.Shard) {
			defer wg.Done()
			shardCtx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			results[i], errs[i] = s.repo.TableCounts(shardCtx, shard)
		}(i, shard)
	}
	wg.Wait()

	report := CountsReport{Totals: map[string]int64{}}
	for i, shard := range shards {
		if errs[i] != nil {
			report.FailedShards = append(report.FailedShards, shard.Name)
			continue
		}
		report.Regions = append(report.Regions, ShardCounts{Shard: shard.Name, Tables: results[i]})
		for table, n := range results[i] {
			report.Totals[table] += n
		}
	}
	return report, nil
}

// TopPatients ranks patients by consultation count across all regions.
// Each shard groups its own rows; the ranking and the limit are applied
// to the merged set only.
func (s *Service) TopPatients(ctx context.Context, limit int) ([]federation.Tagged[PatientCount], *federation.PartialFailure) {
	all, partial := federation.Gather(ctx, s.reg, s.timeout,
		func(ctx context.Context, sh *federation.Shard) ([]PatientCount, error) {
			return s.repo.CountByPatient(ctx, sh)
		}, federation.GatherOptions[PatientCount]{})

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Row.Consultas > all[j].Row.Consultas
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, partial
}
