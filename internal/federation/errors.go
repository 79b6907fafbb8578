package federation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound means every shard was checked and none holds the row.
var ErrNotFound = errors.New("not found in any shard")

// ErrInvalidArgument marks caller-supplied data that fails validation
// before any shard is touched.
var ErrInvalidArgument = errors.New("invalid argument")

// UnknownRegionError means a caller supplied a region id with no shard
// mapping. This is a configuration or caller bug, never retried.
type UnknownRegionError struct {
	RegionID int
}

func (e *UnknownRegionError) Error() string {
	return fmt.Sprintf("unknown region id %d", e.RegionID)
}

// ConflictError means a globally-unique field already holds the candidate
// value somewhere in the federation.
type ConflictError struct {
	Field string
	Value string
	Shard string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q already exists in shard %s", e.Field, e.Value, e.Shard)
}

// IncompleteError means a uniqueness check could not reach every shard.
// The caller must refuse the insert and retry rather than risk a
// duplicate landing on an unreachable region.
type IncompleteError struct {
	Field        string
	FailedShards []string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("uniqueness check for %s incomplete: shards unreachable: %s",
		e.Field, strings.Join(e.FailedShards, ", "))
}

// LocateIncompleteError means a shard that could have owned the row (or
// outranked an observed match) failed during a locate.
type LocateIncompleteError struct {
	Shard string
	Err   error
}

func (e *LocateIncompleteError) Error() string {
	return fmt.Sprintf("locate incomplete: shard %s: %v", e.Shard, e.Err)
}

func (e *LocateIncompleteError) Unwrap() error { return e.Err }

// ReferentialBlockError means dependent rows on the same shard reference
// the row a caller asked to delete.
type ReferentialBlockError struct {
	Table string
	Count int64
}

func (e *ReferentialBlockError) Error() string {
	return fmt.Sprintf("delete blocked: %d dependent row(s) in %s", e.Count, e.Table)
}

// ShardError records one shard's failure during a scatter-gather.
type ShardError struct {
	Shard string
	Err   error
}

// PartialFailure accompanies a merged result when one or more shards
// failed during a scatter-gather read. The merged rows are still
// returned; callers decide whether incomplete data is acceptable.
type PartialFailure struct {
	Errors []ShardError
}

func (p *PartialFailure) FailedShards() []string {
	names := make([]string, len(p.Errors))
	for i, e := range p.Errors {
		names[i] = e.Shard
	}
	return names
}

func (p *PartialFailure) Error() string {
	return fmt.Sprintf("partial aggregate: shards failed: %s", strings.Join(p.FailedShards(), ", "))
}
