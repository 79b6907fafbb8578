// Package federation routes reads and writes across the regional hospital
// databases. Each region owns its full row set; nothing here coordinates
// transactions across regions. The primitives in this package decide which
// region a write lands on, locate rows given only a local id, fan reads out
// to every region and merge them, and combine per-region statistics.
package federation

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Shard is one regional database and its live connection pool.
type Shard struct {
	Name     string
	RegionID int
	Pool     *pgxpool.Pool
}

// Registry is the fixed, ordered set of shards. The order shards were
// declared in is the order every federated operation iterates in: the
// locator's first-match tie-break and the aggregator's merge order both
// depend on it. Read-only after construction.
type Registry struct {
	shards   []*Shard
	byName   map[string]*Shard
	byRegion map[int]*Shard
}

// NewRegistry builds a registry from shards in declaration order.
// Region ids must be dense integers starting at 1, matching position.
// Shard names must not contain the composite-id separator so that
// "{shard}-{localId}" strings parse back unambiguously.
func NewRegistry(shards []*Shard) (*Registry, error) {
	if len(shards) == 0 {
		return nil, fmt.Errorf("registry requires at least one shard")
	}
	r := &Registry{
		shards:   make([]*Shard, 0, len(shards)),
		byName:   make(map[string]*Shard, len(shards)),
		byRegion: make(map[int]*Shard, len(shards)),
	}
	for i, s := range shards {
		if s.Name == "" {
			return nil, fmt.Errorf("shard %d: name is empty", i)
		}
		if strings.Contains(s.Name, compositeSep) {
			return nil, fmt.Errorf("shard %q: name must not contain %q", s.Name, compositeSep)
		}
		if s.RegionID != i+1 {
			return nil, fmt.Errorf("shard %q: region id %d out of order, want %d", s.Name, s.RegionID, i+1)
		}
		if _, dup := r.byName[s.Name]; dup {
			return nil, fmt.Errorf("duplicate shard name %q", s.Name)
		}
		r.shards = append(r.shards, s)
		r.byName[s.Name] = s
		r.byRegion[s.RegionID] = s
	}
	return r, nil
}

// Shards returns the shards in registry order. Callers must not modify
// the returned slice.
func (r *Registry) Shards() []*Shard { return r.shards }

func (r *Registry) Len() int { return len(r.shards) }

func (r *Registry) ByName(name string) (*Shard, bool) {
	s, ok := r.byName[name]
	return s, ok
}

func (r *Registry) ByRegionID(id int) (*Shard, bool) {
	s, ok := r.byRegion[id]
	return s, ok
}
