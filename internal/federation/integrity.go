package federation

import (
	"context"
	"fmt"
)

// Dependent names a table/column pair that references an entity by
// foreign key. Dependents always live on the same shard as the entity;
// references never cross shards.
type Dependent struct {
	Table  string
	Column string
}

// CountFunc counts rows in dep.Table on the given shard whose dep.Column
// equals localID.
type CountFunc func(ctx context.Context, shard *Shard, dep Dependent, localID int64) (int64, error)

// CanDelete checks every dependent table on the target row's own shard
// and returns a ReferentialBlockError for the first one still holding
// references. Callers must run this before issuing the delete statement,
// never after.
func CanDelete(ctx context.Context, shard *Shard, localID int64, deps []Dependent, count CountFunc) error {
	for _, dep := range deps {
		n, err := count(ctx, shard, dep, localID)
		if err != nil {
			return fmt.Errorf("count dependents in %s on %s: %w", dep.Table, shard.Name, err)
		}
		if n > 0 {
			return &ReferentialBlockError{Table: dep.Table, Count: n}
		}
	}
	return nil
}
