package employee

import (
	"context"

	"github.com/hms/hms/internal/federation"
)

type Repository interface {
	Insert(ctx context.Context, shard *federation.Shard, e *Employee) error
	GetByID(ctx context.Context, shard *federation.Shard, id int64) (Employee, bool, error)
	Update(ctx context.Context, shard *federation.Shard, e *Employee) error
	Delete(ctx context.Context, shard *federation.Shard, id int64) error
	List(ctx context.Context, shard *federation.Shard, term string) ([]Employee, error)
	ExistsByCedula(ctx context.Context, shard *federation.Shard, cedula string, excludeID int64) (bool, error)
	CountDependents(ctx context.Context, shard *federation.Shard, dep federation.Dependent, id int64) (int64, error)
}
