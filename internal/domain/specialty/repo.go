package specialty

import (
	"context"

	"github.com/hms/hms/internal/federation"
)

type Repository interface {
	Insert(ctx context.Context, shard *federation.Shard, s *Specialty) error
	GetByID(ctx context.Context, shard *federation.Shard, id int64) (Specialty, bool, error)
	Update(ctx context.Context, shard *federation.Shard, s *Specialty) error
	Delete(ctx context.Context, shard *federation.Shard, id int64) error
	List(ctx context.Context, shard *federation.Shard, term string) ([]Specialty, error)
	CountDependents(ctx context.Context, shard *federation.Shard, dep federation.Dependent, id int64) (int64, error)
}
