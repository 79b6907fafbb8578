package patient

import (
	"context"

	"github.com/hms/hms/internal/federation"
)

// Repository is the shard-scoped persistence contract: every method
// operates on exactly one regional database. Cross-shard behavior lives
// in the Service, never here.
type Repository interface {
	Insert(ctx context.Context, shard *federation.Shard, p *Patient) error
	GetByID(ctx context.Context, shard *federation.Shard, id int64) (Patient, bool, error)
	Update(ctx context.Context, shard *federation.Shard, p *Patient) error
	Delete(ctx context.Context, shard *federation.Shard, id int64) error
	List(ctx context.Context, shard *federation.Shard, term string) ([]Patient, error)
	ExistsByEmail(ctx context.Context, shard *federation.Shard, email string, excludeID int64) (bool, error)
	CountDependents(ctx context.Context, shard *federation.Shard, dep federation.Dependent, id int64) (int64, error)
}
