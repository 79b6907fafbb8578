package doctor

import (
	"context"

	"github.com/hms/hms/internal/federation"
)

// Repository is shard-scoped; cross-shard behavior belongs to the
// Service.
type Repository interface {
	Insert(ctx context.Context, shard *federation.Shard, d *Doctor) error
	GetByID(ctx context.Context, shard *federation.Shard, id int64) (Doctor, bool, error)
	Update(ctx context.Context, shard *federation.Shard, d *Doctor) error
	Delete(ctx context.Context, shard *federation.Shard, id int64) error
	List(ctx context.Context, shard *federation.Shard, term string) ([]Doctor, error)
	ExistsByEmail(ctx context.Context, shard *federation.Shard, email string, excludeID int64) (bool, error)
	SpecialtyExists(ctx context.Context, shard *federation.Shard, specialtyID int64) (bool, error)
	CountDependents(ctx context.Context, shard *federation.Shard, dep federation.Dependent, id int64) (int64, error)
}
