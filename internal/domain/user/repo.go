package user

import (
	"context"

	"github.com/hms/hms/internal/federation"
)

type Repository interface {
	Insert(ctx context.Context, shard *federation.Shard, u *User) error
	GetByID(ctx context.Context, shard *federation.Shard, id int64) (User, bool, error)
	Update(ctx context.Context, shard *federation.Shard, u *User) error
	Delete(ctx context.Context, shard *federation.Shard, id int64) error
	List(ctx context.Context, shard *federation.Shard, term string) ([]User, error)
	ExistsByUsername(ctx context.Context, shard *federation.Shard, username string, excludeID int64) (bool, error)
	DoctorExists(ctx context.Context, shard *federation.Shard, doctorID int64) (bool, error)
	EmployeeExists(ctx context.Context, shard *federation.Shard, employeeID int64) (bool, error)
}
