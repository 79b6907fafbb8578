package consultation

import (
	"context"

	"github.com/hms/hms/internal/federation"
)

// Filter narrows a per-shard listing. Zero values mean no filter; the
// ids are local to the shard being queried.
type Filter struct {
	PatientID int64
	DoctorID  int64
}

type Repository interface {
	Insert(ctx context.Context, shard *federation.Shard, c *Consultation) error
	GetByID(ctx context.Context, shard *federation.Shard, id int64) (Consultation, bool, error)
	Update(ctx context.Context, shard *federation.Shard, c *Consultation) error
	Delete(ctx context.Context, shard *federation.Shard, id int64) error
	List(ctx context.Context, shard *federation.Shard, f Filter) ([]Consultation, error)
	PatientExists(ctx context.Context, shard *federation.Shard, patientID int64) (bool, error)
	DoctorExists(ctx context.Context, shard *federation.Shard, doctorID int64) (bool, error)

	// Stats queries, each scoped to one shard.
	AggregateDuration(ctx context.Context, shard *federation.Shard) (count int64, sum float64, err error)
	CountByPatient(ctx context.Context, shard *federation.Shard) ([]PatientCount, error)
	TableCounts(ctx context.Context, shard *federation.Shard) (map[string]int64, error)
}
