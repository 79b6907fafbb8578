package doctor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hms/hms/internal/federation"
)

// Same-shard tables that block a doctor delete.
var dependents = []federation.Dependent{
	{Table: "consultas", Column: "id_medico"},
	{Table: "usuarios", Column: "id_medico"},
}

// Service federates doctor operations. The correo field is globally
// unique across regions; the specialty reference stays inside the
// doctor's own regional database.
type Service struct {
	reg     *federation.Registry
	repo    Repository
	timeout time.Duration
}

func NewService(reg *federation.Registry, repo Repository, shardTimeout time.Duration) *Service {
	return &Service{reg: reg, repo: repo, timeout: shardTimeout}
}

func (s *Service) validate(d *Doctor) error {
	if strings.TrimSpace(d.FirstName) == "" || strings.TrimSpace(d.LastName) == "" {
		return fmt.Errorf("nombre and apellido are required: %w", federation.ErrInvalidArgument)
	}
	if !strings.Contains(d.Email, "@") {
		return fmt.Errorf("invalid correo %q: %w", d.Email, federation.ErrInvalidArgument)
	}
	if d.SpecialtyID <= 0 {
		return fmt.Errorf("id_especialidad is required: %w", federation.ErrInvalidArgument)
	}
	return nil
}

func (s *Service) tag(shard *federation.Shard, d Doctor) federation.Tagged[Doctor] {
	return federation.Tagged[Doctor]{
		CompositeID: federation.CompositeID{Shard: shard.Name, LocalID: d.ID}.String(),
		OriginShard: shard.Name,
		Row:         d,
	}
}

// checkSpecialty verifies the referenced specialty exists on the target
// shard. References never cross regions, so only that shard is asked.
func (s *Service) checkSpecialty(ctx context.Context, shard *federation.Shard, specialtyID int64) error {
	ok, err := s.repo.SpecialtyExists(ctx, shard, specialtyID)
	if err != nil {
		return fmt.Errorf("check specialty on %s: %w", shard.Name, err)
	}
	if !ok {
		return fmt.Errorf("specialty %d not found on %s: %w", specialtyID, shard.Name, federation.ErrNotFound)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, regionID int, d *Doctor) (federation.Tagged[Doctor], error) {
	var zero federation.Tagged[Doctor]
	if err := s.validate(d); err != nil {
		return zero, err
	}
	shard, err := s.reg.Route(regionID)
	if err != nil {
		return zero, err
	}
	if err := s.checkSpecialty(ctx, shard, d.SpecialtyID); err != nil {
		return zero, err
	}
	err = federation.CheckUnique(ctx, s.reg, s.timeout, "correo", d.Email,
		func(ctx context.Context, sh *federation.Shard) (bool, error) {
			return s.repo.ExistsByEmail(ctx, sh, d.Email, 0)
		})
	if err != nil {
		return zero, err
	}
	if err := s.repo.Insert(ctx, shard, d); err != nil {
		return zero, fmt.Errorf("insert doctor on %s: %w", shard.Name, err)
	}
	return s.tag(shard, *d), nil
}

func (s *Service) resolve(ctx context.Context, ref federation.Ref) (*federation.Shard, Doctor, error) {
	shard, err := ref.Resolve(s.reg)
	if err != nil {
		return nil, Doctor{}, err
	}
	if shard != nil {
		d, found, err := s.repo.GetByID(ctx, shard, ref.LocalID)
		if err != nil {
			return nil, Doctor{}, err
		}
		if !found {
			return nil, Doctor{}, federation.ErrNotFound
		}
		return shard, d, nil
	}
	return federation.Locate(ctx, s.reg, s.timeout,
		func(ctx context.Context, sh *federation.Shard) (Doctor, bool, error) {
			return s.repo.GetByID(ctx, sh, ref.LocalID)
		})
}

func (s *Service) Get(ctx context.Context, ref federation.Ref) (federation.Tagged[Doctor], error) {
	shard, d, err := s.resolve(ctx, ref)
	if err != nil {
		return federation.Tagged[Doctor]{}, err
	}
	return s.tag(shard, d), nil
}

func (s *Service) List(ctx context.Context, term string, offset, limit int) ([]federation.Tagged[Doctor], int, *federation.PartialFailure) {
	all, partial := federation.Gather(ctx, s.reg, s.timeout,
		func(ctx context.Context, sh *federation.Shard) ([]Doctor, error) {
			return s.repo.List(ctx, sh, term)
		}, federation.GatherOptions[Doctor]{
			Less: func(a, b federation.Tagged[Doctor]) bool {
				if a.Row.LastName != b.Row.LastName {
					return a.Row.LastName < b.Row.LastName
				}
				return a.Row.FirstName < b.Row.FirstName
			},
		})
	total := len(all)
	return federation.Window(all, offset, limit), total, partial
}

func (s *Service) ListRegion(ctx context.Context, regionID int, term string, offset, limit int) ([]federation.Tagged[Doctor], int, error) {
	shard, err := s.reg.Route(regionID)
	if err != nil {
		return nil, 0, err
	}
	rows, err := s.repo.List(ctx, shard, term)
	if err != nil {
		return nil, 0, fmt.Errorf("list doctors on %s: %w", shard.Name, err)
	}
	tagged := make([]federation.Tagged[Doctor], len(rows))
	for i, d := range rows {
		tagged[i] = s.tag(shard, d)
	}
	return federation.Window(tagged, offset, limit), len(rows), nil
}

func (s *Service) Update(ctx context.Context, ref federation.Ref, d *Doctor) (federation.Tagged[Doctor], error) {
	var zero federation.Tagged[Doctor]
	if err := s.validate(d); err != nil {
		return zero, err
	}
	shard, existing, err := s.resolve(ctx, ref)
	if err != nil {
		return zero, err
	}
	if d.SpecialtyID != existing.SpecialtyID {
		if err := s.checkSpecialty(ctx, shard, d.SpecialtyID); err != nil {
			return zero, err
		}
	}
	if d.Email != existing.Email {
		err = federation.CheckUnique(ctx, s.reg, s.timeout, "correo", d.Email,
			func(ctx context.Context, sh *federation.Shard) (bool, error) {
				exclude := int64(0)
				if sh.Name == shard.Name {
					exclude = existing.ID
				}
				return s.repo.ExistsByEmail(ctx, sh, d.Email, exclude)
			})
		if err != nil {
			return zero, err
		}
	}
	d.ID = existing.ID
	if err := s.repo.Update(ctx, shard, d); err != nil {
		return zero, fmt.Errorf("update doctor on %s: %w", shard.Name, err)
	}
	return s.tag(shard, *d), nil
}

func (s *Service) Delete(ctx context.Context, ref federation.Ref) error {
	shard, existing, err := s.resolve(ctx, ref)
	if err != nil {
		return err
	}
	if err := federation.CanDelete(ctx, shard, existing.ID, dependents, s.repo.CountDependents); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, shard, existing.ID); err != nil {
		return fmt.Errorf("delete doctor on %s: %w", shard.Name, err)
	}
	return nil
}
