package employee

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hms/hms/internal/federation"
)

var dependents = []federation.Dependent{
	{Table: "usuarios", Column: "id_empleado"},
}

// Service federates employee operations; the cedula is the globally
// unique field.
type Service struct {
	reg     *federation.Registry
	repo    Repository
	timeout time.Duration
}

func NewService(reg *federation.Registry, repo Repository, shardTimeout time.Duration) *Service {
	return &Service{reg: reg, repo: repo, timeout: shardTimeout}
}

func (s *Service) validate(e *Employee) error {
	if strings.TrimSpace(e.FirstName) == "" || strings.TrimSpace(e.LastName) == "" {
		return fmt.Errorf("nombre and apellido are required: %w", federation.ErrInvalidArgument)
	}
	if strings.TrimSpace(e.Cedula) == "" {
		return fmt.Errorf("cedula is required: %w", federation.ErrInvalidArgument)
	}
	return nil
}

func (s *Service) tag(shard *federation.Shard, e Employee) federation.Tagged[Employee] {
	return federation.Tagged[Employee]{
		CompositeID: federation.CompositeID{Shard: shard.Name, LocalID: e.ID}.String(),
		OriginShard: shard.Name,
		Row:         e,
	}
}

func (s *Service) Create(ctx context.Context, regionID int, e *Employee) (federation.Tagged[Employee], error) {
	var zero federation.Tagged[Employee]
	if err := s.validate(e); err != nil {
		return zero, err
	}
	shard, err := s.reg.Route(regionID)
	if err != nil {
		return zero, err
	}
	err = federation.CheckUnique(ctx, s.reg, s.timeout, "cedula", e.Cedula,
		func(ctx context.Context, sh *federation.Shard) (bool, error) {
			return s.repo.ExistsByCedula(ctx, sh, e.Cedula, 0)
		})
	if err != nil {
		return zero, err
	}
	if err := s.repo.Insert(ctx, shard, e); err != nil {
		return zero, fmt.Errorf("insert employee on %s: %w", shard.Name, err)
	}
	return s.tag(shard, *e), nil
}

func (s *Service) resolve(ctx context.Context, ref federation.Ref) (*federation.Shard, Employee, error) {
	shard, err := ref.Resolve(s.reg)
	if err != nil {
		return nil, Employee{}, err
	}
	if shard != nil {
		e, found, err := s.repo.GetByID(ctx, shard, ref.LocalID)
		if err != nil {
			return nil, Employee{}, err
		}
		if !found {
			return nil, Employee{}, federation.ErrNotFound
		}
		return shard, e, nil
	}
	return federation.Locate(ctx, s.reg, s.timeout,
		func(ctx context.Context, sh *federation.Shard) (Employee, bool, error) {
			return s.repo.GetByID(ctx, sh, ref.LocalID)
		})
}

func (s *Service) Get(ctx context.Context, ref federation.Ref) (federation.Tagged[Employee], error) {
	shard, e, err := s.resolve(ctx, ref)
	if err != nil {
		return federation.Tagged[Employee]{}, err
	}
	return s.tag(shard, e), nil
}

func (s *Service) List(ctx context.Context, term string, offset, limit int) ([]federation.Tagged[Employee], int, *federation.PartialFailure) {
	all, partial := federation.Gather(ctx, s.reg, s.timeout,
		func(ctx context.Context, sh *federation.Shard) ([]Employee, error) {
			return s.repo.List(ctx, sh, term)
		}, federation.GatherOptions[Employee]{
			Less: func(a, b federation.Tagged[Employee]) bool {
				if a.Row.LastName != b.Row.LastName {
					return a.Row.LastName < b.Row.LastName
				}
				return a.Row.FirstName < b.Row.FirstName
			},
		})
	total := len(all)
	return federation.Window(all, offset, limit), total, partial
}

func (s *Service) ListRegion(ctx context.Context, regionID int, term string, offset, limit int) ([]federation.Tagged[Employee], int, error) {
	shard, err := s.reg.Route(regionID)
	if err != nil {
		return nil, 0, err
	}
	rows, err := s.repo.List(ctx, shard, term)
	if err != nil {
		return nil, 0, fmt.Errorf("list employees on %s: %w", shard.Name, err)
	}
	tagged := make([]federation.Tagged[Employee], len(rows))
	for i, e := range rows {
		tagged[i] = s.tag(shard, e)
	}
	return federation.Window(tagged, offset, limit), len(rows), nil
}

func (s *Service) Update(ctx context.Context, ref federation.Ref, e *Employee) (federation.Tagged[Employee], error) {
	var zero federation.Tagged[Employee]
	if err := s.validate(e); err != nil {
		return zero, err
	}
	shard, existing, err := s.resolve(ctx, ref)
	if err != nil {
		return zero, err
	}
	if e.Cedula != existing.Cedula {
		err = federation.CheckUnique(ctx, s.reg, s.timeout, "cedula", e.Cedula,
			func(ctx context.Context, sh *federation.Shard) (bool, error) {
				exclude := int64(0)
				if sh.Name == shard.Name {
					exclude = existing.ID
				}
				return s.repo.ExistsByCedula(ctx, sh, e.Cedula, exclude)
			})
		if err != nil {
			return zero, err
		}
	}
	e.ID = existing.ID
	if err := s.repo.Update(ctx, shard, e); err != nil {
		return zero, fmt.Errorf("update employee on %s: %w", shard.Name, err)
	}
	return s.tag(shard, *e), nil
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
		return fmt.Errorf("delete employee on %s: %w", shard.Name, err)
	}
	return nil
}
