package specialty

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hms/hms/internal/federation"
)

// Specialties have no cross-shard unique field; creates route straight
// to the named region.
var dependents = []federation.Dependent{
	{Table: "medicos", Column: "id_especialidad"},
}

type Service struct {
	reg     *federation.Registry
	repo    Repository
	timeout time.Duration
}

func NewService(reg *federation.Registry, repo Repository, shardTimeout time.Duration) *Service {
	return &Service{reg: reg, repo: repo, timeout: shardTimeout}
}

func (s *Service) tag(shard *federation.Shard, sp Specialty) federation.Tagged[Specialty] {
	return federation.Tagged[Specialty]{
		CompositeID: federation.CompositeID{Shard: shard.Name, LocalID: sp.ID}.String(),
		OriginShard: shard.Name,
		Row:         sp,
	}
}

func (s *Service) Create(ctx context.Context, regionID int, sp *Specialty) (federation.Tagged[Specialty], error) {
	var zero federation.Tagged[Specialty]
	if strings.TrimSpace(sp.Name) == "" {
		return zero, fmt.Errorf("nombre is required: %w", federation.ErrInvalidArgument)
	}
	shard, err := s.reg.Route(regionID)
	if err != nil {
		return zero, err
	}
	if err := s.repo.Insert(ctx, shard, sp); err != nil {
		return zero, fmt.Errorf("insert specialty on %s: %w", shard.Name, err)
	}
	return s.tag(shard, *sp), nil
}

func (s *Service) resolve(ctx context.Context, ref federation.Ref) (*federation.Shard, Specialty, error) {
	shard, err := ref.Resolve(s.reg)
	if err != nil {
		return nil, Specialty{}, err
	}
	if shard != nil {
		sp, found, err := s.repo.GetByID(ctx, shard, ref.LocalID)
		if err != nil {
			return nil, Specialty{}, err
		}
		if !found {
			return nil, Specialty{}, federation.ErrNotFound
		}
		return shard, sp, nil
	}
	return federation.Locate(ctx, s.reg, s.timeout,
		func(ctx context.Context, sh *federation.Shard) (Specialty, bool, error) {
			return s.repo.GetByID(ctx, sh, ref.LocalID)
		})
}

func (s *Service) Get(ctx context.Context, ref federation.Ref) (federation.Tagged[Specialty], error) {
	shard, sp, err := s.resolve(ctx, ref)
	if err != nil {
		return federation.Tagged[Specialty]{}, err
	}
	return s.tag(shard, sp), nil
}

func (s *Service) List(ctx context.Context, term string, offset, limit int) ([]federation.Tagged[Specialty], int, *federation.PartialFailure) {
	all, partial := federation.Gather(ctx, s.reg, s.timeout,
		func(ctx context.Context, sh *federation.Shard) ([]Specialty, error) {
			return s.repo.List(ctx, sh, term)
		}, federation.GatherOptions[Specialty]{
			Less: func(a, b federation.Tagged[Specialty]) bool {
				return a.Row.Name < b.Row.Name
			},
		})
	total := len(all)
	return federation.Window(all, offset, limit), total, partial
}

func (s *Service) ListRegion(ctx context.Context, regionID int, term string, offset, limit int) ([]federation.Tagged[Specialty], int, error) {
	shard, err := s.reg.Route(regionID)
	if err != nil {
		return nil, 0, err
	}
	rows, err := s.repo.List(ctx, shard, term)
	if err != nil {
		return nil, 0, fmt.Errorf("list specialties on %s: %w", shard.Name, err)
	}
	tagged := make([]federation.Tagged[Specialty], len(rows))
	for i, sp := range rows {
		tagged[i] = s.tag(shard, sp)
	}
	return federation.Window(tagged, offset, limit), len(rows), nil
}

func (s *Service) Update(ctx context.Context, ref federation.Ref, sp *Specialty) (federation.Tagged[Specialty], error) {
	var zero federation.Tagged[Specialty]
	if strings.TrimSpace(sp.Name) == "" {
		return zero, fmt.Errorf("nombre is required: %w", federation.ErrInvalidArgument)
	}
	shard, existing, err := s.resolve(ctx, ref)
	if err != nil {
		return zero, err
	}
	sp.ID = existing.ID
	if err := s.repo.Update(ctx, shard, sp); err != nil {
		return zero, fmt.Errorf("update specialty on %s: %w", shard.Name, err)
	}
	return s.tag(shard, *sp), nil
}

// Delete refuses while any medico on the same shard still references the
// specialty.
func (s *Service) Delete(ctx context.Context, ref federation.Ref) error {
	shard, existing, err := s.resolve(ctx, ref)
	if err != nil {
		return err
	}
	if err := federation.CanDelete(ctx, shard, existing.ID, dependents, s.repo.CountDependents); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, shard, existing.ID); err != nil {
		return fmt.Errorf("delete specialty on %s: %w", shard.Name, err)
	}
	return nil
}
