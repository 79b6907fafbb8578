package patient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hms/hms/internal/federation"
)

// dependents are the same-shard tables that block a patient delete.
var dependents = []federation.Dependent{
	{Table: "consultas", Column: "id_paciente"},
}

// Service federates patient operations across the regional databases.
// Creates are routed by explicit region id and gated by a cross-shard
// email uniqueness check; reads merge every region; updates and deletes
// resolve their target shard from the caller's ref.
type Service struct {
	reg     *federation.Registry
	repo    Repository
	timeout time.Duration
}

func NewService(reg *federation.Registry, repo Repository, shardTimeout time.Duration) *Service {
	return &Service{reg: reg, repo: repo, timeout: shardTimeout}
}

func (s *Service) validate(p *Patient) error {
	if strings.TrimSpace(p.FirstName) == "" || strings.TrimSpace(p.LastName) == "" {
		return fmt.Errorf("nombre and apellido are required: %w", federation.ErrInvalidArgument)
	}
	if !strings.Contains(p.Email, "@") {
		return fmt.Errorf("invalid correo %q: %w", p.Email, federation.ErrInvalidArgument)
	}
	return nil
}

func (s *Service) tag(shard *federation.Shard, p Patient) federation.Tagged[Patient] {
	return federation.Tagged[Patient]{
		CompositeID: federation.CompositeID{Shard: shard.Name, LocalID: p.ID}.String(),
		OriginShard: shard.Name,
		Row:         p,
	}
}

// Create inserts on the region the caller named. The email uniqueness
// check must complete against every region first; an unreachable region
// aborts the create rather than risking a duplicate.
func (s *Service) Create(ctx context.Context, regionID int, p *Patient) (federation.Tagged[Patient], error) {
	var zero federation.Tagged[Patient]
	if err := s.validate(p); err != nil {
		return zero, err
	}
	shard, err := s.reg.Route(regionID)
	if err != nil {
		return zero, err
	}
	err = federation.CheckUnique(ctx, s.reg, s.timeout, "correo", p.Email,
		func(ctx context.Context, sh *federation.Shard) (bool, error) {
			return s.repo.ExistsByEmail(ctx, sh, p.Email, 0)
		})
	if err != nil {
		return zero, err
	}
	if err := s.repo.Insert(ctx, shard, p); err != nil {
		return zero, fmt.Errorf("insert patient on %s: %w", shard.Name, err)
	}
	return s.tag(shard, *p), nil
}

// resolve finds the owning shard and current row for a ref: directly for
// a composite ref, by probing every region for a bare one.
func (s *Service) resolve(ctx context.Context, ref federation.Ref) (*federation.Shard, Patient, error) {
	shard, err := ref.Resolve(s.reg)
	if err != nil {
		return nil, Patient{}, err
	}
	if shard != nil {
		p, found, err := s.repo.GetByID(ctx, shard, ref.LocalID)
		if err != nil {
			return nil, Patient{}, err
		}
		if !found {
			return nil, Patient{}, federation.ErrNotFound
		}
		return shard, p, nil
	}
	return federation.Locate(ctx, s.reg, s.timeout,
		func(ctx context.Context, sh *federation.Shard) (Patient, bool, error) {
			return s.repo.GetByID(ctx, sh, ref.LocalID)
		})
}

func (s *Service) Get(ctx context.Context, ref federation.Ref) (federation.Tagged[Patient], error) {
	shard, p, err := s.resolve(ctx, ref)
	if err != nil {
		return federation.Tagged[Patient]{}, err
	}
	return s.tag(shard, p), nil
}

// List merges every region's patients. The window is applied to the
// merged set; total counts rows across all reachable regions.
func (s *Service) List(ctx context.Context, term string, offset, limit int) ([]federation.Tagged[Patient], int, *federation.PartialFailure) {
	all, partial := federation.Gather(ctx, s.reg, s.timeout,
		func(ctx context.Context, sh *federation.Shard) ([]Patient, error) {
			return s.repo.List(ctx, sh, term)
		}, federation.GatherOptions[Patient]{
			Less: func(a, b federation.Tagged[Patient]) bool {
				if a.Row.LastName != b.Row.LastName {
					return a.Row.LastName < b.Row.LastName
				}
				return a.Row.FirstName < b.Row.FirstName
			},
		})
	total := len(all)
	return federation.Window(all, offset, limit), total, partial
}

// ListRegion is the per-region view: the listing touches exactly one
// regional database.
func (s *Service) ListRegion(ctx context.Context, regionID int, term string, offset, limit int) ([]federation.Tagged[Patient], int, error) {
	shard, err := s.reg.Route(regionID)
	if err != nil {
		return nil, 0, err
	}
	rows, err := s.repo.List(ctx, shard, term)
	if err != nil {
		return nil, 0, fmt.Errorf("list patients on %s: %w", shard.Name, err)
	}
	tagged := make([]federation.Tagged[Patient], len(rows))
	for i, p := range rows {
		tagged[i] = s.tag(shard, p)
	}
	return federation.Window(tagged, offset, limit), len(rows), nil
}

// Update rewrites the row on its owning shard. When the email changes,
// cross-shard uniqueness is re-checked excluding the row itself on its
// own shard.
func (s *Service) Update(ctx context.Context, ref federation.Ref, p *Patient) (federation.Tagged[Patient], error) {
	var zero federation.Tagged[Patient]
	if err := s.validate(p); err != nil {
		return zero, err
	}
	shard, existing, err := s.resolve(ctx, ref)
	if err != nil {
		return zero, err
	}
	if p.Email != existing.Email {
		err = federation.CheckUnique(ctx, s.reg, s.timeout, "correo", p.Email,
			func(ctx context.Context, sh *federation.Shard) (bool, error) {
				exclude := int64(0)
				if sh.Name == shard.Name {
					exclude = existing.ID
				}
				return s.repo.ExistsByEmail(ctx, sh, p.Email, exclude)
			})
		if err != nil {
			return zero, err
		}
	}
	p.ID = existing.ID
	if err := s.repo.Update(ctx, shard, p); err != nil {
		return zero, fmt.Errorf("update patient on %s: %w", shard.Name, err)
	}
	return s.tag(shard, *p), nil
}

// Delete removes the row from its owning shard, but only after the
// same-shard referential check passes. The check always runs before the
// delete statement.
func (s *Service) Delete(ctx context.Context, ref federation.Ref) error {
	shard, existing, err := s.resolve(ctx, ref)
	if err != nil {
		return err
	}
	if err := federation.CanDelete(ctx, shard, existing.ID, dependents, s.repo.CountDependents); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, shard, existing.ID); err != nil {
		return fmt.Errorf("delete patient on %s: %w", shard.Name, err)
	}
	return nil
}
