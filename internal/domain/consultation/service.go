package consultation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hms/hms/internal/federation"
)

// Service federates consultations. A consultation references a patient
// and a doctor on its own regional database; nothing else in the system
// references consultations, so deletes are ungated.
type Service struct {
	reg     *federation.Registry
	repo    Repository
	timeout time.Duration
}

func NewService(reg *federation.Registry, repo Repository, shardTimeout time.Duration) *Service {
	return &Service{reg: reg, repo: repo, timeout: shardTimeout}
}

func (s *Service) validate(c *Consultation) error {
	if c.PatientID <= 0 || c.DoctorID <= 0 {
		return fmt.Errorf("id_paciente and id_medico are required: %w", federation.ErrInvalidArgument)
	}
	if strings.TrimSpace(c.Reason) == "" {
		return fmt.Errorf("motivo is required: %w", federation.ErrInvalidArgument)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duracion_minutos must be positive: %w", federation.ErrInvalidArgument)
	}
	if c.Date.IsZero() {
		c.Date = time.Now()
	}
	return nil
}

// checkRefs verifies the patient and doctor exist on the target shard.
// They are local ids; the check never leaves the shard.
func (s *Service) checkRefs(ctx context.Context, shard *federation.Shard, c *Consultation) error {
	ok, err := s.repo.PatientExists(ctx, shard, c.PatientID)
	if err != nil {
		return fmt.Errorf("check paciente on %s: %w", shard.Name, err)
	}
	if !ok {
		return fmt.Errorf("paciente %d not found on %s: %w", c.PatientID, shard.Name, federation.ErrNotFound)
	}
	ok, err = s.repo.DoctorExists(ctx, shard, c.DoctorID)
	if err != nil {
		return fmt.Errorf("check medico on %s: %w", shard.Name, err)
	}
	if !ok {
		return fmt.Errorf("medico %d not found on %s: %w", c.DoctorID, shard.Name, federation.ErrNotFound)
	}
	return nil
}

func (s *Service) tag(shard *federation.Shard, c Consultation) federation.Tagged[Consultation] {
	return federation.Tagged[Consultation]{
		CompositeID: federation.CompositeID{Shard: shard.Name, LocalID: c.ID}.String(),
		OriginShard: shard.Name,
		Row:         c,
	}
}

func (s *Service) Create(ctx context.Context, regionID int, c *Consultation) (federation.Tagged[Consultation], error) {
	var zero federation.Tagged[Consultation]
	if err := s.validate(c); err != nil {
		return zero, err
	}
	shard, err := s.reg.Route(regionID)
	if err != nil {
		return zero, err
	}
	if err := s.checkRefs(ctx, shard, c); err != nil {
		return zero, err
	}
	if err := s.repo.Insert(ctx, shard, c); err != nil {
		return zero, fmt.Errorf("insert consultation on %s: %w", shard.Name, err)
	}
	return s.tag(shard, *c), nil
}

func (s *Service) resolve(ctx context.Context, ref federation.Ref) (*federation.Shard, Consultation, error) {
	shard, err := ref.Resolve(s.reg)
	if err != nil {
		return nil, Consultation{}, err
	}
	if shard != nil {
		c, found, err := s.repo.GetByID(ctx, shard, ref.LocalID)
		if err != nil {
			return nil, Consultation{}, err
		}
		if !found {
			return nil, Consultation{}, federation.ErrNotFound
		}
		return shard, c, nil
	}
	return federation.Locate(ctx, s.reg, s.timeout,
		func(ctx context.Context, sh *federation.Shard) (Consultation, bool, error) {
			return s.repo.GetByID(ctx, sh, ref.LocalID)
		})
}

func (s *Service) Get(ctx context.Context, ref federation.Ref) (federation.Tagged[Consultation], error) {
	shard, c, err := s.resolve(ctx, ref)
	if err != nil {
		return federation.Tagged[Consultation]{}, err
	}
	return s.tag(shard, c), nil
}

// List merges consultations from every region, newest first.
func (s *Service) List(ctx context.Context, offset, limit int) ([]federation.Tagged[Consultation], int, *federation.PartialFailure) {
	all, partial := federation.Gather(ctx, s.reg, s.timeout,
		func(ctx context.Context, sh *federation.Shard) ([]Consultation, error) {
			return s.repo.List(ctx, sh, Filter{})
		}, federation.GatherOptions[Consultation]{
			Less: func(a, b federation.Tagged[Consultation]) bool {
				return a.Row.Date.After(b.Row.Date)
			},
		})
	total := len(all)
	return federation.Window(all, offset, limit), total, partial
}

func (s *Service) ListRegion(ctx context.Context, regionID int, offset, limit int) ([]federation.Tagged[Consultation], int, error) {
	shard, err := s.reg.Route(regionID)
	if err != nil {
		return nil, 0, err
	}
	rows, err := s.repo.List(ctx, shard, Filter{})
	if err != nil {
		return nil, 0, fmt.Errorf("list consultations on %s: %w", shard.Name, err)
	}
	tagged := make([]federation.Tagged[Consultation], len(rows))
	for i, c := range rows {
		tagged[i] = s.tag(shard, c)
	}
	return federation.Window(tagged, offset, limit), len(rows), nil
}

// ListForPatient lists one patient's consultations. The patient ref must
// be composite: the local id alone does not name a shard, and a
// patient's consultations all live on the patient's own shard.
func (s *Service) ListForPatient(ctx context.Context, patientRef federation.Ref) ([]federation.Tagged[Consultation], error) {
	if patientRef.Shard == "" {
		return nil, fmt.Errorf("composite patient id required: %w", federation.ErrInvalidArgument)
	}
	shard, err := patientRef.Resolve(s.reg)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx, shard, Filter{PatientID: patientRef.LocalID})
	if err != nil {
		return nil, fmt.Errorf("list consultations on %s: %w", shard.Name, err)
	}
	tagged := make([]federation.Tagged[Consultation], len(rows))
	for i, c := range rows {
		tagged[i] = s.tag(shard, c)
	}
	return tagged, nil
}

func (s *Service) Update(ctx context.Context, ref federation.Ref, c *Consultation) (federation.Tagged[Consultation], error) {
	var zero federation.Tagged[Consultation]
	if err := s.validate(c); err != nil {
		return zero, err
	}
	shard, existing, err := s.resolve(ctx, ref)
	if err != nil {
		return zero, err
	}
	if c.PatientID != existing.PatientID || c.DoctorID != existing.DoctorID {
		if err := s.checkRefs(ctx, shard, c); err != nil {
			return zero, err
		}
	}
	c.ID = existing.ID
	if err := s.repo.Update(ctx, shard, c); err != nil {
		return zero, fmt.Errorf("update consultation on %s: %w", shard.Name, err)
	}
	return s.tag(shard, *c), nil
}

func (s *Service) Delete(ctx context.Context, ref federation.Ref) error {
	shard, existing, err := s.resolve(ctx, ref)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, shard, existing.ID); err != nil {
		return fmt.Errorf("delete consultation on %s: %w", shard.Name, err)
	}
	return nil
}
