package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hms/hms/internal/federation"
)

// Roles accepted for new accounts. Matches the role names the auth
// middleware checks at the route level.
var validRoles = map[string]bool{
	"admin":      true,
	"medico":     true,
	"enfermeria": true,
	"recepcion":  true,
	"rrhh":       true,
}

// Service federates user accounts. The nombre_usuario is globally
// unique; the optional doctor/employee links must resolve on the
// account's own regional database.
type Service struct {
	reg     *federation.Registry
	repo    Repository
	timeout time.Duration
}

func NewService(reg *federation.Registry, repo Repository, shardTimeout time.Duration) *Service {
	return &Service{reg: reg, repo: repo, timeout: shardTimeout}
}

func (s *Service) validate(u *User) error {
	if strings.TrimSpace(u.Username) == "" {
		return fmt.Errorf("nombre_usuario is required: %w", federation.ErrInvalidArgument)
	}
	if !validRoles[u.Role] {
		return fmt.Errorf("unknown rol %q: %w", u.Role, federation.ErrInvalidArgument)
	}
	if u.DoctorID != nil && u.EmployeeID != nil {
		return fmt.Errorf("a user links a medico or an empleado, not both: %w", federation.ErrInvalidArgument)
	}
	return nil
}

// checkLinks verifies the optional doctor/employee references on the
// target shard only.
func (s *Service) checkLinks(ctx context.Context, shard *federation.Shard, u *User) error {
	if u.DoctorID != nil {
		ok, err := s.repo.DoctorExists(ctx, shard, *u.DoctorID)
		if err != nil {
			return fmt.Errorf("check medico on %s: %w", shard.Name, err)
		}
		if !ok {
			return fmt.Errorf("medico %d not found on %s: %w", *u.DoctorID, shard.Name, federation.ErrNotFound)
		}
	}
	if u.EmployeeID != nil {
		ok, err := s.repo.EmployeeExists(ctx, shard, *u.EmployeeID)
		if err != nil {
			return fmt.Errorf("check empleado on %s: %w", shard.Name, err)
		}
		if !ok {
			return fmt.Errorf("empleado %d not found on %s: %w", *u.EmployeeID, shard.Name, federation.ErrNotFound)
		}
	}
	return nil
}

func (s *Service) tag(shard *federation.Shard, u User) federation.Tagged[User] {
	return federation.Tagged[User]{
		CompositeID: federation.CompositeID{Shard: shard.Name, LocalID: u.ID}.String(),
		OriginShard: shard.Name,
		Row:         u,
	}
}

func (s *Service) Create(ctx context.Context, regionID int, u *User) (federation.Tagged[User], error) {
	var zero federation.Tagged[User]
	if err := s.validate(u); err != nil {
		return zero, err
	}
	shard, err := s.reg.Route(regionID)
	if err != nil {
		return zero, err
	}
	if err := s.checkLinks(ctx, shard, u); err != nil {
		return zero, err
	}
	err = federation.CheckUnique(ctx, s.reg, s.timeout, "nombre_usuario", u.Username,
		func(ctx context.Context, sh *federation.Shard) (bool, error) {
			return s.repo.ExistsByUsername(ctx, sh, u.Username, 0)
		})
	if err != nil {
		return zero, err
	}
	if err := s.repo.Insert(ctx, shard, u); err != nil {
		return zero, fmt.Errorf("insert user on %s: %w", shard.Name, err)
	}
	return s.tag(shard, *u), nil
}

func (s *Service) resolve(ctx context.Context, ref federation.Ref) (*federation.Shard, User, error) {
	shard, err := ref.Resolve(s.reg)
	if err != nil {
		return nil, User{}, err
	}
	if shard != nil {
		u, found, err := s.repo.GetByID(ctx, shard, ref.LocalID)
		if err != nil {
			return nil, User{}, err
		}
		if !found {
			return nil, User{}, federation.ErrNotFound
		}
		return shard, u, nil
	}
	return federation.Locate(ctx, s.reg, s.timeout,
		func(ctx context.Context, sh *federation.Shard) (User, bool, error) {
			return s.repo.GetByID(ctx, sh, ref.LocalID)
		})
}

func (s *Service) Get(ctx context.Context, ref federation.Ref) (federation.Tagged[User], error) {
	shard, u, err := s.resolve(ctx, ref)
	if err != nil {
		return federation.Tagged[User]{}, err
	}
	return s.tag(shard, u), nil
}

func (s *Service) List(ctx context.Context, term string, offset, limit int) ([]federation.Tagged[User], int, *federation.PartialFailure) {
	all, partial := federation.Gather(ctx, s.reg, s.timeout,
		func(ctx context.Context, sh *federation.Shard) ([]User, error) {
			return s.repo.List(ctx, sh, term)
		}, federation.GatherOptions[User]{
			Less: func(a, b federation.Tagged[User]) bool {
				return a.Row.Username < b.Row.Username
			},
		})
	total := len(all)
	return federation.Window(all, offset, limit), total, partial
}

func (s *Service) ListRegion(ctx context.Context, regionID int, term string, offset, limit int) ([]federation.Tagged[User], int, error) {
	shard, err := s.reg.Route(regionID)
	if err != nil {
		return nil, 0, err
	}
	rows, err := s.repo.List(ctx, shard, term)
	if err != nil {
		return nil, 0, fmt.Errorf("list users on %s: %w", shard.Name, err)
	}
	tagged := make([]federation.Tagged[User], len(rows))
	for i, u := range rows {
		tagged[i] = s.tag(shard, u)
	}
	return federation.Window(tagged, offset, limit), len(rows), nil
}

func (s *Service) Update(ctx context.Context, ref federation.Ref, u *User) (federation.Tagged[User], error) {
	var zero federation.Tagged[User]
	if err := s.validate(u); err != nil {
		return zero, err
	}
	shard, existing, err := s.resolve(ctx, ref)
	if err != nil {
		return zero, err
	}
	if err := s.checkLinks(ctx, shard, u); err != nil {
		return zero, err
	}
	if u.Username != existing.Username {
		err = federation.CheckUnique(ctx, s.reg, s.timeout, "nombre_usuario", u.Username,
			func(ctx context.Context, sh *federation.Shard) (bool, error) {
				exclude := int64(0)
				if sh.Name == shard.Name {
					exclude = existing.ID
				}
				return s.repo.ExistsByUsername(ctx, sh, u.Username, exclude)
			})
		if err != nil {
			return zero, err
		}
	}
	u.ID = existing.ID
	if err := s.repo.Update(ctx, shard, u); err != nil {
		return zero, fmt.Errorf("update user on %s: %w", shard.Name, err)
	}
	return s.tag(shard, *u), nil
}

// Delete has no dependent tables; the row is removed from its owning
// shard directly.
func (s *Service) Delete(ctx context.Context, ref federation.Ref) error {
	shard, existing, err := s.resolve(ctx, ref)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, shard, existing.ID); err != nil {
		return fmt.Errorf("delete user on %s: %w", shard.Name, err)
	}
	return nil
}
