package employee

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hms/hms/internal/federation"
)

type mockRepo struct {
	rows     map[string]map[int64]Employee
	userRefs map[string]map[int64]int64
	nextID   map[string]int64
	fail     map[string]error
	inserts  int
	deletes  int
}

func newMockRepo() *mockRepo {
	m := &mockRepo{
		rows:     map[string]map[int64]Employee{},
		userRefs: map[string]map[int64]int64{},
		nextID:   map[string]int64{},
		fail:     map[string]error{},
	}
	for _, sh := range []string{"central", "guayaquil", "cuenca"} {
		m.rows[sh] = map[int64]Employee{}
		m.userRefs[sh] = map[int64]int64{}
	}
	return m
}

func (m *mockRepo) Insert(_ context.Context, shard *federation.Shard, e *Employee) error {
	if err := m.fail[shard.Name]; err != nil {
		return err
	}
	m.inserts++
	m.nextID[shard.Name]++
	e.ID = m.nextID[shard.Name]
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	m.rows[shard.Name][e.ID] = *e
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, shard *federation.Shard, id int64) (Employee, bool, error) {
	if err := m.fail[shard.Name]; err != nil {
		return Employee{}, false, err
	}
	e, ok := m.rows[shard.Name][id]
	return e, ok, nil
}

func (m *mockRepo) Update(_ context.Context, shard *federation.Shard, e *Employee) error {
	m.rows[shard.Name][e.ID] = *e
	return nil
}

func (m *mockRepo) Delete(_ context.Context, shard *federation.Shard, id int64) error {
	m.deletes++
	delete(m.rows[shard.Name], id)
	return nil
}

func (m *mockRepo) List(_ context.Context, shard *federation.Shard, _ string) ([]Employee, error) {
	if err := m.fail[shard.Name]; err != nil {
		return nil, err
	}
	var out []Employee
	for _, e := range m.rows[shard.Name] {
		out = append(out, e)
	}
	return out, nil
}

func (m *mockRepo) ExistsByCedula(_ context.Context, shard *federation.Shard, cedula string, excludeID int64) (bool, error) {
	if err := m.fail[shard.Name]; err != nil {
		return false, err
	}
	for _, e := range m.rows[shard.Name] {
		if e.Cedula == cedula && e.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepo) CountDependents(_ context.Context, shard *federation.Shard, dep federation.Dependent, id int64) (int64, error) {
	return m.userRefs[shard.Name][id], nil
}

func newTestService(t *testing.T, repo *mockRepo) *Service {
	t.Helper()
	reg, err := federation.NewRegistry([]*federation.Shard{
		{Name: "central", RegionID: 1},
		{Name: "guayaquil", RegionID: 2},
		{Name: "cuenca", RegionID: 3},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return NewService(reg, repo, time.Second)
}

func TestCreate_CedulaUniqueAcrossRegions(t *testing.T) {
	repo := newMockRepo()
	repo.rows["cuenca"][2] = Employee{ID: 2, Cedula: "0102030405"}
	svc := newTestService(t, repo)

	_, err := svc.Create(context.Background(), 1, &Employee{
		FirstName: "Rosa", LastName: "León", Cedula: "0102030405", Position: "recepcionista",
	})
	var conflict *federation.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.Shard != "cuenca" || conflict.Field != "cedula" {
		t.Errorf("expected cedula conflict from cuenca, got %s/%s", conflict.Field, conflict.Shard)
	}
	if repo.inserts != 0 {
		t.Error("insert must not run after a cedula conflict")
	}
}

func TestCreate_OutageIsConservative(t *testing.T) {
	repo := newMockRepo()
	repo.fail["guayaquil"] = errors.New("connection refused")
	svc := newTestService(t, repo)

	_, err := svc.Create(context.Background(), 1, &Employee{
		FirstName: "Rosa", LastName: "León", Cedula: "0102030405", Position: "recepcionista",
	})
	var incomplete *federation.IncompleteError
	if !errors.As(err, &incomplete) {
		t.Fatalf("expected IncompleteError, got %v", err)
	}
	if repo.inserts != 0 {
		t.Error("insert must not run on an incomplete uniqueness check")
	}
}

func TestDelete_BlockedByUsuarios(t *testing.T) {
	repo := newMockRepo()
	repo.rows["guayaquil"][3] = Employee{ID: 3, Cedula: "0911111111"}
	repo.userRefs["guayaquil"][3] = 1
	svc := newTestService(t, repo)

	err := svc.Delete(context.Background(), federation.Ref{LocalID: 3, Shard: "guayaquil"})
	var blocked *federation.ReferentialBlockError
	if !errors.As(err, &blocked) {
		t.Fatalf("expected ReferentialBlockError, got %v", err)
	}
	if blocked.Table != "usuarios" {
		t.Errorf("expected usuarios block, got %s", blocked.Table)
	}
	if repo.deletes != 0 {
		t.Error("delete must not run while a usuario references the employee")
	}
}
