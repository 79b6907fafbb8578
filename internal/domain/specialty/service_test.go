package specialty

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hms/hms/internal/federation"
)

type mockRepo struct {
	rows       map[string]map[int64]Specialty
	nextID     map[string]int64
	doctorRefs map[string]map[int64]int64
	deletes    int
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		rows:       map[string]map[int64]Specialty{"central": {}, "guayaquil": {}, "cuenca": {}},
		nextID:     map[string]int64{},
		doctorRefs: map[string]map[int64]int64{"central": {}, "guayaquil": {}, "cuenca": {}},
	}
}

func (m *mockRepo) Insert(_ context.Context, shard *federation.Shard, s *Specialty) error {
	m.nextID[shard.Name]++
	s.ID = m.nextID[shard.Name]
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	m.rows[shard.Name][s.ID] = *s
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, shard *federation.Shard, id int64) (Specialty, bool, error) {
	s, ok := m.rows[shard.Name][id]
	return s, ok, nil
}

func (m *mockRepo) Update(_ context.Context, shard *federation.Shard, s *Specialty) error {
	m.rows[shard.Name][s.ID] = *s
	return nil
}

func (m *mockRepo) Delete(_ context.Context, shard *federation.Shard, id int64) error {
	m.deletes++
	delete(m.rows[shard.Name], id)
	return nil
}

func (m *mockRepo) List(_ context.Context, shard *federation.Shard, _ string) ([]Specialty, error) {
	var out []Specialty
	for _, s := range m.rows[shard.Name] {
		out = append(out, s)
	}
	return out, nil
}

func (m *mockRepo) CountDependents(_ context.Context, shard *federation.Shard, dep federation.Dependent, id int64) (int64, error) {
	if dep.Table != "medicos" {
		return 0, nil
	}
	return m.doctorRefs[shard.Name][id], nil
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

func TestCreate_NoUniquenessGate(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(t, repo)

	// The same name on two regions is allowed; specialties are regional
	// catalog rows without a global unique field.
	for _, region := range []int{1, 2} {
		if _, err := svc.Create(context.Background(), region, &Specialty{Name: "Cardiología"}); err != nil {
			t.Fatalf("region %d: unexpected error: %v", region, err)
		}
	}
	if len(repo.rows["central"]) != 1 || len(repo.rows["guayaquil"]) != 1 {
		t.Error("expected one row on each of central, guayaquil")
	}
}

func TestDelete_BlockedByDoctors(t *testing.T) {
	repo := newMockRepo()
	repo.rows["cuenca"][4] = Specialty{ID: 4, Name: "Pediatría"}
	repo.doctorRefs["cuenca"][4] = 2
	svc := newTestService(t, repo)

	err := svc.Delete(context.Background(), federation.Ref{LocalID: 4, Shard: "cuenca"})
	var blocked *federation.ReferentialBlockError
	if !errors.As(err, &blocked) {
		t.Fatalf("expected ReferentialBlockError, got %v", err)
	}
	if blocked.Table != "medicos" || blocked.Count != 2 {
		t.Errorf("expected medicos/2, got %s/%d", blocked.Table, blocked.Count)
	}
	if repo.deletes != 0 {
		t.Error("delete must not run while doctors still reference the specialty")
	}
}

func TestGet_BareIDLocates(t *testing.T) {
	repo := newMockRepo()
	repo.rows["guayaquil"][9] = Specialty{ID: 9, Name: "Neurología"}
	svc := newTestService(t, repo)

	tagged, err := svc.Get(context.Background(), federation.Ref{LocalID: 9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tagged.CompositeID != "guayaquil-9" {
		t.Errorf("expected guayaquil-9, got %s", tagged.CompositeID)
	}
}
