package federation

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

var doctorDependents = []Dependent{
	{Table: "consultas", Column: "id_medico"},
	{Table: "usuarios", Column: "id_medico"},
}

func TestCanDelete_NoDependents(t *testing.T) {
	shard := &Shard{Name: "central", RegionID: 1}
	count := func(_ context.Context, _ *Shard, _ Dependent, _ int64) (int64, error) {
		return 0, nil
	}
	if err := CanDelete(context.Background(), shard, 3, doctorDependents, count); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCanDelete_BlockedReportsFirstDependent(t *testing.T) {
	shard := &Shard{Name: "central", RegionID: 1}
	count := func(_ context.Context, _ *Shard, dep Dependent, localID int64) (int64, error) {
		if dep.Table == "consultas" && localID == 3 {
			return 4, nil
		}
		return 0, nil
	}
	err := CanDelete(context.Background(), shard, 3, doctorDependents, count)
	var blocked *ReferentialBlockError
	if !errors.As(err, &blocked) {
		t.Fatalf("expected ReferentialBlockError, got %v", err)
	}
	if blocked.Table != "consultas" || blocked.Count != 4 {
		t.Errorf("expected consultas/4, got %s/%d", blocked.Table, blocked.Count)
	}
}

func TestCanDelete_CountsOnlyTargetShard(t *testing.T) {
	shard := &Shard{Name: "guayaquil", RegionID: 2}
	count := func(_ context.Context, s *Shard, _ Dependent, _ int64) (int64, error) {
		if s.Name != "guayaquil" {
			t.Errorf("dependent check crossed shards: queried %s", s.Name)
		}
		return 0, nil
	}
	if err := CanDelete(context.Background(), shard, 9, doctorDependents, count); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCanDelete_CountErrorPropagates(t *testing.T) {
	shard := &Shard{Name: "central", RegionID: 1}
	count := func(_ context.Context, _ *Shard, _ Dependent, _ int64) (int64, error) {
		return 0, fmt.Errorf("connection refused")
	}
	err := CanDelete(context.Background(), shard, 3, doctorDependents, count)
	if err == nil {
		t.Fatal("expected error")
	}
	var blocked *ReferentialBlockError
	if errors.As(err, &blocked) {
		t.Fatal("a shard error must not masquerade as a referential block")
	}
}
