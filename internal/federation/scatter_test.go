package federation

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"
)

type patientRow struct {
	ID            int64  `json:"id"`
	Name          string `json:"nombre"`
	Consultations int    `json:"consultas"`
}

func (p patientRow) LocalID() int64 { return p.ID }

func seededQuery(seed map[string][]patientRow) QueryFunc[patientRow] {
	return func(_ context.Context, shard *Shard) ([]patientRow, error) {
		return seed[shard.Name], nil
	}
}

var patientSeed = map[string][]patientRow{
	"central":   {{ID: 1, Name: "Ana", Consultations: 3}, {ID: 2, Name: "Luis", Consultations: 9}},
	"guayaquil": {{ID: 1, Name: "Marta", Consultations: 5}},
	"cuenca":    {{ID: 4, Name: "Pedro", Consultations: 7}},
}

func TestGather_MergedLengthEqualsSumOfShards(t *testing.T) {
	reg := hospitalRegistry(t)
	rows, partial := Gather(context.Background(), reg, time.Second, seededQuery(patientSeed), GatherOptions[patientRow]{})
	if partial != nil {
		t.Fatalf("unexpected partial failure: %v", partial)
	}
	if len(rows) != 4 {
		t.Errorf("expected 4 merged rows, got %d", len(rows))
	}
}

func TestGather_RegistryOrderConcatenation(t *testing.T) {
	reg := hospitalRegistry(t)
	rows, _ := Gather(context.Background(), reg, time.Second, seededQuery(patientSeed), GatherOptions[patientRow]{})
	want := []string{"central-1", "central-2", "guayaquil-1", "cuenca-4"}
	for i, w := range want {
		if rows[i].CompositeID != w {
			t.Errorf("position %d: expected %s, got %s", i, w, rows[i].CompositeID)
		}
	}
}

func TestGather_TagsOriginShard(t *testing.T) {
	reg := hospitalRegistry(t)
	rows, _ := Gather(context.Background(), reg, time.Second, seededQuery(patientSeed), GatherOptions[patientRow]{})
	for _, r := range rows {
		cid, err := ParseCompositeID(r.CompositeID)
		if err != nil {
			t.Fatalf("bad composite id %q: %v", r.CompositeID, err)
		}
		if cid.Shard != r.OriginShard {
			t.Errorf("composite id shard %s disagrees with origin %s", cid.Shard, r.OriginShard)
		}
		if cid.LocalID != r.Row.ID {
			t.Errorf("composite id local id %d disagrees with row id %d", cid.LocalID, r.Row.ID)
		}
	}
}

// Global top-N must come from the merged set. Here the two most-consulted
// patients live in different shards, so any per-shard limit of 1 would
// have produced the wrong ranking.
func TestGather_SortAndLimitAfterMerge(t *testing.T) {
	reg := hospitalRegistry(t)
	rows, partial := Gather(context.Background(), reg, time.Second, seededQuery(patientSeed), GatherOptions[patientRow]{
		Less:  func(a, b Tagged[patientRow]) bool { return a.Row.Consultations > b.Row.Consultations },
		Limit: 2,
	})
	if partial != nil {
		t.Fatalf("unexpected partial failure: %v", partial)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].CompositeID != "central-2" || rows[1].CompositeID != "cuenca-4" {
		t.Errorf("expected global top-2 [central-2 cuenca-4], got [%s %s]",
			rows[0].CompositeID, rows[1].CompositeID)
	}
}

func TestGather_OffsetWindow(t *testing.T) {
	reg := hospitalRegistry(t)
	rows, _ := Gather(context.Background(), reg, time.Second, seededQuery(patientSeed), GatherOptions[patientRow]{
		Offset: 1,
		Limit:  2,
	})
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].CompositeID != "central-2" {
		t.Errorf("expected window to start at central-2, got %s", rows[0].CompositeID)
	}

	rows, _ = Gather(context.Background(), reg, time.Second, seededQuery(patientSeed), GatherOptions[patientRow]{
		Offset: 10,
	})
	if len(rows) != 0 {
		t.Errorf("expected empty window past the end, got %d rows", len(rows))
	}
}

func TestGather_PartialFailureKeepsHealthyShards(t *testing.T) {
	reg := hospitalRegistry(t)
	query := func(ctx context.Context, shard *Shard) ([]patientRow, error) {
		if shard.Name == "guayaquil" {
			return nil, fmt.Errorf("connection refused")
		}
		return patientSeed[shard.Name], nil
	}
	rows, partial := Gather(context.Background(), reg, time.Second, query, GatherOptions[patientRow]{})
	if partial == nil {
		t.Fatal("expected partial failure")
	}
	if got := partial.FailedShards(); len(got) != 1 || got[0] != "guayaquil" {
		t.Errorf("expected failed shards [guayaquil], got %v", got)
	}
	if len(rows) != 3 {
		t.Errorf("expected 3 rows from the healthy shards, got %d", len(rows))
	}
}

func TestGather_SlowShardHitsOwnTimeout(t *testing.T) {
	reg := hospitalRegistry(t)
	query := func(ctx context.Context, shard *Shard) ([]patientRow, error) {
		if shard.Name == "cuenca" {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return patientSeed[shard.Name], nil
	}
	rows, partial := Gather(context.Background(), reg, 50*time.Millisecond, query, GatherOptions[patientRow]{})
	if partial == nil {
		t.Fatal("expected partial failure from the timed-out shard")
	}
	if got := partial.FailedShards(); len(got) != 1 || got[0] != "cuenca" {
		t.Errorf("expected failed shards [cuenca], got %v", got)
	}
	if len(rows) != 3 {
		t.Errorf("expected 3 rows, got %d", len(rows))
	}
}

func TestTagged_MarshalJSONFlattensFields(t *testing.T) {
	tagged := Tagged[patientRow]{
		CompositeID: "central-2",
		OriginShard: "central",
		Row:         patientRow{ID: 2, Name: "Luis", Consultations: 9},
	}
	raw, err := json.Marshal(tagged)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got map[string]interface{}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["composite_id"] != "central-2" {
		t.Errorf("expected composite_id central-2, got %v", got["composite_id"])
	}
	if got["origin_shard"] != "central" {
		t.Errorf("expected origin_shard central, got %v", got["origin_shard"])
	}
	if got["nombre"] != "Luis" {
		t.Errorf("expected row fields inlined, got %v", got)
	}
}
