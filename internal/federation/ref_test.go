package federation

import "testing"

func TestParseRef_BareLocalID(t *testing.T) {
	ref, err := ParseRef("42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.LocalID != 42 || ref.Shard != "" {
		t.Errorf("expected bare ref {42, \"\"}, got %+v", ref)
	}
}

func TestParseRef_Composite(t *testing.T) {
	ref, err := ParseRef("guayaquil-12")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.LocalID != 12 || ref.Shard != "guayaquil" {
		t.Errorf("expected {12, guayaquil}, got %+v", ref)
	}
}

func TestParseRef_Invalid(t *testing.T) {
	for _, s := range []string{"", "0", "-3", "abc", "central-"} {
		if _, err := ParseRef(s); err == nil {
			t.Errorf("%q: expected error", s)
		}
	}
}

func TestRef_Resolve(t *testing.T) {
	reg := hospitalRegistry(t)

	shard, err := Ref{LocalID: 7, Shard: "cuenca"}.Resolve(reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shard.Name != "cuenca" {
		t.Errorf("expected cuenca, got %s", shard.Name)
	}

	shard, err = Ref{LocalID: 7}.Resolve(reg)
	if err != nil || shard != nil {
		t.Errorf("bare ref should resolve to nil shard, got %v, %v", shard, err)
	}

	if _, err := (Ref{LocalID: 7, Shard: "quito"}).Resolve(reg); err == nil {
		t.Error("expected error for unknown shard name")
	}
}
