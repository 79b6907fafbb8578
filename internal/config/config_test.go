package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Setenv("DATABASE_URL_CENTRAL", "postgres://test@localhost:5432/central")
	os.Setenv("DATABASE_URL_GUAYAQUIL", "postgres://test@localhost:5433/guayaquil")
	os.Setenv("DATABASE_URL_CUENCA", "postgres://test@localhost:5434/cuenca")
	defer func() {
		os.Unsetenv("DATABASE_URL_CENTRAL")
		os.Unsetenv("DATABASE_URL_GUAYAQUIL")
		os.Unsetenv("DATABASE_URL_CUENCA")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.DBMaxConns != 10 {
		t.Errorf("expected default max conns 10, got %d", cfg.DBMaxConns)
	}
	if cfg.ShardTimeout() != 3*time.Second {
		t.Errorf("expected default shard timeout 3s, got %s", cfg.ShardTimeout())
	}
}

func TestValidate_RequiresEveryShardURL(t *testing.T) {
	cfg := &Config{
		Env:                "development",
		ShardTimeoutMS:     3000,
		DatabaseURLCentral: "postgres://test@localhost:5432/central",
		DatabaseURLCuenca:  "postgres://test@localhost:5434/cuenca",
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when DATABASE_URL_GUAYAQUIL is missing")
	}
}

func TestValidate_RequiresJWTSecretOutsideDev(t *testing.T) {
	cfg := &Config{
		Env:                  "production",
		ShardTimeoutMS:       3000,
		DatabaseURLCentral:   "a",
		DatabaseURLGuayaquil: "b",
		DatabaseURLCuenca:    "c",
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when JWT_SECRET is missing in production")
	}
	cfg.JWTSecret = "secret"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestShards_OrderAndRegionIDs(t *testing.T) {
	cfg := &Config{
		DatabaseURLCentral:   "a",
		DatabaseURLGuayaquil: "b",
		DatabaseURLCuenca:    "c",
	}
	shards := cfg.Shards()
	if len(shards) != 3 {
		t.Fatalf("expected 3 shards, got %d", len(shards))
	}
	wantNames := []string{"central", "guayaquil", "cuenca"}
	for i, s := range shards {
		if s.Name != wantNames[i] {
			t.Errorf("shard %d: expected name %s, got %s", i, wantNames[i], s.Name)
		}
		if s.RegionID != i+1 {
			t.Errorf("shard %s: expected region id %d, got %d", s.Name, i+1, s.RegionID)
		}
	}
}

func TestConfig_IsDev(t *testing.T) {
	c := &Config{Env: "development"}
	if !c.IsDev() {
		t.Error("expected IsDev() to return true for development")
	}

	c.Env = "production"
	if c.IsDev() {
		t.Error("expected IsDev() to return false for production")
	}
}
