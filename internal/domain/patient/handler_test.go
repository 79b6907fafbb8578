package patient

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/apierr"
)

func newTestServer(t *testing.T, repo *mockRepo) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		var he *echo.HTTPError
		if !errors.As(err, &he) {
			he = apierr.From(err)
		}
		_ = c.JSON(he.Code, map[string]any{"error": he.Message})
	}
	h := NewHandler(newTestService(t, repo))
	api := e.Group("/api")
	// Routes without the auth middleware; role checks are covered in
	// the auth package tests.
	api.GET("/pacientes", h.List)
	api.GET("/pacientes/:id", h.Get)
	api.POST("/pacientes", h.Create)
	api.DELETE("/pacientes/:id", h.Delete)
	return e
}

func TestHandlerCreate_ReturnsCompositeID(t *testing.T) {
	e := newTestServer(t, newMockRepo())

	body := `{"region_id":3,"nombre":"Pedro","apellido":"Arias","correo":"p@x.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/pacientes", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got["composite_id"] != "cuenca-1" {
		t.Errorf("expected composite_id cuenca-1, got %v", got["composite_id"])
	}
	if got["origin_shard"] != "cuenca" {
		t.Errorf("expected origin_shard cuenca, got %v", got["origin_shard"])
	}
}

func TestHandlerGet_UnknownPatientIs404(t *testing.T) {
	e := newTestServer(t, newMockRepo())

	req := httptest.NewRequest(http.MethodGet, "/api/pacientes/42", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandlerList_ReportsFailedShards(t *testing.T) {
	repo := newMockRepo()
	repo.seed("central", Patient{ID: 1, LastName: "Arias", Email: "a@x.com"})
	repo.failShard["guayaquil"] = errors.New("connection refused")
	e := newTestServer(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/api/pacientes", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got struct {
		Total        int      `json:"total"`
		FailedShards []string `json:"failed_shards"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.Total != 1 {
		t.Errorf("expected total 1, got %d", got.Total)
	}
	if len(got.FailedShards) != 1 || got.FailedShards[0] != "guayaquil" {
		t.Errorf("expected failed_shards [guayaquil], got %v", got.FailedShards)
	}
}

func TestHandlerDelete_Blocked409(t *testing.T) {
	repo := newMockRepo()
	repo.seed("central", Patient{ID: 1, FirstName: "Ana", LastName: "Mora", Email: "ana@x.com"})
	repo.withDependents(map[key]int64{{"central", "consultas", 1}: 2})
	e := newTestServer(t, repo)

	req := httptest.NewRequest(http.MethodDelete, "/api/pacientes/central-1", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}
