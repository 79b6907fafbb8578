package consultation

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/federation"
	"github.com/hms/hms/internal/platform/apierr"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("medico", "enfermeria", "recepcion"))
	g.GET("/consultas", h.List)
	g.GET("/consultas/:id", h.Get)
	g.POST("/consultas", h.Create)
	g.PUT("/consultas/:id", h.Update)
	g.DELETE("/consultas/:id", h.Delete)

	stats := api.Group("", auth.RequireRole("admin", "medico"))
	stats.GET("/estadisticas/consultas", h.Stats)
	stats.GET("/estadisticas/conteos", h.Counts)
	stats.GET("/estadisticas/pacientes-top", h.TopPatients)
}

type createRequest struct {
	RegionID int `json:"region_id"`
	Consultation
}

func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	tagged, err := h.svc.Create(c.Request().Context(), req.RegionID, &req.Consultation)
	if err != nil {
		return apierr.From(err)
	}
	return c.JSON(http.StatusCreated, tagged)
}

func (h *Handler) Get(c echo.Context) error {
	ref, err := federation.ParseRef(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	tagged, err := h.svc.Get(c.Request().Context(), ref)
	if err != nil {
		return apierr.From(err)
	}
	return c.JSON(http.StatusOK, tagged)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)

	// ?paciente=cuenca-7 scopes to one patient's consultations; the
	// composite form is required since a bare id does not name a shard.
	if raw := c.QueryParam("paciente"); raw != "" {
		ref, err := federation.ParseRef(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid paciente id")
		}
		items, err := h.svc.ListForPatient(c.Request().Context(), ref)
		if err != nil {
			return apierr.From(err)
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, len(items), pg.Limit, pg.Offset))
	}

	if regionID, ok := regionQueryParam(c); ok {
		items, total, err := h.svc.ListRegion(c.Request().Context(), regionID, pg.Offset, pg.Limit)
		if err != nil {
			return apierr.From(err)
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}

	items, total, partial := h.svc.List(c.Request().Context(), pg.Offset, pg.Limit)
	resp := pagination.NewResponse(items, total, pg.Limit, pg.Offset)
	if partial != nil {
		resp.FailedShards = partial.FailedShards()
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) Update(c echo.Context) error {
	ref, err := federation.ParseRef(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body Consultation
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	tagged, err := h.svc.Update(c.Request().Context(), ref, &body)
	if err != nil {
		return apierr.From(err)
	}
	return c.JSON(http.StatusOK, tagged)
}

func (h *Handler) Delete(c echo.Context) error {
	ref, err := federation.ParseRef(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), ref); err != nil {
		return apierr.From(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Stats(c echo.Context) error {
	stats, err := h.svc.Stats(c.Request().Context())
	if err != nil {
		return apierr.From(err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) Counts(c echo.Context) error {
	report, err := h.svc.Counts(c.Request().Context())
	if err != nil {
		return apierr.From(err)
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) TopPatients(c echo.Context) error {
	limit := 10
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = n
	}
	items, partial := h.svc.TopPatients(c.Request().Context(), limit)
	resp := map[string]any{"data": items}
	if partial != nil {
		resp["failed_shards"] = partial.FailedShards()
	}
	return c.JSON(http.StatusOK, resp)
}

func regionQueryParam(c echo.Context) (int, bool) {
	raw := c.QueryParam("region")
	if raw == "" {
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return id, true
}
