package patient

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
	role := auth.RequireRole("medico", "enfermeria", "recepcion")

	g := api.Group("", role)
	g.GET("/pacientes", h.List)
	g.GET("/pacientes/:id", h.Get)
	g.POST("/pacientes", h.Create)
	g.PUT("/pacientes/:id", h.Update)
	g.DELETE("/pacientes/:id", h.Delete)
}

type createRequest struct {
	RegionID int `json:"region_id"`
	Patient
}

func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	tagged, err := h.svc.Create(c.Request().Context(), req.RegionID, &req.Patient)
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

	// ?region=N scopes the listing to one regional database; without it
	// the listing merges every region.
	if regionID, ok := regionQueryParam(c); ok {
		items, total, err := h.svc.ListRegion(c.Request().Context(), regionID, c.QueryParam("q"), pg.Offset, pg.Limit)
		if err != nil {
			return apierr.From(err)
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}

	items, total, partial := h.svc.List(c.Request().Context(), c.QueryParam("q"), pg.Offset, pg.Limit)
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
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	tagged, err := h.svc.Update(c.Request().Context(), ref, &p)
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

// regionQueryParam parses an optional ?region= filter used by the
// per-region listing endpoint.
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
