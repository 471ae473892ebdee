package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/camperpack/camperpack"
)

// Handler serves the sync HTTP API on top of a Repository.
type Handler struct {
	repo Repository
}

// NewHandler creates a sync API handler.
func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// Register mounts the sync routes on an echo instance.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/api/health", h.Health)
	e.POST("/api/sync", h.Push)
	e.GET("/api/sync", h.Pull)
	e.GET("/api/sync/changes", h.Changes)
}

// Health reports endpoint liveness.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, camperpack.HealthResponse{
		Status:  "ok",
		Version: camperpack.ExportVersion,
	})
}

// Push applies a batch of client changes. The whole batch succeeds or
// fails as one unit; clients retry a failed batch verbatim, so a
// partial apply here would make replay ambiguous.
func (h *Handler) Push(c echo.Context) error {
	var req camperpack.PushRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, camperpack.PushResponse{Error: "invalid request body"})
	}

	sourceID := c.Request().Header.Get("X-CamperPack-Source-ID")

	applied, err := h.repo.ApplyChanges(c.Request().Context(), sourceID, req.Changes)
	if err != nil {
		c.Logger().Errorf("apply changes: %v", err)
		return c.JSON(http.StatusInternalServerError, camperpack.PushResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, camperpack.PushResponse{
		Success:   true,
		Processed: applied,
	})
}

// Pull returns the full authoritative dataset.
func (h *Handler) Pull(c echo.Context) error {
	dataset, err := h.repo.Dataset(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("load dataset: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, dataset)
}

// Changes returns change-log entries appended after the lastSync
// watermark. With no watermark the full log is returned.
func (h *Handler) Changes(c echo.Context) error {
	var since time.Time
	if raw := c.QueryParam("lastSync"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "lastSync must be RFC 3339"})
		}
		since = parsed
	}

	entries, err := h.repo.ChangesSince(c.Request().Context(), since)
	if err != nil {
		c.Logger().Errorf("load changes: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	if entries == nil {
		entries = []camperpack.ChangeLogEntry{}
	}
	return c.JSON(http.StatusOK, echo.Map{"changes": entries})
}
