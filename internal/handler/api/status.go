package api

import (
	"errors"
	"time"

	drepo "ArenaPull/internal/domain/repository"
	"ArenaPull/internal/usecase"
	xhttp "ArenaPull/pkg/http"
	xlogger "ArenaPull/pkg/logger"

	"github.com/labstack/echo/v4"
)

// StatusHandler exposes the ops surface: health, registry state, and the
// upload journal read side.
type StatusHandler struct {
	logger   *xlogger.Logger
	registry *usecase.ProcessedRegistry
	journal  drepo.Journal
	started  time.Time
}

func NewStatusHandler(logger *xlogger.Logger, registry *usecase.ProcessedRegistry, journal drepo.Journal) *StatusHandler {
	return &StatusHandler{
		logger:   logger,
		registry: registry,
		journal:  journal,
		started:  time.Now(),
	}
}

func (h *StatusHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	g := e.Group("/api")
	g.GET("/status", h.Status)
	g.GET("/uploads", h.Uploads)
}

// Health reports process liveness.
func (h *StatusHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(h.started).String(),
	})
}

// Status returns the registry snapshot for the current run.
func (h *StatusHandler) Status(c echo.Context) error {
	pairs := h.registry.Snapshot()
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"pairs": pairs,
		"total": len(pairs),
	})
}

type uploadsRequest struct {
	Limit int `query:"limit" default:"50" validate:"gte=1,lte=1000"`
}

// Uploads returns recent journal records. Sinks without a read side (none,
// kafka) answer 404.
func (h *StatusHandler) Uploads(c echo.Context) error {
	req := &uploadsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rows, err := h.journal.Recent(c.Request().Context(), req.Limit)
	if err != nil {
		if errors.Is(err, drepo.ErrQueryUnsupported) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundError("journal sink does not support queries"))
		}
		h.logger.Error("journal query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}
