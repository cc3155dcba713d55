package health

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// CheckFunc probes one dependency and returns an error when it is unhealthy.
type CheckFunc func(ctx context.Context) error

// Handler serves liveness and readiness endpoints.
type Handler struct {
	appName string
	backend string
	checks  map[string]CheckFunc
}

// NewHandler creates a health handler for the given app and active backend.
func NewHandler(appName, backend string) *Handler {
	return &Handler{
		appName: appName,
		backend: backend,
		checks:  make(map[string]CheckFunc),
	}
}

// AddCheck registers a named dependency check run on readiness probes.
func (h *Handler) AddCheck(name string, fn CheckFunc) {
	h.checks[name] = fn
}

// RegisterEndpoints mounts /health and /health/ready.
func (h *Handler) RegisterEndpoints(e *echo.Echo) {
	e.GET("/health", h.liveness)
	e.GET("/health/ready", h.readiness)
}

func (h *Handler) liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"app":     h.appName,
		"backend": h.backend,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			results[name] = "ok"
		}
	}

	return c.JSON(status, map[string]interface{}{
		"status":  http.StatusText(status),
		"app":     h.appName,
		"backend": h.backend,
		"checks":  results,
	})
}
