package handler

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthHandler handles GET /health: liveness probe.
// Returns 200 immediately; confirms the process is alive.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Pinger checks one dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// ChainIDer is the part of a node client the readiness probe uses.
type ChainIDer interface {
	ChainID(ctx context.Context) (*big.Int, error)
}

// ChainPinger reports the node unhealthy when it is unreachable or serves a
// different chain than expected.
func ChainPinger(client ChainIDer, expected int64) Pinger {
	return PingFunc(func(ctx context.Context) error {
		id, err := client.ChainID(ctx)
		if err != nil {
			return err
		}
		if id.Int64() != expected {
			return fmt.Errorf("chain id %s, expected %d", id, expected)
		}
		return nil
	})
}

// HealthDependenciesHandler handles GET /health/ready: readiness probe.
// Checks every registered dependency before declaring the service ready.
type HealthDependenciesHandler struct {
	deps  map[string]Pinger
	order []string
}

func NewHealthDependenciesHandler() *HealthDependenciesHandler {
	return &HealthDependenciesHandler{deps: make(map[string]Pinger)}
}

// With registers a named dependency and returns h for chaining.
func (h *HealthDependenciesHandler) With(name string, p Pinger) *HealthDependenciesHandler {
	if _, ok := h.deps[name]; !ok {
		h.order = append(h.order, name)
	}
	h.deps[name] = p
	return h
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

func (h *HealthDependenciesHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	deps := make(map[string]dependencyStatus, len(h.order))
	healthy := true

	for _, name := range h.order {
		if err := h.deps[name].Ping(ctx); err != nil {
			deps[name] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
			healthy = false
			continue
		}
		deps[name] = dependencyStatus{Status: "ok"}
	}

	status := "ok"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}
