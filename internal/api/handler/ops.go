// Package handler provides HTTP handlers for the RideWake API.
package handler

import (
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ridewake/ridewake/internal/api/models"
	"github.com/ridewake/ridewake/internal/api/response"
	"github.com/ridewake/ridewake/internal/provider/resilience"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	registry  *resilience.Registry
	pool      *pgxpool.Pool
}

// NewOpsHandler creates a new OpsHandler. The registry and pool may be
// nil; the corresponding status sections are omitted.
func NewOpsHandler(version, buildTime string, registry *resilience.Registry, pool *pgxpool.Pool) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		registry:  registry,
		pool:      pool,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	status := models.HealthStatusOK
	httpStatus := http.StatusOK

	if h.pool != nil {
		if err := h.pool.Ping(r.Context()); err != nil {
			status = models.HealthStatusFail
			httpStatus = http.StatusServiceUnavailable
		}
	}

	health := models.Health{
		Status: status,
		Time:   models.Timestamp(time.Now()),
	}
	response.JSON(w, r, httpStatus, health)
}

// SystemStatus handles GET /v1/ops/status - provider and subsystem status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	overall := models.HealthStatusOK

	var subsystems []models.SubsystemStatus
	if h.pool != nil {
		dbStatus := models.HealthStatusOK
		if err := h.pool.Ping(r.Context()); err != nil {
			dbStatus = models.HealthStatusFail
			overall = models.HealthStatusDegraded
		}
		subsystems = append(subsystems, models.SubsystemStatus{
			Name:   "postgres",
			Status: dbStatus,
		})
	}

	var providers []models.ProviderStatus
	if h.registry != nil {
		for _, p := range h.registry.Health() {
			status := models.HealthStatusOK
			if !p.Healthy() {
				status = models.HealthStatusDegraded
				overall = models.HealthStatusDegraded
			}

			ps := models.ProviderStatus{
				Provider:     p.Name,
				Status:       status,
				CircuitState: p.CircuitState.String(),
			}
			if p.LastSuccessAt != nil {
				ts := models.Timestamp(*p.LastSuccessAt)
				ps.LastSuccessAt = &ts
			}
			if p.LastFailureAt != nil {
				ts := models.Timestamp(*p.LastFailureAt)
				ps.LastFailureAt = &ts
			}
			if p.LastError != "" {
				msg := p.LastError
				ps.Message = &msg
			}
			providers = append(providers, ps)
		}
	}

	status := models.SystemStatus{
		Status:     overall,
		Time:       models.Timestamp(time.Now()),
		Subsystems: subsystems,
		Providers:  providers,
	}
	response.JSON(w, r, http.StatusOK, status)
}
