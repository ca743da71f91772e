package api

import (
	"context"
	"net/http"
	"time"

	"poxil-server/server"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
)

// HealthStatus represents the overall health of the system
type HealthStatus string

const (
	HealthHealthy  HealthStatus = "healthy"
	HealthDegraded HealthStatus = "degraded"
	HealthDown     HealthStatus = "down"
)

// ProjectMetrics holds project counts from the database.
type ProjectMetrics struct {
	TotalProjects  int64 `json:"total_projects"`
	PublicProjects int64 `json:"public_projects"`
	TotalUsers     int64 `json:"total_users"`
}

// MetricsResponse is the complete metrics response structure
type MetricsResponse struct {
	Timestamp         time.Time      `json:"timestamp"`
	Health            HealthStatus   `json:"health"`
	HealthDescription string         `json:"health_description"`
	Projects          ProjectMetrics `json:"projects"`
	Collaboration     server.Stats   `json:"collaboration"`
	ServerUptime      int64          `json:"server_uptime_sec"`
}

// MetricsHandler manages metrics collection and reporting
type MetricsHandler struct {
	cfg             Config
	db              *DB
	collab          *server.CollabServer
	serverStartTime time.Time
}

func NewMetricsHandler(cfg Config, db *DB, collab *server.CollabServer) *MetricsHandler {
	return &MetricsHandler{
		cfg:             cfg,
		db:              db,
		collab:          collab,
		serverStartTime: time.Now(),
	}
}

// Routes registers metrics routes
func (h *MetricsHandler) Routes(r chi.Router) {
	r.Get("/metrics", h.GetMetrics)
	r.Get("/metrics/health", h.GetHealth)
	r.Get("/metrics/collaboration", h.GetCollaboration)
}

// GetMetrics returns complete metrics
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.collectMetrics(r.Context()))
}

// GetHealth returns only health status
func (h *MetricsHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	metrics := h.collectMetrics(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"timestamp":   metrics.Timestamp,
		"health":      metrics.Health,
		"description": metrics.HealthDescription,
		"uptime_sec":  metrics.ServerUptime,
	})
}

// GetCollaboration returns only the websocket server counters
func (h *MetricsHandler) GetCollaboration(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"timestamp":     time.Now(),
		"collaboration": h.collabStats(),
	})
}

func (h *MetricsHandler) collabStats() server.Stats {
	if h.collab == nil {
		return server.Stats{}
	}
	return h.collab.Snapshot()
}

// collectMetrics gathers all metrics from the system
func (h *MetricsHandler) collectMetrics(ctx context.Context) *MetricsResponse {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	health := HealthHealthy
	healthDesc := "all systems operational"

	var pm ProjectMetrics
	var dbErr error
	if h.db != nil {
		pm.TotalProjects, dbErr = h.db.Collection("projects").CountDocuments(ctx, bson.M{})
		if dbErr == nil {
			pm.PublicProjects, _ = h.db.Collection("projects").CountDocuments(ctx, bson.M{"is_public": true})
			pm.TotalUsers, _ = h.db.Collection("users").CountDocuments(ctx, bson.M{})
		}
	}
	if h.db == nil || dbErr != nil {
		health = HealthDegraded
		healthDesc = "database unreachable"
	}
	if h.collab == nil {
		health = HealthDown
		healthDesc = "collaboration server not running"
	}

	return &MetricsResponse{
		Timestamp:         time.Now(),
		Health:            health,
		HealthDescription: healthDesc,
		Projects:          pm,
		Collaboration:     h.collabStats(),
		ServerUptime:      int64(time.Since(h.serverStartTime).Seconds()),
	}
}
