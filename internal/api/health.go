package api

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/cashx/engine/internal/games"
)

// HealthStatus represents the overall health status
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthCheckResponse represents a comprehensive health check response
type HealthCheckResponse struct {
	Status        HealthStatus           `json:"status"`
	Timestamp     string                 `json:"timestamp"`
	EngineVersion string                 `json:"engine_version"`
	GitCommit     string                 `json:"git_commit,omitempty"`
	BuildTime     string                 `json:"build_time,omitempty"`
	Uptime        string                 `json:"uptime"`
	Checks        map[string]HealthCheck `json:"checks"`
	System        SystemInfo             `json:"system"`
	RequestID     string                 `json:"request_id,omitempty"`
}

// HealthCheck represents an individual health check
type HealthCheck struct {
	Status      HealthStatus `json:"status"`
	Message     string       `json:"message,omitempty"`
	LastChecked string       `json:"last_checked"`
	Duration    string       `json:"duration,omitempty"`
}

// SystemInfo contains system information
type SystemInfo struct {
	GoVersion     string `json:"go_version"`
	NumGoroutines int    `json:"num_goroutines"`
	NumCPU        int    `json:"num_cpu"`
	GOMAXPROCS    int    `json:"gomaxprocs"`
	MemoryAlloc   uint64 `json:"memory_alloc_bytes"`
	MemoryTotal   uint64 `json:"memory_total_bytes"`
	MemorySys     uint64 `json:"memory_sys_bytes"`
	GCCycles      uint32 `json:"gc_cycles"`
}

// handleHealthCheck provides comprehensive health check endpoint
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetReqID(r.Context())
	start := time.Now()

	checks := make(map[string]HealthCheck)
	overallStatus := HealthStatusHealthy

	gameCheck := s.checkGamesHealth()
	checks["games"] = gameCheck
	if gameCheck.Status != HealthStatusHealthy {
		overallStatus = HealthStatusDegraded
	}

	dbCheck := s.checkDatabaseHealth()
	checks["database"] = dbCheck
	if dbCheck.Status == HealthStatusUnhealthy {
		overallStatus = HealthStatusUnhealthy
	} else if dbCheck.Status == HealthStatusDegraded && overallStatus == HealthStatusHealthy {
		overallStatus = HealthStatusDegraded
	}

	walletCheck := s.checkWalletHealth()
	checks["wallet"] = walletCheck
	if walletCheck.Status == HealthStatusUnhealthy {
		overallStatus = HealthStatusUnhealthy
	}

	systemInfo := s.getSystemInfo()

	response := HealthCheckResponse{
		Status:        overallStatus,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		EngineVersion: EngineVersion,
		GitCommit:     GitCommit,
		BuildTime:     BuildTime,
		Uptime:        time.Since(s.startTime).String(),
		Checks:        checks,
		System:        systemInfo,
		RequestID:     requestID,
	}

	statusCode := http.StatusOK
	if overallStatus == HealthStatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	duration := time.Since(start)
	s.auditLogger.LogAuditEvent(
		requestID,
		"health_check",
		"system",
		string(overallStatus),
		map[string]interface{}{
			"duration":    duration,
			"checks":      len(checks),
			"status_code": statusCode,
		},
	)

	s.writeJSON(w, statusCode, response)
}

// handleReadiness provides readiness probe endpoint
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetReqID(r.Context())

	ready := true
	message := "Ready"

	if len(games.AllStats) == 0 {
		ready = false
		message = "No games available"
	}

	if s.db == nil {
		ready = false
		message = "Store not initialized"
	} else if _, err := s.db.GetProfile(s.profileID); err != nil {
		ready = false
		message = fmt.Sprintf("Profile not loadable: %v", err)
	}

	response := map[string]interface{}{
		"ready":          ready,
		"message":        message,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"engine_version": EngineVersion,
		"request_id":     requestID,
	}

	statusCode := http.StatusOK
	if !ready {
		statusCode = http.StatusServiceUnavailable
	}

	outcome := "ready"
	if !ready {
		outcome = "not_ready"
	}
	s.auditLogger.LogAuditEvent(
		requestID,
		"readiness_check",
		"system",
		outcome,
		map[string]interface{}{
			"message":     message,
			"games_count": len(games.AllStats),
		},
	)

	s.writeJSON(w, statusCode, response)
}

// handleLiveness provides liveness probe endpoint
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetReqID(r.Context())

	response := map[string]interface{}{
		"alive":          true,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"engine_version": EngineVersion,
		"uptime":         time.Since(s.startTime).String(),
		"request_id":     requestID,
	}

	s.writeJSON(w, http.StatusOK, response)
}

// checkGamesHealth checks the game registry is loaded and consistent
func (s *Server) checkGamesHealth() HealthCheck {
	start := time.Now()

	status := HealthStatusHealthy
	message := fmt.Sprintf("%d games available", len(games.AllStats))

	if len(games.AllStats) == 0 {
		status = HealthStatusUnhealthy
		message = "No games available"
	} else if len(games.AllStats) < 5 {
		status = HealthStatusDegraded
		message = fmt.Sprintf("Only %d games available (expected 5)", len(games.AllStats))
	}

	return HealthCheck{
		Status:      status,
		Message:     message,
		LastChecked: time.Now().UTC().Format(time.RFC3339),
		Duration:    time.Since(start).String(),
	}
}

// checkDatabaseHealth checks store connectivity via a profile read
func (s *Server) checkDatabaseHealth() HealthCheck {
	start := time.Now()

	status := HealthStatusHealthy
	message := "Store connection healthy"

	if s.db == nil {
		status = HealthStatusUnhealthy
		message = "Store not initialized"
	} else if _, err := s.db.GetProfile(s.profileID); err != nil {
		status = HealthStatusDegraded
		message = fmt.Sprintf("Profile read failed: %v", err)
	}

	return HealthCheck{
		Status:      status,
		Message:     message,
		LastChecked: time.Now().UTC().Format(time.RFC3339),
		Duration:    time.Since(start).String(),
	}
}

// checkWalletHealth checks the wallet is wired and non-negative
func (s *Server) checkWalletHealth() HealthCheck {
	start := time.Now()

	status := HealthStatusHealthy
	message := "Wallet healthy"

	if s.wallet == nil {
		status = HealthStatusUnhealthy
		message = "Wallet not initialized"
	} else if balance := s.wallet.Balance(); balance < 0 {
		status = HealthStatusUnhealthy
		message = fmt.Sprintf("Negative balance: %d", balance)
	}

	return HealthCheck{
		Status:      status,
		Message:     message,
		LastChecked: time.Now().UTC().Format(time.RFC3339),
		Duration:    time.Since(start).String(),
	}
}

// getSystemInfo collects system information
func (s *Server) getSystemInfo() SystemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return SystemInfo{
		GoVersion:     runtime.Version(),
		NumGoroutines: runtime.NumGoroutine(),
		NumCPU:        runtime.NumCPU(),
		GOMAXPROCS:    runtime.GOMAXPROCS(0),
		MemoryAlloc:   m.Alloc,
		MemoryTotal:   m.TotalAlloc,
		MemorySys:     m.Sys,
		GCCycles:      m.NumGC,
	}
}
