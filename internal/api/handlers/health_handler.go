package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// HealthHandler reports liveness plus a snapshot of host resources.
type HealthHandler struct{}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// HealthStatus is the health check response body.
type HealthStatus struct {
	Status        string  `json:"status"`
	UptimeSeconds uint64  `json:"uptime_seconds"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemPercent    float64 `json:"mem_percent"`
}

// Check answers the health probe. Host stat failures degrade to zeros rather
// than failing the probe.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{Status: "healthy"}

	if uptime, err := host.Uptime(); err == nil {
		status.UptimeSeconds = uptime
	} else {
		log.Warn().Err(err).Msg("Failed to read host uptime")
	}
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		status.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		status.MemPercent = vm.UsedPercent
	}

	respondJSON(w, http.StatusOK, status)
}
