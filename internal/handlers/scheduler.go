package handlers

import (
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/fikalearn/paperweek/internal/app"
)

// SchedulerHandler exposes the scheduler control surface: start, stop,
// manual trigger, status with recent audit trail. All endpoints sit
// behind the admin token when auth is enabled.
type SchedulerHandler struct {
	service *app.Service
}

func NewSchedulerHandler(service *app.Service) *SchedulerHandler {
	return &SchedulerHandler{
		service: service,
	}
}

func (h *SchedulerHandler) authorized(w http.ResponseWriter, r *http.Request) bool {
	if err := h.service.Authorize(r); err != nil {
		logger.Error.Printf("Scheduler API auth failed: %v", err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return false
	}
	return true
}

func (h *SchedulerHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(w, r) {
		return
	}

	if err := h.service.Scheduler.Start(); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": "Failed to start scheduler",
			"error":   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Scheduler started",
		"status":  h.service.Scheduler.Status(),
	})
}

func (h *SchedulerHandler) HandleStop(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(w, r) {
		return
	}

	h.service.Scheduler.Stop()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Scheduler stopped",
		"status":  h.service.Scheduler.Status(),
	})
}

func (h *SchedulerHandler) HandleTrigger(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(w, r) {
		return
	}

	if err := h.service.Scheduler.Trigger(r.Context()); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": "Weekly paper generation failed",
			"error":   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Weekly paper generation triggered successfully",
	})
}

func (h *SchedulerHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(w, r) {
		return
	}

	recentLogs, err := h.service.Scheduler.RecentLogs(r.Context(), queryLimit(r, 10))
	if err != nil {
		logger.Error.Printf("Failed to fetch job logs: %v", err)
		recentLogs = nil
	}

	recentSchedules, err := h.service.Scheduler.RecentSchedules(r.Context(), 5)
	if err != nil {
		logger.Error.Printf("Failed to fetch weekly schedules: %v", err)
		recentSchedules = nil
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":          h.service.Scheduler.Status(),
		"recentLogs":      recentLogs,
		"recentSchedules": recentSchedules,
	})
}
