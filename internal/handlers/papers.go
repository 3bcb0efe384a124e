package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/fikalearn/paperweek/internal/app"
	"github.com/fikalearn/paperweek/internal/metrics"
	"github.com/fikalearn/paperweek/internal/models"
	"github.com/fikalearn/paperweek/internal/paper"
)

type PaperHandler struct {
	service *app.Service
}

func NewPaperHandler(service *app.Service) *PaperHandler {
	return &PaperHandler{
		service: service,
	}
}

type generateRequest struct {
	WeekStart        string                 `json:"weekStart"`
	SelectedChapters []models.ChapterFilter `json:"selectedChapters"`
}

type sectionSummary struct {
	QuestionCount    int `json:"questionCount"`
	MarksPerQuestion int `json:"marksPerQuestion"`
	TotalMarks       int `json:"totalMarks"`
}

// HandleGenerate assembles and persists one paper on demand. Failures come
// back as a structured result, never a bare 500 body.
func (h *PaperHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := http.StatusOK
	defer func() {
		metrics.APIRequestDuration.WithLabelValues(
			r.URL.Path,
			r.Method,
			strconv.Itoa(status),
		).Observe(time.Since(start).Seconds())
	}()

	// An empty body means "current week, no filters"; a malformed one is
	// the caller's mistake.
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		status = http.StatusBadRequest
		writeJSON(w, status, map[string]interface{}{
			"success": false,
			"message": "Invalid request body",
			"error":   err.Error(),
		})
		return
	}

	weekStart, err := parseWeekStart(req.WeekStart)
	if err != nil {
		status = http.StatusBadRequest
		writeJSON(w, status, map[string]interface{}{
			"success": false,
			"message": "Invalid weekStart",
			"error":   err.Error(),
		})
		return
	}

	generated, err := h.service.Generator.Generate(r.Context(), weekStart, req.SelectedChapters)
	if err != nil {
		logger.Error.Printf("Failed to generate paper: %v", err)
		status = http.StatusInternalServerError
		writeJSON(w, status, map[string]interface{}{
			"success": false,
			"message": "Failed to generate paper",
			"error":   err.Error(),
		})
		return
	}

	paperID, err := h.service.Store.SavePaper(r.Context(), generated)
	if err != nil {
		logger.Error.Printf("Failed to save paper: %v", err)
		status = http.StatusInternalServerError
		writeJSON(w, status, map[string]interface{}{
			"success": false,
			"message": "Failed to save paper",
			"error":   err.Error(),
		})
		return
	}

	sections := make(map[string]sectionSummary, len(generated.Sections))
	for code, section := range generated.Sections {
		sections[code] = sectionSummary{
			QuestionCount:    len(section.Questions),
			MarksPerQuestion: section.MarksPerQuestion,
			TotalMarks:       section.TotalMarks,
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Successfully generated paper " + paperID,
		"paper": map[string]interface{}{
			"id":           paperID,
			"title":        generated.Title,
			"description":  generated.Description,
			"totalMarks":   generated.TotalMarks,
			"weekStart":    generated.WeekStart,
			"weekEnd":      generated.WeekEnd,
			"sections":     sections,
			"distribution": generated.Distribution,
		},
	})
}

func (h *PaperHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 10)

	papers, err := h.service.Store.ListPapers(r.Context(), limit)
	if err != nil {
		logger.Error.Printf("Failed to list papers: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": "Failed to fetch papers",
			"error":   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"papers":  papers,
	})
}

func (h *PaperHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "Invalid paper id", http.StatusBadRequest)
		return
	}

	p, err := h.service.Store.GetPaper(r.Context(), id)
	if err != nil {
		logger.Error.Printf("Failed to get paper %s: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": "Failed to fetch paper",
			"error":   err.Error(),
		})
		return
	}
	if p == nil {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"success": false,
			"message": "Paper not found",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"paper":   p,
	})
}

type chapterInfo struct {
	Chapter       string `json:"chapter"`
	QuestionCount int    `json:"questionCount"`
}

// HandleChapters lists the catalog's chapters grouped by subject, with
// question counts, for building generate-request filters.
func (h *PaperHandler) HandleChapters(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.Store.ListChapterCounts(r.Context())
	if err != nil {
		logger.Error.Printf("Failed to list chapters: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": "Failed to fetch chapters",
			"error":   err.Error(),
		})
		return
	}

	chapters := make(map[string][]chapterInfo)
	for _, row := range rows {
		chapters[row.Subject] = append(chapters[row.Subject], chapterInfo{
			Chapter:       row.Topic,
			QuestionCount: row.Count,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"chapters": chapters,
	})
}

func (h *PaperHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.Store.CountQuestionsBySection(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	questionTotal := 0
	for _, c := range counts {
		questionTotal += c
	}

	paperCount, err := h.service.Store.CountPapers(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"database": map[string]interface{}{
			"connected": true,
			"questions": questionTotal,
			"papers":    paperCount,
			"hasData":   questionTotal > 0,
		},
	})
}

// parseWeekStart accepts a date or RFC3339 timestamp; empty means the
// Monday of the current week.
func parseWeekStart(raw string) (time.Time, error) {
	if raw == "" {
		return paper.StartOfWeek(time.Now()), nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func queryLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error.Printf("Failed to encode response: %v", err)
	}
}
