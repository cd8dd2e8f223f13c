package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/example/campus-scheduler/internal/application"
	"github.com/example/campus-scheduler/internal/persistence"
)

type cleaningHandler struct {
	service *application.CleaningReportService
	respond responder
}

type cleaningReportResponse struct {
	ID           string     `json:"id"`
	RoomID       string     `json:"room_id"`
	ReportDate   string     `json:"report_date"`
	IsCleaned    bool       `json:"is_cleaned"`
	CleanedBy    string     `json:"cleaned_by,omitempty"`
	CleanedAt    *time.Time `json:"cleaned_at,omitempty"`
	Observations []string   `json:"observations,omitempty"`
	Notes        string     `json:"notes,omitempty"`
}

// collection lists the reports for a date and, on POST, generates the blank
// checklist for every room on that date.
func (h *cleaningHandler) collection(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		date, ok := h.queryDate(w, req.URL.Query().Get("date"))
		if !ok {
			return
		}
		reports, err := h.service.ListReports(req.Context(), date)
		if err != nil {
			h.respond.handleServiceError(w, req, err)
			return
		}
		h.respond.writeJSON(w, http.StatusOK, toCleaningReportResponses(reports))
	case http.MethodPost:
		var body struct {
			Date string `json:"date"`
		}
		if !decodeBody(w, req, h.respond, &body) {
			return
		}
		date, ok := h.queryDate(w, body.Date)
		if !ok {
			return
		}
		reports, err := h.service.GenerateDailyReports(req.Context(), date)
		if err != nil {
			h.respond.handleServiceError(w, req, err)
			return
		}
		h.respond.writeJSON(w, http.StatusCreated, toCleaningReportResponses(reports))
	default:
		h.respond.methodNotAllowed(w)
	}
}

func (h *cleaningHandler) item(w http.ResponseWriter, req *http.Request) {
	id := strings.TrimPrefix(req.URL.Path, "/api/cleaning-reports/")
	if id == "" || strings.Contains(id, "/") {
		h.respond.writeError(w, http.StatusNotFound, "not found")
		return
	}
	if req.Method != http.MethodPut {
		h.respond.methodNotAllowed(w)
		return
	}

	var body struct {
		IsCleaned    bool     `json:"is_cleaned"`
		CleanedBy    string   `json:"cleaned_by"`
		Observations []string `json:"observations"`
		Notes        string   `json:"notes"`
	}
	if !decodeBody(w, req, h.respond, &body) {
		return
	}
	report, err := h.service.UpdateReport(req.Context(), id, application.CleaningReportParams(body))
	if err != nil {
		h.respond.handleServiceError(w, req, err)
		return
	}
	h.respond.writeJSON(w, http.StatusOK, toCleaningReportResponse(report))
}

// queryDate parses an optional YYYY-MM-DD value; empty means today.
func (h *cleaningHandler) queryDate(w http.ResponseWriter, raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, true
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		h.respond.writeError(w, http.StatusBadRequest, "date must be formatted YYYY-MM-DD")
		return time.Time{}, false
	}
	return date, true
}

func toCleaningReportResponses(reports []persistence.CleaningReport) []cleaningReportResponse {
	responses := make([]cleaningReportResponse, 0, len(reports))
	for _, report := range reports {
		responses = append(responses, toCleaningReportResponse(report))
	}
	return responses
}

func toCleaningReportResponse(report persistence.CleaningReport) cleaningReportResponse {
	return cleaningReportResponse{
		ID:           report.ID,
		RoomID:       report.RoomID,
		ReportDate:   report.ReportDate.Format("2006-01-02"),
		IsCleaned:    report.IsCleaned,
		CleanedBy:    report.CleanedBy,
		CleanedAt:    report.CleanedAt,
		Observations: report.Observations,
		Notes:        report.Notes,
	}
}
