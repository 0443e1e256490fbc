package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/gatecompass/internal/adapters/export"
)

// ReportHandler serves reports and their derived views.
type ReportHandler struct {
	deps Dependencies
}

// NewReportHandler creates a new report handler.
func NewReportHandler(deps Dependencies) *ReportHandler {
	return &ReportHandler{deps: deps}
}

// HandleReport handles GET /report?from=YYYY&to=YYYY.
func (h *ReportHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	from, to, err := yearRange(r)
	if err != nil {
		writeError(w, r, "report", err)
		return
	}
	rep, err := h.deps.Report(r.Context(), from, to)
	if err != nil {
		writeError(w, r, "report", err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// HandleReportXLSX handles GET /report.xlsx.
func (h *ReportHandler) HandleReportXLSX(w http.ResponseWriter, r *http.Request) {
	from, to, err := yearRange(r)
	if err != nil {
		writeError(w, r, "report_xlsx", err)
		return
	}
	rep, err := h.deps.Report(r.Context(), from, to)
	if err != nil {
		writeError(w, r, "report_xlsx", err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteReport(&buf, rep); err != nil {
		writeError(w, r, "report_xlsx", NewKind("report_xlsx", KindInternal, fmt.Errorf("%w: %w", ErrEncode, err)))
		return
	}
	name := fmt.Sprintf("gate-report-%d-%d.xlsx", rep.Window.StartYear, rep.Window.EndYear)
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// HandleTopic handles GET /topics/{name}.
func (h *ReportHandler) HandleTopic(w http.ResponseWriter, r *http.Request) {
	from, to, err := yearRange(r)
	if err != nil {
		writeError(w, r, "topic", err)
		return
	}
	d, err := h.deps.Topic(r.Context(), r.PathValue("name"), from, to)
	if err != nil {
		writeError(w, r, "topic", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// HandleSubjects handles GET /subjects.
func (h *ReportHandler) HandleSubjects(w http.ResponseWriter, r *http.Request) {
	from, to, err := yearRange(r)
	if err != nil {
		writeError(w, r, "subjects", err)
		return
	}
	subjects, err := h.deps.Subjects(r.Context(), from, to)
	if err != nil {
		writeError(w, r, "subjects", err)
		return
	}
	writeJSON(w, http.StatusOK, subjects)
}

// HandleYear handles GET /years/{year}.
func (h *ReportHandler) HandleYear(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("year")
	year, err := strconv.Atoi(raw)
	if err != nil || year <= 0 {
		writeError(w, r, "year", fmt.Errorf("%w: invalid year %q", ErrBadRequest, raw))
		return
	}
	stats, err := h.deps.YearStats(r.Context(), year)
	if err != nil {
		writeError(w, r, "year", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
