package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/attendance"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/handler/http/response"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/pkg/validator"
)

// Photos arrive base64 encoded inside the JSON body.
const maxCaptureBodyBytes = 15 << 20

type AttendanceHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	GetToday(w http.ResponseWriter, r *http.Request)
	GetHistory(w http.ResponseWriter, r *http.Request)

	ListSchool(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	ExportSchool(w http.ResponseWriter, r *http.Request)

	ListPrincipals(w http.ResponseWriter, r *http.Request)
	ApprovePrincipal(w http.ResponseWriter, r *http.Request)
	RejectPrincipal(w http.ResponseWriter, r *http.Request)
	ExportPrincipals(w http.ResponseWriter, r *http.Request)
	GetStats(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	now               func() time.Time
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		now:               time.Now,
	}
}

func decodeCapture(w http.ResponseWriter, r *http.Request, req *attendance.CaptureRequest) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxCaptureBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		slog.Error("Failed to decode capture request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return false
	}
	if ua := r.UserAgent(); ua != "" {
		req.UserAgent = ua
	}
	return true
}

// CheckIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req attendance.CheckInRequest
	if !decodeCapture(w, r, &req.CaptureRequest) {
		return
	}

	result, err := h.attendanceService.CheckIn(r.Context(), req)
	if err != nil {
		slog.Warn("Check-in rejected", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Check-in successful. Awaiting approval.", result)
}

// CheckOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	var req attendance.CheckOutRequest
	if !decodeCapture(w, r, &req.CaptureRequest) {
		return
	}

	result, err := h.attendanceService.CheckOut(r.Context(), req)
	if err != nil {
		slog.Warn("Check-out rejected", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Check-out successful.", result)
}

// GetToday implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetToday(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.GetTodayStatus(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetHistory implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetHistory(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := attendance.HistoryFilter{}

	var errs validator.ValidationErrors
	intParam := func(name string) *int {
		raw := query.Get(name)
		if raw == "" {
			return nil
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, validator.ValidationError{Field: name, Message: name + " must be a number"})
			return nil
		}
		return &v
	}

	if p := intParam("page"); p != nil {
		filter.Page = *p
	}
	if l := intParam("limit"); l != nil {
		filter.Limit = *l
	}
	filter.Month = intParam("month")
	filter.Year = intParam("year")

	if len(errs) > 0 {
		response.HandleError(w, errs)
		return
	}

	result, err := h.attendanceService.GetHistory(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, response.NewMeta(result.Page, result.Limit, result.TotalCount))
}

// ListSchool implements AttendanceHandler.
func (h *attendanceHandlerImpl) ListSchool(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.ListSchoolAttendance(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func decodeDecision(r *http.Request) (attendance.DecisionRequest, error) {
	var req attendance.DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return req, err
	}
	req.ID = chi.URLParam(r, "id")
	return req, nil
}

func (h *attendanceHandlerImpl) decide(w http.ResponseWriter, r *http.Request, fn func(*http.Request, attendance.DecisionRequest) (attendance.AttendanceResponse, error), message string) {
	req, err := decodeDecision(r)
	if err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := fn(r, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, message, result)
}

// Approve implements AttendanceHandler.
func (h *attendanceHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, func(r *http.Request, req attendance.DecisionRequest) (attendance.AttendanceResponse, error) {
		return h.attendanceService.Approve(r.Context(), req)
	}, "Attendance approved successfully")
}

// Reject implements AttendanceHandler.
func (h *attendanceHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, func(r *http.Request, req attendance.DecisionRequest) (attendance.AttendanceResponse, error) {
		return h.attendanceService.Reject(r.Context(), req)
	}, "Attendance rejected successfully")
}

// ExportSchool implements AttendanceHandler.
func (h *attendanceHandlerImpl) ExportSchool(w http.ResponseWriter, r *http.Request) {
	h.exportCSV(w, r, "school-attendance", h.attendanceService.ExportSchoolCSV)
}

// ListPrincipals implements AttendanceHandler.
func (h *attendanceHandlerImpl) ListPrincipals(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.ListPrincipalAttendance(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ApprovePrincipal implements AttendanceHandler.
func (h *attendanceHandlerImpl) ApprovePrincipal(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, func(r *http.Request, req attendance.DecisionRequest) (attendance.AttendanceResponse, error) {
		return h.attendanceService.ApprovePrincipal(r.Context(), req)
	}, "Principal attendance approved successfully")
}

// RejectPrincipal implements AttendanceHandler.
func (h *attendanceHandlerImpl) RejectPrincipal(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, func(r *http.Request, req attendance.DecisionRequest) (attendance.AttendanceResponse, error) {
		return h.attendanceService.RejectPrincipal(r.Context(), req)
	}, "Principal attendance rejected successfully")
}

// ExportPrincipals implements AttendanceHandler.
func (h *attendanceHandlerImpl) ExportPrincipals(w http.ResponseWriter, r *http.Request) {
	h.exportCSV(w, r, "principal-attendance", h.attendanceService.ExportPrincipalCSV)
}

// GetStats implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetStats(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.GetStats(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// exportCSV buffers the export so a failure still produces a JSON error.
func (h *attendanceHandlerImpl) exportCSV(w http.ResponseWriter, r *http.Request, name string, export func(ctx context.Context, w io.Writer) error) {
	var buf bytes.Buffer
	if err := export(r.Context(), &buf); err != nil {
		response.HandleError(w, err)
		return
	}
	writeCSV(w, fmt.Sprintf("%s-%s.csv", name, h.now().Format("2006-01-02")), buf.Bytes())
}

func writeCSV(w http.ResponseWriter, filename string, body []byte) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		slog.Error("Failed to write csv response", "error", err)
	}
}
