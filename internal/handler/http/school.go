package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/school"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/handler/http/response"
)

type SchoolHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	UpdateBoundary(w http.ResponseWriter, r *http.Request)
	SendAlert(w http.ResponseWriter, r *http.Request)
	Dropdown(w http.ResponseWriter, r *http.Request)
}

type schoolHandlerImpl struct {
	schoolService school.SchoolService
}

func NewSchoolHandler(schoolService school.SchoolService) SchoolHandler {
	return &schoolHandlerImpl{
		schoolService: schoolService,
	}
}

// Create implements SchoolHandler.
func (h *schoolHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req school.CreateSchoolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Create school decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.schoolService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "School created successfully", result)
}

// List implements SchoolHandler.
func (h *schoolHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.schoolService.List(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Get implements SchoolHandler.
func (h *schoolHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.schoolService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Update implements SchoolHandler.
func (h *schoolHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req school.UpdateSchoolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Update school decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.schoolService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "School updated successfully", result)
}

// Delete implements SchoolHandler.
func (h *schoolHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.schoolService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "School deleted successfully", nil)
}

// UpdateBoundary implements SchoolHandler.
func (h *schoolHandlerImpl) UpdateBoundary(w http.ResponseWriter, r *http.Request) {
	var req school.UpdateBoundaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.schoolService.UpdateBoundary(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "School boundary updated successfully", result)
}

// SendAlert implements SchoolHandler.
func (h *schoolHandlerImpl) SendAlert(w http.ResponseWriter, r *http.Request) {
	result, err := h.schoolService.SendAlert(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Alert sent", result)
}

// Dropdown implements SchoolHandler.
func (h *schoolHandlerImpl) Dropdown(w http.ResponseWriter, r *http.Request) {
	result, err := h.schoolService.Dropdown(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
