package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/freshhaul/coldroute/internal/models"
)

// ExportService is the lifecycle surface the HTTP layer depends on.
type ExportService interface {
	Create(ctx context.Context, vendorID string, req models.CreateExportRequest) (*models.Export, error)
	Accept(ctx context.Context, exportID string) (*models.Export, error)
	Reject(ctx context.Context, exportID string, reason string) error
	StartByDriver(ctx context.Context, exportID string) (*models.Export, error)
	StartByVendor(ctx context.Context, exportID string) (*models.Export, error)
	Complete(ctx context.Context, exportID string) (*models.Export, error)
	Delete(ctx context.Context, exportID string) error
	Get(ctx context.Context, exportID string) (*models.Export, error)
	ListByVendor(ctx context.Context, vendorID string) ([]models.Export, error)
	ListByDriver(ctx context.Context, driverID string) ([]models.Export, error)
	AvailableResources(ctx context.Context, vendorID string, start, end time.Time) (*models.Availability, error)
}

// ExportHandler handles export lifecycle requests.
type ExportHandler struct {
	service ExportService
}

// NewExportHandler creates a new export handler.
func NewExportHandler(service ExportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// AvailableResources handles GET /availableResources?vendorId&startDate&endDate.
func (h *ExportHandler) AvailableResources(w http.ResponseWriter, r *http.Request) {
	vendorID := r.URL.Query().Get("vendorId")
	startStr := r.URL.Query().Get("startDate")
	endStr := r.URL.Query().Get("endDate")
	if vendorID == "" || startStr == "" || endStr == "" {
		writeError(w, fmt.Errorf("%w: vendorId, startDate and endDate are required", models.ErrValidation))
		return
	}

	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		writeError(w, fmt.Errorf("%w: startDate must be RFC3339", models.ErrValidation))
		return
	}
	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		writeError(w, fmt.Errorf("%w: endDate must be RFC3339", models.ErrValidation))
		return
	}

	availability, err := h.service.AvailableResources(r.Context(), vendorID, start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, availability)
}

// Create handles POST /export/add/{vendorId}.
func (h *ExportHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateExportRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	export, err := h.service.Create(r.Context(), chi.URLParam(r, "vendorId"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, export)
}

// Get handles GET /export/{id}.
func (h *ExportHandler) Get(w http.ResponseWriter, r *http.Request) {
	export, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, export)
}

// ListByVendor handles GET /export/vendor/{vendorId}.
func (h *ExportHandler) ListByVendor(w http.ResponseWriter, r *http.Request) {
	exports, err := h.service.ListByVendor(r.Context(), chi.URLParam(r, "vendorId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exports)
}

// ListByDriver handles GET /export/driver/{driverId}.
func (h *ExportHandler) ListByDriver(w http.ResponseWriter, r *http.Request) {
	exports, err := h.service.ListByDriver(r.Context(), chi.URLParam(r, "driverId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exports)
}

// Accept handles PUT /export/accept/{id}.
func (h *ExportHandler) Accept(w http.ResponseWriter, r *http.Request) {
	export, err := h.service.Accept(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, export)
}

// Reject handles PUT /export/reject/{id}.
func (h *ExportHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var req models.RejectExportRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Reject(r.Context(), chi.URLParam(r, "id"), req.Reason); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Export rejected and removed"})
}

// StartByDriver handles PUT /export/start/{id}.
func (h *ExportHandler) StartByDriver(w http.ResponseWriter, r *http.Request) {
	export, err := h.service.StartByDriver(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, export)
}

// StartByVendor handles PUT /export/startByVendor/{exportId}.
func (h *ExportHandler) StartByVendor(w http.ResponseWriter, r *http.Request) {
	export, err := h.service.StartByVendor(r.Context(), chi.URLParam(r, "exportId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, export)
}

// Complete handles PUT /export/complete/{exportId}.
func (h *ExportHandler) Complete(w http.ResponseWriter, r *http.Request) {
	export, err := h.service.Complete(r.Context(), chi.URLParam(r, "exportId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, export)
}

// Delete handles DELETE /export/{id}.
func (h *ExportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Export deleted"})
}
