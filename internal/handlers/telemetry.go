package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/freshhaul/coldroute/internal/models"
	"github.com/freshhaul/coldroute/internal/telemetry"
)

// TelemetryService is the gateway surface the HTTP layer depends on.
type TelemetryService interface {
	SensorSeries(ctx context.Context, exportID string, f telemetry.SeriesFilter) ([]models.SensorReading, error)
	LocationSeries(ctx context.Context, exportID string) ([]models.LocationPoint, error)
	AppendIntermediateLocation(ctx context.Context, exportID string, point models.GeoPoint) error
}

// TelemetryHandler serves the device telemetry read path and the export's
// waypoint trail.
type TelemetryHandler struct {
	service TelemetryService
}

// NewTelemetryHandler creates a new telemetry handler.
func NewTelemetryHandler(service TelemetryService) *TelemetryHandler {
	return &TelemetryHandler{service: service}
}

// SensorData handles GET /device/sensor-data/{exportId}. Accepts either a
// single date=YYYY-MM-DD or a startDate & endDate pair, both inclusive of
// whole calendar days.
func (h *TelemetryHandler) SensorData(w http.ResponseWriter, r *http.Request) {
	filter, err := parseSeriesFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}

	readings, err := h.service.SensorSeries(r.Context(), chi.URLParam(r, "exportId"), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, readings)
}

// LocationData handles GET /device/location-data/{exportId}.
func (h *TelemetryHandler) LocationData(w http.ResponseWriter, r *http.Request) {
	points, err := h.service.LocationSeries(r.Context(), chi.URLParam(r, "exportId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

// PushIntermediateLocation handles POST /export/intermediateLocation/push/{exportId}.
func (h *TelemetryHandler) PushIntermediateLocation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		writeError(w, fmt.Errorf("%w: latitude and longitude are required", models.ErrValidation))
		return
	}

	point := models.GeoPoint{Latitude: *req.Latitude, Longitude: *req.Longitude}
	if err := h.service.AppendIntermediateLocation(r.Context(), chi.URLParam(r, "exportId"), point); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Location added"})
}

func parseSeriesFilter(r *http.Request) (telemetry.SeriesFilter, error) {
	var filter telemetry.SeriesFilter

	parse := func(value string) (*time.Time, error) {
		t, err := time.Parse("2006-01-02", value)
		if err != nil {
			return nil, fmt.Errorf("%w: dates must be YYYY-MM-DD", models.ErrValidation)
		}
		return &t, nil
	}

	if v := r.URL.Query().Get("date"); v != "" {
		date, err := parse(v)
		if err != nil {
			return filter, err
		}
		filter.Date = date
		return filter, nil
	}

	startStr := r.URL.Query().Get("startDate")
	endStr := r.URL.Query().Get("endDate")
	if startStr == "" && endStr == "" {
		return filter, nil
	}
	if startStr == "" || endStr == "" {
		return filter, fmt.Errorf("%w: startDate and endDate must be provided together", models.ErrValidation)
	}

	start, err := parse(startStr)
	if err != nil {
		return filter, err
	}
	end, err := parse(endStr)
	if err != nil {
		return filter, err
	}
	filter.StartDate = start
	filter.EndDate = end
	return filter, nil
}
