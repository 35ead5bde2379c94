package handlers

import (
	"context"
	"delivery-intake-service/internal/api/dto"
	"delivery-intake-service/internal/domain"
	"delivery-intake-service/internal/ports"
	"delivery-intake-service/internal/services"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// maxBodyBytes caps request bodies. Larger bodies get 413, not 400.
const maxBodyBytes = 1 << 20

// DeliveryHandler accepts delivery status updates and serves lookups.
type DeliveryHandler struct {
	Repo      ports.DeliveryRepository
	Generator ports.TrackingNumberGenerator
}

// Create handles POST /deliveries.
//
// Outcomes map to status codes: 201 with trackingNumber on success, 400 for an
// unreadable body or a missing field, 413 for a body over maxBodyBytes, 500
// with message when the insert fails, and 503 with a plain-text diagnostic when
// no connection could be acquired.
func (h *DeliveryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateDeliveryRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()

	if err := dec.Decode(&req); err != nil {
		writeDecodeError(w, r, err, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeDecodeError(w, r, err, "body must contain only one JSON object")
		return
	}

	if req.Status == nil {
		writeMessage(w, r, http.StatusBadRequest, "status is required")
		return
	}
	if req.Location == nil {
		writeMessage(w, r, http.StatusBadRequest, "location is required")
		return
	}

	svcReq := services.CreateDeliveryRequest{
		Status:   *req.Status,
		Location: *req.Location,
	}

	d, err := services.CreateDelivery(r.Context(), svcReq, h.Repo, h.Generator)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.CreateDeliveryResponse{TrackingNumber: d.TrackingNumber})
}

// Get handles GET /deliveries/{trackingNumber}.
func (h *DeliveryHandler) Get(w http.ResponseWriter, r *http.Request) {
	trackingNumber := chi.URLParam(r, "trackingNumber")
	if !domain.ValidTrackingNumber(trackingNumber) {
		writeMessage(w, r, http.StatusBadRequest, "invalid tracking number")
		return
	}

	d, err := services.GetDelivery(r.Context(), trackingNumber, h.Repo)
	if errors.Is(err, domain.ErrNotFound) {
		writeMessage(w, r, http.StatusNotFound, domain.ErrNotFound.Error())
		return
	}
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.DeliveryResponse{
		TrackingNumber: d.TrackingNumber,
		Status:         d.Status,
		Location:       d.Location,
	})
}

func writeDecodeError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeMessage(w, r, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	writeMessage(w, r, http.StatusBadRequest, msg)
}

func (h *DeliveryHandler) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	logger := zerolog.Ctx(r.Context())

	// The timeout middleware answers 504 once the request deadline has passed.
	if errors.Is(r.Context().Err(), context.DeadlineExceeded) {
		logger.Warn().Err(err).Msg("delivery request timed out")
		return
	}

	var connErr *domain.ConnectionError
	if errors.As(err, &connErr) {
		logger.Error().Err(connErr.Err).Msg("database connection failed")
		http.Error(w, "Connection failed: "+connErr.Err.Error(), http.StatusServiceUnavailable)
		return
	}

	var insErr *domain.InsertError
	if errors.As(err, &insErr) {
		logger.Error().Err(insErr.Err).Msg("delivery insert failed")
		writeJSON(w, r, http.StatusInternalServerError, dto.CreateDeliveryResponse{
			Message: "Failed to create delivery: " + insErr.Err.Error(),
		})
		return
	}

	logger.Error().Err(err).Msg("delivery request failed")
	writeMessage(w, r, http.StatusInternalServerError, "internal server error")
}
