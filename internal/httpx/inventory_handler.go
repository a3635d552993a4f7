package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"stockroom/internal/service"
	"stockroom/internal/stock"
)

// InventoryService is the slice of the coordinator the HTTP layer needs.
type InventoryService interface {
	GetAvailability(ctx context.Context, productID, storeID string) (*stock.Availability, error)
	CreateReservation(ctx context.Context, req service.CreateRequest) (*stock.Reservation, error)
	ReleaseReservation(ctx context.Context, reservationID string) error
	ConfirmReservation(ctx context.Context, reservationID string) error
	AdjustStockBatch(ctx context.Context, items []service.Adjustment) []service.AdjustmentResult
	LowStock(ctx context.Context, storeID string, threshold int) ([]stock.Record, error)
	ReservationsByCustomer(ctx context.Context, customerID string) ([]stock.Reservation, error)
}

type InventoryHandler struct {
	Svc               InventoryService
	LowStockThreshold int
}

func (h *InventoryHandler) Register(r *chi.Mux) {
	r.Route("/inventory", func(r chi.Router) {
		r.Get("/{productID}/availability", h.getAvailability)
		r.Post("/reserve", h.reserve)
		r.Post("/confirm/{reservationID}", h.confirm)
		r.Delete("/release/{reservationID}", h.release)
		r.Put("/adjust", h.adjust)
		r.Get("/low-stock", h.lowStock)
		r.Get("/reservations/customer/{customerID}", h.customerReservations)
	})
}

type ReserveRequest struct {
	ProductID      string `json:"product_id"`
	StoreID        string `json:"store_id"`
	Quantity       int    `json:"quantity"`
	CustomerID     string `json:"customer_id,omitempty"`
	ReservationTTL int    `json:"reservation_ttl,omitempty"` // seconds
}

type ReserveResponse struct {
	ReservationID    string            `json:"reservation_id"`
	Status           string            `json:"status"`
	ProductID        string            `json:"product_id"`
	StoreID          string            `json:"store_id"`
	Quantity         int               `json:"quantity"`
	ExpiresAt        time.Time         `json:"expires_at"`
	ConfirmationCode string            `json:"confirmation_code"`
	Actions          map[string]string `json:"actions"`
}

type AdjustRequest struct {
	BatchID     string          `json:"batch_id"`
	Source      string          `json:"source,omitempty"`
	Adjustments []AdjustmentDTO `json:"adjustments"`
}

type AdjustmentDTO struct {
	ProductID string `json:"product_id"`
	StoreID   string `json:"store_id"`
	Delta     int    `json:"delta"`
	Reason    string `json:"reason,omitempty"`
}

type AdjustResponse struct {
	BatchID     string                     `json:"batch_id"`
	Results     []service.AdjustmentResult `json:"results"`
	ProcessedAt time.Time                  `json:"processed_at"`
}

func (h *InventoryHandler) getAvailability(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	storeID := r.URL.Query().Get("store_id")

	snap, err := h.Svc.GetAvailability(r.Context(), productID, storeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *InventoryHandler) reserve(w http.ResponseWriter, r *http.Request) {
	var req ReserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.ProductID == "" || req.StoreID == "" || req.Quantity <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "product_id, store_id and a positive quantity are required"})
		return
	}

	res, err := h.Svc.CreateReservation(r.Context(), service.CreateRequest{
		ProductID:  req.ProductID,
		StoreID:    req.StoreID,
		Quantity:   req.Quantity,
		CustomerID: req.CustomerID,
		TTL:        time.Duration(req.ReservationTTL) * time.Second,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ReserveResponse{
		ReservationID:    res.ID,
		Status:           string(res.Status),
		ProductID:        res.ProductID,
		StoreID:          res.StoreID,
		Quantity:         res.Quantity,
		ExpiresAt:        res.ExpiresAt,
		ConfirmationCode: res.ConfirmationCode,
		Actions: map[string]string{
			"confirm": "/inventory/confirm/" + res.ID,
			"release": "/inventory/release/" + res.ID,
		},
	})
}

func (h *InventoryHandler) confirm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "reservationID")
	if err := h.Svc.ConfirmReservation(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *InventoryHandler) release(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "reservationID")
	if err := h.Svc.ReleaseReservation(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *InventoryHandler) adjust(w http.ResponseWriter, r *http.Request) {
	var req AdjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.BatchID == "" || len(req.Adjustments) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "batch_id and adjustments are required"})
		return
	}

	items := make([]service.Adjustment, 0, len(req.Adjustments))
	for _, a := range req.Adjustments {
		items = append(items, service.Adjustment{
			ProductID: a.ProductID,
			StoreID:   a.StoreID,
			Delta:     a.Delta,
			Reason:    a.Reason,
		})
	}

	results := h.Svc.AdjustStockBatch(r.Context(), items)
	writeJSON(w, http.StatusOK, AdjustResponse{
		BatchID:     req.BatchID,
		Results:     results,
		ProcessedAt: time.Now().UTC(),
	})
}

func (h *InventoryHandler) lowStock(w http.ResponseWriter, r *http.Request) {
	storeID := r.URL.Query().Get("store_id")
	if storeID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "store_id is required"})
		return
	}
	threshold := h.LowStockThreshold
	if t := r.URL.Query().Get("threshold"); t != "" {
		n, err := strconv.Atoi(t)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid threshold"})
			return
		}
		threshold = n
	}

	recs, err := h.Svc.LowStock(r.Context(), storeID, threshold)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"store_id": storeID, "threshold": threshold, "items": recs})
}

func (h *InventoryHandler) customerReservations(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerID")
	reservations, err := h.Svc.ReservationsByCustomer(r.Context(), customerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customer_id": customerID, "reservations": reservations})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps each failure kind of the coordinator to a distinct
// status so callers can tell a business conflict from a missing record.
func writeError(w http.ResponseWriter, err error) {
	var insufficient *stock.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":      insufficient.Error(),
			"product_id": insufficient.ProductID,
			"store_id":   insufficient.StoreID,
			"requested":  insufficient.Requested,
			"available":  insufficient.Available,
		})
	case errors.Is(err, stock.ErrReservationNotFound), errors.Is(err, stock.ErrInventoryNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, stock.ErrReservationExpired):
		writeJSON(w, http.StatusGone, map[string]string{"error": err.Error()})
	case errors.Is(err, stock.ErrInvalidState), errors.Is(err, stock.ErrNegativeStock),
		errors.Is(err, stock.ErrOptimisticConflict):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
