package inventory

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/clinistock/clinistock/internal/clock"
	"github.com/clinistock/clinistock/internal/platform/httpx"
	"github.com/clinistock/clinistock/internal/shared"
)

// Handler wires HTTP endpoints for the batch ledger.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	clk       clock.Clock
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, clk clock.Clock) *Handler {
	if clk == nil {
		clk = clock.System{}
	}
	return &Handler{logger: logger, service: service, clk: clk, validator: validator.New()}
}

// MountRoutes registers ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/items/{id}/batches", h.handleAddBatch)
	r.Get("/items/{id}/batches", h.handleListBatches)
	r.Get("/items/{id}/stock", h.handleStockStatus)
	r.Post("/items/{id}/debit", h.handleDebit)
	r.Get("/batches/{id}", h.handleGetBatch)
	r.Get("/batches/expiring", h.handleExpiring)
	r.Get("/batches/expired", h.handleExpired)
}

type batchForm struct {
	Quantity    int64   `json:"quantity" validate:"gt=0"`
	ExpiryDate  string  `json:"expiry_date" validate:"required"`
	BatchNumber string  `json:"batch_number"`
	LotNumber   string  `json:"lot_number"`
	UnitCost    float64 `json:"unit_cost" validate:"gte=0"`
	Supplier    string  `json:"supplier"`
	Ref         string  `json:"ref"`
	ActorID     int64   `json:"actor_id"`
}

type debitForm struct {
	Quantity int64  `json:"quantity" validate:"gt=0"`
	BatchID  *int64 `json:"batch_id"`
	ActorID  int64  `json:"actor_id"`
}

type batchResponse struct {
	ID           int64   `json:"id"`
	ItemID       int64   `json:"item_id"`
	BatchNumber  string  `json:"batch_number,omitempty"`
	LotNumber    string  `json:"lot_number,omitempty"`
	QtyReceived  int64   `json:"qty_received"`
	QtyRemaining int64   `json:"qty_remaining"`
	ExpiryDate   string  `json:"expiry_date"`
	ReceivedAt   string  `json:"received_at"`
	UnitCost     float64 `json:"unit_cost"`
	Supplier     string  `json:"supplier,omitempty"`
	Risk         string  `json:"risk"`
	DaysLeft     int     `json:"days_until_expiry"`
}

func (h *Handler) toBatchResponse(b Batch) batchResponse {
	today := clock.DateOf(h.clk.Now())
	return batchResponse{
		ID:           b.ID,
		ItemID:       b.ItemID,
		BatchNumber:  b.BatchNumber,
		LotNumber:    b.LotNumber,
		QtyReceived:  b.QtyReceived,
		QtyRemaining: b.QtyRemaining,
		ExpiryDate:   b.ExpiryDate.Format("2006-01-02"),
		ReceivedAt:   b.ReceivedAt.Format(time.RFC3339),
		UnitCost:     b.UnitCost,
		Supplier:     b.Supplier,
		Risk:         string(ClassifyExpiry(b.ExpiryDate, today)),
		DaysLeft:     DaysUntilExpiry(b.ExpiryDate, today),
	}
}

func (h *Handler) batchList(batches []Batch) []batchResponse {
	out := make([]batchResponse, 0, len(batches))
	for _, b := range batches {
		out = append(out, h.toBatchResponse(b))
	}
	return out
}

func (h *Handler) handleAddBatch(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var form batchForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, shared.NewValidationError("body", "must be valid JSON"))
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.RespondError(w, formError(err))
		return
	}
	expiry, err := time.Parse("2006-01-02", form.ExpiryDate)
	if err != nil {
		httpx.RespondError(w, shared.NewValidationError("expiry_date", "must be YYYY-MM-DD"))
		return
	}
	batch, err := h.service.AddBatch(r.Context(), AddBatchInput{
		ItemID:      itemID,
		QtyReceived: form.Quantity,
		ExpiryDate:  expiry,
		BatchNumber: form.BatchNumber,
		LotNumber:   form.LotNumber,
		UnitCost:    form.UnitCost,
		Supplier:    form.Supplier,
		Ref:         form.Ref,
		ActorID:     form.ActorID,
	})
	if err != nil {
		h.logger.Error("inventory: add batch", slog.Int64("item_id", itemID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, h.toBatchResponse(batch))
}

func (h *Handler) handleListBatches(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	batches, err := h.service.ListBatches(r.Context(), itemID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"batches": h.batchList(batches)})
}

func (h *Handler) handleStockStatus(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	status, err := h.service.StockStatus(r.Context(), itemID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"item_id":       status.ItemID,
		"aggregate":     status.Aggregate,
		"minimum_stock": status.MinimumStock,
		"level":         string(status.Level),
	})
}

func (h *Handler) handleDebit(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var form debitForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, shared.NewValidationError("body", "must be valid JSON"))
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.RespondError(w, formError(err))
		return
	}
	allocations, err := h.service.Debit(r.Context(), DebitRequest{
		ItemID:   itemID,
		Quantity: form.Quantity,
		BatchID:  form.BatchID,
	}, form.ActorID)
	if err != nil {
		h.logger.Error("inventory: debit", slog.Int64("item_id", itemID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"allocations": allocations})
}

func (h *Handler) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	batchID, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	batch, err := h.service.GetBatch(r.Context(), batchID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, h.toBatchResponse(batch))
}

func (h *Handler) handleExpiring(w http.ResponseWriter, r *http.Request) {
	days := WarningWindowDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			httpx.RespondError(w, shared.NewValidationError("days", "must be a positive integer"))
			return
		}
		days = parsed
	}
	batches, err := h.service.ListExpiring(r.Context(), days)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"window_days": days, "batches": h.batchList(batches)})
}

func (h *Handler) handleExpired(w http.ResponseWriter, r *http.Request) {
	batches, err := h.service.ListExpired(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"batches": h.batchList(batches)})
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, shared.NewValidationError("id", "must be a positive integer")
	}
	return id, nil
}

func formError(err error) error {
	if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return shared.NewValidationError(fe.Field(), "failed rule "+fe.Tag())
	}
	return shared.NewValidationError("body", err.Error())
}
