package disposal

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clinistock/clinistock/internal/inventory"
	"github.com/clinistock/clinistock/internal/platform/httpx"
	"github.com/clinistock/clinistock/internal/shared"
)

// Handler wires HTTP endpoints for the disposal workflow.
type Handler struct {
	logger  *slog.Logger
	manager *Manager
	ledger  *inventory.Service
}

func NewHandler(logger *slog.Logger, manager *Manager, ledger *inventory.Service) *Handler {
	return &Handler{logger: logger, manager: manager, ledger: ledger}
}

// MountRoutes registers disposal routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/disposals/target", h.handleTarget)
	r.Post("/disposals/cancel", h.handleCancel)
	r.Get("/disposals/status/{id}", h.handleStatus)
	r.Get("/disposals", h.handleList)
}

type targetForm struct {
	BatchID int64 `json:"batch_id"`
	ActorID int64 `json:"actor_id"`
}

func (h *Handler) handleTarget(w http.ResponseWriter, r *http.Request) {
	var form targetForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, shared.NewValidationError("body", "must be valid JSON"))
		return
	}
	if form.BatchID < 1 {
		httpx.RespondError(w, shared.NewValidationError("batch_id", "must be a positive integer"))
		return
	}
	if _, err := h.manager.Target(r.Context(), form.BatchID, form.ActorID); err != nil {
		h.logger.Warn("disposal: target rejected", slog.Int64("batch_id", form.BatchID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	state, remaining := h.manager.Status(form.BatchID)
	httpx.JSON(w, http.StatusAccepted, map[string]any{
		"batch_id":          form.BatchID,
		"state":             string(state),
		"seconds_remaining": int(remaining.Round(time.Second).Seconds()),
	})
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	var form targetForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, shared.NewValidationError("body", "must be valid JSON"))
		return
	}
	if err := h.manager.Cancel(form.BatchID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"batch_id": form.BatchID,
		"state":    string(StateCancelled),
	})
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	batchID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.NewValidationError("id", "must be an integer"))
		return
	}
	state, remaining := h.manager.Status(batchID)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"batch_id":          batchID,
		"state":             string(state),
		"seconds_remaining": int(remaining.Round(time.Second).Seconds()),
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			httpx.RespondError(w, shared.NewValidationError("limit", "must be a positive integer"))
			return
		}
		limit = parsed
	}
	records, err := h.ledger.ListDisposals(r.Context(), limit)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		out = append(out, map[string]any{
			"id":            rec.ID,
			"code":          rec.Code,
			"batch_id":      rec.BatchID,
			"item_id":       rec.ItemID,
			"batch_number":  rec.BatchNumber,
			"lot_number":    rec.LotNumber,
			"qty_remaining": rec.QtyRemaining,
			"expiry_date":   rec.ExpiryDate.Format("2006-01-02"),
			"unit_cost":     rec.UnitCost,
			"supplier":      rec.Supplier,
			"reason":        rec.Reason,
			"disposed_at":   rec.DisposedAt.Format(time.RFC3339),
			"disposed_by":   rec.DisposedBy,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"disposals": out})
}
