package usage

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/clinistock/clinistock/internal/inventory"
	"github.com/clinistock/clinistock/internal/platform/httpx"
	"github.com/clinistock/clinistock/internal/shared"
)

// Handler wires HTTP endpoints for usage logging.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers usage routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/usage", h.handleLog)
	r.Get("/usage", h.handleList)
}

type lineForm struct {
	ItemID   int64  `json:"item_id" validate:"gt=0"`
	Quantity int64  `json:"quantity" validate:"gt=0"`
	BatchID  *int64 `json:"batch_id"`
}

type usageForm struct {
	Date    string     `json:"date" validate:"required"`
	Items   []lineForm `json:"items" validate:"min=1,dive"`
	Notes   string     `json:"notes"`
	ActorID int64      `json:"actor_id"`
}

type lineResponse struct {
	ItemID      int64                  `json:"item_id"`
	Quantity    int64                  `json:"quantity"`
	BatchID     *int64                 `json:"batch_id,omitempty"`
	Allocations []inventory.Allocation `json:"allocations"`
}

type entryResponse struct {
	ID         int64          `json:"id"`
	Code       string         `json:"code"`
	UsageDate  string         `json:"usage_date"`
	Notes      string         `json:"notes,omitempty"`
	RecordedAt string         `json:"recorded_at"`
	RecordedBy int64          `json:"recorded_by"`
	Lines      []lineResponse `json:"lines"`
}

func toEntryResponse(entry Entry) entryResponse {
	lines := make([]lineResponse, 0, len(entry.Lines))
	for _, line := range entry.Lines {
		lines = append(lines, lineResponse{
			ItemID:      line.ItemID,
			Quantity:    line.Quantity,
			BatchID:     line.BatchID,
			Allocations: line.Allocations,
		})
	}
	return entryResponse{
		ID:         entry.ID,
		Code:       entry.Code,
		UsageDate:  entry.UsageDate.Format("2006-01-02"),
		Notes:      entry.Notes,
		RecordedAt: entry.RecordedAt.Format(time.RFC3339),
		RecordedBy: entry.RecordedBy,
		Lines:      lines,
	}
}

func (h *Handler) handleLog(w http.ResponseWriter, r *http.Request) {
	var form usageForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, shared.NewValidationError("body", "must be valid JSON"))
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.RespondError(w, formError(err))
		return
	}
	usageDate, err := time.Parse("2006-01-02", form.Date)
	if err != nil {
		httpx.RespondError(w, shared.NewValidationError("date", "must be YYYY-MM-DD"))
		return
	}
	lines := make([]LineInput, 0, len(form.Items))
	for _, item := range form.Items {
		lines = append(lines, LineInput{ItemID: item.ItemID, Quantity: item.Quantity, BatchID: item.BatchID})
	}
	entry, err := h.service.LogUsage(r.Context(), LogInput{
		Date:    usageDate,
		Lines:   lines,
		Notes:   form.Notes,
		ActorID: form.ActorID,
	})
	if err != nil {
		h.logger.Error("usage: log entry", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toEntryResponse(entry))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{Limit: 100}
	if raw := q.Get("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.RespondError(w, shared.NewValidationError("from", "must be YYYY-MM-DD"))
			return
		}
		filter.From = parsed
	}
	if raw := q.Get("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.RespondError(w, shared.NewValidationError("to", "must be YYYY-MM-DD"))
			return
		}
		filter.To = parsed
	}
	if raw := q.Get("item_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.RespondError(w, shared.NewValidationError("item_id", "must be an integer"))
			return
		}
		filter.ItemID = id
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			httpx.RespondError(w, shared.NewValidationError("limit", "must be a positive integer"))
			return
		}
		filter.Limit = limit
	}
	entries, err := h.service.ListEntries(r.Context(), filter)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out := make([]entryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, toEntryResponse(entry))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": out})
}

func formError(err error) error {
	if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return shared.NewValidationError(fe.Field(), "failed rule "+fe.Tag())
	}
	return shared.NewValidationError("body", err.Error())
}
