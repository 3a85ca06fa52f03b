package catalog

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/clinistock/clinistock/internal/platform/httpx"
	"github.com/clinistock/clinistock/internal/shared"
)

// Handler wires HTTP endpoints for catalog administration.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs catalog handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/items", h.handleList)
	r.Post("/items", h.handleCreate)
	r.Get("/items/{id}", h.handleGet)
	r.Put("/items/{id}", h.handleUpdate)
}

type itemForm struct {
	Code         string  `json:"code" validate:"required"`
	Name         string  `json:"name" validate:"required"`
	Kind         string  `json:"kind" validate:"required,oneof=VACCINE MEDICATION SUPPLY"`
	Category     string  `json:"category"`
	Unit         string  `json:"unit" validate:"required"`
	MinimumStock int64   `json:"minimum_stock" validate:"gte=0"`
	UnitCost     float64 `json:"unit_cost" validate:"gte=0"`
	Manufacturer string  `json:"manufacturer"`
	DosageForm   string  `json:"dosage_form"`
	StorageTemp  string  `json:"storage_temp"`
	IsActive     *bool   `json:"is_active"`
}

func (f itemForm) toItem() Item {
	active := true
	if f.IsActive != nil {
		active = *f.IsActive
	}
	return Item{
		Code:         f.Code,
		Name:         f.Name,
		Kind:         Kind(f.Kind),
		Category:     f.Category,
		Unit:         f.Unit,
		MinimumStock: f.MinimumStock,
		UnitCost:     f.UnitCost,
		Manufacturer: f.Manufacturer,
		DosageForm:   f.DosageForm,
		StorageTemp:  f.StorageTemp,
		IsActive:     active,
	}
}

type itemResponse struct {
	ID           int64   `json:"id"`
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Kind         string  `json:"kind"`
	Category     string  `json:"category"`
	Unit         string  `json:"unit"`
	MinimumStock int64   `json:"minimum_stock"`
	UnitCost     float64 `json:"unit_cost"`
	Manufacturer string  `json:"manufacturer,omitempty"`
	DosageForm   string  `json:"dosage_form,omitempty"`
	StorageTemp  string  `json:"storage_temp,omitempty"`
	IsActive     bool    `json:"is_active"`
}

func toItemResponse(item Item) itemResponse {
	return itemResponse{
		ID:           item.ID,
		Code:         item.Code,
		Name:         item.Name,
		Kind:         string(item.Kind),
		Category:     item.Category,
		Unit:         item.Unit,
		MinimumStock: item.MinimumStock,
		UnitCost:     item.UnitCost,
		Manufacturer: item.Manufacturer,
		DosageForm:   item.DosageForm,
		StorageTemp:  item.StorageTemp,
		IsActive:     item.IsActive,
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = 50
	}
	filters := ListFilters{
		Kind:     Kind(q.Get("kind")),
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Page:     page,
		Limit:    limit,
	}
	if raw := q.Get("active"); raw != "" {
		active := raw == "true" || raw == "1"
		filters.IsActive = &active
	}
	items, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("catalog: list items", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]itemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toItemResponse(item))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": out, "total": total})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.NewValidationError("id", "must be an integer"))
		return
	}
	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toItemResponse(item))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var form itemForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, shared.NewValidationError("body", "must be valid JSON"))
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.RespondError(w, formError(err))
		return
	}
	item, err := h.service.Create(r.Context(), form.toItem())
	if err != nil {
		h.logger.Error("catalog: create item", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toItemResponse(item))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.NewValidationError("id", "must be an integer"))
		return
	}
	var form itemForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, shared.NewValidationError("body", "must be valid JSON"))
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.RespondError(w, formError(err))
		return
	}
	if err := h.service.Update(r.Context(), id, form.toItem()); err != nil {
		httpx.RespondError(w, err)
		return
	}
	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toItemResponse(item))
}

func formError(err error) error {
	if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return shared.NewValidationError(fe.Field(), "failed rule "+fe.Tag())
	}
	return shared.NewValidationError("body", err.Error())
}
