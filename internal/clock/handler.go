package clock

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clinistock/clinistock/internal/platform/httpx"
	"github.com/clinistock/clinistock/internal/shared"
)

// Handler exposes the simulated-date controls. These exist for exercising
// expiry behaviour in demos and tests; real deployments leave the override
// unset and run on system time.
type Handler struct {
	logger   *slog.Logger
	provider *Provider
}

func NewHandler(logger *slog.Logger, provider *Provider) *Handler {
	return &Handler{logger: logger, provider: provider}
}

// MountRoutes registers clock routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/clock", h.handleGet)
	r.Put("/clock", h.handleSet)
	r.Delete("/clock", h.handleClear)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	simulated, active := h.provider.Simulated()
	resp := map[string]any{
		"today":     h.provider.Today().Format("2006-01-02"),
		"simulated": active,
	}
	if active {
		resp["override"] = simulated.Format("2006-01-02")
	}
	httpx.JSON(w, http.StatusOK, resp)
}

type clockForm struct {
	Date string `json:"date"`
}

func (h *Handler) handleSet(w http.ResponseWriter, r *http.Request) {
	var form clockForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, shared.NewValidationError("body", "must be valid JSON"))
		return
	}
	parsed, err := time.Parse("2006-01-02", form.Date)
	if err != nil {
		httpx.RespondError(w, shared.NewValidationError("date", "must be YYYY-MM-DD"))
		return
	}
	h.provider.Set(r.Context(), parsed)
	h.logger.Info("clock override set", slog.String("date", form.Date))
	httpx.JSON(w, http.StatusOK, map[string]any{
		"today":     h.provider.Today().Format("2006-01-02"),
		"simulated": true,
	})
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	h.provider.Clear(r.Context())
	h.logger.Info("clock override cleared")
	httpx.JSON(w, http.StatusOK, map[string]any{
		"today":     h.provider.Today().Format("2006-01-02"),
		"simulated": false,
	})
}
