package analytics

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clinistock/clinistock/internal/catalog"
	"github.com/clinistock/clinistock/internal/clock"
	"github.com/clinistock/clinistock/internal/platform/httpx"
	"github.com/clinistock/clinistock/internal/shared"
)

// Handler exposes the reporting endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	clk     clock.Clock
}

func NewHandler(logger *slog.Logger, service *Service, clk clock.Clock) *Handler {
	if clk == nil {
		clk = clock.System{}
	}
	return &Handler{logger: logger, service: service, clk: clk}
}

// MountRoutes registers analytics routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/analytics/distribution", h.handleDistribution)
	r.Get("/analytics/top-usage", h.handleTopUsage)
	r.Get("/analytics/trend", h.handleTrend)
}

func (h *Handler) handleDistribution(w http.ResponseWriter, r *http.Request) {
	kind := catalog.Kind(r.URL.Query().Get("kind"))
	slices, err := h.service.CategoryDistribution(r.Context(), kind)
	if err != nil {
		h.logger.Error("analytics: distribution", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"distribution": slices})
}

func (h *Handler) handleTopUsage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	n := 10
	if raw := q.Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			httpx.RespondError(w, shared.NewValidationError("n", "must be an integer"))
			return
		}
		n = parsed
	}
	from, to, err := parseWindow(h.clk.Now(), q.Get("from"), q.Get("to"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	ranked, err := h.service.TopUsage(r.Context(), n, from, to)
	if err != nil {
		h.logger.Error("analytics: top usage", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": ranked})
}

func (h *Handler) handleTrend(w http.ResponseWriter, r *http.Request) {
	bucket, err := ParseBucket(r.URL.Query().Get("bucket"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	points, err := h.service.Trend(r.Context(), bucket)
	if err != nil {
		h.logger.Error("analytics: trend", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"bucket": string(bucket), "points": points})
}

// parseWindow interprets from/to as YYYY-MM-DD dates; missing values
// default to the last 30 days ending on the provider's current date.
func parseWindow(now time.Time, rawFrom, rawTo string) (time.Time, time.Time, error) {
	to := now.UTC()
	from := to.AddDate(0, 0, -30)
	if rawFrom != "" {
		parsed, err := time.Parse("2006-01-02", rawFrom)
		if err != nil {
			return time.Time{}, time.Time{}, shared.NewValidationError("from", "must be YYYY-MM-DD")
		}
		from = parsed
	}
	if rawTo != "" {
		parsed, err := time.Parse("2006-01-02", rawTo)
		if err != nil {
			return time.Time{}, time.Time{}, shared.NewValidationError("to", "must be YYYY-MM-DD")
		}
		to = parsed
	}
	return from, to, nil
}
