package analytics

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/clinistock/clinistock/internal/clock"
)

func newTestRouter(snap *fakeSnapshot, clk clock.Clock) chi.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(snap, nil, clk)
	handler := NewHandler(logger, svc, clk)
	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r
}

// The default top-usage window must end on the provider's current date, so
// an operator-simulated date shifts the report window with it.
func TestTopUsageDefaultWindowFollowsClock(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	snap := &fakeSnapshot{totals: []UsageTotal{{ItemID: 1, TotalQuantity: 4, EventCount: 2}}}
	r := newTestRouter(snap, clock.Fixed(day))

	req := httptest.NewRequest(http.MethodGet, "/analytics/top-usage", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, day, snap.to)
	require.Equal(t, day.AddDate(0, 0, -30), snap.from)
}

func TestTopUsageExplicitWindow(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	snap := &fakeSnapshot{}
	r := newTestRouter(snap, clock.Fixed(day))

	req := httptest.NewRequest(http.MethodGet, "/analytics/top-usage?from=2025-01-01&to=2025-02-01", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), snap.from)
	require.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), snap.to)
}

func TestTopUsageRejectsBadWindow(t *testing.T) {
	r := newTestRouter(&fakeSnapshot{}, clock.Fixed(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)))

	req := httptest.NewRequest(http.MethodGet, "/analytics/top-usage?from=March", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}
