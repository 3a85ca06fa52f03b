package inventory

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/clinistock/clinistock/internal/clock"
)

func newTestRouter(t *testing.T) (chi.Router, *Service) {
	t.Helper()
	svc, _ := newTestService()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(logger, svc, clock.Fixed(testDay))
	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r, svc
}

func TestHandlerAddBatch(t *testing.T) {
	r, _ := newTestRouter(t)

	body, _ := json.Marshal(map[string]any{
		"quantity":    25,
		"expiry_date": "2025-06-01",
		"supplier":    "MedSupply",
	})
	req := httptest.NewRequest(http.MethodPost, "/items/1/batches", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var resp struct {
		ID           int64  `json:"id"`
		QtyRemaining int64  `json:"qty_remaining"`
		Risk         string `json:"risk"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, int64(25), resp.QtyRemaining)
	require.Equal(t, string(RiskOK), resp.Risk)
}

func TestHandlerAddBatchRejectsZeroQuantity(t *testing.T) {
	r, _ := newTestRouter(t)

	body, _ := json.Marshal(map[string]any{
		"quantity":    0,
		"expiry_date": "2025-06-01",
	})
	req := httptest.NewRequest(http.MethodPost, "/items/1/batches", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandlerStockStatus(t *testing.T) {
	r, svc := newTestRouter(t)
	addBatch(t, svc, 1, 5, testDay.AddDate(0, 2, 0))

	req := httptest.NewRequest(http.MethodGet, "/items/1/stock", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Aggregate int64  `json:"aggregate"`
		Level     string `json:"level"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, int64(5), resp.Aggregate)
	require.Equal(t, string(LevelLow), resp.Level)
}

func TestHandlerExpiringWindow(t *testing.T) {
	r, svc := newTestRouter(t)
	addBatch(t, svc, 1, 10, testDay.AddDate(0, 0, 5))
	addBatch(t, svc, 1, 10, testDay.AddDate(0, 0, 40))

	req := httptest.NewRequest(http.MethodGet, "/batches/expiring?days=7", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Batches []struct {
			Risk string `json:"risk"`
		} `json:"batches"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Batches, 1)
	require.Equal(t, string(RiskCritical), resp.Batches[0].Risk)
}

func TestHandlerExpiringRejectsBadDays(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/batches/expiring?days=zero", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}
