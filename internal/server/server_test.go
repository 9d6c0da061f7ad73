package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/alert"
	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/cache"
	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/engine"
	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/ledger"
	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/model"
	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/recorder"
	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/registry"
	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/retry"
)

func newTestServer(t *testing.T, mock *ledger.Mock, snapshotMaxAge time.Duration) *Server {
	t.Helper()
	reg, err := registry.New([]model.AssetDescriptor{
		{Symbol: "LYNX", LedgerID: "0.0.1", Decimals: 8},
		{Symbol: "HBAR", LedgerID: "0.0.2", Decimals: 8},
	}, "LYNX")
	require.NoError(t, err)
	bc := cache.New(mock, zerolog.Nop())
	orch := engine.NewOrchestrator(reg, bc, mock, recorder.NewNoopRecorder(), 5, zerolog.Nop())
	lane := engine.NewLane(orch, retry.New(time.Millisecond, time.Millisecond), zerolog.Nop())
	gate := alert.NewGate(alert.NewMemoryLedger(0), 0, zerolog.Nop())
	return New(Config{
		Port:           8080,
		Log:            zerolog.Nop(),
		Cache:          bc,
		Lane:           lane,
		Gate:           gate,
		Recorder:       recorder.NewNoopRecorder(),
		SnapshotMaxAge: snapshotMaxAge,
	})
}

func get(srv *Server, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestHandleSnapshot_RefreshesColdCache(t *testing.T) {
	mock := ledger.NewMock()
	srv := newTestServer(t, mock, time.Minute)

	// The read path alone must be able to populate the cache.
	rr := get(srv, "/api/snapshot")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, mock.BalanceCallCount())

	// A fresh snapshot is served without another ledger round trip.
	rr = get(srv, "/api/snapshot")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, mock.BalanceCallCount())
}

func TestHandleSnapshot_NoSnapshotObtainable(t *testing.T) {
	mock := ledger.NewMock()
	mock.SetQueryErr(errors.New("rpc down"))
	srv := newTestServer(t, mock, time.Minute)

	rr := get(srv, "/api/snapshot")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleSnapshot_ServesStaleOnRefreshFailure(t *testing.T) {
	mock := ledger.NewMock()
	// Nanosecond bound forces a refresh attempt on every request.
	srv := newTestServer(t, mock, time.Nanosecond)

	rr := get(srv, "/api/snapshot")
	require.Equal(t, http.StatusOK, rr.Code)

	mock.SetQueryErr(errors.New("rpc down"))
	rr = get(srv, "/api/snapshot")
	assert.Equal(t, http.StatusOK, rr.Code, "stale snapshot still served")
}

func TestHandleRebalance_QueuesManualCycle(t *testing.T) {
	mock := ledger.NewMock()
	srv := newTestServer(t, mock, time.Minute)

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/rebalance", nil))
	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.JSONEq(t, `{"queued": true}`, rr.Body.String())
}

func TestHandleAlert_AdmitsAndReportsDecision(t *testing.T) {
	mock := ledger.NewMock()
	srv := newTestServer(t, mock, time.Minute)

	body, err := json.Marshal(model.AlertRecord{
		Kind:               model.AlertRatioChange,
		EffectiveTimestamp: time.Now(),
		Payload:            "HBAR weight 40 -> 45",
	})
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/alerts", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rr.Code)

	var out struct {
		Admitted bool   `json:"admitted"`
		Reason   string `json:"reason"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.True(t, out.Admitted)
	assert.Empty(t, out.Reason)

	// The duplicate delivery is dropped.
	rr = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/alerts", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.False(t, out.Admitted)
	assert.Equal(t, "duplicate delivery", out.Reason)
}
