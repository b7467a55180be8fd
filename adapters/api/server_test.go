package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poissonkit/app"
	"poissonkit/domain/report"
)

type memoryLedger struct {
	mu      sync.Mutex
	reports map[string]*report.BatteryReport
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{reports: make(map[string]*report.BatteryReport)}
}

func (l *memoryLedger) SaveReport(_ context.Context, r *report.BatteryReport) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reports[string(r.ID)] = r
	return nil
}

func (l *memoryLedger) GetReport(_ context.Context, id string) (*report.BatteryReport, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if r, ok := l.reports[id]; ok {
		return r, nil
	}
	return nil, assert.AnError
}

func (l *memoryLedger) ListReports(_ context.Context, limit int) ([]*report.BatteryReport, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*report.BatteryReport, 0, len(l.reports))
	for _, r := range l.reports {
		out = append(out, r)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

const batteryBody = `{
	"zones": [
		{
			"zone": "north",
			"events": [0.4, 1.1, 2.3, 2.9, 4.2, 5.8, 6.1, 7.7, 8.3, 9.5],
			"window": {"start": 0, "end": 10}
		},
		{
			"zone": "south",
			"events": [0.9, 1.8, 3.3, 4.1, 5.0, 6.6, 7.2, 8.8, 9.1, 9.9],
			"window": {"start": 0, "end": 10}
		}
	]
}`

func newTestServer(ledger *memoryLedger) *Server {
	if ledger == nil {
		return NewServer(app.NewBatteryService(nil), nil)
	}
	return NewServer(app.NewBatteryService(ledger), ledger)
}

func TestRunBattery(t *testing.T) {
	ledger := newMemoryLedger()
	srv := newTestServer(ledger)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/battery", strings.NewReader(batteryBody)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var rep report.BatteryReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.NotEmpty(t, rep.ID)
	assert.Len(t, rep.Zones, 2)
	assert.Len(t, rep.Combined, 4)

	// The run was persisted and is retrievable by id.
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/reports/"+string(rep.ID), nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRunBattery_BadJSON(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/battery", strings.NewReader("{not json")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunBattery_NoZones(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/battery", strings.NewReader(`{"zones": []}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunBattery_InvalidWindow(t *testing.T) {
	body := `{"zones": [{"zone": "x", "events": [1, 2], "window": {"start": 10, "end": 0}}]}`
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/battery", strings.NewReader(body)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp, "error")
}

func TestRunBattery_UnorderedCatalog(t *testing.T) {
	body := `{"zones": [{"zone": "x", "events": [5, 1], "window": {"start": 0, "end": 10}}]}`
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/battery", strings.NewReader(body)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestReportRoutesDisabledWithoutLedger(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/reports", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListReports(t *testing.T) {
	ledger := newMemoryLedger()
	srv := newTestServer(ledger)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/battery", strings.NewReader(batteryBody)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/reports", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var reports []*report.BatteryReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reports))
	assert.Len(t, reports, 1)
}
