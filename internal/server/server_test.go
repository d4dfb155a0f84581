package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/FarmState_Go/internal/catalog"
	"github.com/osse101/FarmState_Go/internal/dispatcher"
	"github.com/osse101/FarmState_Go/internal/domain"
	"github.com/osse101/FarmState_Go/internal/event"
	"github.com/osse101/FarmState_Go/internal/eventlog"
	"github.com/osse101/FarmState_Go/internal/features"
	"github.com/osse101/FarmState_Go/internal/ledger"
	"github.com/osse101/FarmState_Go/internal/reducer"
)

const testAPIKey = "test-key"

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	engine := reducer.NewEngine(catalog.MustDefault())
	d := dispatcher.New(reducer.NewDefaultRegistry(engine), features.New(features.TestnetNetwork))
	bus := event.NewMemoryBus()
	events := eventlog.NewService(eventlog.NewMemoryRepository())
	require.NoError(t, events.Subscribe(bus))
	svc := ledger.NewService(ledger.NewFakeRepository(), d, bus, ledger.Config{})
	return NewServer(Config{APIKey: testAPIKey}, Deps{Ledger: svc, EventLog: events}).Handler()
}

func call(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(HeaderAPIKey, testAPIKey)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_FarmLifecycle(t *testing.T) {
	h := newTestServer(t)

	state := domain.GameState{
		Balance:   decimal.NewFromInt(10),
		Inventory: domain.Inventory{"Apple Seed": decimal.NewFromInt(2)},
		Buildings: map[string][]domain.Placement{"Town Center": {{ID: "tc"}}},
		FruitPatches: map[int]domain.FruitPatch{
			0: {Width: 2, Height: 2},
		},
		Bumpkin: &domain.Bumpkin{Experience: 10},
	}

	rec := call(t, h, http.MethodPost, "/api/v1/farms", domain.CreateFarmRequest{FarmID: "f1", State: state})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = call(t, h, http.MethodGet, "/api/v1/farms/f1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "f1", snap.FarmID)

	action := domain.MustAction(domain.ActionFruitPlanted, time.Now(), domain.PlantFruitAction{Index: "0", Seed: "Apple Seed"})
	rec = call(t, h, http.MethodPost, "/api/v1/farms/f1/sync", domain.SyncRequest{
		SessionID: "s1", Actions: []domain.Action{action}, LastKnownVersion: snap.Version,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp domain.SyncResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, snap.Version+1, resp.Version)
	assert.Equal(t, 1, resp.Accepted)

	// A batch built on the old version is stale
	other := domain.MustAction(domain.ActionFruitPlanted, time.Now(), domain.PlantFruitAction{Index: "0", Seed: "Apple Seed"})
	rec = call(t, h, http.MethodPost, "/api/v1/farms/f1/sync", domain.SyncRequest{
		SessionID: "s1", Actions: []domain.Action{other}, LastKnownVersion: snap.Version,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = call(t, h, http.MethodGet, "/api/v1/farms/f1/events", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []eventlog.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, string(event.LedgerBatchRejected), entries[0].EventType)

	// A second device on the same farm is refused while s1 is active
	rec = call(t, h, http.MethodPost, "/api/v1/farms/f1/sync", domain.SyncRequest{SessionID: "s2", LastKnownVersion: resp.Version})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestServer_RoutesAndAuth(t *testing.T) {
	h := newTestServer(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/farms/f1", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = call(t, h, http.MethodGet, "/api/v1/farms/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, "nosniff", rec.Header().Get(HeaderContentType))
}

func TestServer_SwaggerDocs(t *testing.T) {
	h := newTestServer(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var doc struct {
		Swagger string                     `json:"swagger"`
		Paths   map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "2.0", doc.Swagger)
	assert.Contains(t, doc.Paths, "/api/v1/farms/{farmID}/sync")
	assert.Contains(t, doc.Paths, "/api/v1/farms/{farmID}/operations")
}

func TestServer_RequestSizeLimit(t *testing.T) {
	engine := reducer.NewEngine(catalog.MustDefault())
	d := dispatcher.New(reducer.NewDefaultRegistry(engine), features.New(features.TestnetNetwork))
	h := NewServer(Config{MaxBodyBytes: 64}, Deps{Ledger: ledger.NewService(ledger.NewFakeRepository(), d, nil, ledger.Config{})}).Handler()

	body := bytes.NewBufferString(`{"farmId":"f1","state":{"balance":"` + string(bytes.Repeat([]byte("1"), 200)) + `"}}`)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/farms", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
