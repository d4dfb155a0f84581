package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/FarmState_Go/internal/domain"
)

// MockLedger mocks ledger.Service
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) CreateFarm(ctx context.Context, req domain.CreateFarmRequest) (*domain.Snapshot, error) {
	args := m.Called(ctx, req)
	snap, _ := args.Get(0).(*domain.Snapshot)
	return snap, args.Error(1)
}

func (m *MockLedger) Load(ctx context.Context, farmID string) (*domain.Snapshot, error) {
	args := m.Called(ctx, farmID)
	snap, _ := args.Get(0).(*domain.Snapshot)
	return snap, args.Error(1)
}

func (m *MockLedger) Sync(ctx context.Context, req domain.SyncRequest) (*domain.SyncResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*domain.SyncResponse)
	return resp, args.Error(1)
}

func (m *MockLedger) Execute(ctx context.Context, req domain.OperationRequest) (*domain.OperationResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*domain.OperationResponse)
	return resp, args.Error(1)
}

func (m *MockLedger) CreateListing(ctx context.Context, listing domain.Listing) (*domain.Listing, error) {
	args := m.Called(ctx, listing)
	l, _ := args.Get(0).(*domain.Listing)
	return l, args.Error(1)
}

func newRouter(svc *MockLedger) http.Handler {
	h := NewFarmHandlers(svc)
	r := chi.NewRouter()
	r.Post("/farms", h.HandleCreateFarm())
	r.Get("/farms/{farmID}", h.HandleGetFarm())
	r.Post("/farms/{farmID}/sync", h.HandleSync())
	r.Post("/farms/{farmID}/operations", h.HandleExecute())
	r.Post("/listings", h.HandleCreateListing())
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, path, &buf))
	return w
}

func decodeAPIError(t *testing.T, w *httptest.ResponseRecorder) domain.APIError {
	t.Helper()
	var apiErr domain.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	return apiErr
}

func validAction() domain.Action {
	return domain.Action{ID: "a1", Type: domain.ActionFruitPlanted, Payload: json.RawMessage(`{"index":"0","seed":"Apple Seed"}`)}
}

func TestHandleCreateFarm(t *testing.T) {
	svc := &MockLedger{}
	svc.On("CreateFarm", mock.Anything, mock.MatchedBy(func(req domain.CreateFarmRequest) bool { return req.FarmID == "farm-1" })).
		Return(&domain.Snapshot{FarmID: "farm-1"}, nil).Once()
	svc.On("CreateFarm", mock.Anything, mock.Anything).Return(nil, domain.ErrFarmExists).Once()
	r := newRouter(svc)

	w := do(t, r, http.MethodPost, "/farms", domain.CreateFarmRequest{FarmID: "farm-1"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = do(t, r, http.MethodPost, "/farms", domain.CreateFarmRequest{FarmID: "farm-1"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, ErrMsgFarmExists, decodeAPIError(t, w).Error)

	w = do(t, r, http.MethodPost, "/farms", domain.CreateFarmRequest{FarmID: "bad id"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertExpectations(t)
}

func TestHandleGetFarm(t *testing.T) {
	svc := &MockLedger{}
	svc.On("Load", mock.Anything, "farm-1").Return(&domain.Snapshot{FarmID: "farm-1", Version: 4}, nil)
	svc.On("Load", mock.Anything, "ghost").Return(nil, domain.ErrFarmNotFound)
	r := newRouter(svc)

	w := do(t, r, http.MethodGet, "/farms/farm-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, int64(4), snap.Version)

	w = do(t, r, http.MethodGet, "/farms/ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleSync_BindsPathFarmID(t *testing.T) {
	svc := &MockLedger{}
	svc.On("Sync", mock.Anything, mock.MatchedBy(func(req domain.SyncRequest) bool { return req.FarmID == "farm-1" })).
		Return(&domain.SyncResponse{Version: 2, Accepted: 1}, nil)
	r := newRouter(svc)

	w := do(t, r, http.MethodPost, "/farms/farm-1/sync", domain.SyncRequest{SessionID: "s1", Actions: []domain.Action{validAction()}, LastKnownVersion: 1})
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, "/farms/farm-1/sync", domain.SyncRequest{SessionID: "s1", FarmID: "farm-2"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, ErrMsgFarmIDMismatch, decodeAPIError(t, w).Error)

	w = do(t, r, http.MethodPost, "/farms/farm-1/sync", domain.SyncRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code, "session id is required")
	svc.AssertNumberOfCalls(t, "Sync", 1)
}

func TestHandleSync_RejectionStatuses(t *testing.T) {
	tests := []struct {
		reason domain.RejectionReason
		status int
	}{
		{domain.RejectStaleVersion, http.StatusConflict},
		{domain.RejectInvalidAction, http.StatusUnprocessableEntity},
		{domain.RejectRateLimited, http.StatusTooManyRequests},
		{domain.RejectHoarding, http.StatusForbidden},
		{domain.RejectSwarming, http.StatusForbidden},
		{domain.RejectUnauthorized, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(string(tt.reason), func(t *testing.T) {
			svc := &MockLedger{}
			svc.On("Sync", mock.Anything, mock.Anything).
				Return(nil, &domain.Rejection{Reason: tt.reason, Message: "no", ActionID: "a1"})

			w := do(t, newRouter(svc), http.MethodPost, "/farms/farm-1/sync", domain.SyncRequest{SessionID: "s1"})

			assert.Equal(t, tt.status, w.Code)
			apiErr := decodeAPIError(t, w)
			require.NotNil(t, apiErr.Rejection)
			assert.Equal(t, tt.reason, apiErr.Rejection.Reason)
			assert.Equal(t, "a1", apiErr.Rejection.ActionID)
		})
	}
}

func TestHandleSync_OversizedBatch(t *testing.T) {
	svc := &MockLedger{}
	svc.On("Sync", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: 600 actions, at most 500", domain.ErrBatchTooLarge))

	w := do(t, newRouter(svc), http.MethodPost, "/farms/farm-1/sync", domain.SyncRequest{SessionID: "s1"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	apiErr := decodeAPIError(t, w)
	assert.Equal(t, ErrMsgBatchTooLarge, apiErr.Error)
	assert.Nil(t, apiErr.Rejection)
}

func TestHandleExecute(t *testing.T) {
	svc := &MockLedger{}
	svc.On("Execute", mock.Anything, mock.MatchedBy(func(req domain.OperationRequest) bool { return req.Params.ListingID == "l1" })).
		Return(&domain.OperationResponse{Outcome: domain.OutcomeSniped, Version: 3}, nil)
	svc.On("Execute", mock.Anything, mock.Anything).Return(nil, domain.ErrListingNotFound)
	r := newRouter(svc)

	w := do(t, r, http.MethodPost, "/farms/farm-1/operations", domain.OperationRequest{
		SessionID: "s1", Kind: domain.OperationTrade, Params: domain.OperationParams{ListingID: "l1"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	var resp domain.OperationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, domain.OutcomeSniped, resp.Outcome)

	w = do(t, r, http.MethodPost, "/farms/farm-1/operations", domain.OperationRequest{
		SessionID: "s1", Kind: domain.OperationTrade, Params: domain.OperationParams{ListingID: "zz"},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodPost, "/farms/farm-1/operations", domain.OperationRequest{SessionID: "s1", Kind: "steal"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleCreateListing(t *testing.T) {
	svc := &MockLedger{}
	svc.On("CreateListing", mock.Anything, mock.Anything).Return(nil, domain.ErrInvalidAmount).Once()
	r := newRouter(svc)

	w := do(t, r, http.MethodPost, "/listings", domain.Listing{Item: "Apple"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/listings", domain.Listing{})
	assert.Equal(t, http.StatusBadRequest, w.Code, "item is required")
	svc.AssertNumberOfCalls(t, "CreateListing", 1)
}

func TestHandlers_MalformedBody(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter(&MockLedger{}).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/farms/farm-1/sync", bytes.NewBufferString("{")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, ErrMsgInvalidRequest, decodeAPIError(t, w).Error)
}

func TestMapServiceError_Unknown(t *testing.T) {
	status, body := mapServiceError(assert.AnError)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, ErrMsgGenericServerError, body.Error)
}
