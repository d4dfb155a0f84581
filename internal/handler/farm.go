package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/osse101/FarmState_Go/internal/domain"
	"github.com/osse101/FarmState_Go/internal/ledger"
	"github.com/osse101/FarmState_Go/internal/logger"
)

// URLParamFarmID is the chi route parameter holding the farm id
const URLParamFarmID = "farmID"

// FarmHandlers serves the ledger API
type FarmHandlers struct {
	svc ledger.Service
}

// NewFarmHandlers creates the ledger API handlers
func NewFarmHandlers(svc ledger.Service) *FarmHandlers {
	return &FarmHandlers{svc: svc}
}

// HandleCreateFarm registers a farm with its starting state
// @Summary Create a farm
// @Description Register a farm with its starting state at version 0
// @Tags farms
// @Accept json
// @Produce json
// @Param request body domain.CreateFarmRequest true "Farm id and starting state"
// @Success 201 {object} domain.Snapshot
// @Failure 400 {object} domain.APIError "Invalid request"
// @Failure 409 {object} domain.APIError "Farm already exists"
// @Security ApiKeyAuth
// @Router /api/v1/farms [post]
func (h *FarmHandlers) HandleCreateFarm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.CreateFarmRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Create farm"); err != nil {
			return
		}

		snap, err := h.svc.CreateFarm(r.Context(), req)
		if err != nil {
			respondServiceError(w, r, err)
			return
		}
		respondJSON(w, http.StatusCreated, snap)
	}
}

// HandleGetFarm returns the authoritative snapshot of a farm
// @Summary Load a farm
// @Tags farms
// @Produce json
// @Param farmID path string true "Farm id"
// @Success 200 {object} domain.Snapshot
// @Failure 404 {object} domain.APIError "Farm not found"
// @Security ApiKeyAuth
// @Router /api/v1/farms/{farmID} [get]
func (h *FarmHandlers) HandleGetFarm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := h.svc.Load(r.Context(), chi.URLParam(r, URLParamFarmID))
		if err != nil {
			respondServiceError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, snap)
	}
}

// HandleSync applies a batch of pending actions
// @Summary Sync pending actions
// @Description Replay queued actions in order. Action ids already applied are skipped.
// @Tags farms
// @Accept json
// @Produce json
// @Param farmID path string true "Farm id"
// @Param request body domain.SyncRequest true "Session, queued actions and last known version"
// @Success 200 {object} domain.SyncResponse
// @Failure 400 {object} domain.APIError "Invalid request or too many actions"
// @Failure 403 {object} domain.APIError "Hoarding or swarming"
// @Failure 404 {object} domain.APIError "Farm not found"
// @Failure 409 {object} domain.APIError "Stale version"
// @Failure 422 {object} domain.APIError "Invalid action"
// @Failure 429 {object} domain.APIError "Rate limited"
// @Security ApiKeyAuth
// @Router /api/v1/farms/{farmID}/sync [post]
func (h *FarmHandlers) HandleSync() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.SyncRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Sync"); err != nil {
			return
		}
		farmID, ok := bindFarmID(w, r, req.FarmID)
		if !ok {
			return
		}
		req.FarmID = farmID

		ctx := logger.WithSession(r.Context(), req.SessionID, farmID)
		resp, err := h.svc.Sync(ctx, req)
		if err != nil {
			respondServiceError(w, r.WithContext(ctx), err)
			return
		}
		respondJSON(w, http.StatusOK, resp)
	}
}

// HandleExecute runs a blocking operation after the submitted actions
// @Summary Run an operation
// @Description Apply queued actions, then purchase, mint, transact, trade or deposit, atomically
// @Tags farms
// @Accept json
// @Produce json
// @Param farmID path string true "Farm id"
// @Param request body domain.OperationRequest true "Operation with queued actions"
// @Success 200 {object} domain.OperationResponse
// @Failure 400 {object} domain.APIError "Invalid request"
// @Failure 404 {object} domain.APIError "Farm or listing not found"
// @Failure 409 {object} domain.APIError "Stale version"
// @Failure 422 {object} domain.APIError "Invalid action"
// @Security ApiKeyAuth
// @Router /api/v1/farms/{farmID}/operations [post]
func (h *FarmHandlers) HandleExecute() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.OperationRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Operation"); err != nil {
			return
		}
		farmID, ok := bindFarmID(w, r, req.FarmID)
		if !ok {
			return
		}
		req.FarmID = farmID

		ctx := logger.WithSession(r.Context(), req.SessionID, farmID)
		resp, err := h.svc.Execute(ctx, req)
		if err != nil {
			respondServiceError(w, r.WithContext(ctx), err)
			return
		}
		respondJSON(w, http.StatusOK, resp)
	}
}

// HandleCreateListing opens a marketplace listing
// @Summary Create a listing
// @Tags listings
// @Accept json
// @Produce json
// @Param request body domain.Listing true "Item, amount and price"
// @Success 201 {object} domain.Listing
// @Failure 400 {object} domain.APIError "Invalid amount"
// @Security ApiKeyAuth
// @Router /api/v1/listings [post]
func (h *FarmHandlers) HandleCreateListing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.Listing
		if err := DecodeAndValidateRequest(r, w, &req, "Create listing"); err != nil {
			return
		}

		listing, err := h.svc.CreateListing(r.Context(), req)
		if err != nil {
			respondServiceError(w, r, err)
			return
		}
		respondJSON(w, http.StatusCreated, listing)
	}
}

// bindFarmID takes the farm id from the path. A body naming another farm is refused.
func bindFarmID(w http.ResponseWriter, r *http.Request, bodyFarmID string) (string, bool) {
	farmID := chi.URLParam(r, URLParamFarmID)
	if bodyFarmID != "" && bodyFarmID != farmID {
		respondError(w, http.StatusBadRequest, ErrMsgFarmIDMismatch)
		return "", false
	}
	return farmID, true
}
