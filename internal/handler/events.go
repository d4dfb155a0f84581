package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/osse101/FarmState_Go/internal/eventlog"
)

// QueryParamLimit caps the number of returned entries
const QueryParamLimit = "limit"

// HandleFarmEvents returns the newest audit log entries of a farm
// @Summary Farm audit history
// @Tags farms
// @Produce json
// @Param farmID path string true "Farm id"
// @Param limit query int false "Maximum entries, newest first"
// @Success 200 {array} eventlog.Entry
// @Failure 400 {object} domain.APIError "Invalid limit"
// @Security ApiKeyAuth
// @Router /api/v1/farms/{farmID}/events [get]
func HandleFarmEvents(svc eventlog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if raw := r.URL.Query().Get(QueryParamLimit); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				respondError(w, http.StatusBadRequest, ErrMsgInvalidLimit)
				return
			}
			limit = n
		}

		entries, err := svc.History(r.Context(), chi.URLParam(r, URLParamFarmID), limit)
		if err != nil {
			respondServiceError(w, r, err)
			return
		}
		if entries == nil {
			entries = []eventlog.Entry{}
		}
		respondJSON(w, http.StatusOK, entries)
	}
}
