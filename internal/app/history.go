// internal/app/history.go
package app

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/TokenRevolution/FCOtoken/internal/storage"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// historyAPI serves the persisted transfer and distribution records over
// HTTP, next to the metrics endpoint.
type historyAPI struct {
	store  storage.Storage
	logger *zap.Logger
}

func newHistoryAPI(store storage.Storage, logger *zap.Logger) *historyAPI {
	return &historyAPI{store: store, logger: logger.Named("history")}
}

func (h *historyAPI) register(mux *http.ServeMux) {
	mux.HandleFunc("/history/transfers", h.handleTransfers)
	mux.HandleFunc("/history/distributions", h.handleDistributions)
}

func (h *historyAPI) handleTransfers(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if address == "" {
		http.Error(w, "address parameter is required", http.StatusBadRequest)
		return
	}
	limit, offset := pagination(r)

	recs, err := h.store.ListTransfers(r.Context(), address, limit, offset)
	if err != nil {
		h.logger.Error("Transfer history query failed", zap.String("address", address), zap.Error(err))
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, recs)
}

func (h *historyAPI) handleDistributions(w http.ResponseWriter, r *http.Request) {
	recipient := r.URL.Query().Get("recipient")
	if recipient == "" {
		http.Error(w, "recipient parameter is required", http.StatusBadRequest)
		return
	}
	limit, offset := pagination(r)

	recs, err := h.store.ListDistributions(r.Context(), recipient, limit, offset)
	if err != nil {
		h.logger.Error("Distribution history query failed", zap.String("recipient", recipient), zap.Error(err))
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, recs)
}

func pagination(r *http.Request) (limit, offset int) {
	limit = defaultHistoryLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
