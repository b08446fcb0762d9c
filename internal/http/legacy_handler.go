package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/avadhootsavle/hackispiration-hackathon/internal/domain"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/service"
)

// LegacyHandler serves the persistence contract clients sync against:
// raw records in, {record} / {inventory} / document out.
type LegacyHandler struct {
	mirror *service.Mirror
	logger *zap.Logger
}

func NewLegacyHandler(m *service.Mirror, logger *zap.Logger) *LegacyHandler {
	return &LegacyHandler{mirror: m, logger: logger}
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *LegacyHandler) State(w http.ResponseWriter, r *http.Request) {
	doc, err := h.mirror.State(r.Context())
	if err != nil {
		h.fail(w, "read state", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *LegacyHandler) AddInventory(w http.ResponseWriter, r *http.Request) {
	var rec domain.InventoryRecord
	if err := readBodyJSON(r, maxBodyBytes, &rec); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: msgBadJSON})
		return
	}
	saved, err := h.mirror.RecordInventory(r.Context(), rec)
	if err != nil {
		h.fail(w, "record inventory", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"record": saved})
}

func (h *LegacyHandler) AddRequest(w http.ResponseWriter, r *http.Request) {
	var rec domain.RequestRecord
	if err := readBodyJSON(r, maxBodyBytes, &rec); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: msgBadJSON})
		return
	}
	saved, err := h.mirror.RecordRequest(r.Context(), rec)
	if err != nil {
		h.fail(w, "record request", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"record": saved})
}

func (h *LegacyHandler) Consume(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
	}
	if err := readBodyJSON(r, maxBodyBytes, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: msgBadJSON})
		return
	}
	inventory, err := h.mirror.Consume(r.Context(), body.ID)
	if err != nil {
		h.fail(w, "consume", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"inventory": inventory})
}

func (h *LegacyHandler) AddSession(w http.ResponseWriter, r *http.Request) {
	var rec domain.SessionRecord
	if err := readBodyJSON(r, maxBodyBytes, &rec); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: msgBadJSON})
		return
	}
	saved, err := h.mirror.RecordSession(r.Context(), rec)
	if err != nil {
		h.fail(w, "record session", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"record": saved})
}

func (h *LegacyHandler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Error("legacy api: "+op+" failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: msgRetry})
}
