package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/bracket-engine/services"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type ResultHandler struct {
	resultService services.ResultService
}

func NewResultHandler(rs services.ResultService) *ResultHandler {
	return &ResultHandler{resultService: rs}
}

// ListHandler обрабатывает GET /guilds/{guildID}/results?limit=&winner=
func (h *ResultHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	guildID, _, ok := currentUser(w, r)
	if !ok {
		return
	}
	limit, err := queryInt(r, "limit", services.DefaultHistoryLimit)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	results, err := h.resultService.History(r.Context(), guildID, r.URL.Query().Get("winner"), limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"results": results}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ResultHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	guildID, _, ok := currentUser(w, r)
	if !ok {
		return
	}
	runID, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		badRequestResponse(w, r, errors.New("invalid run id"))
		return
	}

	result, err := h.resultService.Get(r.Context(), runID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if result.TenantID != guildID {
		notFoundResponse(w, r, "the requested resource could not be found")
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ResultHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	guildID, _, ok := currentUser(w, r)
	if !ok {
		return
	}
	runID, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		badRequestResponse(w, r, errors.New("invalid run id"))
		return
	}
	if err := h.resultService.Delete(r.Context(), guildID, runID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
