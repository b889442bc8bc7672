package handlers

import (
	"net/http"

	"github.com/Dosada05/bracket-engine/services"
)

type HostHandler struct {
	hostService services.HostService
}

func NewHostHandler(hs services.HostService) *HostHandler {
	return &HostHandler{hostService: hs}
}

// OpenHandler обрабатывает POST /guilds/{guildID}/hosts
func (h *HostHandler) OpenHandler(w http.ResponseWriter, r *http.Request) {
	guildID, _, ok := currentUser(w, r)
	if !ok {
		return
	}
	var input struct {
		Capacity int `json:"capacity"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.hostService.Open(r.Context(), guildID, input.Capacity); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeRoster(w, r, guildID, http.StatusCreated)
}

func (h *HostHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	guildID, _, ok := currentUser(w, r)
	if !ok {
		return
	}
	h.writeRoster(w, r, guildID, http.StatusOK)
}

func (h *HostHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	guildID, me, ok := currentUser(w, r)
	if !ok {
		return
	}
	if _, err := h.hostService.Register(r.Context(), guildID, me); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeRoster(w, r, guildID, http.StatusCreated)
}

func (h *HostHandler) UnregisterHandler(w http.ResponseWriter, r *http.Request) {
	guildID, me, ok := currentUser(w, r)
	if !ok {
		return
	}
	if _, err := h.hostService.Unregister(r.Context(), guildID, me.ID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeRoster(w, r, guildID, http.StatusOK)
}

func (h *HostHandler) writeRoster(w http.ResponseWriter, r *http.Request, guildID string, status int) {
	roster, err := h.hostService.Hosts(r.Context(), guildID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, status, jsonResponse{"hosts": roster}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
