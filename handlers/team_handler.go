package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/bracket-engine/models"
	"github.com/Dosada05/bracket-engine/services"
	"github.com/go-chi/chi/v5"
)

type TeamHandler struct {
	teamService services.TeamService
}

func NewTeamHandler(ts services.TeamService) *TeamHandler {
	return &TeamHandler{teamService: ts}
}

type inviteInput struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

// InviteHandler обрабатывает POST /guilds/{guildID}/teams/invitations
func (h *TeamHandler) InviteHandler(w http.ResponseWriter, r *http.Request) {
	guildID, inviter, ok := currentUser(w, r)
	if !ok {
		return
	}

	var input inviteInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.UserID == "" {
		badRequestResponse(w, r, errors.New("user_id must be provided"))
		return
	}

	invitee := models.NewPlayer(input.UserID, input.Name)
	if err := h.teamService.Invite(r.Context(), guildID, inviter, invitee); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"invitee": invitee}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeamHandler) ListInvitationsHandler(w http.ResponseWriter, r *http.Request) {
	guildID, me, ok := currentUser(w, r)
	if !ok {
		return
	}
	pending, err := h.teamService.PendingInvitations(r.Context(), guildID, me.ID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"invitations": pending}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AcceptHandler обрабатывает POST /guilds/{guildID}/teams/invitations/{inviterID}/accept
func (h *TeamHandler) AcceptHandler(w http.ResponseWriter, r *http.Request) {
	guildID, me, ok := currentUser(w, r)
	if !ok {
		return
	}
	team, err := h.teamService.Accept(r.Context(), guildID, chi.URLParam(r, "inviterID"), me)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeamHandler) DeclineHandler(w http.ResponseWriter, r *http.Request) {
	guildID, me, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.teamService.Decline(r.Context(), guildID, chi.URLParam(r, "inviterID"), me.ID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TeamHandler) TeammateHandler(w http.ResponseWriter, r *http.Request) {
	guildID, me, ok := currentUser(w, r)
	if !ok {
		return
	}
	team, err := h.teamService.TeamOf(r.Context(), guildID, me.ID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	mate, _ := team.Teammate(me.ID)
	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team, "teammate": mate}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// LeaveHandler обрабатывает DELETE /guilds/{guildID}/teams/membership
func (h *TeamHandler) LeaveHandler(w http.ResponseWriter, r *http.Request) {
	guildID, me, ok := currentUser(w, r)
	if !ok {
		return
	}
	freed, err := h.teamService.Leave(r.Context(), guildID, me.ID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"former_teammate": freed}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
