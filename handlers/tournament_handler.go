package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Dosada05/bracket-engine/models"
	"github.com/Dosada05/bracket-engine/services"
)

const (
	maxFillersPerRequest = 10
	publishTimeout       = 30 * time.Second
)

type TournamentHandler struct {
	tournamentService services.TournamentService
	resultService     services.ResultService
	publisher         *publisher
	logger            *slog.Logger
}

func NewTournamentHandler(ts services.TournamentService, rs services.ResultService, logger *slog.Logger) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: ts,
		resultService:     rs,
		publisher:         newPublisher(logger),
		logger:            logger,
	}
}

type configureTournamentInput struct {
	Mode      models.Mode `json:"mode"`
	Capacity  int         `json:"capacity"`
	Title     string      `json:"title"`
	Map       string      `json:"map"`
	Abilities string      `json:"abilities"`
	Prizes    [4]string   `json:"prizes"`
}

func (in configureTournamentInput) validate() map[string]string {
	problems := make(map[string]string)
	if !in.Mode.Valid() {
		problems["mode"] = fmt.Sprintf("must be %q or %q", models.ModeOneVsOne, models.ModeTwoVsTwo)
	} else if !models.IsValidCapacity(in.Mode, in.Capacity) {
		problems["capacity"] = fmt.Sprintf("must be one of %v for %s", models.ValidCapacities(in.Mode), in.Mode)
	}
	if in.Title == "" {
		problems["title"] = "must be provided"
	}
	return problems
}

// GetHandler обрабатывает GET /guilds/{guildID}/tournament
func (h *TournamentHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	guildID, _, ok := currentUser(w, r)
	if !ok {
		return
	}
	t, err := h.tournamentService.Tournament(r.Context(), guildID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	resp := jsonResponse{"tournament": t, "status": t.Status(), "filled": t.Filled()}
	if err := writeJSON(w, http.StatusOK, resp, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ConfigureHandler обрабатывает PUT /guilds/{guildID}/tournament
func (h *TournamentHandler) ConfigureHandler(w http.ResponseWriter, r *http.Request) {
	guildID, _, ok := currentUser(w, r)
	if !ok {
		return
	}

	var input configureTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if problems := input.validate(); len(problems) > 0 {
		failedValidationResponse(w, r, problems)
		return
	}

	details := models.Details{
		Title:     input.Title,
		Map:       input.Map,
		Abilities: input.Abilities,
		Prizes:    input.Prizes,
	}
	t, err := h.tournamentService.Configure(r.Context(), guildID, input.Mode, input.Capacity, details)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": t}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ResetHandler обрабатывает DELETE /guilds/{guildID}/tournament
func (h *TournamentHandler) ResetHandler(w http.ResponseWriter, r *http.Request) {
	guildID, _, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.tournamentService.Reset(r.Context(), guildID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TournamentHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	guildID, player, ok := currentUser(w, r)
	if !ok {
		return
	}
	filled, err := h.tournamentService.Register(r.Context(), guildID, player)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"filled": filled}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) UnregisterHandler(w http.ResponseWriter, r *http.Request) {
	guildID, player, ok := currentUser(w, r)
	if !ok {
		return
	}
	filled, err := h.tournamentService.Unregister(r.Context(), guildID, player)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"filled": filled}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AddFillersHandler обрабатывает POST /guilds/{guildID}/tournament/fillers
func (h *TournamentHandler) AddFillersHandler(w http.ResponseWriter, r *http.Request) {
	guildID, _, ok := currentUser(w, r)
	if !ok {
		return
	}

	var input struct {
		Count int `json:"count"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Count < 1 || input.Count > maxFillersPerRequest {
		failedValidationResponse(w, r, map[string]string{
			"count": fmt.Sprintf("must be between 1 and %d", maxFillersPerRequest),
		})
		return
	}

	added, err := h.tournamentService.AddFillers(r.Context(), guildID, input.Count)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"added": added}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StartHandler обрабатывает POST /guilds/{guildID}/tournament/start
func (h *TournamentHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	guildID, _, ok := currentUser(w, r)
	if !ok {
		return
	}
	t, err := h.tournamentService.Start(r.Context(), guildID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": t}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}

	h.publish(guildID, func(ctx context.Context) error {
		return h.resultService.PublishStart(ctx, guildID, t)
	})
}

// RecordWinnerHandler обрабатывает POST /guilds/{guildID}/tournament/winners
func (h *TournamentHandler) RecordWinnerHandler(w http.ResponseWriter, r *http.Request) {
	guildID, _, ok := currentUser(w, r)
	if !ok {
		return
	}

	var input struct {
		UserID string `json:"user_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.UserID == "" {
		badRequestResponse(w, r, errors.New("user_id must be provided"))
		return
	}

	outcome, err := h.tournamentService.RecordWinner(r.Context(), guildID, input.UserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"outcome": outcome}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}

	h.publish(guildID, func(ctx context.Context) error {
		return h.resultService.PublishOutcome(ctx, guildID, outcome)
	})
}

// publish hands the update to the guild's background queue. The bracket already moved on, so failures are only logged.
func (h *TournamentHandler) publish(guildID string, fn func(ctx context.Context) error) {
	h.publisher.enqueue(guildID, func(ctx context.Context) {
		if err := fn(ctx); err != nil {
			h.logger.Error("failed to publish tournament update", "guild", guildID, "error", err)
		}
	})
}

// Close waits for queued publications to finish. Later updates are published inline.
func (h *TournamentHandler) Close() {
	h.publisher.close()
}
