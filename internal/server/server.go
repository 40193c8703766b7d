package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/hoopcrest/hoopcrest/internal/catalog"
	"github.com/hoopcrest/hoopcrest/internal/domain"
	"github.com/hoopcrest/hoopcrest/internal/packs"
	"github.com/hoopcrest/hoopcrest/internal/service"
)

// Server is the JSON surface over sessions and the pack opening engine.
type Server struct {
	manager *service.Manager
	packs   *packs.Catalog
	players *catalog.Catalog
	logger  zerolog.Logger
}

func New(manager *service.Manager, packCatalog *packs.Catalog, players *catalog.Catalog, logger zerolog.Logger) *Server {
	return &Server{
		manager: manager,
		packs:   packCatalog,
		players: players,
		logger:  logger.With().Str("component", "server").Logger(),
	}
}

// Register mounts every route on the mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /v1/packs", s.handleListPacks)
	mux.HandleFunc("GET /v1/players", s.handleListPlayers)
	mux.HandleFunc("GET /v1/players/{playerID}", s.handleGetPlayer)

	mux.HandleFunc("GET /v1/users/{userID}/state", s.handleState)
	mux.HandleFunc("GET /v1/users/{userID}/players/{playerID}/archetype", s.handleArchetype)
	mux.HandleFunc("POST /v1/users/{userID}/packs/{packID}/open", s.handleOpenPack)
	mux.HandleFunc("POST /v1/users/{userID}/cards/{playerID}/sell", s.handleSellCard)
	mux.HandleFunc("POST /v1/users/{userID}/daily/claim", s.handleDailyClaim)
	mux.HandleFunc("POST /v1/users/{userID}/minigames/lucky-spin", s.handleLuckySpin)
	mux.HandleFunc("POST /v1/users/{userID}/minigames/mystery-box", s.handleMysteryBox)
	mux.HandleFunc("POST /v1/users/{userID}/minigames/coin-flip", s.handleCoinFlip)
	mux.HandleFunc("POST /v1/users/{userID}/minigames/trivia", s.handleTrivia)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListPacks(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"packs": s.packs.Packs()})
}

func (s *Server) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("rarity"); raw != "" {
		tier := domain.ParseRarity(raw)
		pool := s.players.ByRarity(tier)
		out := make([]domain.Player, 0, len(pool))
		for _, p := range pool {
			out = append(out, *p)
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"players": out})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"players": s.players.Players()})
}

func (s *Server) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	player, ok := s.players.ByID(r.PathValue("playerID"))
	if !ok {
		s.writeError(w, http.StatusNotFound, errors.New("player not found"))
		return
	}
	s.writeJSON(w, http.StatusOK, player)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(w, r)
	if err != nil {
		return
	}
	s.writeJSON(w, http.StatusOK, sess.State())
}

func (s *Server) handleArchetype(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(w, r)
	if err != nil {
		return
	}
	rec, found, err := sess.Archetype(r.Context(), r.PathValue("playerID"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if !found {
		s.writeError(w, http.StatusNotFound, errors.New("archetype not generated"))
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleOpenPack(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(w, r)
	if err != nil {
		return
	}
	results, err := sess.OpenPack(r.Context(), r.PathValue("packID"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"state":   sess.State(),
	})
}

func (s *Server) handleSellCard(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(w, r)
	if err != nil {
		return
	}
	coins, err := sess.SellCard(r.Context(), r.PathValue("playerID"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"coinsAwarded": coins,
		"state":        sess.State(),
	})
}

func (s *Server) handleDailyClaim(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(w, r)
	if err != nil {
		return
	}
	claim, err := sess.ClaimDaily(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, claim)
}

func (s *Server) handleLuckySpin(w http.ResponseWriter, r *http.Request) {
	s.handlePrizeGame(w, r, (*service.Session).LuckySpin)
}

func (s *Server) handleMysteryBox(w http.ResponseWriter, r *http.Request) {
	s.handlePrizeGame(w, r, (*service.Session).MysteryBox)
}

func (s *Server) handlePrizeGame(w http.ResponseWriter, r *http.Request, play func(*service.Session, context.Context) (int, error)) {
	sess, err := s.session(w, r)
	if err != nil {
		return
	}
	coins, err := play(sess, r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"coinsAwarded": coins})
}

func (s *Server) handleCoinFlip(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(w, r)
	if err != nil {
		return
	}
	var req struct {
		Bet int `json:"bet"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	result, err := sess.CoinFlip(r.Context(), req.Bet)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleTrivia(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(w, r)
	if err != nil {
		return
	}
	var req struct {
		Correct int `json:"correct"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	reward, err := sess.SettleTrivia(r.Context(), req.Correct)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"coinsAwarded": reward})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*service.Session, error) {
	userID := r.PathValue("userID")
	if userID == "" {
		err := errors.New("missing user id")
		s.writeError(w, http.StatusBadRequest, err)
		return nil, err
	}
	sess, err := s.manager.Session(r.Context(), userID)
	if err != nil {
		s.writeServiceError(w, err)
		return nil, err
	}
	return sess, nil
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInsufficientFunds):
		status = http.StatusPaymentRequired
	case errors.Is(err, service.ErrInvalidBet):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrCooldownActive):
		status = http.StatusTooManyRequests
	case errors.Is(err, service.ErrNotOwned), errors.Is(err, packs.ErrPackNotFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Msg("request failed")
	}
	s.writeError(w, status, err)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error().Err(err).Msg("response encoding failed")
	}
}
