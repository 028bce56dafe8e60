package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_cart/eventhub/internal/session"
)

type SessionManager interface {
	Current() session.Session
	SignIn(ctx context.Context, token string) (session.Session, error)
	SignOut()
}

type SessionHandler struct {
	sessions SessionManager
	timeout  time.Duration
	maxBody  int64
}

func NewSessionHandler(sessions SessionManager, timeout time.Duration, maxBody int64) *SessionHandler {
	return &SessionHandler{sessions: sessions, timeout: timeout, maxBody: maxBody}
}

type SignInRequestDTO struct {
	Token string `json:"token"`
}

type SessionResponseDTO struct {
	session.Session
	DashboardPath string `json:"dashboard_path"`
}

func toSessionResponse(s session.Session) SessionResponseDTO {
	return SessionResponseDTO{Session: s, DashboardPath: session.DashboardPath(s.Profile)}
}

// GET /api/v1/session
func (h *SessionHandler) GetSession(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, toSessionResponse(h.sessions.Current()))
}

// POST /api/v1/session
func (h *SessionHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req SignInRequestDTO
	if !decodeJSON(w, r, h.maxBody, &req) {
		return
	}
	if req.Token == "" {
		respondError(w, http.StatusBadRequest, "missing_token", "token is required")
		return
	}

	s, err := h.sessions.SignIn(ctx, req.Token)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toSessionResponse(s))
}

// DELETE /api/v1/session
func (h *SessionHandler) SignOut(w http.ResponseWriter, _ *http.Request) {
	h.sessions.SignOut()
	w.WriteHeader(http.StatusNoContent)
}
