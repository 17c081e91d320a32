package api

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/dmitrijs2005/loandesk/internal/common"
	"github.com/dmitrijs2005/loandesk/internal/models"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

type authMessage struct {
	Event   models.AuthEvent    `json:"event"`
	Session *models.SessionView `json:"session"`
}

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(s.origins, "*") || slices.Contains(s.origins, origin)
		},
	}
}

// authEvents streams the caller's own auth state changes over a websocket
// until the client goes away or the session ends. The first message is
// always INITIAL_SESSION for the caller's session; other users' sign-ins
// are never sent.
func (s *Server) authEvents(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r.Context())
	if p == nil {
		s.fail(w, r, common.ErrNotAuthenticated)
		return
	}

	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn(r.Context(), "websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	msgs := make(chan authMessage, 16)
	sub := s.auth.WatchSession(ctx, p.session.ID, func(event models.AuthEvent, session *models.Session) {
		m := authMessage{Event: event, Session: s.auth.View(ctx, session)}
		select {
		case msgs <- m:
		case <-ctx.Done():
		}
	})
	defer sub.Unsubscribe()

	// The client sends nothing useful; reading detects the close.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		case m := <-msgs:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(m); err != nil {
				s.log.Debug(ctx, "auth event write failed", "error", err)
				return
			}
			if m.Event == models.EventSignedOut {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "signed out"), time.Now().Add(writeWait))
				return
			}
		}
	}
}
