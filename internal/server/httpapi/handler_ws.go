package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/duochat/internal/server/ws"
)

// handleWS establishes the real-time channel. The connection authenticates
// with the same session cookie used for REST calls; requireAuth has already
// resolved it before the upgrade happens.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ws.ServeWS(s.hub, w, r, user.ID, s.logger)
}
