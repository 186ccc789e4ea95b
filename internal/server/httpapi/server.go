// Package httpapi is the transport boundary: REST routes, the WebSocket
// upgrade endpoint, and the middleware (auth guard, rate limiting, CORS)
// in front of them.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/duochat/internal/logging"
	"github.com/dmitrijs2005/duochat/internal/server/config"
	"github.com/dmitrijs2005/duochat/internal/server/services"
	"github.com/dmitrijs2005/duochat/internal/server/ws"
)

// Rate-limit budgets per client IP.
const (
	generalLimitRequests = 100
	generalLimitWindow   = 15 * time.Minute

	authLimitRequests = 5
	authLimitWindow   = 15 * time.Minute

	sendLimitRequests = 30
	sendLimitWindow   = time.Minute
)

type Server struct {
	cfg      *config.Config
	logger   logging.Logger
	users    *services.UserService
	messages *services.MessageService
	hub      *ws.Hub

	generalLimit *RateLimiter
	authLimit    *RateLimiter
	sendLimit    *RateLimiter
}

func NewServer(cfg *config.Config, logger logging.Logger, users *services.UserService, messages *services.MessageService, hub *ws.Hub) *Server {
	return &Server{
		cfg:          cfg,
		logger:       logger,
		users:        users,
		messages:     messages,
		hub:          hub,
		generalLimit: NewRateLimiter(generalLimitRequests, generalLimitWindow),
		authLimit:    NewRateLimiter(authLimitRequests, authLimitWindow),
		sendLimit:    NewRateLimiter(sendLimitRequests, sendLimitWindow),
	}
}

// Handler assembles the route table. Signup and login are the only
// operations not gated by the session authenticator.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/signup", s.rateLimit(s.authLimit, s.handleSignup))
	mux.HandleFunc("POST /api/auth/login", s.rateLimit(s.authLimit, s.handleLogin))
	mux.HandleFunc("POST /api/auth/logout", s.rateLimit(s.authLimit, s.handleLogout))
	mux.HandleFunc("GET /api/auth/check", s.requireAuth(s.handleCheck))
	mux.HandleFunc("PUT /api/auth/update-profile", s.requireAuth(s.handleUpdateProfile))

	mux.HandleFunc("GET /api/messages/contacts", s.rateLimit(s.generalLimit, s.requireAuth(s.handleContacts)))
	mux.HandleFunc("GET /api/messages/chats", s.rateLimit(s.generalLimit, s.requireAuth(s.handleChatPartners)))
	mux.HandleFunc("GET /api/messages/image/{messageId}", s.rateLimit(s.generalLimit, s.requireAuth(s.handleMessageImage)))
	mux.HandleFunc("GET /api/messages/{id}", s.rateLimit(s.generalLimit, s.requireAuth(s.handleConversation)))
	mux.HandleFunc("POST /api/messages/send/{id}", s.rateLimit(s.sendLimit, s.requireAuth(s.handleSendMessage)))

	mux.HandleFunc("GET /ws", s.requireAuth(s.handleWS))

	return s.cors(mux)
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.EndpointAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info(ctx, "http server listening", "addr", s.cfg.EndpointAddr)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
