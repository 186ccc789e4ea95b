package httpapi

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/duochat/internal/server/models"
)

// sessionCookieName is the cookie carrying the signed session token.
const sessionCookieName = "jwt"

type ctxKey string

const userKey ctxKey = "user"

func withUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func userFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok
}

// requireAuth gates a protected operation: it resolves the session cookie to
// a full user record and attaches it to the request context, or rejects with
// 401 before the handler runs. Failure is terminal for the request.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			respondMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		user, err := s.users.Authenticate(r.Context(), cookie.Value)
		if err != nil {
			respondError(w, err)
			return
		}

		next(w, r.WithContext(withUser(r.Context(), user)))
	}
}

// rateLimit rejects requests over the limiter's budget with 429. Local
// clients are exempt outside production, matching development ergonomics.
func (s *Server) rateLimit(limiter *RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)

		if !s.cfg.IsProduction() && isLoopback(ip) {
			next(w, r)
			return
		}

		if !limiter.Allow(ip, time.Now()) {
			respondMessage(w, http.StatusTooManyRequests, "Too many requests, please try again later.")
			return
		}

		next(w, r)
	}
}

// cors allows the configured client origin with credentials and answers
// preflight requests.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.originAllowed(origin) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, Authorization")
			h.Set("Access-Control-Max-Age", "86400")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin string) bool {
	if origin == s.cfg.ClientOrigin {
		return true
	}
	if s.cfg.IsProduction() {
		return false
	}
	return strings.Contains(origin, "localhost") || strings.Contains(origin, "127.0.0.1")
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func isLoopback(ip string) bool {
	parsed := net.ParseIP(ip)
	return parsed != nil && parsed.IsLoopback()
}
