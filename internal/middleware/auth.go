package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/liamwears/lbmovies/internal/models"
	"github.com/sirupsen/logrus"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// UserContextKey is the key for storing user in context
	UserContextKey ContextKey = "user"
	// UserIDContextKey is the key for storing user ID in context
	UserIDContextKey ContextKey = "userID"
)

// SessionStore resolves session cookies to user IDs
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (uuid.UUID, error)
	Delete(ctx context.Context, sessionID string) error
}

// UserLookup loads the user for a session
type UserLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// AuthMiddleware handles authentication for protected routes
type AuthMiddleware struct {
	sessions     SessionStore
	users        UserLookup
	cookieName   string
	maxAge       time.Duration
	isProduction bool
	logger       logrus.FieldLogger
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(sessions SessionStore, users UserLookup, cookieName string, maxAge time.Duration, isProduction bool, logger logrus.FieldLogger) *AuthMiddleware {
	if cookieName == "" {
		cookieName = "session"
	}
	if maxAge <= 0 {
		maxAge = 7 * 24 * time.Hour
	}
	return &AuthMiddleware{
		sessions:     sessions,
		users:        users,
		cookieName:   cookieName,
		maxAge:       maxAge,
		isProduction: isProduction,
		logger:       logger.WithField("component", "auth"),
	}
}

// CookieName is the name of the session cookie
func (m *AuthMiddleware) CookieName() string {
	return m.cookieName
}

// resolve loads the user behind the request's session cookie.
// A session pointing at a deleted user is removed.
func (m *AuthMiddleware) resolve(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return nil, false
	}

	userID, err := m.sessions.Get(r.Context(), cookie.Value)
	if err != nil {
		return nil, false
	}

	user, err := m.users.Get(r.Context(), userID)
	if err != nil {
		m.logger.WithField("user_id", userID).WithError(err).Debug("session user not found, clearing session")
		if err := m.sessions.Delete(r.Context(), cookie.Value); err != nil {
			m.logger.WithError(err).Warn("failed to delete stale session")
		}
		m.ClearSessionCookie(w)
		return nil, false
	}

	return user, true
}

func withUser(r *http.Request, user *models.User) *http.Request {
	ctx := context.WithValue(r.Context(), UserContextKey, user)
	ctx = context.WithValue(ctx, UserIDContextKey, user.ID)
	return r.WithContext(ctx)
}

// RequireAuth ensures the user is authenticated, redirecting to /login otherwise
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := m.resolve(w, r)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, withUser(r, user))
	})
}

// OptionalAuth checks for authentication but doesn't require it
func (m *AuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, ok := m.resolve(w, r); ok {
			r = withUser(r, user)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuthAPI ensures the user is authenticated for API requests
func (m *AuthMiddleware) RequireAuthAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := m.resolve(w, r)
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
			return
		}
		next.ServeHTTP(w, withUser(r, user))
	})
}

// GetUserFromContext retrieves the user from request context
func GetUserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	return user, ok
}

// GetUserIDFromContext retrieves the user ID from request context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(uuid.UUID)
	return userID, ok
}

// SetSessionCookie sets a session cookie
func (m *AuthMiddleware) SetSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(m.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie clears the session cookie
func (m *AuthMiddleware) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}
