package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"

	"github.com/liamwears/lbmovies/internal/middleware"
	"github.com/liamwears/lbmovies/internal/models"
)

const (
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	githubUserURL     = "https://api.github.com/user"
	githubEmailsURL   = "https://api.github.com/user/emails"
)

// UserFinder is implemented by *services.UserService
type UserFinder interface {
	FindOrCreate(ctx context.Context, providerID string, provider models.Provider, email, name string) (*models.User, error)
}

// AuthSessions is implemented by *database.SessionStore
type AuthSessions interface {
	GenerateSessionID() (string, error)
	Set(ctx context.Context, sessionID string, userID uuid.UUID) error
	Delete(ctx context.Context, sessionID string) error
	NewState(ctx context.Context, provider string) (string, error)
	ConsumeState(ctx context.Context, state, provider string) error
}

// AuthHandler handles authentication requests
type AuthHandler struct {
	users          UserFinder
	sessions       AuthSessions
	authMiddleware *middleware.AuthMiddleware
	googleConfig   *oauth2.Config
	githubConfig   *oauth2.Config
	renderer       *Renderer
	logger         logrus.FieldLogger
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GitHubClientID     string
	GitHubClientSecret string
	CallbackHost       string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	users UserFinder,
	sessions AuthSessions,
	authMiddleware *middleware.AuthMiddleware,
	renderer *Renderer,
	cfg AuthConfig,
	logger logrus.FieldLogger,
) *AuthHandler {
	ghConfig := &oauth2.Config{
		ClientID:     cfg.GitHubClientID,
		ClientSecret: cfg.GitHubClientSecret,
		RedirectURL:  fmt.Sprintf("%s/auth/github/callback", cfg.CallbackHost),
		Scopes:       []string{"user:email"},
		Endpoint:     github.Endpoint,
	}

	googleConfig := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  fmt.Sprintf("%s/auth/google/callback", cfg.CallbackHost),
		Scopes:       []string{"profile", "email"},
		Endpoint:     google.Endpoint,
	}

	logger = logger.WithField("component", "auth_handler")
	logger.WithField("callback", googleConfig.RedirectURL).Debug("google oauth configured")

	return &AuthHandler{
		users:          users,
		sessions:       sessions,
		authMiddleware: authMiddleware,
		renderer:       renderer,
		logger:         logger,
		googleConfig:   googleConfig,
		githubConfig:   ghConfig,
	}
}

// Login displays the login page
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.renderer.RenderPage(w, http.StatusOK, "login.html", map[string]any{
		"Google": h.googleConfig.ClientID != "",
		"GitHub": h.githubConfig.ClientID != "",
	})
}

// begin stores a fresh state token and redirects to the provider
func (h *AuthHandler) begin(w http.ResponseWriter, r *http.Request, provider string, cfg *oauth2.Config, opts ...oauth2.AuthCodeOption) {
	state, err := h.sessions.NewState(r.Context(), provider)
	if err != nil {
		h.logger.WithError(err).Error("failed to generate state token")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, cfg.AuthCodeURL(state, opts...), http.StatusTemporaryRedirect)
}

// GoogleLogin initiates Google OAuth flow
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	h.begin(w, r, "google", h.googleConfig, oauth2.AccessTypeOffline)
}

// GitHubLogin initiates GitHub OAuth flow
func (h *AuthHandler) GitHubLogin(w http.ResponseWriter, r *http.Request) {
	h.begin(w, r, "github", h.githubConfig)
}

// exchange validates state and trades the code for an authenticated client
func (h *AuthHandler) exchange(w http.ResponseWriter, r *http.Request, provider string, cfg *oauth2.Config) (*http.Client, bool) {
	q := r.URL.Query()
	if err := h.sessions.ConsumeState(r.Context(), q.Get("state"), provider); err != nil {
		h.logger.WithField("provider", provider).WithError(err).Warn("invalid oauth state")
		http.Error(w, "Invalid OAuth state", http.StatusBadRequest)
		return nil, false
	}

	code := q.Get("code")
	if code == "" {
		http.Error(w, "No code provided", http.StatusBadRequest)
		return nil, false
	}

	token, err := cfg.Exchange(r.Context(), code)
	if err != nil {
		h.logger.WithField("provider", provider).WithError(err).Error("failed to exchange code")
		http.Error(w, "Failed to exchange code", http.StatusInternalServerError)
		return nil, false
	}
	return cfg.Client(r.Context(), token), true
}

func getJSON(client *http.Client, url string, v any) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned %s", url, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// GoogleCallback handles Google OAuth callback
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	client, ok := h.exchange(w, r, "google", h.googleConfig)
	if !ok {
		return
	}

	var userInfo struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := getJSON(client, googleUserInfoURL, &userInfo); err != nil {
		h.logger.WithError(err).Error("failed to get google user info")
		http.Error(w, "Failed to get user info", http.StatusInternalServerError)
		return
	}

	h.signIn(w, r, userInfo.ID, models.ProviderGoogle, userInfo.Email, userInfo.Name)
}

// GitHubCallback handles GitHub OAuth callback
func (h *AuthHandler) GitHubCallback(w http.ResponseWriter, r *http.Request) {
	client, ok := h.exchange(w, r, "github", h.githubConfig)
	if !ok {
		return
	}

	var userInfo struct {
		ID    int    `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
		Login string `json:"login"`
	}
	if err := getJSON(client, githubUserURL, &userInfo); err != nil {
		h.logger.WithError(err).Error("failed to get github user info")
		http.Error(w, "Failed to get user info", http.StatusInternalServerError)
		return
	}

	// private emails are only listed on /user/emails
	if userInfo.Email == "" {
		var emails []struct {
			Email   string `json:"email"`
			Primary bool   `json:"primary"`
		}
		if err := getJSON(client, githubEmailsURL, &emails); err == nil {
			for _, email := range emails {
				if email.Primary {
					userInfo.Email = email.Email
					break
				}
			}
		}
	}

	if userInfo.Name == "" {
		userInfo.Name = userInfo.Login
	}

	h.signIn(w, r, fmt.Sprintf("%d", userInfo.ID), models.ProviderGitHub, userInfo.Email, userInfo.Name)
}

// signIn finds or creates the user, starts a session and lands on /browse
func (h *AuthHandler) signIn(w http.ResponseWriter, r *http.Request, providerID string, provider models.Provider, email, name string) {
	user, err := h.users.FindOrCreate(r.Context(), providerID, provider, email, name)
	if err != nil {
		h.logger.WithField("provider", provider).WithError(err).Error("failed to find or create user")
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	sessionID, err := h.sessions.GenerateSessionID()
	if err != nil {
		h.logger.WithError(err).Error("failed to generate session ID")
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	if err := h.sessions.Set(r.Context(), sessionID, user.ID); err != nil {
		h.logger.WithError(err).Error("failed to store session")
		http.Error(w, "Failed to store session", http.StatusInternalServerError)
		return
	}

	h.authMiddleware.SetSessionCookie(w, sessionID)
	h.logger.WithFields(logrus.Fields{"user_id": user.ID, "provider": provider}).Info("user signed in")

	http.Redirect(w, r, "/browse", http.StatusSeeOther)
}

// Logout handles user logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.authMiddleware.CookieName()); err == nil {
		if err := h.sessions.Delete(r.Context(), cookie.Value); err != nil {
			h.logger.WithError(err).Warn("failed to delete session")
		}
	}

	h.authMiddleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
