package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/liamwears/lbmovies/internal/middleware"
	"github.com/liamwears/lbmovies/internal/services"
	"github.com/sirupsen/logrus"
)

// SocialHandler serves follows, profiles and the activity feed
type SocialHandler struct {
	social   SocialService
	renderer *Renderer
	logger   logrus.FieldLogger
}

// NewSocialHandler creates a new social handler
func NewSocialHandler(social SocialService, renderer *Renderer, logger logrus.FieldLogger) *SocialHandler {
	return &SocialHandler{
		social:   social,
		renderer: renderer,
		logger:   logger.WithField("component", "social_handler"),
	}
}

func pathUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return uuid.Nil, false
	}
	return id, true
}

// Follow handles POST /api/users/{id}/follow
func (h *SocialHandler) Follow(w http.ResponseWriter, r *http.Request) {
	me, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	target, ok := pathUserID(w, r)
	if !ok {
		return
	}

	if err := h.social.Follow(r.Context(), me, target); err != nil {
		writeServiceError(w, h.logger, err, "Follow")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"following": true})
}

// Unfollow handles DELETE /api/users/{id}/follow
func (h *SocialHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	me, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	target, ok := pathUserID(w, r)
	if !ok {
		return
	}

	if err := h.social.Unfollow(r.Context(), me, target); err != nil {
		writeServiceError(w, h.logger, err, "Follow")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Followers handles GET /api/users/{id}/followers
func (h *SocialHandler) Followers(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUserID(w, r)
	if !ok {
		return
	}
	users, err := h.social.Followers(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err, "User")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Following handles GET /api/users/{id}/following
func (h *SocialHandler) Following(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUserID(w, r)
	if !ok {
		return
	}
	users, err := h.social.Following(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err, "User")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Profile handles GET /api/users/{id}
func (h *SocialHandler) Profile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUserID(w, r)
	if !ok {
		return
	}
	viewer, _ := middleware.GetUserIDFromContext(r.Context())

	profile, err := h.social.Profile(r.Context(), viewer, id)
	if err != nil {
		writeServiceError(w, h.logger, err, "User")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// FeedAPI handles GET /api/feed?limit=N
func (h *SocialHandler) FeedAPI(w http.ResponseWriter, r *http.Request) {
	me, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	feed, err := h.social.Feed(r.Context(), me, queryInt(r, "limit", services.DefaultFeedLimit))
	if err != nil {
		writeServiceError(w, h.logger, err, "Feed")
		return
	}
	writeJSON(w, http.StatusOK, feed)
}

// FeedPage handles GET /feed
func (h *SocialHandler) FeedPage(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	feed, err := h.social.Feed(r.Context(), user.ID, services.DefaultFeedLimit)
	if err != nil {
		h.logger.WithError(err).Error("failed to load feed")
		http.Error(w, "Failed to load feed", http.StatusInternalServerError)
		return
	}

	h.renderer.RenderPage(w, http.StatusOK, "feed.html", map[string]any{
		"User":       user,
		"ActivePage": "feed",
		"Feed":       feed,
	})
}
