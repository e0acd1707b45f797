package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/liamwears/lbmovies/internal/catalog"
	"github.com/liamwears/lbmovies/internal/middleware"
	"github.com/liamwears/lbmovies/internal/models"
	"github.com/liamwears/lbmovies/internal/services"
	"github.com/sirupsen/logrus"
)

// TitleHandler serves title details and their comments
type TitleHandler struct {
	catalog  Catalog
	library  LibraryService
	social   SocialService
	renderer *Renderer
	logger   logrus.FieldLogger
}

// NewTitleHandler creates a new title handler
func NewTitleHandler(c Catalog, library LibraryService, social SocialService, renderer *Renderer, logger logrus.FieldLogger) *TitleHandler {
	return &TitleHandler{
		catalog:  c,
		library:  library,
		social:   social,
		renderer: renderer,
		logger:   logger.WithField("component", "title_handler"),
	}
}

// Page handles GET /titles/{kind}/{id}
func (h *TitleHandler) Page(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := titlePath(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	details, err := h.catalog.Details(r.Context(), kind, id)
	if err != nil {
		status, message := catalogStatus(err)
		h.logger.WithFields(logrus.Fields{"kind": kind, "id": id}).WithError(err).Warn("failed to load title")
		http.Error(w, message, status)
		return
	}

	comments, err := h.social.ListComments(r.Context(), kind, id)
	if err != nil {
		h.logger.WithError(err).Warn("failed to load comments")
		comments = nil
	}

	data := map[string]any{
		"ActivePage": "title",
		"Title":      details,
		"Comments":   comments,
	}

	if user, ok := middleware.GetUserFromContext(r.Context()); ok {
		data["User"] = user
		m, err := h.library.Memberships(r.Context(), user.ID, kind, id)
		if err != nil {
			h.logger.WithError(err).Warn("failed to load list memberships")
		}
		data["Memberships"] = m
	}

	h.renderer.RenderPage(w, http.StatusOK, "title.html", data)
}

// API handles GET /api/titles/{kind}/{id}
func (h *TitleHandler) API(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := titlePath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid title")
		return
	}

	details, err := h.catalog.Details(r.Context(), kind, id)
	if err != nil {
		status, message := catalogStatus(err)
		writeError(w, status, message)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// Comments handles GET /api/titles/{kind}/{id}/comments
func (h *TitleHandler) Comments(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := titlePath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid title")
		return
	}

	comments, err := h.social.ListComments(r.Context(), kind, id)
	if err != nil {
		writeServiceError(w, h.logger, err, "Comment")
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

type commentRequest struct {
	Content string `json:"content"`
	// Title is the display title, shown in followers' feeds
	Title string `json:"title"`
}

// AddComment handles POST /api/titles/{kind}/{id}/comments
func (h *TitleHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	kind, id, ok := titlePath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid title")
		return
	}

	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	comment, err := h.social.AddComment(r.Context(), userID, services.TitleRef{Kind: kind, TmdbID: id, Title: req.Title}, req.Content)
	if err != nil {
		writeServiceError(w, h.logger, err, "Comment")
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// UpdateComment handles PATCH /api/comments/{id}
func (h *TitleHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	commentID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid comment ID")
		return
	}

	var input models.CommentInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	comment, err := h.social.UpdateComment(r.Context(), userID, commentID, input.Content)
	if err != nil {
		writeServiceError(w, h.logger, err, "Comment")
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

// DeleteComment handles DELETE /api/comments/{id}
func (h *TitleHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	commentID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid comment ID")
		return
	}

	if err := h.social.DeleteComment(r.Context(), userID, commentID); err != nil {
		writeServiceError(w, h.logger, err, "Comment")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// kindLabel is used by templates
func kindLabel(k catalog.Kind) string {
	if k == catalog.KindSeries {
		return "Series"
	}
	return "Movie"
}
