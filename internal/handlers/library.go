package handlers

import (
	"net/http"
	"strconv"

	"github.com/liamwears/lbmovies/internal/catalog"
	"github.com/liamwears/lbmovies/internal/middleware"
	"github.com/liamwears/lbmovies/internal/models"
	"github.com/sirupsen/logrus"
)

// LibraryHandler serves favorites and watchlists
type LibraryHandler struct {
	library  LibraryService
	renderer *Renderer
	logger   logrus.FieldLogger
}

// NewLibraryHandler creates a new library handler
func NewLibraryHandler(library LibraryService, renderer *Renderer, logger logrus.FieldLogger) *LibraryHandler {
	return &LibraryHandler{
		library:  library,
		renderer: renderer,
		logger:   logger.WithField("component", "library_handler"),
	}
}

// Page handles GET /library/{list}
func (h *LibraryHandler) Page(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	list, err := models.ParseList(r.PathValue("list"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	page := max(queryInt(r, "page", 1), 1)
	result, err := h.library.List(r.Context(), user.ID, list, page, 0)
	if err != nil {
		h.logger.WithError(err).Error("failed to list library")
		http.Error(w, "Failed to fetch library", http.StatusInternalServerError)
		return
	}

	h.renderer.RenderPage(w, http.StatusOK, "library.html", map[string]any{
		"User":       user,
		"ActivePage": "library-" + list.String(),
		"List":       list,
		"Items":      result.Results,
		"Page":       result.Page,
		"TotalPages": result.TotalPages,
		"Count":      result.Count,
	})
}

// List handles GET /api/library/{list}
func (h *LibraryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	list, err := models.ParseList(r.PathValue("list"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid list")
		return
	}

	result, err := h.library.List(r.Context(), userID, list, queryInt(r, "page", 1), queryInt(r, "limit", 0))
	if err != nil {
		writeServiceError(w, h.logger, err, "Library")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Add handles POST /api/library/{list}
func (h *LibraryHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	list, err := models.ParseList(r.PathValue("list"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid list")
		return
	}

	var input models.AddLibraryItemInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	// accept "tv"/"movies" the same way the routes do
	if kind, err := catalog.ParseKind(string(input.Kind)); err == nil {
		input.Kind = kind
	}

	item, err := h.library.Add(r.Context(), userID, list, input)
	if err != nil {
		writeServiceError(w, h.logger, err, "Library item")
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// Remove handles DELETE /api/library/{list}/{kind}/{id}
func (h *LibraryHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	list, err := models.ParseList(r.PathValue("list"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid list")
		return
	}
	kind, err := catalog.ParseKind(r.PathValue("kind"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid kind")
		return
	}
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid title ID")
		return
	}

	if err := h.library.Remove(r.Context(), userID, list, kind, id); err != nil {
		writeServiceError(w, h.logger, err, "Library item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
