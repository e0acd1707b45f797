package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/liamwears/lbmovies/internal/browse"
	"github.com/liamwears/lbmovies/internal/middleware"
	"github.com/sirupsen/logrus"
)

// BrowseHandler serves the combined movies/series browsing view
type BrowseHandler struct {
	catalog  Catalog
	renderer *Renderer
	timeout  time.Duration
	logger   logrus.FieldLogger
}

// NewBrowseHandler creates a new browse handler. timeout bounds one render.
func NewBrowseHandler(c Catalog, renderer *Renderer, timeout time.Duration, logger logrus.FieldLogger) *BrowseHandler {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &BrowseHandler{
		catalog:  c,
		renderer: renderer,
		timeout:  timeout,
		logger:   logger.WithField("component", "browse_handler"),
	}
}

// pageLink is one numbered pagination control
type pageLink struct {
	Number  int
	URL     string
	Current bool
}

// sectionTab is one section switcher entry
type sectionTab struct {
	Label  string
	URL    string
	Active bool
}

// parseQueryState reads q, section, mp, sp and page from the URL.
// page applies to the active section the same way a page control does.
func parseQueryState(values url.Values) (browse.QueryState, error) {
	q := browse.DefaultQueryState()

	section, err := browse.ParseSection(values.Get("section"))
	if err != nil {
		return q, err
	}
	q.ActiveSection = section

	term := values.Get("q")
	if term == "" {
		term = values.Get("query")
	}
	q.RawSearchTerm = term
	q.DebouncedSearchTerm = term

	for name, dst := range map[string]*int{"mp": &q.PageMovies, "sp": &q.PageSeries} {
		raw := values.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > browse.MaxPages {
			return q, browse.ErrPageOutOfRange
		}
		*dst = n
	}

	if raw := values.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, browse.ErrPageOutOfRange
		}
		if q, err = browse.ChangePage(q, n); err != nil {
			return q, err
		}
	}
	return q, nil
}

// browseURL encodes a QueryState as a /browse link
func browseURL(q browse.QueryState) string {
	v := url.Values{}
	if q.DebouncedSearchTerm != "" {
		v.Set("q", q.DebouncedSearchTerm)
	}
	if q.ActiveSection != browse.SectionAll {
		v.Set("section", string(q.ActiveSection))
	}
	if q.PageMovies > 1 {
		v.Set("mp", strconv.Itoa(q.PageMovies))
	}
	if q.PageSeries > 1 {
		v.Set("sp", strconv.Itoa(q.PageSeries))
	}
	if len(v) == 0 {
		return "/browse"
	}
	return "/browse?" + v.Encode()
}

// load runs one browse session to completion and returns its view
func (h *BrowseHandler) load(ctx context.Context, q browse.QueryState) browse.View {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	s := browse.NewSession(ctx, h.catalog, q, browse.Options{Logger: h.logger})
	s.Wait()
	view := s.View()
	s.Close()
	return view
}

func badQuery(err error) string {
	if errors.Is(err, browse.ErrInvalidSection) {
		return "Invalid section"
	}
	return fmt.Sprintf("Page must be between 1 and %d", browse.MaxPages)
}

// Page handles GET /browse
func (h *BrowseHandler) Page(w http.ResponseWriter, r *http.Request) {
	q, err := parseQueryState(r.URL.Query())
	if err != nil {
		http.Error(w, badQuery(err), http.StatusBadRequest)
		return
	}

	view := h.load(r.Context(), q)

	var pages []pageLink
	for _, n := range browse.PageWindow(view.CurrentPage, view.TotalPages, 7) {
		next, _ := browse.ChangePage(view.Query, n)
		pages = append(pages, pageLink{Number: n, URL: browseURL(next), Current: n == view.CurrentPage})
	}

	var prevURL, nextURL string
	if view.CurrentPage > 1 {
		prev, _ := browse.ChangePage(view.Query, view.CurrentPage-1)
		prevURL = browseURL(prev)
	}
	if view.CurrentPage < view.TotalPages {
		if next, err := browse.ChangePage(view.Query, view.CurrentPage+1); err == nil {
			nextURL = browseURL(next)
		}
	}

	var tabs []sectionTab
	for _, s := range []browse.Section{browse.SectionAll, browse.SectionMovies, browse.SectionSeries} {
		tq := view.Query
		tq.ActiveSection = s
		tabs = append(tabs, sectionTab{Label: sectionLabel(s), URL: browseURL(tq), Active: s == view.Query.ActiveSection})
	}

	user, _ := middleware.GetUserFromContext(r.Context())
	h.renderer.RenderPage(w, http.StatusOK, "browse.html", map[string]any{
		"User":       user,
		"ActivePage": "browse",
		"View":       view,
		"Heading":    heading(view.Query),
		"Tabs":       tabs,
		"Pages":      pages,
		"PrevURL":    prevURL,
		"NextURL":    nextURL,
	})
}

// API handles GET /api/browse. Per-collection failures are part of the body.
func (h *BrowseHandler) API(w http.ResponseWriter, r *http.Request) {
	q, err := parseQueryState(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, badQuery(err))
		return
	}
	writeJSON(w, http.StatusOK, h.load(r.Context(), q))
}

// Root handles GET /
func (h *BrowseHandler) Root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/browse", http.StatusFound)
}

func sectionLabel(s browse.Section) string {
	switch s {
	case browse.SectionMovies:
		return "Movies"
	case browse.SectionSeries:
		return "Series"
	}
	return "All"
}

func heading(q browse.QueryState) string {
	if strings.TrimSpace(q.DebouncedSearchTerm) != "" {
		return fmt.Sprintf("Results for %q", q.DebouncedSearchTerm)
	}
	switch q.ActiveSection {
	case browse.SectionMovies:
		return "Popular movies"
	case browse.SectionSeries:
		return "Popular series"
	}
	return "Popular now"
}
