package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liamwears/lbmovies/internal/catalog"
	"github.com/liamwears/lbmovies/internal/models"
	"github.com/liamwears/lbmovies/internal/services"
)

func arrivalDetails() *catalog.Details {
	return &catalog.Details{
		CatalogItem: catalog.CatalogItem{
			ID: 329865, Kind: catalog.KindMovie, Title: "Arrival", Overview: "Linguists meet visitors.",
			PrimaryDate: strPtr("2016-11-11"), VoteAverage: 7.6, VoteCount: 18000,
		},
		Tagline: "Why are they here?",
		Runtime: 116,
		Genres:  []catalog.Genre{{ID: 18, Name: "Drama"}, {ID: 878, Name: "Science Fiction"}},
		Cast:    []catalog.CastMember{{ID: 1, Name: "Amy Adams", Character: "Louise Banks"}},
		Similar: []catalog.CatalogItem{{ID: 27205, Kind: catalog.KindMovie, Title: "Inception"}},
	}
}

func newTitleTest(t *testing.T, c *fakeCatalog, lib *fakeLibrary, soc *fakeSocial) *TitleHandler {
	t.Helper()
	logger, _ := logtest.NewNullLogger()
	return NewTitleHandler(c, lib, soc, newTestRenderer(t), logger)
}

func titleRequest(method, target, kind, id string, body string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.SetPathValue("kind", kind)
	req.SetPathValue("id", id)
	return req
}

func TestTitlePageRendersDetails(t *testing.T) {
	soc := &fakeSocial{comments: []models.Comment{
		{ID: uuid.New(), UserID: uuid.New(), AuthorName: "Grace", Content: "Loved the ending", CreatedAt: testTime},
	}}
	lib := &fakeLibrary{memberships: services.Memberships{Favorite: true}}
	h := newTitleTest(t, &fakeCatalog{details: arrivalDetails()}, lib, soc)

	rec := httptest.NewRecorder()
	h.Page(rec, withUser(titleRequest(http.MethodGet, "/titles/movie/329865", "movie", "329865", ""), testUser()))

	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec)

	assert.Contains(t, doc.Find("h1").Text(), "Arrival")
	assert.Contains(t, doc.Find("h1").Text(), "2016")
	assert.Equal(t, "Drama, Science Fiction", doc.Find(".genres").Text())
	assert.Contains(t, doc.Find(".cast").Text(), "Amy Adams as Louise Banks")
	href, _ := doc.Find(".similar a.card").Attr("href")
	assert.Equal(t, "/titles/movie/27205", href)

	assert.Equal(t, 1, doc.Find(".comment").Length())
	assert.Contains(t, doc.Find(".comment").Text(), "Loved the ending")
	assert.Equal(t, 1, doc.Find("#comment-form").Length())

	assert.Equal(t, "Remove from favorites", doc.Find(`#list-actions button[data-list="favorites"]`).Text())
	assert.Equal(t, "Add to watchlist", doc.Find(`#list-actions button[data-list="watchlist"]`).Text())
}

func TestTitlePageAnonymous(t *testing.T) {
	h := newTitleTest(t, &fakeCatalog{details: arrivalDetails()}, &fakeLibrary{}, &fakeSocial{})

	rec := httptest.NewRecorder()
	h.Page(rec, titleRequest(http.MethodGet, "/titles/tv/1", "tv", "1", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec)
	assert.Equal(t, 0, doc.Find("#list-actions").Length())
	assert.Equal(t, 0, doc.Find("#comment-form").Length())
	assert.Equal(t, "No comments yet.", doc.Find(".comments .empty").Text())
}

func TestTitlePageErrors(t *testing.T) {
	tests := []struct {
		name   string
		kind   string
		id     string
		err    error
		status int
	}{
		{"unknown kind", "books", "1", nil, http.StatusNotFound},
		{"bad id", "movie", "abc", nil, http.StatusNotFound},
		{"upstream not found", "movie", "9", &catalog.UpstreamError{Status: http.StatusNotFound, Message: "missing"}, http.StatusNotFound},
		{"network", "movie", "9", &catalog.NetworkError{Err: errors.New("timeout")}, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTitleTest(t, &fakeCatalog{detailsErr: tt.err}, &fakeLibrary{}, &fakeSocial{})
			rec := httptest.NewRecorder()
			h.Page(rec, titleRequest(http.MethodGet, "/titles/x/y", tt.kind, tt.id, ""))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestTitleAPI(t *testing.T) {
	h := newTitleTest(t, &fakeCatalog{details: arrivalDetails()}, &fakeLibrary{}, &fakeSocial{})

	rec := httptest.NewRecorder()
	h.API(rec, titleRequest(http.MethodGet, "/api/titles/movie/329865", "movie", "329865", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Arrival", body["title"])
	assert.Equal(t, "movie", body["kind"])
}

func TestTitleAPIConfigError(t *testing.T) {
	h := newTitleTest(t, &fakeCatalog{detailsErr: &catalog.ConfigError{Reason: "no key"}}, &fakeLibrary{}, &fakeSocial{})

	rec := httptest.NewRecorder()
	h.API(rec, titleRequest(http.MethodGet, "/api/titles/movie/1", "movie", "1", ""))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, catalog.MissingCredentialMessage), rec.Body.String())
}

func TestAddComment(t *testing.T) {
	soc := &fakeSocial{}
	h := newTitleTest(t, &fakeCatalog{}, &fakeLibrary{}, soc)
	user := testUser()

	rec := httptest.NewRecorder()
	req := titleRequest(http.MethodPost, "/api/titles/tv/1399/comments", "tv", "1399", `{"content":"Winter is here","title":"Game of Thrones"}`)
	h.AddComment(rec, withUser(req, user))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, soc.titles, 1)
	assert.Equal(t, services.TitleRef{Kind: catalog.KindSeries, TmdbID: 1399, Title: "Game of Thrones"}, soc.titles[0])

	var comment models.Comment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &comment))
	assert.Equal(t, "Winter is here", comment.Content)
	assert.Equal(t, user.ID, comment.UserID)
}

func TestAddCommentErrors(t *testing.T) {
	t.Run("unauthenticated", func(t *testing.T) {
		h := newTitleTest(t, &fakeCatalog{}, &fakeLibrary{}, &fakeSocial{})
		rec := httptest.NewRecorder()
		h.AddComment(rec, titleRequest(http.MethodPost, "/", "movie", "1", `{"content":"x"}`))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bad body", func(t *testing.T) {
		h := newTitleTest(t, &fakeCatalog{}, &fakeLibrary{}, &fakeSocial{})
		rec := httptest.NewRecorder()
		h.AddComment(rec, withUser(titleRequest(http.MethodPost, "/", "movie", "1", `{`), testUser()))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty content", func(t *testing.T) {
		soc := &fakeSocial{commentErr: fmt.Errorf("%w: content is required", services.ErrInvalidInput)}
		h := newTitleTest(t, &fakeCatalog{}, &fakeLibrary{}, soc)
		rec := httptest.NewRecorder()
		h.AddComment(rec, withUser(titleRequest(http.MethodPost, "/", "movie", "1", `{"content":""}`), testUser()))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "content is required")
	})
}

func TestUpdateAndDeleteComment(t *testing.T) {
	id := uuid.New()

	soc := &fakeSocial{}
	h := newTitleTest(t, &fakeCatalog{}, &fakeLibrary{}, soc)

	req := httptest.NewRequest(http.MethodPatch, "/api/comments/"+id.String(), strings.NewReader(`{"content":"edited"}`))
	req.SetPathValue("id", id.String())
	rec := httptest.NewRecorder()
	h.UpdateComment(rec, withUser(req, testUser()))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "edited")

	req = httptest.NewRequest(http.MethodDelete, "/api/comments/"+id.String(), nil)
	req.SetPathValue("id", id.String())
	rec = httptest.NewRecorder()
	h.DeleteComment(rec, withUser(req, testUser()))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// someone else's comment looks missing
	soc.commentErr = fmt.Errorf("comment: %w", services.ErrNotFound)
	req = httptest.NewRequest(http.MethodDelete, "/api/comments/"+id.String(), nil)
	req.SetPathValue("id", id.String())
	rec = httptest.NewRecorder()
	h.DeleteComment(rec, withUser(req, testUser()))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/comments/nope", nil)
	req.SetPathValue("id", "nope")
	rec = httptest.NewRecorder()
	h.DeleteComment(rec, withUser(req, testUser()))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
