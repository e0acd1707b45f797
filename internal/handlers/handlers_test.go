package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/liamwears/lbmovies/internal/catalog"
	"github.com/liamwears/lbmovies/internal/middleware"
	"github.com/liamwears/lbmovies/internal/models"
	"github.com/liamwears/lbmovies/internal/services"
)

var testTime = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	logger, _ := logtest.NewNullLogger()
	r, err := NewRenderer("", logger)
	require.NoError(t, err)
	return r
}

func testUser() *models.User {
	return &models.User{ID: uuid.New(), Provider: models.ProviderGitHub, Name: "Ada", Email: "ada@example.com"}
}

func withUser(r *http.Request, user *models.User) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.UserContextKey, user)
	ctx = context.WithValue(ctx, middleware.UserIDContextKey, user.ID)
	return r.WithContext(ctx)
}

func parseHTML(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	return doc
}

type fetchArgs struct {
	kind  catalog.Kind
	query string
	page  int
}

// fakeCatalog answers from canned pages. FetchPage runs concurrently.
type fakeCatalog struct {
	mu         sync.Mutex
	pages      map[catalog.Kind]*catalog.CollectionPage
	errs       map[catalog.Kind]error
	calls      []fetchArgs
	details    *catalog.Details
	detailsErr error
}

func (f *fakeCatalog) FetchPage(_ context.Context, kind catalog.Kind, query string, page int) (*catalog.CollectionPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fetchArgs{kind: kind, query: query, page: page})
	if err := f.errs[kind]; err != nil {
		return nil, err
	}
	if p, ok := f.pages[kind]; ok {
		cp := *p
		cp.Page = page
		return &cp, nil
	}
	return &catalog.CollectionPage{Page: page}, nil
}

func (f *fakeCatalog) Details(_ context.Context, _ catalog.Kind, _ int) (*catalog.Details, error) {
	return f.details, f.detailsErr
}

func (f *fakeCatalog) fetches() []fetchArgs {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]fetchArgs(nil), f.calls...)
}

type fakeLibrary struct {
	added       []models.AddLibraryItemInput
	addErr      error
	removeErr   error
	removed     []catalog.Kind
	page        *models.PaginatedLibrary
	memberships services.Memberships
}

func (f *fakeLibrary) Add(_ context.Context, userID uuid.UUID, list models.List, input models.AddLibraryItemInput) (*models.LibraryItem, error) {
	if f.addErr != nil {
		return nil, f.addErr
	}
	f.added = append(f.added, input)
	return &models.LibraryItem{ID: uuid.New(), UserID: userID, List: list, TmdbID: input.TmdbID, Kind: input.Kind, Title: input.Title, CreatedAt: testTime}, nil
}

func (f *fakeLibrary) Remove(_ context.Context, _ uuid.UUID, _ models.List, kind catalog.Kind, _ int) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, kind)
	return nil
}

func (f *fakeLibrary) List(_ context.Context, _ uuid.UUID, _ models.List, page, _ int) (*models.PaginatedLibrary, error) {
	if f.page != nil {
		return f.page, nil
	}
	return &models.PaginatedLibrary{Results: []models.LibraryItem{}, Page: page}, nil
}

func (f *fakeLibrary) Memberships(context.Context, uuid.UUID, catalog.Kind, int) (services.Memberships, error) {
	return f.memberships, nil
}

type fakeSocial struct {
	comments   []models.Comment
	commentErr error
	titles     []services.TitleRef
	followErr  error
	follows    []uuid.UUID
	users      []*models.User
	profile    *models.Profile
	feed       []models.Activity
	feedLimit  int
}

func (f *fakeSocial) AddComment(_ context.Context, userID uuid.UUID, title services.TitleRef, content string) (*models.Comment, error) {
	if f.commentErr != nil {
		return nil, f.commentErr
	}
	f.titles = append(f.titles, title)
	return &models.Comment{ID: uuid.New(), UserID: userID, TmdbID: title.TmdbID, Kind: title.Kind, Content: content, CreatedAt: testTime}, nil
}

func (f *fakeSocial) ListComments(context.Context, catalog.Kind, int) ([]models.Comment, error) {
	return f.comments, nil
}

func (f *fakeSocial) UpdateComment(_ context.Context, userID, commentID uuid.UUID, content string) (*models.Comment, error) {
	if f.commentErr != nil {
		return nil, f.commentErr
	}
	return &models.Comment{ID: commentID, UserID: userID, Content: content}, nil
}

func (f *fakeSocial) DeleteComment(context.Context, uuid.UUID, uuid.UUID) error {
	return f.commentErr
}

func (f *fakeSocial) Follow(_ context.Context, _, followingID uuid.UUID) error {
	if f.followErr != nil {
		return f.followErr
	}
	f.follows = append(f.follows, followingID)
	return nil
}

func (f *fakeSocial) Unfollow(context.Context, uuid.UUID, uuid.UUID) error {
	return f.followErr
}

func (f *fakeSocial) Followers(context.Context, uuid.UUID) ([]*models.User, error) {
	return f.users, nil
}

func (f *fakeSocial) Following(context.Context, uuid.UUID) ([]*models.User, error) {
	return f.users, nil
}

func (f *fakeSocial) Profile(_ context.Context, _, userID uuid.UUID) (*models.Profile, error) {
	if f.profile == nil {
		return nil, services.ErrNotFound
	}
	return f.profile, nil
}

func (f *fakeSocial) Feed(_ context.Context, _ uuid.UUID, limit int) ([]models.Activity, error) {
	f.feedLimit = limit
	return f.feed, nil
}
