package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/liamwears/lbmovies/internal/catalog"
	"github.com/liamwears/lbmovies/internal/models"
	"github.com/liamwears/lbmovies/internal/services"
)

// Catalog is the metadata source. *catalog.Client implements it.
type Catalog interface {
	FetchPage(ctx context.Context, kind catalog.Kind, query string, page int) (*catalog.CollectionPage, error)
	Details(ctx context.Context, kind catalog.Kind, id int) (*catalog.Details, error)
}

// LibraryService is implemented by *services.LibraryService
type LibraryService interface {
	Add(ctx context.Context, userID uuid.UUID, list models.List, input models.AddLibraryItemInput) (*models.LibraryItem, error)
	Remove(ctx context.Context, userID uuid.UUID, list models.List, kind catalog.Kind, tmdbID int) error
	List(ctx context.Context, userID uuid.UUID, list models.List, page, limit int) (*models.PaginatedLibrary, error)
	Memberships(ctx context.Context, userID uuid.UUID, kind catalog.Kind, tmdbID int) (services.Memberships, error)
}

// SocialService is implemented by *services.SocialService
type SocialService interface {
	AddComment(ctx context.Context, userID uuid.UUID, title services.TitleRef, content string) (*models.Comment, error)
	ListComments(ctx context.Context, kind catalog.Kind, tmdbID int) ([]models.Comment, error)
	UpdateComment(ctx context.Context, userID, commentID uuid.UUID, content string) (*models.Comment, error)
	DeleteComment(ctx context.Context, userID, commentID uuid.UUID) error
	Follow(ctx context.Context, followerID, followingID uuid.UUID) error
	Unfollow(ctx context.Context, followerID, followingID uuid.UUID) error
	Followers(ctx context.Context, userID uuid.UUID) ([]*models.User, error)
	Following(ctx context.Context, userID uuid.UUID) ([]*models.User, error)
	Profile(ctx context.Context, viewerID, userID uuid.UUID) (*models.Profile, error)
	Feed(ctx context.Context, userID uuid.UUID, limit int) ([]models.Activity, error)
}
