package services

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/liamwears/lbmovies/internal/catalog"
	"github.com/liamwears/lbmovies/internal/database"
	"github.com/liamwears/lbmovies/internal/models"
)

const (
	libraryColumns = `id, "userId", list, "tmdbId", kind, title, "posterPath", "primaryDate", "voteAverage", "createdAt"`

	// DefaultLibraryPageSize fills a 3-column poster grid
	DefaultLibraryPageSize = 27
)

// ActivityRecorder receives feed events. Failures are the recorder's concern.
type ActivityRecorder interface {
	RecordActivity(ctx context.Context, activity models.Activity)
}

// Memberships says which lists hold a title
type Memberships struct {
	Favorite  bool `json:"favorite"`
	Watchlist bool `json:"watchlist"`
}

// LibraryService manages favorites and watchlists
type LibraryService struct {
	db       database.DBTX
	activity ActivityRecorder
}

// NewLibraryService creates a new LibraryService. activity may be nil.
func NewLibraryService(db database.DBTX, activity ActivityRecorder) *LibraryService {
	return &LibraryService{db: db, activity: activity}
}

func scanLibraryItem(row scanner) (*models.LibraryItem, error) {
	var item models.LibraryItem
	err := row.Scan(
		&item.ID,
		&item.UserID,
		&item.List,
		&item.TmdbID,
		&item.Kind,
		&item.Title,
		&item.PosterPath,
		&item.PrimaryDate,
		&item.VoteAverage,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Add saves a title to a list. Adding a favorite shows up in followers' feeds.
func (s *LibraryService) Add(ctx context.Context, userID uuid.UUID, list models.List, input models.AddLibraryItemInput) (*models.LibraryItem, error) {
	if err := input.Validate(); err != nil {
		return nil, invalid("%v", err)
	}

	query := `
		INSERT INTO "LibraryItem" ("userId", list, "tmdbId", kind, title, "posterPath", "primaryDate", "voteAverage")
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + libraryColumns

	item, err := scanLibraryItem(s.db.QueryRow(ctx, query,
		userID,
		list,
		input.TmdbID,
		input.Kind,
		input.Title,
		input.PosterPath,
		input.PrimaryDate,
		input.VoteAverage,
	))
	if err != nil {
		return nil, translate(err, "add library item")
	}

	if list == models.ListFavorites && s.activity != nil {
		tmdbID, kind, title := item.TmdbID, item.Kind, item.Title
		s.activity.RecordActivity(ctx, models.Activity{
			UserID: userID,
			Type:   models.ActivityFavorite,
			TmdbID: &tmdbID,
			Kind:   &kind,
			Title:  &title,
		})
	}

	return item, nil
}

// Remove deletes a title from a list
func (s *LibraryService) Remove(ctx context.Context, userID uuid.UUID, list models.List, kind catalog.Kind, tmdbID int) error {
	result, err := s.db.Exec(ctx, `
		DELETE FROM "LibraryItem"
		WHERE "userId" = $1 AND list = $2 AND kind = $3 AND "tmdbId" = $4
	`, userID, list, kind, tmdbID)
	if err != nil {
		return fmt.Errorf("failed to remove library item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns a page of a list, newest first
func (s *LibraryService) List(ctx context.Context, userID uuid.UUID, list models.List, page, limit int) (*models.PaginatedLibrary, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = DefaultLibraryPageSize
	}
	offset := (page - 1) * limit

	var total int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM "LibraryItem" WHERE "userId" = $1 AND list = $2
	`, userID, list).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("failed to count library items: %w", err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT `+libraryColumns+`
		FROM "LibraryItem"
		WHERE "userId" = $1 AND list = $2
		ORDER BY "createdAt" DESC
		LIMIT $3 OFFSET $4
	`, userID, list, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query library items: %w", err)
	}
	defer rows.Close()

	items := []models.LibraryItem{}
	for rows.Next() {
		item, err := scanLibraryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan library item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating library items: %w", err)
	}

	return &models.PaginatedLibrary{
		Results:    items,
		Page:       page,
		Count:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// Contains reports whether a title is on a list
func (s *LibraryService) Contains(ctx context.Context, userID uuid.UUID, list models.List, kind catalog.Kind, tmdbID int) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM "LibraryItem"
			WHERE "userId" = $1 AND list = $2 AND kind = $3 AND "tmdbId" = $4
		)
	`, userID, list, kind, tmdbID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check library item: %w", err)
	}
	return exists, nil
}

// Memberships reports both lists for a title in one query
func (s *LibraryService) Memberships(ctx context.Context, userID uuid.UUID, kind catalog.Kind, tmdbID int) (Memberships, error) {
	var m Memberships
	rows, err := s.db.Query(ctx, `
		SELECT list FROM "LibraryItem"
		WHERE "userId" = $1 AND kind = $2 AND "tmdbId" = $3
	`, userID, kind, tmdbID)
	if err != nil {
		return m, fmt.Errorf("failed to query memberships: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var list models.List
		if err := rows.Scan(&list); err != nil {
			return m, fmt.Errorf("failed to scan membership: %w", err)
		}
		switch list {
		case models.ListFavorites:
			m.Favorite = true
		case models.ListWatchlist:
			m.Watchlist = true
		}
	}
	return m, rows.Err()
}
