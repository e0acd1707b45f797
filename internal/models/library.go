package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/liamwears/lbmovies/internal/catalog"
)

// List names one of a user's saved lists
type List string

const (
	ListFavorites List = "favorites"
	ListWatchlist List = "watchlist"
)

// ParseList accepts a list name from a URL path
func ParseList(s string) (List, error) {
	switch l := List(strings.ToLower(strings.TrimSpace(s))); l {
	case ListFavorites, ListWatchlist:
		return l, nil
	}
	return "", fmt.Errorf("invalid list %q", s)
}

func (l List) String() string {
	return string(l)
}

// LibraryItem is a title saved to one of a user's lists
type LibraryItem struct {
	ID          uuid.UUID    `db:"id" json:"id"`
	UserID      uuid.UUID    `db:"userId" json:"userId"`
	List        List         `db:"list" json:"list"`
	TmdbID      int          `db:"tmdbId" json:"tmdbId"`
	Kind        catalog.Kind `db:"kind" json:"kind"`
	Title       string       `db:"title" json:"title"`
	PosterPath  *string      `db:"posterPath" json:"posterPath"`
	PrimaryDate *string      `db:"primaryDate" json:"primaryDate"`
	VoteAverage float64      `db:"voteAverage" json:"voteAverage"`
	CreatedAt   time.Time    `db:"createdAt" json:"createdAt"`
}

// AddLibraryItemInput is the body of POST /api/library/{list}
type AddLibraryItemInput struct {
	TmdbID      int          `json:"tmdbId"`
	Kind        catalog.Kind `json:"kind"`
	Title       string       `json:"title"`
	PosterPath  *string      `json:"posterPath"`
	PrimaryDate *string      `json:"primaryDate"`
	VoteAverage float64      `json:"voteAverage"`
}

// Validate checks the required fields
func (in AddLibraryItemInput) Validate() error {
	if in.TmdbID <= 0 {
		return fmt.Errorf("tmdbId is required")
	}
	if !in.Kind.IsValid() {
		return fmt.Errorf("invalid kind %q", in.Kind)
	}
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("title is required")
	}
	return nil
}

// LibraryInputFromItem builds an add request from a catalog item
func LibraryInputFromItem(item catalog.CatalogItem) AddLibraryItemInput {
	return AddLibraryItemInput{
		TmdbID:      item.ID,
		Kind:        item.Kind,
		Title:       item.Title,
		PosterPath:  item.PosterPath,
		PrimaryDate: item.PrimaryDate,
		VoteAverage: item.VoteAverage,
	}
}

// PaginatedLibrary represents a page of library items
type PaginatedLibrary struct {
	Results    []LibraryItem `json:"results"`
	Page       int           `json:"page"`
	Count      int           `json:"count"`
	TotalPages int           `json:"totalPages"`
}
