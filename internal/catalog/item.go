package catalog

import (
	"fmt"
	"strings"
)

// Kind tags a catalog item as a movie or a series
type Kind string

const (
	KindMovie  Kind = "movie"
	KindSeries Kind = "series"
)

// ParseKind accepts "movie", "series" and the upstream alias "tv"
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie", "movies":
		return KindMovie, nil
	case "series", "tv":
		return KindSeries, nil
	}
	return "", fmt.Errorf("unknown catalog kind %q", s)
}

// IsValid checks if the kind is one of the known kinds
func (k Kind) IsValid() bool {
	return k == KindMovie || k == KindSeries
}

// String returns the string representation of Kind
func (k Kind) String() string {
	return string(k)
}

// upstream returns the path segment the metadata service uses for this kind
func (k Kind) upstream() string {
	if k == KindSeries {
		return "tv"
	}
	return "movie"
}

// CatalogItem is a movie or series normalized at the ingestion boundary
type CatalogItem struct {
	ID          int     `json:"id"`
	Kind        Kind    `json:"kind"`
	Title       string  `json:"title"`
	PosterPath  *string `json:"posterPath"`
	Overview    string  `json:"overview"`
	PrimaryDate *string `json:"primaryDate"`
	VoteAverage float64 `json:"voteAverage"`
	VoteCount   int     `json:"voteCount"`
}

// Year returns the four-digit year of PrimaryDate, or "" if unknown
func (i CatalogItem) Year() string {
	if i.PrimaryDate == nil || len(*i.PrimaryDate) < 4 {
		return ""
	}
	return (*i.PrimaryDate)[:4]
}

// CollectionPage is one page of one collection for one query
type CollectionPage struct {
	Items        []CatalogItem `json:"items"`
	Page         int           `json:"page"`
	TotalPages   int           `json:"totalPages"`
	TotalResults int           `json:"totalResults"`
}

// rawRecord covers both movie and tv result shapes
type rawRecord struct {
	ID           int      `json:"id"`
	Title        string   `json:"title"`
	Name         string   `json:"name"`
	PosterPath   *string  `json:"poster_path"`
	Overview     string   `json:"overview"`
	ReleaseDate  string   `json:"release_date"`
	FirstAirDate string   `json:"first_air_date"`
	VoteAverage  *float64 `json:"vote_average"`
	VoteCount    *float64 `json:"vote_count"`
}

type rawPage struct {
	Page         int         `json:"page"`
	Results      []rawRecord `json:"results"`
	TotalPages   int         `json:"total_pages"`
	TotalResults int         `json:"total_results"`
}

func (r rawRecord) normalize(kind Kind) CatalogItem {
	item := CatalogItem{
		ID:       r.ID,
		Kind:     kind,
		Overview: r.Overview,
	}

	title, date := r.Title, r.ReleaseDate
	if kind == KindSeries {
		title, date = r.Name, r.FirstAirDate
	}
	// Some records carry the other kind's field names
	if title == "" {
		title = firstNonEmpty(r.Title, r.Name)
	}
	if date == "" {
		date = firstNonEmpty(r.ReleaseDate, r.FirstAirDate)
	}
	item.Title = title
	if date != "" {
		item.PrimaryDate = &date
	}

	if r.PosterPath != nil && *r.PosterPath != "" {
		p := *r.PosterPath
		item.PosterPath = &p
	}
	if r.VoteAverage != nil {
		item.VoteAverage = *r.VoteAverage
	}
	if r.VoteCount != nil {
		item.VoteCount = int(*r.VoteCount)
	}

	return item
}

func (p rawPage) normalize(kind Kind) *CollectionPage {
	page := &CollectionPage{
		Items:        make([]CatalogItem, 0, len(p.Results)),
		Page:         p.Page,
		TotalPages:   max(p.TotalPages, 0),
		TotalResults: max(p.TotalResults, 0),
	}
	for _, r := range p.Results {
		page.Items = append(page.Items, r.normalize(kind))
	}
	return page
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
