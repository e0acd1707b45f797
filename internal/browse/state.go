package browse

import (
	"errors"
	"fmt"
	"strings"

	"github.com/liamwears/lbmovies/internal/catalog"
)

// Section selects which collections the unified view shows
type Section string

const (
	SectionAll    Section = "all"
	SectionMovies Section = "movies"
	SectionSeries Section = "series"
)

// ErrInvalidSection is returned for an unknown section name
var ErrInvalidSection = errors.New("invalid section")

// ParseSection parses a section name; empty means "all"
func ParseSection(s string) (Section, error) {
	switch Section(strings.ToLower(strings.TrimSpace(s))) {
	case "", SectionAll:
		return SectionAll, nil
	case SectionMovies:
		return SectionMovies, nil
	case SectionSeries:
		return SectionSeries, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSection, s)
}

// Kinds returns the collections this section needs, movies first
func (s Section) Kinds() []catalog.Kind {
	switch s {
	case SectionMovies:
		return []catalog.Kind{catalog.KindMovie}
	case SectionSeries:
		return []catalog.Kind{catalog.KindSeries}
	}
	return []catalog.Kind{catalog.KindMovie, catalog.KindSeries}
}

// Needs reports whether the section shows the given collection
func (s Section) Needs(kind catalog.Kind) bool {
	for _, k := range s.Kinds() {
		if k == kind {
			return true
		}
	}
	return false
}

// QueryState is everything the user has chosen for the current view
type QueryState struct {
	RawSearchTerm       string  `json:"rawSearchTerm"`
	DebouncedSearchTerm string  `json:"searchTerm"`
	ActiveSection       Section `json:"section"`
	PageMovies          int     `json:"pageMovies"`
	PageSeries          int     `json:"pageSeries"`
}

// DefaultQueryState is the state of a fresh session
func DefaultQueryState() QueryState {
	return QueryState{
		ActiveSection: SectionAll,
		PageMovies:    1,
		PageSeries:    1,
	}
}

// PageFor returns the page counter of one collection
func (q QueryState) PageFor(kind catalog.Kind) int {
	if kind == catalog.KindSeries {
		return q.PageSeries
	}
	return q.PageMovies
}

// normalized fills defaults and clamps counters into range
func (q QueryState) normalized() QueryState {
	if q.ActiveSection == "" {
		q.ActiveSection = SectionAll
	}
	q.PageMovies = clampPage(q.PageMovies)
	q.PageSeries = clampPage(q.PageSeries)
	if q.RawSearchTerm == "" {
		q.RawSearchTerm = q.DebouncedSearchTerm
	}
	return q
}

func clampPage(p int) int {
	return min(max(p, 1), MaxPages)
}

// Status is the lifecycle position of one collection
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	}
	return "idle"
}

// MarshalText renders the status name in JSON
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// LoadState is Idle, Loading, Loaded(Page) or Failed(Err)
type LoadState struct {
	Status Status
	Page   *catalog.CollectionPage
	Err    error
}

// Loading reports whether a fetch is in flight
func (l LoadState) Loading() bool {
	return l.Status == StatusLoading
}

// Items returns the loaded items, nil unless Loaded
func (l LoadState) Items() []catalog.CatalogItem {
	if l.Status != StatusLoaded || l.Page == nil {
		return nil
	}
	return l.Page.Items
}

// TotalPages returns the loaded collection's page count, 0 unless Loaded
func (l LoadState) TotalPages() int {
	if l.Status != StatusLoaded || l.Page == nil {
		return 0
	}
	return l.Page.TotalPages
}

// TotalResults returns the loaded collection's result count, 0 unless Loaded
func (l LoadState) TotalResults() int {
	if l.Status != StatusLoaded || l.Page == nil {
		return 0
	}
	return l.Page.TotalResults
}

// Error returns the failure, nil unless Failed
func (l LoadState) Error() error {
	if l.Status != StatusFailed {
		return nil
	}
	return l.Err
}

func loaded(p *catalog.CollectionPage) LoadState {
	return LoadState{Status: StatusLoaded, Page: p}
}

func failed(err error) LoadState {
	return LoadState{Status: StatusFailed, Err: err}
}
