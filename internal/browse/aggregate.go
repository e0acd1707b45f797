package browse

import (
	"cmp"
	"encoding/json"
	"slices"

	"github.com/liamwears/lbmovies/internal/catalog"
)

// Score ranks items in the "all" section. Missing votes count as zero.
func Score(item catalog.CatalogItem) float64 {
	return item.VoteAverage * float64(item.VoteCount)
}

// Aggregate builds the visible item list for a section. Single-kind sections
// keep upstream order; "all" concatenates movies then series and sorts
// stably by descending score.
func Aggregate(section Section, movies, series LoadState) []catalog.CatalogItem {
	switch section {
	case SectionMovies:
		return tagged(movies.Items(), catalog.KindMovie)
	case SectionSeries:
		return tagged(series.Items(), catalog.KindSeries)
	}

	merged := append(tagged(movies.Items(), catalog.KindMovie), tagged(series.Items(), catalog.KindSeries)...)
	slices.SortStableFunc(merged, func(a, b catalog.CatalogItem) int {
		return cmp.Compare(Score(b), Score(a))
	})
	return merged
}

func tagged(items []catalog.CatalogItem, kind catalog.Kind) []catalog.CatalogItem {
	out := make([]catalog.CatalogItem, len(items))
	for i, item := range items {
		item.Kind = kind
		out[i] = item
	}
	return out
}

// EffectiveLoading is true while any collection the section needs is loading
func EffectiveLoading(section Section, movies, series LoadState) bool {
	switch section {
	case SectionMovies:
		return movies.Loading()
	case SectionSeries:
		return series.Loading()
	}
	return movies.Loading() || series.Loading()
}

// EffectiveErrors returns the failures relevant to the section, one per collection
func EffectiveErrors(section Section, movies, series LoadState) (moviesErr, seriesErr error) {
	if section.Needs(catalog.KindMovie) {
		moviesErr = movies.Error()
	}
	if section.Needs(catalog.KindSeries) {
		seriesErr = series.Error()
	}
	return moviesErr, seriesErr
}

// EffectiveTotalResults sums both collections for "all"
func EffectiveTotalResults(section Section, movies, series LoadState) int {
	switch section {
	case SectionMovies:
		return movies.TotalResults()
	case SectionSeries:
		return series.TotalResults()
	}
	return movies.TotalResults() + series.TotalResults()
}

// View is the presentation-ready snapshot of a browse session
type View struct {
	Query        QueryState
	Items        []catalog.CatalogItem
	Loading      bool
	MoviesStatus Status
	SeriesStatus Status
	MoviesErr    error
	SeriesErr    error
	TotalResults int
	CurrentPage  int
	TotalPages   int
}

// BuildView combines the query and both load states into a View
func BuildView(q QueryState, movies, series LoadState) View {
	section := q.ActiveSection
	moviesErr, seriesErr := EffectiveErrors(section, movies, series)

	return View{
		Query:        q,
		Items:        Aggregate(section, movies, series),
		Loading:      EffectiveLoading(section, movies, series),
		MoviesStatus: movies.Status,
		SeriesStatus: series.Status,
		MoviesErr:    moviesErr,
		SeriesErr:    seriesErr,
		TotalResults: EffectiveTotalResults(section, movies, series),
		CurrentPage:  CurrentPage(q),
		TotalPages:   TotalPages(section, movies, series),
	}
}

// HasError reports whether any relevant collection failed
func (v View) HasError() bool {
	return v.MoviesErr != nil || v.SeriesErr != nil
}

// Empty is true once everything settled without errors and without items
func (v View) Empty() bool {
	return !v.Loading && !v.HasError() && len(v.Items) == 0
}

type viewJSON struct {
	Query        QueryState            `json:"query"`
	Items        []catalog.CatalogItem `json:"items"`
	Loading      bool                  `json:"loading"`
	MoviesStatus Status                `json:"moviesStatus"`
	SeriesStatus Status                `json:"seriesStatus"`
	MoviesError  string                `json:"moviesError,omitempty"`
	SeriesError  string                `json:"seriesError,omitempty"`
	TotalResults int                   `json:"totalResults"`
	Page         int                   `json:"page"`
	TotalPages   int                   `json:"totalPages"`
}

// MarshalJSON renders errors as messages
func (v View) MarshalJSON() ([]byte, error) {
	out := viewJSON{
		Query:        v.Query,
		Items:        v.Items,
		Loading:      v.Loading,
		MoviesStatus: v.MoviesStatus,
		SeriesStatus: v.SeriesStatus,
		TotalResults: v.TotalResults,
		Page:         v.CurrentPage,
		TotalPages:   v.TotalPages,
	}
	if out.Items == nil {
		out.Items = []catalog.CatalogItem{}
	}
	if v.MoviesErr != nil {
		out.MoviesError = v.MoviesErr.Error()
	}
	if v.SeriesErr != nil {
		out.SeriesError = v.SeriesErr.Error()
	}
	return json.Marshal(out)
}
