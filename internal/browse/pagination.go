package browse

import (
	"errors"

	"github.com/liamwears/lbmovies/internal/catalog"
)

// MaxPages is the upstream ceiling on selectable pages
const MaxPages = 500

// ErrPageOutOfRange is returned for a page change outside 1..MaxPages
var ErrPageOutOfRange = errors.New("page out of range")

// CurrentPage is the page shown to the user. "all" keeps both counters in
// lock-step, so the movies counter stands for both.
func CurrentPage(q QueryState) int {
	if q.ActiveSection == SectionSeries {
		return q.PageSeries
	}
	return q.PageMovies
}

// TotalPages is the selectable page range: the larger collection for "all",
// clamped to MaxPages.
func TotalPages(section Section, movies, series LoadState) int {
	var total int
	switch section {
	case SectionMovies:
		total = movies.TotalPages()
	case SectionSeries:
		total = series.TotalPages()
	default:
		total = max(movies.TotalPages(), series.TotalPages())
	}
	return min(total, MaxPages)
}

// ChangePage applies a page-change action. Only the counters of the
// collections the section shows are touched.
func ChangePage(q QueryState, page int) (QueryState, error) {
	if page < 1 || page > MaxPages {
		return q, ErrPageOutOfRange
	}

	if q.ActiveSection.Needs(catalog.KindMovie) {
		q.PageMovies = page
	}
	if q.ActiveSection.Needs(catalog.KindSeries) {
		q.PageSeries = page
	}
	return q, nil
}

// PageWindow returns up to size page numbers centered on current, for page controls
func PageWindow(current, total, size int) []int {
	if total < 1 || size < 1 {
		return nil
	}
	current = min(max(current, 1), total)

	start := max(current-size/2, 1)
	end := min(start+size-1, total)
	start = max(end-size+1, 1)

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}
