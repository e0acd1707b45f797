package browse

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liamwears/lbmovies/internal/catalog"
)

func item(id int, avg float64, count int) catalog.CatalogItem {
	return catalog.CatalogItem{ID: id, Title: "t", VoteAverage: avg, VoteCount: count}
}

func page(totalPages, totalResults int, items ...catalog.CatalogItem) LoadState {
	return loaded(&catalog.CollectionPage{Items: items, Page: 1, TotalPages: totalPages, TotalResults: totalResults})
}

func ids(items []catalog.CatalogItem) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestAggregateSingleSectionKeepsUpstreamOrder(t *testing.T) {
	movies := page(1, 3, item(1, 5, 10), item(2, 9, 1000), item(3, 7, 50))
	series := page(1, 1, item(10, 9, 9000))

	got := Aggregate(SectionMovies, movies, series)
	assert.Equal(t, []int{1, 2, 3}, ids(got))
	for _, it := range got {
		assert.Equal(t, catalog.KindMovie, it.Kind)
	}

	got = Aggregate(SectionSeries, movies, series)
	assert.Equal(t, []int{10}, ids(got))
	assert.Equal(t, catalog.KindSeries, got[0].Kind)
}

func TestAggregateAllSortsByScore(t *testing.T) {
	movies := page(1, 2, item(1, 5, 10), item(2, 8, 100))
	series := page(1, 2, item(10, 9, 50), item(11, 6, 1000))

	got := Aggregate(SectionAll, movies, series)

	// scores: 1=50, 2=800, 10=450, 11=6000
	assert.Equal(t, []int{11, 2, 10, 1}, ids(got))
	assert.Equal(t, catalog.KindSeries, got[0].Kind)
	assert.Equal(t, catalog.KindMovie, got[1].Kind)
}

func TestAggregateAllIsStable(t *testing.T) {
	movies := page(1, 3, item(1, 5, 10), item(2, 2, 25), item(3, 10, 5))
	series := page(1, 2, item(10, 25, 2), item(11, 1, 50))

	got := Aggregate(SectionAll, movies, series)

	// every item scores 50, so concatenation order must survive
	assert.Equal(t, []int{1, 2, 3, 10, 11}, ids(got))
}

func TestAggregateMissingVotesSortLast(t *testing.T) {
	movies := page(1, 3, item(1, 0, 0), item(2, 7, 0), item(3, 0.1, 1))
	series := page(1, 1, item(10, 0, 500))

	got := Aggregate(SectionAll, movies, series)

	assert.Equal(t, 3, got[0].ID)
	assert.Equal(t, []int{3, 1, 2, 10}, ids(got))
}

func TestAggregateSkipsCollectionsThatAreNotLoaded(t *testing.T) {
	movies := LoadState{Status: StatusLoading}
	series := page(1, 1, item(10, 5, 5))

	assert.Equal(t, []int{10}, ids(Aggregate(SectionAll, movies, series)))
	assert.Empty(t, Aggregate(SectionMovies, movies, series))

	movies = failed(errors.New("boom"))
	assert.Equal(t, []int{10}, ids(Aggregate(SectionAll, movies, series)))
}

func TestEffectiveLoading(t *testing.T) {
	loading := LoadState{Status: StatusLoading}
	done := page(1, 0)

	assert.True(t, EffectiveLoading(SectionMovies, loading, done))
	assert.False(t, EffectiveLoading(SectionSeries, loading, done))
	assert.True(t, EffectiveLoading(SectionAll, loading, done))
	assert.True(t, EffectiveLoading(SectionAll, done, loading))
	assert.False(t, EffectiveLoading(SectionAll, done, done))
}

func TestEffectiveErrorsAreIndependent(t *testing.T) {
	moviesFail := failed(errors.New("movies down"))
	seriesFail := failed(errors.New("series down"))

	m, s := EffectiveErrors(SectionAll, moviesFail, seriesFail)
	assert.EqualError(t, m, "movies down")
	assert.EqualError(t, s, "series down")

	m, s = EffectiveErrors(SectionMovies, moviesFail, seriesFail)
	assert.Error(t, m)
	assert.NoError(t, s)

	m, s = EffectiveErrors(SectionSeries, moviesFail, page(1, 0))
	assert.NoError(t, m)
	assert.NoError(t, s)
}

func TestEffectiveTotalResults(t *testing.T) {
	movies := page(2, 30)
	series := page(1, 12)

	assert.Equal(t, 42, EffectiveTotalResults(SectionAll, movies, series))
	assert.Equal(t, 30, EffectiveTotalResults(SectionMovies, movies, series))
	assert.Equal(t, 12, EffectiveTotalResults(SectionSeries, movies, series))
}

func TestViewMarshalJSON(t *testing.T) {
	q := DefaultQueryState()
	v := BuildView(q, failed(errors.New("network error: refused")), page(3, 60, item(10, 8, 10)))

	b, err := json.Marshal(v)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "network error: refused", out["moviesError"])
	assert.NotContains(t, out, "seriesError")
	assert.Equal(t, "failed", out["moviesStatus"])
	assert.Equal(t, "loaded", out["seriesStatus"])
	assert.EqualValues(t, 3, out["totalPages"])
	assert.EqualValues(t, 1, out["page"])
	assert.Len(t, out["items"], 1)
}

func TestViewEmpty(t *testing.T) {
	q := DefaultQueryState()
	assert.True(t, BuildView(q, page(0, 0), page(0, 0)).Empty())
	assert.False(t, BuildView(q, LoadState{Status: StatusLoading}, page(0, 0)).Empty())
	assert.False(t, BuildView(q, failed(errors.New("x")), page(0, 0)).Empty())
}
