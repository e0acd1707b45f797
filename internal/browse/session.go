package browse

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"

	"github.com/liamwears/lbmovies/internal/catalog"
)

// Fetcher loads one page of one collection. *catalog.Client implements it.
type Fetcher interface {
	FetchPage(ctx context.Context, kind catalog.Kind, query string, page int) (*catalog.CollectionPage, error)
}

// Options configures a Session
type Options struct {
	DebounceDelay time.Duration
	Clock         clockwork.Clock
	Logger        logrus.FieldLogger
	// OnChange receives a fresh View after every state change
	OnChange func(View)
	// OnScrollTop runs after a page change has been published
	OnScrollTop func()
}

// slot is one collection's load state plus its request sequencing
type slot struct {
	kind   catalog.Kind
	state  LoadState
	token  uint64
	query  string
	page   int
	cancel context.CancelFunc
}

func (s *slot) current(query string, page int) bool {
	return s.query == query && s.page == page &&
		(s.state.Status == StatusLoading || s.state.Status == StatusLoaded)
}

// reset drops the slot's data and orphans any in-flight fetch
func (s *slot) reset() {
	s.token++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.state = LoadState{}
	s.query, s.page = "", 0
}

// Session drives one browsing view: it owns the QueryState, both load slots,
// and the search debouncer. It is safe for concurrent use.
type Session struct {
	mu       sync.Mutex
	notifyMu sync.Mutex

	fetcher  Fetcher
	opts     Options
	logger   logrus.FieldLogger
	debounce *Debouncer[string]

	ctx    context.Context
	cancel context.CancelFunc
	wg     conc.WaitGroup

	query  QueryState
	movies *slot
	series *slot
	closed bool
}

// NewSession starts a session from an initial state and immediately fetches
// the collections its section needs.
func NewSession(ctx context.Context, fetcher Fetcher, initial QueryState, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		fetcher: fetcher,
		opts:    opts,
		logger:  opts.Logger.WithField("component", "browse"),
		ctx:     ctx,
		cancel:  cancel,
		query:   initial.normalized(),
		movies:  &slot{kind: catalog.KindMovie},
		series:  &slot{kind: catalog.KindSeries},
	}
	s.debounce = NewDebouncer(opts.Clock, opts.DebounceDelay, s.applySearch)

	s.mu.Lock()
	s.reconcileLocked()
	s.mu.Unlock()

	s.publish()
	return s
}

// Type records raw search input. The search itself runs once the input has
// been stable for the debounce delay.
func (s *Session) Type(term string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.query.RawSearchTerm = term
	s.mu.Unlock()

	s.debounce.Push(term)
	s.publish()
}

// Submit applies a search term immediately, skipping the debounce delay
func (s *Session) Submit(term string) {
	s.debounce.Cancel()

	s.mu.Lock()
	if !s.closed {
		s.query.RawSearchTerm = term
	}
	s.mu.Unlock()

	s.applySearch(term)
}

// applySearch commits a debounced term: both page counters go back to 1 and
// every collection is refetched.
func (s *Session) applySearch(term string) {
	s.mu.Lock()
	if s.closed || term == s.query.DebouncedSearchTerm {
		s.mu.Unlock()
		return
	}

	s.query.DebouncedSearchTerm = term
	s.query.PageMovies = 1
	s.query.PageSeries = 1
	s.movies.reset()
	s.series.reset()
	s.reconcileLocked()
	s.mu.Unlock()

	s.logger.WithField("query", term).Debug("search term applied")
	s.publish()
}

// SetSection switches the visible section. Page counters are kept; only
// collections that are missing or stale for the current query are fetched.
func (s *Session) SetSection(section Section) error {
	section, err := ParseSection(string(section))
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed || section == s.query.ActiveSection {
		s.mu.Unlock()
		return nil
	}
	s.query.ActiveSection = section
	s.reconcileLocked()
	s.mu.Unlock()

	s.publish()
	return nil
}

// SetPage applies a page-change action for the active section
func (s *Session) SetPage(page int) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}

	next, err := ChangePage(s.query, page)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if next == s.query {
		s.mu.Unlock()
		return nil
	}
	s.query = next
	s.reconcileLocked()
	s.mu.Unlock()

	s.publish()
	if s.opts.OnScrollTop != nil {
		s.opts.OnScrollTop()
	}
	return nil
}

// View returns the current presentation snapshot
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return BuildView(s.query, s.movies.state, s.series.state)
}

// State returns the current QueryState
func (s *Session) State() QueryState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Wait blocks until every fetch started so far has completed
func (s *Session) Wait() {
	s.wg.Wait()
}

// Close cancels in-flight fetches and the pending search. Late results are
// discarded and OnChange is not called once Close has returned. Close must
// not be called from inside OnChange.
func (s *Session) Close() {
	s.debounce.Stop()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()

	// a debounced search may still be notifying from its timer goroutine
	s.notifyMu.Lock()
	s.notifyMu.Unlock()
}

// reconcileLocked starts a fetch for every needed collection whose slot does
// not already hold (or await) the current query and page.
func (s *Session) reconcileLocked() {
	for _, kind := range s.query.ActiveSection.Kinds() {
		sl := s.slotFor(kind)
		query, page := s.query.DebouncedSearchTerm, s.query.PageFor(kind)
		if sl.current(query, page) {
			continue
		}
		s.startFetchLocked(sl, query, page)
	}
}

func (s *Session) startFetchLocked(sl *slot, query string, page int) {
	sl.reset()
	sl.query, sl.page = query, page
	sl.state = LoadState{Status: StatusLoading}

	token := sl.token
	kind := sl.kind
	ctx, cancel := context.WithCancel(s.ctx)
	sl.cancel = cancel

	s.logger.WithFields(logrus.Fields{
		"kind":  kind,
		"query": query,
		"page":  page,
		"token": token,
	}).Debug("fetch started")

	s.wg.Go(func() {
		result, err := s.fetcher.FetchPage(ctx, kind, query, page)
		s.complete(kind, token, query, page, result, err)
	})
}

// complete applies a fetch result only if it is still the latest request for
// its slot and still matches the current query and page.
func (s *Session) complete(kind catalog.Kind, token uint64, query string, page int, result *catalog.CollectionPage, err error) {
	s.mu.Lock()
	sl := s.slotFor(kind)
	if s.closed || token != sl.token || query != s.query.DebouncedSearchTerm || page != s.query.PageFor(kind) {
		s.mu.Unlock()
		s.logger.WithFields(logrus.Fields{"kind": kind, "page": page, "token": token}).Debug("stale fetch discarded")
		return
	}

	sl.cancel()
	sl.cancel = nil
	if err != nil {
		sl.state = failed(err)
	} else {
		sl.state = loaded(result)
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.WithFields(logrus.Fields{"kind": kind, "page": page}).WithError(err).Warn("fetch failed")
	}
	s.publish()
}

func (s *Session) slotFor(kind catalog.Kind) *slot {
	if kind == catalog.KindSeries {
		return s.series
	}
	return s.movies
}

// publish hands the latest View to OnChange. Notifications are serialized,
// always carry the state at the time of the call, and stop once closed.
func (s *Session) publish() {
	if s.opts.OnChange == nil {
		return
	}

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	v := BuildView(s.query, s.movies.state, s.series.state)
	s.mu.Unlock()

	s.opts.OnChange(v)
}
