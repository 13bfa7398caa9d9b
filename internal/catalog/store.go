package catalog

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// KV is the persistent key-value store reviews are written to.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Renderer receives every state change the presentation must reflect. It is
// called with the store lock held and must not call back into the Store.
type Renderer interface {
	OnItemsChanged(items []Item)
	OnItemUpdated(item Item)
	OnError(message string)
}

type nopRenderer struct{}

func (nopRenderer) OnItemsChanged([]Item) {}
func (nopRenderer) OnItemUpdated(Item)    {}
func (nopRenderer) OnError(string)        {}

type Options struct {
	Kind     Kind
	Source   Source
	KV       KV
	Renderer Renderer
	Log      *zap.Logger
	Metrics  *Metrics

	Now   func() time.Time
	NewID func() (ReviewID, error)
}

// Store owns the in-memory catalog: the item list from the last successful
// load, the full persisted review mapping and the current search query.
type Store struct {
	kind    Kind
	src     Source
	kv      KV
	render  Renderer
	log     *zap.Logger
	metrics *Metrics
	now     func() time.Time
	newID   func() (ReviewID, error)

	mu      sync.RWMutex
	state   State
	items   []Item
	index   map[int]int
	reviews ReviewStore
	query   string
}

func NewStore(opts Options) *Store {
	s := &Store{
		kind:    opts.Kind,
		src:     opts.Source,
		kv:      opts.KV,
		render:  opts.Renderer,
		log:     opts.Log,
		metrics: opts.Metrics,
		now:     opts.Now,
		newID:   opts.NewID,
		index:   map[int]int{},
		reviews: ReviewStore{},
	}
	if s.render == nil {
		s.render = nopRenderer{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = NewReviewID
	}
	s.log = s.log.With(zap.String("kind", s.kind.Name))
	return s
}

func (s *Store) Kind() Kind { return s.kind }

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) Query() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// Load fetches the item list, replaces the in-memory list wholesale and
// merges persisted reviews onto it. It is also the explicit reload: Ready
// and Failed stores may be loaded again. There is no retry.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateLoading {
		s.mu.Unlock()
		return ErrLoadInProgress
	}
	s.state = StateLoading
	s.mu.Unlock()

	persisted, err := s.readReviews(ctx)
	if err != nil {
		return s.fail(err, "Saved reviews could not be read. Check the review storage and reload.")
	}

	items, err := s.fetch(ctx)
	if err != nil {
		return s.fail(err, RemoteUnavailableMessage)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = items
	s.index = make(map[int]int, len(items))
	for i, it := range items {
		s.index[it.ID] = i
	}
	s.reviews = persisted
	s.applyReviewsLocked()
	s.state = StateReady

	s.metrics.load("ok", len(items))
	s.log.Info("catalog loaded", zap.Int("items", len(items)), zap.Int("reviewed_items", len(persisted)))

	s.render.OnItemsChanged(Filter(s.items, s.query))
	return nil
}

func (s *Store) fetch(ctx context.Context) ([]Item, error) {
	payload, err := s.src.Fetch(ctx)
	if err != nil {
		if !errors.Is(err, ErrRemoteUnavailable) {
			err = fmt.Errorf("%w: %w", ErrRemoteUnavailable, err)
		}
		return nil, err
	}

	items, skipped, err := decodeItems(s.kind, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRemoteUnavailable, err)
	}
	if len(skipped) > 0 {
		s.log.Warn("skipped malformed catalog records", zap.Strings("records", skipped))
	}
	return items, nil
}

func (s *Store) fail(err error, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateFailed
	s.metrics.load("error", 0)
	s.log.Error("catalog load failed", zap.Error(err))

	s.render.OnError(message)
	return err
}

// Search returns the items matching query in list order. It never mutates
// the store.
func (s *Store) Search(query string) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state != StateReady {
		return nil, ErrNotReady
	}
	return Filter(s.items, query), nil
}

// SetSearchQuery records the visitor's query and emits the filtered list.
// The query is remembered even before the first load completes and is
// applied when it does.
func (s *Store) SetSearchQuery(query string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.query = query
	if s.state != StateReady {
		return ErrNotReady
	}
	s.render.OnItemsChanged(Filter(s.items, query))
	return nil
}

func (s *Store) Item(id int) (Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state != StateReady {
		return Item{}, ErrNotReady
	}
	i, ok := s.index[id]
	if !ok {
		return Item{}, fmt.Errorf("%w: id=%d", ErrNotFound, id)
	}
	return s.items[i].clone(), nil
}

func (s *Store) AddReview(ctx context.Context, itemID int, text string) (Review, error) {
	return s.AddReviewAs(ctx, itemID, "", text)
}

// AddReviewAs appends a review to an item. The whole ReviewStore is
// persisted before the append becomes visible; when persisting fails the
// in-memory state is left untouched and ErrPersistence is returned.
func (s *Store) AddReviewAs(ctx context.Context, itemID int, reviewer, text string) (Review, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		s.metrics.reviewFailed("validation")
		return Review{}, fmt.Errorf("%w: review text is empty", ErrValidation)
	}
	reviewer = strings.TrimSpace(reviewer)
	if reviewer == "" {
		reviewer = AnonymousReviewer
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady {
		s.metrics.reviewFailed("not_ready")
		return Review{}, ErrNotReady
	}
	idx, ok := s.index[itemID]
	if !ok {
		s.metrics.reviewFailed("not_found")
		return Review{}, fmt.Errorf("%w: id=%d", ErrNotFound, itemID)
	}

	id, err := s.newID()
	if err != nil {
		return Review{}, fmt.Errorf("generate review id: %w", err)
	}
	r := Review{
		ID:           id,
		Text:         text,
		ReviewerName: reviewer,
		Date:         s.now().UTC(),
	}

	next := s.reviewsLocked().with(itemID, r)
	if err := s.writeReviews(ctx, next); err != nil {
		s.metrics.reviewFailed("persistence")
		s.log.Error("persist reviews failed", zap.Error(err), zap.Int("item_id", itemID))
		return Review{}, err
	}

	s.reviews = next
	s.items[idx].Reviews = next[itemID]
	s.metrics.reviewAdded()

	s.render.OnItemUpdated(s.items[idx].clone())
	return r, nil
}

// PersistReviews rewrites the full review mapping, including reviews of
// items missing from the current payload and reviews the payload shipped.
func (s *Store) PersistReviews(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rs := s.reviewsLocked()
	if err := s.writeReviews(ctx, rs); err != nil {
		return err
	}
	s.reviews = rs
	return nil
}

// RestoreReviews re-reads the persisted mapping and applies it to the items
// currently in memory. Entries for unknown ids are kept, not shown.
func (s *Store) RestoreReviews(ctx context.Context) error {
	rs, err := s.readReviews(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.reviews = rs
	s.applyReviewsLocked()
	if s.state == StateReady {
		s.render.OnItemsChanged(Filter(s.items, s.query))
	}
	return nil
}

// Reviews returns a copy of the full mapping, orphans included.
func (s *Store) Reviews() ReviewStore {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(ReviewStore, len(s.reviews))
	for id, list := range s.reviews {
		out[id] = append([]Review(nil), list...)
	}
	return out
}

// applyReviewsLocked replaces an item's payload reviews only when the
// persisted mapping has an entry for it.
func (s *Store) applyReviewsLocked() {
	for i := range s.items {
		list, ok := s.reviews[s.items[i].ID]
		if !ok {
			continue
		}
		if list == nil {
			list = []Review{}
		}
		s.items[i].Reviews = list
	}
}

// reviewsLocked is the mapping to persist: every restored or added entry,
// plus payload reviews of items the mapping has no entry for yet.
func (s *Store) reviewsLocked() ReviewStore {
	out := make(ReviewStore, len(s.reviews)+len(s.items))
	maps.Copy(out, s.reviews)
	for _, it := range s.items {
		if _, ok := out[it.ID]; !ok && len(it.Reviews) > 0 {
			out[it.ID] = it.Reviews
		}
	}
	return out
}

func (s *Store) readReviews(ctx context.Context) (ReviewStore, error) {
	raw, ok, err := s.kv.Get(ctx, s.kind.ReviewsKey)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrPersistence, s.kind.ReviewsKey, err)
	}
	if !ok {
		return ReviewStore{}, nil
	}

	rs, err := decodeReviewStore(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrPersistence, s.kind.ReviewsKey, err)
	}
	return rs, nil
}

func (s *Store) writeReviews(ctx context.Context, rs ReviewStore) error {
	raw, err := rs.encode()
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrPersistence, s.kind.ReviewsKey, err)
	}
	if err := s.kv.Set(ctx, s.kind.ReviewsKey, raw); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrPersistence, s.kind.ReviewsKey, err)
	}
	return nil
}
