package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"Storefront/internal/kv"
)

const phonesPayload = `[
  {"id": 1, "name": "Pixel 9", "brand": "Google", "rating": 4.6, "price": 799, "stock": 25,
   "processor": "Tensor G4", "description": "Clean Android with a great camera.", "image": "pixel.jpg"},
  {"id": "2", "name": "Galaxy S24", "brand": "Samsung", "rating": 4.4, "price": 899, "stock": 4,
   "processor": "Snapdragon 8 Gen 3", "description": "Bright display, long support window.", "image": "s24.jpg"},
  {"id": 3, "name": "iPhone 16", "brand": "Apple", "rating": 7, "price": 999, "stock": 0,
   "processor": "A18", "description": "Fast and familiar.", "image": "iphone.jpg"}
]`

type stubSource struct {
	mu      sync.Mutex
	payload string
	err     error
	calls   int
	block   chan struct{}
}

func (s *stubSource) Fetch(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	s.calls++
	block := s.block
	payload, err := s.payload, s.err
	s.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return []byte(payload), nil
}

func (s *stubSource) set(payload string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payload, s.err = payload, err
}

type recorder struct {
	mu      sync.Mutex
	lists   [][]Item
	updates []Item
	errors  []string
}

func (r *recorder) OnItemsChanged(items []Item) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists = append(r.lists, items)
}

func (r *recorder) OnItemUpdated(item Item) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, item)
}

func (r *recorder) OnError(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, message)
}

func (r *recorder) lastList() []Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.lists) == 0 {
		return nil
	}
	return r.lists[len(r.lists)-1]
}

// flakyKV wraps a MemStore and fails Set/Get on demand.
type flakyKV struct {
	*kv.MemStore
	setErr error
	getErr error
}

func (f *flakyKV) Get(ctx context.Context, key string) (string, bool, error) {
	if f.getErr != nil {
		return "", false, f.getErr
	}
	return f.MemStore.Get(ctx, key)
}

func (f *flakyKV) Set(ctx context.Context, key, value string) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.MemStore.Set(ctx, key, value)
}

var errQuotaExceeded = errors.New("quota exceeded")

func sequentialIDs() func() (ReviewID, error) {
	var mu sync.Mutex
	n := 0
	return func() (ReviewID, error) {
		mu.Lock()
		defer mu.Unlock()
		n++
		return ReviewID(fmt.Sprintf("r_%04d", n)), nil
	}
}

func fixedClock() func() time.Time {
	t := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	return func() time.Time { return t }
}
