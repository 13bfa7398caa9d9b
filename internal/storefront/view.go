package storefront

import (
	"sync"

	"Storefront/internal/catalog"
	"Storefront/internal/theme"
)

// Card is the list representation of an item.
type Card struct {
	ID          int                  `json:"id"`
	Title       string               `json:"title"`
	Category    string               `json:"category"`
	Rating      float64              `json:"rating"`
	Excerpt     string               `json:"excerpt"`
	Image       string               `json:"image"`
	Extra       string               `json:"extra,omitempty"`
	Stock       *int                 `json:"stock,omitempty"`
	StockStatus *catalog.StockStatus `json:"stock_status,omitempty"`
	ReviewCount int                  `json:"review_count"`
	Fields      map[string]any       `json:"fields,omitempty"`
}

func NewCard(it catalog.Item) Card {
	c := Card{
		ID:          it.ID,
		Title:       it.Title,
		Category:    it.Category,
		Rating:      it.Rating,
		Excerpt:     it.Excerpt(),
		Image:       it.Image,
		Extra:       it.Extra,
		Stock:       it.Stock,
		ReviewCount: len(it.Reviews),
		Fields:      it.Fields,
	}
	if st, ok := it.StockStatus(); ok {
		c.StockStatus = &st
	}
	return c
}

func NewCards(items []catalog.Item) []Card {
	out := make([]Card, 0, len(items))
	for _, it := range items {
		out = append(out, NewCard(it))
	}
	return out
}

// Details is the modal representation of an item, reviews included.
type Details struct {
	catalog.Item
	StockStatus *catalog.StockStatus `json:"stock_status,omitempty"`
	ReviewCount int                  `json:"review_count"`
}

func NewDetails(it catalog.Item) Details {
	d := Details{Item: it, ReviewCount: len(it.Reviews)}
	if st, ok := it.StockStatus(); ok {
		d.StockStatus = &st
	}
	return d
}

type Snapshot struct {
	Items     []Card      `json:"items"`
	NoResults bool        `json:"no_results"`
	Error     string      `json:"error,omitempty"`
	Theme     theme.Theme `json:"theme"`
	Version   uint64      `json:"version"`
}

// View is what the presentation currently shows. It subscribes to the
// catalog store and the theme controller.
type View struct {
	mu      sync.RWMutex
	items   []catalog.Item
	errMsg  string
	theme   theme.Theme
	version uint64
	listed  bool
}

func NewView() *View {
	return &View{theme: theme.Light, items: []catalog.Item{}}
}

func (v *View) OnItemsChanged(items []catalog.Item) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.items = items
	v.errMsg = ""
	v.listed = true
	v.version++
}

// OnItemUpdated patches a single rendered item; items outside the current
// filtered view are ignored.
func (v *View) OnItemUpdated(item catalog.Item) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for i := range v.items {
		if v.items[i].ID == item.ID {
			v.items[i] = item
			v.version++
			return
		}
	}
}

func (v *View) OnError(message string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.items = []catalog.Item{}
	v.errMsg = message
	v.listed = false
	v.version++
}

func (v *View) OnThemeChanged(t theme.Theme) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.theme = t
	v.version++
}

func (v *View) Snapshot() Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return Snapshot{
		Items:     NewCards(v.items),
		NoResults: v.listed && len(v.items) == 0,
		Error:     v.errMsg,
		Theme:     v.theme,
		Version:   v.version,
	}
}
