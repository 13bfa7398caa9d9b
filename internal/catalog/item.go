package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

type Item struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	Rating      float64  `json:"rating"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Extra       string   `json:"extra,omitempty"`
	Stock       *int     `json:"stock,omitempty"`
	Reviews     []Review `json:"reviews"`

	// Fields is the raw payload record; store-specific attributes (price,
	// screen, published, ...) reach the presentation through it untouched.
	Fields map[string]any `json:"fields,omitempty"`
}

const (
	maxRating     = 5
	lowStockAbove = 10
	excerptRunes  = 100
)

type StockStatus struct {
	Class string `json:"class"`
	Label string `json:"label"`
}

var (
	InStock    = StockStatus{Class: "in-stock", Label: "In Stock"}
	LowStock   = StockStatus{Class: "low-stock", Label: "Low Stock"}
	OutOfStock = StockStatus{Class: "out-of-stock", Label: "Out of Stock"}
)

// StockStatus reports ok=false for items whose payload carries no stock.
func (it Item) StockStatus() (StockStatus, bool) {
	if it.Stock == nil {
		return StockStatus{}, false
	}
	switch n := *it.Stock; {
	case n > lowStockAbove:
		return InStock, true
	case n > 0:
		return LowStock, true
	default:
		return OutOfStock, true
	}
}

func (it Item) Excerpt() string {
	if utf8.RuneCountInString(it.Description) <= excerptRunes {
		return it.Description
	}
	r := []rune(it.Description)
	return string(r[:excerptRunes]) + "..."
}

func (it Item) matches(foldedQuery string) bool {
	for _, f := range [...]string{it.Title, it.Category, it.Description, it.Extra} {
		if strings.Contains(strings.ToLower(f), foldedQuery) {
			return true
		}
	}
	return false
}

func (it Item) clone() Item {
	out := it
	out.Reviews = append(make([]Review, 0, len(it.Reviews)), it.Reviews...)
	if it.Stock != nil {
		n := *it.Stock
		out.Stock = &n
	}
	out.Fields = maps.Clone(it.Fields)
	return out
}

// Filter returns, in their original order, the items where title, category,
// description or the kind's extra field contains query, ignoring case. An
// empty query keeps every item. items is not modified.
func Filter(items []Item, query string) []Item {
	q := strings.ToLower(query)

	out := make([]Item, 0, len(items))
	for _, it := range items {
		if q == "" || it.matches(q) {
			out = append(out, it.clone())
		}
	}
	return out
}

// decodeItems parses the remote payload. Records without a usable
// non-negative integer id, or repeating an earlier id, are returned in
// skipped and left out. Reviews shipped inside a record become the item's
// starting review list.
func decodeItems(k Kind, payload []byte) (items []Item, skipped []string, err error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, nil, fmt.Errorf("decode %s payload: %w", k.Collection, err)
	}

	items = make([]Item, 0, len(raw))
	seen := make(map[int]struct{}, len(raw))

	for i, rec := range raw {
		id, ok := intValue(rec["id"])
		if !ok || id < 0 {
			skipped = append(skipped, fmt.Sprintf("record %d: missing or invalid id", i))
			continue
		}
		if _, dup := seen[id]; dup {
			skipped = append(skipped, fmt.Sprintf("record %d: duplicate id %d", i, id))
			continue
		}
		seen[id] = struct{}{}

		it := Item{
			ID:          id,
			Title:       stringValue(rec[k.TitleField]),
			Category:    stringValue(rec[k.CategoryField]),
			Rating:      clampRating(floatValue(rec["rating"])),
			Description: stringValue(rec["description"]),
			Image:       stringValue(rec["image"]),
			Extra:       stringValue(rec[k.ExtraField]),
			Fields:      rec,
		}
		reviews, err := decodePayloadReviews(rec["reviews"])
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("record %d: reviews dropped: %v", i, err))
		}
		it.Reviews = reviews
		if n, ok := intValue(rec["stock"]); ok {
			it.Stock = &n
		}
		items = append(items, it)
	}
	return items, skipped, nil
}

func decodePayloadReviews(v any) ([]Review, error) {
	if v == nil {
		return []Review{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return []Review{}, err
	}
	var out []Review
	if err := json.Unmarshal(b, &out); err != nil {
		return []Review{}, err
	}
	if out == nil {
		out = []Review{}
	}
	return out, nil
}

// intValue accepts whole numbers that fit in an int; anything else,
// including 1e30 or 2^63, reports ok=false.
func intValue(v any) (int, bool) {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			if n < math.MinInt || n > math.MaxInt {
				return 0, false
			}
			return int(n), true
		}
		f, err := t.Float64()
		if err != nil || f != math.Trunc(f) || f < math.MinInt || f >= math.MaxInt {
			return 0, false
		}
		return int(f), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	default:
		return 0, false
	}
}

func floatValue(v any) float64 {
	switch t := v.(type) {
	case json.Number:
		f, _ := t.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f
	default:
		return 0
	}
}

func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func clampRating(r float64) float64 {
	if math.IsNaN(r) || r < 0 {
		return 0
	}
	return math.Min(r, maxRating)
}
