package catalog

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const AnonymousReviewer = "Anonymous"

// ReviewID is a string, but reviews written by the browser storefront carry
// numeric Date.now() ids, so numbers are accepted when decoding.
type ReviewID string

func (id *ReviewID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ReviewID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("review id: %w", err)
	}
	*id = ReviewID(n.String())
	return nil
}

type Review struct {
	ID           ReviewID  `json:"id"`
	Text         string    `json:"text"`
	ReviewerName string    `json:"reviewerName"`
	Date         time.Time `json:"date"`
}

// NewReviewID returns a UUIDv7-based id. Ids generated by one process sort
// strictly in creation order.
func NewReviewID() (ReviewID, error) {
	u, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return ReviewID("r_" + u.String()), nil
}

// ReviewStore maps item id to its reviews in submission order. It is always
// written as a whole; slices are never appended to in place so snapshots
// handed out earlier stay valid.
type ReviewStore map[int][]Review

func (rs ReviewStore) with(itemID int, r Review) ReviewStore {
	out := make(ReviewStore, len(rs)+1)
	for id, list := range rs {
		out[id] = list
	}
	prev := rs[itemID]
	next := make([]Review, 0, len(prev)+1)
	next = append(next, prev...)
	out[itemID] = append(next, r)
	return out
}

func (rs ReviewStore) encode() (string, error) {
	if rs == nil {
		rs = ReviewStore{}
	}
	b, err := json.Marshal(rs)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeReviewStore(s string) (ReviewStore, error) {
	rs := ReviewStore{}
	if s == "" {
		return rs, nil
	}
	if err := json.Unmarshal([]byte(s), &rs); err != nil {
		return nil, err
	}
	return rs, nil
}
