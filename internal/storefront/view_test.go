package storefront

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Storefront/internal/catalog"
	"Storefront/internal/theme"
)

func TestView_Lifecycle(t *testing.T) {
	v := NewView()

	snap := v.Snapshot()
	assert.False(t, snap.NoResults, "nothing listed yet")
	assert.Equal(t, theme.Light, snap.Theme)

	v.OnItemsChanged([]catalog.Item{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}})
	v.OnItemUpdated(catalog.Item{ID: 2, Title: "B", Reviews: []catalog.Review{{Text: "nice"}}})
	v.OnItemUpdated(catalog.Item{ID: 3, Title: "filtered out"})

	snap = v.Snapshot()
	require.Len(t, snap.Items, 2)
	assert.Equal(t, 1, snap.Items[1].ReviewCount)
	assert.Equal(t, uint64(2), snap.Version)

	v.OnItemsChanged(nil)
	assert.True(t, v.Snapshot().NoResults)

	v.OnError("down")
	snap = v.Snapshot()
	assert.Equal(t, "down", snap.Error)
	assert.False(t, snap.NoResults)
	assert.Empty(t, snap.Items)

	v.OnThemeChanged(theme.Dark)
	assert.Equal(t, theme.Dark, v.Snapshot().Theme)
}

func TestNewCard(t *testing.T) {
	stock := 3
	c := NewCard(catalog.Item{ID: 7, Title: "Galaxy", Stock: &stock, Description: "short"})

	require.NotNil(t, c.StockStatus)
	assert.Equal(t, catalog.LowStock, *c.StockStatus)
	assert.Equal(t, "short", c.Excerpt)

	c = NewCard(catalog.Item{ID: 8})
	assert.Nil(t, c.StockStatus)
}
