package services

import (
	"context"
	"errors"
	"testing"

	"maybach_liquor/internal/database"
	"maybach_liquor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeSearcher struct {
	ids     []string
	err     error
	indexed []string
}

func (f *fakeSearcher) Index(_ context.Context, p models.Product) error {
	f.indexed = append(f.indexed, p.ID)
	return f.err
}

func (f *fakeSearcher) Search(context.Context, string) ([]string, error) {
	return f.ids, f.err
}

func newCatalog(t *testing.T, s ProductSearcher) *Catalog {
	t.Helper()
	store, err := database.NewMemoryStore(database.DefaultFixtures())
	require.NoError(t, err)
	return NewCatalog(store, s, zaptest.NewLogger(t))
}

func ids(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestListInMemoryFilters(t *testing.T) {
	c := newCatalog(t, nil)
	ctx := context.Background()

	all, err := c.List(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 8)

	whisky, _ := c.List(ctx, "", "whisky")
	assert.Equal(t, []string{"1", "6"}, ids(whisky))

	peat, _ := c.List(ctx, "PEAT", "")
	assert.Equal(t, []string{"6"}, ids(peat))

	tequila, _ := c.List(ctx, "silver", "Tequila")
	assert.Equal(t, []string{"7"}, ids(tequila))

	same, _ := c.List(ctx, "", "all")
	assert.Len(t, same, 8)
}

func TestInMemorySearchMatchesCategory(t *testing.T) {
	fx := database.DefaultFixtures()
	fx.Products = append(fx.Products, models.Product{
		ID: "9", Name: "Ardbeg Ten", Category: "Whisky", Description: "Smoky Islay malt.", Price: 64.99, Stock: 5,
	})
	store, err := database.NewMemoryStore(fx)
	require.NoError(t, err)
	c := NewCatalog(store, nil, zaptest.NewLogger(t))

	got, err := c.List(context.Background(), "WHISKY", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "6", "9"}, ids(got))

	// la recherche et le filtre de catégorie se combinent
	gin, err := c.List(context.Background(), "gin", "Whisky")
	require.NoError(t, err)
	assert.Empty(t, gin)
}

func TestListUsesSearcherOrder(t *testing.T) {
	c := newCatalog(t, &fakeSearcher{ids: []string{"8", "ghost", "5"}})

	got, err := c.List(context.Background(), "bubbles", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"8", "5"}, ids(got))
}

func TestListFallsBackWhenSearcherFails(t *testing.T) {
	c := newCatalog(t, &fakeSearcher{err: errors.New("cluster down")})

	got, err := c.List(context.Background(), "gin", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, ids(got))
}

func TestFeaturedRelatedCategories(t *testing.T) {
	c := newCatalog(t, nil)
	ctx := context.Background()

	featured, err := c.Featured(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "4"}, ids(featured))

	related, err := c.Related(ctx, "5")
	require.NoError(t, err)
	assert.Equal(t, []string{"8"}, ids(related))

	_, err = c.Related(ctx, "nope")
	assert.ErrorIs(t, err, database.ErrNotFound)

	cats, err := c.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Whisky", "Gin", "Vodka", "Tequila", "Champagne"}, cats)
}

func TestReindexSwallowsErrors(t *testing.T) {
	s := &fakeSearcher{err: errors.New("boom")}
	c := newCatalog(t, s)
	c.Reindex(context.Background(), models.Product{ID: "1"})
	assert.Equal(t, []string{"1"}, s.indexed)

	newCatalog(t, nil).Reindex(context.Background(), models.Product{ID: "1"})
}
