package mongodb

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Haizenx/Enginuity-Alpha/internal/domain/models"
)

func setupRepository(t *testing.T) *Repository {
	t.Helper()

	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbName := fmt.Sprintf("enginuity_test_%d", time.Now().UnixNano())
	repo, err := NewRepository(ctx, uri, dbName, nil)
	require.NoError(t, err)
	require.NoError(t, repo.EnsureIndexes(ctx))

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = repo.db.Drop(ctx)
		_ = repo.Close(ctx)
	})
	return repo
}

func TestItemRepositoryUpsertByName(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	items := repo.Items()

	first, err := items.UpsertItemByName(ctx, models.Item{Name: "Cement", Unit: "bag"})
	require.NoError(t, err)
	second, err := items.UpsertItemByName(ctx, models.Item{Name: "cement", Unit: "sack"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "bag", second.Unit)
	assert.NotNil(t, second.Offers)
}

func TestItemRepositorySetOfferConcurrently(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	supplier, err := repo.Suppliers().CreateSupplier(ctx, models.Supplier{Name: "Acme"})
	require.NoError(t, err)
	item, err := repo.Items().UpsertItemByName(ctx, models.Item{Name: "Rebar", Unit: "pc"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 1; i <= 8; i++ {
		wg.Add(1)
		go func(price int64) {
			defer wg.Done()
			_, err := repo.Items().SetOffer(ctx, item.ID, models.SupplierOffer{
				SupplierID: supplier.ID,
				Price:      decimal.NewFromInt(price),
				Currency:   "PHP",
			})
			assert.NoError(t, err)
		}(int64(i))
	}
	wg.Wait()

	stored, err := repo.Items().GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Offers, 1)
}

func TestItemRepositoryGetItemsWithOffersSkipsUnknown(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	item, err := repo.Items().UpsertItemByName(ctx, models.Item{Name: "Sand", Unit: "m3"})
	require.NoError(t, err)

	got, err := repo.Items().GetItemsWithOffers(ctx, []string{item.ID, "bogus", "64b7f0c2a1b2c3d4e5f60718"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, item.ID, got[0].ID)
}

func TestItemRepositoryUpdateDuplicateName(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	_, err := repo.Items().UpsertItemByName(ctx, models.Item{Name: "Sand", Unit: "m3"})
	require.NoError(t, err)
	gravel, err := repo.Items().UpsertItemByName(ctx, models.Item{Name: "Gravel", Unit: "m3"})
	require.NoError(t, err)

	gravel.Name = "SAND"
	_, err = repo.Items().UpdateItem(ctx, gravel)
	require.ErrorIs(t, err, models.ErrDuplicateItemName)
}

func TestPullOffers(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	acme, err := repo.Suppliers().CreateSupplier(ctx, models.Supplier{Name: "Acme"})
	require.NoError(t, err)
	bolt, err := repo.Suppliers().CreateSupplier(ctx, models.Supplier{Name: "Bolt"})
	require.NoError(t, err)
	item, err := repo.Items().UpsertItemByName(ctx, models.Item{Name: "Cement", Unit: "bag"})
	require.NoError(t, err)

	for _, id := range []string{acme.ID, bolt.ID} {
		_, err := repo.Items().SetOffer(ctx, item.ID, models.SupplierOffer{SupplierID: id, Price: decimal.NewFromInt(5), Currency: "PHP"})
		require.NoError(t, err)
	}

	n, err := repo.Items().PullOffersNotIn(ctx, []string{bolt.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = repo.Items().PullOffersForSupplier(ctx, bolt.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	stored, err := repo.Items().GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Offers)
}

func TestPreferenceRepositoryTierMarkups(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	prefs := repo.Preferences()

	_, found, err := prefs.GetTierMarkups(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	table := models.TierMarkupTable{models.Tier1: decimal.NewFromInt(3), models.Tier2: decimal.NewFromInt(6), models.Tier3: decimal.NewFromInt(9)}
	require.NoError(t, prefs.SaveTierMarkups(ctx, table))

	got, found, err := prefs.GetTierMarkups(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, got[models.Tier3].Equal(decimal.NewFromInt(9)))
}

func TestQuotationRepository(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	quotations := repo.Quotations()

	older, err := quotations.CreateQuotation(ctx, models.Quotation{Project: models.ProjectDetails{ProjectTitle: "A"}, Tier: models.Tier1, CreatedAt: time.Now().Add(-time.Hour).UTC()})
	require.NoError(t, err)
	newer, err := quotations.CreateQuotation(ctx, models.Quotation{Project: models.ProjectDetails{ProjectTitle: "B"}, Tier: models.Tier1, CreatedAt: time.Now().UTC()})
	require.NoError(t, err)

	list, err := quotations.ListQuotations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)

	_, err = quotations.GetQuotation(ctx, "64b7f0c2a1b2c3d4e5f60718")
	require.ErrorIs(t, err, models.ErrQuotationNotFound)
}
