package mongodb

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Haizenx/Enginuity-Alpha/internal/domain/models"
)

func TestDecimal128RoundTrip(t *testing.T) {
	for _, value := range []string{"0", "12.35", "1234567.89", "0.07", "15"} {
		d := decimal.RequireFromString(value)
		assert.True(t, d.Equal(fromDecimal128(mustDecimal128(t, d))), value)
	}
}

func TestDecimal128RejectsExcessPrecision(t *testing.T) {
	d := decimal.RequireFromString("12.50000000000000000000000000000000001")
	_, err := toDecimal128(d)
	require.Error(t, err)

	table := models.DefaultTierMarkups()
	table[models.Tier1] = d
	_, err = newTierMarkupDocument(table, time.Now())
	require.Error(t, err)

	_, err = newQuotationDocument(models.Quotation{
		MarkupPercent: decimal.NewFromInt(10),
		Lines:         []models.QuotationLine{{ItemID: "a", Quantity: 1, BasePrice: d}},
	})
	require.Error(t, err)
}

func mustDecimal128(t *testing.T, d decimal.Decimal) primitive.Decimal128 {
	t.Helper()
	v, err := toDecimal128(d)
	require.NoError(t, err)
	return v
}

func TestParseObjectID(t *testing.T) {
	_, err := parseObjectID("not-an-id")
	require.ErrorIs(t, err, models.ErrInvalidID)

	oid := primitive.NewObjectID()
	parsed, err := parseObjectID(oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, oid, parsed)
}

func TestParseObjectIDsDropsInvalid(t *testing.T) {
	oid := primitive.NewObjectID()
	oids := parseObjectIDs([]string{"bogus", oid.Hex(), ""})
	assert.Equal(t, []primitive.ObjectID{oid}, oids)

	assert.NotNil(t, parseObjectIDs(nil))
}

func TestItemDocumentToModel(t *testing.T) {
	itemID := primitive.NewObjectID()
	supplierID := primitive.NewObjectID()
	created := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	doc := itemDocument{
		ID:           itemID,
		Name:         "Portland Cement",
		NameKey:      "portland cement",
		Unit:         "bag",
		MaterialCost: mustDecimal128(t, decimal.RequireFromString("250.50")),
		LaborCost:    mustDecimal128(t, decimal.Zero),
		Category:     "Masonry",
		Offers: []offerDocument{
			{SupplierID: supplierID, Price: mustDecimal128(t, decimal.RequireFromString("245")), Currency: "PHP"},
		},
		CreatedAt: created,
	}

	item := doc.toModel()
	assert.Equal(t, itemID.Hex(), item.ID)
	assert.Equal(t, "Portland Cement", item.Name)
	assert.Equal(t, "250.5", item.MaterialCost.String())
	require.Len(t, item.Offers, 1)
	assert.Equal(t, supplierID.Hex(), item.Offers[0].SupplierID)
	assert.True(t, decimal.NewFromInt(245).Equal(item.Offers[0].Price))
	assert.Equal(t, created, item.CreatedAt)
}

func TestNewOfferDocumentRejectsBadSupplierID(t *testing.T) {
	_, err := newOfferDocument(models.SupplierOffer{SupplierID: "x", Price: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, models.ErrInvalidID)
}

func TestQuotationDocumentRoundTrip(t *testing.T) {
	q := models.Quotation{
		Project:       models.ProjectDetails{ProjectTitle: "Warehouse", ProjectOwner: "J. Cruz", Location: "Cebu"},
		SupplierID:    primitive.NewObjectID().Hex(),
		SupplierName:  "Acme",
		Tier:          models.Tier2,
		MarkupPercent: decimal.NewFromInt(10),
		Currency:      "PHP",
		Lines: []models.QuotationLine{
			{ItemID: "a", Name: "Plywood", Quantity: 2, BasePrice: decimal.NewFromInt(100), MarkupAmount: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(110), LineAmount: decimal.NewFromInt(220)},
			{ItemID: "b", Name: "Nails", Quantity: 1, PriceMissing: true},
		},
		GrandTotal: decimal.NewFromInt(220),
		CreatedAt:  time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC),
	}

	doc, err := newQuotationDocument(q)
	require.NoError(t, err)
	got := doc.toModel()
	assert.Equal(t, q.Project, got.Project)
	assert.Equal(t, q.Tier, got.Tier)
	assert.True(t, q.GrandTotal.Equal(got.GrandTotal))
	require.Len(t, got.Lines, 2)
	assert.True(t, got.Lines[0].LineAmount.Equal(decimal.NewFromInt(220)))
	assert.True(t, got.Lines[1].PriceMissing)
}

func TestTierMarkupDocument(t *testing.T) {
	table := models.DefaultTierMarkups()
	doc, err := newTierMarkupDocument(table, time.Now())
	require.NoError(t, err)

	require.Len(t, doc.Entries, 3)
	assert.Equal(t, 1, doc.Entries[0].Tier)

	back := doc.toModel()
	for _, tier := range models.Tiers {
		assert.True(t, table[tier].Equal(back[tier]), "tier %d", tier)
	}
}
