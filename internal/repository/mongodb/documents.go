package mongodb

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Haizenx/Enginuity-Alpha/internal/domain/models"
)

type offerDocument struct {
	SupplierID primitive.ObjectID   `bson:"supplier_id"`
	Price      primitive.Decimal128 `bson:"price"`
	Currency   string               `bson:"currency"`
}

type itemDocument struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty"`
	Name         string               `bson:"name"`
	NameKey      string               `bson:"name_key"`
	Unit         string               `bson:"unit"`
	MaterialCost primitive.Decimal128 `bson:"material_cost"`
	LaborCost    primitive.Decimal128 `bson:"labor_cost"`
	Category     string               `bson:"category,omitempty"`
	ItemNo       string               `bson:"item_no,omitempty"`
	Offers       []offerDocument      `bson:"offers"`
	CreatedAt    time.Time            `bson:"created_at"`
	UpdatedAt    time.Time            `bson:"updated_at"`
}

type supplierDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Name          string             `bson:"name"`
	ContactEmail  string             `bson:"contact_email,omitempty"`
	ContactNumber string             `bson:"contact_number,omitempty"`
	Address       string             `bson:"address,omitempty"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
}

type quotationLineDocument struct {
	ItemID       string               `bson:"item_id"`
	Name         string               `bson:"name"`
	Unit         string               `bson:"unit"`
	Category     string               `bson:"category,omitempty"`
	ItemNo       string               `bson:"item_no,omitempty"`
	Quantity     int                  `bson:"quantity"`
	BasePrice    primitive.Decimal128 `bson:"base_price"`
	MarkupAmount primitive.Decimal128 `bson:"markup_amount"`
	UnitPrice    primitive.Decimal128 `bson:"unit_price"`
	LineAmount   primitive.Decimal128 `bson:"line_amount"`
	PriceMissing bool                 `bson:"price_missing"`
	ItemMissing  bool                 `bson:"item_missing,omitempty"`
}

type quotationDocument struct {
	ID              primitive.ObjectID      `bson:"_id,omitempty"`
	ProjectTitle    string                  `bson:"project_title"`
	ProjectOwner    string                  `bson:"project_owner"`
	Location        string                  `bson:"location"`
	ProjectDuration string                  `bson:"project_duration,omitempty"`
	SupplierID      string                  `bson:"supplier_id"`
	SupplierName    string                  `bson:"supplier_name"`
	Tier            int                     `bson:"tier"`
	MarkupPercent   primitive.Decimal128    `bson:"markup_percent"`
	Currency        string                  `bson:"currency"`
	Lines           []quotationLineDocument `bson:"lines"`
	GrandTotal      primitive.Decimal128    `bson:"grand_total"`
	CreatedAt       time.Time               `bson:"created_at"`
}

type tierMarkupEntry struct {
	Tier    int                  `bson:"tier"`
	Percent primitive.Decimal128 `bson:"percent"`
}

type tierMarkupDocument struct {
	ID        string            `bson:"_id"`
	Entries   []tierMarkupEntry `bson:"entries"`
	UpdatedAt time.Time         `bson:"updated_at"`
}

// toDecimal128 fails for values beyond the 34 significant digits Decimal128 holds.
func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("convert %s to decimal128: %w", d.String(), err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) decimal.Decimal {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, models.ErrInvalidID
	}
	return oid, nil
}

// parseObjectIDs converts the valid hex ids and drops the rest.
func parseObjectIDs(ids []string) []primitive.ObjectID {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	return oids
}

func newOfferDocument(offer models.SupplierOffer) (offerDocument, error) {
	sid, err := parseObjectID(offer.SupplierID)
	if err != nil {
		return offerDocument{}, err
	}
	price, err := toDecimal128(offer.Price)
	if err != nil {
		return offerDocument{}, err
	}
	return offerDocument{
		SupplierID: sid,
		Price:      price,
		Currency:   offer.Currency,
	}, nil
}

func (d itemDocument) toModel() models.Item {
	offers := make([]models.SupplierOffer, 0, len(d.Offers))
	for _, o := range d.Offers {
		offers = append(offers, models.SupplierOffer{
			SupplierID: o.SupplierID.Hex(),
			Price:      fromDecimal128(o.Price),
			Currency:   o.Currency,
		})
	}
	return models.Item{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Unit:         d.Unit,
		MaterialCost: fromDecimal128(d.MaterialCost),
		LaborCost:    fromDecimal128(d.LaborCost),
		Category:     d.Category,
		ItemNo:       d.ItemNo,
		Offers:       offers,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func (d supplierDocument) toModel() models.Supplier {
	return models.Supplier{
		ID:            d.ID.Hex(),
		Name:          d.Name,
		ContactEmail:  d.ContactEmail,
		ContactNumber: d.ContactNumber,
		Address:       d.Address,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func newQuotationDocument(q models.Quotation) (quotationDocument, error) {
	lines := make([]quotationLineDocument, 0, len(q.Lines))
	for _, l := range q.Lines {
		amounts, err := toDecimal128s(l.BasePrice, l.MarkupAmount, l.UnitPrice, l.LineAmount)
		if err != nil {
			return quotationDocument{}, fmt.Errorf("line %s: %w", l.ItemID, err)
		}
		lines = append(lines, quotationLineDocument{
			ItemID:       l.ItemID,
			Name:         l.Name,
			Unit:         l.Unit,
			Category:     l.Category,
			ItemNo:       l.ItemNo,
			Quantity:     l.Quantity,
			BasePrice:    amounts[0],
			MarkupAmount: amounts[1],
			UnitPrice:    amounts[2],
			LineAmount:   amounts[3],
			PriceMissing: l.PriceMissing,
			ItemMissing:  l.ItemMissing,
		})
	}
	totals, err := toDecimal128s(q.MarkupPercent, q.GrandTotal)
	if err != nil {
		return quotationDocument{}, err
	}
	return quotationDocument{
		ProjectTitle:    q.Project.ProjectTitle,
		ProjectOwner:    q.Project.ProjectOwner,
		Location:        q.Project.Location,
		ProjectDuration: q.Project.ProjectDuration,
		SupplierID:      q.SupplierID,
		SupplierName:    q.SupplierName,
		Tier:            int(q.Tier),
		MarkupPercent:   totals[0],
		Currency:        q.Currency,
		Lines:           lines,
		GrandTotal:      totals[1],
		CreatedAt:       q.CreatedAt,
	}, nil
}

func toDecimal128s(values ...decimal.Decimal) ([]primitive.Decimal128, error) {
	out := make([]primitive.Decimal128, len(values))
	for i, v := range values {
		d, err := toDecimal128(v)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

func (d quotationDocument) toModel() models.Quotation {
	lines := make([]models.QuotationLine, 0, len(d.Lines))
	for _, l := range d.Lines {
		lines = append(lines, models.QuotationLine{
			ItemID:       l.ItemID,
			Name:         l.Name,
			Unit:         l.Unit,
			Category:     l.Category,
			ItemNo:       l.ItemNo,
			Quantity:     l.Quantity,
			BasePrice:    fromDecimal128(l.BasePrice),
			MarkupAmount: fromDecimal128(l.MarkupAmount),
			UnitPrice:    fromDecimal128(l.UnitPrice),
			LineAmount:   fromDecimal128(l.LineAmount),
			PriceMissing: l.PriceMissing,
			ItemMissing:  l.ItemMissing,
		})
	}
	return models.Quotation{
		ID: d.ID.Hex(),
		Project: models.ProjectDetails{
			ProjectTitle:    d.ProjectTitle,
			ProjectOwner:    d.ProjectOwner,
			Location:        d.Location,
			ProjectDuration: d.ProjectDuration,
		},
		SupplierID:    d.SupplierID,
		SupplierName:  d.SupplierName,
		Tier:          models.Tier(d.Tier),
		MarkupPercent: fromDecimal128(d.MarkupPercent),
		Currency:      d.Currency,
		Lines:         lines,
		GrandTotal:    fromDecimal128(d.GrandTotal),
		CreatedAt:     d.CreatedAt,
	}
}

func newTierMarkupDocument(table models.TierMarkupTable, now time.Time) (tierMarkupDocument, error) {
	doc := tierMarkupDocument{ID: tierMarkupsKey, UpdatedAt: now}
	for _, tier := range models.Tiers {
		percent, ok := table[tier]
		if !ok {
			continue
		}
		value, err := toDecimal128(percent)
		if err != nil {
			return tierMarkupDocument{}, fmt.Errorf("tier %d: %w", tier, err)
		}
		doc.Entries = append(doc.Entries, tierMarkupEntry{Tier: int(tier), Percent: value})
	}
	return doc, nil
}

func (d tierMarkupDocument) toModel() models.TierMarkupTable {
	table := make(models.TierMarkupTable, len(d.Entries))
	for _, e := range d.Entries {
		table[models.Tier(e.Tier)] = fromDecimal128(e.Percent)
	}
	return table
}
