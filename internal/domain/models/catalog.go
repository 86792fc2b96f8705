package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is applied to supplier offers that do not specify one.
const DefaultCurrency = "PHP"

// Item is a catalog entry for a material or product.
type Item struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	MaterialCost decimal.Decimal `json:"materialCost"`
	LaborCost    decimal.Decimal `json:"laborCost"`
	Category     string          `json:"category,omitempty"`
	ItemNo       string          `json:"itemNo,omitempty"`
	Offers       []SupplierOffer `json:"supplierPrices"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// SupplierOffer is a supplier-specific price embedded in an Item.
type SupplierOffer struct {
	SupplierID string          `json:"supplier"`
	Price      decimal.Decimal `json:"price"`
	Currency   string          `json:"currency"`
}

// OfferFor returns the item's offer for the given supplier, if any.
func (i Item) OfferFor(supplierID string) (SupplierOffer, bool) {
	for _, offer := range i.Offers {
		if offer.SupplierID == supplierID {
			return offer, true
		}
	}
	return SupplierOffer{}, false
}

// Supplier is a vendor that may price zero or more items.
type Supplier struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	ContactEmail  string    `json:"contactEmail,omitempty"`
	ContactNumber string    `json:"contactNumber,omitempty"`
	Address       string    `json:"address,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// OfferDetail pairs an offer with the supplier record it references.
type OfferDetail struct {
	Supplier *Supplier       `json:"supplier"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
}

// NormalizeName yields the key used for case-insensitive name uniqueness.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// RoundMoney rounds a currency amount to two decimal places, half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
