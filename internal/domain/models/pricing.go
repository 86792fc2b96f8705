package models

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Selection requests a quantity of one catalog item. A zero quantity means
// the item is not selected.
type Selection struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// Tier is a client pricing level.
type Tier int

// The three client pricing levels.
const (
	Tier1 Tier = 1
	Tier2 Tier = 2
	Tier3 Tier = 3
)

// Tiers lists every pricing level in ascending order.
var Tiers = []Tier{Tier1, Tier2, Tier3}

// Valid reports whether t is one of the predefined levels.
func (t Tier) Valid() bool {
	return t >= Tier1 && t <= Tier3
}

func (t Tier) String() string {
	return strconv.Itoa(int(t))
}

// TierMarkupTable maps each tier to the markup percentage applied on top of
// the supplier base price.
type TierMarkupTable map[Tier]decimal.Decimal

// DefaultTierMarkups returns the table used until an operator saves one.
func DefaultTierMarkups() TierMarkupTable {
	return TierMarkupTable{
		Tier1: decimal.NewFromInt(5),
		Tier2: decimal.NewFromInt(10),
		Tier3: decimal.NewFromInt(15),
	}
}

// SupplierTotal is one supplier's cost for the priced part of a selection.
type SupplierTotal struct {
	SupplierID string          `json:"supplierId"`
	Supplier   *Supplier       `json:"supplier,omitempty"`
	Total      decimal.Decimal `json:"total"`
	OfferCount int             `json:"offerCount"`
}

// PriceComparison ranks suppliers by the total cost of a selection.
type PriceComparison struct {
	Results []SupplierTotal `json:"results"`
	Best    *SupplierTotal  `json:"best"`
}

// QuotationLine is the costing of one selected item for a supplier and tier.
type QuotationLine struct {
	ItemID       string          `json:"itemId"`
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	Category     string          `json:"category,omitempty"`
	ItemNo       string          `json:"itemNo,omitempty"`
	Quantity     int             `json:"quantity"`
	BasePrice    decimal.Decimal `json:"basePrice"`
	MarkupAmount decimal.Decimal `json:"markupAmount"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	LineAmount   decimal.Decimal `json:"lineAmount"`
	PriceMissing bool            `json:"priceMissing"`
	ItemMissing  bool            `json:"itemMissing,omitempty"`
}

// QuotationCosting is the full costing result for a selection.
type QuotationCosting struct {
	SupplierID    string          `json:"supplierId"`
	Tier          Tier            `json:"tier"`
	MarkupPercent decimal.Decimal `json:"markupPercent"`
	Lines         []QuotationLine `json:"lines"`
	GrandTotal    decimal.Decimal `json:"grandTotal"`
}

// MissingPrices reports whether any line lacks a supplier price.
func (c QuotationCosting) MissingPrices() bool {
	for _, line := range c.Lines {
		if line.PriceMissing {
			return true
		}
	}
	return false
}
