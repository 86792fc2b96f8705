package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProjectDetails carries the header fields printed on a quotation.
type ProjectDetails struct {
	ProjectTitle    string `json:"projectTitle"`
	ProjectOwner    string `json:"projectOwner"`
	Location        string `json:"location"`
	ProjectDuration string `json:"projectDuration,omitempty"`
}

// Quotation is a persisted, priced quotation document.
type Quotation struct {
	ID            string          `json:"id"`
	Project       ProjectDetails  `json:"project"`
	SupplierID    string          `json:"supplierId"`
	SupplierName  string          `json:"supplierName"`
	Tier          Tier            `json:"tier"`
	MarkupPercent decimal.Decimal `json:"markupPercent"`
	Currency      string          `json:"currency"`
	Lines         []QuotationLine `json:"lines"`
	GrandTotal    decimal.Decimal `json:"grandTotal"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// SweepReport summarizes a catalog maintenance pass.
type SweepReport struct {
	DryRun             bool     `json:"dryRun"`
	DuplicateItemIDs   []string `json:"duplicateItemIds"`
	DanglingOfferCount int      `json:"danglingOfferCount"`
	DeletedItems       int      `json:"deletedItems"`
	PulledOffers       int      `json:"pulledOffers"`
}
