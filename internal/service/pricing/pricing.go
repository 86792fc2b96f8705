// Package pricing holds the supplier price comparison and tiered quotation
// costing computations. Both are pure functions over a catalog snapshot.
package pricing

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Haizenx/Enginuity-Alpha/internal/domain/models"
)

var (
	// ErrInvalidInput indicates a malformed selection or quantity.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownSupplier indicates the requested supplier does not exist.
	ErrUnknownSupplier = errors.New("unknown supplier")

	// ErrInvalidTier indicates a tier outside the configured levels.
	ErrInvalidTier = errors.New("invalid tier")

	// ErrInvalidConfiguration indicates a missing or negative markup percentage.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

var hundred = decimal.NewFromInt(100)

// ComparePrices totals, per supplier, the cost of every selected item that
// supplier prices. Unknown items contribute nothing. Only offers from the
// candidate suppliers are counted; an empty candidate list means every
// supplier found on the items.
func ComparePrices(items []models.Item, selections []models.Selection, candidates []string) (models.PriceComparison, error) {
	quantities, order, err := normalizeSelections(selections)
	if err != nil {
		return models.PriceComparison{}, err
	}

	allowed := make(map[string]struct{}, len(candidates))
	for _, id := range candidates {
		allowed[id] = struct{}{}
	}

	index := indexItems(items)
	totals := make(map[string]*models.SupplierTotal)

	for _, itemID := range order {
		item, ok := index[itemID]
		if !ok {
			continue
		}
		qty := decimal.NewFromInt(int64(quantities[itemID]))

		for _, offer := range item.Offers {
			if len(allowed) > 0 {
				if _, ok := allowed[offer.SupplierID]; !ok {
					continue
				}
			}

			entry, ok := totals[offer.SupplierID]
			if !ok {
				entry = &models.SupplierTotal{SupplierID: offer.SupplierID, Total: decimal.Zero}
				totals[offer.SupplierID] = entry
			}
			entry.Total = entry.Total.Add(models.RoundMoney(offer.Price.Mul(qty)))
			entry.OfferCount++
		}
	}

	results := make([]models.SupplierTotal, 0, len(totals))
	for _, entry := range totals {
		results = append(results, *entry)
	}

	sort.Slice(results, func(i, j int) bool {
		if cmp := results[i].Total.Cmp(results[j].Total); cmp != 0 {
			return cmp < 0
		}
		return results[i].SupplierID < results[j].SupplierID
	})

	comparison := models.PriceComparison{Results: results}
	if len(results) > 0 {
		best := results[0]
		comparison.Best = &best
	}

	return comparison, nil
}

// ComputeQuotationLines prices every selected item for one supplier at one
// client tier. Lines whose item has no offer from the supplier are flagged
// PriceMissing and left out of the grand total.
func ComputeQuotationLines(supplier *models.Supplier, items []models.Item, selections []models.Selection, tier models.Tier, markups models.TierMarkupTable) (models.QuotationCosting, error) {
	quantities, order, err := normalizeSelections(selections)
	if err != nil {
		return models.QuotationCosting{}, err
	}

	if supplier == nil || supplier.ID == "" {
		return models.QuotationCosting{}, ErrUnknownSupplier
	}

	if err := ValidateMarkups(markups); err != nil {
		return models.QuotationCosting{}, err
	}

	percent, ok := markups[tier]
	if !tier.Valid() || !ok {
		return models.QuotationCosting{}, fmt.Errorf("%w: %d", ErrInvalidTier, int(tier))
	}

	index := indexItems(items)
	costing := models.QuotationCosting{
		SupplierID:    supplier.ID,
		Tier:          tier,
		MarkupPercent: percent,
		Lines:         make([]models.QuotationLine, 0, len(order)),
		GrandTotal:    decimal.Zero,
	}

	for _, itemID := range order {
		qty := quantities[itemID]
		item, found := index[itemID]
		if !found {
			costing.Lines = append(costing.Lines, models.QuotationLine{
				ItemID:       itemID,
				Quantity:     qty,
				PriceMissing: true,
				ItemMissing:  true,
			})
			continue
		}

		line := models.QuotationLine{
			ItemID:   item.ID,
			Name:     item.Name,
			Unit:     item.Unit,
			Category: item.Category,
			ItemNo:   item.ItemNo,
			Quantity: qty,
		}

		offer, priced := item.OfferFor(supplier.ID)
		if !priced {
			line.PriceMissing = true
			costing.Lines = append(costing.Lines, line)
			continue
		}

		line.BasePrice = offer.Price
		line.MarkupAmount = models.RoundMoney(offer.Price.Mul(percent).Div(hundred))
		line.UnitPrice = line.BasePrice.Add(line.MarkupAmount)
		line.LineAmount = models.RoundMoney(line.UnitPrice.Mul(decimal.NewFromInt(int64(qty))))

		costing.GrandTotal = costing.GrandTotal.Add(line.LineAmount)
		costing.Lines = append(costing.Lines, line)
	}

	return costing, nil
}

// markupScale is the most decimal places a tier percentage may carry.
const markupScale = 4

// ValidateMarkups checks that every tier carries a non-negative percentage
// with at most four decimal places.
func ValidateMarkups(markups models.TierMarkupTable) error {
	for _, tier := range models.Tiers {
		percent, ok := markups[tier]
		if !ok {
			return fmt.Errorf("%w: tier %d has no markup", ErrInvalidConfiguration, int(tier))
		}
		if percent.IsNegative() {
			return fmt.Errorf("%w: tier %d markup %s is negative", ErrInvalidConfiguration, int(tier), percent.String())
		}
		if !percent.Equal(percent.Round(markupScale)) {
			return fmt.Errorf("%w: tier %d markup %s has more than %d decimal places", ErrInvalidConfiguration, int(tier), percent.String(), markupScale)
		}
	}
	for tier := range markups {
		if !tier.Valid() {
			return fmt.Errorf("%w: unknown tier %d", ErrInvalidConfiguration, int(tier))
		}
	}
	return nil
}

// ValidateSelections reports ErrInvalidInput for an empty selection list, a
// blank item id or a negative quantity.
func ValidateSelections(selections []models.Selection) error {
	_, _, err := normalizeSelections(selections)
	return err
}

// SelectedItemIDs returns the distinct item ids with a positive quantity, in
// first-appearance order. It returns nil for an invalid selection list.
func SelectedItemIDs(selections []models.Selection) []string {
	_, order, err := normalizeSelections(selections)
	if err != nil {
		return nil
	}
	return order
}

// normalizeSelections validates the request shape and merges duplicate item
// ids by summing their quantities. Zero quantities are dropped. The returned
// order is the first appearance of each selected item.
func normalizeSelections(selections []models.Selection) (map[string]int, []string, error) {
	if len(selections) == 0 {
		return nil, nil, fmt.Errorf("%w: at least one selection is required", ErrInvalidInput)
	}

	quantities := make(map[string]int, len(selections))
	order := make([]string, 0, len(selections))

	for i, sel := range selections {
		itemID := strings.TrimSpace(sel.ItemID)
		if itemID == "" {
			return nil, nil, fmt.Errorf("%w: selection %d has no item id", ErrInvalidInput, i)
		}
		if sel.Quantity < 0 {
			return nil, nil, fmt.Errorf("%w: selection %d has negative quantity %d", ErrInvalidInput, i, sel.Quantity)
		}
		if sel.Quantity == 0 {
			continue
		}
		if _, seen := quantities[itemID]; !seen {
			order = append(order, itemID)
		}
		if sel.Quantity > math.MaxInt-quantities[itemID] {
			return nil, nil, fmt.Errorf("%w: total quantity for item %s overflows", ErrInvalidInput, itemID)
		}
		quantities[itemID] += sel.Quantity
	}

	return quantities, order, nil
}

func indexItems(items []models.Item) map[string]models.Item {
	index := make(map[string]models.Item, len(items))
	for _, item := range items {
		index[item.ID] = item
	}
	return index
}
