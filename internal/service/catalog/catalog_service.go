package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Haizenx/Enginuity-Alpha/internal/domain/models"
)

var (
	// ErrInvalidItem is returned when an item misses a required field.
	ErrInvalidItem = errors.New("invalid item")
	// ErrInvalidPrice is returned for negative supplier prices.
	ErrInvalidPrice = errors.New("invalid price")
	// ErrInvalidSupplier is returned when a supplier misses a required field.
	ErrInvalidSupplier = errors.New("invalid supplier")
)

// ItemStore persists catalog items and their embedded supplier offers.
type ItemStore interface {
	ListItems(ctx context.Context) ([]models.Item, error)
	GetItem(ctx context.Context, id string) (models.Item, error)
	GetItemsWithOffers(ctx context.Context, ids []string) ([]models.Item, error)
	UpsertItemByName(ctx context.Context, item models.Item) (models.Item, error)
	UpdateItem(ctx context.Context, item models.Item) (models.Item, error)
	DeleteItem(ctx context.Context, id string) error
	DeleteItems(ctx context.Context, ids []string) (int64, error)
	SetOffer(ctx context.Context, itemID string, offer models.SupplierOffer) (models.Item, error)
	PullOffersForSupplier(ctx context.Context, supplierID string) (int64, error)
	PullOffersNotIn(ctx context.Context, supplierIDs []string) (int64, error)
}

// SupplierStore persists suppliers.
type SupplierStore interface {
	ListSuppliers(ctx context.Context) ([]models.Supplier, error)
	GetSupplier(ctx context.Context, id string) (models.Supplier, error)
	CreateSupplier(ctx context.Context, supplier models.Supplier) (models.Supplier, error)
	UpdateSupplier(ctx context.Context, supplier models.Supplier) (models.Supplier, error)
	DeleteSupplier(ctx context.Context, id string) error
}

// Service manages items, suppliers and supplier offers.
type Service struct {
	items           ItemStore
	suppliers       SupplierStore
	defaultCurrency string
	logger          *zap.Logger
}

// NewService wires the catalog service.
func NewService(items ItemStore, suppliers SupplierStore, defaultCurrency string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(defaultCurrency) == "" {
		defaultCurrency = models.DefaultCurrency
	}
	return &Service{
		items:           items,
		suppliers:       suppliers,
		defaultCurrency: defaultCurrency,
		logger:          logger,
	}
}

// ListItems returns every item sorted by name.
func (s *Service) ListItems(ctx context.Context) ([]models.Item, error) {
	items, err := s.items.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// GetItem loads one item.
func (s *Service) GetItem(ctx context.Context, id string) (models.Item, error) {
	return s.items.GetItem(ctx, id)
}

// GetItemsWithOffers loads a snapshot of the requested items. Unknown ids are omitted.
func (s *Service) GetItemsWithOffers(ctx context.Context, ids []string) ([]models.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	items, err := s.items.GetItemsWithOffers(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load items snapshot: %w", err)
	}
	return items, nil
}

// UpsertItem creates the item unless one with the same normalized name
// already exists, in which case the existing item is returned untouched.
// Name and unit are required, as on UpdateItem.
func (s *Service) UpsertItem(ctx context.Context, item models.Item) (models.Item, error) {
	item.Name = strings.TrimSpace(item.Name)
	item.Unit = strings.TrimSpace(item.Unit)
	if item.Name == "" || item.Unit == "" {
		return models.Item{}, fmt.Errorf("%w: name and unit are required", ErrInvalidItem)
	}
	item, err := roundCosts(item)
	if err != nil {
		return models.Item{}, err
	}

	stored, err := s.items.UpsertItemByName(ctx, item)
	if err != nil {
		return models.Item{}, fmt.Errorf("upsert item %q: %w", item.Name, err)
	}
	return stored, nil
}

// UpdateItem replaces the editable fields of an existing item. Offers are untouched.
func (s *Service) UpdateItem(ctx context.Context, item models.Item) (models.Item, error) {
	item.Name = strings.TrimSpace(item.Name)
	item.Unit = strings.TrimSpace(item.Unit)
	if item.Name == "" || item.Unit == "" {
		return models.Item{}, fmt.Errorf("%w: name and unit are required", ErrInvalidItem)
	}
	item, err := roundCosts(item)
	if err != nil {
		return models.Item{}, err
	}
	return s.items.UpdateItem(ctx, item)
}

// DeleteItem removes an item and its offers.
func (s *Service) DeleteItem(ctx context.Context, id string) error {
	if err := s.items.DeleteItem(ctx, id); err != nil {
		return err
	}
	s.logger.Info("item deleted", zap.String("item_id", id))
	return nil
}

// SetSupplierPrice adds or replaces the offer of supplierID on the item.
func (s *Service) SetSupplierPrice(ctx context.Context, itemID, supplierID string, price decimal.Decimal, currency string) (models.Item, error) {
	if price.IsNegative() {
		return models.Item{}, fmt.Errorf("%w: %s is negative", ErrInvalidPrice, price.String())
	}
	if _, err := s.suppliers.GetSupplier(ctx, supplierID); err != nil {
		return models.Item{}, err
	}

	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = s.defaultCurrency
	}

	offer := models.SupplierOffer{
		SupplierID: supplierID,
		Price:      models.RoundMoney(price),
		Currency:   currency,
	}

	item, err := s.items.SetOffer(ctx, itemID, offer)
	if err != nil {
		return models.Item{}, err
	}

	s.logger.Debug("supplier price set",
		zap.String("item_id", itemID),
		zap.String("supplier_id", supplierID),
		zap.String("price", offer.Price.StringFixed(2)),
	)
	return item, nil
}

// SupplierPrices lists the offers of one item together with the supplier
// records they reference. Offers whose supplier no longer exists carry a nil Supplier.
func (s *Service) SupplierPrices(ctx context.Context, itemID string) ([]models.OfferDetail, error) {
	item, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	byID, err := s.supplierIndex(ctx)
	if err != nil {
		return nil, err
	}

	details := make([]models.OfferDetail, 0, len(item.Offers))
	for _, offer := range item.Offers {
		detail := models.OfferDetail{Price: offer.Price, Currency: offer.Currency}
		if supplier, ok := byID[offer.SupplierID]; ok {
			detail.Supplier = &supplier
		}
		details = append(details, detail)
	}
	return details, nil
}

// ListSuppliers returns every supplier sorted by name.
func (s *Service) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	suppliers, err := s.suppliers.ListSuppliers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	return suppliers, nil
}

// GetSupplier loads one supplier.
func (s *Service) GetSupplier(ctx context.Context, id string) (models.Supplier, error) {
	return s.suppliers.GetSupplier(ctx, id)
}

// SupplierIDs returns the ids of every known supplier.
func (s *Service) SupplierIDs(ctx context.Context) ([]string, error) {
	suppliers, err := s.ListSuppliers(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(suppliers))
	for _, supplier := range suppliers {
		ids = append(ids, supplier.ID)
	}
	return ids, nil
}

// CreateSupplier stores a new supplier.
func (s *Service) CreateSupplier(ctx context.Context, supplier models.Supplier) (models.Supplier, error) {
	supplier, err := cleanSupplier(supplier)
	if err != nil {
		return models.Supplier{}, err
	}
	created, err := s.suppliers.CreateSupplier(ctx, supplier)
	if err != nil {
		return models.Supplier{}, fmt.Errorf("create supplier: %w", err)
	}
	s.logger.Info("supplier created", zap.String("supplier_id", created.ID), zap.String("name", created.Name))
	return created, nil
}

// UpdateSupplier replaces the contact details of a supplier.
func (s *Service) UpdateSupplier(ctx context.Context, supplier models.Supplier) (models.Supplier, error) {
	supplier, err := cleanSupplier(supplier)
	if err != nil {
		return models.Supplier{}, err
	}
	return s.suppliers.UpdateSupplier(ctx, supplier)
}

// DeleteSupplier removes the supplier and every offer that references it.
func (s *Service) DeleteSupplier(ctx context.Context, id string) error {
	if err := s.suppliers.DeleteSupplier(ctx, id); err != nil {
		return err
	}

	pulled, err := s.items.PullOffersForSupplier(ctx, id)
	if err != nil {
		return fmt.Errorf("remove offers of supplier %s: %w", id, err)
	}

	s.logger.Info("supplier deleted", zap.String("supplier_id", id), zap.Int64("items_updated", pulled))
	return nil
}

// Sweep finds items whose normalized names collide and offers that point at
// suppliers which no longer exist. Duplicates keep the oldest item. Nothing is
// written when dryRun is set.
func (s *Service) Sweep(ctx context.Context, dryRun bool) (models.SweepReport, error) {
	items, err := s.items.ListItems(ctx)
	if err != nil {
		return models.SweepReport{}, fmt.Errorf("sweep: list items: %w", err)
	}
	knownSuppliers, err := s.supplierIndex(ctx)
	if err != nil {
		return models.SweepReport{}, fmt.Errorf("sweep: %w", err)
	}

	report := models.SweepReport{DryRun: dryRun, DuplicateItemIDs: duplicateItemIDs(items)}

	for _, item := range items {
		for _, offer := range item.Offers {
			if _, ok := knownSuppliers[offer.SupplierID]; !ok {
				report.DanglingOfferCount++
			}
		}
	}

	if dryRun {
		s.logger.Info("catalog sweep dry run",
			zap.Int("duplicates", len(report.DuplicateItemIDs)),
			zap.Int("dangling_offers", report.DanglingOfferCount),
		)
		return report, nil
	}

	if len(report.DuplicateItemIDs) > 0 {
		deleted, err := s.items.DeleteItems(ctx, report.DuplicateItemIDs)
		if err != nil {
			return report, fmt.Errorf("sweep: delete duplicates: %w", err)
		}
		report.DeletedItems = int(deleted)
	}

	if report.DanglingOfferCount > 0 {
		ids := make([]string, 0, len(knownSuppliers))
		for id := range knownSuppliers {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		pulled, err := s.items.PullOffersNotIn(ctx, ids)
		if err != nil {
			return report, fmt.Errorf("sweep: pull dangling offers: %w", err)
		}
		report.PulledOffers = int(pulled)
	}

	s.logger.Info("catalog sweep completed",
		zap.Int("deleted_items", report.DeletedItems),
		zap.Int("items_with_pulled_offers", report.PulledOffers),
	)
	return report, nil
}

func (s *Service) supplierIndex(ctx context.Context) (map[string]models.Supplier, error) {
	suppliers, err := s.suppliers.ListSuppliers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	byID := make(map[string]models.Supplier, len(suppliers))
	for _, supplier := range suppliers {
		byID[supplier.ID] = supplier
	}
	return byID, nil
}

// duplicateItemIDs returns the ids to delete so that each normalized name
// keeps only its oldest item. Equal timestamps fall back to the smaller id.
func duplicateItemIDs(items []models.Item) []string {
	groups := make(map[string][]models.Item)
	for _, item := range items {
		key := models.NormalizeName(item.Name)
		groups[key] = append(groups[key], item)
	}

	var ids []string
	for _, group := range groups {
		if len(group) < 2 {
			continue
		}
		sort.Slice(group, func(i, j int) bool {
			if !group[i].CreatedAt.Equal(group[j].CreatedAt) {
				return group[i].CreatedAt.Before(group[j].CreatedAt)
			}
			return group[i].ID < group[j].ID
		})
		for _, dup := range group[1:] {
			ids = append(ids, dup.ID)
		}
	}
	sort.Strings(ids)
	return ids
}

// roundCosts rejects negative costs and rounds both to cents.
func roundCosts(item models.Item) (models.Item, error) {
	if item.MaterialCost.IsNegative() || item.LaborCost.IsNegative() {
		return models.Item{}, fmt.Errorf("%w: costs must not be negative", ErrInvalidItem)
	}
	item.MaterialCost = models.RoundMoney(item.MaterialCost)
	item.LaborCost = models.RoundMoney(item.LaborCost)
	return item, nil
}

func cleanSupplier(supplier models.Supplier) (models.Supplier, error) {
	supplier.Name = strings.TrimSpace(supplier.Name)
	supplier.ContactEmail = strings.TrimSpace(supplier.ContactEmail)
	supplier.ContactNumber = strings.TrimSpace(supplier.ContactNumber)
	supplier.Address = strings.TrimSpace(supplier.Address)
	if supplier.Name == "" {
		return models.Supplier{}, fmt.Errorf("%w: name is required", ErrInvalidSupplier)
	}
	return supplier, nil
}
