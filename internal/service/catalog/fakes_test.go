package catalog

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/Haizenx/Enginuity-Alpha/internal/domain/models"
)

type memoryItems struct {
	items  map[string]models.Item
	nextID int
	clock  time.Time
}

func newMemoryItems() *memoryItems {
	return &memoryItems{items: map[string]models.Item{}, clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *memoryItems) tick() time.Time {
	m.clock = m.clock.Add(time.Minute)
	return m.clock
}

func (m *memoryItems) put(item models.Item) models.Item {
	if item.ID == "" {
		m.nextID++
		item.ID = "item-" + strconv.Itoa(m.nextID)
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = m.tick()
	}
	m.items[item.ID] = item
	return item
}

func (m *memoryItems) ListItems(context.Context) ([]models.Item, error) {
	out := make([]models.Item, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memoryItems) GetItem(_ context.Context, id string) (models.Item, error) {
	item, ok := m.items[id]
	if !ok {
		return models.Item{}, models.ErrItemNotFound
	}
	return item, nil
}

func (m *memoryItems) GetItemsWithOffers(_ context.Context, ids []string) ([]models.Item, error) {
	var out []models.Item
	for _, id := range ids {
		if item, ok := m.items[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *memoryItems) UpsertItemByName(_ context.Context, item models.Item) (models.Item, error) {
	key := models.NormalizeName(item.Name)
	for _, existing := range m.items {
		if models.NormalizeName(existing.Name) == key {
			return existing, nil
		}
	}
	return m.put(item), nil
}

func (m *memoryItems) UpdateItem(_ context.Context, item models.Item) (models.Item, error) {
	existing, ok := m.items[item.ID]
	if !ok {
		return models.Item{}, models.ErrItemNotFound
	}
	for id, other := range m.items {
		if id != item.ID && models.NormalizeName(other.Name) == models.NormalizeName(item.Name) {
			return models.Item{}, models.ErrDuplicateItemName
		}
	}
	item.Offers = existing.Offers
	item.CreatedAt = existing.CreatedAt
	m.items[item.ID] = item
	return item, nil
}

func (m *memoryItems) DeleteItem(_ context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return models.ErrItemNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memoryItems) DeleteItems(_ context.Context, ids []string) (int64, error) {
	var n int64
	for _, id := range ids {
		if _, ok := m.items[id]; ok {
			delete(m.items, id)
			n++
		}
	}
	return n, nil
}

func (m *memoryItems) SetOffer(_ context.Context, itemID string, offer models.SupplierOffer) (models.Item, error) {
	item, ok := m.items[itemID]
	if !ok {
		return models.Item{}, models.ErrItemNotFound
	}
	offers := make([]models.SupplierOffer, 0, len(item.Offers)+1)
	replaced := false
	for _, existing := range item.Offers {
		if existing.SupplierID == offer.SupplierID {
			existing = offer
			replaced = true
		}
		offers = append(offers, existing)
	}
	if !replaced {
		offers = append(offers, offer)
	}
	item.Offers = offers
	m.items[itemID] = item
	return item, nil
}

func (m *memoryItems) PullOffersForSupplier(_ context.Context, supplierID string) (int64, error) {
	return m.pull(func(id string) bool { return id == supplierID }), nil
}

func (m *memoryItems) PullOffersNotIn(_ context.Context, supplierIDs []string) (int64, error) {
	keep := map[string]bool{}
	for _, id := range supplierIDs {
		keep[id] = true
	}
	return m.pull(func(id string) bool { return !keep[id] }), nil
}

func (m *memoryItems) pull(match func(string) bool) int64 {
	var touched int64
	for id, item := range m.items {
		kept := item.Offers[:0:0]
		for _, offer := range item.Offers {
			if !match(offer.SupplierID) {
				kept = append(kept, offer)
			}
		}
		if len(kept) != len(item.Offers) {
			item.Offers = kept
			m.items[id] = item
			touched++
		}
	}
	return touched
}

type memorySuppliers struct {
	suppliers map[string]models.Supplier
	nextID    int
}

func newMemorySuppliers() *memorySuppliers {
	return &memorySuppliers{suppliers: map[string]models.Supplier{}}
}

func (m *memorySuppliers) ListSuppliers(context.Context) ([]models.Supplier, error) {
	out := make([]models.Supplier, 0, len(m.suppliers))
	for _, s := range m.suppliers {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memorySuppliers) GetSupplier(_ context.Context, id string) (models.Supplier, error) {
	s, ok := m.suppliers[id]
	if !ok {
		return models.Supplier{}, models.ErrSupplierNotFound
	}
	return s, nil
}

func (m *memorySuppliers) CreateSupplier(_ context.Context, s models.Supplier) (models.Supplier, error) {
	m.nextID++
	s.ID = "sup-" + strconv.Itoa(m.nextID)
	m.suppliers[s.ID] = s
	return s, nil
}

func (m *memorySuppliers) UpdateSupplier(_ context.Context, s models.Supplier) (models.Supplier, error) {
	if _, ok := m.suppliers[s.ID]; !ok {
		return models.Supplier{}, models.ErrSupplierNotFound
	}
	m.suppliers[s.ID] = s
	return s, nil
}

func (m *memorySuppliers) DeleteSupplier(_ context.Context, id string) error {
	if _, ok := m.suppliers[id]; !ok {
		return models.ErrSupplierNotFound
	}
	delete(m.suppliers, id)
	return nil
}
