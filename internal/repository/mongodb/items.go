package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Haizenx/Enginuity-Alpha/internal/domain/models"
)

// ItemRepository stores items with their supplier offers embedded.
type ItemRepository struct {
	coll *mongo.Collection
}

// ListItems returns every item ordered by normalized name.
func (r *ItemRepository) ListItems(ctx context.Context) ([]models.Item, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_key", Value: 1}})
	return r.find(ctx, bson.M{}, opts)
}

// GetItem loads a single item.
func (r *ItemRepository) GetItem(ctx context.Context, id string) (models.Item, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return models.Item{}, err
	}
	return r.findOne(ctx, oid)
}

// GetItemsWithOffers loads the listed items. Ids that are malformed or absent
// are left out of the result.
func (r *ItemRepository) GetItemsWithOffers(ctx context.Context, ids []string) ([]models.Item, error) {
	oids := parseObjectIDs(ids)
	if len(oids) == 0 {
		return []models.Item{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": oids}})
}

// UpsertItemByName inserts the item unless one with the same normalized name
// exists, and returns whichever document is stored.
func (r *ItemRepository) UpsertItemByName(ctx context.Context, item models.Item) (models.Item, error) {
	costs, err := toDecimal128s(item.MaterialCost, item.LaborCost)
	if err != nil {
		return models.Item{}, fmt.Errorf("upsert item: %w", err)
	}
	now := time.Now().UTC()
	filter := bson.M{"name_key": models.NormalizeName(item.Name)}
	update := bson.M{"$setOnInsert": bson.M{
		"name":          item.Name,
		"unit":          item.Unit,
		"material_cost": costs[0],
		"labor_cost":    costs[1],
		"category":      item.Category,
		"item_no":       item.ItemNo,
		"offers":        []offerDocument{},
		"created_at":    now,
		"updated_at":    now,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	// Two concurrent upserts of a new name race on the unique index; the loser retries and reads the winner.
	for attempt := 0; attempt < 2; attempt++ {
		var stored itemDocument
		err = r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored)
		if err == nil {
			return stored.toModel(), nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			break
		}
	}
	return models.Item{}, fmt.Errorf("upsert item: %w", err)
}

// UpdateItem replaces the editable fields of an item.
func (r *ItemRepository) UpdateItem(ctx context.Context, item models.Item) (models.Item, error) {
	oid, err := parseObjectID(item.ID)
	if err != nil {
		return models.Item{}, err
	}
	costs, err := toDecimal128s(item.MaterialCost, item.LaborCost)
	if err != nil {
		return models.Item{}, fmt.Errorf("update item %s: %w", item.ID, err)
	}

	update := bson.M{"$set": bson.M{
		"name":          item.Name,
		"name_key":      models.NormalizeName(item.Name),
		"unit":          item.Unit,
		"material_cost": costs[0],
		"labor_cost":    costs[1],
		"category":      item.Category,
		"item_no":       item.ItemNo,
		"updated_at":    time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var stored itemDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&stored)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return models.Item{}, models.ErrItemNotFound
	case mongo.IsDuplicateKeyError(err):
		return models.Item{}, models.ErrDuplicateItemName
	case err != nil:
		return models.Item{}, fmt.Errorf("update item %s: %w", item.ID, err)
	}
	return stored.toModel(), nil
}

// DeleteItem removes one item.
func (r *ItemRepository) DeleteItem(ctx context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete item %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return models.ErrItemNotFound
	}
	return nil
}

// DeleteItems removes the listed items and reports how many were deleted.
func (r *ItemRepository) DeleteItems(ctx context.Context, ids []string) (int64, error) {
	oids := parseObjectIDs(ids)
	if len(oids) == 0 {
		return 0, nil
	}
	res, err := r.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return 0, fmt.Errorf("delete items: %w", err)
	}
	return res.DeletedCount, nil
}

// SetOffer replaces the supplier's offer on the item or appends one. The
// append is guarded on the supplier being absent so concurrent writers never
// leave two offers for one supplier.
func (r *ItemRepository) SetOffer(ctx context.Context, itemID string, offer models.SupplierOffer) (models.Item, error) {
	oid, err := parseObjectID(itemID)
	if err != nil {
		return models.Item{}, err
	}
	doc, err := newOfferDocument(offer)
	if err != nil {
		return models.Item{}, err
	}

	for attempt := 0; attempt < 2; attempt++ {
		now := time.Now().UTC()

		res, err := r.coll.UpdateOne(ctx,
			bson.M{"_id": oid, "offers.supplier_id": doc.SupplierID},
			bson.M{"$set": bson.M{
				"offers.$.price":    doc.Price,
				"offers.$.currency": doc.Currency,
				"updated_at":        now,
			}},
		)
		if err != nil {
			return models.Item{}, fmt.Errorf("replace offer: %w", err)
		}
		if res.MatchedCount > 0 {
			return r.findOne(ctx, oid)
		}

		res, err = r.coll.UpdateOne(ctx,
			bson.M{"_id": oid, "offers.supplier_id": bson.M{"$ne": doc.SupplierID}},
			bson.M{
				"$push": bson.M{"offers": doc},
				"$set":  bson.M{"updated_at": now},
			},
		)
		if err != nil {
			return models.Item{}, fmt.Errorf("append offer: %w", err)
		}
		if res.MatchedCount > 0 {
			return r.findOne(ctx, oid)
		}

		count, err := r.coll.CountDocuments(ctx, bson.M{"_id": oid})
		if err != nil {
			return models.Item{}, fmt.Errorf("check item %s: %w", itemID, err)
		}
		if count == 0 {
			return models.Item{}, models.ErrItemNotFound
		}
	}

	return models.Item{}, fmt.Errorf("set offer on item %s: concurrent writers did not settle", itemID)
}

// PullOffersForSupplier removes the supplier's offer from every item.
func (r *ItemRepository) PullOffersForSupplier(ctx context.Context, supplierID string) (int64, error) {
	sid, err := parseObjectID(supplierID)
	if err != nil {
		return 0, err
	}
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"offers.supplier_id": sid},
		bson.M{"$pull": bson.M{"offers": bson.M{"supplier_id": sid}}},
	)
	if err != nil {
		return 0, fmt.Errorf("pull offers: %w", err)
	}
	return res.ModifiedCount, nil
}

// PullOffersNotIn removes every offer whose supplier is not listed and
// reports how many items changed.
func (r *ItemRepository) PullOffersNotIn(ctx context.Context, supplierIDs []string) (int64, error) {
	known := parseObjectIDs(supplierIDs)
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"offers": bson.M{"$elemMatch": bson.M{"supplier_id": bson.M{"$nin": known}}}},
		bson.M{"$pull": bson.M{"offers": bson.M{"supplier_id": bson.M{"$nin": known}}}},
	)
	if err != nil {
		return 0, fmt.Errorf("pull dangling offers: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *ItemRepository) findOne(ctx context.Context, oid primitive.ObjectID) (models.Item, error) {
	var doc itemDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Item{}, models.ErrItemNotFound
	}
	if err != nil {
		return models.Item{}, fmt.Errorf("find item %s: %w", oid.Hex(), err)
	}
	return doc.toModel(), nil
}

func (r *ItemRepository) find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Item, error) {
	cursor, err := r.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find items: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []itemDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}

	items := make([]models.Item, 0, len(docs))
	for _, doc := range docs {
		items = append(items, doc.toModel())
	}
	return items, nil
}
