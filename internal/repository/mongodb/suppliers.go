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

// SupplierRepository stores suppliers.
type SupplierRepository struct {
	coll *mongo.Collection
}

// ListSuppliers returns every supplier ordered by name.
func (r *SupplierRepository) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find suppliers: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []supplierDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode suppliers: %w", err)
	}

	suppliers := make([]models.Supplier, 0, len(docs))
	for _, doc := range docs {
		suppliers = append(suppliers, doc.toModel())
	}
	return suppliers, nil
}

// GetSupplier loads one supplier.
func (r *SupplierRepository) GetSupplier(ctx context.Context, id string) (models.Supplier, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return models.Supplier{}, err
	}

	var doc supplierDocument
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Supplier{}, models.ErrSupplierNotFound
	}
	if err != nil {
		return models.Supplier{}, fmt.Errorf("find supplier %s: %w", id, err)
	}
	return doc.toModel(), nil
}

// CreateSupplier inserts a supplier and returns it with its id.
func (r *SupplierRepository) CreateSupplier(ctx context.Context, supplier models.Supplier) (models.Supplier, error) {
	now := time.Now().UTC()
	doc := supplierDocument{
		Name:          supplier.Name,
		ContactEmail:  supplier.ContactEmail,
		ContactNumber: supplier.ContactNumber,
		Address:       supplier.Address,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return models.Supplier{}, fmt.Errorf("insert supplier: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.toModel(), nil
}

// UpdateSupplier replaces a supplier's name and contact details.
func (r *SupplierRepository) UpdateSupplier(ctx context.Context, supplier models.Supplier) (models.Supplier, error) {
	oid, err := parseObjectID(supplier.ID)
	if err != nil {
		return models.Supplier{}, err
	}

	update := bson.M{"$set": bson.M{
		"name":           supplier.Name,
		"contact_email":  supplier.ContactEmail,
		"contact_number": supplier.ContactNumber,
		"address":        supplier.Address,
		"updated_at":     time.Now().UTC(),
	}}

	var doc supplierDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Supplier{}, models.ErrSupplierNotFound
	}
	if err != nil {
		return models.Supplier{}, fmt.Errorf("update supplier %s: %w", supplier.ID, err)
	}
	return doc.toModel(), nil
}

// DeleteSupplier removes a supplier. Offers are cleaned up by the caller.
func (r *SupplierRepository) DeleteSupplier(ctx context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete supplier %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return models.ErrSupplierNotFound
	}
	return nil
}
