package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Haizenx/Enginuity-Alpha/internal/domain/models"
)

// QuotationRepository stores priced quotation documents.
type QuotationRepository struct {
	coll *mongo.Collection
}

// CreateQuotation inserts the quotation and returns it with its id.
func (r *QuotationRepository) CreateQuotation(ctx context.Context, quotation models.Quotation) (models.Quotation, error) {
	doc, err := newQuotationDocument(quotation)
	if err != nil {
		return models.Quotation{}, fmt.Errorf("encode quotation: %w", err)
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return models.Quotation{}, fmt.Errorf("insert quotation: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.toModel(), nil
}

// ListQuotations returns quotations newest first.
func (r *QuotationRepository) ListQuotations(ctx context.Context) ([]models.Quotation, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find quotations: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []quotationDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode quotations: %w", err)
	}

	quotations := make([]models.Quotation, 0, len(docs))
	for _, doc := range docs {
		quotations = append(quotations, doc.toModel())
	}
	return quotations, nil
}

// GetQuotation loads one quotation.
func (r *QuotationRepository) GetQuotation(ctx context.Context, id string) (models.Quotation, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return models.Quotation{}, err
	}

	var doc quotationDocument
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Quotation{}, models.ErrQuotationNotFound
	}
	if err != nil {
		return models.Quotation{}, fmt.Errorf("find quotation %s: %w", id, err)
	}
	return doc.toModel(), nil
}
