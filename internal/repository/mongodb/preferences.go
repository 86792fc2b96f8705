package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Haizenx/Enginuity-Alpha/internal/domain/models"
)

const tierMarkupsKey = "tier_markups"

// PreferenceRepository stores application-wide preferences, one document per key.
type PreferenceRepository struct {
	coll *mongo.Collection
}

// GetTierMarkups returns the saved tier table. The boolean is false when none was saved yet.
func (r *PreferenceRepository) GetTierMarkups(ctx context.Context) (models.TierMarkupTable, bool, error) {
	var doc tierMarkupDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": tierMarkupsKey}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("find tier markups: %w", err)
	}
	return doc.toModel(), true, nil
}

// SaveTierMarkups replaces the saved tier table.
func (r *PreferenceRepository) SaveTierMarkups(ctx context.Context, table models.TierMarkupTable) error {
	doc, err := newTierMarkupDocument(table, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("encode tier markups: %w", err)
	}
	_, err = r.coll.ReplaceOne(ctx, bson.M{"_id": tierMarkupsKey}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save tier markups: %w", err)
	}
	return nil
}
