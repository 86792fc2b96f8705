package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	itemsCollection       = "items"
	suppliersCollection   = "suppliers"
	quotationsCollection  = "quotations"
	preferencesCollection = "preferences"
)

// Repository owns the MongoDB connection and hands out the per-collection stores.
type Repository struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

// NewRepository connects to MongoDB and verifies the connection.
func NewRepository(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Repository{
		client: client,
		db:     client.Database(dbName),
		logger: logger,
	}, nil
}

// Items returns the item store.
func (r *Repository) Items() *ItemRepository {
	return &ItemRepository{coll: r.db.Collection(itemsCollection)}
}

// Suppliers returns the supplier store.
func (r *Repository) Suppliers() *SupplierRepository {
	return &SupplierRepository{coll: r.db.Collection(suppliersCollection)}
}

// Quotations returns the quotation store.
func (r *Repository) Quotations() *QuotationRepository {
	return &QuotationRepository{coll: r.db.Collection(quotationsCollection)}
}

// Preferences returns the application preference store.
func (r *Repository) Preferences() *PreferenceRepository {
	return &PreferenceRepository{coll: r.db.Collection(preferencesCollection)}
}

// EnsureIndexes creates the indexes the stores rely on. The unique name index
// cannot be built while duplicate item names exist; run a catalog sweep first.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		itemsCollection: {
			{Keys: bson.D{{Key: "name_key", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_name_key")},
			{Keys: bson.D{{Key: "offers.supplier_id", Value: 1}}, Options: options.Index().SetName("offers_supplier")},
		},
		suppliersCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetName("name")},
		},
		quotationsCollection: {
			{Keys: bson.D{{Key: "created_at", Value: -1}}, Options: options.Index().SetName("created_at_desc")},
		},
	}

	for collection, specs := range indexes {
		names, err := r.db.Collection(collection).Indexes().CreateMany(ctx, specs)
		if err != nil {
			return fmt.Errorf("create indexes on %s: %w", collection, err)
		}
		r.logger.Debug("indexes ensured", zap.String("collection", collection), zap.Strings("indexes", names))
	}
	return nil
}

// Ping checks that the server is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}

// Close closes the MongoDB connection.
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
