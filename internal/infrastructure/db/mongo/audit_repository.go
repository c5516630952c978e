package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/casefile-io/access-engine/internal/core/domain"
	"github.com/casefile-io/access-engine/internal/core/ports"
)

const auditCollection = "audit_records"

// AuditRepository implements ports.AuditRepository on a MongoDB collection.
// The only write it performs is InsertOne; there is no code path that updates
// or removes a record.
type AuditRepository struct {
	collection *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{collection: db.Collection(auditCollection)}
}

// EnsureIndexes creates the query-path indexes. Call once at startup.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "is_demo", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "principal_id", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "resource_type", Value: 1}, {Key: "resource_id", Value: 1}, {Key: "timestamp", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("audit indexes: %w", err)
	}
	return nil
}

func (r *AuditRepository) Append(ctx context.Context, record *domain.AuditRecord) error {
	if _, err := r.collection.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("audit append: %w", err)
	}
	return nil
}

func (r *AuditRepository) Query(ctx context.Context, filter ports.AuditQueryFilter) ([]*domain.AuditRecord, int64, error) {
	query := bson.M{"is_demo": filter.IsDemo}
	if filter.PrincipalID != "" {
		query["principal_id"] = filter.PrincipalID
	}
	if filter.ResourceType != "" {
		query["resource_type"] = filter.ResourceType
	}
	if filter.ResourceID != "" {
		query["resource_id"] = filter.ResourceID
	}
	if filter.Action != "" {
		query["action"] = filter.Action
	}
	if !filter.From.IsZero() || !filter.To.IsZero() {
		window := bson.M{}
		if !filter.From.IsZero() {
			window["$gte"] = filter.From.UTC()
		}
		if !filter.To.IsZero() {
			window["$lte"] = filter.To.UTC()
		}
		query["timestamp"] = window
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("audit count: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetSkip(int64(filter.Offset))
	if filter.Limit > 0 {
		opts = opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("audit query: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*domain.AuditRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, 0, fmt.Errorf("audit decode: %w", err)
	}
	return records, total, nil
}
