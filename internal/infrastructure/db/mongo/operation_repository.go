package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mineralchain/roles-admin/internal/core/domain"
	"github.com/mineralchain/roles-admin/internal/core/ports"
)

const collectionOperations = "role_operations"

// OperationRepository implements ports.OperationRepository on the
// role_operations collection.
type OperationRepository struct {
	col *mongo.Collection
}

func NewOperationRepository(db *mongo.Database) *OperationRepository {
	return &OperationRepository{col: db.Collection(collectionOperations)}
}

// Insert stores a finished role operation. Records are keyed by operation ID,
// so a retried insert of the same record is a no-op.
func (r *OperationRepository) Insert(ctx context.Context, op *domain.RoleOperation) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, op)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("insert operation: %w", err)
	}
	return nil
}

// List returns operations matching f, newest first, with the total match count.
func (r *OperationRepository) List(ctx context.Context, f ports.ListOperationsFilter) ([]*domain.RoleOperation, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.Kind != "" {
		filter["kind"] = string(f.Kind)
	}
	if f.Role != "" {
		filter["role"] = string(f.Role)
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count operations: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "started_at", Value: -1}}).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find operations: %w", err)
	}
	defer cur.Close(ctx)

	items := make([]*domain.RoleOperation, 0, f.Limit)
	if err := cur.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("decode operations: %w", err)
	}
	return items, total, nil
}

// EnsureIndexes creates the indexes backing List.
func (r *OperationRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "started_at", Value: -1}}},
		{Keys: bson.D{{Key: "role", Value: 1}, {Key: "started_at", Value: -1}}},
		{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "started_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
