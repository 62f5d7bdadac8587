package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sirpyerre/portfolio-api/internal/core/domain"
)

const (
	collectionProjects = "projects"
	collectionArticles = "articles"
)

// listSort orders content listings: ascending sort_order, ties broken by
// creation time so output is deterministic.
var listSort = bson.D{{Key: "sort_order", Value: 1}, {Key: "created_at", Value: 1}}

// ContentRepository is the Mongo-backed store client shared by projects and
// articles. The entity type only differs in collection and document shape.
type ContentRepository[T domain.Entity] struct {
	col *mongo.Collection
}

func NewProjectRepository(db *mongo.Database) *ContentRepository[domain.Project] {
	return &ContentRepository[domain.Project]{col: db.Collection(collectionProjects)}
}

func NewArticleRepository(db *mongo.Database) *ContentRepository[domain.Article] {
	return &ContentRepository[domain.Article]{col: db.Collection(collectionArticles)}
}

// List returns all records ordered by ascending sort order.
func (r *ContentRepository[T]) List(ctx context.Context) ([]T, error) {
	return r.find(ctx, bson.M{})
}

// ListPublished returns published records only, same ordering as List.
func (r *ContentRepository[T]) ListPublished(ctx context.Context) ([]T, error) {
	return r.find(ctx, bson.M{"is_published": true})
}

func (r *ContentRepository[T]) find(ctx context.Context, filter bson.M) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.col.Find(ctx, filter, options.Find().SetSort(listSort))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := []T{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *ContentRepository[T]) FindByID(ctx context.Context, id string) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var record T
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return record, domain.ErrNotFound
		}
		return record, err
	}
	return record, nil
}

// Insert stores a new record document.
func (r *ContentRepository[T]) Insert(ctx context.Context, record T) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, record)
	return err
}

// Update replaces the stored document with the merged record. The record
// already carries its preserved created_at, so a full replace is safe.
func (r *ContentRepository[T]) Update(ctx context.Context, record T) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := r.col.ReplaceOne(ctx, bson.M{"_id": record.Key()}, record)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ContentRepository[T]) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// EnsureIndexes creates the indexes content listings rely on.
func (r *ContentRepository[T]) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "sort_order", Value: 1}}},
		{Keys: bson.D{{Key: "is_published", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
