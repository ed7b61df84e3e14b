package database

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DataManager provides typed access to one MongoDB collection.
// The collection is resolved on every call so managers can be built before the database connects.
type DataManager[T any] struct {
	name   string
	source CollectionSource
}

// NewDataManager creates a new DataManager for a collection
func NewDataManager[T any](collectionName string, source CollectionSource) *DataManager[T] {
	return &DataManager[T]{
		name:   collectionName,
		source: source,
	}
}

// Name returns the collection name
func (dm *DataManager[T]) Name() string {
	return dm.name
}

func (dm *DataManager[T]) collection() (*mongo.Collection, error) {
	if dm.source == nil {
		return nil, ErrNotConnected
	}
	col := dm.source.GetCollection(dm.name)
	if col == nil {
		return nil, ErrNotConnected
	}
	return col, nil
}

// Get retrieves one document. A missing document yields nil without error.
func (dm *DataManager[T]) Get(ctx context.Context, query bson.M) (*T, error) {
	col, err := dm.collection()
	if err != nil {
		return nil, err
	}

	var result T
	if err := col.FindOne(ctx, query).Decode(&result); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "find in %s", dm.name)
	}
	return &result, nil
}

// Exists reports whether a document matches the query
func (dm *DataManager[T]) Exists(ctx context.Context, query bson.M) (bool, error) {
	col, err := dm.collection()
	if err != nil {
		return false, err
	}

	opts := options.FindOne().SetProjection(bson.M{"_id": 1})
	if err := col.FindOne(ctx, query, opts).Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, errors.Wrapf(err, "exists in %s", dm.name)
	}
	return true, nil
}

// GetAll retrieves all documents matching a query
func (dm *DataManager[T]) GetAll(ctx context.Context, query bson.M) ([]*T, error) {
	col, err := dm.collection()
	if err != nil {
		return nil, err
	}

	cursor, err := col.Find(ctx, query)
	if err != nil {
		return nil, errors.Wrapf(err, "find all in %s", dm.name)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var results []*T
	for cursor.Next(ctx) {
		var doc T
		if err := cursor.Decode(&doc); err != nil {
			return results, errors.Wrapf(err, "decode %s document", dm.name)
		}
		results = append(results, &doc)
	}

	return results, cursor.Err()
}

// Set replaces the document matched by query with data, inserting it when missing.
// Fields absent from data do not survive from the previous document.
func (dm *DataManager[T]) Set(ctx context.Context, query bson.M, data interface{}) error {
	col, err := dm.collection()
	if err != nil {
		return err
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := col.ReplaceOne(ctx, query, data, opts); err != nil {
		return errors.Wrapf(err, "upsert in %s", dm.name)
	}
	return nil
}

// Delete removes the document matched by query and reports whether one existed
func (dm *DataManager[T]) Delete(ctx context.Context, query bson.M) (bool, error) {
	col, err := dm.collection()
	if err != nil {
		return false, err
	}

	res, err := col.DeleteOne(ctx, query)
	if err != nil {
		return false, errors.Wrapf(err, "delete in %s", dm.name)
	}
	return res.DeletedCount > 0, nil
}
