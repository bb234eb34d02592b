package databases

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrMalformedID is returned when a caller-supplied identifier is not a valid
// hex object id. It is distinct from the not-found outcome, which is reported
// through the boolean returns, never as an error.
var ErrMalformedID = errors.New("malformed identifier")

// Entity is the capability every persisted type exposes to the generic
// repository: a canonical serialization to its storage document. The document
// carries the identifier under _id only.
type Entity interface {
	Document() (bson.M, error)
}

// Decoder rebuilds a domain value from its storage document.
type Decoder[T Entity] func(bson.M) (T, error)

// Repository implements generic CRUD over a single mongo collection. The
// identifier translation between the domain-side hex string and the
// storage-side object id happens here and nowhere else.
type Repository[T Entity] struct {
	db         DatabaseHelper
	collection string
	decode     Decoder[T]
}

// NewRepository wires a repository to one collection with the decode path for
// its entity type.
func NewRepository[T Entity](db DatabaseHelper, collection string, decode Decoder[T]) *Repository[T] {
	return &Repository[T]{db: db, collection: collection, decode: decode}
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrMalformedID, id)
	}
	return oid, nil
}

// Create inserts one document and returns the storage-assigned identifier in
// hex form.
func (r *Repository[T]) Create(ctx context.Context, entity T) (string, error) {
	doc, err := entity.Document()
	if err != nil {
		return "", err
	}
	inserted, err := r.db.Collection(r.collection).InsertOne(ctx, doc)
	if err != nil {
		return "", err
	}
	if oid, ok := inserted.(primitive.ObjectID); ok {
		return oid.Hex(), nil
	}
	return fmt.Sprintf("%v", inserted), nil
}

// FindByID returns the reconstructed entity and true when found. A well-formed
// but absent identifier yields (zero, false, nil); a malformed identifier
// yields ErrMalformedID.
func (r *Repository[T]) FindByID(ctx context.Context, id string) (T, bool, error) {
	var zero T
	oid, err := parseObjectID(id)
	if err != nil {
		return zero, false, err
	}
	return r.FindOne(ctx, bson.M{"_id": oid})
}

// FindOne returns the first entity matching the filter, with the same
// found/not-found contract as FindByID.
func (r *Repository[T]) FindOne(ctx context.Context, filter bson.M) (T, bool, error) {
	var zero T
	var doc bson.M
	err := r.db.Collection(r.collection).FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, err
	}
	entity, err := r.decode(doc)
	if err != nil {
		return zero, false, err
	}
	return entity, true, nil
}

// FindAll returns every entity matching the equality filter, in cursor order.
// An empty or nil filter matches the whole collection.
func (r *Repository[T]) FindAll(ctx context.Context, filter map[string]interface{}, opts ...*options.FindOptions) ([]T, error) {
	query := bson.M{}
	for k, v := range filter {
		query[k] = v
	}
	cursor, err := r.db.Collection(r.collection).Find(ctx, query, opts...)
	if err != nil {
		return nil, err
	}
	var docs []bson.M
	if err := cursor.Decode(&docs); err != nil {
		return nil, err
	}
	entities := make([]T, 0, len(docs))
	for _, doc := range docs {
		entity, err := r.decode(doc)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

// Update applies a partial $set update and reports whether exactly one
// document was modified. A zero match is false, not an error.
func (r *Repository[T]) Update(ctx context.Context, id string, updates map[string]interface{}) (bool, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return false, err
	}
	set := bson.M{}
	for k, v := range updates {
		set[k] = v
	}
	result, err := r.db.Collection(r.collection).UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}

// Delete removes the document and reports whether exactly one was removed.
func (r *Repository[T]) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return false, err
	}
	result, err := r.db.Collection(r.collection).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, err
	}
	return result.DeletedCount == 1, nil
}

// Exists reports presence. Malformed identifiers and I/O failures surface as
// errors, never as false.
func (r *Repository[T]) Exists(ctx context.Context, id string) (bool, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return false, err
	}
	count, err := r.db.Collection(r.collection).CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Count returns the number of documents matching the equality filter.
func (r *Repository[T]) Count(ctx context.Context, filter map[string]interface{}) (int64, error) {
	query := bson.M{}
	for k, v := range filter {
		query[k] = v
	}
	return r.db.Collection(r.collection).CountDocuments(ctx, query)
}
