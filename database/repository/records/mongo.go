package recordsRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements Store on a MongoDB database, one collection per
// record collection. Records keep their own "id" field alongside _id.
type MongoStore struct {
	client  *mongo.Client
	db      *mongo.Database
	timeout time.Duration
}

// NewMongoStore returns a Store using database dbName of client.
func NewMongoStore(client *mongo.Client, dbName string, timeout time.Duration) *MongoStore {
	return &MongoStore{
		client:  client,
		db:      client.Database(dbName),
		timeout: timeout,
	}
}

func (s *MongoStore) List(ctx context.Context, collection string, filter Filter, out any) error {
	ctx, cancel := newContext(ctx, s.timeout)
	defer cancel()

	cursor, err := s.db.Collection(collection).Find(ctx, toBSONFilter(filter))
	if err != nil {
		return mongoError("find "+collection, err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, out); err != nil {
		return mongoError("decode "+collection, err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, collection, id string, out any) error {
	ctx, cancel := newContext(ctx, s.timeout)
	defer cancel()

	if err := s.db.Collection(collection).FindOne(ctx, bson.M{"id": id}).Decode(out); err != nil {
		return mongoError(collection+"/"+id, err)
	}
	return nil
}

func (s *MongoStore) Create(ctx context.Context, collection string, doc any) (string, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}
	m := bson.M{}
	if err := bson.Unmarshal(raw, &m); err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}
	id, _ := m["id"].(string)
	if id == "" {
		id = uuid.New().String()
		m["id"] = id
	}

	ctx, cancel := newContext(ctx, s.timeout)
	defer cancel()

	if _, err := s.db.Collection(collection).InsertOne(ctx, m); err != nil {
		return "", mongoError("insert "+collection, err)
	}
	return id, nil
}

func (s *MongoStore) Patch(ctx context.Context, collection, id string, patch Patch) error {
	ctx, cancel := newContext(ctx, s.timeout)
	defer cancel()

	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": toBSONSet(patch)})
	if err != nil {
		return mongoError(collection+"/"+id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	return nil
}

func (s *MongoStore) PatchIf(ctx context.Context, collection, id, field, expected string, patch Patch) error {
	ctx, cancel := newContext(ctx, s.timeout)
	defer cancel()

	coll := s.db.Collection(collection)
	res, err := coll.UpdateOne(ctx, bson.M{"id": id, field: expected}, bson.M{"$set": toBSONSet(patch)})
	if err != nil {
		return mongoError(collection+"/"+id, err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := coll.CountDocuments(ctx, bson.M{"id": id})
	if err != nil {
		return mongoError(collection+"/"+id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	return fmt.Errorf("%s/%s %s!=%q: %w", collection, id, field, expected, ErrPreconditionFailed)
}

func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	ctx, cancel := newContext(ctx, s.timeout)
	defer cancel()

	res, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return mongoError(collection+"/"+id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	return nil
}

// EnsureUniqueIndex creates the unique "id" index and a partial unique index
// on field covering only string values, so cleared (null) values never collide.
func (s *MongoStore) EnsureUniqueIndex(ctx context.Context, collection, field string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if field != "id" {
		indexModels = append(indexModels, mongo.IndexModel{
			Keys: bson.D{{Key: field, Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{field: bson.M{"$type": "string"}}),
		})
	}

	if _, err := s.db.Collection(collection).Indexes().CreateMany(ctx, indexModels); err != nil {
		return mongoError("create indexes on "+collection, err)
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	ctx, cancel := newContext(ctx, s.timeout)
	defer cancel()
	if err := s.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("ping mongo: %v: %w", err, ErrUnavailable)
	}
	return nil
}

func toBSONFilter(filter Filter) bson.M {
	m := bson.M{}
	for field, values := range filter {
		if len(values) == 1 {
			m[field] = values[0]
			continue
		}
		m[field] = bson.M{"$in": values}
	}
	return m
}

func toBSONSet(patch Patch) bson.M {
	set := bson.M{}
	for k, v := range patch {
		if k == "id" {
			continue
		}
		set[k] = v
	}
	return set
}

func mongoError(op string, err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	default:
		return fmt.Errorf("%s: %v: %w", op, err, ErrUnavailable)
	}
}
