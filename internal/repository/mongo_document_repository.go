package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	mongoCreatedAt = "_createdAt"
	mongoUpdatedAt = "_updatedAt"
)

type mongoDocumentRepository struct {
	db *mongo.Database
}

// NewMongoDocumentRepository returns a MongoDB-backed document store; each collection id
// maps to a Mongo collection and the document id is stored as _id.
func NewMongoDocumentRepository(db *mongo.Database) DocumentStore {
	return &mongoDocumentRepository{db: db}
}

func (r *mongoDocumentRepository) Create(ctx context.Context, collection, id string, data map[string]any) (*Document, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	record := bson.M{}
	for k, v := range data {
		record[k] = v
	}
	record["_id"] = id
	record[mongoCreatedAt] = now
	record[mongoUpdatedAt] = now

	if _, err := r.db.Collection(collection).InsertOne(ctx, record); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDocumentExists
		}
		return nil, err
	}
	return &Document{ID: id, Collection: collection, Data: data, CreatedAt: now, UpdatedAt: now}, nil
}

func (r *mongoDocumentRepository) Get(ctx context.Context, collection, id string) (*Document, error) {
	var record bson.M
	err := r.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	return fromMongo(collection, record), nil
}

func (r *mongoDocumentRepository) List(ctx context.Context, collection string, q DocumentQuery) (*DocumentList, error) {
	filter := bson.M{}
	for _, eq := range q.Filters {
		filter[eq.Field] = eq.Value
	}

	coll := r.db.Collection(collection)
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	order := 1
	if q.NewestFirst {
		order = -1
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 25
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	opts := options.Find().
		SetSort(bson.D{{Key: mongoCreatedAt, Value: order}, {Key: "_id", Value: order}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	result := &DocumentList{Total: int(total), Documents: []Document{}}
	for cursor.Next(ctx) {
		var record bson.M
		if err := cursor.Decode(&record); err != nil {
			return nil, err
		}
		result.Documents = append(result.Documents, *fromMongo(collection, record))
	}
	return result, cursor.Err()
}

func (r *mongoDocumentRepository) Update(ctx context.Context, collection, id string, patch map[string]any) (*Document, error) {
	set := bson.M{mongoUpdatedAt: time.Now().UTC().Truncate(time.Millisecond)}
	for k, v := range patch {
		set[k] = v
	}

	var record bson.M
	err := r.db.Collection(collection).FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	return fromMongo(collection, record), nil
}

func (r *mongoDocumentRepository) Delete(ctx context.Context, collection, id string) error {
	res, err := r.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func fromMongo(collection string, record bson.M) *Document {
	doc := &Document{Collection: collection, Data: map[string]any{}}
	for k, v := range record {
		switch k {
		case "_id":
			if id, ok := v.(string); ok {
				doc.ID = id
			}
		case mongoCreatedAt:
			doc.CreatedAt = mongoTime(v)
		case mongoUpdatedAt:
			doc.UpdatedAt = mongoTime(v)
		default:
			doc.Data[k] = normalizeMongo(v)
		}
	}
	return doc
}

func mongoTime(v any) time.Time {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC()
	case time.Time:
		return t.UTC()
	}
	return time.Time{}
}

// normalizeMongo converts driver container types to plain Go maps and slices.
func normalizeMongo(v any) any {
	switch t := v.(type) {
	case primitive.A:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalizeMongo(item)
		}
		return out
	case bson.M:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = normalizeMongo(item)
		}
		return out
	case primitive.DateTime:
		return t.Time().UTC()
	}
	return v
}
