package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Mongo backs the Store interface with a MongoDB database.
type Mongo struct {
	DB  *mongo.Database
	log *zap.Logger
}

// Connect opens the client, verifies connectivity, and bootstraps the indexes
// the slug-conflict recovery paths rely on.
func Connect(ctx context.Context, uri, dbname string, log *zap.Logger) (*Mongo, error) {
	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := cli.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	m := &Mongo{DB: cli.Database(dbname), log: log}
	m.ensureIndexes(ctx)
	return m, nil
}

func (m *Mongo) ensureIndexes(ctx context.Context) {
	unique := options.Index().SetUnique(true)

	_, _ = m.DB.Collection(CollDestinations).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "name", Value: 1}, {Key: "type", Value: 1}}},
	})
	_, _ = m.DB.Collection(CollProperties).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "name", Value: 1}}},
	})
	_, _ = m.DB.Collection(CollContentProjects).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "targetCollection", Value: 1}, {Key: "targetRecordId", Value: 1}}},
		{Keys: bson.D{{Key: "title", Value: 1}, {Key: "originItinerary", Value: 1}}},
	})
	_, _ = m.DB.Collection(CollDirectives).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "active", Value: 1}}},
	})
}

// Ping reports backend liveness.
func (m *Mongo) Ping(ctx context.Context) error {
	return m.DB.Client().Ping(ctx, nil)
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.DB.Client().Disconnect(ctx)
}

func (m *Mongo) FindOne(ctx context.Context, collection string, filter Filter) (Document, error) {
	var doc bson.M
	err := m.DB.Collection(collection).FindOne(ctx, bson.M(filter)).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("findOne %s: %w", collection, err)
	}
	return exposeID(doc), nil
}

func (m *Mongo) FindMany(ctx context.Context, collection string, filter Filter, limit int64) ([]Document, error) {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := m.DB.Collection(collection).Find(ctx, bson.M(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("findMany %s: %w", collection, err)
	}
	defer cur.Close(ctx)

	var docs []Document
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", collection, err)
		}
		docs = append(docs, exposeID(doc))
	}
	return docs, cur.Err()
}

func (m *Mongo) Create(ctx context.Context, collection string, data Document) (Document, error) {
	res, err := m.DB.Collection(collection).InsertOne(ctx, bson.M(data))
	if err != nil {
		return nil, err
	}
	doc := Document{}
	for k, v := range data {
		doc[k] = v
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc["id"] = oid.Hex()
	} else {
		doc["id"] = fmt.Sprintf("%v", res.InsertedID)
	}
	return doc, nil
}

func (m *Mongo) Update(ctx context.Context, collection string, id string, data Document) (Document, error) {
	filter, err := idFilter(id)
	if err != nil {
		return nil, err
	}
	_, err = m.DB.Collection(collection).UpdateOne(ctx, filter, bson.M{"$set": bson.M(data)})
	if err != nil {
		return nil, fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return m.FindByID(ctx, collection, id)
}

func (m *Mongo) FindByID(ctx context.Context, collection string, id string) (Document, error) {
	filter, err := idFilter(id)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	err = m.DB.Collection(collection).FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("findById %s/%s: %w", collection, id, err)
	}
	return exposeID(doc), nil
}

// idFilter matches records by native object id when the id parses as one,
// otherwise by an explicit "id" field (records imported from a numeric-id
// CMS keep their original ids there).
func idFilter(id string) (bson.M, error) {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": oid}, nil
	}
	if id == "" {
		return nil, fmt.Errorf("empty record id")
	}
	return bson.M{"id": id}, nil
}

// exposeID mirrors the native _id under "id" as a string.
func exposeID(doc bson.M) Document {
	if doc == nil {
		return nil
	}
	if oid, ok := doc["_id"].(primitive.ObjectID); ok {
		if _, present := doc["id"]; !present {
			doc["id"] = oid.Hex()
		}
	}
	return Document(doc)
}
