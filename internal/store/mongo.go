package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements DocumentStore on MongoDB. Document ids are stored as string _id values.
// Transactions require a replica set deployment.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoStore uses the named database of an initialized client.
func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{client: client, db: client.Database(database)}
}

type mongoDocument struct {
	id  string
	raw bson.Raw
}

func (d mongoDocument) ID() string { return d.id }

func (d mongoDocument) DataTo(dst any) error { return bson.Unmarshal(d.raw, dst) }

func (s *MongoStore) Get(ctx context.Context, collection, id string) (Document, error) {
	raw, err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return mongoDocument{id: id, raw: raw}, nil
}

func (s *MongoStore) Set(ctx context.Context, collection, id string, data any) error {
	_, err := s.db.Collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, data, options.Replace().SetUpsert(true))
	return err
}

func (s *MongoStore) Update(ctx context.Context, collection, id string, updates []Update) error {
	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, mongoUpdate(updates))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Add(ctx context.Context, collection string, data any) (string, error) {
	id := primitive.NewObjectID().Hex()
	if err := s.Set(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (s *MongoStore) Query(ctx context.Context, collection, field string, value any) ([]Document, error) {
	return s.find(ctx, collection, bson.M{field: value})
}

func (s *MongoStore) List(ctx context.Context, collection string) ([]Document, error) {
	return s.find(ctx, collection, bson.M{})
}

func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (s *MongoStore) BatchDelete(ctx context.Context, collection string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.Collection(collection).DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return err
}

// RunTransaction runs fn inside a session transaction. The session context is passed
// to fn so that every store call joins the transaction.
func (s *MongoStore) RunTransaction(ctx context.Context, fn TxFunc) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, s)
	})
	return err
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

func (s *MongoStore) find(ctx context.Context, collection string, filter bson.M) ([]Document, error) {
	cursor, err := s.db.Collection(collection).Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []Document
	for cursor.Next(ctx) {
		raw := make(bson.Raw, len(cursor.Current))
		copy(raw, cursor.Current)
		id, ok := raw.Lookup("_id").StringValueOK()
		if !ok {
			continue
		}
		docs = append(docs, mongoDocument{id: id, raw: raw})
	}
	return docs, cursor.Err()
}

func mongoUpdate(updates []Update) bson.M {
	set := bson.M{}
	addToSet := bson.M{}
	pull := bson.M{}
	inc := bson.M{}
	for _, u := range updates {
		switch t := u.Value.(type) {
		case arrayUnion:
			addToSet[u.Path] = bson.M{"$each": t.elems}
		case arrayRemove:
			pull[u.Path] = bson.M{"$in": t.elems}
		case increment:
			inc[u.Path] = t.n
		default:
			set[u.Path] = u.Value
		}
	}
	out := bson.M{}
	if len(set) > 0 {
		out["$set"] = set
	}
	if len(addToSet) > 0 {
		out["$addToSet"] = addToSet
	}
	if len(pull) > 0 {
		out["$pull"] = pull
	}
	if len(inc) > 0 {
		out["$inc"] = inc
	}
	return out
}
