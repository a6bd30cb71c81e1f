package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore implements DocumentStore on Cloud Firestore.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore wraps an initialized Firestore client.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

type firestoreDocument struct {
	snap *firestore.DocumentSnapshot
}

func (d firestoreDocument) ID() string { return d.snap.Ref.ID }

func (d firestoreDocument) DataTo(dst any) error { return d.snap.DataTo(dst) }

func (s *FirestoreStore) Get(ctx context.Context, collection, id string) (Document, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		return nil, firestoreError(err)
	}
	return firestoreDocument{snap: snap}, nil
}

func (s *FirestoreStore) Set(ctx context.Context, collection, id string, data any) error {
	_, err := s.client.Collection(collection).Doc(id).Set(ctx, data)
	return firestoreError(err)
}

func (s *FirestoreStore) Update(ctx context.Context, collection, id string, updates []Update) error {
	_, err := s.client.Collection(collection).Doc(id).Update(ctx, firestoreUpdates(updates))
	return firestoreError(err)
}

func (s *FirestoreStore) Add(ctx context.Context, collection string, data any) (string, error) {
	ref, _, err := s.client.Collection(collection).Add(ctx, data)
	if err != nil {
		return "", firestoreError(err)
	}
	return ref.ID, nil
}

func (s *FirestoreStore) Query(ctx context.Context, collection, field string, value any) ([]Document, error) {
	snaps, err := s.client.Collection(collection).Where(field, "==", value).Documents(ctx).GetAll()
	if err != nil {
		return nil, firestoreError(err)
	}
	return wrapSnapshots(snaps), nil
}

func (s *FirestoreStore) List(ctx context.Context, collection string) ([]Document, error) {
	snaps, err := s.client.Collection(collection).Documents(ctx).GetAll()
	if err != nil {
		return nil, firestoreError(err)
	}
	return wrapSnapshots(snaps), nil
}

func (s *FirestoreStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.client.Collection(collection).Doc(id).Delete(ctx)
	return firestoreError(err)
}

// BatchDelete removes documents through a BulkWriter and reports the first failure.
func (s *FirestoreStore) BatchDelete(ctx context.Context, collection string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	bw := s.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(ids))
	for _, id := range ids {
		job, err := bw.Delete(s.client.Collection(collection).Doc(id))
		if err != nil {
			bw.End()
			return fmt.Errorf("queue delete %s/%s: %w", collection, id, err)
		}
		jobs = append(jobs, job)
	}
	bw.End()
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return firestoreError(err)
		}
	}
	return nil
}

// RunTransaction maps a NotFound from the commit, such as a document deleted
// mid-transaction, to ErrNotFound like the single-document calls do.
func (s *FirestoreStore) RunTransaction(ctx context.Context, fn TxFunc) error {
	return firestoreError(s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		return fn(ctx, firestoreTx{client: s.client, tx: tx})
	}))
}

func (s *FirestoreStore) Close() error { return s.client.Close() }

type firestoreTx struct {
	client *firestore.Client
	tx     *firestore.Transaction
}

func (t firestoreTx) Get(ctx context.Context, collection, id string) (Document, error) {
	snap, err := t.tx.Get(t.client.Collection(collection).Doc(id))
	if err != nil {
		return nil, firestoreError(err)
	}
	return firestoreDocument{snap: snap}, nil
}

func (t firestoreTx) Set(ctx context.Context, collection, id string, data any) error {
	return t.tx.Set(t.client.Collection(collection).Doc(id), data)
}

func (t firestoreTx) Update(ctx context.Context, collection, id string, updates []Update) error {
	return t.tx.Update(t.client.Collection(collection).Doc(id), firestoreUpdates(updates))
}

func firestoreUpdates(updates []Update) []firestore.Update {
	out := make([]firestore.Update, 0, len(updates))
	for _, u := range updates {
		var value any
		switch t := u.Value.(type) {
		case arrayUnion:
			value = firestore.ArrayUnion(t.elems...)
		case arrayRemove:
			value = firestore.ArrayRemove(t.elems...)
		case increment:
			value = firestore.Increment(t.n)
		default:
			value = u.Value
		}
		out = append(out, firestore.Update{Path: u.Path, Value: value})
	}
	return out
}

func wrapSnapshots(snaps []*firestore.DocumentSnapshot) []Document {
	docs := make([]Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, firestoreDocument{snap: snap})
	}
	return docs
}

func firestoreError(err error) error {
	if err == nil {
		return nil
	}
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	return err
}
