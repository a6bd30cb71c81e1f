package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// Document is a stored document snapshot.
type Document interface {
	ID() string
	DataTo(dst any) error
}

// Update sets the field at Path (dot separated for nested fields) to Value.
// Value may be a transform returned by ArrayUnion, ArrayRemove or Increment.
type Update struct {
	Path  string
	Value any
}

// Reader reads single documents by id.
type Reader interface {
	Get(ctx context.Context, collection, id string) (Document, error)
}

// Writer mutates single documents by id.
type Writer interface {
	// Set replaces the document, creating it when absent.
	Set(ctx context.Context, collection, id string, data any) error
	// Update applies field updates to an existing document. Missing documents yield ErrNotFound.
	Update(ctx context.Context, collection, id string, updates []Update) error
}

// ReadWriter is the surface available inside a transaction.
type ReadWriter interface {
	Reader
	Writer
}

// TxFunc is run by RunTransaction. Reads must happen before writes.
type TxFunc func(ctx context.Context, tx ReadWriter) error

// DocumentStore is the persistence contract the application consumes.
// Every single-document operation is atomic; operations spanning documents are not,
// unless performed inside RunTransaction.
type DocumentStore interface {
	ReadWriter
	Add(ctx context.Context, collection string, data any) (string, error)
	Query(ctx context.Context, collection, field string, value any) ([]Document, error)
	List(ctx context.Context, collection string) ([]Document, error)
	Delete(ctx context.Context, collection, id string) error
	BatchDelete(ctx context.Context, collection string, ids []string) error
	RunTransaction(ctx context.Context, fn TxFunc) error
	Close() error
}

type arrayUnion struct{ elems []any }

type arrayRemove struct{ elems []any }

type increment struct{ n int64 }

// ArrayUnion adds elems to an array field, skipping elements already present.
func ArrayUnion(elems ...any) any { return arrayUnion{elems: elems} }

// ArrayRemove removes every occurrence of elems from an array field.
func ArrayRemove(elems ...any) any { return arrayRemove{elems: elems} }

// Increment adds n to a numeric field.
func Increment(n int64) any { return increment{n: n} }

// Identifiable is implemented by models that receive their id from the store.
type Identifiable[T any] interface {
	*T
	SetID(id string)
}

// Decode converts a document into a model and assigns its id.
func Decode[T any, PT Identifiable[T]](doc Document) (*T, error) {
	var v T
	if err := doc.DataTo(&v); err != nil {
		return nil, err
	}
	PT(&v).SetID(doc.ID())
	return &v, nil
}

// Load reads and decodes a single document.
func Load[T any, PT Identifiable[T]](ctx context.Context, r Reader, collection, id string) (*T, error) {
	doc, err := r.Get(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	return Decode[T, PT](doc)
}

// DecodeAll decodes a slice of documents.
func DecodeAll[T any, PT Identifiable[T]](docs []Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		v, err := Decode[T, PT](doc)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}
