package store

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process DocumentStore. Documents are kept as JSON-shaped maps,
// so models round-trip through their json tags.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]map[string]map[string]any
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]map[string]any)}
}

type memoryDocument struct {
	id   string
	data []byte
}

func (d memoryDocument) ID() string { return d.id }

func (d memoryDocument) DataTo(dst any) error { return json.Unmarshal(d.data, dst) }

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(collection, id)
}

func (s *MemoryStore) Set(ctx context.Context, collection, id string, data any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set(collection, id, data)
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, updates []Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.update(collection, id, updates)
}

func (s *MemoryStore) Add(ctx context.Context, collection string, data any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	if err := s.set(collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (s *MemoryStore) Query(ctx context.Context, collection, field string, value any) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	want, err := normalize(value)
	if err != nil {
		return nil, err
	}
	var docs []Document
	for _, id := range s.sortedIDs(collection) {
		fields := s.collections[collection][id]
		got, ok := lookup(fields, field)
		if !ok || !reflect.DeepEqual(got, want) {
			continue
		}
		doc, err := s.get(collection, id)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *MemoryStore) List(ctx context.Context, collection string) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var docs []Document
	for _, id := range s.sortedIDs(collection) {
		doc, err := s.get(collection, id)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections[collection], id)
	return nil
}

func (s *MemoryStore) BatchDelete(ctx context.Context, collection string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.collections[collection], id)
	}
	return nil
}

// RunTransaction holds the store lock for the duration of fn and restores the
// previous contents when fn fails.
func (s *MemoryStore) RunTransaction(ctx context.Context, fn TxFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := deepCopy(s.collections)
	if err != nil {
		return err
	}
	if err := fn(ctx, memoryTx{s: s}); err != nil {
		s.collections = snapshot
		return err
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }

type memoryTx struct{ s *MemoryStore }

func (t memoryTx) Get(ctx context.Context, collection, id string) (Document, error) {
	return t.s.get(collection, id)
}

func (t memoryTx) Set(ctx context.Context, collection, id string, data any) error {
	return t.s.set(collection, id, data)
}

func (t memoryTx) Update(ctx context.Context, collection, id string, updates []Update) error {
	return t.s.update(collection, id, updates)
}

func (s *MemoryStore) get(collection, id string) (Document, error) {
	fields, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	return memoryDocument{id: id, data: data}, nil
}

func (s *MemoryStore) set(collection, id string, data any) error {
	v, err := normalize(data)
	if err != nil {
		return err
	}
	fields, ok := v.(map[string]any)
	if !ok {
		return fmt.Errorf("document data must be an object, got %T", data)
	}
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]map[string]any)
	}
	s.collections[collection][id] = fields
	return nil
}

func (s *MemoryStore) update(collection, id string, updates []Update) error {
	fields, ok := s.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	next, err := deepCopy(fields)
	if err != nil {
		return err
	}
	for _, u := range updates {
		if err := apply(next, u); err != nil {
			return err
		}
	}
	s.collections[collection][id] = next
	return nil
}

func (s *MemoryStore) sortedIDs(collection string) []string {
	ids := make([]string, 0, len(s.collections[collection]))
	for id := range s.collections[collection] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func apply(fields map[string]any, u Update) error {
	parts := strings.Split(u.Path, ".")
	parent := fields
	for _, p := range parts[:len(parts)-1] {
		child, ok := parent[p].(map[string]any)
		if !ok {
			child = make(map[string]any)
			parent[p] = child
		}
		parent = child
	}
	key := parts[len(parts)-1]

	switch t := u.Value.(type) {
	case arrayUnion:
		current, _ := parent[key].([]any)
		for _, e := range t.elems {
			ne, err := normalize(e)
			if err != nil {
				return err
			}
			if !containsValue(current, ne) {
				current = append(current, ne)
			}
		}
		if current == nil {
			current = []any{}
		}
		parent[key] = current
	case arrayRemove:
		current, _ := parent[key].([]any)
		kept := make([]any, 0, len(current))
		for _, existing := range current {
			remove := false
			for _, e := range t.elems {
				ne, err := normalize(e)
				if err != nil {
					return err
				}
				if reflect.DeepEqual(existing, ne) {
					remove = true
					break
				}
			}
			if !remove {
				kept = append(kept, existing)
			}
		}
		parent[key] = kept
	case increment:
		current, _ := parent[key].(float64)
		parent[key] = current + float64(t.n)
	default:
		v, err := normalize(u.Value)
		if err != nil {
			return err
		}
		parent[key] = v
	}
	return nil
}

func lookup(fields map[string]any, path string) (any, bool) {
	var cur any = fields
	for _, p := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func containsValue(list []any, v any) bool {
	for _, e := range list {
		if reflect.DeepEqual(e, v) {
			return true
		}
	}
	return false
}

func normalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func deepCopy[T any](v T) (T, error) {
	var out T
	raw, err := json.Marshal(v)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(raw, &out)
	return out, err
}
