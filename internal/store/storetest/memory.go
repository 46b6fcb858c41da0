// Package storetest provides an in-memory store.Store used by the pipeline
// unit tests. It records every write so tests can assert dry-run purity and
// exact create payloads, and supports fault injection per operation.
package storetest

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/atlastrail/cascade/internal/store"
)

type Call struct {
	Collection string
	ID         string
	Data       store.Document
}

type Memory struct {
	mu   sync.Mutex
	seq  int
	docs map[string][]store.Document

	Creates []Call
	Updates []Call

	// Fail maps "op:collection" (op in findOne, findMany, findById, create,
	// update) to the error that operation should return.
	Fail map[string]error
}

func NewMemory() *Memory {
	return &Memory{
		docs: map[string][]store.Document{},
		Fail: map[string]error{},
	}
}

// Seed inserts a document without recording it as a create call.
func (m *Memory) Seed(collection string, doc store.Document) store.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	if store.ID(doc) == "" {
		m.seq++
		doc["id"] = fmt.Sprintf("%s-%d", collection, m.seq)
	}
	m.docs[collection] = append(m.docs[collection], doc)
	return doc
}

func (m *Memory) failure(op, collection string) error {
	return m.Fail[op+":"+collection]
}

func matches(doc store.Document, filter store.Filter) bool {
	for k, want := range filter {
		if !reflect.DeepEqual(doc[k], want) {
			return false
		}
	}
	return true
}

func (m *Memory) FindOne(ctx context.Context, collection string, filter store.Filter) (store.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("findOne", collection); err != nil {
		return nil, err
	}
	for _, doc := range m.docs[collection] {
		if matches(doc, filter) {
			return doc, nil
		}
	}
	return nil, nil
}

func (m *Memory) FindMany(ctx context.Context, collection string, filter store.Filter, limit int64) ([]store.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("findMany", collection); err != nil {
		return nil, err
	}
	var out []store.Document
	for _, doc := range m.docs[collection] {
		if matches(doc, filter) {
			out = append(out, doc)
			if limit > 0 && int64(len(out)) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (m *Memory) Create(ctx context.Context, collection string, data store.Document) (store.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Creates = append(m.Creates, Call{Collection: collection, Data: data})
	if err := m.failure("create", collection); err != nil {
		return nil, err
	}
	doc := store.Document{}
	for k, v := range data {
		doc[k] = v
	}
	m.seq++
	doc["id"] = fmt.Sprintf("%s-%d", collection, m.seq)
	m.docs[collection] = append(m.docs[collection], doc)
	return doc, nil
}

func (m *Memory) Update(ctx context.Context, collection string, id string, data store.Document) (store.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Updates = append(m.Updates, Call{Collection: collection, ID: id, Data: data})
	if err := m.failure("update", collection); err != nil {
		return nil, err
	}
	for _, doc := range m.docs[collection] {
		if store.ID(doc) == id {
			for k, v := range data {
				doc[k] = v
			}
			return doc, nil
		}
	}
	return nil, fmt.Errorf("update %s/%s: not found", collection, id)
}

func (m *Memory) FindByID(ctx context.Context, collection string, id string) (store.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("findById", collection); err != nil {
		return nil, err
	}
	for _, doc := range m.docs[collection] {
		if store.ID(doc) == id {
			return doc, nil
		}
	}
	return nil, nil
}

// WriteCount is the total number of create and update calls observed.
func (m *Memory) WriteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Creates) + len(m.Updates)
}
