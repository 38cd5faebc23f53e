package recordsRepo

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used for local runs and tests. It
// enforces unique indexes the same way the Mongo backend does.
type MemoryStore struct {
	mu     sync.RWMutex
	colls  map[string]*memoryCollection
	newID  func() string
	closed bool
}

type memoryCollection struct {
	order  []string
	docs   map[string]map[string]any
	unique map[string]bool
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		colls: make(map[string]*memoryCollection),
		newID: func() string { return uuid.New().String() },
	}
}

// Close makes every later call fail with ErrUnavailable.
func (s *MemoryStore) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *MemoryStore) collection(name string) *memoryCollection {
	c, ok := s.colls[name]
	if !ok {
		c = &memoryCollection{docs: make(map[string]map[string]any), unique: make(map[string]bool)}
		s.colls[name] = c
	}
	return c
}

func (s *MemoryStore) List(ctx context.Context, collection string, filter Filter, out any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return err
	}

	matched := make([]map[string]any, 0)
	if c, ok := s.colls[collection]; ok {
		for _, id := range c.order {
			if doc := c.docs[id]; matches(doc, filter) {
				matched = append(matched, doc)
			}
		}
	}
	return decodeJSON(matched, out)
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string, out any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return err
	}

	c, ok := s.colls[collection]
	if !ok {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	doc, ok := c.docs[id]
	if !ok {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	return decodeJSON(doc, out)
}

func (s *MemoryStore) Create(ctx context.Context, collection string, doc any) (string, error) {
	m, err := toDocument(doc)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return "", err
	}

	id, _ := m["id"].(string)
	if id == "" {
		id = s.newID()
		m["id"] = id
	}
	c := s.collection(collection)
	if _, exists := c.docs[id]; exists {
		return "", fmt.Errorf("%s/%s: %w", collection, id, ErrDuplicate)
	}
	if err := c.checkUnique(id, m); err != nil {
		return "", fmt.Errorf("%s: %w", collection, err)
	}
	c.docs[id] = m
	c.order = append(c.order, id)
	return id, nil
}

func (s *MemoryStore) Patch(ctx context.Context, collection, id string, patch Patch) error {
	return s.patch(ctx, collection, id, "", "", patch, false)
}

func (s *MemoryStore) PatchIf(ctx context.Context, collection, id, field, expected string, patch Patch) error {
	return s.patch(ctx, collection, id, field, expected, patch, true)
}

func (s *MemoryStore) patch(ctx context.Context, collection, id, field, expected string, patch Patch, conditional bool) error {
	p, err := toDocument(patch)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}

	c, ok := s.colls[collection]
	if !ok {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	current, ok := c.docs[id]
	if !ok {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	if conditional {
		if v, _ := current[field].(string); v != expected {
			return fmt.Errorf("%s/%s %s!=%q: %w", collection, id, field, expected, ErrPreconditionFailed)
		}
	}

	updated := make(map[string]any, len(current)+len(p))
	for k, v := range current {
		updated[k] = v
	}
	for k, v := range p {
		if k == "id" {
			continue
		}
		updated[k] = v
	}
	if err := c.checkUnique(id, updated); err != nil {
		return fmt.Errorf("%s: %w", collection, err)
	}
	c.docs[id] = updated
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}

	c, ok := s.colls[collection]
	if !ok {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	if _, ok := c.docs[id]; !ok {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	delete(c.docs, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) EnsureUniqueIndex(ctx context.Context, collection, field string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}
	s.collection(collection).unique[field] = true
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.check(ctx)
}

func (s *MemoryStore) check(ctx context.Context) error {
	if s.closed {
		return fmt.Errorf("memory store closed: %w", ErrUnavailable)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%v: %w", err, ErrUnavailable)
	}
	return nil
}

// checkUnique rejects doc when another record shares a unique field value.
func (c *memoryCollection) checkUnique(id string, doc map[string]any) error {
	for field := range c.unique {
		v, ok := doc[field].(string)
		if !ok {
			continue
		}
		for otherID, other := range c.docs {
			if otherID == id {
				continue
			}
			if ov, ok := other[field].(string); ok && ov == v {
				return fmt.Errorf("%s=%q: %w", field, v, ErrDuplicate)
			}
		}
	}
	return nil
}

func matches(doc map[string]any, filter Filter) bool {
	for field, values := range filter {
		v, ok := doc[field].(string)
		if !ok {
			return false
		}
		found := false
		for _, want := range values {
			if v == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// toDocument converts a model value into its stored field map.
func toDocument(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	m := make(map[string]any)
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return m, nil
}

func decodeJSON(v any, out any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	return nil
}
