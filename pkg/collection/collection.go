// Package collection binds a schema, its field indexes and a storage adapter
// into a queryable set of records.
package collection

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/josefjadrny/go-idb/pkg/domain"
	"github.com/josefjadrny/go-idb/pkg/indexing"
	"github.com/josefjadrny/go-idb/pkg/logging"
	"github.com/josefjadrny/go-idb/pkg/validation"
)

// Collection is a named set of records conforming to one schema. Calls on one
// instance are serialized.
type Collection struct {
	mu      sync.Mutex
	name    string
	schema  domain.Schema
	adapter domain.StorageAdapter
	store   store

	newID   func() string
	logger  logging.Logger
	metrics *Metrics
}

// New validates schema, reconciles it with what the adapter has persisted
// under name and returns the collection. Persisted data written under a
// different schema is discarded.
func New(name string, schema domain.Schema, adapter domain.StorageAdapter, opts ...Option) (*Collection, error) {
	if err := validation.ValidateSchema(schema); err != nil {
		return nil, err
	}

	c := &Collection{
		name:    name,
		schema:  schema.Copy(),
		adapter: adapter,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.Discard()
	}
	if c.metrics == nil {
		c.metrics = NewMetrics()
	}

	if err := c.reconcileSchema(); err != nil {
		return nil, err
	}

	st, err := newStore(c.name, c.schema, c.adapter, c.logger)
	if err != nil {
		return nil, err
	}
	c.store = st

	return c, nil
}

// reconcileSchema resets both artifacts when the persisted schema signature is
// missing or differs from the current one.
func (c *Collection) reconcileSchema() error {
	current := c.schema.Signature()

	meta, err := c.adapter.ReadMeta(c.name)
	switch {
	case err == nil:
		diff := cmp.Diff(meta.Schema, current)
		if diff == "" {
			return nil
		}
		c.logger.WithField("collection", c.name).Warningf("schema changed, discarding stored data (-stored +current):\n%s", diff)
		c.metrics.SchemaResets.WithLabelValues(c.name).Inc()
	case errors.Is(err, domain.ErrArtifactNotFound):
		c.logger.Debugf("initializing storage of collection '%s'", c.name)
	default:
		return fmt.Errorf("failed to read meta of collection %s: %w", c.name, err)
	}

	if err := c.adapter.WriteData(c.name, map[string]domain.Record{}); err != nil {
		return fmt.Errorf("failed to reset data of collection %s: %w", c.name, err)
	}
	if err := c.adapter.WriteMeta(c.name, &domain.Meta{Schema: current}); err != nil {
		return fmt.Errorf("failed to reset meta of collection %s: %w", c.name, err)
	}
	return nil
}

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// Schema returns a copy of the collection schema.
func (c *Collection) Schema() domain.Schema { return c.schema.Copy() }

// Add validates rec, stores it under a new identifier and returns the stored
// document.
func (c *Collection) Add(rec domain.Record) (domain.Document, error) {
	var doc domain.Document
	err := c.withLock("add", func() error {
		prepared, err := c.prepare(rec)
		if err != nil {
			return err
		}

		st, err := c.store.load()
		if err != nil {
			return err
		}

		id := c.insert(st, prepared)
		if err := c.commit(st); err != nil {
			return err
		}
		doc = domain.NewDocument(id, prepared)
		return nil
	})
	return doc, err
}

// AddMany validates every record before storing any of them and commits once.
func (c *Collection) AddMany(recs []domain.Record) ([]domain.Document, error) {
	var docs []domain.Document
	err := c.withLock("add_many", func() error {
		var result *multierror.Error
		prepared := make([]domain.Record, len(recs))
		for i, rec := range recs {
			p, err := c.prepare(rec)
			if err != nil {
				result = multierror.Append(result, fmt.Errorf("document %d: %w", i, err))
				continue
			}
			prepared[i] = p
		}
		if err := result.ErrorOrNil(); err != nil {
			return err
		}

		st, err := c.store.load()
		if err != nil {
			return err
		}

		ids := make([]string, len(prepared))
		for i, p := range prepared {
			ids[i] = c.insert(st, p)
		}
		if err := c.commit(st); err != nil {
			return err
		}

		docs = make([]domain.Document, len(prepared))
		for i, p := range prepared {
			docs[i] = domain.NewDocument(ids[i], p)
		}
		return nil
	})
	return docs, err
}

// Get returns the document stored under id. An unknown id is reported through
// the boolean, not as an error.
func (c *Collection) Get(id string) (domain.Document, bool, error) {
	var (
		doc   domain.Document
		found bool
	)
	err := c.withLock("get", func() error {
		st, err := c.store.load()
		if err != nil {
			return err
		}
		if rec, ok := st.data[id]; ok {
			doc, found = domain.NewDocument(id, rec), true
		}
		return nil
	})
	return doc, found, err
}

// All returns every document, ordered and paged by opts.
func (c *Collection) All(opts *domain.FindOptions) ([]domain.Document, error) {
	var docs []domain.Document
	err := c.withLock("all", func() error {
		if err := validateOptions(opts); err != nil {
			return err
		}
		st, err := c.store.load()
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(st.data))
		for id := range st.data {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		docs = c.materialize(st, ids, opts)
		return nil
	})
	return docs, err
}

// Find returns the documents matching every field pattern of query. Each
// queried field must be indexed. An empty query behaves like All.
func (c *Collection) Find(query map[string]string, opts *domain.FindOptions) ([]domain.Document, error) {
	if len(query) == 0 {
		return c.All(opts)
	}

	var docs []domain.Document
	err := c.withLock("find", func() error {
		if err := validateOptions(opts); err != nil {
			return err
		}

		fields, queries, err := c.parseQuery(query)
		if err != nil {
			return err
		}

		st, err := c.store.load()
		if err != nil {
			return err
		}

		var ids []string
		for i, field := range fields {
			idx, ok := st.indexes.GetIndex(field)
			if !ok {
				return fmt.Errorf("%w: %q", domain.ErrFieldNotIndexed, field)
			}
			matched := idx.Find(queries[i])
			if i == 0 {
				ids = matched
			} else {
				ids = indexing.IntersectIDs(ids, matched)
			}
			if len(ids) == 0 {
				break
			}
		}

		docs = c.materialize(st, ids, opts)
		return nil
	})
	return docs, err
}

// Update merges partial into the document stored under id and returns the
// result.
func (c *Collection) Update(id string, partial domain.Record) (domain.Document, error) {
	var doc domain.Document
	err := c.withLock("update", func() error {
		st, err := c.store.load()
		if err != nil {
			return err
		}
		old, ok := st.data[id]
		if !ok {
			return fmt.Errorf("%w: %s in collection %s", domain.ErrNotFound, id, c.name)
		}
		if err := validation.ValidateRecord(partial, c.schema, true); err != nil {
			return err
		}

		if missed := st.indexes.UpdateDocument(id, old, partial); len(missed) > 0 {
			c.logger.Debugf("collection '%s': no index entry for document %s on fields %v", c.name, id, missed)
		}

		merged := old.Copy()
		for k, v := range partial {
			merged[k] = domain.CopyValue(v)
		}
		st.data[id] = merged

		if err := c.commit(st); err != nil {
			return err
		}
		doc = domain.NewDocument(id, merged)
		return nil
	})
	return doc, err
}

// Remove deletes the document stored under id.
func (c *Collection) Remove(id string) error {
	return c.withLock("remove", func() error {
		st, err := c.store.load()
		if err != nil {
			return err
		}
		old, ok := st.data[id]
		if !ok {
			return fmt.Errorf("%w: %s in collection %s", domain.ErrNotFound, id, c.name)
		}

		if missed := st.indexes.UnindexDocument(id, old); len(missed) > 0 {
			c.logger.Debugf("collection '%s': no index entry for document %s on fields %v", c.name, id, missed)
		}
		delete(st.data, id)

		return c.commit(st)
	})
}

// Clear removes every document.
func (c *Collection) Clear() error {
	return c.withLock("clear", func() error {
		st, err := c.store.load()
		if err != nil {
			return err
		}
		for id := range st.data {
			delete(st.data, id)
		}
		st.indexes.Clear()
		return c.commit(st)
	})
}

// Count returns the number of stored documents.
func (c *Collection) Count() (int, error) {
	var n int
	err := c.withLock("count", func() error {
		st, err := c.store.load()
		if err != nil {
			return err
		}
		n = len(st.data)
		return nil
	})
	return n, err
}

// withLock runs fn under the collection lock and records the outcome.
func (c *Collection) withLock(op string, fn func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.metrics.OperationsTotal.WithLabelValues(c.name, op).Inc()
	err := fn()
	if err != nil {
		c.metrics.ErrorsTotal.WithLabelValues(c.name, op).Inc()
	}
	return err
}

// prepare applies defaults to a copy of rec and validates it as a complete
// record.
func (c *Collection) prepare(rec domain.Record) (domain.Record, error) {
	prepared := rec.Copy()
	if prepared == nil {
		prepared = make(domain.Record)
	}
	for _, field := range c.schema.Fields() {
		def := c.schema[field]
		if _, ok := prepared[field]; !ok && def.HasDefault() {
			prepared[field] = domain.CopyValue(def.Default)
		}
	}
	if err := validation.ValidateRecord(prepared, c.schema, false); err != nil {
		return nil, err
	}
	return prepared, nil
}

func (c *Collection) insert(st *snapshot, rec domain.Record) string {
	id := c.newID()
	st.data[id] = rec
	st.indexes.IndexDocument(id, rec)
	return id
}

func (c *Collection) commit(st *snapshot) error {
	if err := c.store.commit(st); err != nil {
		return err
	}
	c.metrics.Documents.WithLabelValues(c.name).Set(float64(len(st.data)))
	return nil
}

// parseQuery resolves every pattern against its field definition, in field
// name order, before any state is read.
func (c *Collection) parseQuery(query map[string]string) ([]string, []indexing.Query, error) {
	fields := make([]string, 0, len(query))
	for field := range query {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	queries := make([]indexing.Query, len(fields))
	for i, field := range fields {
		def, ok := c.schema[field]
		if !ok || !def.Index {
			return nil, nil, fmt.Errorf("%w: %q", domain.ErrFieldNotIndexed, field)
		}
		q, err := indexing.ParseQuery(def.Type, query[field], def.CaseInsensitive())
		if err != nil {
			return nil, nil, fmt.Errorf("field %q: %w", field, err)
		}
		queries[i] = q
	}
	return fields, queries, nil
}
