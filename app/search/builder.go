// Package search provides chainable query and indexing builder over the search engine.
// Clause methods accumulate the request, terminal methods (Get, First, Find, Index,
// BulkInsert, Update, UpdateOrCreate, Delete, MassUpdate, MassDelete, BuildIndex,
// DeleteIndex) send it and always leave the builder empty and unbound.
//
// Builder is not safe for concurrent use, make one per goroutine.
package search

import (
	"context"
	"time"

	"github.com/go-pkgz/lcw"
	"github.com/go-pkgz/lgr"
	"github.com/pkg/errors"

	"github.com/rerootagency/esquery/app/search/index"
	"github.com/rerootagency/esquery/app/search/query"
	"github.com/rerootagency/esquery/app/search/transport"
)

// Document is the source of the engine document
type Document map[string]interface{}

// Builder accumulates query clauses for the bound index and runs operations with transport
type Builder struct {
	tr        transport.Interface
	l         lgr.L
	chunkSize int
	registry  *index.Registry
	cacheTTL  time.Duration
	indices   lcw.LoadingCache // known existing indices, nil if disabled

	desc index.Descriptor
	body *query.Body
	err  error // first error of chained calls, returned by the terminal call
}

// New makes builder on top of transport
func New(tr transport.Interface, opts ...Option) (*Builder, error) {
	if tr == nil {
		return nil, errors.New("transport is not set")
	}
	res := &Builder{
		tr:        tr,
		l:         lgr.Func(lgr.Printf),
		chunkSize: DefaultChunkSize,
		body:      query.NewBody(),
	}
	for _, opt := range opts {
		opt(res)
	}
	if res.cacheTTL > 0 {
		cache, err := lcw.NewExpirableCache(lcw.TTL(res.cacheTTL), lcw.MaxKeys(1000))
		if err != nil {
			return nil, errors.Wrap(err, "can't make index cache")
		}
		res.indices = cache
	}
	return res, nil
}

// Client returns underlying transport
func (b *Builder) Client() transport.Interface {
	return b.tr
}

// Close stops index cache
func (b *Builder) Close() error {
	if b.indices == nil {
		return nil
	}
	return b.indices.Close()
}

// For binds index of the descriptor
func (b *Builder) For(d index.Descriptor) *Builder {
	if err := index.Validate(d); err != nil {
		b.fail(err)
		return b
	}
	b.desc = d
	return b
}

// ForName binds index registered with the name
func (b *Builder) ForName(name string) *Builder {
	if b.registry == nil {
		b.fail(errors.Wrapf(ErrConfiguration, "no registry to lookup %q", name))
		return b
	}
	d, err := b.registry.Lookup(name)
	if err != nil {
		b.fail(err)
		return b
	}
	return b.For(d)
}

// Where adds equality filter
func (b *Builder) Where(field string, value interface{}) *Builder {
	return b.WhereOp(field, query.Eq, value)
}

// WhereOp adds filter comparing field with value
func (b *Builder) WhereOp(field string, op query.Operator, value interface{}) *Builder {
	if err := b.body.Where(field, op, value); err != nil {
		b.fail(err)
	}
	return b
}

// WhereIn adds filter matching any of values, or none of them if match is false
func (b *Builder) WhereIn(field string, values []interface{}, match bool) *Builder {
	b.body.WhereIn(field, values, match)
	return b
}

// Limit sets page size and offset
func (b *Builder) Limit(count, skip int) *Builder {
	b.body.Limit(count, skip)
	return b
}

// SortBy sets sort field. Direction "desc" sorts descending, anything else ascending.
func (b *Builder) SortBy(field, direction string) *Builder {
	b.body.SortBy(field, direction)
	return b
}

// Search replaces accumulated body with fn result. fn gets a copy of the body.
func (b *Builder) Search(fn func(body map[string]interface{}) map[string]interface{}) *Builder {
	if fn == nil {
		b.fail(errors.Wrap(ErrInvalidPayload, "search func is nil"))
		return b
	}
	b.body.Replace(fn(b.body.Map()))
	return b
}

// SearchWith replaces accumulated body with bound descriptor's SearchBody for data
func (b *Builder) SearchWith(data interface{}) *Builder {
	if b.desc == nil {
		b.fail(ErrNoIndexBound)
		return b
	}
	b.body.Replace(b.desc.SearchBody(b.body.Map(), data))
	return b
}

// Body returns copy of the accumulated request body
func (b *Builder) Body() map[string]interface{} {
	return b.body.Map()
}

// Err returns error of chained calls, if any
func (b *Builder) Err() error {
	return b.err
}

// Get returns documents matching accumulated query, each with "_id" set.
// Transport error returned as *TransportError.
func (b *Builder) Get(ctx context.Context) ([]Document, error) {
	defer b.reset()
	if b.err != nil {
		return nil, b.err
	}
	return b.get(ctx)
}

// First returns the first matching document or nil
func (b *Builder) First(ctx context.Context) (Document, error) {
	defer b.reset()
	if b.err != nil {
		return nil, b.err
	}
	return b.first(ctx)
}

// Find returns document by id with "id" set. Any transport failure, not found
// included, results in nil document.
func (b *Builder) Find(ctx context.Context, d index.Descriptor, id string) (Document, error) {
	defer b.reset()
	if b.err != nil {
		return nil, b.err
	}
	if err := index.Validate(d); err != nil {
		return nil, err
	}
	hit, err := b.tr.Get(ctx, d.IndexName(), id)
	if err != nil {
		b.l.Logf("[DEBUG] can't find %s in %s, %v", id, d.IndexName(), err)
		return nil, nil
	}
	return document(hit.Source, "id", hit.ID), nil
}

func (b *Builder) get(ctx context.Context) ([]Document, error) {
	if b.desc == nil {
		return nil, ErrNoIndexBound
	}
	b.body.DefaultSort()
	name := b.desc.IndexName()
	resp, err := b.tr.Search(ctx, name, b.body.Map())
	if err != nil {
		return nil, &TransportError{Op: "search", Index: name, Err: err}
	}
	res := make([]Document, 0, len(resp.Hits.Hits))
	for _, h := range resp.Hits.Hits {
		res = append(res, document(h.Source, "_id", h.ID))
	}
	return res, nil
}

func (b *Builder) first(ctx context.Context) (Document, error) {
	b.body.Limit(1, 0)
	docs, err := b.get(ctx)
	if err != nil || len(docs) == 0 {
		return nil, err
	}
	return docs[len(docs)-1], nil
}

// fail keeps the first error of chained calls
func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// reset unbinds index and drops accumulated clauses and errors
func (b *Builder) reset() {
	b.desc = nil
	b.err = nil
	b.body.Reset()
}

func document(src map[string]interface{}, idKey, id string) Document {
	res := make(Document, len(src)+1)
	for k, v := range src {
		res[k] = v
	}
	res[idKey] = id
	return res
}
