package search

import (
	"context"
	"sort"

	"github.com/go-pkgz/lcw"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/rerootagency/esquery/app/search/index"
	"github.com/rerootagency/esquery/app/search/query"
	"github.com/rerootagency/esquery/app/search/transport"
)

// BuildIndex creates index with descriptor's mappings and settings.
// Returns nil response if index already exists.
func (b *Builder) BuildIndex(ctx context.Context, d index.Descriptor) (transport.Response, error) {
	defer b.reset()
	if b.err != nil {
		return nil, b.err
	}
	if err := index.Validate(d); err != nil {
		return nil, err
	}
	return b.buildIndex(ctx, d)
}

// DeleteIndex drops index of the descriptor
func (b *Builder) DeleteIndex(ctx context.Context, d index.Descriptor) (Result, error) {
	defer b.reset()
	if b.err != nil {
		return Result{}, b.err
	}
	if err := index.Validate(d); err != nil {
		return Result{}, err
	}
	name := d.IndexName()
	if b.indices != nil {
		b.indices.Invalidate(func(key string) bool { return key == name })
	}
	return b.result("delete-index", name, b.tr.DeleteIndex(ctx, name)), nil
}

// Index adds document, creating index first if needed
func (b *Builder) Index(ctx context.Context, d index.Descriptor, doc Document, refresh bool) (transport.Response, error) {
	defer b.reset()
	if b.err != nil {
		return nil, b.err
	}
	if err := index.Validate(d); err != nil {
		return nil, err
	}
	if _, err := b.buildIndex(ctx, d); err != nil {
		return nil, err
	}
	res, err := b.tr.Index(ctx, d.IndexName(), doc, refresh)
	if err != nil {
		return nil, &TransportError{Op: "index", Index: d.IndexName(), Err: err}
	}
	return res, nil
}

// BulkInsert adds documents in chunks, one bulk request per chunk, sequentially.
// Errors of all chunks, failed items included, collected in Result.
func (b *Builder) BulkInsert(ctx context.Context, d index.Descriptor, docs []Document, refresh bool) (Result, error) {
	defer b.reset()
	if b.err != nil {
		return Result{}, b.err
	}
	if err := index.Validate(d); err != nil {
		return Result{}, err
	}
	if _, err := b.buildIndex(ctx, d); err != nil {
		return Result{Err: err}, nil
	}

	name := d.IndexName()
	header := map[string]interface{}{"index": map[string]interface{}{"_index": name}}
	errs := new(multierror.Error)
	chunk, sent := 0, 0

	flush := func(lines []interface{}) {
		chunk++
		if err := ctx.Err(); err != nil {
			errs = multierror.Append(errs, errors.Wrapf(err, "chunk %d not sent", chunk))
			return
		}
		if err := b.tr.Bulk(ctx, lines, refresh); err != nil {
			errs = multierror.Append(errs, &TransportError{Op: "bulk", Index: name, Err: errors.Wrapf(err, "chunk %d", chunk)})
			return
		}
		sent += len(lines) / 2
	}

	lines := make([]interface{}, 0, 2*minInt(len(docs), b.chunkSize))
	for i, doc := range docs {
		lines = append(lines, header, map[string]interface{}(doc))
		if (i+1)%b.chunkSize == 0 {
			flush(lines)
			lines = make([]interface{}, 0, 2*minInt(len(docs)-i-1, b.chunkSize))
		}
	}
	if len(lines) > 0 {
		flush(lines)
	}

	if err := errs.ErrorOrNil(); err != nil {
		b.l.Logf("[WARN] bulk insert to %s, %d of %d documents sent in %d chunks, %v", name, sent, len(docs), chunk, err)
		return Result{Err: err}, nil
	}
	b.l.Logf("[DEBUG] bulk insert to %s, %d documents in %d chunks", name, len(docs), chunk)
	return Result{}, nil
}

// Update sets patch fields of the document
func (b *Builder) Update(ctx context.Context, d index.Descriptor, id string, patch map[string]interface{}, refresh bool) (Result, error) {
	defer b.reset()
	if b.err != nil {
		return Result{}, b.err
	}
	if err := index.Validate(d); err != nil {
		return Result{}, err
	}
	script, err := query.NewScript(patch)
	if err != nil {
		return Result{}, err
	}
	return b.update(ctx, d.IndexName(), id, script, refresh), nil
}

// UpdateOrCreate updates the first document matching all terms with patch,
// or adds new document of terms and patch, patch wins on the same field.
func (b *Builder) UpdateOrCreate(ctx context.Context, d index.Descriptor, terms, patch map[string]interface{}, refresh bool) (Result, error) {
	defer b.reset()
	if b.err != nil {
		return Result{}, b.err
	}
	if err := index.Validate(d); err != nil {
		return Result{}, err
	}
	script, err := query.NewScript(patch)
	if err != nil {
		return Result{}, err
	}
	name := d.IndexName()
	if _, err = b.buildIndex(ctx, d); err != nil {
		return b.result("update-or-create", name, err), nil
	}

	b.reset()
	b.desc = d
	fields := make([]string, 0, len(terms))
	for k := range terms {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	for _, k := range fields {
		if err = b.body.Where(k, query.Eq, terms[k]); err != nil {
			return Result{}, err
		}
	}
	found, err := b.first(ctx)
	b.reset()
	if err != nil {
		return b.result("update-or-create", name, err), nil
	}

	if found != nil {
		id, _ := found["_id"].(string)
		return b.update(ctx, name, id, script, refresh), nil
	}

	doc := make(map[string]interface{}, len(terms)+len(patch))
	for k, v := range terms {
		doc[k] = v
	}
	for k, v := range patch {
		doc[k] = v
	}
	_, err = b.tr.Index(ctx, name, doc, refresh)
	return b.result("index", name, err), nil
}

// Delete removes document by id
func (b *Builder) Delete(ctx context.Context, d index.Descriptor, id string) (Result, error) {
	defer b.reset()
	if b.err != nil {
		return Result{}, b.err
	}
	if d == nil {
		return Result{}, errors.Wrap(ErrConfiguration, "descriptor is nil")
	}
	return b.result("delete", d.IndexName(), b.tr.Delete(ctx, d.IndexName(), id)), nil
}

// MassUpdate sets patch fields of all documents matching accumulated query
func (b *Builder) MassUpdate(ctx context.Context, patch map[string]interface{}, refresh bool) (Result, error) {
	defer b.reset()
	if b.err != nil {
		return Result{}, b.err
	}
	if b.desc == nil {
		return Result{}, ErrNoIndexBound
	}
	script, err := query.NewScript(patch)
	if err != nil {
		return Result{}, err
	}
	if script.Empty() {
		return Result{}, errors.Wrap(ErrInvalidPayload, "nothing to update")
	}
	name, body := b.desc.IndexName(), b.filter()
	body["script"] = script.Map()
	b.reset()
	return b.result("update-by-query", name, b.tr.UpdateByQuery(ctx, name, body, refresh)), nil
}

// MassDelete removes all documents matching accumulated query
func (b *Builder) MassDelete(ctx context.Context, refresh bool) (Result, error) {
	defer b.reset()
	if b.err != nil {
		return Result{}, b.err
	}
	if b.desc == nil {
		return Result{}, ErrNoIndexBound
	}
	name, body := b.desc.IndexName(), b.filter()
	b.reset()
	return b.result("delete-by-query", name, b.tr.DeleteByQuery(ctx, name, body, refresh)), nil
}

func (b *Builder) buildIndex(ctx context.Context, d index.Descriptor) (transport.Response, error) {
	name := d.IndexName()
	if b.indices != nil {
		if _, ok := b.indices.Peek(name); ok {
			return nil, nil
		}
	}

	exists, err := b.tr.IndexExists(ctx, name)
	if err != nil {
		return nil, &TransportError{Op: "exists", Index: name, Err: err}
	}
	if exists {
		b.known(name)
		return nil, nil
	}

	body := map[string]interface{}{}
	if mappings := d.Mappings(); len(mappings) > 0 {
		body["mappings"] = map[string]interface{}{"properties": mappings}
	}
	if settings := d.Settings(); len(settings) > 0 {
		body["settings"] = settings
	}
	res, err := b.tr.CreateIndex(ctx, name, body)
	if err != nil {
		return nil, &TransportError{Op: "create-index", Index: name, Err: err}
	}
	b.l.Logf("[INFO] index %s created", name)
	b.known(name)
	return res, nil
}

func (b *Builder) known(name string) {
	if b.indices == nil {
		return
	}
	if _, err := b.indices.Get(name, func() (lcw.Value, error) { return true, nil }); err != nil {
		b.l.Logf("[WARN] can't cache index %s, %v", name, err)
	}
}

func (b *Builder) update(ctx context.Context, name, id string, script *query.Script, refresh bool) Result {
	err := b.tr.Update(ctx, name, id, map[string]interface{}{"script": script.Map()}, refresh)
	return b.result("update", name, err)
}

// filter returns query part of accumulated body for by-query calls, sort and
// pagination are not accepted there. Without query all documents match.
func (b *Builder) filter() map[string]interface{} {
	q, ok := b.body.Map()["query"]
	if !ok {
		q = map[string]interface{}{"match_all": map[string]interface{}{}}
	}
	return map[string]interface{}{"query": q}
}

// result wraps transport error and logs it
func (b *Builder) result(op, name string, err error) Result {
	if err == nil {
		return Result{}
	}
	var te *TransportError
	if !errors.As(err, &te) {
		err = &TransportError{Op: op, Index: name, Err: err}
	}
	b.l.Logf("[WARN] %v", err)
	return Result{Err: err}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
