package transport

import (
	"context"
	"time"

	"github.com/go-pkgz/lgr"
)

// Logged proxies requests to Interface and logs each call with its duration
type Logged struct {
	Interface
	l lgr.L
}

// WithLogging decorates transport with Logged
func WithLogging(t Interface, l lgr.L) *Logged {
	if l == nil {
		l = lgr.Func(lgr.Printf)
	}
	return &Logged{Interface: t, l: l}
}

func (t *Logged) done(op, index string, st time.Time, err error) {
	if err != nil {
		t.l.Logf("[DEBUG] %s %s failed in %v, %v", op, index, time.Since(st), err)
		return
	}
	t.l.Logf("[DEBUG] %s %s in %v", op, index, time.Since(st))
}

// Ping engine
func (t *Logged) Ping(ctx context.Context) error {
	st := time.Now()
	err := t.Interface.Ping(ctx)
	t.done("ping", "", st, err)
	return err
}

// IndexExists checks index
func (t *Logged) IndexExists(ctx context.Context, index string) (ok bool, err error) {
	st := time.Now()
	ok, err = t.Interface.IndexExists(ctx, index)
	t.done("exists", index, st, err)
	return ok, err
}

// CreateIndex creates index
func (t *Logged) CreateIndex(ctx context.Context, index string, body map[string]interface{}) (Response, error) {
	st := time.Now()
	res, err := t.Interface.CreateIndex(ctx, index, body)
	t.done("create-index", index, st, err)
	return res, err
}

// DeleteIndex deletes index
func (t *Logged) DeleteIndex(ctx context.Context, index string) error {
	st := time.Now()
	err := t.Interface.DeleteIndex(ctx, index)
	t.done("delete-index", index, st, err)
	return err
}

// Search documents
func (t *Logged) Search(ctx context.Context, index string, body map[string]interface{}) (*SearchResponse, error) {
	st := time.Now()
	res, err := t.Interface.Search(ctx, index, body)
	t.done("search", index, st, err)
	return res, err
}

// Get document
func (t *Logged) Get(ctx context.Context, index, id string) (*Hit, error) {
	st := time.Now()
	res, err := t.Interface.Get(ctx, index, id)
	t.done("get", index+"/"+id, st, err)
	return res, err
}

// Index document
func (t *Logged) Index(ctx context.Context, index string, doc map[string]interface{}, refresh bool) (Response, error) {
	st := time.Now()
	res, err := t.Interface.Index(ctx, index, doc, refresh)
	t.done("index", index, st, err)
	return res, err
}

// Update document
func (t *Logged) Update(ctx context.Context, index, id string, body map[string]interface{}, refresh bool) error {
	st := time.Now()
	err := t.Interface.Update(ctx, index, id, body, refresh)
	t.done("update", index+"/"+id, st, err)
	return err
}

// UpdateByQuery updates matched documents
func (t *Logged) UpdateByQuery(ctx context.Context, index string, body map[string]interface{}, refresh bool) error {
	st := time.Now()
	err := t.Interface.UpdateByQuery(ctx, index, body, refresh)
	t.done("update-by-query", index, st, err)
	return err
}

// Delete document
func (t *Logged) Delete(ctx context.Context, index, id string) error {
	st := time.Now()
	err := t.Interface.Delete(ctx, index, id)
	t.done("delete", index+"/"+id, st, err)
	return err
}

// DeleteByQuery deletes matched documents
func (t *Logged) DeleteByQuery(ctx context.Context, index string, body map[string]interface{}, refresh bool) error {
	st := time.Now()
	err := t.Interface.DeleteByQuery(ctx, index, body, refresh)
	t.done("delete-by-query", index, st, err)
	return err
}

// Bulk sends lines
func (t *Logged) Bulk(ctx context.Context, lines []interface{}, refresh bool) error {
	st := time.Now()
	err := t.Interface.Bulk(ctx, lines, refresh)
	t.done("bulk", "", st, err)
	return err
}
