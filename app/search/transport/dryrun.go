package transport

import (
	"context"
	"encoding/json"

	"github.com/go-pkgz/lgr"
)

// DryRun logs requests instead of sending them. Indices never exist,
// searches find nothing and writes report "dry-run" result.
type DryRun struct {
	l lgr.L
}

var _ Interface = (*DryRun)(nil)

// NewDryRun makes dry-run transport, logging with l or with lgr.Printf if l is nil
func NewDryRun(l lgr.L) *DryRun {
	if l == nil {
		l = lgr.Func(lgr.Printf)
	}
	return &DryRun{l: l}
}

func (d *DryRun) log(op, index string, body interface{}) {
	if body == nil {
		d.l.Logf("[INFO] dry-run %s %s", op, index)
		return
	}
	data, err := json.Marshal(body)
	if err != nil {
		d.l.Logf("[WARN] dry-run %s %s, can't encode body: %v", op, index, err)
		return
	}
	d.l.Logf("[INFO] dry-run %s %s %s", op, index, string(data))
}

func dryResult() Response {
	return Response{"result": "dry-run"}
}

// Ping always succeeds
func (d *DryRun) Ping(context.Context) error {
	d.log("ping", "", nil)
	return nil
}

// IndexExists reports no index
func (d *DryRun) IndexExists(_ context.Context, index string) (bool, error) {
	d.log("exists", index, nil)
	return false, nil
}

// CreateIndex logs creation request
func (d *DryRun) CreateIndex(_ context.Context, index string, body map[string]interface{}) (Response, error) {
	d.log("create-index", index, body)
	return dryResult(), nil
}

// DeleteIndex logs deletion request
func (d *DryRun) DeleteIndex(_ context.Context, index string) error {
	d.log("delete-index", index, nil)
	return nil
}

// Search logs request and finds nothing
func (d *DryRun) Search(_ context.Context, index string, body map[string]interface{}) (*SearchResponse, error) {
	d.log("search", index, body)
	return &SearchResponse{}, nil
}

// Get logs request and returns ErrNotFound
func (d *DryRun) Get(_ context.Context, index, id string) (*Hit, error) {
	d.log("get", index+"/"+id, nil)
	return nil, ErrNotFound
}

// Index logs document
func (d *DryRun) Index(_ context.Context, index string, doc map[string]interface{}, _ bool) (Response, error) {
	d.log("index", index, doc)
	return dryResult(), nil
}

// Update logs update request
func (d *DryRun) Update(_ context.Context, index, id string, body map[string]interface{}, _ bool) error {
	d.log("update", index+"/"+id, body)
	return nil
}

// UpdateByQuery logs update request
func (d *DryRun) UpdateByQuery(_ context.Context, index string, body map[string]interface{}, _ bool) error {
	d.log("update-by-query", index, body)
	return nil
}

// Delete logs deletion request
func (d *DryRun) Delete(_ context.Context, index, id string) error {
	d.log("delete", index+"/"+id, nil)
	return nil
}

// DeleteByQuery logs deletion request
func (d *DryRun) DeleteByQuery(_ context.Context, index string, body map[string]interface{}, _ bool) error {
	d.log("delete-by-query", index, body)
	return nil
}

// Bulk logs number of lines only
func (d *DryRun) Bulk(_ context.Context, lines []interface{}, _ bool) error {
	d.l.Logf("[INFO] dry-run bulk, %d lines", len(lines))
	return nil
}
