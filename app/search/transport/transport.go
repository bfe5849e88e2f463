// Package transport talks to the search engine. Interface is implemented
// for go-elasticsearch v7 and v8, for opensearch-go and as a dry-run stub.
package transport

import (
	"context"
	"errors"
)

// ErrNotFound returned by Get for missing document or index
var ErrNotFound = errors.New("not found")

// Interface is the raw search engine client used by the query builder
type Interface interface {
	Ping(ctx context.Context) error
	IndexExists(ctx context.Context, index string) (bool, error)
	CreateIndex(ctx context.Context, index string, body map[string]interface{}) (Response, error)
	DeleteIndex(ctx context.Context, index string) error
	Search(ctx context.Context, index string, body map[string]interface{}) (*SearchResponse, error)
	Get(ctx context.Context, index, id string) (*Hit, error)
	Index(ctx context.Context, index string, doc map[string]interface{}, refresh bool) (Response, error)
	Update(ctx context.Context, index, id string, body map[string]interface{}, refresh bool) error
	UpdateByQuery(ctx context.Context, index string, body map[string]interface{}, refresh bool) error
	Delete(ctx context.Context, index, id string) error
	DeleteByQuery(ctx context.Context, index string, body map[string]interface{}, refresh bool) error
	Bulk(ctx context.Context, lines []interface{}, refresh bool) error
}

// Response is the decoded engine response
type Response map[string]interface{}

// Hit is a single document returned by search or get
type Hit struct {
	ID     string                 `json:"_id"`
	Index  string                 `json:"_index"`
	Found  bool                   `json:"found"`
	Source map[string]interface{} `json:"_source"`
}

// SearchResponse is the part of search response used by the builder
type SearchResponse struct {
	Took int `json:"took"`
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []Hit `json:"hits"`
	} `json:"hits"`
}

// refresh value for single document and bulk writes
const waitFor = "wait_for"
