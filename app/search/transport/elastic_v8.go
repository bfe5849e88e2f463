package transport

import (
	"context"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/pkg/errors"
)

var _ Interface = (*elasticV8)(nil)

// elasticV8 implements Interface with go-elasticsearch v8
type elasticV8 struct {
	client *elasticsearch.Client
}

func newElasticV8(addresses []string, creds credentials, rt http.RoundTripper) (Interface, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: addresses,
		Username:  creds.username,
		Password:  creds.password,
		APIKey:    creds.apiKey,
		Transport: rt,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create elasticsearch v8 client")
	}
	return &elasticV8{client: client}, nil
}

// NewElasticV8 wraps existing v8 client
func NewElasticV8(client *elasticsearch.Client) Interface {
	return &elasticV8{client: client}
}

func v8(r *esapi.Response, err error) (*response, error) {
	if err != nil {
		return nil, err
	}
	return &response{status: r.StatusCode, body: r.Body}, nil
}

// Ping checks if engine available
func (e *elasticV8) Ping(ctx context.Context) error {
	return noResult(v8(e.client.Ping(e.client.Ping.WithContext(ctx))))
}

// IndexExists checks if index exists
func (e *elasticV8) IndexExists(ctx context.Context, index string) (bool, error) {
	return existsResult(v8(e.client.Indices.Exists([]string{index}, e.client.Indices.Exists.WithContext(ctx))))
}

// CreateIndex creates index, body with mappings and settings is optional
func (e *elasticV8) CreateIndex(ctx context.Context, index string, body map[string]interface{}) (Response, error) {
	opts := []func(*esapi.IndicesCreateRequest){e.client.Indices.Create.WithContext(ctx)}
	if len(body) > 0 {
		opts = append(opts, e.client.Indices.Create.WithBody(esutil.NewJSONReader(body)))
	}
	return rawResult(v8(e.client.Indices.Create(index, opts...)))
}

// DeleteIndex deletes index
func (e *elasticV8) DeleteIndex(ctx context.Context, index string) error {
	return noResult(v8(e.client.Indices.Delete([]string{index}, e.client.Indices.Delete.WithContext(ctx))))
}

// Search performs search request
func (e *elasticV8) Search(ctx context.Context, index string, body map[string]interface{}) (*SearchResponse, error) {
	return searchResult(v8(e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(index),
		e.client.Search.WithBody(esutil.NewJSONReader(body)),
	)))
}

// Get returns document by id
func (e *elasticV8) Get(ctx context.Context, index, id string) (*Hit, error) {
	return getResult(v8(e.client.Get(index, id, e.client.Get.WithContext(ctx))))
}

// Index adds document with engine assigned id
func (e *elasticV8) Index(ctx context.Context, index string, doc map[string]interface{}, refresh bool) (Response, error) {
	opts := []func(*esapi.IndexRequest){e.client.Index.WithContext(ctx)}
	if refresh {
		opts = append(opts, e.client.Index.WithRefresh(waitFor))
	}
	return rawResult(v8(e.client.Index(index, esutil.NewJSONReader(doc), opts...)))
}

// Update applies scripted update to document
func (e *elasticV8) Update(ctx context.Context, index, id string, body map[string]interface{}, refresh bool) error {
	opts := []func(*esapi.UpdateRequest){e.client.Update.WithContext(ctx)}
	if refresh {
		opts = append(opts, e.client.Update.WithRefresh(waitFor))
	}
	return noResult(v8(e.client.Update(index, id, esutil.NewJSONReader(body), opts...)))
}

// UpdateByQuery applies scripted update to all matched documents
func (e *elasticV8) UpdateByQuery(ctx context.Context, index string, body map[string]interface{}, refresh bool) error {
	return noResult(v8(e.client.UpdateByQuery(
		[]string{index},
		e.client.UpdateByQuery.WithContext(ctx),
		e.client.UpdateByQuery.WithBody(esutil.NewJSONReader(body)),
		e.client.UpdateByQuery.WithRefresh(refresh),
	)))
}

// Delete removes document by id
func (e *elasticV8) Delete(ctx context.Context, index, id string) error {
	return noResult(v8(e.client.Delete(index, id, e.client.Delete.WithContext(ctx))))
}

// DeleteByQuery removes all matched documents
func (e *elasticV8) DeleteByQuery(ctx context.Context, index string, body map[string]interface{}, refresh bool) error {
	return noResult(v8(e.client.DeleteByQuery(
		[]string{index},
		esutil.NewJSONReader(body),
		e.client.DeleteByQuery.WithContext(ctx),
		e.client.DeleteByQuery.WithRefresh(refresh),
	)))
}

// Bulk sends header and document lines in one request
func (e *elasticV8) Bulk(ctx context.Context, lines []interface{}, refresh bool) error {
	body, err := ndjson(lines)
	if err != nil {
		return err
	}
	opts := []func(*esapi.BulkRequest){e.client.Bulk.WithContext(ctx)}
	if refresh {
		opts = append(opts, e.client.Bulk.WithRefresh(waitFor))
	}
	return bulkResult(v8(e.client.Bulk(body, opts...)))
}
