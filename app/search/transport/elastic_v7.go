package transport

import (
	"context"
	"net/http"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"
	"github.com/elastic/go-elasticsearch/v7/esutil"
	"github.com/pkg/errors"
)

var _ Interface = (*elasticV7)(nil)

// elasticV7 implements Interface with go-elasticsearch v7
type elasticV7 struct {
	client *elasticsearch.Client
}

func newElasticV7(addresses []string, creds credentials, rt http.RoundTripper) (Interface, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: addresses,
		Username:  creds.username,
		Password:  creds.password,
		APIKey:    creds.apiKey,
		Transport: rt,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create elasticsearch v7 client")
	}
	return &elasticV7{client: client}, nil
}

// NewElasticV7 wraps existing v7 client
func NewElasticV7(client *elasticsearch.Client) Interface {
	return &elasticV7{client: client}
}

func v7(r *esapi.Response, err error) (*response, error) {
	if err != nil {
		return nil, err
	}
	return &response{status: r.StatusCode, body: r.Body}, nil
}

// Ping checks if engine available
func (e *elasticV7) Ping(ctx context.Context) error {
	return noResult(v7(e.client.Ping(e.client.Ping.WithContext(ctx))))
}

// IndexExists checks if index exists
func (e *elasticV7) IndexExists(ctx context.Context, index string) (bool, error) {
	return existsResult(v7(e.client.Indices.Exists([]string{index}, e.client.Indices.Exists.WithContext(ctx))))
}

// CreateIndex creates index, body with mappings and settings is optional
func (e *elasticV7) CreateIndex(ctx context.Context, index string, body map[string]interface{}) (Response, error) {
	opts := []func(*esapi.IndicesCreateRequest){e.client.Indices.Create.WithContext(ctx)}
	if len(body) > 0 {
		opts = append(opts, e.client.Indices.Create.WithBody(esutil.NewJSONReader(body)))
	}
	return rawResult(v7(e.client.Indices.Create(index, opts...)))
}

// DeleteIndex deletes index
func (e *elasticV7) DeleteIndex(ctx context.Context, index string) error {
	return noResult(v7(e.client.Indices.Delete([]string{index}, e.client.Indices.Delete.WithContext(ctx))))
}

// Search performs search request
func (e *elasticV7) Search(ctx context.Context, index string, body map[string]interface{}) (*SearchResponse, error) {
	return searchResult(v7(e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(index),
		e.client.Search.WithBody(esutil.NewJSONReader(body)),
	)))
}

// Get returns document by id
func (e *elasticV7) Get(ctx context.Context, index, id string) (*Hit, error) {
	return getResult(v7(e.client.Get(index, id, e.client.Get.WithContext(ctx))))
}

// Index adds document with engine assigned id
func (e *elasticV7) Index(ctx context.Context, index string, doc map[string]interface{}, refresh bool) (Response, error) {
	opts := []func(*esapi.IndexRequest){e.client.Index.WithContext(ctx)}
	if refresh {
		opts = append(opts, e.client.Index.WithRefresh(waitFor))
	}
	return rawResult(v7(e.client.Index(index, esutil.NewJSONReader(doc), opts...)))
}

// Update applies scripted update to document
func (e *elasticV7) Update(ctx context.Context, index, id string, body map[string]interface{}, refresh bool) error {
	opts := []func(*esapi.UpdateRequest){e.client.Update.WithContext(ctx)}
	if refresh {
		opts = append(opts, e.client.Update.WithRefresh(waitFor))
	}
	return noResult(v7(e.client.Update(index, id, esutil.NewJSONReader(body), opts...)))
}

// UpdateByQuery applies scripted update to all matched documents
func (e *elasticV7) UpdateByQuery(ctx context.Context, index string, body map[string]interface{}, refresh bool) error {
	return noResult(v7(e.client.UpdateByQuery(
		[]string{index},
		e.client.UpdateByQuery.WithContext(ctx),
		e.client.UpdateByQuery.WithBody(esutil.NewJSONReader(body)),
		e.client.UpdateByQuery.WithRefresh(refresh),
	)))
}

// Delete removes document by id
func (e *elasticV7) Delete(ctx context.Context, index, id string) error {
	return noResult(v7(e.client.Delete(index, id, e.client.Delete.WithContext(ctx))))
}

// DeleteByQuery removes all matched documents
func (e *elasticV7) DeleteByQuery(ctx context.Context, index string, body map[string]interface{}, refresh bool) error {
	return noResult(v7(e.client.DeleteByQuery(
		[]string{index},
		esutil.NewJSONReader(body),
		e.client.DeleteByQuery.WithContext(ctx),
		e.client.DeleteByQuery.WithRefresh(refresh),
	)))
}

// Bulk sends header and document lines in one request
func (e *elasticV7) Bulk(ctx context.Context, lines []interface{}, refresh bool) error {
	body, err := ndjson(lines)
	if err != nil {
		return err
	}
	opts := []func(*esapi.BulkRequest){e.client.Bulk.WithContext(ctx)}
	if refresh {
		opts = append(opts, e.client.Bulk.WithRefresh(waitFor))
	}
	return bulkResult(v7(e.client.Bulk(body, opts...)))
}
