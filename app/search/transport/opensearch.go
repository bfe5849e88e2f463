package transport

import (
	"context"
	"net/http"

	opensearch "github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
	"github.com/opensearch-project/opensearch-go/v2/opensearchutil"
	"github.com/pkg/errors"
)

var _ Interface = (*openSearch)(nil)

// openSearch implements Interface with opensearch-go, for OpenSearch and AWS hosted engines
type openSearch struct {
	client *opensearch.Client
}

func newOpenSearch(addresses []string, creds credentials, rt http.RoundTripper) (Interface, error) {
	if creds.apiKey != "" {
		return nil, errors.New("api key auth is not supported by opensearch client")
	}
	client, err := opensearch.NewClient(opensearch.Config{
		Addresses: addresses,
		Username:  creds.username,
		Password:  creds.password,
		Transport: rt,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create opensearch client")
	}
	return &openSearch{client: client}, nil
}

// NewOpenSearch wraps existing opensearch client
func NewOpenSearch(client *opensearch.Client) Interface {
	return &openSearch{client: client}
}

func osr(r *opensearchapi.Response, err error) (*response, error) {
	if err != nil {
		return nil, err
	}
	return &response{status: r.StatusCode, body: r.Body}, nil
}

// Ping checks if engine available
func (o *openSearch) Ping(ctx context.Context) error {
	return noResult(osr(o.client.Ping(o.client.Ping.WithContext(ctx))))
}

// IndexExists checks if index exists
func (o *openSearch) IndexExists(ctx context.Context, index string) (bool, error) {
	return existsResult(osr(o.client.Indices.Exists([]string{index}, o.client.Indices.Exists.WithContext(ctx))))
}

// CreateIndex creates index, body with mappings and settings is optional
func (o *openSearch) CreateIndex(ctx context.Context, index string, body map[string]interface{}) (Response, error) {
	opts := []func(*opensearchapi.IndicesCreateRequest){o.client.Indices.Create.WithContext(ctx)}
	if len(body) > 0 {
		opts = append(opts, o.client.Indices.Create.WithBody(opensearchutil.NewJSONReader(body)))
	}
	return rawResult(osr(o.client.Indices.Create(index, opts...)))
}

// DeleteIndex deletes index
func (o *openSearch) DeleteIndex(ctx context.Context, index string) error {
	return noResult(osr(o.client.Indices.Delete([]string{index}, o.client.Indices.Delete.WithContext(ctx))))
}

// Search performs search request
func (o *openSearch) Search(ctx context.Context, index string, body map[string]interface{}) (*SearchResponse, error) {
	return searchResult(osr(o.client.Search(
		o.client.Search.WithContext(ctx),
		o.client.Search.WithIndex(index),
		o.client.Search.WithBody(opensearchutil.NewJSONReader(body)),
	)))
}

// Get returns document by id
func (o *openSearch) Get(ctx context.Context, index, id string) (*Hit, error) {
	return getResult(osr(o.client.Get(index, id, o.client.Get.WithContext(ctx))))
}

// Index adds document with engine assigned id
func (o *openSearch) Index(ctx context.Context, index string, doc map[string]interface{}, refresh bool) (Response, error) {
	opts := []func(*opensearchapi.IndexRequest){o.client.Index.WithContext(ctx)}
	if refresh {
		opts = append(opts, o.client.Index.WithRefresh(waitFor))
	}
	return rawResult(osr(o.client.Index(index, opensearchutil.NewJSONReader(doc), opts...)))
}

// Update applies scripted update to document
func (o *openSearch) Update(ctx context.Context, index, id string, body map[string]interface{}, refresh bool) error {
	opts := []func(*opensearchapi.UpdateRequest){o.client.Update.WithContext(ctx)}
	if refresh {
		opts = append(opts, o.client.Update.WithRefresh(waitFor))
	}
	return noResult(osr(o.client.Update(index, id, opensearchutil.NewJSONReader(body), opts...)))
}

// UpdateByQuery applies scripted update to all matched documents
func (o *openSearch) UpdateByQuery(ctx context.Context, index string, body map[string]interface{}, refresh bool) error {
	return noResult(osr(o.client.UpdateByQuery(
		[]string{index},
		o.client.UpdateByQuery.WithContext(ctx),
		o.client.UpdateByQuery.WithBody(opensearchutil.NewJSONReader(body)),
		o.client.UpdateByQuery.WithRefresh(refresh),
	)))
}

// Delete removes document by id
func (o *openSearch) Delete(ctx context.Context, index, id string) error {
	return noResult(osr(o.client.Delete(index, id, o.client.Delete.WithContext(ctx))))
}

// DeleteByQuery removes all matched documents
func (o *openSearch) DeleteByQuery(ctx context.Context, index string, body map[string]interface{}, refresh bool) error {
	return noResult(osr(o.client.DeleteByQuery(
		[]string{index},
		opensearchutil.NewJSONReader(body),
		o.client.DeleteByQuery.WithContext(ctx),
		o.client.DeleteByQuery.WithRefresh(refresh),
	)))
}

// Bulk sends header and document lines in one request
func (o *openSearch) Bulk(ctx context.Context, lines []interface{}, refresh bool) error {
	body, err := ndjson(lines)
	if err != nil {
		return err
	}
	opts := []func(*opensearchapi.BulkRequest){o.client.Bulk.WithContext(ctx)}
	if refresh {
		opts = append(opts, o.client.Bulk.WithRefresh(waitFor))
	}
	return bulkResult(osr(o.client.Bulk(body, opts...)))
}
