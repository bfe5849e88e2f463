package enginetest

import (
	"bytes"
	"io/ioutil"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prepEngine() *Engine {
	e := New()
	e.Put("products", "doc1", map[string]interface{}{"name": "chair", "price": 30, "tags": []string{"wood"}})
	e.Put("products", "doc2", map[string]interface{}{"name": "lamp", "price": 15, "color": "red"})
	e.Put("products", "doc3", map[string]interface{}{"name": "shelf", "price": 45, "tags": []string{"wood", "big"}})
	return e
}

func send(t *testing.T, e *Engine, method, path, body string) (int, string) {
	t.Helper()
	req, err := http.NewRequest(method, "http://engine"+path, bytes.NewBufferString(body))
	require.NoError(t, err)
	resp, err := e.RoundTrip(req)
	require.NoError(t, err)
	data, err := ioutil.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(data)
}

func TestSelectIDs(t *testing.T) {
	docs := prepEngine().Docs("products")
	tbl := []struct {
		body string
		ids  []string
	}{
		{``, []string{"doc1", "doc2", "doc3"}},
		{`{"query":{"match_all":{}}}`, []string{"doc1", "doc2", "doc3"}},
		{`{"query":{"bool":{"must":[{"term":{"name":"lamp"}}]}}}`, []string{"doc2"}},
		{`{"query":{"bool":{"must":[{"term":{"name":{"value":"chair"}}}]}}}`, []string{"doc1"}},
		{`{"query":{"bool":{"must_not":[{"term":{"name":"lamp"}}]}}}`, []string{"doc1", "doc3"}},
		{`{"query":{"bool":{"must":[{"terms":{"name":["lamp","shelf","sofa"]}}]}}}`, []string{"doc2", "doc3"}},
		{`{"query":{"bool":{"must":[{"range":{"price":{"gt":15,"lte":45}}}]}}}`, []string{"doc1", "doc3"}},
		{`{"query":{"bool":{"must":[{"range":{"price":{"gte":15}}}],"must_not":[{"terms":{"name":["shelf"]}}]}}}`,
			[]string{"doc1", "doc2"}},
		{`{"query":{"bool":{"must":[{"term":{"tags":"big"}}]}}}`, []string{"doc3"}},
		{`{"query":{"bool":{"must":[{"term":{"color":"red"}}]}}}`, []string{"doc2"}},
		{`{"query":{"bool":{"should":[{"match":{"name":"SHE"}},{"term":{"price":30}}]}}}`, []string{"doc1", "doc3"}},
		{`{"query":{"bool":{"must":[{"range":{"price":{"gt":"a"}}}]}}}`, []string{}},
		{`{"sort":[{"price":"desc"}]}`, []string{"doc3", "doc1", "doc2"}},
		{`{"sort":[{"name":{"order":"asc"}}]}`, []string{"doc1", "doc2", "doc3"}},
		{`{"sort":[{"color":"asc"}]}`, []string{"doc2", "doc1", "doc3"}},
		{`{"sort":["_score"]}`, []string{"doc1", "doc2", "doc3"}},
	}
	for _, tt := range tbl {
		req, err := parseRequest([]byte(tt.body))
		require.NoError(t, err)
		assert.Equal(t, tt.ids, selectIDs(docs, req), tt.body)
	}
}

func TestPage(t *testing.T) {
	ids := []string{"a", "b", "c", "d"}
	one, two, ten := 1, 2, 10
	assert.Equal(t, []string{"b", "c"}, page(ids, request{From: &one, Size: &two}))
	assert.Equal(t, []string{"a", "b", "c", "d"}, page(ids, request{}))
	assert.Equal(t, []string{}, page(ids, request{From: &ten}))
	assert.Equal(t, []string{"b", "c", "d"}, page(ids, request{From: &one, Size: &ten}))
}

func TestEngine_ByQuery(t *testing.T) {
	e := prepEngine()

	code, body := send(t, e, "POST", "/products/_search", `{"query":{"bool":{"must":[{"range":{"price":{"gt":20}}}]}},"size":1}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"total":{"value":2}`)
	assert.Contains(t, body, `"_id":"doc1"`)
	assert.NotContains(t, body, `"_id":"doc3"`)

	code, body = send(t, e, "POST", "/products/_update_by_query",
		`{"query":{"bool":{"must":[{"terms":{"name":["chair","lamp"]}}]}},"script":{"params":{"sale":true}}}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, `{"updated":2}`, body)
	assert.Equal(t, true, e.Docs("products")["doc1"]["sale"])
	assert.Nil(t, e.Docs("products")["doc3"]["sale"], "not matched document untouched")

	code, body = send(t, e, "POST", "/products/_delete_by_query", `{"query":{"bool":{"must":[{"term":{"sale":true}}]}}}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, `{"deleted":2}`, body)
	assert.Len(t, e.Docs("products"), 1)
	assert.Contains(t, e.Docs("products"), "doc3")

	code, _ = send(t, e, "POST", "/products/_delete_by_query", `{"query":`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestEngine_UpdatePaths(t *testing.T) {
	e := prepEngine()
	script := `{"script":{"source":"ctx._source.price = params['price'];","params":{"price":20}}}`

	code, _ := send(t, e, "POST", "/products/_doc/doc2/_update", script)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 20.0, e.Docs("products")["doc2"]["price"])

	code, _ = send(t, e, "POST", "/products/_update/doc1", script)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 20.0, e.Docs("products")["doc1"]["price"])

	code, _ = send(t, e, "POST", "/products/_doc/nope/_update", script)
	assert.Equal(t, http.StatusNotFound, code)
}
