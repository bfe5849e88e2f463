// Package enginetest provides in-memory search engine speaking enough of
// elasticsearch http api to test clients without the real server.
package enginetest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"
	"sync"
)

// Request is a recorded call to the engine
type Request struct {
	Method string
	Path   string
	Query  string
	Body   []byte
}

// Engine implements http.RoundTripper. Search and by-query calls evaluate term, terms,
// range and match clauses of bool queries, scripted updates assign script params to source.
type Engine struct {
	FailField string // bulk item with this field set to true is rejected

	mu       sync.Mutex
	indices  map[string]map[string]map[string]interface{}
	requests []Request
	seq      int
}

// New makes empty engine
func New() *Engine {
	return &Engine{FailField: "fail", indices: map[string]map[string]map[string]interface{}{}}
}

// Requests returns all recorded requests except product check
func (e *Engine) Requests() []Request {
	e.mu.Lock()
	defer e.mu.Unlock()
	res := make([]Request, len(e.requests))
	copy(res, e.requests)
	return res
}

// Last returns the last recorded request matching method and path suffix
func (e *Engine) Last(method, suffix string) (Request, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := len(e.requests) - 1; i >= 0; i-- {
		r := e.requests[i]
		if r.Method == method && strings.HasSuffix(r.Path, suffix) {
			return r, true
		}
	}
	return Request{}, false
}

// Docs returns copy of index documents by id
func (e *Engine) Docs(index string) map[string]map[string]interface{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	res := map[string]map[string]interface{}{}
	for id, d := range e.indices[index] {
		res[id] = d
	}
	return res
}

// HasIndex checks if index was created
func (e *Engine) HasIndex(index string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.indices[index]
	return ok
}

// Put stores document directly, creating index if needed
func (e *Engine) Put(index, id string, doc map[string]interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.indices[index]; !ok {
		e.indices[index] = map[string]map[string]interface{}{}
	}
	// stored as decoded json, the way documents sent over http are
	var stored map[string]interface{}
	data, _ := json.Marshal(doc)
	_ = json.Unmarshal(data, &stored)
	e.indices[index][id] = stored
}

// RoundTrip handles request in memory
func (e *Engine) RoundTrip(r *http.Request) (*http.Response, error) {
	var body []byte
	if r.Body != nil {
		var err error
		if body, err = ioutil.ReadAll(r.Body); err != nil {
			return nil, err
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if parts[0] == "" {
		parts = nil
	}
	if len(parts) == 0 {
		// ping and product check
		return reply(http.StatusOK, `{"version":{"number":"7.10.2","build_flavor":"default","distribution":"opensearch"},`+
			`"tagline":"You Know, for Search"}`), nil
	}
	e.requests = append(e.requests, Request{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: body})

	if parts[0] == "_bulk" {
		return e.bulk(body), nil
	}

	index := parts[0]
	docs, exists := e.indices[index]
	if len(parts) == 1 {
		switch r.Method {
		case http.MethodHead:
			if exists {
				return reply(http.StatusOK, ""), nil
			}
			return reply(http.StatusNotFound, ""), nil
		case http.MethodPut:
			if exists {
				return reply(http.StatusBadRequest, `{"error":{"type":"resource_already_exists_exception"},"status":400}`), nil
			}
			e.indices[index] = map[string]map[string]interface{}{}
			return reply(http.StatusOK, fmt.Sprintf(`{"acknowledged":true,"index":%q}`, index)), nil
		case http.MethodDelete:
			if !exists {
				return notFound(index), nil
			}
			delete(e.indices, index)
			return reply(http.StatusOK, `{"acknowledged":true}`), nil
		}
		return reply(http.StatusMethodNotAllowed, `{}`), nil
	}

	if !exists {
		return notFound(index), nil
	}

	switch {
	case parts[1] == "_search":
		req, err := parseRequest(body)
		if err != nil {
			return reply(http.StatusBadRequest, `{"error":"bad json"}`), nil
		}
		return e.search(index, docs, req), nil
	case parts[1] == "_doc" && len(parts) == 2:
		var doc map[string]interface{}
		if err := json.Unmarshal(body, &doc); err != nil {
			return reply(http.StatusBadRequest, `{"error":"bad json"}`), nil
		}
		e.seq++
		id := fmt.Sprintf("doc%d", e.seq)
		docs[id] = doc
		return reply(http.StatusCreated, fmt.Sprintf(`{"_index":%q,"_id":%q,"result":"created"}`, index, id)), nil
	case parts[1] == "_doc" && len(parts) == 3:
		id := parts[2]
		doc, found := docs[id]
		switch r.Method {
		case http.MethodGet:
			if !found {
				return reply(http.StatusNotFound, fmt.Sprintf(`{"_index":%q,"_id":%q,"found":false}`, index, id)), nil
			}
			return reply(http.StatusOK, hit(index, id, doc, true)), nil
		case http.MethodDelete:
			if !found {
				return reply(http.StatusNotFound, `{"result":"not_found"}`), nil
			}
			delete(docs, id)
			return reply(http.StatusOK, `{"result":"deleted"}`), nil
		}
	case parts[1] == "_update" && len(parts) == 3, parts[1] == "_doc" && len(parts) == 4 && parts[3] == "_update":
		// v8 and opensearch use /index/_update/id, v7 client sends /index/_doc/id/_update
		id := parts[2]
		doc, found := docs[id]
		if !found {
			return reply(http.StatusNotFound, `{"error":{"type":"document_missing_exception"},"status":404}`), nil
		}
		applyScript(doc, body)
		return reply(http.StatusOK, `{"result":"updated"}`), nil
	case parts[1] == "_update_by_query":
		req, err := parseRequest(body)
		if err != nil {
			return reply(http.StatusBadRequest, `{"error":"bad json"}`), nil
		}
		ids := selectIDs(docs, req)
		for _, id := range ids {
			applyScript(docs[id], body)
		}
		return reply(http.StatusOK, fmt.Sprintf(`{"updated":%d}`, len(ids))), nil
	case parts[1] == "_delete_by_query":
		req, err := parseRequest(body)
		if err != nil {
			return reply(http.StatusBadRequest, `{"error":"bad json"}`), nil
		}
		ids := selectIDs(docs, req)
		for _, id := range ids {
			delete(docs, id)
		}
		return reply(http.StatusOK, fmt.Sprintf(`{"deleted":%d}`, len(ids))), nil
	}
	return reply(http.StatusBadRequest, `{"error":"unsupported request"}`), nil
}

func (e *Engine) search(index string, docs map[string]map[string]interface{}, req request) *http.Response {
	ids := selectIDs(docs, req)
	total := len(ids)
	ids = page(ids, req)
	hits := make([]string, 0, len(ids))
	for _, id := range ids {
		hits = append(hits, hit(index, id, docs[id], false))
	}
	return reply(http.StatusOK, fmt.Sprintf(`{"took":1,"hits":{"total":{"value":%d},"hits":[%s]}}`,
		total, strings.Join(hits, ",")))
}

func (e *Engine) bulk(body []byte) *http.Response {
	type item struct {
		ID     string      `json:"_id"`
		Status int         `json:"status"`
		Error  interface{} `json:"error,omitempty"`
	}
	var items []map[string]item
	hasErrors := false

	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	var header map[string]map[string]string
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if header == nil {
			if err := json.Unmarshal(line, &header); err != nil {
				return reply(http.StatusBadRequest, `{"error":"bad bulk header"}`)
			}
			continue
		}
		index := header["index"]["_index"]
		header = nil
		var doc map[string]interface{}
		if err := json.Unmarshal(line, &doc); err != nil {
			return reply(http.StatusBadRequest, `{"error":"bad bulk document"}`)
		}
		e.seq++
		id := fmt.Sprintf("doc%d", e.seq)
		if fail, ok := doc[e.FailField].(bool); ok && fail {
			hasErrors = true
			items = append(items, map[string]item{"index": {ID: id, Status: http.StatusBadRequest,
				Error: map[string]string{"type": "mapper_parsing_exception", "reason": "failed to parse"}}})
			continue
		}
		if _, ok := e.indices[index]; !ok {
			e.indices[index] = map[string]map[string]interface{}{}
		}
		e.indices[index][id] = doc
		items = append(items, map[string]item{"index": {ID: id, Status: http.StatusCreated}})
	}
	res, _ := json.Marshal(map[string]interface{}{"took": 1, "errors": hasErrors, "items": items})
	return reply(http.StatusOK, string(res))
}

// applyScript assigns script params to document, as painless assignments do
func applyScript(doc map[string]interface{}, body []byte) {
	var req struct {
		Script struct {
			Params map[string]interface{} `json:"params"`
		} `json:"script"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return
	}
	for k, v := range req.Script.Params {
		doc[k] = v
	}
}

func hit(index, id string, doc map[string]interface{}, found bool) string {
	src, _ := json.Marshal(doc)
	if found {
		return fmt.Sprintf(`{"_index":%q,"_id":%q,"found":true,"_source":%s}`, index, id, src)
	}
	return fmt.Sprintf(`{"_index":%q,"_id":%q,"_source":%s}`, index, id, src)
}

func notFound(index string) *http.Response {
	return reply(http.StatusNotFound, fmt.Sprintf(`{"error":{"type":"index_not_found_exception","index":%q},"status":404}`, index))
}

func reply(code int, body string) *http.Response {
	resp := &http.Response{
		StatusCode: code,
		Status:     http.StatusText(code),
		Body:       ioutil.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
	resp.Header.Set("X-Elastic-Product", "Elasticsearch")
	resp.Header.Set("Content-Type", "application/json")
	return resp
}
