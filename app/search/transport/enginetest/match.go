package enginetest

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

const defaultSize = 10

// request is the part of search and by-query bodies the engine evaluates
type request struct {
	Query map[string]interface{} `json:"query"`
	Sort  []interface{}          `json:"sort"`
	From  *int                   `json:"from"`
	Size  *int                   `json:"size"`
}

func parseRequest(body []byte) (request, error) {
	var req request
	if len(strings.TrimSpace(string(body))) == 0 {
		return req, nil
	}
	err := json.Unmarshal(body, &req)
	return req, err
}

// selectIDs returns ids of matched documents in sort order, ties and unsorted requests ordered by id
func selectIDs(docs map[string]map[string]interface{}, req request) []string {
	ids := make([]string, 0, len(docs))
	for id, doc := range docs {
		if matches(doc, req.Query) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	for i := len(req.Sort) - 1; i >= 0; i-- {
		field, desc, ok := sortKey(req.Sort[i])
		if !ok {
			continue
		}
		sort.SliceStable(ids, func(a, b int) bool {
			va, vb := lookup(docs[ids[a]], field), lookup(docs[ids[b]], field)
			if va == nil || vb == nil {
				return va != nil && vb == nil // missing values last
			}
			c, comparable := compare(va, vb)
			if !comparable {
				return false
			}
			if desc {
				return c > 0
			}
			return c < 0
		})
	}
	return ids
}

// page cuts from/size window, size defaults to 10 like the real engine
func page(ids []string, req request) []string {
	from, size := 0, defaultSize
	if req.From != nil && *req.From > 0 {
		from = *req.From
	}
	if req.Size != nil && *req.Size >= 0 {
		size = *req.Size
	}
	if from >= len(ids) {
		return []string{}
	}
	if from+size < len(ids) {
		return ids[from : from+size]
	}
	return ids[from:]
}

// sortKey understands {"field":"desc"} and {"field":{"order":"desc"}}, "_score" and other strings are skipped
func sortKey(v interface{}) (field string, desc, ok bool) {
	m, isMap := v.(map[string]interface{})
	if !isMap || len(m) != 1 {
		return "", false, false
	}
	for k, dir := range m {
		if o, isObj := dir.(map[string]interface{}); isObj {
			dir = o["order"]
		}
		return k, dir == "desc", k != "_score"
	}
	return "", false, false
}

// matches evaluates match_all, bool (must, filter, must_not, should), term, terms, range and match.
// Absent query matches everything, unknown clauses too.
func matches(doc map[string]interface{}, q map[string]interface{}) bool {
	for kind, v := range q {
		body, _ := v.(map[string]interface{})
		switch kind {
		case "bool":
			for _, key := range []string{"must", "filter"} {
				for _, c := range clauses(body[key]) {
					if !matches(doc, c) {
						return false
					}
				}
			}
			for _, c := range clauses(body["must_not"]) {
				if matches(doc, c) {
					return false
				}
			}
			if should := clauses(body["should"]); len(should) > 0 {
				found := false
				for _, c := range should {
					found = found || matches(doc, c)
				}
				if !found {
					return false
				}
			}
		case "term":
			for field, val := range body {
				if o, isObj := val.(map[string]interface{}); isObj {
					val = o["value"]
				}
				if !has(lookup(doc, field), val) {
					return false
				}
			}
		case "terms":
			for field, vals := range body {
				list, _ := vals.([]interface{})
				found := false
				for _, val := range list {
					found = found || has(lookup(doc, field), val)
				}
				if !found {
					return false
				}
			}
		case "range":
			for field, cond := range body {
				if !inRange(lookup(doc, field), cond) {
					return false
				}
			}
		case "match":
			for field, val := range body {
				if o, isObj := val.(map[string]interface{}); isObj {
					val = o["query"]
				}
				text := strings.ToLower(fmt.Sprint(lookup(doc, field)))
				if !strings.Contains(text, strings.ToLower(fmt.Sprint(val))) {
					return false
				}
			}
		}
	}
	return true
}

func clauses(v interface{}) []map[string]interface{} {
	switch c := v.(type) {
	case map[string]interface{}:
		return []map[string]interface{}{c}
	case []interface{}:
		res := make([]map[string]interface{}, 0, len(c))
		for _, e := range c {
			if m, ok := e.(map[string]interface{}); ok {
				res = append(res, m)
			}
		}
		return res
	}
	return nil
}

// has checks field value, or any element of array value, equals val
func has(fieldVal, val interface{}) bool {
	if list, ok := fieldVal.([]interface{}); ok {
		for _, e := range list {
			if reflect.DeepEqual(e, val) {
				return true
			}
		}
		return false
	}
	return fieldVal != nil && reflect.DeepEqual(fieldVal, val)
}

func inRange(val, cond interface{}) bool {
	bounds, _ := cond.(map[string]interface{})
	if val == nil {
		return false
	}
	for op, bound := range bounds {
		c, ok := compare(val, bound)
		if !ok {
			return false
		}
		switch op {
		case "gt":
			ok = c > 0
		case "gte":
			ok = c >= 0
		case "lt":
			ok = c < 0
		case "lte":
			ok = c <= 0
		}
		if !ok {
			return false
		}
	}
	return true
}

// compare orders two numbers or two strings
func compare(a, b interface{}) (int, bool) {
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		if !ok {
			return 0, false
		}
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		}
		return 0, true
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(av, bv), true
	}
	return 0, false
}

// lookup gets field value, dots address nested objects
func lookup(doc map[string]interface{}, field string) interface{} {
	var cur interface{} = doc
	for _, key := range strings.Split(field, ".") {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur = m[key]
	}
	return cur
}
