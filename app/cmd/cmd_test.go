package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rerootagency/esquery/app/search"
	"github.com/rerootagency/esquery/app/search/query"
	"github.com/rerootagency/esquery/app/search/transport"
	"github.com/rerootagency/esquery/app/search/transport/enginetest"
)

const testDefs = `
indices:
  - name: products
    properties:
      name: {type: text}
      price: {type: float}
    ngram: true
  - name: orders
`

func prepCommon(t *testing.T) (CommonOpts, *enginetest.Engine, *bytes.Buffer) {
	t.Helper()
	dir, err := ioutil.TempDir("", "esquery")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	defs := filepath.Join(dir, "indices.yml")
	require.NoError(t, ioutil.WriteFile(defs, []byte(testDefs), 0600))

	engine := enginetest.New()
	out := &bytes.Buffer{}
	return CommonOpts{Engine: transport.Params{Transport: engine}, Defs: defs, Out: out}, engine, out
}

func TestParseCondition(t *testing.T) {
	tbl := []struct {
		inp   string
		field string
		op    query.Operator
		value interface{}
		err   bool
	}{
		{"name=lamp", "name", query.Eq, "lamp", false},
		{"name = \"big lamp\"", "name", query.Eq, "big lamp", false},
		{"price>=10", "price", query.Gte, 10.0, false},
		{"price<=10.5", "price", query.Lte, 10.5, false},
		{"price>1", "price", query.Gt, 1.0, false},
		{"price<1", "price", query.Lt, 1.0, false},
		{"active!=true", "active", query.Ne, true, false},
		{"url=http://x?a=b", "url", query.Eq, "http://x?a=b", false},
		{"=lamp", "", "", nil, true},
		{"lamp", "", "", nil, true},
	}
	for i, tt := range tbl {
		tt := tt
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			field, op, value, err := parseCondition(tt.inp)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.field, field)
			assert.Equal(t, tt.op, op)
			assert.Equal(t, tt.value, value)
		})
	}
}

func TestParseAssignAndList(t *testing.T) {
	patch, err := parseAssigns([]string{"name=desk lamp", "price=12.5", "tags=[\"a\",\"b\"]", "note="})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"name": "desk lamp", "price": 12.5,
		"tags": []interface{}{"a", "b"}, "note": ""}, patch)

	_, err = parseAssigns([]string{"name"})
	assert.Error(t, err)
	_, err = parseAssigns([]string{"=1"})
	assert.Error(t, err)

	field, values, err := parseList("color=red, green,3")
	require.NoError(t, err)
	assert.Equal(t, "color", field)
	assert.Equal(t, []interface{}{"red", "green", 3.0}, values)

	_, _, err = parseList("color")
	assert.Error(t, err)

	assert.Equal(t, "null", parseValue("null"), "null kept as string")
}

func TestReadDocuments(t *testing.T) {
	docs, err := readDocuments(strings.NewReader(` [{"name":"a"},{"name":"b"}]`))
	require.NoError(t, err)
	assert.Equal(t, []search.Document{{"name": "a"}, {"name": "b"}}, docs)

	docs, err = readDocuments(strings.NewReader("\n{\"name\":\"a\"}\n{\"name\":\"b\",\"price\":1}\n"))
	require.NoError(t, err)
	assert.Equal(t, []search.Document{{"name": "a"}, {"name": "b", "price": 1.0}}, docs)

	docs, err = readDocuments(strings.NewReader("  "))
	require.NoError(t, err)
	assert.Empty(t, docs)

	_, err = readDocuments(strings.NewReader(`{"name":`))
	assert.Error(t, err)
	_, err = readDocuments(strings.NewReader(`[{"name":1}`))
	assert.Error(t, err)
}

func TestCommands(t *testing.T) {
	common, engine, out := prepCommon(t)

	create := CreateIndexCommand{Index: "products"}
	create.SetCommon(common)
	require.NoError(t, create.Execute(nil))
	req, ok := engine.Last("PUT", "/products")
	require.True(t, ok)
	assert.Contains(t, string(req.Body), `"ngram_analyzer"`)
	assert.Contains(t, out.String(), `"acknowledged":true`)

	out.Reset()
	require.NoError(t, create.Execute(nil))
	assert.Equal(t, `{"created":false,"index":"products"}`+"\n", out.String())

	dir, err := ioutil.TempDir("", "esquery")
	require.NoError(t, err)
	defer os.RemoveAll(dir) // nolint
	file := filepath.Join(dir, "docs.json")
	require.NoError(t, ioutil.WriteFile(file, []byte(`[{"name":"chair","price":30},{"name":"lamp","price":15},
		{"name":"shelf","price":45}]`), 0600))

	out.Reset()
	load := LoadCommand{Index: "products", File: file, ChunkSize: 2}
	load.SetCommon(common)
	require.NoError(t, load.Execute(nil))
	assert.Equal(t, `{"documents":3,"ok":true,"op":"load"}`+"\n", out.String())
	assert.Len(t, engine.Docs("products"), 3)

	out.Reset()
	q := QueryCommand{Index: "products", FilterOpts: FilterOpts{Where: []string{"price>20"}, NotIn: []string{"name=lamp"}},
		Limit: 10, Sort: "price:desc"}
	q.SetCommon(common)
	require.NoError(t, q.Execute(nil))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2, "lamp filtered out")
	assert.Contains(t, lines[0], `"name":"shelf"`)
	assert.Contains(t, lines[1], `"name":"chair"`)
	req, _ = engine.Last("POST", "/products/_search")
	assert.JSONEq(t, `{"query":{"bool":{"must":[{"range":{"price":{"gt":20}}}],"must_not":[{"terms":{"name":["lamp"]}}]}},
		"from":0,"size":10,"sort":[{"price":"desc"}]}`, string(req.Body))

	ids := map[string]string{}
	for id, d := range engine.Docs("products") {
		ids[d["name"].(string)] = id
	}
	lamp := ids["lamp"]

	out.Reset()
	find := FindCommand{Index: "products", ID: lamp}
	find.SetCommon(common)
	require.NoError(t, find.Execute(nil))
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, lamp, doc["id"])
	assert.Equal(t, "lamp", doc["name"])

	out.Reset()
	upd := UpdateCommand{Index: "products", ID: lamp, Set: []string{"price=99", "name=sofa"}}
	upd.SetCommon(common)
	require.NoError(t, upd.Execute(nil))
	assert.Equal(t, `{"ok":true,"op":"update"}`+"\n", out.String())
	assert.Equal(t, 99.0, engine.Docs("products")[lamp]["price"])
	assert.Equal(t, "sofa", engine.Docs("products")[lamp]["name"])

	upsert := UpsertCommand{Index: "products", Match: []string{"name=sofa"}, Set: []string{"stock=1"}}
	upsert.SetCommon(common)
	require.NoError(t, upsert.Execute(nil))
	assert.Len(t, engine.Docs("products"), 3)
	assert.Equal(t, 1.0, engine.Docs("products")[lamp]["stock"], "matched document updated")
	assert.Nil(t, engine.Docs("products")[ids["chair"]]["stock"])

	mu := MassUpdateCommand{Index: "products", FilterOpts: FilterOpts{In: []string{"name=sofa,chair"}}, Set: []string{"sale=true"}}
	mu.SetCommon(common)
	require.NoError(t, mu.Execute(nil))
	req, _ = engine.Last("POST", "/products/_update_by_query")
	assert.Contains(t, string(req.Body), `"terms":{"name":["sofa","chair"]}`)
	assert.Equal(t, true, engine.Docs("products")[lamp]["sale"])
	assert.Equal(t, true, engine.Docs("products")[ids["chair"]]["sale"])
	assert.Nil(t, engine.Docs("products")[ids["shelf"]]["sale"], "not matched document untouched")

	del := DeleteCommand{Index: "products", ID: lamp}
	del.SetCommon(common)
	require.NoError(t, del.Execute(nil))
	assert.Len(t, engine.Docs("products"), 2)
	assert.Error(t, del.Execute(nil), "already deleted")

	md := MassDeleteCommand{Index: "products"}
	md.SetCommon(common)
	assert.EqualError(t, md.Execute(nil), "no filter set, use --all to delete all documents")
	md.Where = []string{"price>40"}
	require.NoError(t, md.Execute(nil))
	docs := engine.Docs("products")
	require.Len(t, docs, 1)
	assert.Contains(t, docs, ids["chair"], "not matched document survives")

	md.Where, md.All = nil, true
	require.NoError(t, md.Execute(nil))
	assert.Empty(t, engine.Docs("products"))

	find.ID = "nope"
	assert.Error(t, find.Execute(nil))

	drop := DropIndexCommand{Index: "products"}
	drop.SetCommon(common)
	require.NoError(t, drop.Execute(nil))
	assert.False(t, engine.HasIndex("products"))
	assert.Error(t, drop.Execute(nil))
}

func TestCommands_Errors(t *testing.T) {
	common, _, _ := prepCommon(t)

	c := FindCommand{Index: "unknown", ID: "1"}
	c.SetCommon(common)
	err := c.Execute(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "known [orders products]")

	c = FindCommand{Index: "products", ID: "1"}
	c.SetCommon(common)
	c.Defs = "/no/such/file.yml"
	assert.Error(t, c.Execute(nil))

	q := QueryCommand{Index: "products", FilterOpts: FilterOpts{Where: []string{"price"}}}
	q.SetCommon(common)
	assert.Error(t, q.Execute(nil))

	u := UpdateCommand{Index: "products", ID: "1", Set: []string{"bad field=1"}}
	u.SetCommon(common)
	err = u.Execute(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid update payload")

	u = UpdateCommand{Index: "products", ID: "1", Set: []string{"price=1"}}
	u.SetCommon(common)
	u.Engine.Version = "v1"
	assert.Error(t, u.Execute(nil))
}

func TestLoadCommand_Stream(t *testing.T) {
	common, engine, out := prepCommon(t)

	dir, err := ioutil.TempDir("", "esquery")
	require.NoError(t, err)
	defer os.RemoveAll(dir) // nolint
	file := filepath.Join(dir, "docs.ndjson")
	spill := filepath.Join(dir, "spill.ndjson")
	require.NoError(t, ioutil.WriteFile(file, []byte("{\"name\":\"a\"}\n{\"name\":\"b\"}\n{\"name\":\"c\"}\n"), 0600))
	require.NoError(t, ioutil.WriteFile(spill, []byte("{\"name\":\"restored\"}\n"), 0600))

	load := LoadCommand{Index: "orders", File: file, ChunkSize: 2, Stream: true, Spill: spill}
	load.SetCommon(common)
	require.NoError(t, load.Execute(nil))
	assert.Equal(t, `{"documents":4,"ok":true,"op":"load"}`+"\n", out.String())
	assert.Len(t, engine.Docs("orders"), 4)
	_, err = os.Stat(spill)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, ioutil.WriteFile(file, []byte("{\"name\":\"a\"}\n{bad"), 0600))
	err = load.Execute(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "can't decode document 2")
	data, err := ioutil.ReadFile(spill)
	require.NoError(t, err)
	assert.Equal(t, "{\"name\":\"a\"}\n", string(data), "unsent document saved")
}
