package transport

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/go-pkgz/lgr"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestParams_Addresses(t *testing.T) {
	tbl := []struct {
		params Params
		res    []string
	}{
		{Params{}, []string{"http://localhost"}},
		{Params{Host: "es.local", Port: 9200}, []string{"http://es.local:9200"}},
		{Params{Host: "es.local", Port: 443, Scheme: "https", Path: "/search/"}, []string{"https://es.local:443/search"}},
		{Params{Host: "ignored", URLs: []string{"http://a:9200", "http://b:9200"}}, []string{"http://a:9200", "http://b:9200"}},
	}
	for i, tt := range tbl {
		tt := tt
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			assert.Equal(t, tt.res, tt.params.Addresses())
		})
	}
}

func TestParams_Credentials(t *testing.T) {
	tbl := []struct {
		params Params
		res    credentials
		err    bool
	}{
		{Params{User: "elastic", Pass: "changeme"}, credentials{username: "elastic", password: "changeme"}, false},
		{Params{User: "ignored", Secret: "basic:user:pa:ss"}, credentials{username: "user", password: "pa:ss"}, false},
		{Params{Secret: "token:abc123"}, credentials{apiKey: "abc123"}, false},
		{Params{Secret: "basic:nopass"}, credentials{}, true},
		{Params{Secret: "bearer:abc"}, credentials{}, true},
	}
	for i, tt := range tbl {
		tt := tt
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			res, err := tt.params.credentials()
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.res, res)
		})
	}
}

func TestNew(t *testing.T) {
	tr, err := New(Params{})
	require.NoError(t, err)
	assert.IsType(t, &elasticV7{}, tr)

	tr, err = New(Params{Version: VersionV8})
	require.NoError(t, err)
	assert.IsType(t, &elasticV8{}, tr)

	tr, err = New(Params{Version: VersionOpenSearch, User: "admin", Pass: "admin"})
	require.NoError(t, err)
	assert.IsType(t, &openSearch{}, tr)

	tr, err = New(Params{Version: VersionV7, DryRun: true})
	require.NoError(t, err)
	assert.IsType(t, &DryRun{}, tr)

	_, err = New(Params{Version: "v6"})
	assert.EqualError(t, err, `unknown engine client "v6"`)

	_, err = New(Params{Version: VersionOpenSearch, Secret: "token:abc"})
	assert.Error(t, err, "opensearch client has no api key auth")

	_, err = New(Params{Secret: "wrong"})
	assert.Error(t, err)
}

func TestDryRun(t *testing.T) {
	buf := bytes.Buffer{}
	d := NewDryRun(lgr.New(lgr.Out(&buf)))
	ctx := context.Background()

	require.NoError(t, d.Ping(ctx))
	ok, err := d.IndexExists(ctx, "products")
	require.NoError(t, err)
	assert.False(t, ok)

	res, err := d.CreateIndex(ctx, "products", map[string]interface{}{"settings": map[string]int{"number_of_shards": 1}})
	require.NoError(t, err)
	assert.Equal(t, "dry-run", res["result"])
	assert.Contains(t, buf.String(), `dry-run create-index products {"settings":{"number_of_shards":1}}`)

	sr, err := d.Search(ctx, "products", map[string]interface{}{"size": 5})
	require.NoError(t, err)
	assert.Empty(t, sr.Hits.Hits)
	assert.Contains(t, buf.String(), `dry-run search products {"size":5}`)

	_, err = d.Get(ctx, "products", "1")
	assert.Equal(t, ErrNotFound, err)

	res, err = d.Index(ctx, "products", map[string]interface{}{"name": "lamp"}, true)
	require.NoError(t, err)
	assert.Equal(t, "dry-run", res["result"])

	assert.NoError(t, d.Update(ctx, "products", "1", map[string]interface{}{}, true))
	assert.NoError(t, d.UpdateByQuery(ctx, "products", map[string]interface{}{}, true))
	assert.NoError(t, d.Delete(ctx, "products", "1"))
	assert.NoError(t, d.DeleteByQuery(ctx, "products", map[string]interface{}{}, true))
	assert.NoError(t, d.DeleteIndex(ctx, "products"))
	assert.NoError(t, d.Bulk(ctx, []interface{}{1, 2, 3, 4}, true))
	assert.Contains(t, buf.String(), "dry-run bulk, 4 lines")

	assert.NoError(t, d.Update(ctx, "products", "1", map[string]interface{}{"bad": make(chan int)}, false))
	assert.Contains(t, buf.String(), "dry-run update products/1, can't encode body")
}

func TestLogged(t *testing.T) {
	buf := bytes.Buffer{}
	m := &MockInterface{}
	tr := WithLogging(m, lgr.New(lgr.Out(&buf), lgr.Debug))
	ctx := context.Background()

	m.On("Ping", ctx).Return(nil)
	m.On("IndexExists", ctx, "products").Return(true, nil)
	m.On("Delete", ctx, "products", "1").Return(errors.New("engine respond an error 404"))
	m.On("Bulk", ctx, mock.Anything, false).Return(nil)

	require.NoError(t, tr.Ping(ctx))
	ok, err := tr.IndexExists(ctx, "products")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.EqualError(t, tr.Delete(ctx, "products", "1"), "engine respond an error 404")
	require.NoError(t, tr.Bulk(ctx, []interface{}{1, 2}, false))

	assert.Contains(t, buf.String(), "DEBUG exists products in")
	assert.Contains(t, buf.String(), "DEBUG delete products/1 failed in")
	m.AssertExpectations(t)
}
