package search

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rerootagency/esquery/app/search/transport/enginetest"
)

const (
	checkBackoff = 10 * time.Millisecond
	checkTimeout = time.Second
)

func docsIndexed(engine *enginetest.Engine, n int) func() bool {
	return func() bool { return len(engine.Docs("products")) == n }
}

func TestBuffer_FlushCount(t *testing.T) {
	b, engine := prepEngineBuilder(t)
	buf, err := NewBuffer(b, products{}, BufferParams{FlushEvery: time.Hour, FlushCount: 3})
	require.NoError(t, err)
	restored, err := buf.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, restored)

	require.NoError(t, buf.Add(Document{"name": "a"}))
	require.NoError(t, buf.Add(Document{"name": "b"}))
	assert.False(t, engine.HasIndex("products"))

	require.NoError(t, buf.Add(Document{"name": "c"}))
	assert.Eventually(t, docsIndexed(engine, 3), checkTimeout, checkBackoff)

	require.NoError(t, buf.Add(Document{"name": "d"}))
	assert.Len(t, engine.Docs("products"), 3)
	require.NoError(t, buf.Flush())
	assert.Len(t, engine.Docs("products"), 4)

	require.NoError(t, buf.Flush(), "nothing to send")
	require.NoError(t, buf.Close())
	require.NoError(t, buf.Close(), "second close ignored")
	assert.Equal(t, ErrBufferClosed, buf.Add(Document{"name": "e"}))
	assert.Equal(t, ErrBufferClosed, buf.Flush())
}

func TestBuffer_FlushEvery(t *testing.T) {
	b, engine := prepEngineBuilder(t)
	buf, err := NewBuffer(b, products{}, BufferParams{FlushEvery: 10 * time.Millisecond, FlushCount: 100})
	require.NoError(t, err)
	_, err = buf.Start(context.Background())
	require.NoError(t, err)
	defer buf.Close() // nolint

	require.NoError(t, buf.Add(Document{"name": "a"}))
	assert.Eventually(t, docsIndexed(engine, 1), checkTimeout, checkBackoff)
}

func TestBuffer_CloseSends(t *testing.T) {
	b, engine := prepEngineBuilder(t)
	buf, err := NewBuffer(b, products{}, BufferParams{FlushEvery: time.Hour, FlushCount: 100})
	require.NoError(t, err)
	_, err = buf.Start(context.Background())
	require.NoError(t, err)

	require.NoError(t, buf.Add(Document{"name": "a"}))
	require.NoError(t, buf.Add(Document{"name": "b"}))
	require.NoError(t, buf.Close())
	assert.Len(t, engine.Docs("products"), 2)
}

func TestBuffer_Spill(t *testing.T) {
	dir, err := ioutil.TempDir("", "esquery")
	require.NoError(t, err)
	defer os.RemoveAll(dir) // nolint
	spill := filepath.Join(dir, "products.spill")

	b, engine := prepEngineBuilder(t)
	buf, err := NewBuffer(b, products{}, BufferParams{FlushEvery: time.Hour, FlushCount: 100, SpillFile: spill})
	require.NoError(t, err)
	restored, err := buf.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, restored, "cold start")

	require.NoError(t, buf.Add(Document{"name": "a"}))
	require.NoError(t, buf.Add(Document{"name": "b", "price": 2.5}))
	require.NoError(t, buf.Close())
	assert.Empty(t, engine.Docs("products"))

	data, err := ioutil.ReadFile(spill)
	require.NoError(t, err)
	assert.Equal(t, "{\"name\":\"a\"}\n{\"name\":\"b\",\"price\":2.5}\n", string(data))

	buf, err = NewBuffer(b, products{}, BufferParams{FlushEvery: time.Hour, FlushCount: 100, SpillFile: spill})
	require.NoError(t, err)
	restored, err = buf.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, restored)
	_, err = os.Stat(spill)
	assert.True(t, os.IsNotExist(err), "spill file removed")

	require.NoError(t, buf.Flush())
	require.NoError(t, buf.Close())
	assert.Len(t, engine.Docs("products"), 2)
}

func TestBuffer_SpillBroken(t *testing.T) {
	dir, err := ioutil.TempDir("", "esquery")
	require.NoError(t, err)
	defer os.RemoveAll(dir) // nolint
	spill := filepath.Join(dir, "products.spill")
	require.NoError(t, ioutil.WriteFile(spill, []byte(`{"name":"a"}`+"\n{bad"), 0600))

	b, _ := prepEngineBuilder(t)
	buf, err := NewBuffer(b, products{}, BufferParams{SpillFile: spill})
	require.NoError(t, err)
	assert.Equal(t, time.Second, buf.FlushEvery)
	assert.Equal(t, 3, buf.FlushCount, "builder chunk size")

	restored, err := buf.Start(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, restored)
	assert.True(t, strings.HasPrefix(err.Error(), "can't read spill file"))
}

func TestBuffer_FlushError(t *testing.T) {
	b, engine := prepEngineBuilder(t)
	buf, err := NewBuffer(b, products{}, BufferParams{FlushEvery: time.Hour, FlushCount: 100})
	require.NoError(t, err)
	_, err = buf.Start(context.Background())
	require.NoError(t, err)
	defer buf.Close() // nolint

	require.NoError(t, buf.Add(Document{"name": "a", "fail": true}))
	err = buf.Flush()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mapper_parsing_exception")
	assert.Empty(t, engine.Docs("products"))

	_, err = NewBuffer(b, nil, BufferParams{})
	assert.Error(t, err)
}

func TestBuffer_NotStarted(t *testing.T) {
	b, engine := prepEngineBuilder(t)
	buf, err := NewBuffer(b, products{}, BufferParams{FlushEvery: time.Hour, FlushCount: 100})
	require.NoError(t, err)

	require.NoError(t, buf.Add(Document{"name": "a"}))
	done := make(chan error, 1)
	go func() { done <- buf.Flush() }()
	select {
	case err = <-done:
		assert.Equal(t, ErrBufferNotStarted, err)
	case <-time.After(checkTimeout):
		t.Fatal("flush of not started buffer blocked")
	}

	require.NoError(t, buf.Close())
	assert.Len(t, engine.Docs("products"), 1, "queued document sent on close")
	_, err = buf.Start(context.Background())
	assert.Equal(t, ErrBufferClosed, err)
}

func TestBuffer_NotStartedSpill(t *testing.T) {
	dir, err := ioutil.TempDir("", "esquery")
	require.NoError(t, err)
	defer os.RemoveAll(dir) // nolint
	spill := filepath.Join(dir, "products.spill")

	b, engine := prepEngineBuilder(t)
	buf, err := NewBuffer(b, products{}, BufferParams{SpillFile: spill})
	require.NoError(t, err)
	require.NoError(t, buf.Add(Document{"name": "a"}))
	require.NoError(t, buf.Close())
	assert.False(t, engine.HasIndex("products"))

	data, err := ioutil.ReadFile(spill)
	require.NoError(t, err)
	assert.Equal(t, "{\"name\":\"a\"}\n", string(data))
}

func TestBuffer_StartTwice(t *testing.T) {
	b, _ := prepEngineBuilder(t)
	buf, err := NewBuffer(b, products{}, BufferParams{FlushEvery: time.Hour})
	require.NoError(t, err)
	_, err = buf.Start(context.Background())
	require.NoError(t, err)
	_, err = buf.Start(context.Background())
	assert.EqualError(t, err, "buffer already started")
	require.NoError(t, buf.Close())
}
