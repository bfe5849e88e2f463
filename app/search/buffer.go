package search

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gammazero/deque"
	"github.com/pkg/errors"

	"github.com/rerootagency/esquery/app/search/index"
)

// ErrBufferClosed returned by Add, Flush and Start after Close
var ErrBufferClosed = errors.New("buffer closed")

// ErrBufferNotStarted returned by Flush before Start, nobody would send the documents
var ErrBufferNotStarted = errors.New("buffer not started")

var errBufferStarted = errors.New("buffer already started")

// BufferParams defines when buffered documents are sent
type BufferParams struct {
	FlushEvery time.Duration // send queued documents at least that often, default 1s
	FlushCount int           // send as soon as that many documents queued, default builder chunk size
	SpillFile  string        // unsent documents are saved here on Close and queued back on Start
	Refresh    bool
}

// Buffer collects documents of one index and sends them with BulkInsert in background.
// Buffer owns the builder, it should not be used by anybody else till Close.
type Buffer struct {
	BufferParams
	b *Builder
	d index.Descriptor

	lock     sync.Mutex
	queue    deque.Deque // Document or *flushRequest
	docs     int
	flushers int
	started  bool
	closed   bool
	notify   chan struct{}
	wg       sync.WaitGroup
}

type flushRequest struct {
	done chan error
}

// NewBuffer makes buffer sending documents of d with b
func NewBuffer(b *Builder, d index.Descriptor, params BufferParams) (*Buffer, error) {
	if err := index.Validate(d); err != nil {
		return nil, err
	}
	if params.FlushEvery <= 0 {
		params.FlushEvery = time.Second
	}
	if params.FlushCount <= 0 {
		params.FlushCount = b.chunkSize
	}
	return &Buffer{BufferParams: params, b: b, d: d, notify: make(chan struct{}, 1)}, nil
}

// Start queues documents saved by the previous Close and runs sending worker.
// Returns number of restored documents.
func (s *Buffer) Start(ctx context.Context) (int, error) {
	if err := s.startable(); err != nil {
		return 0, err
	}
	restored, err := s.restore(ctx)
	if err != nil {
		return restored, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed {
		return restored, ErrBufferClosed
	}
	if s.started {
		return restored, errBufferStarted
	}
	s.started = true
	s.wg.Add(1)
	go s.worker(ctx)
	return restored, nil
}

func (s *Buffer) startable() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	switch {
	case s.closed:
		return ErrBufferClosed
	case s.started:
		return errBufferStarted
	}
	return nil
}

// Add queues document
func (s *Buffer) Add(doc Document) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed {
		return ErrBufferClosed
	}
	s.queue.PushBack(doc)
	s.docs++
	s.signal()
	return nil
}

// Flush sends all queued documents and waits for the result
func (s *Buffer) Flush() error {
	req := &flushRequest{done: make(chan error, 1)}
	s.lock.Lock()
	if s.closed {
		s.lock.Unlock()
		return ErrBufferClosed
	}
	if !s.started {
		s.lock.Unlock()
		return ErrBufferNotStarted
	}
	s.queue.PushBack(req)
	s.flushers++
	s.signal()
	s.lock.Unlock()
	return <-req.done
}

// Close stops the worker. Queued documents are saved to spill file if set, or sent otherwise.
func (s *Buffer) Close() error {
	s.lock.Lock()
	if s.closed {
		s.lock.Unlock()
		return nil
	}
	s.closed = true
	close(s.notify)
	started := s.started
	s.lock.Unlock()
	if !started {
		// no worker, documents queued by Add or restore are handled here
		s.stop(context.Background())
		return nil
	}
	s.wg.Wait()
	return nil
}

// signal wakes up the worker, must be called under lock
func (s *Buffer) signal() {
	select {
	case s.notify <- struct{}{}:
	default: // worker already has pending signal
	}
}

func (s *Buffer) worker(ctx context.Context) {
	defer s.wg.Done()
	name := s.d.IndexName()
	s.b.l.Logf("[DEBUG] buffer worker for %s started", name)

	tmr := time.NewTimer(s.FlushEvery)
	defer tmr.Stop()
	for {
		select {
		case <-tmr.C:
			s.send(ctx)
			tmr.Reset(s.FlushEvery)
		case _, ok := <-s.notify:
			if !ok {
				s.stop(ctx)
				s.b.l.Logf("[DEBUG] buffer worker for %s stopped", name)
				return
			}
			s.lock.Lock()
			ready := s.docs >= s.FlushCount || s.flushers > 0
			s.lock.Unlock()
			if ready {
				s.send(ctx)
			}
		}
	}
}

// stop saves queued documents to spill file if set, sends them otherwise
func (s *Buffer) stop(ctx context.Context) {
	if s.SpillFile == "" {
		s.send(ctx)
		return
	}
	s.spill()
}

// send pops everything queued, inserts documents and reports result to flush requests
func (s *Buffer) send(ctx context.Context) {
	docs, waiters := s.drain()
	if len(docs) == 0 && len(waiters) == 0 {
		return
	}

	var err error
	if len(docs) > 0 {
		var res Result
		if res, err = s.b.BulkInsert(ctx, s.d, docs, s.Refresh); err == nil {
			err = res.Err
		}
		if err != nil {
			s.b.l.Logf("[WARN] buffer can't send %d documents to %s, %v", len(docs), s.d.IndexName(), err)
		}
	}
	for _, w := range waiters {
		w.done <- err
	}
}

func (s *Buffer) drain() (docs []Document, waiters []*flushRequest) {
	s.lock.Lock()
	defer s.lock.Unlock()
	for s.queue.Len() > 0 {
		switch v := s.queue.PopFront().(type) {
		case Document:
			docs = append(docs, v)
		case *flushRequest:
			waiters = append(waiters, v)
		}
	}
	s.docs, s.flushers = 0, 0
	return docs, waiters
}

// spill saves queued documents, one json per line
func (s *Buffer) spill() {
	docs, waiters := s.drain()
	for _, w := range waiters {
		w.done <- ErrBufferClosed
	}
	if len(docs) == 0 {
		return
	}

	fh, err := os.Create(filepath.Clean(s.SpillFile))
	if err != nil {
		s.b.l.Logf("[ERROR] can't create spill file %s, %d documents lost, %v", s.SpillFile, len(docs), err)
		return
	}
	enc := json.NewEncoder(fh)
	for i, doc := range docs {
		if err = enc.Encode(doc); err != nil {
			s.b.l.Logf("[ERROR] can't write spill file %s, %d documents lost, %v", s.SpillFile, len(docs)-i, err)
			break
		}
	}
	if err = fh.Close(); err != nil {
		s.b.l.Logf("[WARN] can't close spill file %s, %v", s.SpillFile, err)
	}
	s.b.l.Logf("[INFO] %d unsent documents of %s saved to %s", len(docs), s.d.IndexName(), s.SpillFile)
}

// restore queues documents from spill file and removes it
func (s *Buffer) restore(ctx context.Context) (int, error) {
	if s.SpillFile == "" {
		return 0, nil
	}
	fh, err := os.Open(filepath.Clean(s.SpillFile))
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrapf(err, "can't open spill file %s", s.SpillFile)
	}
	defer fh.Close() // nolint

	count := 0
	dec := json.NewDecoder(fh)
	for {
		if err = ctx.Err(); err != nil {
			return count, errors.Wrap(err, "restore interrupted")
		}
		var doc Document
		err = dec.Decode(&doc)
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, errors.Wrapf(err, "can't read spill file %s", s.SpillFile)
		}
		if err = s.Add(doc); err != nil {
			return count, err
		}
		count++
	}
	if err = os.Remove(s.SpillFile); err != nil {
		s.b.l.Logf("[WARN] can't remove spill file %s, %v", s.SpillFile, err)
	}
	s.b.l.Logf("[INFO] %d documents of %s restored from %s", count, s.d.IndexName(), s.SpillFile)
	return count, nil
}
