package cmd

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	log "github.com/go-pkgz/lgr"
	"github.com/pkg/errors"

	"github.com/rerootagency/esquery/app/search"
)

// LoadCommand set of flags and command for bulk load of documents
type LoadCommand struct {
	Index     string `short:"i" long:"index" required:"true" description:"index name"`
	File      string `short:"f" long:"file" default:"-" description:"documents file, json array or one json per line, - for stdin"`
	ChunkSize int    `long:"chunk" default:"1000" description:"documents per bulk request"`
	NoRefresh bool   `long:"no-refresh" description:"don't wait for documents to be searchable"`
	Stream    bool   `long:"stream" description:"read one json per line and send documents in background as they come"`
	Spill     string `long:"spill" description:"file to keep unsent documents of interrupted stream"`
	CommonOpts
}

// Execute reads documents and inserts them in chunks
func (c *LoadCommand) Execute(_ []string) error {
	fh := io.Reader(os.Stdin)
	if c.File != "-" && c.File != "" {
		f, err := os.Open(filepath.Clean(c.File))
		if err != nil {
			return errors.Wrapf(err, "can't open %s", c.File)
		}
		defer f.Close() // nolint
		fh = f
	}
	if c.Stream {
		return c.stream(fh)
	}
	docs, err := readDocuments(fh)
	if err != nil {
		return err
	}

	ctx, cancel := c.withTimeout()
	defer cancel()
	b, d, err := c.open(ctx, c.Index, search.WithChunkSize(c.ChunkSize))
	if err != nil {
		return err
	}
	defer b.Close() // nolint

	log.Printf("[INFO] loading %d documents to %s", len(docs), c.Index)
	res, err := b.BulkInsert(ctx, d, docs, !c.NoRefresh)
	if err != nil {
		return err
	}
	if !res.OK() {
		return errors.Wrap(res.Err, "load failed")
	}
	return c.print(map[string]interface{}{"op": "load", "ok": true, "documents": len(docs)})
}

// readDocuments decodes json array of documents or a stream of documents
func readDocuments(r io.Reader) ([]search.Document, error) {
	br := bufio.NewReader(r)
	for {
		ch, _, err := br.ReadRune()
		if err == io.EOF {
			return []search.Document{}, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "can't read documents")
		}
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' {
			continue
		}
		if err = br.UnreadRune(); err != nil {
			return nil, errors.Wrap(err, "can't read documents")
		}
		if ch == '[' {
			var res []search.Document
			if err = json.NewDecoder(br).Decode(&res); err != nil {
				return nil, errors.Wrap(err, "can't decode documents array")
			}
			return res, nil
		}
		break
	}

	res := []search.Document{}
	dec := json.NewDecoder(br)
	for {
		var doc search.Document
		err := dec.Decode(&doc)
		if err == io.EOF {
			return res, nil
		}
		if err != nil {
			return nil, errors.Wrapf(err, "can't decode document %d", len(res)+1)
		}
		res = append(res, doc)
	}
}

// stream sends documents through the buffer while reading them
func (c *LoadCommand) stream(r io.Reader) error {
	ctx, cancel := c.withTimeout()
	defer cancel()
	b, d, err := c.open(ctx, c.Index)
	if err != nil {
		return err
	}
	defer b.Close() // nolint

	buf, err := search.NewBuffer(b, d, search.BufferParams{FlushCount: c.ChunkSize, SpillFile: c.Spill, Refresh: !c.NoRefresh})
	if err != nil {
		return err
	}
	restored, err := buf.Start(ctx)
	if err != nil {
		return err
	}
	defer buf.Close() // nolint
	if restored > 0 {
		log.Printf("[INFO] %d documents restored from %s", restored, c.Spill)
	}

	count := 0
	dec := json.NewDecoder(r)
	for {
		var doc search.Document
		err = dec.Decode(&doc)
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrapf(err, "can't decode document %d", count+1)
		}
		if err = buf.Add(doc); err != nil {
			return err
		}
		count++
	}
	if err = buf.Flush(); err != nil {
		return errors.Wrap(err, "load failed")
	}
	return c.print(map[string]interface{}{"op": "load", "ok": true, "documents": count + restored})
}
