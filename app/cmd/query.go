package cmd

import (
	"strings"

	"github.com/pkg/errors"
)

// FindCommand set of flags and command to get document by id
type FindCommand struct {
	Index string `short:"i" long:"index" required:"true" description:"index name"`
	ID    string `long:"id" required:"true" description:"document id"`
	CommonOpts
}

// Execute prints document, or nothing if not found
func (c *FindCommand) Execute(_ []string) error {
	ctx, cancel := c.withTimeout()
	defer cancel()
	b, d, err := c.open(ctx, c.Index)
	if err != nil {
		return err
	}
	defer b.Close() // nolint

	doc, err := b.Find(ctx, d, c.ID)
	if err != nil {
		return err
	}
	if doc == nil {
		return errors.Errorf("document %s not found in %s", c.ID, c.Index)
	}
	return c.print(doc)
}

// QueryCommand set of flags and command to search documents
type QueryCommand struct {
	Index string `short:"i" long:"index" required:"true" description:"index name"`
	FilterOpts
	Limit int    `long:"limit" description:"max number of documents"`
	Skip  int    `long:"skip" description:"number of documents to skip"`
	Sort  string `long:"sort" description:"sort as field:asc or field:desc"`
	First bool   `long:"first" description:"print the first document only"`
	CommonOpts
}

// Execute prints matched documents, one per line
func (c *QueryCommand) Execute(_ []string) error {
	ctx, cancel := c.withTimeout()
	defer cancel()
	b, _, err := c.open(ctx, c.Index)
	if err != nil {
		return err
	}
	defer b.Close() // nolint

	b.ForName(c.Index)
	if err = c.FilterOpts.apply(b); err != nil {
		return err
	}
	if c.Limit > 0 || c.Skip > 0 {
		b.Limit(c.Limit, c.Skip)
	}
	if c.Sort != "" {
		elems := strings.SplitN(c.Sort, ":", 2)
		dir := ""
		if len(elems) == 2 {
			dir = elems[1]
		}
		b.SortBy(elems[0], dir)
	}

	if c.First {
		doc, e := b.First(ctx)
		if e != nil {
			return e
		}
		if doc == nil {
			return nil
		}
		return c.print(doc)
	}

	docs, err := b.Get(ctx)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if err = c.print(doc); err != nil {
			return err
		}
	}
	return nil
}
