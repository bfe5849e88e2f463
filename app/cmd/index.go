package cmd

import (
	log "github.com/go-pkgz/lgr"
)

// CreateIndexCommand set of flags and command for index creation
type CreateIndexCommand struct {
	Index string `short:"i" long:"index" required:"true" description:"index name"`
	CommonOpts
}

// Execute creates index unless it exists
func (c *CreateIndexCommand) Execute(_ []string) error {
	ctx, cancel := c.withTimeout()
	defer cancel()
	b, d, err := c.open(ctx, c.Index)
	if err != nil {
		return err
	}
	defer b.Close() // nolint

	res, err := b.BuildIndex(ctx, d)
	if err != nil {
		return err
	}
	if res == nil {
		log.Printf("[INFO] index %s already exists", c.Index)
		return c.print(map[string]interface{}{"index": c.Index, "created": false})
	}
	return c.print(res)
}

// DropIndexCommand set of flags and command for index removal
type DropIndexCommand struct {
	Index string `short:"i" long:"index" required:"true" description:"index name"`
	CommonOpts
}

// Execute deletes index
func (c *DropIndexCommand) Execute(_ []string) error {
	ctx, cancel := c.withTimeout()
	defer cancel()
	b, d, err := c.open(ctx, c.Index)
	if err != nil {
		return err
	}
	defer b.Close() // nolint

	res, err := b.DeleteIndex(ctx, d)
	if err != nil {
		return err
	}
	return c.report("drop-index", res)
}
