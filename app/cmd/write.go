package cmd

import (
	"github.com/pkg/errors"
)

// UpdateCommand set of flags and command to update document fields
type UpdateCommand struct {
	Index     string   `short:"i" long:"index" required:"true" description:"index name"`
	ID        string   `long:"id" required:"true" description:"document id"`
	Set       []string `long:"set" required:"true" description:"field=value to set, value is json literal or plain string"`
	NoRefresh bool     `long:"no-refresh" description:"don't wait for update to be searchable"`
	CommonOpts
}

// Execute updates document
func (c *UpdateCommand) Execute(_ []string) error {
	patch, err := parseAssigns(c.Set)
	if err != nil {
		return err
	}
	ctx, cancel := c.withTimeout()
	defer cancel()
	b, d, err := c.open(ctx, c.Index)
	if err != nil {
		return err
	}
	defer b.Close() // nolint

	res, err := b.Update(ctx, d, c.ID, patch, !c.NoRefresh)
	if err != nil {
		return err
	}
	return c.report("update", res)
}

// UpsertCommand set of flags and command to update matched document or create new one
type UpsertCommand struct {
	Index     string   `short:"i" long:"index" required:"true" description:"index name"`
	Match     []string `long:"match" required:"true" description:"field=value the document should match"`
	Set       []string `long:"set" required:"true" description:"field=value to set"`
	NoRefresh bool     `long:"no-refresh" description:"don't wait for update to be searchable"`
	CommonOpts
}

// Execute updates the first matched document or creates new one from match and set fields
func (c *UpsertCommand) Execute(_ []string) error {
	terms, err := parseAssigns(c.Match)
	if err != nil {
		return err
	}
	patch, err := parseAssigns(c.Set)
	if err != nil {
		return err
	}
	ctx, cancel := c.withTimeout()
	defer cancel()
	b, d, err := c.open(ctx, c.Index)
	if err != nil {
		return err
	}
	defer b.Close() // nolint

	res, err := b.UpdateOrCreate(ctx, d, terms, patch, !c.NoRefresh)
	if err != nil {
		return err
	}
	return c.report("upsert", res)
}

// DeleteCommand set of flags and command to delete document
type DeleteCommand struct {
	Index string `short:"i" long:"index" required:"true" description:"index name"`
	ID    string `long:"id" required:"true" description:"document id"`
	CommonOpts
}

// Execute deletes document
func (c *DeleteCommand) Execute(_ []string) error {
	ctx, cancel := c.withTimeout()
	defer cancel()
	b, d, err := c.open(ctx, c.Index)
	if err != nil {
		return err
	}
	defer b.Close() // nolint

	res, err := b.Delete(ctx, d, c.ID)
	if err != nil {
		return err
	}
	return c.report("delete", res)
}

// MassUpdateCommand set of flags and command to update all matched documents
type MassUpdateCommand struct {
	Index string `short:"i" long:"index" required:"true" description:"index name"`
	FilterOpts
	Set       []string `long:"set" required:"true" description:"field=value to set"`
	NoRefresh bool     `long:"no-refresh" description:"don't refresh index after update"`
	CommonOpts
}

// Execute updates matched documents
func (c *MassUpdateCommand) Execute(_ []string) error {
	patch, err := parseAssigns(c.Set)
	if err != nil {
		return err
	}
	ctx, cancel := c.withTimeout()
	defer cancel()
	b, _, err := c.open(ctx, c.Index)
	if err != nil {
		return err
	}
	defer b.Close() // nolint

	if err = c.FilterOpts.apply(b.ForName(c.Index)); err != nil {
		return err
	}
	res, err := b.MassUpdate(ctx, patch, !c.NoRefresh)
	if err != nil {
		return err
	}
	return c.report("mass-update", res)
}

// MassDeleteCommand set of flags and command to delete all matched documents
type MassDeleteCommand struct {
	Index string `short:"i" long:"index" required:"true" description:"index name"`
	FilterOpts
	All       bool `long:"all" description:"allow to delete all documents if no filter set"`
	NoRefresh bool `long:"no-refresh" description:"don't refresh index after delete"`
	CommonOpts
}

// Execute deletes matched documents
func (c *MassDeleteCommand) Execute(_ []string) error {
	if !c.All && len(c.Where)+len(c.In)+len(c.NotIn) == 0 {
		return errors.New("no filter set, use --all to delete all documents")
	}
	ctx, cancel := c.withTimeout()
	defer cancel()
	b, _, err := c.open(ctx, c.Index)
	if err != nil {
		return err
	}
	defer b.Close() // nolint

	if err = c.FilterOpts.apply(b.ForName(c.Index)); err != nil {
		return err
	}
	res, err := b.MassDelete(ctx, !c.NoRefresh)
	if err != nil {
		return err
	}
	return c.report("mass-delete", res)
}
