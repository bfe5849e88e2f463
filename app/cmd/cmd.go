// Package cmd has all command line commands. Each command binds the index by name
// from the definitions file and runs one builder operation.
package cmd

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/repeater"
	"github.com/pkg/errors"

	"github.com/rerootagency/esquery/app/search"
	"github.com/rerootagency/esquery/app/search/index"
	"github.com/rerootagency/esquery/app/search/query"
	"github.com/rerootagency/esquery/app/search/transport"
)

// CommonOptionsCommander extends flags.Commander with SetCommon
// All commands should implement this interfaces
type CommonOptionsCommander interface {
	SetCommon(commonOpts CommonOpts)
	Execute(args []string) error
}

// CommonOpts sets externally from main, shared across all commands
type CommonOpts struct {
	Engine  transport.Params `no-flag:"true"`
	Defs    string
	Dbg     bool
	Timeout time.Duration
	Out     io.Writer
}

// SetCommon satisfies CommonOptionsCommander interface and sets common option fields
// The method called by main for each command
func (c *CommonOpts) SetCommon(commonOpts CommonOpts) {
	c.Engine = commonOpts.Engine
	c.Defs = commonOpts.Defs
	c.Dbg = commonOpts.Dbg
	c.Timeout = commonOpts.Timeout
	c.Out = commonOpts.Out
}

// FilterOpts collects query clauses of the command
type FilterOpts struct {
	Where []string `long:"where" description:"filter as field<op>value, op is one of = != > < >= <="`
	In    []string `long:"in" description:"filter as field=v1,v2, matches any of values"`
	NotIn []string `long:"not-in" description:"filter as field=v1,v2, matches none of values"`
}

// open makes builder with all indices of the definitions file and returns descriptor of the named index
func (c *CommonOpts) open(ctx context.Context, name string, opts ...search.Option) (*search.Builder, index.Descriptor, error) {
	reg, err := index.LoadDefinitions(c.Defs)
	if err != nil {
		return nil, nil, err
	}
	d, err := reg.Lookup(name)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "no index %q in %s, known %v", name, c.Defs, reg.Names())
	}
	b, err := c.connect(ctx, append([]search.Option{search.WithRegistry(reg)}, opts...)...)
	if err != nil {
		return nil, nil, err
	}
	return b, d, nil
}

// connect makes builder, waiting for the engine up
func (c *CommonOpts) connect(ctx context.Context, opts ...search.Option) (*search.Builder, error) {
	tr, err := transport.New(c.Engine)
	if err != nil {
		return nil, errors.Wrap(err, "can't make engine transport")
	}
	if c.Dbg {
		tr = transport.WithLogging(tr, nil)
	}

	retries := c.Engine.Retries
	if retries < 1 {
		retries = 1
	}
	err = repeater.NewDefault(retries, time.Second).Do(ctx, func() error {
		if e := tr.Ping(ctx); e != nil {
			log.Printf("[WARN] engine %v is not ready, %v", c.Engine.Addresses(), e)
			return e
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "engine %v is not available", c.Engine.Addresses())
	}

	return search.New(tr, append([]search.Option{search.WithLogger(log.Func(log.Printf))}, opts...)...)
}

// withTimeout returns command context, limited by timeout if set
func (c *CommonOpts) withTimeout() (context.Context, context.CancelFunc) {
	if c.Timeout > 0 {
		return context.WithTimeout(context.Background(), c.Timeout)
	}
	return context.WithCancel(context.Background())
}

func (c *CommonOpts) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// print writes v as json line
func (c *CommonOpts) print(v interface{}) error {
	return errors.Wrap(json.NewEncoder(c.out()).Encode(v), "can't print result")
}

// report prints operation result and returns its error
func (c *CommonOpts) report(op string, res search.Result) error {
	if !res.OK() {
		return errors.Wrapf(res.Err, "%s failed", op)
	}
	return c.print(map[string]interface{}{"op": op, "ok": true})
}

// apply adds all filters to the builder
func (f FilterOpts) apply(b *search.Builder) error {
	for _, w := range f.Where {
		field, op, value, err := parseCondition(w)
		if err != nil {
			return err
		}
		b.WhereOp(field, op, value)
	}
	for _, in := range f.In {
		field, values, err := parseList(in)
		if err != nil {
			return err
		}
		b.WhereIn(field, values, true)
	}
	for _, in := range f.NotIn {
		field, values, err := parseList(in)
		if err != nil {
			return err
		}
		b.WhereIn(field, values, false)
	}
	return b.Err()
}

// parseCondition splits "field<op>value" on the first operator, longest operator wins
func parseCondition(s string) (field string, op query.Operator, value interface{}, err error) {
	for i := 0; i < len(s); i++ {
		for _, o := range query.Operators {
			if !strings.HasPrefix(s[i:], string(o)) {
				continue
			}
			field = strings.TrimSpace(s[:i])
			if field == "" {
				return "", "", nil, errors.Errorf("no field in condition %q", s)
			}
			return field, o, parseValue(strings.TrimSpace(s[i+len(o):])), nil
		}
	}
	return "", "", nil, errors.Errorf("no operator in condition %q", s)
}

// parseAssign splits "field=value"
func parseAssign(s string) (field string, value interface{}, err error) {
	elems := strings.SplitN(s, "=", 2)
	if len(elems) != 2 || strings.TrimSpace(elems[0]) == "" {
		return "", nil, errors.Errorf("expected field=value, got %q", s)
	}
	return strings.TrimSpace(elems[0]), parseValue(elems[1]), nil
}

// parseList splits "field=v1,v2"
func parseList(s string) (field string, values []interface{}, err error) {
	elems := strings.SplitN(s, "=", 2)
	if len(elems) != 2 || strings.TrimSpace(elems[0]) == "" {
		return "", nil, errors.Errorf("expected field=v1,v2, got %q", s)
	}
	values = []interface{}{}
	for _, v := range strings.Split(elems[1], ",") {
		values = append(values, parseValue(strings.TrimSpace(v)))
	}
	return strings.TrimSpace(elems[0]), values, nil
}

// parseAssigns makes patch of "field=value" list
func parseAssigns(list []string) (map[string]interface{}, error) {
	res := make(map[string]interface{}, len(list))
	for _, s := range list {
		field, value, err := parseAssign(s)
		if err != nil {
			return nil, err
		}
		res[field] = value
	}
	return res, nil
}

// parseValue decodes json literal, i.e. number, bool or quoted string. Anything else is a plain string.
func parseValue(s string) interface{} {
	var v interface{}
	if err := json.Unmarshal([]byte(s), &v); err == nil && v != nil {
		return v
	}
	return s
}
