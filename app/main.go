package main

import (
	"fmt"
	"os"
	"time"

	log "github.com/go-pkgz/lgr"
	flags "github.com/umputun/go-flags"

	"github.com/rerootagency/esquery/app/cmd"
	"github.com/rerootagency/esquery/app/search/transport"
)

// Opts with all cli commands and flags
type Opts struct {
	CreateIndexCmd cmd.CreateIndexCommand `command:"create-index" description:"create index with mappings and settings"`
	DropIndexCmd   cmd.DropIndexCommand   `command:"drop-index" description:"delete index"`
	LoadCmd        cmd.LoadCommand        `command:"load" description:"bulk load documents"`
	FindCmd        cmd.FindCommand        `command:"find" description:"get document by id"`
	QueryCmd       cmd.QueryCommand       `command:"query" description:"search documents"`
	UpdateCmd      cmd.UpdateCommand      `command:"update" description:"update document fields"`
	UpsertCmd      cmd.UpsertCommand      `command:"upsert" description:"update matched document or create new one"`
	DeleteCmd      cmd.DeleteCommand      `command:"delete" description:"delete document by id"`
	MassUpdateCmd  cmd.MassUpdateCommand  `command:"mass-update" description:"update all matched documents"`
	MassDeleteCmd  cmd.MassDeleteCommand  `command:"mass-delete" description:"delete all matched documents"`

	Engine  transport.Params `group:"engine" namespace:"es" env-namespace:"ES"`
	Defs    string           `long:"defs" env:"ESQ_DEFS" default:"indices.yml" description:"index definitions file"`
	Timeout time.Duration    `long:"timeout" env:"ESQ_TIMEOUT" default:"1m" description:"command timeout"`
	Dbg     bool             `long:"dbg" env:"DEBUG" description:"debug mode"`
}

var revision = "unknown"

func main() {
	fmt.Fprintf(os.Stderr, "esquery %s\n", revision)

	var opts Opts
	p := flags.NewParser(&opts, flags.Default)
	p.CommandHandler = func(command flags.Commander, args []string) error {
		setupLog(opts.Dbg)
		// commands implements CommonOptionsCommander to allow passing set of extra options defined for all commands
		c := command.(cmd.CommonOptionsCommander)
		c.SetCommon(cmd.CommonOpts{
			Engine:  opts.Engine,
			Defs:    opts.Defs,
			Dbg:     opts.Dbg,
			Timeout: opts.Timeout,
		})
		err := c.Execute(args)
		if err != nil {
			log.Printf("[ERROR] failed with %+v", err)
		}
		return err
	}

	if _, err := p.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}

func setupLog(dbg bool) {
	logOpts := []log.Option{log.Msec, log.LevelBraces, log.Out(os.Stderr)}
	if dbg {
		logOpts = []log.Option{log.Debug, log.CallerFile, log.CallerFunc, log.Msec, log.LevelBraces, log.Out(os.Stderr)}
	}
	log.Setup(logOpts...)
}
