package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/valeriaulyamaeva/finance-ledger/internal/database"
)

type migrateCmd struct {
	down bool
}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "apply database migrations and seed currencies" }
func (*migrateCmd) Usage() string {
	return `ledger migrate [-down]

  Brings the schema up to date and registers the default currencies.
`
}

func (c *migrateCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.down, "down", false, "Roll back every migration instead")
}

func (c *migrateCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	dsn := configFrom(args).DB.DSN()
	run := database.Migrate
	if c.down {
		run = database.MigrateDown
	}
	if err := run(ctx, dsn); err != nil {
		fmt.Fprintf(os.Stderr, "Error migrating: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
