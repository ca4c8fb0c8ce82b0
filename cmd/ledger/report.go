package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/valeriaulyamaeva/finance-ledger/internal/report"
)

type reportCmd struct {
	user int
	raw  bool
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "print a user's balances" }
func (*reportCmd) Usage() string {
	return `ledger report -user id [-raw]

  Prints the user's accounts with balances, audit state and totals.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.user, "user", 0, "User to report on")
	f.BoolVar(&c.raw, "raw", false, "Print markdown without terminal styling")
}

func (c *reportCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if c.user <= 0 {
		fmt.Fprintln(os.Stderr, "Error: -user is required")
		return subcommands.ExitUsageError
	}
	l, closeStore, err := openLedger(ctx, configFrom(args), "postgres")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeStore()

	md, err := report.Build(ctx, l, c.user)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building report: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.raw {
		fmt.Print(md)
		return subcommands.ExitSuccess
	}
	out, err := report.Render(md)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering report: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Print(out)
	return subcommands.ExitSuccess
}
