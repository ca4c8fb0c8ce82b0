package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/valeriaulyamaeva/finance-ledger/internal/report"
)

type auditCmd struct {
	user int
}

func (*auditCmd) Name() string     { return "audit" }
func (*auditCmd) Synopsis() string { return "compare stored balances with their history" }
func (*auditCmd) Usage() string {
	return `ledger audit [-user id]

  Recomputes every balance from opening balance, transactions and transfers.
  Exits non-zero when any account drifted. Balances are never rewritten.
`
}

func (c *auditCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.user, "user", 0, "Audit only this user's accounts")
}

func (c *auditCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	l, closeStore, err := openLedger(ctx, configFrom(args), "postgres")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeStore()

	audits, err := l.Audit(ctx, c.user)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error auditing: %v\n", err)
		return subcommands.ExitFailure
	}
	drifted := 0
	for _, a := range audits {
		if a.Consistent() {
			continue
		}
		drifted++
		fmt.Printf("account %d %q: stored %s, expected %s\n", a.AccountID, a.Title,
			report.FormatAmount(a.Stored, a.CurrencyCode), report.FormatAmount(a.Expected, a.CurrencyCode))
	}
	fmt.Printf("%d accounts audited, %d drifted\n", len(audits), drifted)
	if drifted > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
