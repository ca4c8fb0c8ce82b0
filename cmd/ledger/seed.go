package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/subcommands"
	"github.com/valeriaulyamaeva/finance-ledger/internal/database"
	"github.com/valeriaulyamaeva/finance-ledger/internal/ledger"
	"github.com/valeriaulyamaeva/finance-ledger/models"
	"github.com/valeriaulyamaeva/finance-ledger/utils"
)

type seedCmd struct {
	seed int64
	size utils.DemoSize
}

func (*seedCmd) Name() string     { return "seed" }
func (*seedCmd) Synopsis() string { return "create a demo user with a generated history" }
func (*seedCmd) Usage() string {
	return `ledger seed [-seed n] [-accounts n] [-transactions n] [-transfers n]

  Creates a fake user in the database and books categories, accounts,
  transactions and transfers for it.
`
}

func (c *seedCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.seed, "seed", 0, "Random seed, 0 for a random one")
	f.IntVar(&c.size.Categories, "categories", utils.DefaultDemoSize.Categories, "Number of categories")
	f.IntVar(&c.size.Accounts, "accounts", utils.DefaultDemoSize.Accounts, "Number of accounts")
	f.IntVar(&c.size.Transactions, "transactions", utils.DefaultDemoSize.Transactions, "Number of transactions")
	f.IntVar(&c.size.Transfers, "transfers", utils.DefaultDemoSize.Transfers, "Number of transfers")
}

func (c *seedCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	cfg := configFrom(args)
	pool, err := database.ConnectDB(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to database: %v\n", err)
		return subcommands.ExitFailure
	}
	defer pool.Close()

	faker := gofakeit.New(c.seed)
	user := &models.User{Name: faker.Name(), Email: faker.Email()}
	if err := database.CreateUser(ctx, pool, user); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating user: %v\n", err)
		return subcommands.ExitFailure
	}

	l := ledger.New(database.NewStore(pool))
	if err := utils.GenerateDemoLedger(ctx, faker, l, user.ID, c.size); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating data: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Seeded user %d (%s)\n", user.ID, user.Email)
	return subcommands.ExitSuccess
}
