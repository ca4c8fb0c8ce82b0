// Command ledger serves and maintains the personal finance ledger.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/valeriaulyamaeva/finance-ledger/internal/config"
	"github.com/valeriaulyamaeva/finance-ledger/internal/database"
	"github.com/valeriaulyamaeva/finance-ledger/internal/ledger"
	"github.com/valeriaulyamaeva/finance-ledger/internal/logger"
	"github.com/valeriaulyamaeva/finance-ledger/internal/memstore"
)

var envFile = flag.String("env", ".env", "Path to the .env file")

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(&serveCmd{}, "server")
	commander.Register(&migrateCmd{}, "database")
	commander.Register(&seedCmd{}, "database")
	commander.Register(&auditCmd{}, "ledger")
	commander.Register(&reportCmd{}, "ledger")

	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(int(subcommands.ExitFailure))
	}
	log := logger.New(cfg.LogLevel)
	ctx := logger.WithContext(context.Background(), log)

	os.Exit(int(commander.Execute(ctx, cfg)))
}

func configFrom(args []interface{}) *config.Config {
	return args[0].(*config.Config)
}

// openLedger returns a ledger over the named store and a function
// releasing it.
func openLedger(ctx context.Context, cfg *config.Config, store string) (*ledger.Ledger, func(), error) {
	switch store {
	case "memory":
		return ledger.New(memstore.New()), func() {}, nil
	case "postgres":
		pool, err := database.ConnectDB(ctx, cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		return ledger.New(database.NewStore(pool)), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", store)
	}
}
