package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gin-gonic/gin"
	"github.com/google/subcommands"
	"github.com/valeriaulyamaeva/finance-ledger/internal/jobs"
	"github.com/valeriaulyamaeva/finance-ledger/internal/logger"
	"github.com/valeriaulyamaeva/finance-ledger/internal/routes"
	"github.com/valeriaulyamaeva/finance-ledger/utils"
)

type serveCmd struct {
	store string
	demo  bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the HTTP API and the scheduled balance audit" }
func (*serveCmd) Usage() string {
	return `ledger serve [-store postgres|memory] [-demo]

  Serves the ledger API on HTTP_ADDR and audits balances on AUDIT_SCHEDULE.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.store, "store", "postgres", "Backing store: postgres or memory")
	f.BoolVar(&c.demo, "demo", false, "Seed demo data for user 1 (memory store only)")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	cfg := configFrom(args)
	log := logger.FromContext(ctx)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	l, closeStore, err := openLedger(ctx, cfg, c.store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeStore()

	if c.demo && c.store == "memory" {
		if err := utils.GenerateDemoLedger(ctx, gofakeit.New(0), l, 1, utils.DefaultDemoSize); err != nil {
			fmt.Fprintf(os.Stderr, "Error seeding demo data: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	cron, err := jobs.ScheduleBalanceAudit(ctx, l, cfg.AuditSchedule)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error scheduling audit: %v\n", err)
		return subcommands.ExitFailure
	}
	defer cron.Stop()

	gin.SetMode(gin.ReleaseMode)
	router, err := routes.SetupRouter(l, log, cfg.PageSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up routes: %v\n", err)
		return subcommands.ExitFailure
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("store", c.store).Msg("server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed")
			return subcommands.ExitFailure
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}
