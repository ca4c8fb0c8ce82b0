// Package jobs schedules background work against the ledger.
package jobs

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/valeriaulyamaeva/finance-ledger/internal/ledger"
	"github.com/valeriaulyamaeva/finance-ledger/internal/logger"
)

// BalanceAudit returns a job auditing every account. Drift is reported by
// Ledger.Audit; the job itself only logs failures.
func BalanceAudit(ctx context.Context, l *ledger.Ledger) func() {
	return func() {
		if _, err := l.Audit(ctx, 0); err != nil {
			log := logger.FromContext(ctx)
			log.Error().Err(err).Msg("scheduled balance audit failed")
		}
	}
}

// ScheduleBalanceAudit starts a cron running the balance audit on schedule.
// The caller stops the returned cron.
func ScheduleBalanceAudit(ctx context.Context, l *ledger.Ledger, schedule string) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(schedule, BalanceAudit(ctx, l)); err != nil {
		return nil, fmt.Errorf("schedule balance audit %q: %w", schedule, err)
	}
	c.Start()
	log := logger.FromContext(ctx)
	log.Info().Str("schedule", schedule).Msg("balance audit scheduled")
	return c, nil
}
