// Package jobs hosts the background loops that run alongside the HTTP
// server. Each loop owns its ticker and stops with the process context.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/aliumairdev/saaskit/internal/domain"
	"github.com/aliumairdev/saaskit/internal/store"
)

// trialWarnDays is how close to the trial end an account gets flagged.
const trialWarnDays = 3

type TrialNotifier interface {
	TrialExpiring(ctx context.Context, acct *domain.Account) error
}

type NoopTrialNotifier struct{}

func (NoopTrialNotifier) TrialExpiring(context.Context, *domain.Account) error { return nil }

// TrialChecker periodically sweeps accounts still on trial and hands the
// ones about to lapse to the notifier. One bad account never stops the
// sweep.
type TrialChecker struct {
	Store    *store.Store
	Notifier TrialNotifier
	Interval time.Duration

	now func() time.Time
}

func NewTrialChecker(st *store.Store, notifier TrialNotifier, interval time.Duration) *TrialChecker {
	if notifier == nil {
		notifier = NoopTrialNotifier{}
	}
	return &TrialChecker{Store: st, Notifier: notifier, Interval: interval, now: time.Now}
}

func (c *TrialChecker) Run(ctx context.Context) {
	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()

	slog.Info("trial checker started", "interval", c.Interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("trial checker stopped")
			return
		case <-ticker.C:
			if err := c.CheckOnce(ctx); err != nil {
				slog.Error("trial sweep failed", "error", err)
			}
		}
	}
}

// CheckOnce runs a single sweep. Exported so an operator endpoint or test
// can trigger it without the ticker.
func (c *TrialChecker) CheckOnce(ctx context.Context) error {
	accounts, err := c.Store.Accounts().ListOnTrial(ctx)
	if err != nil {
		return err
	}

	now := c.now().UTC()
	for i := range accounts {
		acct := &accounts[i]
		days := acct.TrialDaysRemaining(now)
		if days > trialWarnDays {
			continue
		}
		if err := c.Notifier.TrialExpiring(ctx, acct); err != nil {
			slog.Error("trial notification failed", "account_id", acct.ID, "error", err)
			continue
		}
		slog.Info("trial expiring", "account_id", acct.ID, "days_remaining", days)
	}
	return nil
}
