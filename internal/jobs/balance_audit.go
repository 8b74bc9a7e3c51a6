// Package jobs holds scheduled background work.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"

	"github.com/sbilibin2017/gw-finance-ledger/internal/ledger"
	"github.com/sbilibin2017/gw-finance-ledger/internal/logger"
	"github.com/sbilibin2017/gw-finance-ledger/internal/models"
)

// DefaultAuditSchedule runs the audit once an hour.
const DefaultAuditSchedule = "@every 1h"

// BalanceLister lists every wallet with its cached balance.
type BalanceLister interface {
	ListBalances(ctx context.Context) ([]models.WalletBalance, error)
}

// BalanceRecomputer derives a wallet balance from its transactions and stores it.
type BalanceRecomputer interface {
	RecomputeBalance(ctx context.Context, walletID uuid.UUID) (decimal.Decimal, error)
}

// TxRunner runs fn inside a database transaction.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Drift is a wallet whose cached balance differed from its transaction sum.
type Drift struct {
	WalletID uuid.UUID
	Cached   decimal.Decimal
	Derived  decimal.Decimal
}

// AuditReport summarizes one audit run.
type AuditReport struct {
	Checked int
	Drifted []Drift
	Failed  int
}

// BalanceAuditor periodically recomputes every wallet balance and reports drift.
type BalanceAuditor struct {
	balances BalanceLister
	engine   BalanceRecomputer
	tx       TxRunner
	schedule string
	timeout  time.Duration
	cron     *cron.Cron
}

// Option configures a BalanceAuditor.
type Option func(*BalanceAuditor)

// WithSchedule sets the cron spec, e.g. "@every 30m" or "0 3 * * *".
func WithSchedule(spec string) Option {
	return func(a *BalanceAuditor) {
		if spec != "" {
			a.schedule = spec
		}
	}
}

// WithTimeout bounds a single audit run.
func WithTimeout(d time.Duration) Option {
	return func(a *BalanceAuditor) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// NewBalanceAuditor creates a BalanceAuditor. tx may be nil, then each wallet
// is recomputed without an enclosing transaction.
func NewBalanceAuditor(balances BalanceLister, engine BalanceRecomputer, tx TxRunner, opts ...Option) *BalanceAuditor {
	a := &BalanceAuditor{
		balances: balances,
		engine:   engine,
		tx:       tx,
		schedule: DefaultAuditSchedule,
		timeout:  5 * time.Minute,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RunOnce audits every wallet. A failing wallet is logged and skipped.
func (a *BalanceAuditor) RunOnce(ctx context.Context) (*AuditReport, error) {
	balances, err := a.balances.ListBalances(ctx)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}

	report := &AuditReport{}
	for _, wb := range balances {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		derived, err := a.recompute(ctx, wb.WalletID)
		if errors.Is(err, ledger.ErrWalletNotFound) {
			continue
		}
		report.Checked++
		if err != nil {
			report.Failed++
			logger.Log.Errorw("balance audit failed", "walletID", wb.WalletID, "error", err)
			continue
		}

		if !derived.Equal(wb.Balance) {
			report.Drifted = append(report.Drifted, Drift{WalletID: wb.WalletID, Cached: wb.Balance, Derived: derived})
			logger.Log.Warnw("balance drift repaired", "walletID", wb.WalletID, "cached", wb.Balance, "derived", derived)
		}
	}

	logger.Log.Infow("balance audit finished", "checked", report.Checked, "drifted", len(report.Drifted), "failed", report.Failed)
	return report, nil
}

func (a *BalanceAuditor) recompute(ctx context.Context, walletID uuid.UUID) (decimal.Decimal, error) {
	if a.tx == nil {
		return a.engine.RecomputeBalance(ctx, walletID)
	}

	var derived decimal.Decimal
	err := a.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		derived, err = a.engine.RecomputeBalance(ctx, walletID)
		return err
	})
	return derived, err
}

// Start schedules the audit. It returns an error for an invalid schedule.
func (a *BalanceAuditor) Start() error {
	c := cron.New()
	_, err := c.AddFunc(a.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()

		if _, err := a.RunOnce(ctx); err != nil {
			logger.Log.Errorw("balance audit job failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule balance audit %q: %w", a.schedule, err)
	}

	a.cron = c
	c.Start()
	logger.Log.Infow("balance audit scheduled", "schedule", a.schedule)
	return nil
}

// Stop unschedules the audit and waits for a running audit until ctx is done.
func (a *BalanceAuditor) Stop(ctx context.Context) {
	if a.cron == nil {
		return
	}
	select {
	case <-a.cron.Stop().Done():
	case <-ctx.Done():
		logger.Log.Warnw("balance audit still running at shutdown")
	}
}
