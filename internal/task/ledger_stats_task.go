package task

import (
	"context"
	"time"

	"repairshop/internal/service"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// LedgerStatsTask periodically refreshes the platform-wide ledger gauges
type LedgerStatsTask struct {
	stats   service.StatisticsService
	cron    *cron.Cron
	spec    string
	timeout time.Duration
	logger  *logrus.Logger
}

func NewLedgerStatsTask(stats service.StatisticsService, spec string, logger *logrus.Logger) *LedgerStatsTask {
	return &LedgerStatsTask{
		stats:   stats,
		cron:    cron.New(),
		spec:    spec,
		timeout: 30 * time.Second,
		logger:  logger,
	}
}

// Start runs a first refresh, then schedules the job
func (t *LedgerStatsTask) Start() error {
	go t.run()

	if _, err := t.cron.AddFunc(t.spec, t.run); err != nil {
		return err
	}
	t.cron.Start()
	t.logger.WithField("schedule", t.spec).Info("ledger statistics task started")
	return nil
}

// Stop waits for a running job to finish
func (t *LedgerStatsTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	t.logger.Info("ledger statistics task stopped")
}

func (t *LedgerStatsTask) run() {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	stats, err := t.stats.RefreshGauges(ctx)
	if err != nil {
		t.logger.WithError(err).Warn("ledger statistics refresh failed")
		return
	}
	t.logger.WithFields(logrus.Fields{
		"registers": stats.Registers,
		"active":    stats.ActiveRegisters,
		"balance":   stats.TotalBalance,
	}).Debug("ledger gauges refreshed")
}
