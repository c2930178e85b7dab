package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"repairshop/internal/logger"
	"repairshop/internal/model"
	"repairshop/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStats struct {
	service.StatisticsService
	calls chan struct{}
	err   error
}

func (s *stubStats) RefreshGauges(context.Context) (*model.LedgerStatistics, error) {
	s.calls <- struct{}{}
	if s.err != nil {
		return nil, s.err
	}
	return &model.LedgerStatistics{Registers: 2}, nil
}

func TestLedgerStatsTask_RefreshesOnStart(t *testing.T) {
	stats := &stubStats{calls: make(chan struct{}, 4)}
	task := NewLedgerStatsTask(stats, "@every 1h", logger.Discard())

	require.NoError(t, task.Start())
	defer task.Stop()

	select {
	case <-stats.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("gauges were not refreshed on start")
	}
}

func TestLedgerStatsTask_FailedRefreshIsNotFatal(t *testing.T) {
	stats := &stubStats{calls: make(chan struct{}, 1), err: errors.New("db down")}
	task := NewLedgerStatsTask(stats, "@every 1h", logger.Discard())

	task.run()
	assert.Len(t, stats.calls, 1)
}

func TestLedgerStatsTask_InvalidSchedule(t *testing.T) {
	stats := &stubStats{calls: make(chan struct{}, 1)}
	task := NewLedgerStatsTask(stats, "every now and then", logger.Discard())

	assert.Error(t, task.Start())
}
