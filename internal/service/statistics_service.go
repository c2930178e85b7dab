package service

import (
	"context"
	"fmt"

	"repairshop/internal/metrics"
	"repairshop/internal/model"
	"repairshop/internal/repository"
)

type StatisticsService interface {
	GetLedgerStatistics(ctx context.Context, ownerID uint) (*model.LedgerStatistics, error)
	// RefreshGauges recomputes the platform-wide ledger gauges.
	RefreshGauges(ctx context.Context) (*model.LedgerStatistics, error)
}

type statisticsService struct {
	repo    repository.StatisticsRepository
	metrics *metrics.Metrics
}

func NewStatisticsService(repo repository.StatisticsRepository, m *metrics.Metrics) StatisticsService {
	return &statisticsService{repo: repo, metrics: m}
}

func (s *statisticsService) GetLedgerStatistics(ctx context.Context, ownerID uint) (*model.LedgerStatistics, error) {
	if ownerID == 0 {
		return nil, validationError()
	}
	stats, err := s.repo.GetLedgerStatistics(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute ledger statistics: %w", err)
	}
	return stats, nil
}

func (s *statisticsService) RefreshGauges(ctx context.Context) (*model.LedgerStatistics, error) {
	stats, err := s.repo.GetLedgerStatistics(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to compute ledger statistics: %w", err)
	}
	s.metrics.RegistersTotal.Set(float64(stats.Registers))
	s.metrics.RegistersActive.Set(float64(stats.ActiveRegisters))
	s.metrics.LedgerBalanceTotal.Set(stats.TotalBalance)
	return stats, nil
}
