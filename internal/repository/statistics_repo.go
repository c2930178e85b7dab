package repository

import (
	"context"
	"fmt"

	"repairshop/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StatisticsRepository aggregates ledger figures. ownerID 0 aggregates every tenant.
type StatisticsRepository interface {
	GetLedgerStatistics(ctx context.Context, ownerID uint) (*model.LedgerStatistics, error)
}

type statisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

func (r *statisticsRepository) GetLedgerStatistics(ctx context.Context, ownerID uint) (*model.LedgerStatistics, error) {
	db := GetDB(ctx, r.db)
	owned := func(q *gorm.DB) *gorm.DB {
		if ownerID != 0 {
			return q.Where("cash_registers.user_id = ?", ownerID)
		}
		return q
	}

	// Sums travel as text so decimal precision survives every driver.
	var regs struct {
		Registers       int64
		ActiveRegisters int64
		MainBalance     string
		TotalBalance    string
	}
	if err := db.Table("cash_registers").Scopes(owned).
		Select("COUNT(*) as registers, " +
			"COALESCE(SUM(CASE WHEN status THEN 1 ELSE 0 END), 0) as active_registers, " +
			"COALESCE(CAST(SUM(CASE WHEN main THEN total ELSE 0 END) AS TEXT), '0') as main_balance, " +
			"COALESCE(CAST(SUM(total) AS TEXT), '0') as total_balance").
		Scan(&regs).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate registers: %w", err)
	}

	var mvs struct {
		Movements    int64
		SweptValue   string
		SettledValue string
	}
	if err := db.Table("movements").
		Joins("JOIN cash_registers ON cash_registers.id = movements.cash_register_id").
		Scopes(owned).
		Select("COUNT(*) as movements, " +
			"COALESCE(CAST(SUM(CASE WHEN movements.main_cash_register_id IS NOT NULL THEN movements.value ELSE 0 END) AS TEXT), '0') as swept_value, " +
			"COALESCE(CAST(SUM(CASE WHEN movements.main_cash_register_id IS NULL THEN movements.value ELSE 0 END) AS TEXT), '0') as settled_value").
		Scan(&mvs).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate movements: %w", err)
	}

	return &model.LedgerStatistics{
		Registers:       regs.Registers,
		ActiveRegisters: regs.ActiveRegisters,
		MainBalance:     parseSum(regs.MainBalance),
		TotalBalance:    parseSum(regs.TotalBalance),
		Movements:       mvs.Movements,
		SweptValue:      parseSum(mvs.SweptValue),
		SettledValue:    parseSum(mvs.SettledValue),
	}, nil
}

func parseSum(s string) float64 {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}
