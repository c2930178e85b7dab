package database

import (
	"repairshop/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string, log *logrus.Logger) (*gorm.DB, error) {
	level := gormlogger.Warn
	if log.IsLevelEnabled(logrus.DebugLevel) {
		level = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		log.WithError(err).Warn("failed to auto-migrate models")
	}

	return db, nil
}

// Migrate creates or updates the schema of every persisted model
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.UserRoleLink{},
		&model.Menu{},
		&model.Button{},
		&model.Role{},
		&model.PermissionAssignment{},
		&model.CashRegister{},
		&model.Product{},
		&model.RepairTicket{},
		&model.Invoice{},
		&model.InvoiceSequence{},
		&model.Movement{},
		&model.AuditLog{},
	)
}
