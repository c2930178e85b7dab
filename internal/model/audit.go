package model

import (
	"time"
)

const (
	ActionCreateCashRegister = "CREATE_CASH_REGISTER"
	ActionUpdateCashRegister = "UPDATE_CASH_REGISTER"
	ActionDeleteCashRegister = "DELETE_CASH_REGISTER"
	ActionSweepCashRegister  = "SWEEP_CASH_REGISTER"
	ActionCreateMovement     = "CREATE_MOVEMENT"
	ActionCreateRole         = "CREATE_ROLE"
	ActionUpdateRole         = "UPDATE_ROLE"
	ActionDeleteRole         = "DELETE_ROLE"
	ActionIssueInvoice       = "ISSUE_INVOICE"
)

// AuditLog tracks who changed the ledger or the permission graph, and when
type AuditLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     *uint     `gorm:"index" json:"userId"` // nil for system actions
	User       *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Action     string    `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string    `gorm:"type:varchar(50);index" json:"entityId"`
	EntityName string    `gorm:"type:varchar(255)" json:"entityName,omitempty"`
	Details    string    `gorm:"type:text" json:"details"` // JSON payload
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
}
