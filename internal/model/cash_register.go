package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MainCashRegisterName is given to the register provisioned at partner onboarding
const MainCashRegisterName = "Caisse principale"

// CashRegister is a tenant register. Exactly one register per tenant is Main.
// Total starts at InitialValue and only moves through movements and sweeps.
type CashRegister struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"type:varchar(255);not null;uniqueIndex:idx_cash_registers_owner_name" json:"name"`
	BankAccount  string          `gorm:"type:varchar(255)" json:"bankAccount"`
	InitialValue decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"initialValue"`
	Status       bool            `gorm:"not null" json:"status"`
	Main         bool            `gorm:"not null;index" json:"main"`
	Total        decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total"`
	UserID       uint            `gorm:"not null;uniqueIndex:idx_cash_registers_owner_name" json:"userId"`
	CreatedAt    time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// Movement is an immutable ledger entry.
// With MainCashRegisterID set it is a sweep from CashRegisterID into the main register;
// otherwise it is an invoice settlement credited to CashRegisterID.
type Movement struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	Value              decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"value"`
	CashRegisterID     uint            `gorm:"not null;index" json:"cashRegisterId"`
	MainCashRegisterID *uint           `gorm:"index" json:"mainCashRegisterId"`
	ProductID          *uint           `gorm:"index" json:"productId"`
	CreatedAt          time.Time       `gorm:"index" json:"createdAt"`
}

// IsSweep reports whether the movement moved surplus into a main register
func (m Movement) IsSweep() bool {
	return m.MainCashRegisterID != nil
}
