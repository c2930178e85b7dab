package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product status values of a repair ticket
const (
	ProductStatusPending       = "pending"
	ProductStatusInProgress    = "inProgress"
	ProductStatusClosedSuccess = "closedSuccess"
	ProductStatusClosedFail    = "closedFail"
)

// Product is the device brought in for repair.
type Product struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	SerialNumber string    `gorm:"type:varchar(255)" json:"serialNumber"`
	Status       string    `gorm:"type:varchar(30);not null;default:'pending'" json:"status"`
	ClientID     *uint     `gorm:"index" json:"clientId"`
	PartnerID    uint      `gorm:"not null;index" json:"partnerId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// RepairTicket carries the costing of a product repair.
type RepairTicket struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Code          string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	ProductID     uint            `gorm:"not null;uniqueIndex" json:"productId"`
	Product       *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	EstimatedCost decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"estimatedCost"`
	TotalCost     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"totalCost"`
	Payed         bool            `gorm:"not null" json:"payed"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}
