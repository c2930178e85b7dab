package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment methods
const (
	PaymentMethodCash   = "cash"
	PaymentMethodCheque = "cheque"
)

// Invoice is issued when a ticket closes successfully. Status is the paid flag;
// it flips to true once, when a movement settles the invoice.
type Invoice struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Num            string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"num"`
	Date           time.Time       `json:"date"`
	Total          decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total"`
	Status         bool            `gorm:"not null" json:"status"`
	PaymentMethode string          `gorm:"column:payment_methode;type:varchar(20);not null" json:"paymentMethode"`
	Notes          string          `gorm:"type:text" json:"notes"`
	TicketID       uint            `gorm:"not null;index" json:"ticketId"`
	Ticket         *RepairTicket   `gorm:"foreignKey:TicketID" json:"ticket,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// InvoiceSequence counts the invoices issued under one number prefix.
type InvoiceSequence struct {
	Prefix string `gorm:"primaryKey;type:varchar(20)"`
	Issued int64  `gorm:"not null"`
}
