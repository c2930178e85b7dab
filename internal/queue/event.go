// Package queue defines ledger events and publishes them to RabbitMQ.
package queue

// Queue names
const (
	QueueMovementCreated   = "ledger.movement.created"
	QueueCashRegisterSwept = "ledger.cash_register.swept"
)

// MovementCreatedEvent is published once an invoice settlement has been committed.
type MovementCreatedEvent struct {
	MovementID     uint    `json:"movement_id"`
	OwnerID        uint    `json:"owner_id"`
	CashRegisterID uint    `json:"cash_register_id"`
	InvoiceID      uint    `json:"invoice_id"`
	ProductID      uint    `json:"product_id"`
	Value          float64 `json:"value"`
	RegisterTotal  float64 `json:"register_total"`
	CreatedAt      string  `json:"created_at"`
}

// CashRegisterSweptEvent is published once a deactivation sweep has been committed.
type CashRegisterSweptEvent struct {
	MovementID         uint    `json:"movement_id"`
	OwnerID            uint    `json:"owner_id"`
	CashRegisterID     uint    `json:"cash_register_id"`
	MainCashRegisterID uint    `json:"main_cash_register_id"`
	Surplus            float64 `json:"surplus"`
	MainTotal          float64 `json:"main_total"`
	CreatedAt          string  `json:"created_at"`
}
