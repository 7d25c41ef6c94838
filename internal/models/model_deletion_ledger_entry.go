package models

import "time"

// DeletionLedgerEntry records a payment id an operator removed (or the engine
// archived) so reconciliation does not recreate it within the retention window.
type DeletionLedgerEntry struct {
	ID           string    `gorm:"column:id;type:varchar(64);primary_key" json:"id"`
	SubscriberID string    `gorm:"column:subscriber_id;type:varchar(64);not null;index:idx_ledger_subscriber_payment,priority:1" json:"subscriber_id"`
	PaymentID    string    `gorm:"column:payment_id;type:varchar(128);not null;index:idx_ledger_subscriber_payment,priority:2" json:"payment_id"`
	DeletedAt    time.Time `gorm:"column:deleted_at;not null;index" json:"deleted_at"`
}

func (DeletionLedgerEntry) TableName() string {
	return "deletion_ledger"
}
