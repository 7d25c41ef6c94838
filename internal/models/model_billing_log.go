package models

import (
	"time"

	"github.com/fatflowers/ispbill/pkg/types"
	"gorm.io/datatypes"
)

// BillingLog records one applied command.
// Use case: auditing operator actions and troubleshooting.
type BillingLog struct {
	ID           string               `gorm:"column:id;type:varchar(64);primary_key" json:"id"`
	Command      types.BillingCommand `gorm:"column:command;type:varchar(32);not null;index" json:"command"`
	SubscriberID string               `gorm:"column:subscriber_id;type:varchar(64);index" json:"subscriber_id"`
	PaymentID    string               `gorm:"column:payment_id;type:varchar(128)" json:"payment_id"`
	PackageID    string               `gorm:"column:package_id;type:varchar(64)" json:"package_id"`
	OperatorID   string               `gorm:"column:operator_id;type:varchar(64)" json:"operator_id"`
	// Before/After hold the touched record (payment, subscriber or package) as JSON.
	Before datatypes.JSON `gorm:"column:before;type:jsonb" json:"before"`
	After  datatypes.JSON `gorm:"column:after;type:jsonb" json:"after"`
	// Extra stores reconciliation counters and command details.
	Extra     datatypes.JSONMap `gorm:"column:extra;type:jsonb" json:"extra"`
	CreatedAt time.Time         `json:"created_at"`
}

func (BillingLog) TableName() string {
	return "billing_log"
}
