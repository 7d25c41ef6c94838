package models

import (
	"time"

	"github.com/fatflowers/ispbill/pkg/types"
)

// Payment is one billing obligation of a subscriber.
//
// ID is derived from (subscriber, period) and is unique among non-archived
// payments of a subscriber. An archived row and a regenerated row may share
// ID, so RecordID is the storage key.
type Payment struct {
	RecordID     string `gorm:"column:record_id;type:varchar(64);primary_key" json:"record_id"`
	ID           string `gorm:"column:payment_id;type:varchar(128);not null;index:idx_payment_subscriber_payment,priority:2" json:"id"`
	SubscriberID string `gorm:"column:subscriber_id;type:varchar(64);not null;index:idx_payment_subscriber_payment,priority:1" json:"subscriber_id"`
	PackageID    string `gorm:"column:package_id;type:varchar(64)" json:"package_id"`
	// Snapshots capture the package at the time relevant to this payment.
	PackageNameSnapshot string              `gorm:"column:package_name_snapshot;type:varchar(128)" json:"package_name_snapshot"`
	CostSnapshot        int64               `gorm:"column:cost_snapshot;type:bigint;not null" json:"cost_snapshot"`
	DiscountSnapshot    int64               `gorm:"column:discount_snapshot;type:bigint;not null" json:"discount_snapshot"`
	DiscountedAmount    int64               `gorm:"column:discounted_amount;type:bigint;not null" json:"discounted_amount"`
	Status              types.PaymentStatus `gorm:"column:status;type:varchar(16);not null" json:"status"`
	// PeriodKey is the "YYYY-MM" form of PeriodDate.
	PeriodKey  string     `gorm:"column:period_key;type:varchar(7);not null;index" json:"period_key"`
	PeriodDate time.Time  `gorm:"column:period_date;not null" json:"period_date"`
	DueDate    time.Time  `gorm:"column:due_date;not null" json:"due_date"`
	PaidDate   *time.Time `gorm:"column:paid_date;default:null" json:"paid_date"`
	Archived   bool       `gorm:"column:archived;not null;default:false" json:"archived"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (Payment) TableName() string {
	return "payment"
}

func (p *Payment) Clone() Payment {
	cp := *p
	if p.PaidDate != nil {
		d := *p.PaidDate
		cp.PaidDate = &d
	}
	return cp
}

// Frozen reports whether reconciliation must leave the payment untouched.
func (p *Payment) Frozen() bool {
	return p.Archived || p.Status == types.PaymentStatusPaid
}

// EffectiveStatus projects Overdue at read time: a Pending payment whose due
// date is before today reads as Overdue without changing stored state.
func (p *Payment) EffectiveStatus(today time.Time) types.PaymentStatus {
	if p.Status == types.PaymentStatusPending && p.DueDate.Before(today) {
		return types.PaymentStatusOverdue
	}
	return p.Status
}
