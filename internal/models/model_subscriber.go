package models

import (
	"time"

	"github.com/fatflowers/ispbill/pkg/types"
	"gorm.io/datatypes"
)

type ContactInfo struct {
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
	// NationalID feeds the credential secret derivation.
	NationalID string `json:"national_id,omitempty"`
}

// Subscriber is a customer on a package. PackageID may reference a package
// that no longer exists; that is a valid steady state.
type Subscriber struct {
	ID               string                          `gorm:"column:id;type:varchar(64);primary_key" json:"id"`
	Name             string                          `gorm:"column:name;type:varchar(128);not null" json:"name"`
	ContactInfo      datatypes.JSONType[ContactInfo] `gorm:"column:contact_info;type:jsonb" json:"contact_info"`
	PackageID        string                          `gorm:"column:package_id;type:varchar(64);index" json:"package_id"`
	InstallationCost int64                           `gorm:"column:installation_cost;type:bigint;not null;default:0" json:"installation_cost"`
	Discount         int64                           `gorm:"column:discount;type:bigint;not null;default:0" json:"discount"`
	DiscountType     types.DiscountType              `gorm:"column:discount_type;type:varchar(16);not null" json:"discount_type"`
	// DueDate mirrors the due date of the latest generated payment.
	DueDate          *time.Time `gorm:"column:due_date;default:null" json:"due_date"`
	Active           bool       `gorm:"column:active;not null" json:"active"`
	CredentialSecret string     `gorm:"column:credential_secret;type:varchar(64)" json:"credential_secret"`
	// Payments is loaded and saved by the store, ordered by period.
	Payments  []Payment `gorm:"-" json:"payments"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Subscriber) TableName() string {
	return "subscriber"
}

// Clone copies the subscriber including its payment list so passes can
// modify the copy without aliasing the input.
func (s *Subscriber) Clone() Subscriber {
	cp := *s
	if s.Payments != nil {
		cp.Payments = make([]Payment, len(s.Payments))
		for i := range s.Payments {
			cp.Payments[i] = s.Payments[i].Clone()
		}
	}
	if s.DueDate != nil {
		d := *s.DueDate
		cp.DueDate = &d
	}
	return cp
}

// FindPayment returns the index of the live (non-archived) payment with id, or -1.
func (s *Subscriber) FindPayment(id string) int {
	for i := range s.Payments {
		if s.Payments[i].ID == id && !s.Payments[i].Archived {
			return i
		}
	}
	return -1
}

// HasPaidBefore reports whether any payment before periodKey is Paid.
func (s *Subscriber) HasPaidBefore(periodKey string) bool {
	for i := range s.Payments {
		p := &s.Payments[i]
		if p.Status == types.PaymentStatusPaid && p.PeriodKey < periodKey {
			return true
		}
	}
	return false
}
