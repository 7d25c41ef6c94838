package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/fatflowers/ispbill/internal/app/service/billing_log"
	"github.com/fatflowers/ispbill/internal/models"
	"github.com/fatflowers/ispbill/pkg/period"
	"github.com/fatflowers/ispbill/pkg/tool"
	"github.com/fatflowers/ispbill/pkg/types"
	"gorm.io/datatypes"
)

type MarkPaidRequest struct {
	SubscriberID string `json:"-"`
	PaymentID    string `json:"-"`
	// PaidDate defaults to today.
	PaidDate *time.Time `json:"paid_date"`
	// ConfirmedAmount replaces the discounted amount; nil keeps the amount due.
	ConfirmedAmount *int64 `json:"confirmed_amount"`
}

// lookupPayment finds the live payment a payment command targets. The reason
// is set when the command has nothing to act on.
func lookupPayment(m *mutation, subscriberID, paymentID string) (*models.Subscriber, int, string) {
	_, sub := m.subscriber(subscriberID)
	if sub == nil {
		return nil, -1, "subscriber not found"
	}
	idx := sub.FindPayment(paymentID)
	if idx >= 0 {
		return sub, idx, ""
	}
	for i := range sub.Payments {
		if sub.Payments[i].ID == paymentID {
			return sub, -1, "payment is archived"
		}
	}
	return sub, -1, "payment not found"
}

// MarkPaid settles a payment. Marking an already paid payment is a no-op.
func (s *Service) MarkPaid(ctx context.Context, req *MarkPaidRequest) (CommandResult, error) {
	if req.ConfirmedAmount != nil && *req.ConfirmedAmount < 0 {
		return CommandResult{}, fmt.Errorf("%w: confirmed_amount must not be negative", ErrInvalidArgument)
	}
	return s.exec(ctx, types.BillingCommandMarkPaid, func(ctx context.Context, m *mutation) (CommandResult, error) {
		sub, idx, reason := lookupPayment(m, req.SubscriberID, req.PaymentID)
		if reason != "" {
			return redundant(types.BillingCommandMarkPaid, reason), nil
		}
		p := &sub.Payments[idx]
		if p.Status == types.PaymentStatusPaid {
			res := redundant(types.BillingCommandMarkPaid, "payment already paid")
			res.SubscriberID, res.PaymentID = sub.ID, p.ID
			return res, nil
		}

		before := p.Clone()
		paid := period.DateOnly(m.now)
		if req.PaidDate != nil {
			paid = period.DateOnly(*req.PaidDate)
		}
		p.Status = types.PaymentStatusPaid
		p.PaidDate = &paid
		if req.ConfirmedAmount != nil {
			p.DiscountedAmount = *req.ConfirmedAmount
		}
		m.touchSubscriber(sub.ID)

		return CommandResult{
			Applied:      true,
			SubscriberID: sub.ID,
			PaymentID:    p.ID,
			Audit:        &billing_log.Entry{Before: before, After: p.Clone()},
		}, nil
	})
}

// MarkUnpaid reopens a payment: Overdue when today is past its due date,
// Pending otherwise. A missing payment is silently ignored.
func (s *Service) MarkUnpaid(ctx context.Context, subscriberID, paymentID string) (CommandResult, error) {
	return s.exec(ctx, types.BillingCommandMarkUnpaid, func(ctx context.Context, m *mutation) (CommandResult, error) {
		sub, idx, reason := lookupPayment(m, subscriberID, paymentID)
		if reason != "" {
			// silent: no warning for a missing payment
			return CommandResult{Command: types.BillingCommandMarkUnpaid}, nil
		}
		p := &sub.Payments[idx]
		today := period.DateOnly(m.now)
		status := types.PaymentStatusPending
		if today.After(p.DueDate) {
			status = types.PaymentStatusOverdue
		}
		if p.Status == status && p.PaidDate == nil {
			return CommandResult{Command: types.BillingCommandMarkUnpaid, SubscriberID: sub.ID, PaymentID: p.ID}, nil
		}

		before := p.Clone()
		p.Status = status
		p.PaidDate = nil
		m.touchSubscriber(sub.ID)

		return CommandResult{
			Applied:      true,
			SubscriberID: sub.ID,
			PaymentID:    p.ID,
			Audit:        &billing_log.Entry{Before: before, After: p.Clone()},
		}, nil
	})
}

// DeletePayment removes a payment and records it in the deletion ledger so
// reconciliation does not recreate it. A missing payment is silently ignored.
func (s *Service) DeletePayment(ctx context.Context, subscriberID, paymentID string) (CommandResult, error) {
	return s.exec(ctx, types.BillingCommandDeletePayment, func(ctx context.Context, m *mutation) (CommandResult, error) {
		sub, idx, reason := lookupPayment(m, subscriberID, paymentID)
		if reason != "" {
			return CommandResult{Command: types.BillingCommandDeletePayment}, nil
		}
		before := sub.Payments[idx].Clone()
		sub.Payments = append(sub.Payments[:idx], sub.Payments[idx+1:]...)
		m.ledger.Record(sub.ID, paymentID, m.now)
		m.touchSubscriber(sub.ID)

		return CommandResult{
			Applied:      true,
			SubscriberID: sub.ID,
			PaymentID:    paymentID,
			Audit:        &billing_log.Entry{Before: before},
		}, nil
	})
}

type SubscriberInput struct {
	Name             string             `json:"name"`
	ContactInfo      models.ContactInfo `json:"contact_info"`
	PackageID        string             `json:"package_id"`
	InstallationCost int64              `json:"installation_cost"`
	Discount         int64              `json:"discount"`
	// DiscountType defaults to one-time on add and is kept on edit when empty.
	DiscountType types.DiscountType `json:"discount_type"`
	// Active defaults to true on add and is kept on edit when nil.
	Active *bool `json:"active"`
	// CreatedAt backdates an imported subscriber; it anchors every due date.
	// Ignored on edit.
	CreatedAt *time.Time `json:"created_at"`
}

func (in *SubscriberInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidArgument)
	}
	if in.InstallationCost < 0 || in.Discount < 0 {
		return fmt.Errorf("%w: amounts must not be negative", ErrInvalidArgument)
	}
	if in.DiscountType != "" && !in.DiscountType.Valid() {
		return fmt.Errorf("%w: unknown discount_type %q", ErrInvalidArgument, in.DiscountType)
	}
	return nil
}

// AddSubscriber creates a subscriber on an existing package and issues its
// credential secret.
func (s *Service) AddSubscriber(ctx context.Context, in SubscriberInput) (CommandResult, error) {
	if err := in.normalize(); err != nil {
		return CommandResult{}, err
	}
	return s.exec(ctx, types.BillingCommandAddSubscriber, func(ctx context.Context, m *mutation) (CommandResult, error) {
		if _, p := m.pkg(in.PackageID); p == nil {
			return CommandResult{}, fmt.Errorf("%w: package %q not found", ErrInvalidArgument, in.PackageID)
		}
		created := m.now
		if in.CreatedAt != nil {
			created = in.CreatedAt.UTC()
		}
		sub := models.Subscriber{
			ID:               tool.GenerateUUIDV7(),
			Name:             in.Name,
			ContactInfo:      datatypes.NewJSONType(in.ContactInfo),
			PackageID:        in.PackageID,
			InstallationCost: in.InstallationCost,
			Discount:         in.Discount,
			DiscountType:     lo.CoalesceOrEmpty(in.DiscountType, types.DiscountTypeOneTime),
			Active:           in.Active == nil || *in.Active,
			CreatedAt:        created,
		}
		if _, err := s.credentials.Issue(&sub); err != nil {
			return CommandResult{}, err
		}
		m.snap.Subscribers = append(m.snap.Subscribers, sub)
		m.touchSubscriber(sub.ID)

		return CommandResult{
			Applied:      true,
			SubscriberID: sub.ID,
			PackageID:    sub.PackageID,
			Audit:        &billing_log.Entry{After: withoutPayments(sub)},
		}, nil
	})
}

// EditSubscriber replaces the editable fields. Repointing to another package
// requires the package to exist; keeping a dangling reference is allowed.
func (s *Service) EditSubscriber(ctx context.Context, id string, in SubscriberInput) (CommandResult, error) {
	if err := in.normalize(); err != nil {
		return CommandResult{}, err
	}
	return s.exec(ctx, types.BillingCommandEditSubscriber, func(ctx context.Context, m *mutation) (CommandResult, error) {
		_, sub := m.subscriber(id)
		if sub == nil {
			return CommandResult{}, fmt.Errorf("%w: subscriber %q", ErrNotFound, id)
		}
		if in.PackageID != sub.PackageID {
			if _, p := m.pkg(in.PackageID); p == nil {
				return CommandResult{}, fmt.Errorf("%w: package %q not found", ErrInvalidArgument, in.PackageID)
			}
		}
		before := withoutPayments(*sub)

		sub.Name = in.Name
		sub.ContactInfo = datatypes.NewJSONType(in.ContactInfo)
		sub.PackageID = in.PackageID
		sub.InstallationCost = in.InstallationCost
		if in.DiscountType != "" {
			sub.DiscountType = in.DiscountType
		}
		if in.Active != nil {
			sub.Active = *in.Active
		}
		if in.Discount != sub.Discount {
			sub.Discount = in.Discount
			rediscountOpenPayments(sub)
		}
		m.touchSubscriber(sub.ID)

		return CommandResult{
			Applied:      true,
			SubscriberID: sub.ID,
			PackageID:    sub.PackageID,
			Audit:        &billing_log.Entry{Before: before, After: withoutPayments(*sub)},
		}, nil
	})
}

// DeleteSubscriber archives every live payment of the subscriber, records
// each in the ledger, then removes the subscriber. Archived rows stay in
// storage as history.
func (s *Service) DeleteSubscriber(ctx context.Context, id string) (CommandResult, error) {
	return s.exec(ctx, types.BillingCommandDeleteSubscriber, func(ctx context.Context, m *mutation) (CommandResult, error) {
		i, sub := m.subscriber(id)
		if sub == nil {
			return CommandResult{}, fmt.Errorf("%w: subscriber %q", ErrNotFound, id)
		}
		before := withoutPayments(*sub)
		archived := 0
		for j := range sub.Payments {
			p := &sub.Payments[j]
			if p.Archived {
				continue
			}
			p.Archived = true
			m.ledger.Record(sub.ID, p.ID, m.now)
			archived++
		}
		m.removeSubscriber(i)

		return CommandResult{
			Applied:      true,
			SubscriberID: id,
			PackageID:    before.PackageID,
			Audit:        &billing_log.Entry{Before: before, Extra: map[string]any{"archived_payments": archived}},
		}, nil
	})
}

type PackageInput struct {
	Name  string `json:"name"`
	Speed string `json:"speed"`
	Cost  int64  `json:"cost"`
}

func (in *PackageInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidArgument)
	}
	if in.Cost < 0 {
		return fmt.Errorf("%w: cost must not be negative", ErrInvalidArgument)
	}
	return nil
}

// AddPackage creates a package. Ids are always new, so a deleted package's
// archived payments never attach to a recreated one.
func (s *Service) AddPackage(ctx context.Context, in PackageInput) (CommandResult, error) {
	if err := in.normalize(); err != nil {
		return CommandResult{}, err
	}
	return s.exec(ctx, types.BillingCommandAddPackage, func(ctx context.Context, m *mutation) (CommandResult, error) {
		p := models.Package{
			ID:        tool.GenerateUUIDV7(),
			Name:      in.Name,
			Speed:     in.Speed,
			Cost:      in.Cost,
			CreatedAt: m.now,
		}
		m.snap.Packages = append(m.snap.Packages, p)
		m.touchPackage(p.ID)
		return CommandResult{Applied: true, PackageID: p.ID, Audit: &billing_log.Entry{After: p}}, nil
	})
}

// EditPackage updates a package; reconciliation reprices open payments.
func (s *Service) EditPackage(ctx context.Context, id string, in PackageInput) (CommandResult, error) {
	if err := in.normalize(); err != nil {
		return CommandResult{}, err
	}
	return s.exec(ctx, types.BillingCommandEditPackage, func(ctx context.Context, m *mutation) (CommandResult, error) {
		_, p := m.pkg(id)
		if p == nil {
			return CommandResult{}, fmt.Errorf("%w: package %q", ErrNotFound, id)
		}
		before := *p
		p.Name, p.Speed, p.Cost = in.Name, in.Speed, in.Cost
		m.touchPackage(p.ID)
		return CommandResult{Applied: true, PackageID: p.ID, Audit: &billing_log.Entry{Before: before, After: *p}}, nil
	})
}

// DeletePackage removes a package; reconciliation archives the open payments
// of its subscribers.
func (s *Service) DeletePackage(ctx context.Context, id string) (CommandResult, error) {
	return s.exec(ctx, types.BillingCommandDeletePackage, func(ctx context.Context, m *mutation) (CommandResult, error) {
		i, p := m.pkg(id)
		if p == nil {
			return CommandResult{}, fmt.Errorf("%w: package %q", ErrNotFound, id)
		}
		before := *p
		m.removePackage(i)
		return CommandResult{Applied: true, PackageID: id, Audit: &billing_log.Entry{Before: before}}, nil
	})
}

// Reconcile runs a reconciliation cycle without a mutation.
func (s *Service) Reconcile(ctx context.Context) (CommandResult, error) {
	return s.exec(ctx, types.BillingCommandReconcile, func(ctx context.Context, m *mutation) (CommandResult, error) {
		return CommandResult{}, nil
	})
}

// rediscountOpenPayments applies a changed discount to the payments still
// owed, the way a price change does. Paid and archived payments keep theirs.
func rediscountOpenPayments(sub *models.Subscriber) {
	for i := range sub.Payments {
		p := &sub.Payments[i]
		if p.Archived || !p.Status.Unsettled() {
			continue
		}
		p.DiscountSnapshot = sub.Discount
		p.DiscountedAmount = max(p.CostSnapshot-sub.Discount, 0)
	}
}

func withoutPayments(sub models.Subscriber) models.Subscriber {
	sub.Payments = nil
	return sub
}
