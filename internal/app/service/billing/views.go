package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/fatflowers/ispbill/internal/app/service/reconcile"
	"github.com/fatflowers/ispbill/internal/models"
	"github.com/fatflowers/ispbill/pkg/period"
	"github.com/fatflowers/ispbill/pkg/types"
)

// PaymentView is a payment as rendered to collaborators, with the overdue
// projection already applied.
type PaymentView struct {
	models.Payment
	EffectiveStatus types.PaymentStatus `json:"effective_status"`
}

type SubscriberView struct {
	models.Subscriber
	Payments []PaymentView `json:"payments"`
	// PackageName is empty when the package no longer exists.
	PackageName     string `json:"package_name"`
	PackageDangling bool   `json:"package_dangling"`
	// Outstanding sums the discounted amounts of open, non-archived payments.
	Outstanding int64 `json:"outstanding"`
}

func newPaymentView(p models.Payment, today time.Time) PaymentView {
	return PaymentView{Payment: p.Clone(), EffectiveStatus: p.EffectiveStatus(today)}
}

func newSubscriberView(sub *models.Subscriber, catalog reconcile.Catalog, today time.Time) SubscriberView {
	v := SubscriberView{Subscriber: withoutPayments(sub.Clone())}
	v.Payments = lo.Map(sub.Payments, func(p models.Payment, _ int) PaymentView { return newPaymentView(p, today) })
	switch ref := catalog.Resolve(sub.PackageID).(type) {
	case reconcile.Resolved:
		v.PackageName = ref.Package.Name
	case reconcile.Dangling:
		v.PackageDangling = true
	}
	for _, p := range sub.Payments {
		if !p.Archived && p.Status.Unsettled() {
			v.Outstanding += p.DiscountedAmount
		}
	}
	return v
}

type ListSubscribersRequest struct {
	PackageID string `form:"package_id"`
	Active    *bool  `form:"active"`
	// Query matches name, phone or email, case-insensitively.
	Query string `form:"q"`
	// Status keeps subscribers having at least one payment in this effective status.
	Status types.PaymentStatus `form:"status"`
}

func (r *ListSubscribersRequest) match(v *SubscriberView) bool {
	if r.PackageID != "" && v.PackageID != r.PackageID {
		return false
	}
	if r.Active != nil && v.Active != *r.Active {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(r.Query)); q != "" {
		ci := v.ContactInfo.Data()
		if !lo.SomeBy([]string{v.Name, ci.Phone, ci.Email}, func(s string) bool {
			return strings.Contains(strings.ToLower(s), q)
		}) {
			return false
		}
	}
	if r.Status != "" && !lo.SomeBy(v.Payments, func(p PaymentView) bool {
		return !p.Archived && p.EffectiveStatus == r.Status
	}) {
		return false
	}
	return true
}

// ListSubscribers returns the reconciled subscribers in creation order.
func (s *Service) ListSubscribers(ctx context.Context, req *ListSubscribersRequest) ([]SubscriberView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}
	today := period.DateOnly(s.clock.Now(ctx))
	catalog := reconcile.NewCatalog(s.snap.Packages)
	out := make([]SubscriberView, 0, len(s.snap.Subscribers))
	for i := range s.snap.Subscribers {
		v := newSubscriberView(&s.snap.Subscribers[i], catalog, today)
		if req == nil || req.match(&v) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *Service) GetSubscriber(ctx context.Context, id string) (*SubscriberView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}
	sub, ok := lo.Find(s.snap.Subscribers, func(sub models.Subscriber) bool { return sub.ID == id })
	if !ok {
		return nil, fmt.Errorf("%w: subscriber %q", ErrNotFound, id)
	}
	v := newSubscriberView(&sub, reconcile.NewCatalog(s.snap.Packages), period.DateOnly(s.clock.Now(ctx)))
	return &v, nil
}

// PaymentHistory reads every stored payment of a subscriber, including the
// archived history left behind by a deleted subscriber.
func (s *Service) PaymentHistory(ctx context.Context, subscriberID string) ([]PaymentView, error) {
	payments, err := s.store.ListPayments(ctx, subscriberID)
	if err != nil {
		return nil, err
	}
	today := period.DateOnly(s.clock.Now(ctx))
	return lo.Map(payments, func(p models.Payment, _ int) PaymentView { return newPaymentView(p, today) }), nil
}

func (s *Service) ListPackages(ctx context.Context) ([]models.Package, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}
	return append([]models.Package(nil), s.snap.Packages...), nil
}

// LedgerView lists the deletion ledger with the time each entry stops
// suppressing regeneration.
type LedgerView struct {
	models.DeletionLedgerEntry
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Service) LedgerEntries(ctx context.Context) ([]LedgerView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}
	retention := s.ledger.Retention()
	return lo.Map(s.ledger.Entries(), func(e models.DeletionLedgerEntry, _ int) LedgerView {
		return LedgerView{DeletionLedgerEntry: e, ExpiresAt: e.DeletedAt.Add(retention)}
	}), nil
}

// Dirty reports whether changes are waiting for a successful flush.
func (s *Service) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirtyLocked()
}

// ensureLoadedLocked loads on first read. Reads never reload afterwards: a
// distributed deployment reads what this instance last reconciled.
func (s *Service) ensureLoadedLocked(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	return s.refreshLocked(ctx)
}
