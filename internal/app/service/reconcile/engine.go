// Package reconcile keeps subscriber payments consistent with the package
// catalog and the subscription lifecycle.
//
// Each pass is a function of its inputs: it never mutates the slices it is
// given and reports which records it changed, so running a pass again with no
// underlying change reports nothing and callers can skip the write.
package reconcile

import (
	"slices"
	"strings"
	"time"

	"github.com/fatflowers/ispbill/internal/app/service/ledger"
	"github.com/fatflowers/ispbill/internal/models"
	"github.com/fatflowers/ispbill/pkg/period"
	"github.com/fatflowers/ispbill/pkg/tool"
	"github.com/fatflowers/ispbill/pkg/types"
	"github.com/samber/lo"
)

type Snapshot struct {
	Packages    []models.Package    `json:"packages"`
	Subscribers []models.Subscriber `json:"subscribers"`
}

// Clone deep-copies the snapshot.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Packages:    slices.Clone(s.Packages),
		Subscribers: lo.Map(s.Subscribers, func(sub models.Subscriber, _ int) models.Subscriber { return sub.Clone() }),
	}
}

type Options struct {
	// DeletedPackageName is the name snapshot given to archived payments without one.
	DeletedPackageName string
}

func (o Options) deletedPackageName() string {
	if o.DeletedPackageName == "" {
		return types.DefaultDeletedPackageName
	}
	return o.DeletedPackageName
}

// Result is the outcome of one reconciliation cycle.
type Result struct {
	Snapshot           Snapshot `json:"-"`
	ChangedPackages    []string `json:"changed_packages"`
	ChangedSubscribers []string `json:"changed_subscribers"`
	// MissingCredentials lists active subscribers without a credential secret.
	// The pass never generates one; the caller issues it once.
	MissingCredentials []string `json:"missing_credentials"`
	Generated          int      `json:"generated"`
	Archived           int      `json:"archived"`
	Repriced           int      `json:"repriced"`
	Pruned             int      `json:"pruned"`
}

func (r *Result) Changed() bool {
	return len(r.ChangedPackages) > 0 || len(r.ChangedSubscribers) > 0
}

// Run prunes the ledger, then runs the count sync, archival/propagation and
// period generation passes in order.
func Run(snap Snapshot, l *ledger.Ledger, now time.Time, opts Options) Result {
	res := Result{}
	res.Pruned = l.Prune(now)

	pkgs, changedPkgs := SyncSubscriberCounts(snap.Packages, snap.Subscribers)
	res.ChangedPackages = changedPkgs

	b := ArchiveAndPropagate(snap.Subscribers, pkgs, l, now, opts)
	res.Archived = b.Archived
	res.Repriced = b.Repriced

	c := GeneratePeriod(b.Subscribers, pkgs, l, now)
	res.Generated = c.Generated
	res.MissingCredentials = c.MissingCredentials

	res.ChangedSubscribers = lo.Union(b.Changed, c.Changed)
	res.Snapshot = Snapshot{Packages: pkgs, Subscribers: c.Subscribers}
	return res
}

// SyncSubscriberCounts recomputes Package.SubscriberCount from subscriber
// references and returns the ids of packages whose count changed.
func SyncSubscriberCounts(pkgs []models.Package, subs []models.Subscriber) ([]models.Package, []string) {
	counts := lo.CountValuesBy(subs, func(s models.Subscriber) string { return s.PackageID })
	out := slices.Clone(pkgs)
	var changed []string
	for i := range out {
		n := int64(counts[out[i].ID])
		if out[i].SubscriberCount != n {
			out[i].SubscriberCount = n
			changed = append(changed, out[i].ID)
		}
	}
	return out, changed
}

type PassResult struct {
	Subscribers        []models.Subscriber
	Changed            []string
	Archived           int
	Repriced           int
	Generated          int
	MissingCredentials []string
}

// ArchiveAndPropagate archives the open payments of subscribers whose package
// no longer exists, and reprices the open payments of everyone else from the
// current package. Paid and archived payments are never touched.
func ArchiveAndPropagate(subs []models.Subscriber, pkgs []models.Package, l *ledger.Ledger, now time.Time, opts Options) PassResult {
	catalog := NewCatalog(pkgs)
	res := PassResult{Subscribers: make([]models.Subscriber, len(subs))}

	for i := range subs {
		sub := subs[i].Clone()
		modified := false

		switch ref := catalog.Resolve(sub.PackageID).(type) {
		case Dangling:
			for j := range sub.Payments {
				p := &sub.Payments[j]
				if p.Frozen() {
					continue
				}
				p.Archived = true
				if p.PackageNameSnapshot == "" {
					p.PackageNameSnapshot = opts.deletedPackageName()
				}
				l.Record(sub.ID, p.ID, now)
				res.Archived++
				modified = true
			}
		case Resolved:
			for j := range sub.Payments {
				p := &sub.Payments[j]
				if p.Archived || !p.Status.Unsettled() {
					continue
				}
				if reprice(p, &sub, ref.Package) {
					res.Repriced++
					modified = true
				}
			}
		}

		res.Subscribers[i] = sub
		if modified {
			res.Changed = append(res.Changed, sub.ID)
		}
	}
	return res
}

// reprice follows the current package. A cost change recomputes the amount
// from the subscriber's discount; a rename or repoint only refreshes the
// snapshot, so an amount set at generation stays put until the price moves.
func reprice(p *models.Payment, sub *models.Subscriber, pkg models.Package) bool {
	changed := false
	if p.PackageID != pkg.ID || p.PackageNameSnapshot != pkg.Name {
		p.PackageID = pkg.ID
		p.PackageNameSnapshot = pkg.Name
		changed = true
	}
	if p.CostSnapshot != pkg.Cost {
		p.CostSnapshot = pkg.Cost
		p.DiscountSnapshot = sub.Discount
		p.DiscountedAmount = discountedAmount(pkg.Cost, sub.Discount)
		changed = true
	}
	return changed
}

// GeneratePeriod creates the current period's Pending payment for every active
// subscriber on a live package, unless it already exists or the ledger
// suppresses it. Existing payments are left alone.
func GeneratePeriod(subs []models.Subscriber, pkgs []models.Package, l *ledger.Ledger, now time.Time) PassResult {
	catalog := NewCatalog(pkgs)
	key := period.Current(now)
	periodKey := key.String()
	res := PassResult{Subscribers: make([]models.Subscriber, len(subs))}

	for i := range subs {
		sub := subs[i].Clone()
		res.Subscribers[i] = sub
		if !sub.Active {
			continue
		}
		ref, ok := catalog.Resolve(sub.PackageID).(Resolved)
		if !ok {
			continue
		}
		if sub.CredentialSecret == "" {
			res.MissingCredentials = append(res.MissingCredentials, sub.ID)
		}
		if key.Before(period.Current(sub.CreatedAt)) {
			continue
		}

		id := tool.PeriodPaymentID(sub.ID, periodKey)
		if sub.FindPayment(id) >= 0 || l.IsSuppressed(sub.ID, id, now) {
			continue
		}

		discount := discountFor(&sub, periodKey)
		due := period.DueDate(sub.CreatedAt, key)
		sub.Payments = append(sub.Payments, models.Payment{
			ID:                  id,
			SubscriberID:        sub.ID,
			PackageID:           ref.Package.ID,
			PackageNameSnapshot: ref.Package.Name,
			CostSnapshot:        ref.Package.Cost,
			DiscountSnapshot:    discount,
			DiscountedAmount:    discountedAmount(ref.Package.Cost, discount),
			Status:              types.PaymentStatusPending,
			PeriodKey:           periodKey,
			PeriodDate:          key.Start(),
			DueDate:             due,
		})
		slices.SortStableFunc(sub.Payments, func(a, b models.Payment) int {
			return strings.Compare(a.PeriodKey, b.PeriodKey)
		})
		sub.DueDate = &due

		res.Subscribers[i] = sub
		res.Changed = append(res.Changed, sub.ID)
		res.Generated++
	}
	return res
}

// discountFor is the discount a newly generated payment gets: always for
// everytime, and for one-time only while no earlier payment has been paid.
func discountFor(sub *models.Subscriber, periodKey string) int64 {
	switch sub.DiscountType {
	case types.DiscountTypeEverytime:
		return sub.Discount
	case types.DiscountTypeOneTime:
		if !sub.HasPaidBefore(periodKey) {
			return sub.Discount
		}
	}
	return 0
}

func discountedAmount(cost, discount int64) int64 {
	return max(cost-discount, 0)
}
