// Package billing applies operator commands to the subscriber snapshot and
// reconciles after every one of them.
//
// The service keeps the authoritative snapshot in memory. A command mutates a
// copy, reconciliation runs on the copy, the copy replaces the snapshot, and
// the changed rows are written behind in one transaction. When the write
// fails the rows stay dirty and are retried with the next command, so a
// storage outage never blocks operators.
package billing

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/ispbill/internal/app/service/billing_log"
	"github.com/fatflowers/ispbill/internal/app/service/ledger"
	"github.com/fatflowers/ispbill/internal/app/service/reconcile"
	"github.com/fatflowers/ispbill/internal/app/service/store"
	"github.com/fatflowers/ispbill/internal/models"
	"github.com/fatflowers/ispbill/internal/platform/clock"
	"github.com/fatflowers/ispbill/internal/platform/lock"
	"github.com/fatflowers/ispbill/pkg/config"
	"github.com/fatflowers/ispbill/pkg/logctx"
	"github.com/fatflowers/ispbill/pkg/metrics"
	"github.com/fatflowers/ispbill/pkg/tool"
	"github.com/fatflowers/ispbill/pkg/types"
)

// Re-exported so handlers only depend on this package.
var (
	ErrNotFound        = types.ErrNotFound
	ErrInvalidArgument = types.ErrInvalidArgument
	ErrLockNotAcquired = lock.ErrLockNotAcquired
)

// CommandResult reports what a command did. Redundant commands are not
// errors: they come back with Applied false and a Reason.
type CommandResult struct {
	Command types.BillingCommand `json:"command"`
	Applied bool                 `json:"applied"`
	Reason  string               `json:"reason,omitempty"`
	// Persisted is false when the write-behind flush failed; the change is
	// kept in memory and retried.
	Persisted    bool              `json:"persisted"`
	SubscriberID string            `json:"subscriber_id,omitempty"`
	PackageID    string            `json:"package_id,omitempty"`
	PaymentID    string            `json:"payment_id,omitempty"`
	Issued       []string          `json:"issued_credentials,omitempty"`
	Reconcile    *ReconcileSummary `json:"reconcile,omitempty"`
	// Audit carries the before/after images recorded when the command applies.
	Audit *billing_log.Entry `json:"-"`
}

// ReconcileSummary counts what the reconciliation after a command changed.
type ReconcileSummary struct {
	Generated          int      `json:"generated"`
	Archived           int      `json:"archived"`
	Repriced           int      `json:"repriced"`
	Pruned             int      `json:"pruned"`
	CountsSynced       int      `json:"counts_synced"`
	ChangedSubscribers []string `json:"changed_subscribers,omitempty"`
}

func redundant(cmd types.BillingCommand, reason string) CommandResult {
	return CommandResult{Command: cmd, Reason: reason}
}

type Service struct {
	cfg         *config.Config
	store       *store.Store
	lock        lock.Locker
	clock       clock.Clock
	audit       *billing_log.Service
	metrics     *metrics.Billing
	credentials *CredentialIssuer
	log         *zap.SugaredLogger

	// mu guards everything below.
	mu     sync.Mutex
	loaded bool
	snap   reconcile.Snapshot
	ledger *ledger.Ledger
	dirty  dirtySet
}

func New(cfg *config.Config, st *store.Store, lk lock.Locker, clk clock.Clock, audit *billing_log.Service, m *metrics.Billing, log *zap.SugaredLogger) *Service {
	return &Service{
		cfg:         cfg,
		store:       st,
		lock:        lk,
		clock:       clk,
		audit:       audit,
		metrics:     m,
		credentials: NewCredentialIssuer(nil),
		log:         log,
		dirty:       newDirtySet(),
	}
}

var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(registerLifecycle),
)

// registerLifecycle reconciles the snapshot on start, and writes any
// unflushed changes before the database closes.
func registerLifecycle(lc fx.Lifecycle, s *Service) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !s.cfg.Billing.ReconcileOnStart {
				return nil
			}
			if _, err := s.Reconcile(ctx); err != nil {
				return fmt.Errorf("initial reconciliation failed: %w", err)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return s.Flush(ctx)
		},
	})
}

func (s *Service) opts() reconcile.Options {
	return reconcile.Options{DeletedPackageName: s.cfg.Billing.DeletedPackageName}
}

// dirtySet tracks rows changed in memory but not yet persisted.
type dirtySet struct {
	packages           map[string]struct{}
	deletedPackages    map[string]struct{}
	subscribers        map[string]struct{}
	deletedSubscribers []models.Subscriber
}

func newDirtySet() dirtySet {
	return dirtySet{
		packages:        map[string]struct{}{},
		deletedPackages: map[string]struct{}{},
		subscribers:     map[string]struct{}{},
	}
}

func (d *dirtySet) any() bool {
	return len(d.packages) > 0 || len(d.deletedPackages) > 0 || len(d.subscribers) > 0 || len(d.deletedSubscribers) > 0
}

func (d *dirtySet) merge(o *dirtySet) {
	for id := range o.packages {
		d.packages[id] = struct{}{}
	}
	for id := range o.deletedPackages {
		d.deletedPackages[id] = struct{}{}
	}
	for id := range o.subscribers {
		d.subscribers[id] = struct{}{}
	}
	d.deletedSubscribers = append(d.deletedSubscribers, o.deletedSubscribers...)
}

// mutation is the working copy a command edits.
type mutation struct {
	snap    reconcile.Snapshot
	ledger  *ledger.Ledger
	now     time.Time
	touched dirtySet
}

func (m *mutation) subscriber(id string) (int, *models.Subscriber) {
	i := slices.IndexFunc(m.snap.Subscribers, func(sub models.Subscriber) bool { return sub.ID == id })
	if i < 0 {
		return -1, nil
	}
	return i, &m.snap.Subscribers[i]
}

func (m *mutation) pkg(id string) (int, *models.Package) {
	i := slices.IndexFunc(m.snap.Packages, func(p models.Package) bool { return p.ID == id })
	if i < 0 {
		return -1, nil
	}
	return i, &m.snap.Packages[i]
}

func (m *mutation) touchSubscriber(id string) { m.touched.subscribers[id] = struct{}{} }
func (m *mutation) touchPackage(id string)    { m.touched.packages[id] = struct{}{} }

func (m *mutation) removeSubscriber(i int) {
	m.touched.deletedSubscribers = append(m.touched.deletedSubscribers, m.snap.Subscribers[i].Clone())
	m.snap.Subscribers = slices.Delete(m.snap.Subscribers, i, i+1)
}

func (m *mutation) removePackage(i int) {
	m.touched.deletedPackages[m.snap.Packages[i].ID] = struct{}{}
	m.snap.Packages = slices.Delete(m.snap.Packages, i, i+1)
}

type commandFunc func(ctx context.Context, m *mutation) (CommandResult, error)

// exec runs one command: lock, refresh, mutate a copy, reconcile, swap, flush.
func (s *Service) exec(ctx context.Context, cmd types.BillingCommand, fn commandFunc) (CommandResult, error) {
	start := time.Now()
	log := logctx.FromCtx(ctx, s.log).With("command", cmd)

	unlock, err := s.lock.Lock(ctx)
	if err != nil {
		s.metrics.Command(string(cmd), "error")
		return CommandResult{}, err
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); errors.Is(err, lock.ErrLockLost) {
			log.Errorw("reconciliation lease expired while held", "err", err)
		} else if err != nil {
			log.Warnw("failed to release reconciliation lock", "err", err)
		}
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refreshLocked(ctx); err != nil {
		s.metrics.Command(string(cmd), "error")
		return CommandResult{}, err
	}

	m := &mutation{
		snap:    s.snap.Clone(),
		ledger:  s.ledger.Clone(),
		now:     s.clock.Now(ctx),
		touched: newDirtySet(),
	}
	res, err := fn(ctx, m)
	if err != nil {
		s.metrics.Command(string(cmd), "error")
		return CommandResult{}, err
	}
	res.Command = cmd

	rr := reconcile.Run(m.snap, m.ledger, m.now, s.opts())
	m.snap = rr.Snapshot
	for _, id := range rr.ChangedSubscribers {
		m.touchSubscriber(id)
	}
	for _, id := range rr.ChangedPackages {
		m.touchPackage(id)
	}
	res.Issued = s.issueMissingCredentials(ctx, m, rr.MissingCredentials)
	s.stampNewRecords(m)

	res.Reconcile = &ReconcileSummary{
		Generated:          rr.Generated,
		Archived:           rr.Archived,
		Repriced:           rr.Repriced,
		Pruned:             rr.Pruned,
		CountsSynced:       len(rr.ChangedPackages),
		ChangedSubscribers: rr.ChangedSubscribers,
	}
	if cmd == types.BillingCommandReconcile {
		res.Applied = rr.Changed() || rr.Pruned > 0 || len(res.Issued) > 0
	}

	// swap in the new state; from here on memory is authoritative
	s.snap = m.snap
	s.ledger = m.ledger
	s.dirty.merge(&m.touched)

	res.Persisted = s.flushLocked(ctx) == nil

	s.recordMetrics(cmd, res, rr, start)
	if res.Applied {
		log.Infow("command applied",
			"subscriber_id", res.SubscriberID, "package_id", res.PackageID, "payment_id", res.PaymentID,
			"generated", rr.Generated, "archived", rr.Archived, "repriced", rr.Repriced, "persisted", res.Persisted)
		s.saveAudit(ctx, res)
	}
	s.saveCredentialAudit(ctx, cmd, res.Issued)
	if !res.Applied && res.Reason != "" {
		log.Warnw("command not applied", "reason", res.Reason,
			"subscriber_id", res.SubscriberID, "package_id", res.PackageID, "payment_id", res.PaymentID)
	}
	return res, nil
}

// refreshLocked loads the snapshot on first use, and again before every
// command when other instances may have written since, unless this instance
// still holds unflushed changes.
func (s *Service) refreshLocked(ctx context.Context) error {
	if s.loaded && !(s.lock.Distributed() && !s.dirtyLocked()) {
		return nil
	}
	snap, entries, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load billing state: %w", err)
	}
	s.snap = *snap
	s.ledger = ledger.New(entries, s.cfg.Billing.LedgerRetention())
	s.loaded = true
	return nil
}

func (s *Service) dirtyLocked() bool {
	return s.dirty.any() || (s.ledger != nil && s.ledger.Dirty())
}

func (s *Service) issueMissingCredentials(ctx context.Context, m *mutation, ids []string) []string {
	var issued []string
	for _, id := range ids {
		_, sub := m.subscriber(id)
		if sub == nil {
			continue
		}
		ok, err := s.credentials.Issue(sub)
		if err != nil {
			logctx.FromCtx(ctx, s.log).Errorw("failed to issue credential", "subscriber_id", id, "err", err)
			continue
		}
		if ok {
			m.touchSubscriber(id)
			issued = append(issued, id)
		}
	}
	return issued
}

// stampNewRecords gives payments created by reconciliation their storage key
// and bumps UpdatedAt on touched records.
func (s *Service) stampNewRecords(m *mutation) {
	for id := range m.touched.subscribers {
		_, sub := m.subscriber(id)
		if sub == nil {
			continue
		}
		sub.UpdatedAt = m.now
		for i := range sub.Payments {
			p := &sub.Payments[i]
			if p.RecordID == "" {
				p.RecordID = tool.GenerateUUIDV7()
				p.CreatedAt = m.now
			}
		}
	}
	for id := range m.touched.packages {
		if _, p := m.pkg(id); p != nil {
			p.UpdatedAt = m.now
		}
	}
}

// Flush writes unflushed changes. Commands flush on their own; this is for
// shutdown and operators.
func (s *Service) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked(ctx)
}

func (s *Service) flushLocked(ctx context.Context) error {
	if !s.dirtyLocked() {
		s.metrics.SetDirty(false)
		return nil
	}
	d := s.buildDelta()
	if err := s.store.Apply(ctx, d); err != nil {
		s.metrics.FlushFailed()
		s.metrics.SetDirty(true)
		logctx.FromCtx(ctx, s.log).Errorw("failed to persist billing state; will retry on next command",
			"err", err, "subscribers", len(d.Subscribers), "packages", len(d.Packages))
		return err
	}
	s.dirty = newDirtySet()
	s.ledger.Commit()
	s.metrics.SetDirty(false)
	return nil
}

func (s *Service) buildDelta() *store.Delta {
	d := &store.Delta{
		DeletedPackages:    lo.Keys(s.dirty.deletedPackages),
		DeletedSubscribers: lo.Map(s.dirty.deletedSubscribers, func(sub models.Subscriber, _ int) models.Subscriber { return sub.Clone() }),
	}
	slices.Sort(d.DeletedPackages)
	for _, p := range s.snap.Packages {
		if _, ok := s.dirty.packages[p.ID]; ok {
			d.Packages = append(d.Packages, p)
		}
	}
	for i := range s.snap.Subscribers {
		if _, ok := s.dirty.subscribers[s.snap.Subscribers[i].ID]; ok {
			d.Subscribers = append(d.Subscribers, s.snap.Subscribers[i].Clone())
		}
	}
	added, pruned := s.ledger.Delta()
	d.LedgerAdded = slices.Clone(added)
	d.LedgerPruned = slices.Clone(pruned)
	return d
}

func (s *Service) recordMetrics(cmd types.BillingCommand, res CommandResult, rr reconcile.Result, start time.Time) {
	outcome := "applied"
	if !res.Applied {
		outcome = "redundant"
	}
	s.metrics.Command(string(cmd), outcome)
	s.metrics.Changes("generated", rr.Generated)
	s.metrics.Changes("archived", rr.Archived)
	s.metrics.Changes("repriced", rr.Repriced)
	s.metrics.Changes("pruned", rr.Pruned)
	s.metrics.Changes("counts", len(rr.ChangedPackages))
	s.metrics.Changes("credentials", len(res.Issued))
	trigger := "command"
	if cmd == types.BillingCommandReconcile {
		trigger = "manual"
	}
	s.metrics.ObserveReconcile(trigger, start)
}

// saveCredentialAudit records each secret issued by reconciliation under the
// command that triggered it. The secret itself is not logged.
func (s *Service) saveCredentialAudit(ctx context.Context, trigger types.BillingCommand, issued []string) {
	if s.audit == nil {
		return
	}
	for _, id := range issued {
		s.audit.Save(ctx, &billing_log.Entry{
			Command:      types.BillingCommandIssueCredential,
			SubscriberID: id,
			Extra:        map[string]any{"trigger": string(trigger)},
		})
	}
}

func (s *Service) saveAudit(ctx context.Context, res CommandResult) {
	if s.audit == nil {
		return
	}
	e := res.Audit
	if e == nil {
		e = &billing_log.Entry{}
	}
	e.Command = res.Command
	e.SubscriberID = lo.CoalesceOrEmpty(e.SubscriberID, res.SubscriberID)
	e.PackageID = lo.CoalesceOrEmpty(e.PackageID, res.PackageID)
	e.PaymentID = lo.CoalesceOrEmpty(e.PaymentID, res.PaymentID)
	if e.Extra == nil {
		e.Extra = map[string]any{}
	}
	if r := res.Reconcile; r != nil {
		e.Extra["generated"] = r.Generated
		e.Extra["archived"] = r.Archived
		e.Extra["repriced"] = r.Repriced
		e.Extra["pruned"] = r.Pruned
	}
	if len(res.Issued) > 0 {
		e.Extra["issued_credentials"] = res.Issued
	}
	e.Extra["persisted"] = res.Persisted
	s.audit.Save(ctx, e)
}
