package store

import (
	"context"
	"fmt"

	"github.com/fatflowers/ispbill/internal/app/service/reconcile"
	"github.com/fatflowers/ispbill/internal/models"
	"github.com/samber/lo"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Store persists packages, subscribers with their payments, and the deletion
// ledger. Each collection is keyed by id.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store { return &Store{db: db} }

var Module = fx.Options(
	fx.Provide(New),
)

// Delta is the set of rows one command (or one retried flush) changed.
type Delta struct {
	Packages        []models.Package
	DeletedPackages []string
	// Subscribers are upserted and their payment lists replace the stored open
	// (non-archived) payments.
	Subscribers []models.Subscriber
	// DeletedSubscribers lose their row; their payments are kept as history.
	DeletedSubscribers []models.Subscriber
	LedgerAdded        []models.DeletionLedgerEntry
	LedgerPruned       []string
}

func (d *Delta) Empty() bool {
	return d == nil || (len(d.Packages) == 0 && len(d.DeletedPackages) == 0 &&
		len(d.Subscribers) == 0 && len(d.DeletedSubscribers) == 0 &&
		len(d.LedgerAdded) == 0 && len(d.LedgerPruned) == 0)
}

// Load reads the full snapshot and the ledger entries.
func (s *Store) Load(ctx context.Context) (*reconcile.Snapshot, []models.DeletionLedgerEntry, error) {
	db := s.db.WithContext(ctx)

	var pkgs []models.Package
	if err := db.Order("created_at, id").Find(&pkgs).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load packages: %w", err)
	}

	var subs []models.Subscriber
	if err := db.Order("created_at, id").Find(&subs).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load subscribers: %w", err)
	}

	if len(subs) > 0 {
		var payments []models.Payment
		ids := lo.Map(subs, func(sub models.Subscriber, _ int) string { return sub.ID })
		if err := db.Where("subscriber_id IN ?", ids).Order("period_key, created_at, record_id").Find(&payments).Error; err != nil {
			return nil, nil, fmt.Errorf("failed to load payments: %w", err)
		}
		bySub := lo.GroupBy(payments, func(p models.Payment) string { return p.SubscriberID })
		for i := range subs {
			subs[i].Payments = bySub[subs[i].ID]
		}
	}

	var entries []models.DeletionLedgerEntry
	if err := db.Order("deleted_at").Find(&entries).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load deletion ledger: %w", err)
	}

	return &reconcile.Snapshot{Packages: pkgs, Subscribers: subs}, entries, nil
}

// Apply writes the delta in a single transaction.
func (s *Store) Apply(ctx context.Context, d *Delta) error {
	if d.Empty() {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// deletions first so a record deleted and re-created in the same delta ends up present
		if len(d.DeletedPackages) > 0 {
			if err := tx.Where("id IN ?", d.DeletedPackages).Delete(&models.Package{}).Error; err != nil {
				return fmt.Errorf("failed to delete packages: %w", err)
			}
		}
		for i := range d.DeletedSubscribers {
			sub := &d.DeletedSubscribers[i]
			if err := savePayments(tx, sub.Payments); err != nil {
				return err
			}
			if err := tx.Where("id = ?", sub.ID).Delete(&models.Subscriber{}).Error; err != nil {
				return fmt.Errorf("failed to delete subscriber %s: %w", sub.ID, err)
			}
		}

		for i := range d.Packages {
			if err := tx.Save(&d.Packages[i]).Error; err != nil {
				return fmt.Errorf("failed to save package %s: %w", d.Packages[i].ID, err)
			}
		}
		for i := range d.Subscribers {
			if err := saveSubscriber(tx, &d.Subscribers[i]); err != nil {
				return err
			}
		}

		if len(d.LedgerAdded) > 0 {
			if err := tx.Create(&d.LedgerAdded).Error; err != nil {
				return fmt.Errorf("failed to record deletion ledger entries: %w", err)
			}
		}
		if len(d.LedgerPruned) > 0 {
			if err := tx.Where("id IN ?", d.LedgerPruned).Delete(&models.DeletionLedgerEntry{}).Error; err != nil {
				return fmt.Errorf("failed to prune deletion ledger: %w", err)
			}
		}
		return nil
	})
}

func saveSubscriber(tx *gorm.DB, sub *models.Subscriber) error {
	if err := tx.Save(sub).Error; err != nil {
		return fmt.Errorf("failed to save subscriber %s: %w", sub.ID, err)
	}
	if err := savePayments(tx, sub.Payments); err != nil {
		return err
	}
	// open rows no longer in the list were deleted by an operator; archived
	// rows are history and never leave the table
	q := tx.Where("subscriber_id = ? AND archived = ?", sub.ID, false)
	if len(sub.Payments) > 0 {
		q = q.Where("record_id NOT IN ?", lo.Map(sub.Payments, func(p models.Payment, _ int) string { return p.RecordID }))
	}
	if err := q.Delete(&models.Payment{}).Error; err != nil {
		return fmt.Errorf("failed to remove deleted payments of %s: %w", sub.ID, err)
	}
	return nil
}

func savePayments(tx *gorm.DB, payments []models.Payment) error {
	for i := range payments {
		p := &payments[i]
		if p.RecordID == "" {
			return fmt.Errorf("payment %s has no record id", p.ID)
		}
		if err := tx.Save(p).Error; err != nil {
			return fmt.Errorf("failed to save payment %s: %w", p.ID, err)
		}
	}
	return nil
}

// ListPayments returns every stored payment of a subscriber, including the
// archived history of subscribers that were deleted.
func (s *Store) ListPayments(ctx context.Context, subscriberID string) ([]models.Payment, error) {
	var payments []models.Payment
	if err := s.db.WithContext(ctx).Where("subscriber_id = ?", subscriberID).
		Order("period_key, created_at, record_id").Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}
