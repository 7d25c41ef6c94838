package ledger

import (
	"time"

	"github.com/fatflowers/ispbill/internal/models"
	"github.com/fatflowers/ispbill/pkg/tool"
)

// DefaultRetention is how long a deletion suppresses regeneration.
const DefaultRetention = 30 * 24 * time.Hour

// Ledger holds deletion entries and tracks the delta since it was loaded,
// so the store only writes what changed.
type Ledger struct {
	retention time.Duration
	entries   []models.DeletionLedgerEntry
	added     []models.DeletionLedgerEntry
	pruned    []string
}

// New builds a ledger from persisted entries. A non-positive retention falls
// back to DefaultRetention.
func New(entries []models.DeletionLedgerEntry, retention time.Duration) *Ledger {
	if retention <= 0 {
		retention = DefaultRetention
	}
	cp := make([]models.DeletionLedgerEntry, len(entries))
	copy(cp, entries)
	return &Ledger{retention: retention, entries: cp}
}

func (l *Ledger) Retention() time.Duration { return l.retention }

func (l *Ledger) cutoff(now time.Time) time.Time {
	return now.Add(-l.retention)
}

// Record appends an entry for (subscriberID, paymentID) deleted at now.
func (l *Ledger) Record(subscriberID, paymentID string, now time.Time) models.DeletionLedgerEntry {
	e := models.DeletionLedgerEntry{
		ID:           tool.GenerateUUIDV7(),
		SubscriberID: subscriberID,
		PaymentID:    paymentID,
		DeletedAt:    now.UTC(),
	}
	l.entries = append(l.entries, e)
	l.added = append(l.added, e)
	return e
}

// IsSuppressed is true iff an unexpired entry matches.
func (l *Ledger) IsSuppressed(subscriberID, paymentID string, now time.Time) bool {
	cutoff := l.cutoff(now)
	for i := range l.entries {
		e := &l.entries[i]
		if e.SubscriberID == subscriberID && e.PaymentID == paymentID && e.DeletedAt.After(cutoff) {
			return true
		}
	}
	return false
}

// Prune drops expired entries and returns how many were removed.
func (l *Ledger) Prune(now time.Time) int {
	cutoff := l.cutoff(now)
	kept := l.entries[:0]
	removed := 0
	for _, e := range l.entries {
		if e.DeletedAt.After(cutoff) {
			kept = append(kept, e)
			continue
		}
		removed++
		l.pruned = append(l.pruned, e.ID)
	}
	l.entries = kept
	return removed
}

// Entries returns a copy of the live entries.
func (l *Ledger) Entries() []models.DeletionLedgerEntry {
	cp := make([]models.DeletionLedgerEntry, len(l.entries))
	copy(cp, l.entries)
	return cp
}

// Delta returns entries recorded and ids pruned since load or the last Commit.
func (l *Ledger) Delta() (added []models.DeletionLedgerEntry, pruned []string) {
	return l.added, l.pruned
}

func (l *Ledger) Dirty() bool {
	return len(l.added) > 0 || len(l.pruned) > 0
}

// Commit forgets the delta once it has been persisted.
func (l *Ledger) Commit() {
	l.added = nil
	l.pruned = nil
}

// Clone copies the ledger including its pending delta.
func (l *Ledger) Clone() *Ledger {
	cp := &Ledger{retention: l.retention}
	cp.entries = append([]models.DeletionLedgerEntry(nil), l.entries...)
	cp.added = append([]models.DeletionLedgerEntry(nil), l.added...)
	cp.pruned = append([]string(nil), l.pruned...)
	return cp
}
