package ledger

import (
	"testing"
	"time"

	"github.com/fatflowers/ispbill/internal/models"
	"github.com/stretchr/testify/require"
)

func TestLedger_RecordAndSuppress(t *testing.T) {
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	l := New(nil, 0)
	require.Equal(t, DefaultRetention, l.Retention())

	require.False(t, l.IsSuppressed("s1", "p1", now))
	l.Record("s1", "p1", now)

	require.True(t, l.IsSuppressed("s1", "p1", now))
	require.True(t, l.IsSuppressed("s1", "p1", now.Add(29*24*time.Hour)))
	require.False(t, l.IsSuppressed("s1", "p1", now.Add(30*24*time.Hour)))
	require.False(t, l.IsSuppressed("s2", "p1", now))
	require.False(t, l.IsSuppressed("s1", "p2", now))
}

func TestLedger_PruneTracksDelta(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	l := New([]models.DeletionLedgerEntry{
		{ID: "old", SubscriberID: "s1", PaymentID: "p1", DeletedAt: now.Add(-31 * 24 * time.Hour)},
		{ID: "edge", SubscriberID: "s1", PaymentID: "p2", DeletedAt: now.Add(-30 * 24 * time.Hour)},
		{ID: "fresh", SubscriberID: "s1", PaymentID: "p3", DeletedAt: now.Add(-24 * time.Hour)},
	}, DefaultRetention)

	require.Equal(t, 2, l.Prune(now))
	require.Len(t, l.Entries(), 1)
	require.Equal(t, "fresh", l.Entries()[0].ID)

	added, pruned := l.Delta()
	require.Empty(t, added)
	require.ElementsMatch(t, []string{"old", "edge"}, pruned)
	require.True(t, l.Dirty())

	l.Commit()
	require.False(t, l.Dirty())
	require.Equal(t, 0, l.Prune(now))
}

func TestLedger_CloneIsIndependent(t *testing.T) {
	now := time.Now()
	l := New(nil, time.Hour)
	l.Record("s1", "p1", now)
	cp := l.Clone()
	cp.Record("s1", "p2", now)

	require.Len(t, l.Entries(), 1)
	require.Len(t, cp.Entries(), 2)
	require.Equal(t, time.Hour, cp.Retention())
}
