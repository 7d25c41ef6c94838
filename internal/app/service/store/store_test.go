package store

import (
	"context"
	"testing"
	"time"

	"github.com/fatflowers/ispbill/internal/models"
	"github.com/fatflowers/ispbill/pkg/types"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Package{}, &models.Subscriber{}, &models.Payment{}, &models.DeletionLedgerEntry{}))
	return db
}

func payment(recordID, id, subID, periodKey string) models.Payment {
	k, _ := time.Parse("2006-01", periodKey)
	return models.Payment{
		RecordID:     recordID,
		ID:           id,
		SubscriberID: subID,
		PackageID:    "P",
		CostSnapshot: 20,
		Status:       types.PaymentStatusPending,
		PeriodKey:    periodKey,
		PeriodDate:   k,
		DueDate:      k.AddDate(0, 1, 0),
		CreatedAt:    k,
	}
}

func TestStore_ApplyAndLoad(t *testing.T) {
	ctx := context.Background()
	s := New(newTestDB(t))
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	sub := models.Subscriber{
		ID:           "S",
		Name:         "Alice",
		ContactInfo:  datatypes.NewJSONType(models.ContactInfo{Phone: "555", NationalID: "99887766"}),
		PackageID:    "P",
		DiscountType: types.DiscountTypeOneTime,
		Active:       true,
		CreatedAt:    created,
		Payments: []models.Payment{
			payment("r2", "pay_S_2024-02", "S", "2024-02"),
			payment("r1", "pay_S_2024-01", "S", "2024-01"),
		},
	}
	err := s.Apply(ctx, &Delta{
		Packages:    []models.Package{{ID: "P", Name: "Basic", Cost: 20, CreatedAt: created}},
		Subscribers: []models.Subscriber{sub},
		LedgerAdded: []models.DeletionLedgerEntry{{ID: "l1", SubscriberID: "S", PaymentID: "x", DeletedAt: created}},
	})
	require.NoError(t, err)

	snap, entries, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Packages, 1)
	require.Len(t, snap.Subscribers, 1)
	require.Equal(t, "555", snap.Subscribers[0].ContactInfo.Data().Phone)
	got := snap.Subscribers[0].Payments
	require.Len(t, got, 2)
	require.Equal(t, "2024-01", got[0].PeriodKey)
	require.Equal(t, "2024-02", got[1].PeriodKey)
	require.Len(t, entries, 1)
}

func TestStore_RemovedPaymentIsDeleted(t *testing.T) {
	ctx := context.Background()
	s := New(newTestDB(t))
	sub := models.Subscriber{ID: "S", Name: "A", DiscountType: types.DiscountTypeOneTime, Payments: []models.Payment{
		payment("r1", "pay_S_2024-01", "S", "2024-01"),
		payment("r2", "pay_S_2024-02", "S", "2024-02"),
	}}
	require.NoError(t, s.Apply(ctx, &Delta{Subscribers: []models.Subscriber{sub}}))

	sub.Payments = sub.Payments[:1]
	require.NoError(t, s.Apply(ctx, &Delta{Subscribers: []models.Subscriber{sub}}))

	payments, err := s.ListPayments(ctx, "S")
	require.NoError(t, err)
	require.Len(t, payments, 1)
	require.Equal(t, "r1", payments[0].RecordID)

	sub.Payments = nil
	require.NoError(t, s.Apply(ctx, &Delta{Subscribers: []models.Subscriber{sub}}))
	payments, err = s.ListPayments(ctx, "S")
	require.NoError(t, err)
	require.Empty(t, payments)
}

func TestStore_DeletedSubscriberKeepsArchivedHistory(t *testing.T) {
	ctx := context.Background()
	s := New(newTestDB(t))
	sub := models.Subscriber{ID: "S", Name: "A", DiscountType: types.DiscountTypeOneTime, Payments: []models.Payment{payment("r1", "pay_S_2024-01", "S", "2024-01")}}
	require.NoError(t, s.Apply(ctx, &Delta{Subscribers: []models.Subscriber{sub}}))

	sub.Payments[0].Archived = true
	require.NoError(t, s.Apply(ctx, &Delta{DeletedSubscribers: []models.Subscriber{sub}}))

	snap, _, err := s.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, snap.Subscribers)

	payments, err := s.ListPayments(ctx, "S")
	require.NoError(t, err)
	require.Len(t, payments, 1)
	require.True(t, payments[0].Archived)
}

func TestStore_ApplyRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New(newTestDB(t))

	bad := models.Subscriber{ID: "S", Name: "A", DiscountType: types.DiscountTypeOneTime, Payments: []models.Payment{{ID: "no-record"}}}
	err := s.Apply(ctx, &Delta{
		Packages:    []models.Package{{ID: "P", Name: "Basic"}},
		Subscribers: []models.Subscriber{bad},
	})
	require.Error(t, err)

	snap, _, err := s.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, snap.Packages)
	require.Empty(t, snap.Subscribers)
}

func TestStore_DeletesPackagesAndPrunesLedger(t *testing.T) {
	ctx := context.Background()
	s := New(newTestDB(t))
	now := time.Now().UTC()
	require.NoError(t, s.Apply(ctx, &Delta{
		Packages:    []models.Package{{ID: "P", Name: "Basic"}, {ID: "Q", Name: "Fiber"}},
		LedgerAdded: []models.DeletionLedgerEntry{{ID: "l1", SubscriberID: "S", PaymentID: "a", DeletedAt: now}, {ID: "l2", SubscriberID: "S", PaymentID: "b", DeletedAt: now}},
	}))
	require.NoError(t, s.Apply(ctx, &Delta{DeletedPackages: []string{"P"}, LedgerPruned: []string{"l1"}}))

	snap, entries, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Packages, 1)
	require.Equal(t, "Q", snap.Packages[0].ID)
	require.Len(t, entries, 1)
	require.Equal(t, "l2", entries[0].ID)
}

func TestDelta_Empty(t *testing.T) {
	var d *Delta
	require.True(t, d.Empty())
	require.True(t, (&Delta{}).Empty())
	require.False(t, (&Delta{LedgerPruned: []string{"x"}}).Empty())
}

func TestStore_ArchivedRowsSurviveListReplacement(t *testing.T) {
	ctx := context.Background()
	s := New(newTestDB(t))
	archived := payment("r1", "pay_S_2024-01", "S", "2024-01")
	archived.Archived = true
	sub := models.Subscriber{ID: "S", Name: "A", DiscountType: types.DiscountTypeOneTime, Payments: []models.Payment{archived}}
	require.NoError(t, s.Apply(ctx, &Delta{Subscribers: []models.Subscriber{sub}}))

	sub.Payments = nil
	require.NoError(t, s.Apply(ctx, &Delta{Subscribers: []models.Subscriber{sub}}))

	payments, err := s.ListPayments(ctx, "S")
	require.NoError(t, err)
	require.Len(t, payments, 1)
}
