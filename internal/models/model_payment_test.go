package models

import (
	"testing"
	"time"

	"github.com/fatflowers/ispbill/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestPayment_EffectiveStatus(t *testing.T) {
	today := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	due := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name string
		p    Payment
		want types.PaymentStatus
	}{
		{name: "pending not yet due", p: Payment{Status: types.PaymentStatusPending, DueDate: due(11)}, want: types.PaymentStatusPending},
		{name: "pending due today", p: Payment{Status: types.PaymentStatusPending, DueDate: due(10)}, want: types.PaymentStatusPending},
		{name: "pending past due", p: Payment{Status: types.PaymentStatusPending, DueDate: due(9)}, want: types.PaymentStatusOverdue},
		{name: "paid past due", p: Payment{Status: types.PaymentStatusPaid, DueDate: due(1)}, want: types.PaymentStatusPaid},
		{name: "stored overdue", p: Payment{Status: types.PaymentStatusOverdue, DueDate: due(20)}, want: types.PaymentStatusOverdue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.p.EffectiveStatus(today))
		})
	}
}

func TestSubscriber_CloneDoesNotAlias(t *testing.T) {
	paid := time.Now()
	s := Subscriber{ID: "s1", Payments: []Payment{{ID: "p1", PaidDate: &paid}}}
	cp := s.Clone()
	cp.Payments[0].ID = "changed"
	*cp.Payments[0].PaidDate = paid.Add(time.Hour)

	require.Equal(t, "p1", s.Payments[0].ID)
	require.Equal(t, paid, *s.Payments[0].PaidDate)
}

func TestSubscriber_FindPaymentSkipsArchived(t *testing.T) {
	s := Subscriber{Payments: []Payment{{ID: "p1", Archived: true}, {ID: "p1"}}}
	require.Equal(t, 1, s.FindPayment("p1"))
	require.Equal(t, -1, s.FindPayment("p2"))
}

func TestTableNames(t *testing.T) {
	require.Equal(t, "payment", Payment{}.TableName())
	require.Equal(t, "subscriber", Subscriber{}.TableName())
	require.Equal(t, "package", Package{}.TableName())
	require.Equal(t, "deletion_ledger", DeletionLedgerEntry{}.TableName())
}
