package statistics

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/fatflowers/ispbill/internal/models"
	"github.com/fatflowers/ispbill/internal/platform/clock"
	"github.com/fatflowers/ispbill/pkg/types"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seed(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Package{}, &models.Subscriber{}, &models.Payment{}))

	require.NoError(t, db.Create([]models.Package{
		{ID: "P1", Name: "Basic", Cost: 20, SubscriberCount: 2},
		{ID: "P2", Name: "Fiber", Cost: 50, SubscriberCount: 1},
	}).Error)
	require.NoError(t, db.Create([]models.Subscriber{
		{ID: "S1", Name: "A", PackageID: "P1", DiscountType: types.DiscountTypeOneTime, Active: true},
		{ID: "S2", Name: "B", PackageID: "P1", DiscountType: types.DiscountTypeOneTime, Active: true},
		{ID: "S3", Name: "C", PackageID: "P2", DiscountType: types.DiscountTypeOneTime, Active: false},
	}).Error)

	pay := func(rid, sub, pkg, key string, amount int64, status types.PaymentStatus, due time.Time, archived bool) models.Payment {
		return models.Payment{RecordID: rid, ID: "pay_" + sub + "_" + key, SubscriberID: sub, PackageID: pkg, PeriodKey: key,
			DiscountedAmount: amount, Status: status, DueDate: due, Archived: archived}
	}
	require.NoError(t, db.Create([]models.Payment{
		pay("r1", "S1", "P1", "2024-01", 20, types.PaymentStatusPaid, day(2024, 2, 1), false),
		pay("r2", "S2", "P1", "2024-01", 15, types.PaymentStatusPaid, day(2024, 2, 5), false),
		pay("r3", "S1", "P1", "2024-02", 20, types.PaymentStatusPending, day(2024, 3, 1), false),
		pay("r4", "S2", "P1", "2024-02", 20, types.PaymentStatusPending, day(2024, 3, 20), false),
		pay("r5", "S3", "P2", "2024-02", 50, types.PaymentStatusPending, day(2024, 3, 1), true),
	}).Error)

	return New(db, clock.NewFixed(day(2024, 3, 10)))
}

func TestGetBillingStatistic(t *testing.T) {
	s := seed(t)
	res, err := s.GetBillingStatistic(context.Background(), &BillingStatisticRequest{
		DataItems: []*BillingStatisticDataItem{
			{ID: StatisticTypeMonthlyRevenue},
			{ID: StatisticTypeMonthlyOutstanding},
			{ID: StatisticTypePaymentStatusCount},
			{ID: StatisticTypePackageSubscriberCount},
			{ID: StatisticTypeActiveSubscriberCount},
		},
	})
	require.NoError(t, err)

	require.Equal(t, []BillingStatisticResponseDataItem{{Date: "2024-01", Value: 35}}, res.DataItems[StatisticTypeMonthlyRevenue])
	// archived rows are not outstanding
	require.Equal(t, []BillingStatisticResponseDataItem{{Date: "2024-02", Value: 40}}, res.DataItems[StatisticTypeMonthlyOutstanding])
	require.Equal(t, []BillingStatisticResponseDataItem{
		{Date: "2024-01", Label: "paid", Value: 2},
		{Date: "2024-02", Label: "overdue", Value: 1},
		{Date: "2024-02", Label: "pending", Value: 1},
	}, res.DataItems[StatisticTypePaymentStatusCount])
	require.Equal(t, []BillingStatisticResponseDataItem{
		{Label: "Basic", Value: 2},
		{Label: "Fiber", Value: 1},
	}, res.DataItems[StatisticTypePackageSubscriberCount])
	require.Equal(t, []BillingStatisticResponseDataItem{{Date: "2024-03-10", Value: 2}}, res.DataItems[StatisticTypeActiveSubscriberCount])
}

func TestGetBillingStatistic_Filters(t *testing.T) {
	s := seed(t)
	res, err := s.GetBillingStatistic(context.Background(), &BillingStatisticRequest{
		Filters: []*types.CommonFilter{
			{Field: "subscriber_id", Operator: types.CommonFilterOperatorEq, Values: []any{"S2"}},
		},
		DataItems: []*BillingStatisticDataItem{{ID: StatisticTypeMonthlyRevenue}, {ID: StatisticTypePackageSubscriberCount}},
	})
	require.NoError(t, err)
	require.Equal(t, []BillingStatisticResponseDataItem{{Date: "2024-01", Value: 15}}, res.DataItems[StatisticTypeMonthlyRevenue])
	require.Len(t, res.DataItems[StatisticTypePackageSubscriberCount], 2)
}

func TestGetBillingStatistic_InvalidRequests(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	_, err := s.GetBillingStatistic(ctx, &BillingStatisticRequest{})
	require.ErrorIs(t, err, types.ErrInvalidArgument)

	_, err = s.GetBillingStatistic(ctx, &BillingStatisticRequest{
		Filters:   []*types.CommonFilter{{Field: "discounted_amount; --", Operator: types.CommonFilterOperatorEq, Values: []any{1}}},
		DataItems: []*BillingStatisticDataItem{{ID: StatisticTypeMonthlyRevenue}},
	})
	require.ErrorIs(t, err, types.ErrInvalidArgument)

	_, err = s.GetBillingStatistic(ctx, &BillingStatisticRequest{DataItems: []*BillingStatisticDataItem{{ID: "nope"}}})
	require.ErrorIs(t, err, types.ErrInvalidArgument)
}
