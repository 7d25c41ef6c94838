package statistics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fatflowers/ispbill/internal/models"
	"github.com/fatflowers/ispbill/internal/platform/clock"
	"github.com/fatflowers/ispbill/pkg/period"
	"github.com/fatflowers/ispbill/pkg/types"

	"github.com/samber/lo"
	"go.uber.org/fx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StatisticType string

const (
	// Per billing period, keyed by "YYYY-MM"
	StatisticTypeMonthlyRevenue     StatisticType = "monthly_revenue"
	StatisticTypeMonthlyOutstanding StatisticType = "monthly_outstanding"
	StatisticTypePaymentStatusCount StatisticType = "payment_status_count"

	// Current state
	StatisticTypePackageSubscriberCount StatisticType = "package_subscriber_count"
	StatisticTypeActiveSubscriberCount  StatisticType = "active_subscriber_count"
)

// Filter fields accepted by the payment based statistic types
type BillingStatisticFilterType string

const (
	BillingStatisticFilterTypePeriodKey    BillingStatisticFilterType = "period_key"
	BillingStatisticFilterTypePackageID    BillingStatisticFilterType = "package_id"
	BillingStatisticFilterTypeSubscriberID BillingStatisticFilterType = "subscriber_id"
)

var filterTypes = []string{
	string(BillingStatisticFilterTypePeriodKey),
	string(BillingStatisticFilterTypePackageID),
	string(BillingStatisticFilterTypeSubscriberID),
}

type BillingStatisticDataItem struct {
	ID StatisticType `json:"id"`
}

type BillingStatisticRequest struct {
	Filters   []*types.CommonFilter       `json:"filters"`
	DataItems []*BillingStatisticDataItem `json:"data_items"`
}

func (r *BillingStatisticRequest) Validate() error {
	if r == nil || len(r.DataItems) == 0 {
		return fmt.Errorf("%w: data_items is required", types.ErrInvalidArgument)
	}
	for _, f := range r.Filters {
		if err := f.Validate(filterTypes); err != nil {
			return fmt.Errorf("%w: %v", types.ErrInvalidArgument, err)
		}
	}
	return nil
}

// Build composes the WHERE clause of the payment based statistics.
func (r *BillingStatisticRequest) Build(builder clause.Builder) {
	if len(r.Filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	for i, filter := range r.Filters {
		if i > 0 {
			builder.WriteString(" AND ")
		}
		filter.Build(builder)
	}
}

type BillingStatisticResponseDataItem struct {
	Date  string `json:"date"`
	Label string `json:"label,omitempty"`
	Value int64  `json:"value"`
}

type BillingStatisticResponse struct {
	DataItems map[StatisticType][]BillingStatisticResponseDataItem `json:"data_items"`
}

// Service provides statistics operations
type Service struct {
	db    *gorm.DB
	clock clock.Clock
}

func New(db *gorm.DB, c clock.Clock) *Service { return &Service{db: db, clock: c} }

var Module = fx.Options(
	fx.Provide(New),
)

func (s *Service) paymentQuery(ctx context.Context, request *BillingStatisticRequest) *gorm.DB {
	return s.db.WithContext(ctx).Table(models.Payment{}.TableName()).
		Where(clause.Where{Exprs: []clause.Expression{request}})
}

func (s *Service) getMonthlyRevenue(ctx context.Context, request *BillingStatisticRequest) ([]BillingStatisticResponseDataItem, error) {
	var results []BillingStatisticResponseDataItem
	q := s.paymentQuery(ctx, request).
		Select("period_key as date, COALESCE(SUM(discounted_amount), 0) as value").
		Where("status = ?", types.PaymentStatusPaid).
		Group("period_key").
		Order("period_key")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getMonthlyOutstanding(ctx context.Context, request *BillingStatisticRequest) ([]BillingStatisticResponseDataItem, error) {
	var results []BillingStatisticResponseDataItem
	q := s.paymentQuery(ctx, request).
		Select("period_key as date, COALESCE(SUM(discounted_amount), 0) as value").
		Where("status IN ?", []types.PaymentStatus{types.PaymentStatusPending, types.PaymentStatusOverdue}).
		Where("archived = ?", false).
		Group("period_key").
		Order("period_key")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// getPaymentStatusCount counts non-archived payments by effective status, so a
// pending payment past its due date is reported as overdue.
func (s *Service) getPaymentStatusCount(ctx context.Context, request *BillingStatisticRequest) ([]BillingStatisticResponseDataItem, error) {
	var results []BillingStatisticResponseDataItem
	today := period.DateOnly(s.clock.Now(ctx))
	effective := gorm.Expr("CASE WHEN status = ? AND due_date < ? THEN ? ELSE status END",
		types.PaymentStatusPending, today, types.PaymentStatusOverdue)
	q := s.paymentQuery(ctx, request).
		Select("period_key as date, ? as label, count(*) as value", effective).
		Where("archived = ?", false).
		Group("period_key").
		Group("label").
		Order("period_key, label")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getPackageSubscriberCount(ctx context.Context, _ *BillingStatisticRequest) ([]BillingStatisticResponseDataItem, error) {
	var results []BillingStatisticResponseDataItem
	q := s.db.WithContext(ctx).Table(models.Package{}.TableName()).
		Select("name as label, subscriber_count as value").
		Order("subscriber_count DESC, name")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getActiveSubscriberCount(ctx context.Context, _ *BillingStatisticRequest) ([]BillingStatisticResponseDataItem, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Subscriber{}).Where("active = ?", true).Count(&n).Error; err != nil {
		return nil, err
	}
	return []BillingStatisticResponseDataItem{{Date: s.clock.Now(ctx).Format(time.DateOnly), Value: n}}, nil
}

func (s *Service) getBillingStatistic(ctx context.Context, request *BillingStatisticRequest, dataItem *BillingStatisticDataItem) ([]BillingStatisticResponseDataItem, error) {
	switch dataItem.ID {
	case StatisticTypeMonthlyRevenue:
		return s.getMonthlyRevenue(ctx, request)
	case StatisticTypeMonthlyOutstanding:
		return s.getMonthlyOutstanding(ctx, request)
	case StatisticTypePaymentStatusCount:
		return s.getPaymentStatusCount(ctx, request)
	case StatisticTypePackageSubscriberCount:
		return s.getPackageSubscriberCount(ctx, request)
	case StatisticTypeActiveSubscriberCount:
		return s.getActiveSubscriberCount(ctx, request)
	default:
		return nil, fmt.Errorf("%w: invalid data item id: %s", types.ErrInvalidArgument, dataItem.ID)
	}
}

// GetBillingStatistic computes the requested data items concurrently. Filters
// only narrow the payment based items; the others ignore them.
func (s *Service) GetBillingStatistic(ctx context.Context, request *BillingStatisticRequest) (*BillingStatisticResponse, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(request.DataItems))
	resChan := make(chan *lo.Entry[StatisticType, []BillingStatisticResponseDataItem], len(request.DataItems))

	for _, item := range request.DataItems {
		wg.Add(1)
		go func(di *BillingStatisticDataItem) {
			defer wg.Done()
			res, err := s.getBillingStatistic(ctx, request, di)
			if err != nil {
				errChan <- fmt.Errorf("%s: %w", di.ID, err)
				return
			}
			resChan <- &lo.Entry[StatisticType, []BillingStatisticResponseDataItem]{Key: di.ID, Value: res}
		}(item)
	}

	wg.Wait()
	close(errChan)
	close(resChan)
	if err := <-errChan; err != nil {
		return nil, err
	}

	results := make(map[StatisticType][]BillingStatisticResponseDataItem, len(request.DataItems))
	for entry := range resChan {
		results[entry.Key] = entry.Value
	}
	return &BillingStatisticResponse{DataItems: results}, nil
}
