package billing_log

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/fatflowers/ispbill/internal/models"
	"github.com/fatflowers/ispbill/pkg/logctx"
	"github.com/fatflowers/ispbill/pkg/tool"
	"github.com/fatflowers/ispbill/pkg/types"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
	wg  sync.WaitGroup
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(registerDrain),
)

// registerDrain waits for in-flight saves before the database is closed.
func registerDrain(lc fx.Lifecycle, s *Service) {
	lc.Append(fx.Hook{OnStop: func(context.Context) error {
		s.Wait()
		return nil
	}})
}

// Entry describes one applied command. Before and After are marshaled to JSON.
type Entry struct {
	Command      types.BillingCommand
	SubscriberID string
	PaymentID    string
	PackageID    string
	Before       any
	After        any
	Extra        map[string]any
}

// Save asynchronously persists an audit row for entry. The operator is taken
// from ctx. Nil input is ignored.
func (s *Service) Save(ctx context.Context, entry *Entry) {
	if entry == nil {
		return
	}
	row, err := s.toModel(ctx, entry)
	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorf("failed to build billing log: %v", err)
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		// detached from the request so a finished request does not cancel the write
		if err := s.db.WithContext(context.WithoutCancel(ctx)).Create(row).Error; err != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to save billing log: %v", err)
		}
	}()
}

// Wait blocks until every pending Save has finished.
func (s *Service) Wait() { s.wg.Wait() }

func (s *Service) toModel(ctx context.Context, e *Entry) (*models.BillingLog, error) {
	before, err := marshal(e.Before)
	if err != nil {
		return nil, fmt.Errorf("before: %w", err)
	}
	after, err := marshal(e.After)
	if err != nil {
		return nil, fmt.Errorf("after: %w", err)
	}
	return &models.BillingLog{
		ID:           tool.GenerateUUIDV7(),
		Command:      e.Command,
		SubscriberID: e.SubscriberID,
		PaymentID:    e.PaymentID,
		PackageID:    e.PackageID,
		OperatorID:   logctx.OperatorID(ctx),
		Before:       before,
		After:        after,
		Extra:        e.Extra,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

func marshal(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

var listFields = []string{"command", "subscriber_id", "payment_id", "package_id", "operator_id", "created_at"}

type ListRequest struct {
	Filters []*types.CommonFilter `json:"filters"`
	From    int                   `json:"from"`
	Size    int                   `json:"size"`
}

type ListResponse struct {
	Total int64               `json:"total"`
	Items []models.BillingLog `json:"items"`
}

// List returns audit rows newest first.
func (s *Service) List(ctx context.Context, req *ListRequest) (*ListResponse, error) {
	exprs := make([]clause.Expression, 0, len(req.Filters))
	for _, f := range req.Filters {
		if err := f.Validate(listFields); err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrInvalidArgument, err)
		}
		exprs = append(exprs, f)
	}
	size := req.Size
	if size <= 0 || size > 200 {
		size = 50
	}

	q := s.db.WithContext(ctx).Model(&models.BillingLog{})
	if len(exprs) > 0 {
		q = q.Where(clause.Where{Exprs: exprs})
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count billing logs: %w", err)
	}
	var items []models.BillingLog
	if err := q.Order("created_at DESC, id DESC").Offset(max(req.From, 0)).Limit(size).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list billing logs: %w", err)
	}
	return &ListResponse{Total: total, Items: items}, nil
}
