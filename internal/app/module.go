package app

import (
	"time"

	"github.com/fatflowers/ispbill/internal/app/api/server"
	"github.com/fatflowers/ispbill/internal/app/service/billing"
	"github.com/fatflowers/ispbill/internal/app/service/billing_log"
	"github.com/fatflowers/ispbill/internal/app/service/statistics"
	"github.com/fatflowers/ispbill/internal/app/service/store"
	"github.com/fatflowers/ispbill/internal/platform/clock"
	"github.com/fatflowers/ispbill/internal/platform/db"
	"github.com/fatflowers/ispbill/internal/platform/lock"
	"github.com/fatflowers/ispbill/pkg/config"
	"github.com/fatflowers/ispbill/pkg/logger"
	"github.com/fatflowers/ispbill/pkg/metrics"

	"go.uber.org/fx"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

// Services wires the billing stack without metrics or the HTTP server. Hooks
// stop in reverse order, so the billing flush runs before the audit drain and
// the database close.
var Services = fx.Options(
	logger.Module,
	config.Module,
	clock.Module,
	db.Module,
	lock.Module,
	store.Module,
	billing_log.Module,
	statistics.Module,
	billing.Module,
)

var Module = fx.Options(
	Services,
	metrics.Module,
	server.Module,
)
