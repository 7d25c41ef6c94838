package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fatflowers/ispbill/docs"
	"github.com/fatflowers/ispbill/internal/app/api/handlers"
	"github.com/fatflowers/ispbill/internal/app/service/billing"
	"github.com/fatflowers/ispbill/internal/app/service/billing_log"
	"github.com/fatflowers/ispbill/internal/app/service/statistics"
	cfgpkg "github.com/fatflowers/ispbill/pkg/config"

	mw "github.com/fatflowers/ispbill/internal/app/api/middleware"

	metrics "github.com/fatflowers/ispbill/pkg/metrics"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newEngine(cfg *cfgpkg.Config) *gin.Engine {
	if cfg.Env != cfgpkg.EnvDev {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	// tracing and operator identity only; request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware(), mw.OperatorMiddleware())
	return r
}

type routeParams struct {
	fx.In

	Engine  *gin.Engine
	Log     *zap.SugaredLogger
	Config  *cfgpkg.Config
	DB      *gorm.DB
	Billing *billing.Service
	Stats   *statistics.Service
	Logs    *billing_log.Service
}

func registerRoutes(lc fx.Lifecycle, p routeParams) {
	r, log, cfg := p.Engine, p.Log, p.Config

	// Prometheus metrics; served on the API listener when no separate address is configured
	prom := metrics.NewPrometheus(metrics.NewPrometheusOptions{Logger: log})
	prom.Use(r, cfg.MetricsAddr)
	lc.Append(fx.Hook{OnStop: prom.Shutdown})

	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware(log))
	handlers.RegisterHealthRoutes(pub, p.DB, p.Billing)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := r.Group("/api/v1")
	apiV1.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware(log))

	handlers.RegisterPackageRoutes(apiV1.Group("/packages"), p.Billing)
	handlers.RegisterSubscriberRoutes(apiV1.Group("/subscribers"), p.Billing)
	handlers.RegisterAdminRoutes(apiV1.Group("/admin"), p.Billing, p.Stats, p.Logs)
}

func runServer(lc fx.Lifecycle, shutdowner fx.Shutdowner, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Errorf("server error: %v", err)
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
