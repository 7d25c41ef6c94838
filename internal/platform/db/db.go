package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/fatflowers/ispbill/internal/models"
	cfgpkg "github.com/fatflowers/ispbill/pkg/config"
	gormzap "github.com/fatflowers/ispbill/pkg/gormlog"
)

const schemaKey = "ispbill"

func dialector(cfg cfgpkg.DBConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case cfgpkg.DBDriverPostgres, "":
		return postgres.Open(cfg.DSN), nil
	case cfgpkg.DBDriverSQLite:
		return sqlite.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Driver)
	}
}

func NewDB(l *zap.SugaredLogger, cfg *cfgpkg.Config) (*gorm.DB, error) {
	if cfg.Database.DSN == "" {
		l.Error("database DSN is empty")
		return nil, gorm.ErrInvalidDB
	}
	d, err := dialector(cfg.Database)
	if err != nil {
		return nil, err
	}
	level := gormlogger.Warn
	if cfg.Env == cfgpkg.EnvDev {
		level = gormlogger.Info
	}
	db, err := gorm.Open(d, &gorm.Config{Logger: gormzap.NewWithLevel(l, level)})
	if err != nil {
		l.Errorf("failed to connect database: %v", err)
		return nil, err
	}
	if cfg.Database.Driver == cfgpkg.DBDriverSQLite {
		// sqlite allows one writer; a single connection avoids SQLITE_BUSY on flush
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}
	l.Infow("connected to database", "driver", cfg.Database.Driver)
	return db, nil
}

var Module = fx.Options(
	fx.Provide(NewDB),
	fx.Invoke(AutoMigrate),
	fx.Invoke(registerDBClose),
)

// ErrSchemaTooNew is returned when the database was written by a newer build.
var ErrSchemaTooNew = errors.New("database schema is newer than this build")

// AutoMigrate runs GORM migrations and stamps the schema version.
func AutoMigrate(l *zap.SugaredLogger, db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.SchemaMeta{},
		&models.Package{},
		&models.Subscriber{},
		&models.Payment{},
		&models.DeletionLedgerEntry{},
		&models.BillingLog{},
	); err != nil {
		l.Errorf("automigrate failed: %v", err)
		return err
	}

	version, err := SchemaVersion(context.Background(), db)
	if err != nil {
		return err
	}
	if version > models.CurrentSchemaVersion {
		return fmt.Errorf("%w: have %d, build supports %d", ErrSchemaTooNew, version, models.CurrentSchemaVersion)
	}
	if version < models.CurrentSchemaVersion {
		meta := models.SchemaMeta{Key: schemaKey, Version: models.CurrentSchemaVersion, UpdatedAt: time.Now().UTC()}
		if err := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&meta).Error; err != nil {
			return fmt.Errorf("failed to stamp schema version: %w", err)
		}
	}
	l.Infow("automigrate completed", "schema_version", models.CurrentSchemaVersion, "previous_version", version)
	return nil
}

// SchemaVersion returns the stamped layout version, 0 for an unstamped database.
func SchemaVersion(ctx context.Context, db *gorm.DB) (int, error) {
	var meta models.SchemaMeta
	err := db.WithContext(ctx).Where("meta_key = ?", schemaKey).Take(&meta).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return meta.Version, nil
}

// registerDBClose ensures the underlying *sql.DB is closed on shutdown
func registerDBClose(lc fx.Lifecycle, l *zap.SugaredLogger, gdb *gorm.DB) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				l.Warnw("gorm: get sql.DB failed", "err", err)
				return nil
			}
			l.Infow("closing database connection pool")
			return sqlDB.Close()
		},
	})
}
