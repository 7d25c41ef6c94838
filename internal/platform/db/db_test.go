package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/ispbill/internal/models"
	cfgpkg "github.com/fatflowers/ispbill/pkg/config"
)

func testConfig(t *testing.T) *cfgpkg.Config {
	return &cfgpkg.Config{
		Env: cfgpkg.EnvProd,
		Database: cfgpkg.DBConfig{
			Driver: cfgpkg.DBDriverSQLite,
			DSN:    "file:" + t.Name() + "?mode=memory&cache=shared",
		},
	}
}

func TestNewDB_SQLiteAndAutoMigrate(t *testing.T) {
	log := zap.NewNop().Sugar()
	gdb, err := NewDB(log, testConfig(t))
	require.NoError(t, err)

	require.NoError(t, AutoMigrate(log, gdb))
	v, err := SchemaVersion(context.Background(), gdb)
	require.NoError(t, err)
	require.Equal(t, models.CurrentSchemaVersion, v)

	// idempotent
	require.NoError(t, AutoMigrate(log, gdb))
	for _, table := range []string{"package", "subscriber", "payment", "deletion_ledger", "billing_log", "schema_meta"} {
		require.True(t, gdb.Migrator().HasTable(table), table)
	}
}

func TestAutoMigrate_RejectsNewerSchema(t *testing.T) {
	log := zap.NewNop().Sugar()
	gdb, err := NewDB(log, testConfig(t))
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(log, gdb))

	require.NoError(t, gdb.Model(&models.SchemaMeta{}).Where("meta_key = ?", schemaKey).
		Update("version", models.CurrentSchemaVersion+1).Error)
	require.ErrorIs(t, AutoMigrate(log, gdb), ErrSchemaTooNew)
}

func TestNewDB_Errors(t *testing.T) {
	log := zap.NewNop().Sugar()

	_, err := NewDB(log, &cfgpkg.Config{})
	require.ErrorIs(t, err, gorm.ErrInvalidDB)

	_, err = NewDB(log, &cfgpkg.Config{Database: cfgpkg.DBConfig{Driver: "mysql", DSN: "x"}})
	require.Error(t, err)
}
