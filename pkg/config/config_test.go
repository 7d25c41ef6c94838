package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv("APP_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	c, err := New()
	require.NoError(t, err)
	require.Equal(t, DBDriverPostgres, c.Database.Driver)
	require.Equal(t, 30, c.Billing.LedgerRetentionDays)
	require.Equal(t, 30*24*time.Hour, c.Billing.LedgerRetention())
	require.Equal(t, "Deleted Package", c.Billing.DeletedPackageName)
	require.True(t, c.Billing.ReconcileOnStart)
	require.Empty(t, c.Lock.RedisAddr)
	require.Equal(t, 8888, c.Server.Port)
}

func TestNew_FileAndEnvOverride(t *testing.T) {
	file := filepath.Join(t.TempDir(), "ispbill.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
database:
  driver: sqlite
  dsn: file:ispbill.db
billing:
  ledger_retention_days: 7
lock:
  redis_addr: localhost:6379
  ttl: 5s
`), 0o600))
	t.Setenv("APP_CONFIG_FILE", file)
	t.Setenv("APP_BILLING_DELETED_PACKAGE_NAME", "Retired")

	c, err := New()
	require.NoError(t, err)
	require.Equal(t, DBDriverSQLite, c.Database.Driver)
	require.Equal(t, "file:ispbill.db", c.Database.DSN)
	require.Equal(t, 7, c.Billing.LedgerRetentionDays)
	require.Equal(t, "Retired", c.Billing.DeletedPackageName)
	require.Equal(t, "localhost:6379", c.Lock.RedisAddr)
	require.Equal(t, 5*time.Second, c.Lock.TTL)
}

func TestValidate(t *testing.T) {
	ok := Config{Database: DBConfig{Driver: DBDriverSQLite}, Billing: BillingConfig{LedgerRetentionDays: 30}}
	require.NoError(t, ok.Validate())

	bad := ok
	bad.Database.Driver = "mysql"
	require.Error(t, bad.Validate())

	bad = ok
	bad.Billing.LedgerRetentionDays = 0
	require.Error(t, bad.Validate())

	bad = ok
	bad.Lock.RedisAddr = "localhost:6379"
	require.Error(t, bad.Validate())
}
