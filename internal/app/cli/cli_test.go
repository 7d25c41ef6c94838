package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fatflowers/ispbill/internal/app/service/billing"
	"github.com/fatflowers/ispbill/internal/models"
)

func setupEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("APP_CONFIG_FILE", filepath.Join(dir, "missing.yaml"))
	t.Setenv("APP_ENV", "prod")
	t.Setenv("APP_DATABASE_DRIVER", "sqlite")
	t.Setenv("APP_DATABASE_DSN", filepath.Join(dir, "billing.db"))
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	return out.String()
}

func TestMigrate(t *testing.T) {
	setupEnv(t)
	out := run(t, "migrate")
	require.Equal(t, "schema version "+strconv.Itoa(models.CurrentSchemaVersion)+"\n", out)

	// idempotent
	require.Equal(t, out, run(t, "migrate"))
}

func TestReconcileAndLedger(t *testing.T) {
	setupEnv(t)

	var res billing.CommandResult
	require.NoError(t, json.Unmarshal([]byte(run(t, "reconcile")), &res))
	require.EqualValues(t, "reconcile", res.Command)
	require.False(t, res.Applied)
	require.True(t, res.Persisted)

	var entries []billing.LedgerView
	require.NoError(t, json.Unmarshal([]byte(run(t, "ledger")), &entries))
	require.Empty(t, entries)
}
