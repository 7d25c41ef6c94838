package gormlog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestShortCaller(t *testing.T) {
	tests := map[string]string{
		"": "",
		"/home/ci/ispbill/internal/platform/db/db.go:38": "internal/platform/db/db.go:38",
		`C:\repo\project\pkg\x\y.go:12`:                 "pkg/x/y.go:12",
		"/usr/lib/go/src/database/sql/sql.go:10":         "database/sql/sql.go:10",
		"a/b.go:1":                                       "a/b.go:1",
	}
	for in, want := range tests {
		require.Equal(t, want, shortCaller(in), in)
	}
}

func TestTrace_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewWithLevel(zap.New(core).Sugar(), gormlogger.Warn)
	fc := func() (string, int64) { return "SELECT 1", 1 }

	l.Trace(context.Background(), time.Now(), fc, nil)
	require.Equal(t, 0, logs.Len())

	l.Trace(context.Background(), time.Now(), fc, gorm.ErrRecordNotFound)
	require.Equal(t, 0, logs.Len())

	l.Trace(context.Background(), time.Now(), fc, errors.New("boom"))
	require.Equal(t, 1, logs.FilterMessage("gorm_trace").Len())

	l.Trace(context.Background(), time.Now().Add(-time.Second), fc, nil)
	require.Equal(t, 1, logs.FilterMessage("gorm_slow").Len())

	l.LogMode(gormlogger.Silent).Trace(context.Background(), time.Now(), fc, errors.New("boom"))
	require.Equal(t, 2, logs.Len())
}
