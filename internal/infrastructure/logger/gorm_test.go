package logger

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func statement(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Info, GormLevel("debug"))
	assert.Equal(t, gormlogger.Warn, GormLevel("info"))
	assert.Equal(t, gormlogger.Warn, GormLevel("WARN"))
	assert.Equal(t, gormlogger.Error, GormLevel("error"))
	assert.Equal(t, gormlogger.Silent, GormLevel("silent"))
	assert.Equal(t, gormlogger.Warn, GormLevel(""))
}

func TestGormLogger_Trace(t *testing.T) {
	t.Run("failure is logged with the request's fields", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		root := zap.New(core)
		l := NewGormLogger(root, GormLoggerConfig{Level: "info"})

		ctx, _ := WithRequestID(context.Background(), root, "req-1")
		ctx, _ = WithEmployeeCode(ctx, FromContext(ctx), "TSE01")
		l.Trace(ctx, time.Now(), statement(`INSERT INTO "sales_records"`, 0), errors.New("deadlock detected"))

		entries := logs.FilterMessage("SQL failed").All()
		require.Len(t, entries, 1)
		fields := entries[0].ContextMap()
		assert.Equal(t, "req-1", fields["request_id"])
		assert.Equal(t, "TSE01", fields["employee_code"])
		assert.Equal(t, "deadlock detected", fields["error"])
		assert.Equal(t, ComponentGorm, entries[0].LoggerName)
	})

	t.Run("record not found is an answer", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), GormLoggerConfig{Level: "debug"})

		l.Trace(context.Background(), time.Now(), statement(`SELECT * FROM "employees"`, 0), gormlogger.ErrRecordNotFound)

		assert.Empty(t, logs.FilterMessage("SQL failed").All())
	})

	t.Run("slow statement", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), GormLoggerConfig{Level: "info", SlowThreshold: 10 * time.Millisecond})

		l.Trace(context.Background(), time.Now().Add(-time.Second), statement(`SELECT * FROM "sales_records"`, 1200), nil)

		entries := logs.FilterMessage("Slow SQL").All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
		assert.EqualValues(t, 1200, entries[0].ContextMap()["rows"])
	})

	t.Run("fast statements only at debug", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		query := statement(`SELECT * FROM "model_references"`, 3)

		NewGormLogger(zap.New(core), GormLoggerConfig{Level: "info"}).Trace(context.Background(), time.Now(), query, nil)
		assert.Zero(t, logs.Len())

		NewGormLogger(zap.New(core), GormLoggerConfig{Level: "debug"}).Trace(context.Background(), time.Now(), query, nil)
		assert.Equal(t, 1, logs.FilterMessage("SQL").Len())
	})

	t.Run("silent", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), GormLoggerConfig{Level: "debug"}).LogMode(gormlogger.Silent)

		l.Trace(context.Background(), time.Now(), statement("SELECT 1", 1), errors.New("boom"))
		assert.Zero(t, logs.Len())
	})
}

func TestGormLogger_TruncatesBatchInserts(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), GormLoggerConfig{Level: "debug", MaxSQLLength: 32})

	long := `INSERT INTO "sales_records" VALUES ` + strings.Repeat("($1,$2,$3),", 200)
	l.Trace(context.Background(), time.Now(), statement(long, 200), nil)

	entries := logs.All()
	require.Len(t, entries, 1)
	sql := entries[0].ContextMap()["sql"].(string)
	assert.True(t, strings.HasSuffix(sql, "...(truncated)"))
	assert.Len(t, sql, 32+len("...(truncated)"))
}

func TestGormLogger_Messages(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), GormLoggerConfig{Level: "error"})

	l.Info(context.Background(), "migrated %d tables", 4)
	l.Warn(context.Background(), "slow %s", "query")
	l.Error(context.Background(), "failed: %v", "conn reset")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "failed: conn reset", logs.All()[0].Message)
}
