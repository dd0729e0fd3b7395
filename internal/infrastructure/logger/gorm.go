package logger

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// defaultMaxSQLLength caps logged statements; batched sales inserts carry
// thousands of bind values.
const defaultMaxSQLLength = 2048

// GormLoggerConfig holds the statement log settings
type GormLoggerConfig struct {
	// Level is the service log level, mapped by GormLevel
	Level         string
	SlowThreshold time.Duration
	// MaxSQLLength truncates logged SQL; 0 means the default, negative
	// disables truncation
	MaxSQLLength int
}

// GormLogger routes GORM's statement log through zap. Statements executed
// under a request context use that request's logger, so they carry its
// request ID and employee code.
type GormLogger struct {
	base         *zap.Logger
	level        gormlogger.LogLevel
	slow         time.Duration
	maxSQLLength int
}

// NewGormLogger creates a new GORM logger backed by zap
func NewGormLogger(base *zap.Logger, cfg GormLoggerConfig) *GormLogger {
	maxLen := cfg.MaxSQLLength
	if maxLen == 0 {
		maxLen = defaultMaxSQLLength
	}
	return &GormLogger{
		base:         base.Named(ComponentGorm),
		level:        GormLevel(cfg.Level),
		slow:         cfg.SlowThreshold,
		maxSQLLength: maxLen,
	}
}

// GormLevel maps a service log level to a GORM level. Only debug logs every
// statement; info and warn keep slow statements and failures.
func GormLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "silent":
		return gormlogger.Silent
	case "debug":
		return gormlogger.Info
	case "error":
		return gormlogger.Error
	default:
		return gormlogger.Warn
	}
}

func (l *GormLogger) loggerFor(ctx context.Context) *zap.Logger {
	if reqLogger := scopeOf(ctx).logger; reqLogger != nil {
		return reqLogger.Named(ComponentGorm)
	}
	return l.base
}

// LogMode implements gormlogger.Interface
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

// Info implements gormlogger.Interface
func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		l.loggerFor(ctx).Sugar().Infof(msg, data...)
	}
}

// Warn implements gormlogger.Interface
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		l.loggerFor(ctx).Sugar().Warnf(msg, data...)
	}
}

// Error implements gormlogger.Interface
func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		l.loggerFor(ctx).Sugar().Errorf(msg, data...)
	}
}

// Trace implements gormlogger.Interface. A missing employee or model row is
// an answer, not a failure, so ErrRecordNotFound is never logged.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	failed := err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound)
	slow := l.slow > 0 && elapsed > l.slow
	switch {
	case failed && l.level >= gormlogger.Error:
		l.loggerFor(ctx).Error("SQL failed", append(l.statementFields(elapsed, fc), zap.Error(err))...)
	case slow && l.level >= gormlogger.Warn:
		l.loggerFor(ctx).Warn("Slow SQL", append(l.statementFields(elapsed, fc), zap.Duration("threshold", l.slow))...)
	case l.level >= gormlogger.Info:
		l.loggerFor(ctx).Debug("SQL", l.statementFields(elapsed, fc)...)
	}
}

func (l *GormLogger) statementFields(elapsed time.Duration, fc func() (string, int64)) []zap.Field {
	sql, rows := fc()
	if l.maxSQLLength > 0 && len(sql) > l.maxSQLLength {
		sql = sql[:l.maxSQLLength] + "...(truncated)"
	}
	return []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", sql),
	}
}
