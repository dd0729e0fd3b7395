package logger

import (
	"context"

	"go.uber.org/zap"
)

// Field names stamped on request-scoped entries. RequestIDField is also the
// gin key the request ID middleware sets.
const (
	RequestIDField    = "request_id"
	EmployeeCodeField = "employee_code"
)

type scopeKey struct{}

// scope is what a request context carries for logging
type scope struct {
	logger       *zap.Logger
	requestID    string
	employeeCode string
}

func scopeOf(ctx context.Context) scope {
	if ctx == nil {
		return scope{}
	}
	s, _ := ctx.Value(scopeKey{}).(scope)
	return s
}

// WithContext attaches logger to ctx. A request ID or employee code already
// on ctx is kept.
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	s := scopeOf(ctx)
	s.logger = logger
	return context.WithValue(ctx, scopeKey{}, s)
}

// FromContext returns the logger attached to ctx, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if l := scopeOf(ctx).logger; l != nil {
		return l
	}
	return zap.NewNop()
}

// WithRequestID records id on ctx and attaches logger tagged with it
func WithRequestID(ctx context.Context, logger *zap.Logger, id string) (context.Context, *zap.Logger) {
	s := scopeOf(ctx)
	s.requestID = id
	s.logger = logger.With(zap.String(RequestIDField, id))
	return context.WithValue(ctx, scopeKey{}, s), s.logger
}

// WithEmployeeCode records the employee a report is built for
func WithEmployeeCode(ctx context.Context, logger *zap.Logger, code string) (context.Context, *zap.Logger) {
	s := scopeOf(ctx)
	s.employeeCode = code
	s.logger = logger.With(zap.String(EmployeeCodeField, code))
	return context.WithValue(ctx, scopeKey{}, s), s.logger
}

func GetRequestID(ctx context.Context) string { return scopeOf(ctx).requestID }

func GetEmployeeCode(ctx context.Context) string { return scopeOf(ctx).employeeCode }

// For tags base with the request ID and employee code carried by ctx.
// Services keep their own component logger and log through For so entries
// still line up with the request.
func For(ctx context.Context, base *zap.Logger) *zap.Logger {
	if base == nil {
		base = zap.NewNop()
	}
	s := scopeOf(ctx)
	fields := make([]zap.Field, 0, 2)
	if s.requestID != "" {
		fields = append(fields, zap.String(RequestIDField, s.requestID))
	}
	if s.employeeCode != "" {
		fields = append(fields, zap.String(EmployeeCodeField, s.employeeCode))
	}
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}
