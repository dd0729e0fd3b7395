package telemetry

import (
	"fmt"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// GormTracing controls the spans recorded around SQL statements
type GormTracing struct {
	Enabled bool
	DBName  string
	// WithVariables keeps bound values in the recorded statement. Sales
	// uploads carry employee codes, so this stays off outside development.
	WithVariables bool
}

// InstrumentGorm registers the otelgorm plugin on db. Spans go to provider,
// or to the global provider when it is nil.
func InstrumentGorm(db *gorm.DB, cfg GormTracing, provider trace.TracerProvider) error {
	if !cfg.Enabled {
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
	if !cfg.WithVariables {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if provider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(provider))
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return fmt.Errorf("failed to register gorm tracing: %w", err)
	}
	return nil
}
