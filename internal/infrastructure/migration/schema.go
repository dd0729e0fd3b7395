package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// RequiredIndexes are the unique indexes ingestion depends on. The identity
// hash index admits each sales fact once; the others key the reference
// upserts.
var RequiredIndexes = []string{
	"uq_sales_records_identity_hash",
	"uq_employees_code",
	"uq_model_references_name_period",
	"uq_channel_targets_scope",
}

// ErrSchemaIncomplete reports a database missing a required index
var ErrSchemaIncomplete = errors.New("schema incomplete")

// VerifySchema checks the current schema carries every required index
func VerifySchema(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx,
		`SELECT indexname FROM pg_indexes WHERE schemaname = current_schema()`)
	if err != nil {
		return fmt.Errorf("failed to list indexes: %w", err)
	}
	defer rows.Close()

	present := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("failed to read index name: %w", err)
		}
		present[name] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to list indexes: %w", err)
	}

	var missing []string
	for _, name := range RequiredIndexes {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrSchemaIncomplete, strings.Join(missing, ", "))
	}
	return nil
}
