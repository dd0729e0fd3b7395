package migration

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const pingTimeout = 10 * time.Second

// UpFromFS opens its own connection to dsn, applies every pending migration
// found in fsys, checks the required indexes and closes the connection again.
// The shared gorm pool is never handed to the migrate driver, whose Close
// would close it.
func UpFromFS(ctx context.Context, dsn string, fsys fs.FS, logger *zap.Logger) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("failed to reach database: %w", err)
	}

	m, err := Open(db, fsys, "", logger)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		return err
	}
	return m.VerifySchema(ctx)
}
