package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

// MemoryDSN открывает SQLite в памяти, используется в тестах
const MemoryDSN = ":memory:"

// NewSQLite открывает встроенную базу SQLite
func NewSQLite(path string, logger *zap.Logger) (*SQL, error) {
	if path != MemoryDSN {
		dir := filepath.Dir(path)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
	}

	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// SQLite допускает одного писателя, а база в памяти живет в одном соединении
	sqldb.SetMaxOpenConns(1)

	pragmas := []string{"PRAGMA foreign_keys=ON", "PRAGMA busy_timeout=5000"}
	if path != MemoryDSN {
		pragmas = append(pragmas, "PRAGMA journal_mode=WAL")
	}
	for _, pragma := range pragmas {
		if _, err := sqldb.ExecContext(context.Background(), pragma); err != nil {
			_ = sqldb.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())
	addDebugHook(db, logger)

	logger.Info("Opened SQLite database with Bun ORM", zap.String("path", path))

	return newSQL(db, logger), nil
}
