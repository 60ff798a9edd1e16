package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/mateusmacedo/go-servici/internal/servici/domain"
	pkgApp "github.com/mateusmacedo/go-servici/pkg/application"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS messages (
	id    INTEGER PRIMARY KEY,
	value TEXT NOT NULL
)`

// SQLitePersistable guarda mensagens num arquivo SQLite local.
type SQLitePersistable struct {
	sqlDB  *sql.DB
	logger pkgApp.AppLogger
}

// OpenSQLitePersistable abre (ou cria) o banco em path e aplica o schema.
func OpenSQLitePersistable(path string, logger pkgApp.AppLogger) (*SQLitePersistable, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(sqliteSchema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLitePersistable{sqlDB: sqlDB, logger: logger}, nil
}

func (s *SQLitePersistable) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *SQLitePersistable) Save(ctx context.Context, id uint32, value string) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO messages (id, value) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET value = excluded.value`,
		id, value,
	)
	if err != nil {
		pkgApp.LogError(ctx, s.logger, "failed to save message", err, map[string]interface{}{"id": id})
		return domain.NewPersistenceError("save", id, err)
	}

	pkgApp.LogDebug(ctx, s.logger, "message saved", map[string]interface{}{"id": id})
	return nil
}

func (s *SQLitePersistable) Load(ctx context.Context, id uint32) (string, error) {
	var value string
	err := s.sqlDB.QueryRowContext(ctx, `SELECT value FROM messages WHERE id = ?`, id).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		pkgApp.LogDebug(ctx, s.logger, "message not found", map[string]interface{}{"id": id})
		return domain.NotFound, nil
	}
	if err != nil {
		pkgApp.LogError(ctx, s.logger, "failed to load message", err, map[string]interface{}{"id": id})
		return "", domain.NewPersistenceError("load", id, err)
	}

	pkgApp.LogDebug(ctx, s.logger, "message loaded", map[string]interface{}{"id": id})
	return value, nil
}
