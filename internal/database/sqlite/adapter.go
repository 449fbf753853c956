package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/Rana718/transit-studio/internal/database/common"
	_ "github.com/mattn/go-sqlite3"
)

type Adapter struct {
	common.SQLAdapter
	path string
}

// SQLite stores declared types loosely, so the declared name is normalised
// rather than mapped to a storage class.
var typeMap = map[string]string{
	"varchar": "VARCHAR", "text": "TEXT", "char": "CHAR", "clob": "TEXT",
	"int": "INTEGER", "integer": "INTEGER", "bigint": "BIGINT", "smallint": "SMALLINT", "tinyint": "TINYINT",
	"real": "REAL", "double": "DOUBLE", "float": "FLOAT",
	"numeric": "NUMERIC", "decimal": "DECIMAL",
	"boolean": "BOOLEAN", "bool": "BOOLEAN",
	"date": "DATE", "datetime": "DATETIME", "timestamp": "TIMESTAMP", "time": "TIME",
	"blob": "BLOB",
}

func New() *Adapter {
	return &Adapter{
		SQLAdapter: common.SQLAdapter{
			Dialect: common.Dialect{
				Placeholder: squirrel.Question,
				Quote:       quoteIdentifier,
				TextType:    "TEXT",
				Like:        "LIKE",
			},
		},
	}
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (s *Adapter) Connect(ctx context.Context, url string) error {
	dbPath := strings.TrimPrefix(url, "sqlite://")
	s.path = dbPath
	if idx := strings.Index(s.path, "?"); idx > 0 {
		s.path = s.path[:idx]
	}
	if !strings.Contains(dbPath, "?") {
		dbPath += "?cache=shared&_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open SQLite connection: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	s.DB = db
	return nil
}

func (s *Adapter) MapColumnType(dbType string) string {
	base := strings.ToLower(strings.TrimSpace(dbType))
	if idx := strings.Index(base, "("); idx > 0 {
		base = strings.TrimSpace(base[:idx])
	}
	if mapped, ok := typeMap[base]; ok {
		return mapped
	}
	if base == "" {
		return "TEXT"
	}
	return strings.ToUpper(base)
}
