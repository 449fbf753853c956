package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/Rana718/transit-studio/internal/database/common"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type Adapter struct {
	pool    *pgxpool.Pool
	dialect common.Dialect
}

var typeMap = map[string]string{
	"character varying": "VARCHAR", "varchar": "VARCHAR",
	"character": "CHAR", "char": "CHAR", "bpchar": "CHAR", "text": "TEXT",
	"integer": "INTEGER", "int4": "INTEGER", "bigint": "BIGINT", "int8": "BIGINT",
	"smallint": "SMALLINT", "int2": "SMALLINT", "boolean": "BOOLEAN", "bool": "BOOLEAN",
	"timestamptz": "TIMESTAMP WITH TIME ZONE", "timestamp": "TIMESTAMP",
	"date": "DATE", "time": "TIME", "timetz": "TIME", "numeric": "NUMERIC",
	"real": "REAL", "float4": "REAL", "double precision": "DOUBLE PRECISION", "float8": "DOUBLE PRECISION",
	"uuid": "UUID", "json": "JSON", "jsonb": "JSONB",
}

// nativeTypes are scanned as-is; every other column is selected as text so
// values such as NUMERIC, TIME or UUID reach the client in a readable form.
var nativeTypes = map[string]bool{
	"INTEGER": true, "BIGINT": true, "SMALLINT": true,
	"REAL": true, "DOUBLE PRECISION": true, "BOOLEAN": true,
	"TEXT": true, "VARCHAR": true, "CHAR": true,
	"DATE": true, "TIMESTAMP": true, "TIMESTAMP WITH TIME ZONE": true,
}

func New() *Adapter {
	return &Adapter{
		dialect: common.Dialect{
			Placeholder: squirrel.Dollar,
			Quote:       pq.QuoteIdentifier,
			TextType:    "TEXT",
			Like:        "ILIKE",
		},
	}
}

func (p *Adapter) Connect(ctx context.Context, url string) error {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return fmt.Errorf("failed to parse connection URL: %w", err)
	}

	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	config.MaxConns = 4
	config.MinConns = 0
	config.MaxConnLifetime = 15 * time.Minute
	config.MaxConnIdleTime = 3 * time.Minute
	config.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	p.pool = pool
	return nil
}

func (p *Adapter) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

func (p *Adapter) Ping(ctx context.Context) error {
	if p.pool == nil {
		return fmt.Errorf("not connected to database")
	}
	return p.pool.Ping(ctx)
}

func (p *Adapter) Exec(ctx context.Context, script string) error {
	for _, stmt := range common.SplitStatements(script) {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute statement: %w", err)
		}
	}
	return nil
}

func (p *Adapter) MapColumnType(udtName string) string {
	if mapped, ok := typeMap[strings.ToLower(udtName)]; ok {
		return mapped
	}
	return strings.ToUpper(udtName)
}

func (p *Adapter) GetAllTableRowCounts(ctx context.Context, tableNames []string) (map[string]int, error) {
	result := make(map[string]int, len(tableNames))
	if len(tableNames) == 0 {
		return result, nil
	}

	query, err := p.dialect.RowCounts(tableNames)
	if err != nil {
		return nil, err
	}
	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to batch count table rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, fmt.Errorf("failed to scan batch count result: %w", err)
		}
		result[name] = count
	}
	return result, rows.Err()
}
