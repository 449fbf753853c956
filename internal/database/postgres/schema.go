package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/Rana718/transit-studio/internal/database/common"
	"github.com/Rana718/transit-studio/internal/types"
)

func (p *Adapter) GetAllTableNames(ctx context.Context) ([]string, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := make([]string, 0, 32)
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tables = append(tables, tableName)
	}
	return tables, rows.Err()
}

const columnsQuery = `
	SELECT
		c.column_name,
		c.udt_name,
		c.is_nullable,
		c.column_default,
		EXISTS (
			SELECT 1
			FROM information_schema.table_constraints tc
			JOIN information_schema.key_column_usage kcu
				ON tc.constraint_name = kcu.constraint_name
				AND tc.table_schema = kcu.table_schema
			WHERE tc.constraint_type = 'PRIMARY KEY'
				AND tc.table_schema = c.table_schema
				AND tc.table_name = c.table_name
				AND kcu.column_name = c.column_name
		) AS is_primary,
		fk.foreign_table_name,
		fk.foreign_column_name
	FROM information_schema.columns c
	LEFT JOIN LATERAL (
		SELECT ccu.table_name AS foreign_table_name, ccu.column_name AS foreign_column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage ccu
			ON tc.constraint_name = ccu.constraint_name
			AND tc.table_schema = ccu.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
			AND kcu.table_schema = c.table_schema
			AND kcu.table_name = c.table_name
			AND kcu.column_name = c.column_name
		LIMIT 1
	) fk ON true
	WHERE c.table_name = $1 AND c.table_schema = current_schema()
	ORDER BY c.ordinal_position
`

func (p *Adapter) GetTableColumns(ctx context.Context, tableName string) ([]types.SchemaColumn, error) {
	rows, err := p.pool.Query(ctx, columnsQuery, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []types.SchemaColumn
	for rows.Next() {
		var column types.SchemaColumn
		var udtName, isNullable string
		var columnDefault, fkTable, fkColumn *string

		if err := rows.Scan(&column.Name, &udtName, &isNullable, &columnDefault,
			&column.IsPrimary, &fkTable, &fkColumn); err != nil {
			return nil, err
		}

		column.Type = p.MapColumnType(udtName)
		column.Nullable = isNullable == "YES"
		if columnDefault != nil {
			column.Default = *columnDefault
			column.IsAutoIncrement = strings.Contains(strings.ToLower(*columnDefault), "nextval")
		}
		if fkTable != nil {
			column.ForeignKeyTable = *fkTable
		}
		if fkColumn != nil {
			column.ForeignKeyColumn = *fkColumn
		}
		columns = append(columns, column)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s: %w", tableName, common.ErrNotFound)
	}
	return columns, nil
}
