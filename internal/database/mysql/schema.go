package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Rana718/transit-studio/internal/database/common"
	"github.com/Rana718/transit-studio/internal/types"
)

func (m *Adapter) GetAllTableNames(ctx context.Context) ([]string, error) {
	rows, err := m.DB.QueryContext(ctx, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE'
		ORDER BY table_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func (m *Adapter) GetTableColumns(ctx context.Context, tableName string) ([]types.SchemaColumn, error) {
	rows, err := m.DB.QueryContext(ctx, `
		SELECT
			c.column_name,
			c.data_type,
			c.column_type,
			c.is_nullable,
			c.column_default,
			CASE WHEN c.column_key = 'PRI' THEN 1 ELSE 0 END AS is_primary_key,
			c.extra,
			k.referenced_table_name,
			k.referenced_column_name
		FROM information_schema.columns c
		LEFT JOIN information_schema.key_column_usage k
			ON c.table_schema = k.table_schema
			AND c.table_name = k.table_name
			AND c.column_name = k.column_name
			AND k.referenced_table_name IS NOT NULL
		WHERE c.table_name = ? AND c.table_schema = DATABASE()
		ORDER BY c.ordinal_position`, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []types.SchemaColumn
	for rows.Next() {
		var column types.SchemaColumn
		var dataType, columnType, isNullable, extra string
		var columnDefault, refTable, refColumn sql.NullString
		var isPrimary int

		if err := rows.Scan(&column.Name, &dataType, &columnType, &isNullable, &columnDefault,
			&isPrimary, &extra, &refTable, &refColumn); err != nil {
			return nil, err
		}

		column.Type = m.MapColumnType(dataType, columnType)
		column.Nullable = isNullable == "YES"
		column.IsPrimary = isPrimary == 1
		column.IsAutoIncrement = strings.Contains(strings.ToLower(extra), "auto_increment")
		column.Default = columnDefault.String
		column.ForeignKeyTable = refTable.String
		column.ForeignKeyColumn = refColumn.String
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
