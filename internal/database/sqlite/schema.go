package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Rana718/transit-studio/internal/database/common"
	"github.com/Rana718/transit-studio/internal/types"
)

func (s *Adapter) GetAllTableNames(ctx context.Context) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tables = append(tables, tableName)
	}
	return tables, rows.Err()
}

// GetTableColumns reads PRAGMA table_info, which cannot take a bound table
// name, so the name is validated first. An unknown table yields no columns
// and is reported as not found.
func (s *Adapter) GetTableColumns(ctx context.Context, tableName string) ([]types.SchemaColumn, error) {
	if err := common.ValidateIdentifiers(tableName); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdentifier(tableName)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []types.SchemaColumn
	keyParts := 0
	for rows.Next() {
		var cid, notNull, pk int
		var name, dataType string
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &name, &dataType, &notNull, &defaultValue, &pk); err != nil {
			return nil, err
		}

		column := types.SchemaColumn{
			Name:      name,
			Type:      s.MapColumnType(dataType),
			Nullable:  notNull == 0 && pk == 0,
			IsPrimary: pk > 0,
		}
		if column.IsPrimary {
			keyParts++
			column.IsAutoIncrement = strings.EqualFold(dataType, "INTEGER")
		}
		if defaultValue.Valid {
			column.Default = defaultValue.String
		}
		columns = append(columns, column)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s: %w", tableName, common.ErrNotFound)
	}
	// Only a lone INTEGER PRIMARY KEY aliases the rowid.
	if keyParts > 1 {
		for i := range columns {
			columns[i].IsAutoIncrement = false
		}
	}

	fkRows, err := s.DB.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%s)", quoteIdentifier(tableName)))
	if err != nil {
		return columns, nil
	}
	defer fkRows.Close()

	for fkRows.Next() {
		var id, seq int
		var table, from string
		var to, onUpdate, onDelete, match sql.NullString
		if err := fkRows.Scan(&id, &seq, &table, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			continue
		}
		for i := range columns {
			if columns[i].Name == from {
				columns[i].ForeignKeyTable = table
				columns[i].ForeignKeyColumn = to.String
				break
			}
		}
	}
	return columns, nil
}
