package common

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/Rana718/transit-studio/internal/types"
)

// SQLAdapter implements the row operations shared by the database/sql based
// providers. Providers embed it and add connection handling and
// introspection.
type SQLAdapter struct {
	DB      *sql.DB
	Dialect Dialect
}

func (s *SQLAdapter) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

func (s *SQLAdapter) Ping(ctx context.Context) error {
	if s.DB == nil {
		return fmt.Errorf("not connected to database")
	}
	return s.DB.PingContext(ctx)
}

func (s *SQLAdapter) Exec(ctx context.Context, script string) error {
	for _, stmt := range SplitStatements(script) {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute statement: %w", err)
		}
	}
	return nil
}

func (s *SQLAdapter) GetAllTableRowCounts(ctx context.Context, tableNames []string) (map[string]int, error) {
	result := make(map[string]int, len(tableNames))
	if len(tableNames) == 0 {
		return result, nil
	}

	query, err := s.Dialect.RowCounts(tableNames)
	if err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, query)
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

func (s *SQLAdapter) ListRows(ctx context.Context, tableName string, columns []types.SchemaColumn, q types.RowQuery) (*types.RowPage, error) {
	if err := ValidateIdentifiers(tableName); err != nil {
		return nil, err
	}
	dataQ, countQ := s.Dialect.ListQueries(tableName, columns, nil, q)

	query, args, err := countQ.ToSql()
	if err != nil {
		return nil, err
	}
	var total int
	if err := s.DB.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count rows in %s: %w", tableName, err)
	}

	query, args, err = dataQ.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query table %s: %w", tableName, err)
	}
	defer rows.Close()

	data, err := ScanRows(rows, columns)
	if err != nil {
		return nil, err
	}
	return &types.RowPage{Data: data, Total: total}, nil
}

func (s *SQLAdapter) InsertRow(ctx context.Context, tableName string, data map[string]any) error {
	if len(data) == 0 {
		return fmt.Errorf("no data provided")
	}
	if err := ValidateIdentifiers(append([]string{tableName}, sortedKeys(data)...)...); err != nil {
		return err
	}
	_, err := s.exec(ctx, s.Dialect.Insert(tableName, data))
	return err
}

func (s *SQLAdapter) UpdateRow(ctx context.Context, tableName, pkColumn, pk string, data map[string]any) error {
	if len(data) == 0 {
		return fmt.Errorf("no data provided")
	}
	if err := ValidateIdentifiers(append([]string{tableName, pkColumn}, sortedKeys(data)...)...); err != nil {
		return err
	}
	affected, err := s.exec(ctx, s.Dialect.Update(tableName, pkColumn, pk, data))
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%s %s: %w", tableName, pk, ErrNotFound)
	}
	return nil
}

func (s *SQLAdapter) DeleteRow(ctx context.Context, tableName, pkColumn, pk string) error {
	if err := ValidateIdentifiers(tableName, pkColumn); err != nil {
		return err
	}
	affected, err := s.exec(ctx, s.Dialect.Delete(tableName, pkColumn, pk))
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%s %s: %w", tableName, pk, ErrNotFound)
	}
	return nil
}

func (s *SQLAdapter) CascadeDeleteRoute(ctx context.Context, routeID string, opts types.CascadeOptions) (*types.CascadeResult, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	result, err := CascadeDeleteRoute(ctx, sqlTx{tx}, s.Dialect, routeID, opts)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit cascade delete: %w", err)
	}
	return result, nil
}

func (s *SQLAdapter) exec(ctx context.Context, b squirrel.Sqlizer) (int64, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, err
	}
	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ScanRows reads every row into a column-name keyed map. Types of result
// columns missing from schema come from the driver.
func ScanRows(rows *sql.Rows, schema []types.SchemaColumn) ([]map[string]any, error) {
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	declared := ColumnTypes(schema)
	columns := make([]string, len(colTypes))
	dbTypes := make([]string, len(colTypes))
	for i, ct := range colTypes {
		columns[i] = ct.Name()
		if t, ok := declared[ct.Name()]; ok {
			dbTypes[i] = t
		} else {
			dbTypes[i] = ct.DatabaseTypeName()
		}
	}

	result := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = FormatValue(values[i], dbTypes[i])
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// ColumnTypes maps column names to their declared types.
func ColumnTypes(columns []types.SchemaColumn) map[string]string {
	out := make(map[string]string, len(columns))
	for _, col := range columns {
		out[col.Name] = col.Type
	}
	return out
}

type sqlTx struct {
	tx *sql.Tx
}

func (t sqlTx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (t sqlTx) Count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	err := t.tx.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}
