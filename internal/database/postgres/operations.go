package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/Rana718/transit-studio/internal/database/common"
	"github.com/Rana718/transit-studio/internal/types"
	"github.com/jackc/pgx/v5"
)

func (p *Adapter) ListRows(ctx context.Context, tableName string, columns []types.SchemaColumn, q types.RowQuery) (*types.RowPage, error) {
	if err := common.ValidateIdentifiers(tableName); err != nil {
		return nil, err
	}

	selectCols := make([]string, 0, len(columns))
	for _, col := range columns {
		quoted := p.dialect.Quote(col.Name)
		if nativeTypes[col.Type] {
			selectCols = append(selectCols, quoted)
		} else {
			selectCols = append(selectCols, fmt.Sprintf("%s::text AS %s", quoted, quoted))
		}
	}
	dataQ, countQ := p.dialect.ListQueries(tableName, columns, selectCols, q)

	query, args, err := countQ.ToSql()
	if err != nil {
		return nil, err
	}
	var total int
	if err := p.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count rows in %s: %w", tableName, err)
	}

	query, args, err = dataQ.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query table %s: %w", tableName, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	declared := common.ColumnTypes(columns)
	data := make([]map[string]any, 0, q.Limit)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(map[string]any, len(fields))
		for i, field := range fields {
			row[field.Name] = common.FormatValue(values[i], declared[field.Name])
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &types.RowPage{Data: data, Total: total}, nil
}

func (p *Adapter) InsertRow(ctx context.Context, tableName string, data map[string]any) error {
	if len(data) == 0 {
		return fmt.Errorf("no data provided")
	}
	if err := common.ValidateIdentifiers(append([]string{tableName}, keys(data)...)...); err != nil {
		return err
	}
	_, err := p.exec(ctx, p.dialect.Insert(tableName, data))
	return err
}

func (p *Adapter) UpdateRow(ctx context.Context, tableName, pkColumn, pk string, data map[string]any) error {
	if len(data) == 0 {
		return fmt.Errorf("no data provided")
	}
	if err := common.ValidateIdentifiers(append([]string{tableName, pkColumn}, keys(data)...)...); err != nil {
		return err
	}
	affected, err := p.exec(ctx, p.dialect.Update(tableName, pkColumn, pk, data))
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%s %s: %w", tableName, pk, common.ErrNotFound)
	}
	return nil
}

func (p *Adapter) DeleteRow(ctx context.Context, tableName, pkColumn, pk string) error {
	if err := common.ValidateIdentifiers(tableName, pkColumn); err != nil {
		return err
	}
	affected, err := p.exec(ctx, p.dialect.Delete(tableName, pkColumn, pk))
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%s %s: %w", tableName, pk, common.ErrNotFound)
	}
	return nil
}

func (p *Adapter) CascadeDeleteRoute(ctx context.Context, routeID string, opts types.CascadeOptions) (*types.CascadeResult, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	result, err := common.CascadeDeleteRoute(ctx, pgxTx{tx}, p.dialect, routeID, opts)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit cascade delete: %w", err)
	}
	return result, nil
}

func (p *Adapter) exec(ctx context.Context, b squirrel.Sqlizer) (int64, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, err
	}
	tag, err := p.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

type pgxTx struct {
	tx pgx.Tx
}

func (t pgxTx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := t.tx.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (t pgxTx) Count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	err := t.tx.QueryRow(ctx, query, args...).Scan(&n)
	return n, err
}

func keys(data map[string]any) []string {
	out := make([]string, 0, len(data))
	for k := range data {
		out = append(out, k)
	}
	return out
}
