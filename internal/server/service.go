package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rana718/transit-studio/internal/database"
	"github.com/Rana718/transit-studio/internal/types"
)

var errEmptyPayload = errors.New("request body has no fields")

// Service sits between the HTTP handlers and the database adapter.
type Service struct {
	adapter database.Adapter
}

func NewService(adapter database.Adapter) *Service {
	return &Service{adapter: adapter}
}

func (s *Service) GetTables(ctx context.Context) ([]types.TableInfo, error) {
	tables, err := s.adapter.GetAllTableNames(ctx)
	if err != nil {
		return nil, err
	}

	counts, err := s.adapter.GetAllTableRowCounts(ctx, tables)
	if err != nil {
		return nil, fmt.Errorf("failed to count rows: %w", err)
	}

	result := make([]types.TableInfo, 0, len(tables))
	for _, table := range tables {
		result = append(result, types.TableInfo{Name: table, RowCount: counts[table]})
	}
	return result, nil
}

func (s *Service) columns(ctx context.Context, tableName string) ([]types.SchemaColumn, error) {
	if !database.IsValidIdentifier(tableName) {
		return nil, fmt.Errorf("%w: table %q", database.ErrInvalidIdentifier, tableName)
	}
	return s.adapter.GetTableColumns(ctx, tableName)
}

func (s *Service) GetSchema(ctx context.Context, tableName string) (*types.TableSchema, error) {
	cols, err := s.columns(ctx, tableName)
	if err != nil {
		return nil, err
	}

	schema := &types.TableSchema{Columns: make([]types.ColumnInfo, len(cols))}
	for i, col := range cols {
		schema.Columns[i] = types.ColumnInfo{
			Name:             col.Name,
			Type:             col.Type,
			PrimaryKey:       col.IsPrimary,
			Nullable:         col.Nullable,
			Default:          col.Default,
			AutoIncrement:    col.IsAutoIncrement,
			ForeignKeyTable:  col.ForeignKeyTable,
			ForeignKeyColumn: col.ForeignKeyColumn,
		}
	}
	// pk stays empty for keyless and composite-key tables.
	schema.PK, _ = database.PrimaryKey(cols)
	return schema, nil
}

func (s *Service) ListRecords(ctx context.Context, tableName string, q types.RowQuery) (*types.RowPage, error) {
	cols, err := s.columns(ctx, tableName)
	if err != nil {
		return nil, err
	}
	return s.adapter.ListRows(ctx, tableName, cols, q)
}

func (s *Service) CreateRecord(ctx context.Context, tableName string, data map[string]any) (map[string]any, error) {
	cols, err := s.columns(ctx, tableName)
	if err != nil {
		return nil, err
	}
	if err := checkColumns(cols, data); err != nil {
		return nil, err
	}
	if err := s.adapter.InsertRow(ctx, tableName, data); err != nil {
		return nil, err
	}
	return data, nil
}

// UpdateRecord writes data to the row identified by pk. The primary key
// itself is never rewritten.
func (s *Service) UpdateRecord(ctx context.Context, tableName, pk string, data map[string]any) (map[string]any, error) {
	cols, err := s.columns(ctx, tableName)
	if err != nil {
		return nil, err
	}
	pkColumn, err := database.PrimaryKey(cols)
	if err != nil {
		return nil, err
	}
	if err := checkColumns(cols, data); err != nil {
		return nil, err
	}

	changes := make(map[string]any, len(data))
	for k, v := range data {
		if k != pkColumn {
			changes[k] = v
		}
	}
	if len(changes) == 0 {
		return nil, errEmptyPayload
	}

	if err := s.adapter.UpdateRow(ctx, tableName, pkColumn, pk, changes); err != nil {
		return nil, err
	}

	record := make(map[string]any, len(changes)+1)
	for k, v := range changes {
		record[k] = v
	}
	record[pkColumn] = pk
	return record, nil
}

func (s *Service) DeleteRecord(ctx context.Context, tableName, pk string) error {
	cols, err := s.columns(ctx, tableName)
	if err != nil {
		return err
	}
	pkColumn, err := database.PrimaryKey(cols)
	if err != nil {
		return err
	}
	return s.adapter.DeleteRow(ctx, tableName, pkColumn, pk)
}

func (s *Service) CascadeDelete(ctx context.Context, routeID string, opts types.CascadeOptions) (*types.CascadeResult, error) {
	return s.adapter.CascadeDeleteRoute(ctx, routeID, opts)
}

func checkColumns(cols []types.SchemaColumn, data map[string]any) error {
	if len(data) == 0 {
		return errEmptyPayload
	}
	known := make(map[string]bool, len(cols))
	for _, col := range cols {
		known[col.Name] = true
	}
	for k := range data {
		if !known[k] {
			return fmt.Errorf("%w: unknown column %q", database.ErrInvalidIdentifier, k)
		}
	}
	return nil
}
