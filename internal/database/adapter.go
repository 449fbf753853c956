package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rana718/transit-studio/internal/database/common"
	"github.com/Rana718/transit-studio/internal/types"
)

var (
	ErrNotFound          = common.ErrNotFound
	ErrInvalidIdentifier = common.ErrInvalidIdentifier
	ErrNoPrimaryKey      = errors.New("table has no primary key")
)

// Adapter is the storage contract behind the record API.
type Adapter interface {
	Connect(ctx context.Context, url string) error
	Close() error
	Ping(ctx context.Context) error

	// Exec runs one or more statements separated by semicolons.
	Exec(ctx context.Context, sql string) error

	GetAllTableNames(ctx context.Context) ([]string, error)
	GetAllTableRowCounts(ctx context.Context, tableNames []string) (map[string]int, error)
	GetTableColumns(ctx context.Context, tableName string) ([]types.SchemaColumn, error)

	ListRows(ctx context.Context, tableName string, columns []types.SchemaColumn, q types.RowQuery) (*types.RowPage, error)
	InsertRow(ctx context.Context, tableName string, data map[string]any) error
	UpdateRow(ctx context.Context, tableName, pkColumn, pk string, data map[string]any) error
	DeleteRow(ctx context.Context, tableName, pkColumn, pk string) error
	CascadeDeleteRoute(ctx context.Context, routeID string, opts types.CascadeOptions) (*types.CascadeResult, error)
}

// PrimaryKey returns the name of the single primary key column. Tables
// without one, or with a composite key, have no addressable rows.
func PrimaryKey(columns []types.SchemaColumn) (string, error) {
	var pk string
	for _, col := range columns {
		if !col.IsPrimary {
			continue
		}
		if pk != "" {
			return "", fmt.Errorf("%w: composite key (%s, %s, ...)", ErrNoPrimaryKey, pk, col.Name)
		}
		pk = col.Name
	}
	if pk == "" {
		return "", ErrNoPrimaryKey
	}
	return pk, nil
}

func IsValidIdentifier(name string) bool {
	return common.IsValidIdentifier(name)
}
