package browser

import (
	"context"
	"errors"
	"testing"

	"github.com/Rana718/transit-studio/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTypeTag(t *testing.T) {
	tests := []struct {
		dbType string
		want   TypeTag
	}{
		{"INTEGER", TypeInteger},
		{"bigint", TypeInteger},
		{"int(11) unsigned", TypeInteger},
		{"DOUBLE PRECISION", TypeFloat},
		{"NUMERIC(10,6)", TypeFloat},
		{"REAL", TypeFloat},
		{"BOOLEAN", TypeBoolean},
		{"DATE", TypeDate},
		{"TIME", TypeTime},
		{"VARCHAR(255)", TypeText},
		{"TIMESTAMP", TypeText},
		{"INTERVAL", TypeText},
		{"POINT", TypeText},
		{"", TypeText},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseTypeTag(tt.dbType), tt.dbType)
	}
}

func TestNewTableSchemaSingleKey(t *testing.T) {
	flagged := NewTableSchema("routes", &types.TableSchema{
		Columns: []types.ColumnInfo{
			{Name: "route_id", Type: "TEXT", PrimaryKey: true},
			{Name: "route_type", Type: "INTEGER"},
		},
	})
	assert.Equal(t, "route_id", flagged.PK)
	assert.True(t, flagged.Columns[0].IsPrimaryKey)

	composite := NewTableSchema("pairs", &types.TableSchema{
		Columns: []types.ColumnInfo{
			{Name: "a", Type: "INTEGER", PrimaryKey: true},
			{Name: "b", Type: "INTEGER", PrimaryKey: true},
		},
	})
	assert.False(t, composite.HasPrimaryKey())
	assert.False(t, composite.Columns[0].IsPrimaryKey)
	assert.False(t, composite.Columns[1].IsPrimaryKey)
	_, err := OpenEditor(nil, composite)
	assert.ErrorIs(t, err, ErrNoPrimaryKey)

	noKey := NewTableSchema("log", &types.TableSchema{Columns: []types.ColumnInfo{{Name: "msg", Type: "TEXT"}}})
	assert.False(t, noKey.HasPrimaryKey())
}

func TestSchemaInspectorCaches(t *testing.T) {
	backend := newFakeBackend()
	backend.addTable("routes", routesSchema, nil)
	inspector := NewSchemaInspector(backend)
	ctx := context.Background()

	first, err := inspector.Resolve(ctx, "routes")
	require.NoError(t, err)
	second, err := inspector.Resolve(ctx, "routes")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, backend.schemaCalls)
	assert.Equal(t, TypeInteger, first.Columns[2].Type)
	assert.Equal(t, []string{"route_id", "route_short_name", "route_type"}, first.ColumnNames())
}

func TestSchemaInspectorFailureNotCached(t *testing.T) {
	backend := newFakeBackend()
	backend.addTable("routes", routesSchema, nil)
	backend.schemaErr = errors.New("connection refused")
	inspector := NewSchemaInspector(backend)
	ctx := context.Background()

	_, err := inspector.Resolve(ctx, "routes")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaUnavailable)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "routes", schemaErr.Table)

	backend.schemaErr = nil
	schema, err := inspector.Resolve(ctx, "routes")
	require.NoError(t, err)
	assert.Equal(t, "route_id", schema.PK)
	assert.Equal(t, 2, backend.schemaCalls)
}
