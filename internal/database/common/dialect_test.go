package common

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/Rana718/transit-studio/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDialect() Dialect {
	return Dialect{
		Placeholder: squirrel.Question,
		Quote:       func(name string) string { return `"` + name + `"` },
		TextType:    "TEXT",
		Like:        "LIKE",
	}
}

func TestSearchClauseEscapesWildcards(t *testing.T) {
	cols := []types.SchemaColumn{{Name: "route_id"}, {Name: "route_long_name"}}

	query, args, err := testDialect().SearchClause(cols, "50%_off!").ToSql()
	require.NoError(t, err)
	assert.Equal(t, `(CAST("route_id" AS TEXT) LIKE ? ESCAPE '!' OR CAST("route_long_name" AS TEXT) LIKE ? ESCAPE '!')`, query)
	assert.Equal(t, []any{"%50!%!_off!!%", "%50!%!_off!!%"}, args)
}

func TestListQueriesOrdersByEveryKeyColumn(t *testing.T) {
	cols := []types.SchemaColumn{
		{Name: "trip_id", IsPrimary: true},
		{Name: "stop_sequence", IsPrimary: true},
		{Name: "stop_id"},
	}

	data, count := testDialect().ListQueries("stop_times", cols, nil, types.RowQuery{Limit: 50, Offset: 100})
	query, _, err := data.ToSql()
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "stop_times" ORDER BY "trip_id", "stop_sequence" LIMIT 50 OFFSET 100`, query)

	query, _, err = count.ToSql()
	require.NoError(t, err)
	assert.Equal(t, `SELECT COUNT(*) FROM "stop_times"`, query)
}
