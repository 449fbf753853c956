package common

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/Rana718/transit-studio/internal/types"
)

// Dialect carries the per-provider bits of SQL generation: placeholder
// format, identifier quoting and how to compare any column as text.
type Dialect struct {
	Placeholder squirrel.PlaceholderFormat
	Quote       func(name string) string
	TextType    string
	Like        string
}

func (d Dialect) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(d.Placeholder)
}

// AsText casts a quoted column to the provider's text type.
func (d Dialect) AsText(column string) string {
	return fmt.Sprintf("CAST(%s AS %s)", d.Quote(column), d.TextType)
}

// KeyMatch compares a column with a key received as a string, whatever the
// column's declared type.
func (d Dialect) KeyMatch(column, key string) squirrel.Sqlizer {
	return squirrel.Expr(d.AsText(column)+" = ?", key)
}

// likeEscaper escapes LIKE wildcards. "!" is used instead of a backslash
// because MySQL treats a backslash in a string literal as an escape.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// SearchClause matches term literally as a substring of any of the columns.
func (d Dialect) SearchClause(columns []types.SchemaColumn, term string) squirrel.Sqlizer {
	pattern := "%" + likeEscaper.Replace(term) + "%"
	or := make(squirrel.Or, 0, len(columns))
	for _, col := range columns {
		or = append(or, squirrel.Expr(fmt.Sprintf("%s %s ? ESCAPE '!'", d.AsText(col.Name), d.Like), pattern))
	}
	return or
}

// ListQueries builds the page query and the matching count query. selectCols
// lets a provider wrap individual columns, e.g. to cast exotic types.
func (d Dialect) ListQueries(table string, columns []types.SchemaColumn, selectCols []string, q types.RowQuery) (squirrel.SelectBuilder, squirrel.SelectBuilder) {
	if len(selectCols) == 0 {
		selectCols = []string{"*"}
	}
	data := d.Builder().Select(selectCols...).From(d.Quote(table))
	count := d.Builder().Select("COUNT(*)").From(d.Quote(table))

	if term := strings.TrimSpace(q.Search); term != "" && len(columns) > 0 {
		clause := d.SearchClause(columns, term)
		data = data.Where(clause)
		count = count.Where(clause)
	}

	if q.OrderBy != "" {
		data = data.OrderBy(d.Quote(q.OrderBy))
	} else {
		for _, col := range columns {
			if col.IsPrimary {
				data = data.OrderBy(d.Quote(col.Name))
			}
		}
	}
	if q.Limit > 0 {
		data = data.Limit(uint64(q.Limit))
	}
	if q.Offset > 0 {
		data = data.Offset(uint64(q.Offset))
	}
	return data, count
}

func (d Dialect) Insert(table string, data map[string]any) squirrel.InsertBuilder {
	cols := sortedKeys(data)
	quoted := make([]string, len(cols))
	values := make([]any, len(cols))
	for i, col := range cols {
		quoted[i] = d.Quote(col)
		values[i] = data[col]
	}
	return d.Builder().Insert(d.Quote(table)).Columns(quoted...).Values(values...)
}

func (d Dialect) Update(table, pkColumn, pk string, data map[string]any) squirrel.UpdateBuilder {
	ub := d.Builder().Update(d.Quote(table))
	for _, col := range sortedKeys(data) {
		ub = ub.Set(d.Quote(col), data[col])
	}
	return ub.Where(d.KeyMatch(pkColumn, pk))
}

func (d Dialect) Delete(table, pkColumn, pk string) squirrel.DeleteBuilder {
	return d.Builder().Delete(d.Quote(table)).Where(d.KeyMatch(pkColumn, pk))
}

// RowCounts builds a single UNION ALL query counting every table. Names are
// validated identifiers, so they are inlined as literals.
func (d Dialect) RowCounts(tableNames []string) (string, error) {
	if len(tableNames) == 0 {
		return "", fmt.Errorf("no tables to count")
	}
	if err := ValidateIdentifiers(tableNames...); err != nil {
		return "", err
	}
	parts := make([]string, 0, len(tableNames))
	for _, name := range tableNames {
		parts = append(parts, fmt.Sprintf("SELECT '%s' AS table_name, COUNT(*) AS row_count FROM %s", name, d.Quote(name)))
	}
	return strings.Join(parts, " UNION ALL "), nil
}

func sortedKeys(data map[string]any) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
