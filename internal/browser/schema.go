package browser

import (
	"context"
	"strings"
	"sync"

	"github.com/Rana718/transit-studio/internal/types"
)

// TypeTag is the closed set of value kinds the editor knows how to coerce.
type TypeTag int

const (
	TypeText TypeTag = iota
	TypeInteger
	TypeFloat
	TypeBoolean
	TypeDate
	TypeTime
)

func (t TypeTag) String() string {
	switch t {
	case TypeInteger:
		return "integer"
	case TypeFloat:
		return "float"
	case TypeBoolean:
		return "boolean"
	case TypeDate:
		return "date"
	case TypeTime:
		return "time"
	default:
		return "text"
	}
}

var typeTags = map[string]TypeTag{
	"INTEGER": TypeInteger, "INT": TypeInteger, "BIGINT": TypeInteger, "SMALLINT": TypeInteger,
	"TINYINT": TypeInteger, "MEDIUMINT": TypeInteger, "SERIAL": TypeInteger, "BIGSERIAL": TypeInteger,
	"INT2": TypeInteger, "INT4": TypeInteger, "INT8": TypeInteger,

	"REAL": TypeFloat, "FLOAT": TypeFloat, "DOUBLE": TypeFloat, "DOUBLE PRECISION": TypeFloat,
	"NUMERIC": TypeFloat, "DECIMAL": TypeFloat, "FLOAT4": TypeFloat, "FLOAT8": TypeFloat,

	"BOOLEAN": TypeBoolean, "BOOL": TypeBoolean,

	"DATE": TypeDate,

	"TIME": TypeTime, "TIMETZ": TypeTime, "TIME WITH TIME ZONE": TypeTime, "TIME WITHOUT TIME ZONE": TypeTime,
}

// ParseTypeTag maps a database column type to a TypeTag. Unknown types are
// Text, which the editor passes through verbatim.
func ParseTypeTag(dbType string) TypeTag {
	t := strings.ToUpper(strings.TrimSpace(dbType))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	t = strings.TrimSuffix(t, " UNSIGNED")
	if tag, ok := typeTags[t]; ok {
		return tag
	}
	return TypeText
}

type Column struct {
	Name         string
	Type         TypeTag
	IsPrimaryKey bool
}

// TableSchema is immutable once resolved.
type TableSchema struct {
	Table   string
	Columns []Column
	PK      string
}

func (s *TableSchema) Column(name string) (Column, bool) {
	for _, col := range s.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return Column{}, false
}

func (s *TableSchema) HasPrimaryKey() bool {
	return s.PK != ""
}

func (s *TableSchema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		names[i] = col.Name
	}
	return names
}

// NewTableSchema converts the wire schema, resolving every column's TypeTag
// once. The pk field wins over per-column flags, which are only used when
// exactly one column carries them. A composite key leaves the table keyless.
func NewTableSchema(table string, wire *types.TableSchema) *TableSchema {
	pk := wire.PK
	if pk == "" {
		var flagged []string
		for _, col := range wire.Columns {
			if col.PrimaryKey {
				flagged = append(flagged, col.Name)
			}
		}
		if len(flagged) == 1 {
			pk = flagged[0]
		}
	}

	schema := &TableSchema{Table: table, Columns: make([]Column, len(wire.Columns))}
	for i, col := range wire.Columns {
		schema.Columns[i] = Column{
			Name:         col.Name,
			Type:         ParseTypeTag(col.Type),
			IsPrimaryKey: pk != "" && col.Name == pk,
		}
		if schema.Columns[i].IsPrimaryKey {
			schema.PK = pk
		}
	}
	return schema
}

type SchemaSource interface {
	Schema(ctx context.Context, table string) (*types.TableSchema, error)
}

// SchemaInspector resolves and caches table schemas. Failures are not cached
// and never retried automatically.
type SchemaInspector struct {
	src   SchemaSource
	mu    sync.Mutex
	cache map[string]*TableSchema
}

func NewSchemaInspector(src SchemaSource) *SchemaInspector {
	return &SchemaInspector{src: src, cache: make(map[string]*TableSchema)}
}

func (i *SchemaInspector) Resolve(ctx context.Context, table string) (*TableSchema, error) {
	i.mu.Lock()
	if schema, ok := i.cache[table]; ok {
		i.mu.Unlock()
		return schema, nil
	}
	i.mu.Unlock()

	wire, err := i.src.Schema(ctx, table)
	if err != nil {
		return nil, &SchemaError{Table: table, Err: err}
	}

	schema := NewTableSchema(table, wire)
	i.mu.Lock()
	if cached, ok := i.cache[table]; ok {
		schema = cached
	} else {
		i.cache[table] = schema
	}
	i.mu.Unlock()
	return schema, nil
}
