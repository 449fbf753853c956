package types

// SchemaTable is a table as introspected from the database.
type SchemaTable struct {
	Name    string
	Columns []SchemaColumn
}

type SchemaColumn struct {
	Name             string
	Type             string
	Nullable         bool
	Default          string
	IsPrimary        bool
	IsAutoIncrement  bool
	ForeignKeyTable  string
	ForeignKeyColumn string
}

// ColumnInfo is the wire form of a column returned by GET /schema/{table}.
type ColumnInfo struct {
	Name             string `json:"name"`
	Type             string `json:"type"`
	PrimaryKey       bool   `json:"primary_key"`
	Nullable         bool   `json:"nullable"`
	Default          string `json:"default,omitempty"`
	AutoIncrement    bool   `json:"auto_increment,omitempty"`
	ForeignKeyTable  string `json:"foreign_key_table,omitempty"`
	ForeignKeyColumn string `json:"foreign_key_column,omitempty"`
}

// TableSchema is the body of GET /schema/{table}.
type TableSchema struct {
	Columns []ColumnInfo `json:"columns"`
	PK      string       `json:"pk"`
}

type TableInfo struct {
	Name     string `json:"name"`
	RowCount int    `json:"row_count"`
}

// RowQuery selects one limit/offset window of a table, optionally filtered
// by a free-text search term.
type RowQuery struct {
	Limit   int
	Offset  int
	Search  string
	OrderBy string
}

// RowPage is the canonical body of GET /records/{table}.
type RowPage struct {
	Data  []map[string]any `json:"data"`
	Total int              `json:"total"`
}

type CascadeOptions struct {
	DeleteTrips  bool
	DeleteShapes bool
}

// CascadeResult reports how many dependent rows a route cascade removed.
type CascadeResult struct {
	TripsDeleted     int `json:"trips_deleted" yaml:"trips_deleted"`
	StopTimesDeleted int `json:"stop_times_deleted" yaml:"stop_times_deleted"`
	ShapesDeleted    int `json:"shapes_deleted" yaml:"shapes_deleted"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
