package ddl

// Type is a dialect-neutral column type. Dialects map it to concrete SQL.
type Type string

const (
	// TypeText is free text (VARCHAR / TEXT / NVARCHAR(MAX)).
	TypeText Type = "text"
	// TypeDate is a calendar date without time of day.
	TypeDate Type = "date"
)

// ColumnDef describes a single column in a table definition.
//
// Fields:
//   - Name: logical column name (unquoted; quoting happens at render time)
//   - Type: dialect-neutral type, mapped by Dialect.SQLType
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is part of the primary key
//   - Default: raw default expression (e.g., 'anon', CURRENT_DATE)
type ColumnDef struct {
	Name       string
	Type       Type
	Nullable   bool
	PrimaryKey bool
	Default    string
}

// TableDef holds the table name and an ordered list of columns. FQN may be
// dotted ("schema.table"); every segment is quoted separately.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// ColumnNames returns the column names in declaration order.
func (t TableDef) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Dialect renders identifiers and types for one SQL backend.
type Dialect interface {
	// Name is a short backend name used in error messages.
	Name() string
	// QuoteIdent quotes a single identifier segment.
	QuoteIdent(id string) string
	// SQLType maps a neutral type to the backend's column type.
	SQLType(t Type) (string, error)
}
