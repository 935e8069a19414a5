// Package ddl defines a small, backend-agnostic model for SQL DDL and helpers
// to render the two statements the sink needs: DROP TABLE IF EXISTS and
// CREATE TABLE.
//
// Dialect-specific behaviour (identifier quoting, type names) is supplied by
// a Dialect implemented in each storage backend package. The builders here:
//
//   - quote every identifier through the Dialect, segment by segment;
//   - render columns as <name> <type> [NOT NULL] [DEFAULT <expr>];
//   - render PRIMARY KEY as a separate table constraint in declaration order;
//   - treat ColumnDef.Default as raw SQL (the caller is responsible for it);
//   - emit no trailing semicolon, since some drivers reject it.
package ddl

import (
	"fmt"
	"strings"
)

// QuoteFQN quotes a possibly schema-qualified name like "PUBLIC.LEADS" one
// segment at a time. Empty segments are ignored.
func QuoteFQN(d Dialect, fqn string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, d.QuoteIdent(p))
	}
	return strings.Join(out, ".")
}

// QuoteColumns quotes each column name.
func QuoteColumns(d Dialect, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = d.QuoteIdent(c)
	}
	return out
}

// BuildDropTableSQL renders DROP TABLE IF EXISTS for fqn.
func BuildDropTableSQL(d Dialect, fqn string) (string, error) {
	if strings.TrimSpace(fqn) == "" {
		return "", fmt.Errorf("%s ddl: table FQN must not be empty", d.Name())
	}
	return "DROP TABLE IF EXISTS " + QuoteFQN(d, fqn), nil
}

// BuildCreateTableSQL renders a deterministic CREATE TABLE statement:
//
//	CREATE TABLE "schema"."table" (
//	  "col1" TYPE [NOT NULL] [DEFAULT expr],
//	  "col2" TYPE,
//	  PRIMARY KEY ("pk1", "pk2")
//	)
//
// Primary-key columns are always NOT NULL.
func BuildCreateTableSQL(d Dialect, t TableDef) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("%s ddl: table FQN must not be empty", d.Name())
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("%s ddl: at least one column is required", d.Name())
	}

	cols := make([]string, 0, len(t.Columns)+1)
	pks := make([]string, 0, len(t.Columns))

	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("%s ddl: column with empty name in table %s", d.Name(), fqn)
		}
		typ, err := d.SQLType(c.Type)
		if err != nil {
			return "", fmt.Errorf("%s ddl: column %s: %w", d.Name(), name, err)
		}

		var sb strings.Builder
		sb.WriteString(d.QuoteIdent(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)

		if !c.Nullable || c.PrimaryKey {
			sb.WriteString(" NOT NULL")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}
		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, d.QuoteIdent(name))
		}
	}

	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	return fmt.Sprintf(
		"CREATE TABLE %s (\n  %s\n)",
		QuoteFQN(d, fqn),
		strings.Join(cols, ",\n  "),
	), nil
}

// UnsupportedTypeError reports a neutral type a dialect cannot render.
type UnsupportedTypeError struct {
	Dialect string
	Type    Type
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("%s: unsupported column type %q", e.Dialect, e.Type)
}
