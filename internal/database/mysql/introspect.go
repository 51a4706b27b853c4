package mysql

import (
	"context"
	"fmt"
	"strings"

	"github.com/koustreak/mysqlts/internal/database"
	"github.com/koustreak/mysqlts/internal/errs"
	"github.com/koustreak/mysqlts/internal/schema"
)

const autoIncrement = "auto_increment"

// Introspector implements schema.Reader for MySQL using information_schema.
type Introspector struct {
	db database.DB
}

// NewIntrospector creates a new MySQL schema introspector
func NewIntrospector(db database.DB) *Introspector {
	return &Introspector{db: db}
}

// ListTables returns every table and view that has columns in the current
// database. No ORDER BY: callers keep whatever order the server yields.
func (m *Introspector) ListTables(ctx context.Context) ([]string, error) {
	const q = `
		SELECT table_name AS table_name
		FROM information_schema.columns
		WHERE table_schema = ?
		GROUP BY table_name`

	rows, err := m.db.Query(ctx, q, m.db.Schema())
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return tables, nil
}

// Columns returns the columns of table ordered by ordinal position.
//
// A NULL column_default on an auto_increment column is reported as the
// default "auto_increment", so such columns count as defaulted.
func (m *Introspector) Columns(ctx context.Context, table string) ([]schema.ColumnMetadata, error) {
	const q = `
		SELECT
			column_name    AS column_name,
			data_type      AS data_type,
			is_nullable    AS is_nullable,
			column_default AS column_default,
			column_comment AS column_comment,
			column_key     AS column_key,
			extra          AS extra
		FROM information_schema.columns
		WHERE table_name = ?
		  AND table_schema = ?
		ORDER BY ordinal_position`

	rows, err := m.db.Query(ctx, q, table, m.db.Schema())
	if err != nil {
		return nil, fmt.Errorf("inspect table %s.%s: %w", m.db.Schema(), table, err)
	}
	defer rows.Close()

	var cols []schema.ColumnMetadata
	for rows.Next() {
		var (
			col        schema.ColumnMetadata
			isNullable string
			def        *string
			comment    *string
			key        *string
			extra      *string
		)
		if err := rows.Scan(&col.Name, &col.NativeType, &isNullable, &def, &comment, &key, &extra); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}

		col.NativeType = strings.ToLower(col.NativeType)
		col.Nullable = isNullable == "YES"
		col.Comment = comment
		col.Key = deref(key)
		col.Extra = deref(extra)

		if def == nil && strings.EqualFold(col.Extra, autoIncrement) {
			v := autoIncrement
			def = &v
		}
		col.Default = def
		col.HasDefault = def != nil && *def != ""

		cols = append(cols, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("inspect table %s.%s: %w", m.db.Schema(), table, err)
	}
	if len(cols) == 0 {
		return nil, errs.Newf(errs.ErrKindNotFound, "table %s.%s not found or has no columns", m.db.Schema(), table)
	}
	return cols, nil
}

// EnumColumns returns the enum and set columns of table with their raw
// column_type definitions.
func (m *Introspector) EnumColumns(ctx context.Context, table string) ([]schema.EnumColumn, error) {
	const q = `
		SELECT
			column_name AS column_name,
			column_type AS column_type,
			data_type   AS data_type
		FROM information_schema.columns
		WHERE data_type IN ('enum', 'set')
		  AND table_schema = ?
		  AND table_name = ?
		ORDER BY ordinal_position`

	rows, err := m.db.Query(ctx, q, m.db.Schema(), table)
	if err != nil {
		return nil, fmt.Errorf("list enums of %s.%s: %w", m.db.Schema(), table, err)
	}
	defer rows.Close()

	var enums []schema.EnumColumn
	for rows.Next() {
		var e schema.EnumColumn
		if err := rows.Scan(&e.Name, &e.Definition, &e.NativeType); err != nil {
			return nil, fmt.Errorf("scan enum column: %w", err)
		}
		e.NativeType = strings.ToLower(e.NativeType)
		enums = append(enums, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list enums of %s.%s: %w", m.db.Schema(), table, err)
	}
	return enums, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
