// Package schema holds the table and column model shared by the catalog
// readers and the TypeScript generator.
package schema

import "context"

// Reader is the interface for reading table metadata from a catalog.
// The MySQL implementation lives in internal/database/mysql.
type Reader interface {
	// ListTables returns the user tables of the current database in catalog order.
	ListTables(ctx context.Context) ([]string, error)

	// Columns returns the columns of a table ordered by ordinal position.
	Columns(ctx context.Context, table string) ([]ColumnMetadata, error)

	// EnumColumns returns the enum and set columns of a table.
	EnumColumns(ctx context.Context, table string) ([]EnumColumn, error)
}
