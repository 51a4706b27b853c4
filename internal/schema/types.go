package schema

// ColumnMetadata is a column as reported by the catalog, before type mapping.
type ColumnMetadata struct {
	Name       string
	NativeType string  // lower-cased data_type: varchar, tinyint, enum, ...
	Nullable   bool
	HasDefault bool
	Default    *string // nil when the column has no default
	Comment    *string // nil when the catalog reports no comment
	Key        string  // column_key: PRI, UNI, MUL or ""
	Extra      string  // e.g. auto_increment
}

// DefaultValue returns the default as text, or "" when there is none.
func (c ColumnMetadata) DefaultValue() string {
	if c.Default == nil {
		return ""
	}
	return *c.Default
}

// CommentText returns the comment as text, or "" when there is none.
func (c ColumnMetadata) CommentText() string {
	if c.Comment == nil {
		return ""
	}
	return *c.Comment
}

// EnumColumn is an enum or set column with its raw type definition,
// e.g. Definition = "enum('active','banned')".
type EnumColumn struct {
	Name       string
	NativeType string
	Definition string
}

// EnumSet maps an enum key (classifier_column) to its literal values.
type EnumSet map[string][]string

// MappedColumn is a column together with its resolved TypeScript type.
type MappedColumn struct {
	ColumnMetadata
	TSType string
}

// Table is a fully typed table. Columns keep catalog ordinal order.
type Table struct {
	Name    string
	Columns []MappedColumn
}

// Column returns the column with the given name.
func (t *Table) Column(name string) (MappedColumn, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return MappedColumn{}, false
}
