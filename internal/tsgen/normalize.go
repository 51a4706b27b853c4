package tsgen

import "github.com/koustreak/mysqlts/internal/schema"

// Variant selects which of the two generated interfaces a field belongs to.
type Variant int

const (
	// Full is the row shape returned by SELECT *.
	Full Variant = iota
	// WithDefaults is the insert shape: defaulted and nullable columns may be omitted.
	WithDefaults
)

func (v Variant) String() string {
	if v == WithDefaults {
		return "with_defaults"
	}
	return "full"
}

// Normalize maps every column of a table and keeps catalog order.
//
// Enum and set columns are looked up under their enum key, since that is
// how ResolveEnums stores them. When enums has no entry for the key the raw
// classifier is mapped instead, which yields string.
func Normalize(name string, cols []schema.ColumnMetadata, enums schema.EnumSet, opts Options) *schema.Table {
	t := &schema.Table{
		Name:    name,
		Columns: make([]schema.MappedColumn, 0, len(cols)),
	}
	for _, c := range cols {
		t.Columns = append(t.Columns, schema.MappedColumn{
			ColumnMetadata: c,
			TSType:         MapType(lookupType(c, enums), enums, opts),
		})
	}
	return t
}

func lookupType(c schema.ColumnMetadata, enums schema.EnumSet) string {
	if !IsEnumClassifier(c.NativeType) {
		return c.NativeType
	}
	key := EnumKey(c.NativeType, c.Name)
	if _, ok := enums[key]; ok {
		return key
	}
	return c.NativeType
}

// IsOptional reports whether the field is rendered with a "?" marker.
func IsOptional(c schema.ColumnMetadata, v Variant, opts Options) bool {
	if v == WithDefaults {
		return c.Nullable || c.HasDefault
	}
	return c.Nullable && (opts.NullAsUndefined || opts.NullPlusUndefined)
}

// HasNullUnion reports whether the field type gets a "| null" suffix.
// NullAsUndefined wins over NullPlusUndefined when both are set.
func HasNullUnion(c schema.ColumnMetadata, v Variant, opts Options) bool {
	if v == WithDefaults {
		return false
	}
	return c.Nullable && !opts.NullAsUndefined
}
