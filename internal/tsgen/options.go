// Package tsgen turns MySQL column metadata into TypeScript interfaces.
//
// The pipeline per table is: ResolveEnums, Normalize (which calls MapType
// for every column), then RenderTable. Generator drives it against a
// schema.Reader for one table or a whole database.
package tsgen

// Options is the type-mapping policy. It is a plain value built once at
// startup and passed to every mapping and rendering call; nothing in this
// package keeps policy state of its own.
type Options struct {
	// BinaryAsBuffer maps blob, binary and bit columns to Buffer instead of string.
	BinaryAsBuffer bool `yaml:"binary_as_buffer"`

	// TinyIntAsBoolean maps tinyint columns to boolean instead of number.
	TinyIntAsBoolean bool `yaml:"tiny_int_as_boolean"`

	// NullAsUndefined renders nullable columns of the full interface as
	// optional fields without a "| null" union.
	NullAsUndefined bool `yaml:"null_as_undefined"`

	// NullPlusUndefined renders nullable columns of the full interface as
	// optional fields that keep the "| null" union.
	NullPlusUndefined bool `yaml:"null_plus_undefined"`
}

// TypeScript type expressions produced by MapType.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeJSON    = "JSONValue"
	TypeDate    = "Date"
	TypeBuffer  = "Buffer"
	TypeAny     = "any"
)
