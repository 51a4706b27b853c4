package tsgen

import (
	"strings"

	"github.com/koustreak/mysqlts/internal/schema"
)

// fixedTypes is the policy-independent part of the mapping, in lookup order.
// enum and set land here only when no literal union was resolved for them.
var fixedTypes = []struct {
	classifier string
	tsType     string
}{
	{"char", TypeString},
	{"varchar", TypeString},
	{"text", TypeString},
	{"tinytext", TypeString},
	{"mediumtext", TypeString},
	{"longtext", TypeString},
	{"time", TypeString},
	{"geometry", TypeString},
	{"set", TypeString},
	{"enum", TypeString},

	{"integer", TypeNumber},
	{"int", TypeNumber},
	{"smallint", TypeNumber},
	{"mediumint", TypeNumber},
	{"bigint", TypeNumber},
	{"double", TypeNumber},
	{"decimal", TypeNumber},
	{"numeric", TypeNumber},
	{"float", TypeNumber},
	{"year", TypeNumber},

	{"json", TypeJSON},

	{"date", TypeDate},
	{"datetime", TypeDate},
	{"timestamp", TypeDate},
}

var binaryTypes = map[string]bool{
	"tinyblob":   true,
	"mediumblob": true,
	"longblob":   true,
	"blob":       true,
	"binary":     true,
	"varbinary":  true,
	"bit":        true,
}

// FixedType returns the policy-independent TypeScript type of a classifier.
func FixedType(nativeType string) (string, bool) {
	for _, f := range fixedTypes {
		if f.classifier == nativeType {
			return f.tsType, true
		}
	}
	return "", false
}

// MapType resolves the TypeScript type of a native type. It never fails:
// a type with no mapping and no entry in enums becomes "any".
//
// The enum lookup uses nativeType verbatim, so it only hits when the caller
// passes an enum key (see Normalize).
func MapType(nativeType string, enums schema.EnumSet, opts Options) string {
	if t, ok := FixedType(nativeType); ok {
		return t
	}

	switch {
	case nativeType == "tinyint":
		if opts.TinyIntAsBoolean {
			return TypeBoolean
		}
		return TypeNumber
	case binaryTypes[nativeType]:
		if opts.BinaryAsBuffer {
			return TypeBuffer
		}
		return TypeString
	}

	values, ok := enums[nativeType]
	if !ok || len(values) == 0 {
		return TypeAny
	}
	return literalUnion(values)
}

// literalUnion renders values as 'a' | 'b' | 'c'.
func literalUnion(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + v + "'"
	}
	return strings.Join(quoted, " | ")
}
