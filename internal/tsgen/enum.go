package tsgen

import (
	"regexp"
	"strings"

	"github.com/koustreak/mysqlts/internal/schema"
)

// enumWrapper matches the "enum('" / "set('" prefix and the "')" suffix of
// an information_schema column_type.
var enumWrapper = regexp.MustCompile(`(?i)(^(enum|set)\('|'\)$)`)

// IsEnumClassifier reports whether a native type is enum or set.
func IsEnumClassifier(nativeType string) bool {
	return strings.EqualFold(nativeType, "enum") || strings.EqualFold(nativeType, "set")
}

// EnumKey is the synthetic type name of an enum or set column,
// e.g. EnumKey("enum", "status") == "enum_status". Both parts are kept
// verbatim; the catalog reader lowercases classifiers.
func EnumKey(classifier, column string) string {
	return classifier + "_" + column
}

// ParseEnumDefinition extracts the literal values of a column_type such as
// "enum('a','b','c')". Values are split on "','" with no unescaping, so a
// literal that itself contains "','" or an escaped quote comes out wrong.
// Malformed input still yields at least one value.
func ParseEnumDefinition(definition string) []string {
	return strings.Split(enumWrapper.ReplaceAllString(definition, ""), "','")
}

// ResolveEnums builds the EnumSet of one table. Columns whose classifier is
// neither enum nor set are skipped.
func ResolveEnums(cols []schema.EnumColumn) schema.EnumSet {
	enums := make(schema.EnumSet, len(cols))
	for _, c := range cols {
		if !IsEnumClassifier(c.NativeType) {
			continue
		}
		enums[EnumKey(c.NativeType, c.Name)] = ParseEnumDefinition(c.Definition)
	}
	return enums
}
