package tsgen

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-openapi/inflect"

	"github.com/koustreak/mysqlts/internal/schema"
)

const indent = "  "

// reservedNames collide with TypeScript type names and get a trailing "_".
var reservedNames = map[string]bool{
	"string":  true,
	"number":  true,
	"package": true,
}

// InterfacePair is the rendered output for one table.
type InterfacePair struct {
	Name         string // name of the full interface
	Full         string
	WithDefaults string
}

// String joins both interfaces with a blank line.
func (p InterfacePair) String() string {
	return p.Full + "\n\n" + p.WithDefaults
}

func safeName(name string) string {
	if reservedNames[name] {
		return name + "_"
	}
	return name
}

// InterfaceName returns the prefixed PascalCase name of a table's interface:
// "user_accounts" becomes "UserAccounts", "tbl.v2" becomes "TblV2" and
// "string" becomes "String_". Any character that cannot appear in an
// identifier separates words. A name that would start with a digit gets a
// leading "_".
func InterfaceName(prefix, table string) string {
	words := strings.FieldsFunc(table, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var b strings.Builder
	b.WriteString(prefix)
	for _, w := range words {
		b.WriteString(inflect.Camelize(w))
	}
	if reservedNames[table] {
		b.WriteByte('_')
	}

	name := b.String()
	if r, _ := utf8.DecodeRuneInString(name); name == "" || unicode.IsDigit(r) {
		name = "_" + name
	}
	return name
}

// RenderTable renders the full and with-defaults interfaces of t.
func RenderTable(prefix string, t *schema.Table, opts Options) InterfacePair {
	name := InterfaceName(prefix, t.Name)

	var full strings.Builder
	fmt.Fprintf(&full, "/**\n * Exposes all fields present in %s as a typescript\n * interface.\n * This is especially useful for SELECT * FROM\n */\n", t.Name)
	renderInterface(&full, name, t, Full, opts)

	var withDefaults strings.Builder
	fmt.Fprintf(&withDefaults, "/**\n * Exposes the same fields as %s,\n * but makes every field containing a DEFAULT value optional.\n *\n * This is especially useful when generating inserts, as you\n * should be able to omit these fields if you'd like\n */\n", name)
	renderInterface(&withDefaults, name+"WithDefaults", t, WithDefaults, opts)

	return InterfacePair{
		Name:         name,
		Full:         full.String(),
		WithDefaults: withDefaults.String(),
	}
}

func renderInterface(b *strings.Builder, name string, t *schema.Table, v Variant, opts Options) {
	fmt.Fprintf(b, "export interface %s {\n", name)
	for _, c := range t.Columns {
		renderField(b, c, v, opts)
	}
	b.WriteString("}")
}

func renderField(b *strings.Builder, c schema.MappedColumn, v Variant, opts Options) {
	if doc := fieldDoc(c.ColumnMetadata, v); doc != "" {
		fmt.Fprintf(b, "%s/** %s */\n", indent, doc)
	}

	b.WriteString(indent)
	b.WriteString(safeName(c.Name))
	if IsOptional(c.ColumnMetadata, v, opts) {
		b.WriteByte('?')
	}
	b.WriteString(": ")
	b.WriteString(c.TSType)
	if HasNullUnion(c.ColumnMetadata, v, opts) {
		b.WriteString(" | null")
	}
	b.WriteByte('\n')
}

// fieldDoc is the trimmed column comment, plus the default value in the
// with-defaults variant. "*/" is escaped so it cannot close the doc comment.
func fieldDoc(c schema.ColumnMetadata, v Variant) string {
	doc := strings.TrimSpace(c.CommentText())
	if v == WithDefaults && c.HasDefault {
		doc = strings.TrimSpace(doc + " Defaults to: " + c.DefaultValue())
	}
	return strings.ReplaceAll(doc, "*/", "*\\/")
}
