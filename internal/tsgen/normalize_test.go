package tsgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/mysqlts/internal/schema"
)

func strPtr(s string) *string { return &s }

func TestNormalize(t *testing.T) {
	cols := []schema.ColumnMetadata{
		{Name: "id", NativeType: "int", HasDefault: true, Default: strPtr("auto_increment")},
		{Name: "status", NativeType: "enum"},
		{Name: "kind", NativeType: "enum"},
		{Name: "active", NativeType: "tinyint"},
		{Name: "payload", NativeType: "json", Nullable: true},
		{Name: "shape", NativeType: "polygon"},
	}
	enums := schema.EnumSet{"enum_status": {"active", "banned"}}

	table := Normalize("users", cols, enums, Options{TinyIntAsBoolean: true})

	require.Len(t, table.Columns, len(cols))
	assert.Equal(t, "users", table.Name)

	got := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		got[i] = c.Name + ":" + c.TSType
		assert.Equal(t, cols[i], c.ColumnMetadata, "raw attributes are preserved")
	}
	assert.Equal(t, []string{
		"id:number",
		"status:'active' | 'banned'",
		"kind:string",
		"active:boolean",
		"payload:JSONValue",
		"shape:any",
	}, got)

	status, ok := table.Column("status")
	require.True(t, ok)
	assert.Equal(t, "'active' | 'banned'", status.TSType)
}

func TestOptionality(t *testing.T) {
	nullable := schema.ColumnMetadata{Name: "bio", NativeType: "text", Nullable: true}
	defaulted := schema.ColumnMetadata{Name: "created_at", NativeType: "timestamp", HasDefault: true, Default: strPtr("CURRENT_TIMESTAMP")}
	plain := schema.ColumnMetadata{Name: "email", NativeType: "varchar"}

	tests := []struct {
		name         string
		col          schema.ColumnMetadata
		variant      Variant
		opts         Options
		wantOptional bool
		wantNull     bool
	}{
		{"nullable full default opts", nullable, Full, Options{}, false, true},
		{"nullable with-defaults", nullable, WithDefaults, Options{}, true, false},
		{"nullable full null-as-undefined", nullable, Full, Options{NullAsUndefined: true}, true, false},
		{"nullable full null-plus-undefined", nullable, Full, Options{NullPlusUndefined: true}, true, true},
		{"nullable full both null policies", nullable, Full, Options{NullAsUndefined: true, NullPlusUndefined: true}, true, false},
		{"defaulted full", defaulted, Full, Options{}, false, false},
		{"defaulted with-defaults", defaulted, WithDefaults, Options{}, true, false},
		{"plain full", plain, Full, Options{NullPlusUndefined: true}, false, false},
		{"plain with-defaults", plain, WithDefaults, Options{}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantOptional, IsOptional(tt.col, tt.variant, tt.opts))
			assert.Equal(t, tt.wantNull, HasNullUnion(tt.col, tt.variant, tt.opts))
		})
	}
}

func TestVariant_String(t *testing.T) {
	assert.Equal(t, "full", Full.String())
	assert.Equal(t, "with_defaults", WithDefaults.String())
}
