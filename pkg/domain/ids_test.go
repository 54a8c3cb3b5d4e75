package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "kycore/pkg/domain-errors"
)

// TestParseID_Invariants validates the parsing invariant:
// "IDs must be canonical, non-nil, random UUIDs"
func TestParseID_Invariants(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		// Attack vectors
		{"SQL injection attempt", "'; DROP TABLE users;--", true},
		{"Null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Unicode zero-width space", "550e8400\u200B-e29b-41d4-a716-446655440000", true},

		// Non-canonical forms
		{"Empty string", "", true},
		{"Nil UUID", uuid.Nil.String(), true},
		{"Compact form", "550e8400e29b41d4a716446655440000", true},
		{"Braced form", "{550e8400-e29b-41d4-a716-446655440000}", true},
		{"URN form", "urn:uuid:550e8400-e29b-41d4-a716-446655440000", true},
		{"Time based v1", "6ba7b810-9dad-11d1-80b4-00c04fd430c8", true},
		{"Wrong variant", "550e8400-e29b-41d4-c716-446655440000", true},

		// Valid
		{"Uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},
		{"Valid UUID lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeArgumentInvalid))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestID(t *testing.T) {
	t.Run("generated ids parse back", func(t *testing.T) {
		id := NewID()
		parsed, err := ParseID(id.String())
		require.NoError(t, err)
		assert.True(t, id.Equal(parsed))
		assert.False(t, id.IsNil())
	})

	t.Run("minified drops hyphens", func(t *testing.T) {
		id := MustParseID("550e8400-e29b-41d4-a716-446655440000")
		assert.Equal(t, "550e8400e29b41d4a716446655440000", id.Minified())
	})

	t.Run("value unwraps to canonical string", func(t *testing.T) {
		id := MustParseID("550E8400-E29B-41D4-A716-446655440000")
		v, err := id.Value()
		require.NoError(t, err)
		assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", v)

		v, err = ID{}.Value()
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("text round trip validates", func(t *testing.T) {
		var id ID
		require.NoError(t, id.UnmarshalText([]byte("550e8400-e29b-41d4-a716-446655440000")))
		text, err := id.MarshalText()
		require.NoError(t, err)
		assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", string(text))
		assert.Error(t, id.UnmarshalText([]byte("nope")))
	})
}
