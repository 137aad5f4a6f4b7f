package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Identifier
		wantErr bool
	}{
		{"email", "User@Example.COM", Identifier{IdentifierEmail, "user@example.com"}, false},
		{"phone with plus", "+911234567890", Identifier{IdentifierPhone, "+911234567890"}, false},
		{"phone with formatting", "+1 (555) 123-4567", Identifier{IdentifierPhone, "+15551234567"}, false},
		{"bare digits", "5551234567", Identifier{IdentifierPhone, "5551234567"}, false},
		{"empty", "", Identifier{}, true},
		{"bad email", "not-an-email@", Identifier{}, true},
		{"too short phone", "12345", Identifier{}, true},
		{"garbage", "hello world", Identifier{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIdentifier(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIdentifierKindHelpers(t *testing.T) {
	phone, err := ParseIdentifier("+15551234567")
	require.NoError(t, err)
	assert.True(t, phone.IsPhone())
	assert.False(t, phone.IsEmail())

	email, err := ParseIdentifier("a@b.co")
	require.NoError(t, err)
	assert.True(t, email.IsEmail())
	assert.Equal(t, "a@b.co", email.String())
}
