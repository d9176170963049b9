package crypto

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashToken(t *testing.T) {
	h := HashToken("eyJhbGciOiJIUzI1NiJ9.payload.sig")

	// BLAKE2b-256 хеш всегда 64 символа
	assert.Len(t, h, 64)
	assert.Regexp(t, "^[a-f0-9]{64}$", h)
}

func TestHashToken_Deterministic(t *testing.T) {
	assert.Equal(t, HashToken("token-a"), HashToken("token-a"))
	assert.NotEqual(t, HashToken("token-a"), HashToken("token-b"))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal("abc", "abc"))
	assert.False(t, Equal("abc", "abd"))
	assert.False(t, Equal("abc", "abcd"))
	assert.True(t, Equal("", ""))
}

func TestGenerateSecret(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{name: "default size", size: SecretSize},
		{name: "larger secret", size: 64},
		{name: "too small", size: 16, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			secret, err := GenerateSecret(tt.size)
			if tt.wantErr {
				require.Error(t, err)
				assert.Empty(t, secret)
				return
			}
			require.NoError(t, err)

			raw, err := base64.RawURLEncoding.DecodeString(secret)
			require.NoError(t, err)
			assert.Len(t, raw, tt.size)
		})
	}
}

func TestGenerateSecret_Unique(t *testing.T) {
	a, err := GenerateSecret(SecretSize)
	require.NoError(t, err)
	b, err := GenerateSecret(SecretSize)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}
