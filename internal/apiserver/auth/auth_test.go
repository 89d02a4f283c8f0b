package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.True(t, CheckPassword("hunter22", hash))
	assert.False(t, CheckPassword("hunter23", hash))
	assert.False(t, CheckPassword("hunter22", "not-a-hash"))
}

func TestSessionTokenRoundTrip(t *testing.T) {
	cfg := Config{JWTSecret: "test-secret", TokenTTL: time.Hour}

	token, err := GenerateSessionToken(cfg, "alice", "alice@example.com", "admin")
	require.NoError(t, err)

	claims, err := ParseToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	cfg := Config{JWTSecret: "secret-a", TokenTTL: time.Hour}
	token, err := GenerateSessionToken(cfg, "alice", "", "user")
	require.NoError(t, err)

	_, err = ParseToken(Config{JWTSecret: "secret-b", TokenTTL: time.Hour}, token)
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	cfg := Config{JWTSecret: "test-secret", TokenTTL: -time.Minute}
	token, err := GenerateSessionToken(cfg, "alice", "", "user")
	require.NoError(t, err)

	_, err = ParseToken(Config{JWTSecret: "test-secret", TokenTTL: time.Hour}, token)
	assert.Error(t, err)
}

func TestDecodablePayload(t *testing.T) {
	cfg := Config{JWTSecret: "test-secret", TokenTTL: time.Hour}
	token, err := GenerateSessionToken(cfg, "alice", "", "user")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"real token", token, true},
		{"empty", "", false},
		{"two segments", "abc.def", false},
		{"empty payload", "abc..def", false},
		{"payload not base64", "abc.%%%.def", false},
		{"payload not json", "abc." + "bm90IGpzb24" + ".def", false},
		{"payload valid json", "abc." + "eyJzdWIiOiJ4In0" + ".def", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodablePayload(tt.token))
		})
	}
}

func TestGenerateOTPCode(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := GenerateOTPCode()
		require.Len(t, code, otpLength)
		for _, c := range code {
			assert.True(t, strings.ContainsRune(otpAlphabet, c), "unexpected character %q in code %q", c, code)
		}
	}
}

func TestAuthUserContext(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		assert.Nil(t, GetAuthUser(context.Background()))
	})

	t.Run("round trip", func(t *testing.T) {
		user := &AuthUser{Username: "alice", Role: "admin"}
		ctx := WithAuthUser(context.Background(), user)
		got := GetAuthUser(ctx)
		require.NotNil(t, got)
		assert.Equal(t, "alice", got.Username)
	})
}
