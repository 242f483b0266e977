package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2024-01-10", "2024-01-10T00:00:00Z", "2024-01-10 00:00:00", "2024-01-10T01:00:00+01:00"} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), in)
		assert.Equal(t, time.UTC, got.Location(), in)
	}
	_, err := ParseDate("10/01/2024")
	assert.Error(t, err)
}

func TestAccessTokenClaims(t *testing.T) {
	tok, err := NewAccessToken("secret", 42, "ADMIN", 5)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), tok.Exp, 5*time.Second)

	parsed, err := jwt.Parse(tok.Token, func(*jwt.Token) (interface{}, error) { return []byte("secret"), nil })
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, float64(42), claims["sub"])
	assert.Equal(t, "ADMIN", claims["role"])
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter2", bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "hunter2"))
	assert.False(t, VerifyPassword(hash, "hunter3"))
}

func TestHashPasswordClampsCost(t *testing.T) {
	hash, err := HashPassword("pw", 0)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
