package utils

import (
    "testing"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func TestNewAccessTokenCarriesIdentityClaims(t *testing.T) {
    at, err := NewAccessToken(testSecret, 42, "ana@example.com", "Ana", "Bavaria", "customer", 60)
    require.NoError(t, err)
    require.NotEmpty(t, at.Token)

    parsed, err := jwt.Parse(at.Token, func(tok *jwt.Token) (interface{}, error) {
        return []byte(testSecret), nil
    }, jwt.WithValidMethods([]string{"HS256"}))
    require.NoError(t, err)
    require.True(t, parsed.Valid)

    claims, ok := parsed.Claims.(jwt.MapClaims)
    require.True(t, ok)
    // Numeric claims come back as float64 from encoding/json.
    assert.Equal(t, float64(42), claims["sub"])
    assert.Equal(t, "ana@example.com", claims["email"])
    assert.Equal(t, "Ana", claims["name"])
    assert.Equal(t, "Bavaria", claims["region"])
    assert.Equal(t, "customer", claims["role"])

    exp, ok := claims["exp"].(float64)
    require.True(t, ok)
    assert.InDelta(t, time.Now().Add(60*time.Minute).Unix(), int64(exp), 5)
}

func TestNewAccessTokenRejectedWithWrongSecret(t *testing.T) {
    at, err := NewAccessToken(testSecret, 1, "a@b.c", "A", "", "admin", 60)
    require.NoError(t, err)

    _, err = jwt.Parse(at.Token, func(tok *jwt.Token) (interface{}, error) {
        return []byte("some-other-secret"), nil
    }, jwt.WithValidMethods([]string{"HS256"}))
    assert.Error(t, err)
}

func TestNewRefreshTokenIsRandomAndLongLived(t *testing.T) {
    a, err := NewRefreshToken(7)
    require.NoError(t, err)
    b, err := NewRefreshToken(7)
    require.NoError(t, err)

    assert.Len(t, a.Raw, 96)
    assert.NotEqual(t, a.Raw, b.Raw)
    assert.WithinDuration(t, time.Now().UTC().Add(7*24*time.Hour), a.Exp, time.Minute)
}

func TestHashRefreshRawIsStableAndOpaque(t *testing.T) {
    h1 := HashRefreshRaw("token-one")
    h2 := HashRefreshRaw("token-one")
    h3 := HashRefreshRaw("token-two")

    assert.Equal(t, h1, h2)
    assert.NotEqual(t, h1, h3)
    assert.Len(t, h1, 64)
    assert.NotContains(t, h1, "token")
}
