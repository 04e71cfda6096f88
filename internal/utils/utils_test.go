package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPassword_HashAndVerify(t *testing.T) {
	hash, err := HashPassword("hunter2", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)
	assert.True(t, VerifyPassword(hash, "hunter2"))
	assert.False(t, VerifyPassword(hash, "hunter3"))
	assert.False(t, VerifyPassword("not-a-hash", "hunter2"))

	assert.NotPanics(t, func() { VerifyDecoy("anything") })
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("x", 73), bcrypt.MinCost)
	require.ErrorIs(t, err, bcrypt.ErrPasswordTooLong)
	assert.Equal(t, 1, strings.Count(err.Error(), "hash password"))
}

func TestSessionToken_RoundTrip(t *testing.T) {
	tok, err := NewSessionToken("secret", 42, "sess-abc", time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.Exp, 5*time.Second)

	claims, err := ParseSessionToken("secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, SessionClaims{UserID: 42, SessionID: "sess-abc"}, claims)
}

func TestSessionToken_Rejects(t *testing.T) {
	good, err := NewSessionToken("secret", 42, "sess-abc", time.Hour)
	require.NoError(t, err)
	expired, err := NewSessionToken("secret", 42, "sess-abc", -time.Minute)
	require.NoError(t, err)
	noJTI, err := NewSessionToken("secret", 42, "", time.Hour)
	require.NoError(t, err)
	other, err := NewSessionToken("secret", 43, "sess-abc", time.Hour)
	require.NoError(t, err)
	g, o := strings.Split(good.Token, "."), strings.Split(other.Token, ".")
	spliced := g[0] + "." + o[1] + "." + g[2]

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Issuer:    sessionIssuer,
		Subject:   "42",
		ID:        "x",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	cases := map[string]struct{ secret, raw string }{
		"wrong secret": {"other", good.Token},
		"expired":      {"secret", expired.Token},
		"missing jti":  {"secret", noJTI.Token},
		"alg none":     {"secret", unsigned},
		"garbage":      {"secret", "abc.def.ghi"},
		"tampered":     {"secret", spliced},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSessionToken(tc.secret, tc.raw)
			assert.ErrorIs(t, err, ErrInvalidSession)
		})
	}
}
