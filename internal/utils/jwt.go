package utils // package utils provides helpers for session tokens and password hashing

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// sessionIssuer is written to and required in the iss claim.
const sessionIssuer = "logmypour"

// ErrInvalidSession is returned by ParseSessionToken for any token that is
// malformed, forged, expired or missing a claim.
var ErrInvalidSession = errors.New("invalid session token")

// SessionToken is a signed session cookie value along with its expiry.
type SessionToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// SessionClaims are the facts recovered from a verified session token.
type SessionClaims struct {
	UserID    uint64 // sub
	SessionID string // jti, the sessions table key
}

// NewSessionToken signs an HS256 JWT identifying userID and the server-side
// session row sessionID. The token expires after ttl.
func NewSessionToken(secret string, userID uint64, sessionID string, ttl time.Duration) (SessionToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    sessionIssuer,
		Subject:   strconv.FormatUint(userID, 10),
		ID:        sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, fmt.Errorf("sign session: %w", err)
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}

// ParseSessionToken verifies raw against secret and extracts its claims.
// Only HS256 is accepted.
func ParseSessionToken(secret, raw string) (SessionClaims, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return SessionClaims{}, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	uid, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || uid == 0 || claims.ID == "" {
		return SessionClaims{}, ErrInvalidSession
	}
	return SessionClaims{UserID: uid, SessionID: claims.ID}, nil
}
