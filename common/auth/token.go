package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the signed identity claim carried by every token. TokenID is
// a random id recorded in the revocation cache on logout.
type Claims struct {
	UserID    int64  `json:"user_id"`
	Moderator bool   `json:"moderator"`
	TokenID   string `json:"tkid"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller as seen by the service layer
type Identity struct {
	UserID    int64
	Moderator bool
	TokenID   string
	ExpiresAt time.Time
}

// Identity converts parsed claims into a service-layer identity
func (c *Claims) Identity() Identity {
	var exp time.Time
	if c.ExpiresAt != nil {
		exp = c.ExpiresAt.Time
	}
	return Identity{
		UserID:    c.UserID,
		Moderator: c.Moderator,
		TokenID:   c.TokenID,
		ExpiresAt: exp,
	}
}

// Issuer signs and validates identity tokens
type Issuer struct {
	signingKey []byte
	ttl        time.Duration
}

// NewIssuer creates a token issuer with the given signing key and token lifetime
func NewIssuer(signingKey []byte, ttl time.Duration) *Issuer {
	return &Issuer{signingKey: signingKey, ttl: ttl}
}

// Issue signs a token for the given user
func (i *Issuer) Issue(userID int64, moderator bool) (string, *Claims, error) {
	claims := &Claims{
		UserID:    userID,
		Moderator: moderator,
		TokenID:   uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.signingKey)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// Parse validates a token string and returns its claims
func (i *Issuer) Parse(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))
	var claims Claims
	_, err := parser.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		return i.signingKey, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
