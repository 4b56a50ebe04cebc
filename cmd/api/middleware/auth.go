package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/softserv/softserv/common/auth"
)

const identityKey = "auth.identity"

// Authenticator verifies bearer tokens and attaches the caller's
// identity to the request context.
type Authenticator struct {
	issuer  *auth.Issuer
	revoker auth.Revoker
}

// NewAuthenticator creates the token-checking middleware
func NewAuthenticator(issuer *auth.Issuer, revoker auth.Revoker) *Authenticator {
	return &Authenticator{issuer: issuer, revoker: revoker}
}

// Required rejects requests without a valid, unrevoked bearer token
func (a *Authenticator) Required(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ident, err := a.authenticate(c)
		if err != nil {
			return err
		}
		if ident == nil {
			return unauthorized("missing bearer token")
		}
		c.Set(identityKey, *ident)
		return next(c)
	}
}

// Optional attaches an identity when a valid token is present and lets
// anonymous requests through. A present but invalid token is still
// rejected.
func (a *Authenticator) Optional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ident, err := a.authenticate(c)
		if err != nil {
			return err
		}
		if ident != nil {
			c.Set(identityKey, *ident)
		}
		return next(c)
	}
}

// authenticate returns (nil, nil) when no token is supplied
func (a *Authenticator) authenticate(c echo.Context) (*auth.Identity, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return nil, nil
	}

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return nil, unauthorized("malformed authorization header")
	}

	claims, err := a.issuer.Parse(token)
	if err != nil {
		return nil, unauthorized("invalid or expired token")
	}

	revoked, err := a.revoker.IsRevoked(c.Request().Context(), claims.TokenID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, unauthorized("token has been revoked")
	}

	ident := claims.Identity()
	return &ident, nil
}

// Identity returns the authenticated caller, or nil on anonymous routes
func Identity(c echo.Context) *auth.Identity {
	if v, ok := c.Get(identityKey).(auth.Identity); ok {
		return &v
	}
	return nil
}

// RequireIdentity returns the caller on routes behind Required
func RequireIdentity(c echo.Context) (auth.Identity, error) {
	if v, ok := c.Get(identityKey).(auth.Identity); ok {
		return v, nil
	}
	return auth.Identity{}, unauthorized("missing bearer token")
}

func unauthorized(message string) error {
	return echo.NewHTTPError(http.StatusUnauthorized, map[string]any{
		"error": map[string]string{"code": "unauthorized", "message": message},
	})
}
