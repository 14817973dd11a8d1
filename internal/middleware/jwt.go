package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
	"github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// injects the token's subject claim into the request context.  The provided
// secret must match the one used when issuing tokens.  This middleware wraps
// routes that require an authenticated user; handlers read the identity via
// `c.Get("user_id")` and load the user record themselves.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sub, ok := parseBearer(c, secret)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
			}
			c.Set("user_id", sub)
			return next(c)
		}
	}
}

// OptionalJWTAuth is the anonymous-permitted variant used by the visibility
// gated read endpoints.  A valid bearer token injects the subject exactly as
// JWTAuth does; a missing, malformed or expired token simply leaves the
// request anonymous instead of rejecting it, so the handler's policy check
// decides what an anonymous caller may see.
func OptionalJWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if sub, ok := parseBearer(c, secret); ok {
				c.Set("user_id", sub)
			}
			return next(c)
		}
	}
}

// parseBearer extracts and validates the Authorization bearer token.  It
// returns the raw subject claim and whether a valid token was present.  The
// claim value is left untyped; handlers convert it (JWT numbers decode as
// float64).
func parseBearer(c echo.Context, secret string) (any, bool) {
	authHeader := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, false
	}
	raw := strings.TrimPrefix(authHeader, "Bearer ")

	// Parse with the HS256 signing method and our secret.  The callback
	// supplies the signing key and rejects any other algorithm.
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, echo.ErrUnauthorized
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return nil, false
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, false
	}
	sub, ok := claims["sub"]
	if !ok || sub == nil {
		return nil, false
	}
	return sub, true
}
