package middleware

// identity.go provides the principal identifier used when building rate-limit
// bucket keys.  The limiter is registered globally and therefore runs before
// the route-level auth middlewares populate the context, so the identifier is
// derived from the request's own credentials: the bearer token's subject for
// users and the API key header for stations.  Context values are still
// honored when present (per-route limiters, tests).  Anonymous traffic shares
// one bucket per IP.

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/Musah95/wapi-2/internal/model"
)

// principalID returns a stable string identity for the request's principal:
// "u<id>" for users, "s<digest>" for stations, "anon" otherwise.  The bearer
// token is verified against the signing secret so a forged token cannot claim
// another principal's bucket; the station key is folded through SHA-256
// rather than looked up, keeping the limiter off the database.
func principalID(c echo.Context, jwtSecret string) string {
	if v := c.Get("user_id"); v != nil {
		return "u" + fmt.Sprint(v)
	}
	if sub, ok := parseBearer(c, jwtSecret); ok {
		return "u" + fmt.Sprint(sub)
	}
	if v := c.Get("station"); v != nil {
		if st, ok := v.(*model.Station); ok {
			return fmt.Sprintf("s%d", st.ID)
		}
	}
	if key := c.Request().Header.Get(StationKeyHeader); key != "" {
		sum := sha256.Sum256([]byte(key))
		return "s" + hex.EncodeToString(sum[:8])
	}
	return "anon"
}
