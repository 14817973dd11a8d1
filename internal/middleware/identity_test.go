package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/Musah95/wapi-2/internal/model"
	"github.com/Musah95/wapi-2/internal/utils"
)

func identityCtx(t *testing.T, headers map[string]string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return e.NewContext(req, httptest.NewRecorder())
}

// The limiter runs before any auth middleware, so principalID must identify
// users and stations from the request's own credentials, not from context
// values nothing has set yet.
func TestPrincipalID(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		c := identityCtx(t, nil)
		if got := principalID(c, testSecret); got != "anon" {
			t.Errorf("principalID = %q; want anon", got)
		}
	})

	t.Run("bearer token without context", func(t *testing.T) {
		tok, err := utils.NewAccessToken(testSecret, 42, 5)
		if err != nil {
			t.Fatalf("NewAccessToken: %v", err)
		}
		c := identityCtx(t, map[string]string{"Authorization": "Bearer " + tok.Token})
		got := principalID(c, testSecret)
		if !strings.HasPrefix(got, "u") || got == "u" {
			t.Errorf("principalID = %q; want a user identity", got)
		}
	})

	t.Run("forged token falls back to anonymous", func(t *testing.T) {
		tok, err := utils.NewAccessToken("other-secret", 42, 5)
		if err != nil {
			t.Fatalf("NewAccessToken: %v", err)
		}
		c := identityCtx(t, map[string]string{"Authorization": "Bearer " + tok.Token})
		if got := principalID(c, testSecret); got != "anon" {
			t.Errorf("principalID = %q; want anon for an unverifiable token", got)
		}
	})

	t.Run("station key header without context", func(t *testing.T) {
		c := identityCtx(t, map[string]string{StationKeyHeader: "key-1"})
		got := principalID(c, testSecret)
		if !strings.HasPrefix(got, "s") {
			t.Errorf("principalID = %q; want a station identity", got)
		}
		// Different keys map to different buckets.
		other := principalID(identityCtx(t, map[string]string{StationKeyHeader: "key-2"}), testSecret)
		if got == other {
			t.Errorf("two station keys share bucket identity %q", got)
		}
		// The raw credential never appears in the bucket key.
		if strings.Contains(got, "key-1") {
			t.Errorf("principalID %q embeds the raw API key", got)
		}
	})

	t.Run("context values win when set", func(t *testing.T) {
		c := identityCtx(t, nil)
		c.Set("user_id", float64(7))
		if got := principalID(c, testSecret); got != "u7" {
			t.Errorf("principalID = %q; want u7", got)
		}

		c = identityCtx(t, nil)
		c.Set("station", &model.Station{ID: 3})
		if got := principalID(c, testSecret); got != "s3" {
			t.Errorf("principalID = %q; want s3", got)
		}
	})
}
