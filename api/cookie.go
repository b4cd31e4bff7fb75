package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

const sessionCookieName = "token"

func setSessionCookie(c echo.Context, token string, ttl time.Duration, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearSessionCookie(c echo.Context, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// sessionToken extracts the session carrier from the request: the session
// cookie when present, otherwise a bearer Authorization header.
func sessionToken(c echo.Context) string {
	if cookie, err := c.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	token = strings.TrimSpace(token)
	if strings.Count(token, ".") != 2 {
		return ""
	}
	return token
}
