// Package httpx holds the gin helpers shared by the REST handlers.
package httpx

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dwikikusuma/shoping-checkout/pkg/apperr"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CartKeyCookie = "cart_key"
	CartKeyHeader = "X-Cart-Key"
	UserIDHeader  = "X-User-ID"

	cartKeyCtx = "cart_key"
	userIDCtx  = "user_id"

	cartCookieMaxAge = 60 * 60 * 24 * 30
)

type errorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// WriteError aborts the request with the status mapped from err.
func WriteError(c *gin.Context, err error, details map[string]any) {
	status, code, msg := apperr.HTTPStatus(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": errorBody{Code: code, Message: msg, Details: details}})
}

// CartKey resolves the shopper's cart key from the X-Cart-Key header or the
// cart_key cookie, minting a new key cookie when neither is present.
func CartKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(CartKeyHeader))
		if key == "" {
			if v, err := c.Cookie(CartKeyCookie); err == nil {
				key = strings.TrimSpace(v)
			}
		}
		if key == "" {
			key = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(CartKeyCookie, key, cartCookieMaxAge, "/", "", false, true)
		}
		c.Set(cartKeyCtx, key)
		c.Next()
	}
}

func CartKeyFrom(c *gin.Context) string {
	return c.GetString(cartKeyCtx)
}

// RequireUser rejects requests without the X-User-ID header set by the
// upstream authentication layer.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(UserIDHeader))
		if id == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errorBody{
				Code:    "UNAUTHENTICATED",
				Message: "user is not signed in",
			}})
			return
		}
		c.Set(userIDCtx, id)
		c.Next()
	}
}

func UserIDFrom(c *gin.Context) string {
	return c.GetString(userIDCtx)
}

// RequestLogger logs one structured line per request.
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("err", c.Errors.Last().Error()))
		}

		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			log.Error("http request", attrs...)
		default:
			log.Debug("http request", attrs...)
		}
	}
}
