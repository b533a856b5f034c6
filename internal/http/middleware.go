package httpapi

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront/internal/auth"
	"storefront/internal/domain"
	"storefront/internal/logging"
	"storefront/internal/service"
)

const (
	headerRequestID  = "X-Request-ID"
	headerSessionKey = "X-Session-Key"

	ctxRequestID = "request_id"
	ctxClaims    = "claims"
	ctxOwner     = "cart_owner"

	// совпадает с размером колонки session_key
	maxSessionKeyLen = 64
)

// requestLogger заменяет gin.Logger: request id, структурный лог и метрики
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		rid := c.GetHeader(headerRequestID)
		if rid == "" || len(rid) > 128 {
			rid = uuid.NewString()
		}
		c.Set(ctxRequestID, rid)
		c.Header(headerRequestID, rid)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)
		s.metrics.Requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(status)).Inc()
		s.metrics.LatencyMS.WithLabelValues(route).Observe(float64(elapsed.Microseconds()) / 1000)

		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		s.log.LogAttrs(c.Request.Context(), level, "request",
			slog.String(logging.RequestID, rid),
			slog.String(logging.Method, c.Request.Method),
			slog.String(logging.Route, route),
			slog.Int(logging.Status, status),
			slog.Float64(logging.Latency, float64(elapsed.Microseconds())/1000),
		)
	}
}

// authenticate разбирает Bearer токен, если он есть. Невалидный токен это 401
// даже на публичных маршрутах.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header, use: Bearer <token>"})
			return
		}
		claims, err := s.users.Authenticate(strings.TrimSpace(raw))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set(ctxClaims, claims)
		c.Next()
	}
}

func claimsFrom(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(ctxClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

func isAdmin(c *gin.Context) bool {
	claims, ok := claimsFrom(c)
	return ok && claims.IsAdmin
}

func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := claimsFrom(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": service.ErrUnauthorized.Error()})
			return
		}
		c.Next()
	}
}

func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": service.ErrUnauthorized.Error()})
			return
		}
		if !claims.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": service.ErrForbidden.Error()})
			return
		}
		c.Next()
	}
}

// sessionKey ключ анонимной сессии из заголовка или cookie; заголовок главнее
func (s *Server) sessionKey(c *gin.Context) string {
	if key := strings.TrimSpace(c.GetHeader(headerSessionKey)); validSessionKey(key) {
		return key
	}
	if key, err := c.Cookie(s.cookie); err == nil && validSessionKey(key) {
		return key
	}
	return ""
}

func validSessionKey(key string) bool {
	return key != "" && len(key) <= maxSessionKeyLen
}

// resolveOwner определяет владельца корзины один раз на запрос. Анонимному клиенту
// без ключа выдаётся новый ключ в cookie.
func (s *Server) resolveOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := claimsFrom(c); ok {
			c.Set(ctxOwner, domain.UserOwner(claims.UserID))
			c.Next()
			return
		}
		key := s.sessionKey(c)
		if key == "" {
			key = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(s.cookie, key, int((14 * 24 * time.Hour).Seconds()), "/", "", s.secure, true)
		}
		c.Header(headerSessionKey, key)
		c.Set(ctxOwner, domain.SessionOwner(key))
		c.Next()
	}
}

func ownerFrom(c *gin.Context) domain.CartOwner {
	v, _ := c.Get(ctxOwner)
	owner, _ := v.(domain.CartOwner)
	return owner
}

func requestID(c *gin.Context) string { return c.GetString(ctxRequestID) }
