package router

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/cache"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/config"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/constants"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/http/handlers/shared"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/http/response"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/i18n"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/logger"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDKey = "request_id"
const requestIDHeader = "X-Request-ID"

// TokenAuthenticator 解析并校验访问令牌
type TokenAuthenticator interface {
	ParseJWT(tokenString string) (*service.JWTClaims, error)
	ValidateToken(ctx context.Context, claims *service.JWTClaims) (*cache.UserAuthState, error)
}

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	allowedHeaders := cfg.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{
			"Content-Type",
			"Content-Length",
			"Accept-Language",
			"Authorization",
			"Cache-Control",
			"X-Requested-With",
			requestIDHeader,
		}
	}
	methodsHeader := strings.Join(allowedMethods, ", ")
	headersHeader := strings.Join(allowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowedOrigin := resolveAllowedOrigin(origin, allowedOrigins, cfg.AllowCredentials)
		if allowedOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", headersHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", methodsHeader)
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, "+requestIDHeader)
		if cfg.MaxAge > 0 {
			c.Writer.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	if len(allowedOrigins) == 0 {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			if allowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 请求 ID 中间件（同时写入 request context 供服务层日志使用）
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), requestID))
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.L()
	}
	sugar := log.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := sugar.With(
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if userID, ok := c.Get(shared.ContextKeyUserID); ok {
			entry = entry.With("user_id", userID)
		}
		if len(c.Errors) > 0 {
			entry.Errorw("request", "errors", c.Errors.String())
			return
		}
		entry.Infow("request")
	}
}

func getRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

func abortUnauthorized(c *gin.Context, key string) {
	response.Unauthorized(c, i18n.T(i18n.ResolveLocale(c), key))
	c.Abort()
}

// JWTAuthMiddleware JWT 鉴权中间件；通过后写入用户身份到上下文
func JWTAuthMiddleware(secretKey string, auth TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secretKey == "" {
			abortUnauthorized(c, "error.jwt_secret_missing")
			return
		}
		if auth == nil {
			abortUnauthorized(c, "error.token_invalid")
			return
		}
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "error.auth_header_missing")
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && strings.EqualFold(parts[0], "Bearer")) {
			abortUnauthorized(c, "error.auth_header_invalid")
			return
		}

		claims, err := auth.ParseJWT(strings.TrimSpace(parts[1]))
		if err != nil || claims == nil || claims.UserID == 0 {
			abortUnauthorized(c, "error.token_invalid")
			return
		}
		state, err := auth.ValidateToken(c.Request.Context(), claims)
		switch {
		case errors.Is(err, service.ErrUserDisabled):
			abortUnauthorized(c, "error.user_disabled")
			return
		case errors.Is(err, service.ErrInvalidCredentials):
			abortUnauthorized(c, "error.token_revoked")
			return
		case err != nil:
			logger.Ctx(c.Request.Context()).Errorw("auth_token_validate_failed", "user_id", claims.UserID, "error", err)
			abortUnauthorized(c, "error.token_invalid")
			return
		}

		c.Set(shared.ContextKeyUserID, state.UserID)
		c.Set(shared.ContextKeyUsername, state.Username)
		c.Set(shared.ContextKeyIsSuper, state.IsSuper)
		c.Set(shared.ContextKeyLocation, state.Location)
		c.Set(shared.ContextKeyAccessLevel, state.AccessLevel)
		c.Next()
	}
}

// RequireFullAccess 后台网页端仅允许 full 访问级别（超级用户放行）
func RequireFullAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetBool(shared.ContextKeyIsSuper) || c.GetString(shared.ContextKeyAccessLevel) == constants.UserAccessFull {
			c.Next()
			return
		}
		response.Forbidden(c, i18n.T(i18n.ResolveLocale(c), "error.access_level_denied"))
		c.Abort()
	}
}

// RequireSuperuser 仅超级用户
func RequireSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetBool(shared.ContextKeyIsSuper) {
			c.Next()
			return
		}
		response.Forbidden(c, i18n.T(i18n.ResolveLocale(c), "error.forbidden"))
		c.Abort()
	}
}

// RequireCapability 能力校验中间件（超级用户放行）
func RequireCapability(authorizer service.Authorizer, capability string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetBool(shared.ContextKeyIsSuper) {
			c.Next()
			return
		}
		if authorizer == nil {
			logger.Errorw("authz_service_unavailable", "capability", capability)
			abortUnauthorized(c, "error.unauthorized")
			return
		}
		userID := c.GetUint(shared.ContextKeyUserID)
		if userID == 0 {
			abortUnauthorized(c, "error.unauthorized")
			return
		}
		allowed, err := authorizer.Can(userID, capability)
		if err != nil {
			logger.Ctx(c.Request.Context()).Errorw("authz_enforce_failed",
				"user_id", userID,
				"capability", capability,
				"path", c.Request.URL.Path,
				"error", err,
			)
			abortUnauthorized(c, "error.unauthorized")
			return
		}
		if !allowed {
			logger.Ctx(c.Request.Context()).Warnw("authz_permission_denied",
				"user_id", userID,
				"capability", capability,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)
			response.Forbidden(c, i18n.T(i18n.ResolveLocale(c), "error.forbidden"))
			c.Abort()
			return
		}
		c.Next()
	}
}
