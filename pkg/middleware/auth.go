package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"innovator-portal/pkg/models"
	"innovator-portal/pkg/utils"
)

// ContextKey 用于在context中存储用户信息的键
type ContextKey string

const (
	PrincipalContextKey ContextKey = "principal"
)

// AuthMiddleware JWT认证中间件
func AuthMiddleware(jwtService *utils.JWTService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 从Authorization头获取token
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug("auth: missing authorization header", zap.String("path", r.URL.Path))
				utils.WriteUnauthorizedResponse(w, "Not authenticated")
				return
			}

			// 检查Bearer前缀
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader || strings.TrimSpace(tokenString) == "" {
				logger.Debug("auth: invalid authorization header format", zap.String("path", r.URL.Path))
				utils.WriteUnauthorizedResponse(w, "Invalid authorization header format")
				return
			}

			// 解析和验证JWT token
			principal, err := jwtService.ValidateToken(tokenString)
			if err != nil {
				logger.Debug("auth: token rejected", zap.String("path", r.URL.Path), zap.Error(err))
				utils.WriteUnauthorizedResponse(w, "Could not validate credentials")
				return
			}

			// 将用户信息添加到请求context中
			ctx := context.WithValue(r.Context(), PrincipalContextKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole 要求调用者具备指定角色
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := RequirePrincipal(r.Context())
			if err != nil {
				utils.WriteUnauthorizedResponse(w, "Not authenticated")
				return
			}
			if principal.Role != role {
				utils.WriteForbiddenResponse(w, fmt.Sprintf("Only %s accounts can access this resource", role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetPrincipalFromContext 从context中获取用户信息
func GetPrincipalFromContext(ctx context.Context) (*models.Principal, bool) {
	p, ok := ctx.Value(PrincipalContextKey).(*models.Principal)
	return p, ok
}

// RequirePrincipal 要求用户必须已认证的辅助函数
func RequirePrincipal(ctx context.Context) (*models.Principal, error) {
	p, ok := GetPrincipalFromContext(ctx)
	if !ok || p == nil {
		return nil, fmt.Errorf("user not authenticated")
	}
	return p, nil
}
