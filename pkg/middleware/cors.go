package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"innovator-portal/pkg/config"
)

// CORS 创建CORS中间件（允许前端开发服务器直接访问模拟后端）
func CORS(cfg *config.Config) func(http.Handler) http.Handler {
	// 配置CORS选项
	corsOptions := cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
		},
		ExposedHeaders: []string{
			"X-Request-ID",
		},
		AllowCredentials: true,
		MaxAge:           300, // 5分钟
	}

	// 通配符来源时不能设置AllowCredentials为true
	if len(cfg.AllowedOrigins) == 0 || cfg.AllowedOrigins[0] == "*" {
		corsOptions.AllowedOrigins = []string{"*"}
		corsOptions.AllowCredentials = false
	}

	return cors.Handler(corsOptions)
}
