// Package api 组装模拟后端的 chi 路由：只实现想法集合的四个端点，供前端联调与测试使用
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"innovator-portal/pkg/config"
	"innovator-portal/pkg/database"
	"innovator-portal/pkg/handlers"
	customMiddleware "innovator-portal/pkg/middleware"
	"innovator-portal/pkg/utils"
)

// RoleInnovator 想法接口只对创新者账号开放
const RoleInnovator = "innovator"

// maxBodyBytes 请求体上限
const maxBodyBytes = 1 << 20

// NewRouter 创建模拟后端路由
func NewRouter(cfg *config.Config, db database.IdeaRepository, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	// 创建Chi路由器
	router := chi.NewRouter()

	// 设置全局中间件
	setupMiddleware(router, cfg, logger)

	// 设置路由
	setupRoutes(router, cfg, db, logger)

	return router
}

// setupMiddleware 设置全局中间件
func setupMiddleware(router *chi.Mux, cfg *config.Config, logger *zap.Logger) {
	// 基础中间件
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(customMiddleware.RequestLogger(logger))
	router.Use(middleware.Recoverer)

	// CORS中间件
	router.Use(customMiddleware.CORS(cfg))

	// 超时中间件
	router.Use(middleware.Timeout(25 * time.Second))

	// 开发环境额外中间件
	if cfg.IsDevelopment() {
		router.Use(middleware.Heartbeat("/ping"))
	}
}

// setupRoutes 设置所有API路由
func setupRoutes(router *chi.Mux, cfg *config.Config, db database.IdeaRepository, logger *zap.Logger) {
	ideasHandler := handlers.NewIdeasHandler(db, logger)
	jwtService := utils.NewJWTService(cfg.JWTSecret)

	// 健康检查端点
	router.Get("/", ideasHandler.HealthCheck)

	// 需要认证的路由
	router.Route("/api/v1/innovator", func(r chi.Router) {
		r.Use(customMiddleware.AuthMiddleware(jwtService, logger))
		r.Use(customMiddleware.RequireRole(RoleInnovator))
		r.Use(customMiddleware.MaxBodySize(maxBodyBytes))
		r.Use(customMiddleware.ContentTypeJSON)

		r.Get("/view-ideas", ideasHandler.ListIdeas)
		r.Post("/submit-idea", ideasHandler.SubmitIdea)
		r.Put("/update-idea/{id}", ideasHandler.UpdateIdea)
		r.Delete("/delete-idea/{id}", ideasHandler.DeleteIdea)
	})

	// 404处理
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteNotFoundResponse(w, fmt.Sprintf("Route not found: %s %s", r.Method, r.URL.Path))
	})

	// 405处理
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteErrorResponse(w, http.StatusMethodNotAllowed,
			fmt.Sprintf("Method %s not allowed for %s", r.Method, r.URL.Path))
	})
}
