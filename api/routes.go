/*
 * @module api/routes
 * @description API路由配置模块，负责初始化和配置所有HTTP路由
 * @architecture RESTful API架构
 * @stateFlow 无状态HTTP请求处理
 * @rules 遵循RESTful API设计规范，统一错误处理和响应格式
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/cors, github.com/go-chi/render
 * @refs api/controllers
 */

package api

import (
	"completion-service/api/controllers"
	"completion-service/service"
	"completion-service/service/rate_limiter"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
)

// InitRoute 初始化所有API路由
func InitRoute(r *chi.Mux) {
	var pinger controllers.Pinger
	if service.Store != nil {
		pinger = service.Store
	}
	Mount(r, Deps{
		Completion: controllers.NewCompletionController(service.GlobalScoreService),
		Health:     controllers.NewHealthController(pinger),
		Limiter:    service.GlobalRateLimiter,

		AllowedOrigins: service.Config.CORSAllowedOrigins,
	})
}

// Deps 路由依赖
type Deps struct {
	Completion *controllers.CompletionController
	Health     *controllers.HealthController
	Limiter    rate_limiter.Limiter

	// AllowedOrigins 为空时允许任意来源且不携带凭证
	AllowedOrigins []string
}

// Mount 挂载中间件与路由
func Mount(r chi.Router, deps Deps) {
	// 基础中间件
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// CORS配置
	r.Use(cors.Handler(controllers.CORSOptions(deps.AllowedOrigins)))

	// 健康检查
	r.Get("/health", deps.Health.Health)
	r.Get("/ready", deps.Health.Ready)

	// 资料完整度
	r.Route("/completion", func(r chi.Router) {
		if deps.Limiter != nil {
			r.Use(rate_limiter.Middleware(deps.Limiter))
		}
		c := deps.Completion

		r.Get("/records/{id}/score", c.GetScore)
		r.Post("/records/{id}/missing-fields", c.GetMissingFields)
		r.Get("/average", c.GetAverage)
		r.Get("/distribution", c.GetDistribution)
		r.Get("/inadequate", c.GetInadequate)
		r.Get("/coverage", c.GetCoverage)
		r.Get("/policy", c.GetPolicy)
	})
}
