/*
 * @module api/controllers/health_controller
 * @description 健康检查控制器，提供服务存活与就绪检查
 * @architecture MVC架构 - 控制器层
 * @stateFlow HTTP请求处理流程
 * @rules 存活检查不访问外部依赖；就绪检查探测记录存储连接
 * @dependencies github.com/go-chi/render
 * @refs api/routes.go
 */

package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/render"
)

const serviceName = "completion-service"

// Pinger 可探活的依赖
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController 健康检查控制器
type HealthController struct {
	store Pinger
}

// NewHealthController 创建健康检查控制器实例
func NewHealthController(store Pinger) *HealthController {
	return &HealthController{store: store}
}

// HealthResponse 健康检查响应结构
type HealthResponse struct {
	Status    string    `json:"status" example:"ok"`
	Timestamp time.Time `json:"timestamp" example:"2024-01-01T00:00:00Z"`
	Version   string    `json:"version" example:"1.0.0"`
	Service   string    `json:"service" example:"completion-service"`
	Error     string    `json:"error,omitempty"`
}

// Health 健康检查
// @Summary 健康检查
// @Description 检查服务健康状态
// @Tags 系统
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   "1.0.0",
		Service:   serviceName,
	})
}

// Ready 就绪检查
// @Summary 就绪检查
// @Description 检查记录存储是否可用
// @Tags 系统
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /ready [get]
func (c *HealthController) Ready(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   "1.0.0",
		Service:   serviceName,
	}

	if c.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := c.store.Ping(ctx); err != nil {
			response.Status = "unavailable"
			response.Error = err.Error()
			render.Status(r, http.StatusServiceUnavailable)
		}
	}

	render.JSON(w, r, response)
}
