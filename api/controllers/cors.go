/*
 * @module api/controllers/cors
 * @description 跨域配置，来源列表来自 CORS_ALLOWED_ORIGINS
 * @rules 通配来源不携带凭证
 * @dependencies github.com/go-chi/cors
 * @refs api/routes.go, service/config/config.go
 */

package controllers

import (
	"github.com/go-chi/cors"
)

// CORSOptions 跨域配置，来源包含 "*" 时不携带凭证
func CORSOptions(origins []string) cors.Options {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	credentials := true
	for _, o := range origins {
		if o == "*" {
			credentials = false
			break
		}
	}
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: credentials,
		MaxAge:           300,
	}
}
