package main

import (
	"log"
	"net/http"
	"os"
	"strconv"

	"completion-service/api"
	_ "completion-service/docs"
	"completion-service/service"

	daprd "github.com/dapr/go-sdk/service/http"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

var (
	PORT         = 80
	BASE_CONTEXT = ""
)

func init() {
	if val := os.Getenv("LISTEN_PORT"); val != "" {
		PORT, _ = strconv.Atoi(val)
	}

	if val := os.Getenv("BASE_CONTEXT"); val != "" {
		BASE_CONTEXT = val
	}
}

// @title 资料完整度服务 API
// @version 1.0
// @description 人员资料完整度评分服务，提供单记录评分、平均分、分桶分布、资料不足列表与字段覆盖率
// @BasePath /
func main() {
	mux := chi.NewRouter()

	// 如果有BASE_CONTEXT，则在该路径下挂载所有路由
	if BASE_CONTEXT != "" {
		mux.Route(BASE_CONTEXT, func(r chi.Router) {
			api.InitRoute(r.(*chi.Mux))
			r.Handle("/metrics", promhttp.Handler())
			r.Handle("/swagger*", httpSwagger.WrapHandler)
		})
	} else {
		api.InitRoute(mux)
		mux.Handle("/metrics", promhttp.Handler())
		mux.Handle("/swagger*", httpSwagger.WrapHandler)
	}

	defer func() {
		if service.GlobalReportScheduler != nil {
			service.GlobalReportScheduler.Stop()
		}
		if service.GlobalReportCleanup != nil {
			service.GlobalReportCleanup.Stop()
		}
		if service.Store != nil {
			service.Store.Close()
		}
	}()

	s := daprd.NewServiceWithMux(":"+strconv.Itoa(PORT), mux)
	if err := s.Start(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("error: %v", err)
	}
}
