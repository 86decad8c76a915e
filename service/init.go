/*
 * @module service/init
 * @description 服务初始化模块，负责配置加载、存储连接、迁移与服务装配
 * @architecture 分层架构 - 服务层
 * @stateFlow 应用启动时执行初始化流程
 * @rules 确保所有依赖服务正常启动后才提供API服务
 * @dependencies gorm.io/gorm, completion-service/service/store
 * @refs main.go, api/routes.go
 */

package service

import (
	"context"
	"log"
	"time"

	"completion-service/logger"
	"completion-service/service/completion"
	"completion-service/service/config"
	"completion-service/service/cleanup"
	"completion-service/service/database"
	"completion-service/service/distributed_lock"
	"completion-service/service/rate_limiter"
	"completion-service/service/report"
	"completion-service/service/store"

	"gorm.io/gorm"
)

var (
	Config                *config.Config
	Store                 store.Store
	DB                    *gorm.DB
	GlobalScoreService    *completion.ScoreService
	GlobalReportScheduler *report.Scheduler
	GlobalReportCleanup   *cleanup.ReportCleanupService
	GlobalRateLimiter     rate_limiter.Limiter
)

func init() {
	Config = config.Load()
	logger.InitLogger(Config.SlogLevel())

	initStore()
	runMigrations()
	initServices()
}

// initStore 初始化记录存储
func initStore() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var err error
	Store, err = store.Open(ctx, Config.Database)
	if err != nil {
		log.Fatalf("记录存储初始化失败: %v", err)
	}
	if gs, ok := Store.(*store.GormStore); ok {
		DB = gs.DB()
	}
	log.Printf("记录存储初始化成功: driver=%s", Config.Database.Driver)
}

// runMigrations 运行数据库迁移
func runMigrations() {
	if !Config.Database.AutoMigrate || DB == nil {
		log.Println("跳过数据库迁移")
		return
	}
	if err := database.AutoMigrate(DB); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}
	log.Println("数据库表结构迁移完成")
}

// initServices 初始化服务
func initServices() {
	policy, buckets, err := Config.ResolvePolicy(completion.DefaultRegistry())
	if err != nil {
		log.Fatalf("完整度策略加载失败: %v", err)
	}

	GlobalScoreService, err = completion.NewScoreService(Store, policy, buckets)
	if err != nil {
		log.Fatalf("评分服务初始化失败: %v", err)
	}

	if Config.RateLimitPerMinute > 0 {
		limiter, err := rate_limiter.NewRedisRateLimiter(Config.Redis, Config.RateLimitPerMinute)
		if err != nil {
			log.Printf("限流器初始化失败，不启用限流: %v", err)
		} else {
			GlobalRateLimiter = limiter
		}
	}

	initReportScheduler()
	log.Println("服务初始化完成")
}

// initReportScheduler 初始化并启动定时报告
func initReportScheduler() {
	if Config.Report.Cron == "" {
		return
	}
	publisher, err := report.NewPublisher(Config.Report)
	if err != nil {
		log.Printf("报告发布器初始化失败，不启用定时报告: %v", err)
		return
	}
	GlobalReportScheduler = report.NewScheduler(report.NewBuilder(GlobalScoreService), publisher, DB, Config.Database.QueryTimeout)

	if Config.Report.UseLock {
		lock, err := distributed_lock.NewRedisLock(Config.Redis)
		if err != nil {
			log.Printf("分布式锁初始化失败，定时报告在每个实例上执行: %v", err)
		} else {
			GlobalReportScheduler.SetLockExecutor(distributed_lock.NewLockExecutor(lock))
		}
	}

	if err := GlobalReportScheduler.Start(Config.Report.Cron); err != nil {
		log.Printf("启动报告调度器失败: %v", err)
	}

	if DB != nil && Config.Report.RetentionDays > 0 {
		GlobalReportCleanup = cleanup.NewReportCleanupService(DB, Config.Report.RetentionDays)
		if err := GlobalReportCleanup.Start(Config.Report.CleanupCron); err != nil {
			log.Printf("启动报告清理调度器失败: %v", err)
		}
	}
}
