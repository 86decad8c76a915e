/*
 * @module service/cleanup/report_cleanup_service
 * @description 报告清理服务，定期删除超过保留天数的完整度报告快照
 * @architecture 分层架构 - 业务服务层
 * @stateFlow 定时触发 -> 计算截止时间 -> 删除过期快照 -> 记录结果
 * @rules 保留天数小于等于0时不清理；清理失败只记录日志，不影响报告发布
 * @dependencies gorm.io/gorm, github.com/robfig/cron/v3
 * @refs service/report/scheduler.go, service/models/report.go
 */

package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"completion-service/service/models"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// DefaultCleanupCron 每天凌晨2点执行（秒 分 时 日 月 周）
const DefaultCleanupCron = "0 0 2 * * *"

// ReportCleanupService 报告清理服务
type ReportCleanupService struct {
	db            *gorm.DB
	retentionDays int
	cron          *cron.Cron
	now           func() time.Time
	started       bool
}

// NewReportCleanupService 创建报告清理服务实例
func NewReportCleanupService(db *gorm.DB, retentionDays int) *ReportCleanupService {
	return &ReportCleanupService{
		db:            db,
		retentionDays: retentionDays,
		cron:          cron.New(cron.WithSeconds()),
		now:           time.Now,
	}
}

// CleanupExpiredReports 删除过期报告，返回删除条数
func (s *ReportCleanupService) CleanupExpiredReports(ctx context.Context) (int64, error) {
	if s.retentionDays <= 0 {
		return 0, nil
	}
	cutoff := s.now().AddDate(0, 0, -s.retentionDays)
	slog.Debug("清理过期报告", "cutoff", cutoff.Format("2006-01-02 15:04:05"), "retention_days", s.retentionDays)

	result := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.CompletionReport{})
	if result.Error != nil {
		return 0, fmt.Errorf("删除过期报告失败: %w", result.Error)
	}
	slog.Info("过期报告清理完成", "deleted_count", result.RowsAffected, "retention_days", s.retentionDays)
	return result.RowsAffected, nil
}

// Start 启动定时清理任务
func (s *ReportCleanupService) Start(spec string) error {
	if s.started {
		return fmt.Errorf("报告清理调度器已经启动")
	}
	if spec == "" {
		spec = DefaultCleanupCron
	}

	if _, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := s.CleanupExpiredReports(ctx); err != nil {
			slog.Error("定时报告清理任务失败", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("添加定时任务失败: %w", err)
	}

	s.cron.Start()
	s.started = true
	slog.Info("报告清理调度器启动成功", "cron", spec, "retention_days", s.retentionDays)
	return nil
}

// Stop 停止定时清理任务
func (s *ReportCleanupService) Stop() {
	if !s.started {
		return
	}
	<-s.cron.Stop().Done()
	s.started = false
	slog.Info("报告清理调度器已停止")
}
