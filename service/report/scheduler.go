package report

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"completion-service/service/distributed_lock"
	"completion-service/service/models"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const lockKey = "report"

// Scheduler 定时生成并发布报告
type Scheduler struct {
	builder   *Builder
	publisher Publisher
	db        *gorm.DB
	cron      *cron.Cron
	timeout   time.Duration
	locker    *distributed_lock.LockExecutor

	mu      sync.Mutex
	started bool
	last    *Snapshot
}

// NewScheduler 创建报告调度器，db 为空时不持久化快照
func NewScheduler(builder *Builder, publisher Publisher, db *gorm.DB, timeout time.Duration) *Scheduler {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Scheduler{
		builder:   builder,
		publisher: publisher,
		db:        db,
		cron:      cron.New(cron.WithSeconds()),
		timeout:   timeout,
	}
}

// SetLockExecutor 多实例部署时设置分布式锁，定时任务只在取得锁的实例上执行
func (s *Scheduler) SetLockExecutor(locker *distributed_lock.LockExecutor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locker = locker
}

// Start 按 cron 表达式（秒 分 时 日 月 周）启动调度
func (s *Scheduler) Start(spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("报告调度器已经启动")
	}

	if _, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.runScheduled(ctx); err != nil {
			slog.Error("定时报告任务失败", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("添加定时任务失败: %w", err)
	}

	s.cron.Start()
	s.started = true
	slog.Info("报告调度器启动成功", "cron", spec, "publisher", s.publisher.Name())
	return nil
}

// runScheduled 定时触发的一次执行，设置了分布式锁时只有持锁实例执行
func (s *Scheduler) runScheduled(ctx context.Context) error {
	s.mu.Lock()
	locker := s.locker
	s.mu.Unlock()

	if locker == nil {
		_, err := s.RunOnce(ctx)
		return err
	}
	executed, err := locker.ExecuteWithLock(ctx, lockKey, s.timeout, func() error {
		_, err := s.RunOnce(ctx)
		return err
	})
	if err == nil && !executed {
		slog.Info("报告已由其他实例生成，本次跳过")
	}
	return err
}

// RunOnce 生成、持久化并发布一份报告
func (s *Scheduler) RunOnce(ctx context.Context) (*Snapshot, error) {
	snapshot, err := s.builder.Build(ctx)
	if err != nil {
		return nil, err
	}

	if s.db != nil {
		record := &models.CompletionReport{
			ID:                 snapshot.ID,
			Total:              snapshot.Total,
			WithPhotos:         snapshot.WithPhotos,
			WithAdditionalInfo: snapshot.WithAdditionalInfo,
			AverageScore:       snapshot.AverageScore,
			Distribution:       make(models.JSONB, len(snapshot.Distribution)),
			Publisher:          s.publisher.Name(),
			CreatedAt:          snapshot.GeneratedAt,
		}
		for label, count := range snapshot.Distribution {
			record.Distribution[label] = count
		}
		if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
			slog.Warn("保存报告快照失败", "report_id", snapshot.ID, "error", err)
		}
	}

	if err := s.publisher.Publish(ctx, snapshot); err != nil {
		return snapshot, err
	}

	s.mu.Lock()
	s.last = snapshot
	s.mu.Unlock()
	slog.Info("报告发布完成", "report_id", snapshot.ID, "publisher", s.publisher.Name())
	return snapshot, nil
}

// Last 最近一次成功发布的报告
func (s *Scheduler) Last() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Stop 停止调度并关闭发布器
func (s *Scheduler) Stop() {
	s.mu.Lock()
	started := s.started
	s.started = false
	s.mu.Unlock()

	// 运行中的任务结束前会获取 s.mu，等待时不能持锁
	if started {
		<-s.cron.Stop().Done()
	}
	if err := s.publisher.Close(); err != nil {
		slog.Warn("关闭报告发布器失败", "error", err)
	}
}
