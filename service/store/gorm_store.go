package store

import (
	"context"
	"time"

	"completion-service/service/completion"

	"gorm.io/gorm"
)

// GormStore 基于 gorm 连接的记录存储，用于 PostgreSQL 与 SQLite
// gorm 自行改写 ? 占位符，方言保持默认的问号格式
type GormStore struct {
	db      *gorm.DB
	dialect completion.Dialect
	timeout time.Duration
}

// NewGormStore 创建 gorm 记录存储，方言按连接的驱动名推断
func NewGormStore(db *gorm.DB, timeout time.Duration) (*GormStore, error) {
	dialect, err := completion.DialectByName(db.Dialector.Name())
	if err != nil {
		return nil, err
	}
	return &GormStore{db: db, dialect: dialect, timeout: timeout}, nil
}

// Dialect 存储方言
func (s *GormStore) Dialect() completion.Dialect {
	return s.dialect
}

// DB 底层连接
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

// Query 执行只读语句
func (s *GormStore) Query(ctx context.Context, query string, args ...interface{}) ([]map[string]interface{}, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.WithContext(ctx).Raw(query, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRows(rows, false)
}

// Ping 检查连接可用
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close 关闭连接池
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
