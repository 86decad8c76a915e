package store

import (
	"context"
	"database/sql"
	"time"

	"completion-service/service/completion"
)

// SQLStore 基于 database/sql 的记录存储，用于 lib/pq 与 ClickHouse
type SQLStore struct {
	db      *sql.DB
	dialect completion.Dialect
	timeout time.Duration
	typed   bool
}

// NewSQLStore 创建 database/sql 记录存储
func NewSQLStore(db *sql.DB, dialect completion.Dialect, timeout time.Duration) *SQLStore {
	return &SQLStore{db: db, dialect: dialect, timeout: timeout}
}

// Dialect 存储方言
func (s *SQLStore) Dialect() completion.Dialect {
	return s.dialect
}

// Query 执行只读语句
func (s *SQLStore) Query(ctx context.Context, query string, args ...interface{}) ([]map[string]interface{}, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRows(rows, s.typed)
}

// Ping 检查连接可用
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close 关闭连接池
func (s *SQLStore) Close() error {
	return s.db.Close()
}
