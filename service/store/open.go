package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"completion-service/service/completion"
	"completion-service/service/config"

	"github.com/ClickHouse/clickhouse-go/v2"
	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq" // PostgreSQL驱动
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store 可关闭、可探活的记录存储
type Store interface {
	completion.RecordStore
	Ping(ctx context.Context) error
	Close() error
}

// Open 按配置的驱动打开记录存储
func Open(ctx context.Context, cfg config.DatabaseConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return openGorm(postgres.Open(cfg.PostgresDSN()), cfg)
	case config.DriverSQLite:
		return openGorm(sqlite.Open(cfg.SQLitePath), cfg)
	case config.DriverPQ:
		return openPQ(ctx, cfg)
	case config.DriverClickHouse:
		return openClickHouse(ctx, cfg)
	default:
		return nil, &completion.ValidationError{
			Field:  "STORE_DRIVER",
			Reason: fmt.Sprintf("不支持的存储驱动: %s (支持 postgres, sqlite, pq, clickhouse)", cfg.Driver),
		}
	}
}

func openGorm(dialector gorm.Dialector, cfg config.DatabaseConfig) (*GormStore, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}
	slog.Info("数据库连接成功", "driver", cfg.Driver)
	return NewGormStore(db, cfg.QueryTimeout)
}

func openPQ(ctx context.Context, cfg config.DatabaseConfig) (*SQLStore, error) {
	db, err := sql.Open("postgres", cfg.PostgresDSN())
	if err != nil {
		return nil, fmt.Errorf("打开PostgreSQL连接失败: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("PostgreSQL连接测试失败: %w", err)
	}
	slog.Info("数据库连接成功", "driver", cfg.Driver)
	return NewSQLStore(db, completion.Postgres.WithPlaceholder(sq.Dollar), cfg.QueryTimeout), nil
}

func openClickHouse(ctx context.Context, cfg config.DatabaseConfig) (*SQLStore, error) {
	opts, err := clickhouse.ParseDSN(cfg.ClickHouseDSN)
	if err != nil {
		return nil, &completion.ValidationError{Field: "CLICKHOUSE_DSN", Reason: err.Error()}
	}
	db := clickhouse.OpenDB(opts)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ClickHouse连接测试失败: %w", err)
	}
	slog.Info("数据库连接成功", "driver", cfg.Driver, "addr", opts.Addr)

	s := NewSQLStore(db, completion.ClickHouse, cfg.QueryTimeout)
	s.typed = true
	return s, nil
}
