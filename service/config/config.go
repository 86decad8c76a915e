/*
 * @module service/config/config
 * @description 服务配置，启动时从环境变量一次性读取
 * @architecture 分层架构 - 配置层
 * @stateFlow 环境变量 -> 默认值补齐 -> 类型转换 -> Config
 * @rules 配置只读；未设置的变量使用默认值，格式错误时回退到默认值并记录告警
 * @dependencies github.com/spf13/cast
 * @refs service/init.go, service/config/policy_file.go
 */

package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// 存储驱动
const (
	DriverPostgres   = "postgres"
	DriverSQLite     = "sqlite"
	DriverPQ         = "pq"
	DriverClickHouse = "clickhouse"
)

// 报告发布方式
const (
	PublisherLog   = "log"
	PublisherKafka = "kafka"
	PublisherMQTT  = "mqtt"
	PublisherDapr  = "dapr"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver        string
	URL           string
	Host          string
	Port          string
	User          string
	Password      string
	Name          string
	SSLMode       string
	Schema        string
	SQLitePath    string
	ClickHouseDSN string
	AutoMigrate   bool
	QueryTimeout  time.Duration
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// ReportConfig 定时报告配置
type ReportConfig struct {
	Cron           string
	Publisher      string
	KafkaBrokers   []string
	KafkaTopic     string
	MQTTBroker     string
	MQTTTopic      string
	DaprPubSubName string
	DaprTopic      string
	RetentionDays  int
	CleanupCron    string
	UseLock        bool
}

// Config 服务配置
type Config struct {
	LogLevel           string
	PolicyFile         string
	RateLimitPerMinute int
	CORSAllowedOrigins []string
	Database           DatabaseConfig
	Redis              RedisConfig
	Report             ReportConfig
}

// Load 从环境变量读取配置
func Load() *Config {
	return &Config{
		LogLevel:           strings.ToLower(getEnvWithDefault("LOG_LEVEL", "info")),
		PolicyFile:         os.Getenv("POLICY_FILE"),
		RateLimitPerMinute: getIntEnv("RATE_LIMIT_PER_MINUTE", 0),
		CORSAllowedOrigins: splitList(getEnvWithDefault("CORS_ALLOWED_ORIGINS", "*")),
		Database: DatabaseConfig{
			Driver:        strings.ToLower(getEnvWithDefault("STORE_DRIVER", DriverPostgres)),
			URL:           os.Getenv("DATABASE_URL"),
			Host:          getEnvWithDefault("DB_HOST", "localhost"),
			Port:          getEnvWithDefault("DB_PORT", "5432"),
			User:          getEnvWithDefault("DB_USER", "postgres"),
			Password:      os.Getenv("DB_PASSWORD"),
			Name:          getEnvWithDefault("DB_NAME", "postgres"),
			SSLMode:       getEnvWithDefault("DB_SSLMODE", "disable"),
			Schema:        getEnvWithDefault("DB_SCHEMA", "public"),
			SQLitePath:    getEnvWithDefault("SQLITE_PATH", "completion.db"),
			ClickHouseDSN: getEnvWithDefault("CLICKHOUSE_DSN", "clickhouse://default:@localhost:9000/default"),
			AutoMigrate:   getBoolEnv("AUTO_MIGRATE", true),
			QueryTimeout:  time.Duration(getIntEnv("QUERY_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Redis: RedisConfig{
			Host:     getEnvWithDefault("REDIS_HOST", "localhost"),
			Port:     getEnvWithDefault("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Report: ReportConfig{
			Cron:           os.Getenv("REPORT_CRON"),
			Publisher:      strings.ToLower(getEnvWithDefault("REPORT_PUBLISHER", PublisherLog)),
			KafkaBrokers:   splitList(getEnvWithDefault("KAFKA_BROKERS", "localhost:9092")),
			KafkaTopic:     getEnvWithDefault("KAFKA_TOPIC", "completion-report"),
			MQTTBroker:     getEnvWithDefault("MQTT_BROKER", "tcp://localhost:1883"),
			MQTTTopic:      getEnvWithDefault("MQTT_TOPIC", "completion/report"),
			DaprPubSubName: getEnvWithDefault("DAPR_PUBSUB_NAME", "pubsub"),
			DaprTopic:      getEnvWithDefault("DAPR_TOPIC", "completion-report"),
			RetentionDays:  getIntEnv("REPORT_RETENTION_DAYS", 90),
			CleanupCron:    os.Getenv("REPORT_CLEANUP_CRON"),
			UseLock:        getBoolEnv("REPORT_DISTRIBUTED_LOCK", false),
		},
	}
}

// PostgresDSN 生成 PostgreSQL 连接串，DATABASE_URL 优先
func (c DatabaseConfig) PostgresDSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=%s TimeZone=Asia/Shanghai",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Schema)
}

// SlogLevel 日志级别
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// getEnvWithDefault 获取环境变量，如果不存在则返回默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := cast.ToIntE(value)
	if err != nil {
		slog.Warn("环境变量格式错误，使用默认值", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return n
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := cast.ToBoolE(value)
	if err != nil {
		slog.Warn("环境变量格式错误，使用默认值", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return b
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
