/*
 * @module service/database/migrate
 * @description 数据库迁移模块，负责创建和更新人员目录与报告表结构
 * @architecture 数据访问层 - 迁移管理
 * @stateFlow 应用启动时执行数据库迁移
 * @rules 确保数据库结构与模型定义保持一致；ClickHouse 表由外部维护，不做迁移
 * @dependencies completion-service/service/models, gorm.io/gorm
 * @refs service/models/person.go, service/models/report.go
 */

package database

import (
	"log/slog"

	"completion-service/service/models"

	"gorm.io/gorm"
)

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate(db *gorm.DB) error {
	slog.Info("开始数据库迁移")

	// 人员目录相关表
	if err := db.AutoMigrate(
		&models.Person{},
		&models.Group{},
		&models.Membership{},
	); err != nil {
		return err
	}

	// 报告快照
	if err := db.AutoMigrate(&models.CompletionReport{}); err != nil {
		return err
	}

	slog.Info("数据库迁移完成")
	return nil
}
