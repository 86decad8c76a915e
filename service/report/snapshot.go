/*
 * @module service/report/snapshot
 * @description 资料完整度报告：人员总数、有头像占比、有简介占比、平均分与分桶分布
 * @architecture 分层架构 - 业务服务层
 * @stateFlow 评分服务聚合查询 -> 组装快照 -> 持久化 -> 发布
 * @rules 快照中所有数值都来自存储端聚合，不逐条加载记录
 * @dependencies github.com/google/uuid
 * @refs service/completion/score_service.go, service/report/publisher.go
 */

package report

import (
	"context"
	"fmt"
	"time"

	"completion-service/service/completion"

	"github.com/google/uuid"
)

const (
	photoField          = "profile_photo"
	additionalInfoField = "additional_info"
)

// Snapshot 报告快照，占比取值 [0,1]
type Snapshot struct {
	ID                 string                  `json:"id"`
	Total              int64                   `json:"total"`
	WithPhotos         float64                 `json:"with_photos"`
	WithAdditionalInfo float64                 `json:"with_additional_info"`
	AverageScore       float64                 `json:"average_score"`
	Distribution       completion.Distribution `json:"distribution"`
	GeneratedAt        time.Time               `json:"generated_at"`
}

// Builder 报告构建器
type Builder struct {
	scores *completion.ScoreService
}

// NewBuilder 创建报告构建器
func NewBuilder(scores *completion.ScoreService) *Builder {
	return &Builder{scores: scores}
}

// Build 生成一份报告快照
func (b *Builder) Build(ctx context.Context) (*Snapshot, error) {
	coverage, err := b.scores.FieldCoverage(ctx, photoField, additionalInfoField)
	if err != nil {
		return nil, fmt.Errorf("统计字段覆盖率失败: %w", err)
	}
	average, err := b.scores.AverageScore(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("统计平均分失败: %w", err)
	}
	dist, err := b.scores.BucketedDistribution(ctx)
	if err != nil {
		return nil, fmt.Errorf("统计分桶分布失败: %w", err)
	}

	return &Snapshot{
		ID:                 uuid.New().String(),
		Total:              coverage.Total,
		WithPhotos:         coverage.Fields[photoField],
		WithAdditionalInfo: coverage.Fields[additionalInfoField],
		AverageScore:       average,
		Distribution:       dist,
		GeneratedAt:        time.Now(),
	}, nil
}
