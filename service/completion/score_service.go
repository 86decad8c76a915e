/*
 * @module service/completion/score_service
 * @description 完整度评分服务：单记录评分、平均分、分桶分布、完整判定、缺失字段、资料不足列表、字段覆盖率
 * @architecture 分层架构 - 领域服务层，通过 RecordStore 接口访问外部存储
 * @stateFlow 调用 -> 构建聚合语句 -> 存储执行一次 -> 解析结果 -> 返回类型化结果或分类错误
 * @rules 无共享可变状态，可并发调用；存储错误原样分类返回，不吞掉、不替换为零值
 * @dependencies log/slog, github.com/prometheus/client_golang
 * @refs query_builder.go, buckets.go, service/store
 */

package completion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cast"
)

// RecordStore 记录存储接口，由存储适配器实现
// 每次调用在单条语句范围内获取并释放连接，ctx 取消时中止正在执行的查询
type RecordStore interface {
	// Dialect 存储方言
	Dialect() Dialect
	// Query 执行只读语句，返回全部结果行（列名 -> 值）
	Query(ctx context.Context, query string, args ...interface{}) ([]map[string]interface{}, error)
}

// RecordSummary 资料不足列表中的一行
type RecordSummary struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	GivenName string `json:"given_name"`
	Surname   string `json:"surname"`
}

// Coverage 字段覆盖率：记录总数及各字段存在的记录占比，取值 [0,1]，保留两位小数
type Coverage struct {
	Total  int64              `json:"total"`
	Fields map[string]float64 `json:"fields"`
}

// ScoreService 完整度评分服务
type ScoreService struct {
	store   RecordStore
	policy  *CompletionPolicy
	buckets *BucketDefinition
	queries *QueryBuilder
}

// NewScoreService 创建评分服务，方言取自存储适配器
func NewScoreService(store RecordStore, policy *CompletionPolicy, buckets *BucketDefinition) (*ScoreService, error) {
	if store == nil {
		return nil, configErrorf("记录存储为空")
	}
	queries, err := NewQueryBuilder(policy, buckets, store.Dialect())
	if err != nil {
		return nil, err
	}
	return &ScoreService{
		store:   store,
		policy:  policy,
		buckets: buckets,
		queries: queries,
	}, nil
}

// Policy 当前策略
func (s *ScoreService) Policy() *CompletionPolicy {
	return s.policy
}

// Buckets 当前分桶定义
func (s *ScoreService) Buckets() *BucketDefinition {
	return s.buckets
}

// query 执行一条语句并记录耗时与失败次数
func (s *ScoreService) query(ctx context.Context, op, query string, args []interface{}) ([]map[string]interface{}, error) {
	start := time.Now()
	rows, err := s.store.Query(ctx, query, args...)
	elapsed := time.Since(start)
	queryDuration.WithLabelValues(op).Observe(elapsed.Seconds())
	if err != nil {
		queryErrors.WithLabelValues(op).Inc()
		slog.Error("完整度查询失败", "operation", op, "duration_ms", elapsed.Milliseconds(), "error", err)
		return nil, storageError(op, err)
	}
	slog.Debug("完整度查询完成", "operation", op, "rows", len(rows), "duration_ms", elapsed.Milliseconds())
	return rows, nil
}

// average 执行平均分语句，聚合结果为 NULL 表示没有匹配的记录
func (s *ScoreService) average(ctx context.Context, op string, ids []int64) (value interface{}, ok bool, err error) {
	sqlStr, args, err := s.queries.AverageQuery(ids)
	if err != nil {
		return nil, false, err
	}
	rows, err := s.query(ctx, op, sqlStr, args)
	if err != nil {
		return nil, false, err
	}
	if len(rows) != 1 {
		return nil, false, storageError(op, fmt.Errorf("平均分查询应返回1行，实际返回%d行", len(rows)))
	}
	v := normalizeValue(rows[0][averageAlias])
	return v, v != nil, nil
}

// ScoreFor 单记录评分，取值 [0,100]
// 记录不存在时聚合结果为 NULL，返回 ErrNotFound，与"记录存在但得分为0"区分
func (s *ScoreService) ScoreFor(ctx context.Context, id int64) (int, error) {
	v, ok, err := s.average(ctx, "score_for", []int64{id})
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("记录 %d: %w", id, ErrNotFound)
	}
	d, _, err := parseDecimal(v)
	if err != nil {
		return 0, storageError("score_for", err)
	}
	score, err := roundScore(d)
	if err != nil {
		return 0, storageError("score_for", err)
	}
	if score < MinScore || score > MaxScore {
		return 0, storageError("score_for", fmt.Errorf("分数超出范围: %d", score))
	}
	return score, nil
}

// AverageScore 平均分，保留两位小数
// ids 为空与不传等价，都统计全表
// 没有任何匹配记录时返回 0
func (s *ScoreService) AverageScore(ctx context.Context, ids []int64) (float64, error) {
	v, ok, err := s.average(ctx, "average_score", ids)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	d, _, err := parseDecimal(v)
	if err != nil {
		return 0, storageError("average_score", err)
	}
	avg, err := roundAverage(d)
	if err != nil {
		return 0, storageError("average_score", err)
	}
	return avg, nil
}

// BucketedDistribution 全部记录的分桶分布，没有记录的桶补零
func (s *ScoreService) BucketedDistribution(ctx context.Context) (Distribution, error) {
	sqlStr, args, err := s.queries.BucketedQuery()
	if err != nil {
		return nil, err
	}
	rows, err := s.query(ctx, "bucketed_distribution", sqlStr, args)
	if err != nil {
		return nil, err
	}
	dist, err := s.buckets.ParseBucketedResults(rows)
	if err != nil {
		return nil, storageError("bucketed_distribution", err)
	}
	return dist, nil
}

// IsComplete 记录是否已完整（得分为100）
func (s *ScoreService) IsComplete(ctx context.Context, id int64) (bool, error) {
	score, err := s.ScoreFor(ctx, id)
	if err != nil {
		return false, err
	}
	return score == MaxScore, nil
}

// MissingFieldsFor 基于调用方已取得的记录属性，按策略顺序返回仍缺失的完整字段
func (s *ScoreService) MissingFieldsFor(id int64, record Record) []string {
	missing := make([]string, 0)
	for _, name := range s.policy.FullFields() {
		spec, _ := s.policy.Spec(name)
		if !fieldPresent(spec, record) {
			missing = append(missing, name)
		}
	}
	slog.Debug("计算缺失字段", "record_id", id, "missing", missing)
	return missing
}

// NeededForCompletion 指定字段是否仍需补全；
// 传入组合字段的任一底层列名时按组合字段整体判定
func (s *ScoreService) NeededForCompletion(field string, record Record) bool {
	if spec, ok := s.policy.Spec(field); ok {
		return !fieldPresent(spec, record)
	}
	for _, name := range s.policy.FullFields() {
		spec, _ := s.policy.Spec(name)
		if spec.Kind != Composite {
			continue
		}
		for _, col := range spec.Columns {
			if col == field {
				return !fieldPresent(spec, record)
			}
		}
	}
	return false
}

// InadequateRecords 资料不足记录分页列表及总数
func (s *ScoreService) InadequateRecords(ctx context.Context, page, size int) ([]RecordSummary, int64, error) {
	countSQL, countArgs, err := s.queries.InadequateCountQuery()
	if err != nil {
		return nil, 0, err
	}
	listSQL, listArgs, err := s.queries.InadequateQuery(page, size)
	if err != nil {
		return nil, 0, err
	}

	countRows, err := s.query(ctx, "inadequate_count", countSQL, countArgs)
	if err != nil {
		return nil, 0, err
	}
	if len(countRows) != 1 {
		return nil, 0, storageError("inadequate_count", fmt.Errorf("计数查询应返回1行，实际返回%d行", len(countRows)))
	}
	total, err := cast.ToInt64E(normalizeValue(countRows[0][totalAlias]))
	if err != nil {
		return nil, 0, storageError("inadequate_count", err)
	}

	rows, err := s.query(ctx, "inadequate_records", listSQL, listArgs)
	if err != nil {
		return nil, 0, err
	}
	records := make([]RecordSummary, 0, len(rows))
	for _, row := range rows {
		id, err := cast.ToInt64E(normalizeValue(row["id"]))
		if err != nil {
			return nil, 0, storageError("inadequate_records", fmt.Errorf("记录ID无法解析: %w", err))
		}
		records = append(records, RecordSummary{
			ID:        id,
			Email:     cast.ToString(normalizeValue(row["email"])),
			GivenName: cast.ToString(normalizeValue(row["given_name"])),
			Surname:   cast.ToString(normalizeValue(row["surname"])),
		})
	}
	return records, total, nil
}

// FieldCoverage 字段覆盖率，未指定字段时统计全部完整字段
func (s *ScoreService) FieldCoverage(ctx context.Context, fields ...string) (*Coverage, error) {
	if len(fields) == 0 {
		fields = s.policy.FullFields()
	}
	for _, name := range fields {
		if _, ok := s.policy.Registry().Lookup(name); !ok {
			return nil, &ValidationError{Field: "fields", Reason: "未注册的字段: " + name}
		}
	}
	sqlStr, args, err := s.queries.CoverageQuery(fields)
	if err != nil {
		return nil, err
	}
	rows, err := s.query(ctx, "field_coverage", sqlStr, args)
	if err != nil {
		return nil, err
	}
	if len(rows) != 1 {
		return nil, storageError("field_coverage", fmt.Errorf("覆盖率查询应返回1行，实际返回%d行", len(rows)))
	}

	total, err := cast.ToInt64E(normalizeValue(rows[0][totalAlias]))
	if err != nil {
		return nil, storageError("field_coverage", err)
	}
	coverage := &Coverage{Total: total, Fields: make(map[string]float64, len(fields))}
	for _, name := range fields {
		d, ok, err := parseDecimal(rows[0][coverPrefix+name])
		if err != nil {
			return nil, storageError("field_coverage", err)
		}
		if !ok {
			coverage.Fields[name] = 0
			continue
		}
		ratio, err := roundAverage(d)
		if err != nil {
			return nil, storageError("field_coverage", err)
		}
		coverage.Fields[name] = ratio
	}
	return coverage, nil
}

// IsNotFound 判断是否为记录不存在
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
