/*
 * @module service/completion/query_builder
 * @description 聚合查询构建器，将完整度策略翻译为存储端一次执行的聚合语句
 * @architecture 构建器模式 - 策略驱动生成下推聚合SQL
 * @stateFlow 策略 -> 单记录评分表达式 -> 平均值/分桶/列表/覆盖率语句 -> (sql, args)
 * @rules 评分、求平均、分桶全部在存储端完成，应用侧内存与表大小无关；
 *        标识符只来自注册表，记录ID只作为绑定参数传入
 * @dependencies github.com/Masterminds/squirrel
 * @refs policy.go, buckets.go, dialect.go
 */

package completion

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

const (
	averageAlias = "average_completion_score"
	scoreAlias   = "completion_score"
	totalAlias   = "total"
	coverPrefix  = "cover_"

	defaultOrderKey = "email"
)

// summaryColumns 资料不足列表返回的列，须在注册表中有对应字段
var summaryColumns = []string{"email", "given_name", "surname"}

// 早期实现曾把全部记录加载到内存，逐条计算分数后再求平均、再逐条落桶。
// 该做法的内存与耗时都随表大小线性增长，已弃用，这里只保留存储端下推聚合一条路径。

// QueryBuilder 聚合查询构建器，构造后只读
type QueryBuilder struct {
	policy    *CompletionPolicy
	buckets   *BucketDefinition
	dialect   Dialect
	builder   sq.StatementBuilderType
	scoreExpr string
	orderKey  string
}

// NewQueryBuilder 创建聚合查询构建器
func NewQueryBuilder(policy *CompletionPolicy, buckets *BucketDefinition, dialect Dialect) (*QueryBuilder, error) {
	if policy == nil {
		return nil, configErrorf("完整度策略为空")
	}
	if buckets == nil {
		return nil, configErrorf("分桶定义为空")
	}

	qb := &QueryBuilder{
		policy:   policy,
		buckets:  buckets,
		dialect:  dialect,
		builder:  sq.StatementBuilder.PlaceholderFormat(dialect.Placeholder()),
		orderKey: defaultOrderKey,
	}

	registry := policy.Registry()
	for _, col := range append([]string{qb.orderKey}, summaryColumns...) {
		if !registry.HasColumn(col) {
			return nil, configErrorf("资料不足列表所需的列 %s 未在注册表 %s 中注册", col, registry.Table())
		}
	}

	expr, err := qb.buildScoreExpression()
	if err != nil {
		return nil, err
	}
	qb.scoreExpr = expr
	return qb, nil
}

// Dialect 当前方言
func (qb *QueryBuilder) Dialect() Dialect {
	return qb.dialect
}

func (qb *QueryBuilder) table() string {
	return qb.policy.Table()
}

func (qb *QueryBuilder) idColumn() string {
	return qb.table() + ".id"
}

// buildScoreExpression 每个完整字段生成一个 0/1 存在项，求和后按浮点除以字段数再乘 100
// 先乘 100 再除，避免字段数不能整除 100 时整数截断导致系统性低估
func (qb *QueryBuilder) buildScoreExpression() (string, error) {
	full := qb.policy.FullFields()
	terms := make([]string, 0, len(full))
	for _, name := range full {
		term, err := qb.policy.Registry().PresenceExpr(name, qb.dialect)
		if err != nil {
			return "", err
		}
		terms = append(terms, "("+term+")")
	}
	sum := "(" + strings.Join(terms, " + ") + ")"
	return fmt.Sprintf("(%s * 100 / %d)", qb.dialect.toFloat(sum), len(full)), nil
}

// ScoreExpression 单记录评分表达式，取值范围 [0,100]
func (qb *QueryBuilder) ScoreExpression() string {
	return qb.scoreExpr
}

// AverageQuery 平均分语句；ids 为空时统计全表，非空时仅统计指定记录
// 传入单个ID即得到该记录自身的分数，单记录评分复用这一条路径
func (qb *QueryBuilder) AverageQuery(ids []int64) (string, []interface{}, error) {
	avg := qb.dialect.round2(qb.dialect.avg(qb.scoreExpr))
	query := qb.builder.
		Select().
		Column(sq.Alias(sq.Expr(avg), averageAlias)).
		From(qb.table())
	if len(ids) > 0 {
		query = query.Where(sq.Eq{qb.idColumn(): ids})
	}
	return query.ToSql()
}

// BucketedQuery 两阶段分桶语句：内层按取整后的分数分组计数，
// 外层把每个不同分数映射到所属桶并按桶求和。
// 评分表达式每条记录只求值一次，外层开销与不同分数值的个数成正比，而不是桶数乘以记录数
func (qb *QueryBuilder) BucketedQuery() (string, []interface{}, error) {
	scored := qb.builder.
		Select().
		Column(sq.Alias(sq.Expr(qb.dialect.roundInt(qb.scoreExpr)), scoreAlias)).
		From(qb.table())

	inner := qb.builder.
		Select(scoreAlias).
		Column(sq.Alias(sq.Expr("COUNT(*)"), countColumn)).
		FromSelect(scored, "scored").
		GroupBy(scoreAlias)

	caseExpr := qb.bucketCaseExpression(scoreAlias)
	return qb.builder.
		Select().
		Column(sq.Alias(sq.Expr(caseExpr), bucketColumn)).
		Column(sq.Alias(sq.Expr(fmt.Sprintf("SUM(%s)", countColumn)), countColumn)).
		FromSelect(inner, "scores").
		GroupBy(caseExpr).
		ToSql()
}

func (qb *QueryBuilder) bucketCaseExpression(column string) string {
	var b strings.Builder
	b.WriteString("CASE")
	for _, bucket := range qb.buckets.Buckets() {
		fmt.Fprintf(&b, " WHEN %s BETWEEN %d AND %d THEN '%s'", column, bucket.Lo, bucket.Hi, bucket.Label())
	}
	b.WriteString(" END")
	return b.String()
}

// InadequateQuery 资料不足记录分页语句，按邮箱再按ID排序保证分页稳定
func (qb *QueryBuilder) InadequateQuery(page, size int) (string, []interface{}, error) {
	if page <= 0 || size <= 0 {
		return "", nil, &ValidationError{Field: "page/size", Reason: "必须为正整数"}
	}
	filter, err := qb.policy.InadequateFilter(qb.dialect)
	if err != nil {
		return "", nil, err
	}
	t := qb.table()
	columns := []string{qb.idColumn()}
	for _, col := range summaryColumns {
		columns = append(columns, t+"."+col)
	}
	return qb.builder.
		Select(columns...).
		From(t).
		Where(filter).
		OrderBy(t+"."+qb.orderKey, qb.idColumn()).
		Limit(uint64(size)).
		Offset(uint64((page - 1) * size)).
		ToSql()
}

// InadequateCountQuery 资料不足记录总数语句
func (qb *QueryBuilder) InadequateCountQuery() (string, []interface{}, error) {
	filter, err := qb.policy.InadequateFilter(qb.dialect)
	if err != nil {
		return "", nil, err
	}
	return qb.builder.
		Select().
		Column(sq.Alias(sq.Expr("COUNT(*)"), totalAlias)).
		From(qb.table()).
		Where(filter).
		ToSql()
}

// CoverageQuery 字段覆盖率语句：一次扫描返回记录总数与每个字段存在的记录占比
// 占比不在存储中舍入，由调用方统一按 half-up 保留两位小数
// 字段只需已注册，不要求属于完整字段集合
func (qb *QueryBuilder) CoverageQuery(fields []string) (string, []interface{}, error) {
	if len(fields) == 0 {
		return "", nil, &ValidationError{Field: "fields", Reason: "至少需要一个字段"}
	}
	query := qb.builder.
		Select().
		Column(sq.Alias(sq.Expr("COUNT(*)"), totalAlias)).
		From(qb.table())
	for _, name := range fields {
		presence, err := qb.policy.Registry().PresenceExpr(name, qb.dialect)
		if err != nil {
			return "", nil, err
		}
		ratio := qb.dialect.avg(qb.dialect.toFloat(presence))
		query = query.Column(sq.Alias(sq.Expr(ratio), coverPrefix+name))
	}
	return query.ToSql()
}
