/*
 * @module service/completion/dialect
 * @description 存储方言：文本转换、浮点类型、舍入、占位符、关联存在性判断的差异化写法
 * @architecture 策略模式 - 聚合语句构建的方言适配
 * @stateFlow 存储适配器选择方言 -> 查询构建器按方言拼接表达式
 * @rules 只依赖 CAST/length/AVG/GROUP BY/CASE 等通用能力，差异集中在此文件
 * @dependencies github.com/Masterminds/squirrel
 * @refs query_builder.go, field_registry.go
 */

package completion

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// Dialect 存储方言
type Dialect struct {
	Name string

	placeholder    sq.PlaceholderFormat
	castText       string // 包含一个 %s
	castFloat      string
	avgFunc        string
	roundAverage   string // 保留两位小数
	roundScore     string // 舍入为整数
	uncorrelatedIn bool   // 关联子查询支持有限的存储使用 IN 子查询
}

var (
	// Postgres PostgreSQL方言
	Postgres = Dialect{
		Name:         "postgres",
		placeholder:  sq.Question,
		castText:     "CAST(%s AS text)",
		castFloat:    "CAST(%s AS float)",
		avgFunc:      "AVG",
		roundAverage: "CAST(%s AS numeric(5,2))",
		roundScore:   "ROUND(CAST(%s AS numeric))",
	}

	// SQLite SQLite方言，主要用于本地运行和测试
	SQLite = Dialect{
		Name:         "sqlite",
		placeholder:  sq.Question,
		castText:     "CAST(%s AS TEXT)",
		castFloat:    "CAST(%s AS REAL)",
		avgFunc:      "AVG",
		roundAverage: "ROUND(%s, 2)",
		roundScore:   "ROUND(%s)",
	}

	// ClickHouse ClickHouse方言，avg 对空集返回 nan，因此使用 avgOrNull
	ClickHouse = Dialect{
		Name:           "clickhouse",
		placeholder:    sq.Question,
		castText:       "toString(%s)",
		castFloat:      "toFloat64(%s)",
		avgFunc:        "avgOrNull",
		roundAverage:   "round(toDecimal64(%s, 4), 2)",
		roundScore:     "round(toDecimal64(%s, 4))",
		uncorrelatedIn: true,
	}
)

// DialectByName 根据名称获取方言
func DialectByName(name string) (Dialect, error) {
	switch name {
	case "postgres", "postgresql", "pq":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "clickhouse":
		return ClickHouse, nil
	default:
		return Dialect{}, &ValidationError{Field: "dialect", Reason: fmt.Sprintf("不支持的存储方言: %s", name)}
	}
}

// WithPlaceholder 返回使用指定占位符格式的方言副本
// gorm 会自行改写 ? 占位符，直接使用 database/sql 的 PostgreSQL 连接需要 sq.Dollar
func (d Dialect) WithPlaceholder(p sq.PlaceholderFormat) Dialect {
	d.placeholder = p
	return d
}

// Placeholder 占位符格式
func (d Dialect) Placeholder() sq.PlaceholderFormat {
	if d.placeholder == nil {
		return sq.Question
	}
	return d.placeholder
}

// present 文本形式非空即视为存在，NULL 与空字符串同样视为缺失
func (d Dialect) present(column string) string {
	return fmt.Sprintf("length(%s) > 0", fmt.Sprintf(d.castText, column))
}

// absent 缺失判定使用 COALESCE，避免 NULL 参与取反后整行被过滤掉
func (d Dialect) absent(column string) string {
	return fmt.Sprintf("COALESCE(%s, '') = ''", fmt.Sprintf(d.castText, column))
}

func (d Dialect) toFloat(expr string) string {
	return fmt.Sprintf(d.castFloat, expr)
}

func (d Dialect) avg(expr string) string {
	return fmt.Sprintf("%s(%s)", d.avgFunc, expr)
}

func (d Dialect) round2(expr string) string {
	return fmt.Sprintf(d.roundAverage, expr)
}

func (d Dialect) roundInt(expr string) string {
	return fmt.Sprintf(d.roundScore, expr)
}

// joinExists 关联表中存在以当前记录ID为外键的行
func (d Dialect) joinExists(table, relatedTable, foreignKey string) string {
	if d.uncorrelatedIn {
		return fmt.Sprintf("%s.id IN (SELECT %s FROM %s)", table, foreignKey, relatedTable)
	}
	return fmt.Sprintf("EXISTS (SELECT 1 FROM %s r WHERE r.%s = %s.id)", relatedTable, foreignKey, table)
}
