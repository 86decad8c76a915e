/*
 * @module service/completion/buckets
 * @description 分桶定义与分桶聚合结果解析
 * @architecture 分层架构 - 领域服务层（叶子组件）
 * @stateFlow 原始聚合行 -> 全部桶置零 -> 按标签叠加计数 -> 分布结果
 * @rules 桶有序、不重叠、并集恰为[0,100]；结果中每个已配置标签都必须出现
 * @dependencies github.com/spf13/cast
 * @refs query_builder.go, score_service.go
 */

package completion

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

const (
	// MinScore 最低分
	MinScore = 0
	// MaxScore 满分
	MaxScore = 100

	bucketColumn = "bucket"
	countColumn  = "record_count"
)

// Bucket 闭区间分数段
type Bucket struct {
	Lo int `json:"lo" yaml:"lo"`
	Hi int `json:"hi" yaml:"hi"`
}

// Label 桶标签，形如 [0,19]
func (b Bucket) Label() string {
	return fmt.Sprintf("[%d,%d]", b.Lo, b.Hi)
}

// Contains 分数是否落在桶内
func (b Bucket) Contains(score int) bool {
	return score >= b.Lo && score <= b.Hi
}

// DefaultBuckets 默认分桶
var DefaultBuckets = []Bucket{
	{Lo: 0, Hi: 19},
	{Lo: 20, Hi: 49},
	{Lo: 50, Hi: 79},
	{Lo: 80, Hi: 100},
}

// BucketDefinition 分桶定义，构造后只读
type BucketDefinition struct {
	buckets []Bucket
}

// NewBucketDefinition 创建分桶定义，要求按顺序首尾相接地覆盖[0,100]
func NewBucketDefinition(buckets ...Bucket) (*BucketDefinition, error) {
	if len(buckets) == 0 {
		return nil, configErrorf("分桶定义不能为空")
	}
	next := MinScore
	for _, b := range buckets {
		if b.Lo > b.Hi {
			return nil, configErrorf("分桶 %s 下界大于上界", b.Label())
		}
		if b.Lo != next {
			return nil, configErrorf("分桶 %s 与前一个分桶不连续或重叠，期望下界为 %d", b.Label(), next)
		}
		next = b.Hi + 1
	}
	if next != MaxScore+1 {
		return nil, configErrorf("分桶未完整覆盖 [%d,%d]", MinScore, MaxScore)
	}
	return &BucketDefinition{buckets: append([]Bucket(nil), buckets...)}, nil
}

// DefaultBucketDefinition 默认分桶定义
func DefaultBucketDefinition() *BucketDefinition {
	def, err := NewBucketDefinition(DefaultBuckets...)
	if err != nil {
		panic(err)
	}
	return def
}

// Buckets 全部分桶
func (d *BucketDefinition) Buckets() []Bucket {
	return append([]Bucket(nil), d.buckets...)
}

// Labels 按顺序返回全部标签
func (d *BucketDefinition) Labels() []string {
	labels := make([]string, 0, len(d.buckets))
	for _, b := range d.buckets {
		labels = append(labels, b.Label())
	}
	return labels
}

// Find 查找分数所在的桶
func (d *BucketDefinition) Find(score int) (Bucket, bool) {
	for _, b := range d.buckets {
		if b.Contains(score) {
			return b, true
		}
	}
	return Bucket{}, false
}

// Distribution 桶标签 -> 记录数
type Distribution map[string]int64

// Total 记录总数
func (d Distribution) Total() int64 {
	var total int64
	for _, c := range d {
		total += c
	}
	return total
}

// ZeroDistribution 每个桶计数为零的分布
func (d *BucketDefinition) ZeroDistribution() Distribution {
	dist := make(Distribution, len(d.buckets))
	for _, b := range d.buckets {
		dist[b.Label()] = 0
	}
	return dist
}

// ParseBucketedResults 先将全部桶置零，再按标签叠加原始聚合行中的计数
// 聚合查询天然会省略没有记录的桶，这里负责把它们补回来
func (d *BucketDefinition) ParseBucketedResults(rows []map[string]interface{}) (Distribution, error) {
	dist := d.ZeroDistribution()
	for i, row := range rows {
		label, err := cast.ToStringE(normalizeValue(row[bucketColumn]))
		if err != nil || label == "" {
			return nil, fmt.Errorf("第 %d 行缺少分桶标签: %v", i, row[bucketColumn])
		}
		label = strings.TrimSpace(label)
		if _, ok := dist[label]; !ok {
			return nil, fmt.Errorf("第 %d 行的分桶标签未配置: %s", i, label)
		}
		count, err := cast.ToInt64E(normalizeValue(row[countColumn]))
		if err != nil {
			return nil, fmt.Errorf("第 %d 行的计数无法解析: %w", i, err)
		}
		if count < 0 {
			return nil, fmt.Errorf("第 %d 行的计数为负数: %d", i, count)
		}
		dist[label] += count
	}
	return dist, nil
}

// normalizeValue 驱动可能以 []byte 或 driver.Valuer 返回文本和数值
func normalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case driver.Valuer:
		inner, err := val.Value()
		if err != nil {
			return v
		}
		if b, ok := inner.([]byte); ok {
			return string(b)
		}
		return inner
	}
	return v
}
