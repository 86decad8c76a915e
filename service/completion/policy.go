/*
 * @module service/completion/policy
 * @description 完整度策略：必填字段集合（AdequateFields）与完整字段集合（FullFields）
 * @architecture 分层架构 - 领域服务层
 * @stateFlow 启动时构造并校验 -> 只读共享 -> 构建评分表达式与"资料不足"过滤条件
 * @rules AdequateFields ⊆ FullFields，均非空、无重复且全部已注册；所有字段等权
 * @dependencies github.com/Masterminds/squirrel
 * @refs field_registry.go, query_builder.go
 */

package completion

import (
	"slices"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

var (
	// DefaultAdequateFields 默认必填字段
	DefaultAdequateFields = []string{
		"building",
		"city",
		"location_in_building",
		"primary_phone_number",
	}

	// DefaultCompletionFields 默认完整字段，必填字段在前
	DefaultCompletionFields = append(append([]string(nil), DefaultAdequateFields...),
		"profile_photo",
		"email",
		"given_name",
		"surname",
		"groups",
	)
)

// CompletionPolicy 完整度策略
type CompletionPolicy struct {
	registry *Registry
	adequate []string
	full     []string
}

// NewCompletionPolicy 创建并校验完整度策略
func NewCompletionPolicy(registry *Registry, adequate, full []string) (*CompletionPolicy, error) {
	if registry == nil {
		return nil, configErrorf("字段注册表为空")
	}
	if len(full) == 0 {
		return nil, configErrorf("完整字段集合不能为空")
	}
	if len(adequate) == 0 {
		return nil, configErrorf("必填字段集合不能为空")
	}

	fullSet := make(map[string]bool, len(full))
	for _, name := range full {
		if _, ok := registry.Lookup(name); !ok {
			return nil, configErrorf("完整字段引用了未注册的字段: %s", name)
		}
		if fullSet[name] {
			return nil, configErrorf("完整字段重复: %s", name)
		}
		fullSet[name] = true
	}

	seen := make(map[string]bool, len(adequate))
	for _, name := range adequate {
		if _, ok := registry.Lookup(name); !ok {
			return nil, configErrorf("必填字段引用了未注册的字段: %s", name)
		}
		if seen[name] {
			return nil, configErrorf("必填字段重复: %s", name)
		}
		if !fullSet[name] {
			return nil, configErrorf("必填字段 %s 不在完整字段集合中", name)
		}
		seen[name] = true
	}

	return &CompletionPolicy{
		registry: registry,
		adequate: append([]string(nil), adequate...),
		full:     append([]string(nil), full...),
	}, nil
}

// DefaultPolicy 人员目录默认策略
func DefaultPolicy() *CompletionPolicy {
	p, err := NewCompletionPolicy(DefaultRegistry(), DefaultAdequateFields, DefaultCompletionFields)
	if err != nil {
		panic(err)
	}
	return p
}

// Registry 策略所依赖的字段注册表
func (p *CompletionPolicy) Registry() *Registry {
	return p.registry
}

// Table 记录表名
func (p *CompletionPolicy) Table() string {
	return p.registry.Table()
}

// AdequateFields 必填字段
func (p *CompletionPolicy) AdequateFields() []string {
	return append([]string(nil), p.adequate...)
}

// FullFields 完整字段，即评分分母
func (p *CompletionPolicy) FullFields() []string {
	return append([]string(nil), p.full...)
}

// Spec 获取策略内字段定义
func (p *CompletionPolicy) Spec(name string) (FieldSpec, bool) {
	if !slices.Contains(p.full, name) {
		return FieldSpec{}, false
	}
	return p.registry.Lookup(name)
}

// InadequateFilter 资料不足过滤条件：任一必填字段缺失，或任一组合字段（头像）缺失
// 单次扫描即可求值，不需要在应用内逐条判断
func (p *CompletionPolicy) InadequateFilter(d Dialect) (sq.Sqlizer, error) {
	conds := make([]string, 0, len(p.adequate)+1)
	for _, name := range p.adequate {
		cond, err := p.registry.AbsenceCondition(name, d)
		if err != nil {
			return nil, err
		}
		conds = append(conds, cond)
	}
	for _, name := range p.full {
		spec, _ := p.registry.Lookup(name)
		if spec.Kind != Composite || slices.Contains(p.adequate, name) {
			continue
		}
		cond, err := p.registry.AbsenceCondition(name, d)
		if err != nil {
			return nil, err
		}
		conds = append(conds, cond)
	}
	return sq.Expr("(" + strings.Join(conds, " OR ") + ")"), nil
}
