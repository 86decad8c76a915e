/*
 * @module service/completion/field_registry
 * @description 字段注册表，静态描述参与完整度计算的字段及其"存在"判定方式
 * @architecture 分层架构 - 领域服务层（叶子组件，无依赖）
 * @stateFlow 进程启动注册 -> 只读共享 -> 查询构建器解析存在性表达式
 * @rules 字段名与列名只能来自注册表并在注册时校验为合法标识符，杜绝SQL注入
 * @dependencies regexp, fmt, strings
 * @refs policy.go, query_builder.go
 */

package completion

import (
	"fmt"
	"regexp"
	"strings"
)

// FieldKind 字段存在性判定类型
type FieldKind int

const (
	// Scalar 普通列，文本形式非空即存在
	Scalar FieldKind = iota
	// JoinExistence 关联表中存在以记录ID为外键的行即存在（如小组成员关系）
	JoinExistence
	// Composite 多个底层列任一非空即存在（如新旧两种头像存储）
	Composite
)

func (k FieldKind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case JoinExistence:
		return "join_existence"
	case Composite:
		return "composite"
	default:
		return fmt.Sprintf("FieldKind(%d)", int(k))
	}
}

// FieldSpec 字段定义
type FieldSpec struct {
	Name         string
	Kind         FieldKind
	Columns      []string // Scalar 为单列；Composite 按优先级排列，新表示在前、旧表示兜底
	RelatedTable string   // JoinExistence 关联表
	ForeignKey   string   // JoinExistence 关联表中指向记录ID的列
}

// ScalarField 创建普通字段，列名与字段名相同
func ScalarField(name string) FieldSpec {
	return FieldSpec{Name: name, Kind: Scalar, Columns: []string{name}}
}

// JoinField 创建关联存在性字段
func JoinField(name, relatedTable, foreignKey string) FieldSpec {
	return FieldSpec{Name: name, Kind: JoinExistence, RelatedTable: relatedTable, ForeignKey: foreignKey}
}

// CompositeField 创建组合字段，columns 按判定优先级排列
func CompositeField(name string, columns ...string) FieldSpec {
	return FieldSpec{Name: name, Kind: Composite, Columns: columns}
}

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

func validIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

// Registry 字段注册表，构造后只读，可在并发调用间共享
type Registry struct {
	table  string
	fields map[string]FieldSpec
	order  []string
}

// NewRegistry 创建字段注册表
func NewRegistry(table string, specs ...FieldSpec) (*Registry, error) {
	if !validIdentifier(table) {
		return nil, configErrorf("非法的记录表名: %q", table)
	}
	if len(specs) == 0 {
		return nil, configErrorf("字段注册表不能为空")
	}

	r := &Registry{
		table:  table,
		fields: make(map[string]FieldSpec, len(specs)),
		order:  make([]string, 0, len(specs)),
	}
	for _, spec := range specs {
		if err := validateSpec(spec); err != nil {
			return nil, err
		}
		if _, exists := r.fields[spec.Name]; exists {
			return nil, configErrorf("字段重复注册: %s", spec.Name)
		}
		spec.Columns = append([]string(nil), spec.Columns...)
		r.fields[spec.Name] = spec
		r.order = append(r.order, spec.Name)
	}
	return r, nil
}

func validateSpec(spec FieldSpec) error {
	if !validIdentifier(spec.Name) {
		return configErrorf("非法的字段名: %q", spec.Name)
	}
	switch spec.Kind {
	case Scalar:
		if len(spec.Columns) != 1 {
			return configErrorf("普通字段 %s 必须对应且仅对应一列", spec.Name)
		}
	case Composite:
		if len(spec.Columns) < 2 {
			return configErrorf("组合字段 %s 至少需要两列", spec.Name)
		}
	case JoinExistence:
		if !validIdentifier(spec.RelatedTable) || !validIdentifier(spec.ForeignKey) {
			return configErrorf("关联字段 %s 的关联表或外键非法", spec.Name)
		}
		return nil
	default:
		return configErrorf("字段 %s 的类型未知: %s", spec.Name, spec.Kind)
	}
	for _, col := range spec.Columns {
		if !validIdentifier(col) {
			return configErrorf("字段 %s 的列名非法: %q", spec.Name, col)
		}
	}
	return nil
}

// MustRegistry 创建注册表，失败时 panic，仅用于进程启动时的静态注册
func MustRegistry(table string, specs ...FieldSpec) *Registry {
	r, err := NewRegistry(table, specs...)
	if err != nil {
		panic(err)
	}
	return r
}

// DefaultRegistry 人员目录的默认字段注册表
func DefaultRegistry() *Registry {
	return MustRegistry("people",
		ScalarField("building"),
		ScalarField("city"),
		ScalarField("location_in_building"),
		ScalarField("primary_phone_number"),
		ScalarField("email"),
		ScalarField("given_name"),
		ScalarField("surname"),
		ScalarField("description"),
		ScalarField("current_project"),
		JoinField("groups", "memberships", "person_id"),
		CompositeField("profile_photo", "profile_photo_id", "image"),
		CompositeField("additional_info", "description", "current_project"),
	)
}

// Table 记录表名
func (r *Registry) Table() string {
	return r.table
}

// Names 按注册顺序返回全部字段名
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Lookup 查找字段定义
func (r *Registry) Lookup(name string) (FieldSpec, bool) {
	spec, ok := r.fields[name]
	if !ok {
		return FieldSpec{}, false
	}
	spec.Columns = append([]string(nil), spec.Columns...)
	return spec, true
}

// HasColumn 是否有普通字段或组合字段映射到该列
func (r *Registry) HasColumn(col string) bool {
	for _, spec := range r.fields {
		for _, c := range spec.Columns {
			if c == col {
				return true
			}
		}
	}
	return false
}

func (r *Registry) column(col string) string {
	return r.table + "." + col
}

// PresenceCondition 返回字段存在性的布尔表达式（存储端求值）
func (r *Registry) PresenceCondition(name string, d Dialect) (string, error) {
	spec, ok := r.fields[name]
	if !ok {
		return "", configErrorf("字段未注册: %s", name)
	}
	switch spec.Kind {
	case JoinExistence:
		return d.joinExists(r.table, spec.RelatedTable, spec.ForeignKey), nil
	case Composite:
		conds := make([]string, 0, len(spec.Columns))
		for _, col := range spec.Columns {
			conds = append(conds, d.present(r.column(col)))
		}
		return "(" + strings.Join(conds, " OR ") + ")", nil
	default:
		return d.present(r.column(spec.Columns[0])), nil
	}
}

// AbsenceCondition 返回字段缺失的布尔表达式，组合字段需全部列都缺失
func (r *Registry) AbsenceCondition(name string, d Dialect) (string, error) {
	spec, ok := r.fields[name]
	if !ok {
		return "", configErrorf("字段未注册: %s", name)
	}
	switch spec.Kind {
	case JoinExistence:
		return "NOT " + d.joinExists(r.table, spec.RelatedTable, spec.ForeignKey), nil
	case Composite:
		conds := make([]string, 0, len(spec.Columns))
		for _, col := range spec.Columns {
			conds = append(conds, d.absent(r.column(col)))
		}
		return "(" + strings.Join(conds, " AND ") + ")", nil
	default:
		return d.absent(r.column(spec.Columns[0])), nil
	}
}

// PresenceExpr 返回字段存在性的 0/1 数值表达式
// 组合字段按优先级逐列判断：新表示存在即命中，否则回退到旧表示
func (r *Registry) PresenceExpr(name string, d Dialect) (string, error) {
	spec, ok := r.fields[name]
	if !ok {
		return "", configErrorf("字段未注册: %s", name)
	}
	if spec.Kind == Composite {
		expr := "CASE"
		for _, col := range spec.Columns {
			expr += fmt.Sprintf(" WHEN %s THEN 1", d.present(r.column(col)))
		}
		return expr + " ELSE 0 END", nil
	}
	cond, err := r.PresenceCondition(name, d)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CASE WHEN %s THEN 1 ELSE 0 END", cond), nil
}
