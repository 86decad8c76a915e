package completion

import (
	"database/sql/driver"
	"reflect"

	"github.com/spf13/cast"
)

// Record 调用方已取得的记录属性，键为列名或字段名
type Record map[string]interface{}

// valuePresent 应用侧的存在性判定，与存储端"转文本后非空"保持一致：
// nil 与空字符串视为缺失，0、0.0、false 等文本非空的值视为存在
func valuePresent(v interface{}) bool {
	if v == nil {
		return false
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Ptr && rv.IsNil() {
		return false
	}
	if valuer, ok := v.(driver.Valuer); ok {
		inner, err := valuer.Value()
		if err != nil {
			return false
		}
		return valuePresent(inner)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return false
		}
		return valuePresent(rv.Elem().Interface())
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	}

	s, err := cast.ToStringE(v)
	if err != nil {
		return false
	}
	return s != ""
}

// relationPresent 关联字段的应用侧判定：非空集合、正数计数或 true
func relationPresent(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return false
		}
		return relationPresent(rv.Elem().Interface())
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return cast.ToFloat64(v) > 0
	}
	return valuePresent(v)
}

// fieldPresent 按字段类型判定已取得记录中的字段是否存在
func fieldPresent(spec FieldSpec, record Record) bool {
	switch spec.Kind {
	case JoinExistence:
		return relationPresent(record[spec.Name])
	case Composite:
		for _, col := range spec.Columns {
			if valuePresent(record[col]) {
				return true
			}
		}
		// 调用方也可能以逻辑字段名直接给出组合字段的值
		return valuePresent(record[spec.Name])
	default:
		return valuePresent(record[spec.Columns[0]])
	}
}
