/*
 * @module service/store/store
 * @description 记录存储适配器，为完整度评分服务执行只读聚合语句
 * @architecture 适配器模式 - gorm 与 database/sql 两类实现共享结果行转换
 * @stateFlow 语句 + 参数 -> 连接池取连接 -> 执行 -> 逐行转换为列名映射 -> 释放连接
 * @rules 每次调用只执行一条语句；连接在返回前释放；ctx 取消时中止查询
 * @dependencies gorm.io/gorm, database/sql
 * @refs service/completion/score_service.go
 */

package store

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"time"
)

// rowScanner *sql.Rows 的最小接口
type rowScanner interface {
	Columns() ([]string, error)
	ColumnTypes() ([]*sql.ColumnType, error)
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanRows 将结果集转换为列名映射，typed 为 true 时按驱动声明的列类型接收
func scanRows(rows rowScanner, typed bool) ([]map[string]interface{}, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("读取列信息失败: %w", err)
	}

	var scanTypes []reflect.Type
	if typed {
		types, err := rows.ColumnTypes()
		if err != nil {
			return nil, fmt.Errorf("读取列类型失败: %w", err)
		}
		scanTypes = make([]reflect.Type, len(types))
		for i, ct := range types {
			scanTypes[i] = ct.ScanType()
		}
	}

	result := make([]map[string]interface{}, 0)
	for rows.Next() {
		dest := make([]interface{}, len(columns))
		for i := range dest {
			if scanTypes != nil && scanTypes[i] != nil {
				dest[i] = reflect.New(scanTypes[i]).Interface()
			} else {
				dest[i] = new(interface{})
			}
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("读取结果行失败: %w", err)
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			row[col] = unwrapValue(reflect.ValueOf(dest[i]).Elem())
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历结果集失败: %w", err)
	}
	return result, nil
}

// unwrapValue 解引用指针与接口，[]byte 复制为 string，NULL 返回 nil
func unwrapValue(v reflect.Value) interface{} {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return nil
	}
	if b, ok := v.Interface().([]byte); ok {
		return string(b)
	}
	return v.Interface()
}

// withTimeout 调用方未设置截止时间时追加默认查询超时
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
