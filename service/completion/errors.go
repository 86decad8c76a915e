/*
 * @module service/completion/errors
 * @description 完整度评分错误分类：配置错误、记录不存在、存储错误、参数校验错误
 * @architecture 分层架构 - 领域服务层
 * @stateFlow 错误产生 -> 包装分类 -> 原样返回调用方
 * @rules 存储错误一律向上返回，不在核心内重试或替换为默认值
 * @dependencies errors, fmt
 * @refs score_service.go, policy.go
 */

package completion

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound 请求评分的记录在存储中不存在
var ErrNotFound = errors.New("记录不存在")

// ConfigurationError 策略或分桶定义不合法，只在启动/构造阶段产生
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "完整度配置错误: " + e.Reason
}

func configErrorf(format string, args ...interface{}) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// ValidationError 配置选项或边界参数格式错误
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "参数校验失败: " + e.Reason
	}
	return fmt.Sprintf("参数校验失败: %s %s", e.Field, e.Reason)
}

// StorageError 存储连接、查询执行或结果结构异常
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("存储操作失败[%s]: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Timeout 判断是否由上下文超时或取消导致
func (e *StorageError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded) || errors.Is(e.Err, context.Canceled)
}

func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
