package controllers

import (
	"errors"
	"net/http"

	"completion-service/service/completion"

	"github.com/go-chi/render"
)

// APIResponse 统一API响应结构
type APIResponse struct {
	Status int         `json:"status" example:"0"`
	Msg    string      `json:"msg" example:"操作成功"`
	Data   interface{} `json:"data,omitempty"`
}

// PaginatedResponse 分页响应结构
type PaginatedResponse struct {
	Status int         `json:"status" example:"0"`
	Msg    string      `json:"msg" example:"操作成功"`
	Data   interface{} `json:"data"`
	Total  int64       `json:"total" example:"100"`
	Page   int         `json:"page" example:"1"`
	Size   int         `json:"size" example:"10"`
}

// SuccessResponse 成功响应
func SuccessResponse(msg string, data interface{}) *APIResponse {
	return &APIResponse{Status: 0, Msg: msg, Data: data}
}

// ErrorResponse 错误响应
func ErrorResponse(status int, msg string, err error) *APIResponse {
	resp := &APIResponse{Status: status, Msg: msg}
	if err != nil && err.Error() != msg {
		resp.Data = map[string]string{"error": err.Error()}
	}
	return resp
}

// BadRequestResponse 参数错误响应
func BadRequestResponse(msg string, err error) *APIResponse {
	return ErrorResponse(http.StatusBadRequest, msg, err)
}

// NotFoundResponse 资源不存在响应
func NotFoundResponse(msg string, err error) *APIResponse {
	return ErrorResponse(http.StatusNotFound, msg, err)
}

// InternalErrorResponse 内部错误响应
func InternalErrorResponse(msg string, err error) *APIResponse {
	return ErrorResponse(http.StatusInternalServerError, msg, err)
}

// renderError 按错误类型设置HTTP状态码并输出统一响应
func renderError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *completion.ValidationError
	var storageErr *completion.StorageError
	var configErr *completion.ConfigurationError

	var resp *APIResponse
	switch {
	case errors.As(err, &validationErr):
		resp = BadRequestResponse(validationErr.Error(), nil)
	case errors.Is(err, completion.ErrNotFound):
		resp = NotFoundResponse(err.Error(), nil)
	case errors.As(err, &storageErr) && storageErr.Timeout():
		resp = ErrorResponse(http.StatusServiceUnavailable, "存储查询超时", err)
	case errors.As(err, &configErr):
		resp = InternalErrorResponse("完整度配置错误", err)
	default:
		resp = InternalErrorResponse("存储查询失败", err)
	}
	render.Status(r, resp.Status)
	render.JSON(w, r, resp)
}
