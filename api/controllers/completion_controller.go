/*
 * @module api/controllers/completion_controller
 * @description 资料完整度API控制器：单记录评分、缺失字段、平均分、分桶分布、资料不足列表、字段覆盖率、策略查询
 * @architecture MVC架构 - 控制器层
 * @stateFlow HTTP请求 -> 参数解析校验 -> 评分服务 -> 统一响应
 * @rules 边界参数在这里校验并返回400；错误按类型映射为400/404/500/503
 * @dependencies completion-service/service/completion, github.com/go-chi/render
 * @refs api/routes.go
 */

package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"completion-service/service/completion"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

const (
	defaultPage = 1
	defaultSize = 20
	maxPageSize = 200
)

// CompletionController 资料完整度控制器
type CompletionController struct {
	scores *completion.ScoreService
}

// NewCompletionController 创建资料完整度控制器实例
func NewCompletionController(scores *completion.ScoreService) *CompletionController {
	return &CompletionController{scores: scores}
}

// ScoreResponse 单记录评分响应
type ScoreResponse struct {
	ID         int64 `json:"id" example:"1"`
	Score      int   `json:"score" example:"80"`
	IsComplete bool  `json:"is_complete" example:"false"`
}

// MissingFieldsResponse 缺失字段响应，Needed 仅在请求指定 field 时返回
type MissingFieldsResponse struct {
	ID            int64             `json:"id" example:"1"`
	MissingFields []string          `json:"missing_fields"`
	Labels        map[string]string `json:"labels"`
	Needed        map[string]bool   `json:"needed,omitempty"`
}

// AverageResponse 平均分响应
type AverageResponse struct {
	AverageScore float64 `json:"average_score" example:"66.67"`
	Filtered     bool    `json:"filtered" example:"false"`
}

// DistributionResponse 分桶分布响应
type DistributionResponse struct {
	Labels       []string                `json:"labels"`
	Distribution completion.Distribution `json:"distribution"`
	Total        int64                   `json:"total" example:"120"`
}

// PolicyResponse 策略响应
type PolicyResponse struct {
	Table          string              `json:"table" example:"people"`
	AdequateFields []string            `json:"adequate_fields"`
	FullFields     []string            `json:"full_fields"`
	Buckets        []completion.Bucket `json:"buckets"`
	Labels         map[string]string   `json:"labels"`
}

// GetScore 获取单条记录的完整度评分
// @Summary 获取记录完整度评分
// @Description 根据记录ID返回 [0,100] 的完整度评分及是否已完整
// @Tags 资料完整度
// @Produce json
// @Param id path int true "记录ID"
// @Success 200 {object} APIResponse{data=ScoreResponse}
// @Failure 400 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Failure 500 {object} APIResponse
// @Router /completion/records/{id}/score [get]
func (c *CompletionController) GetScore(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, err)
		return
	}

	score, err := c.scores.ScoreFor(r.Context(), id)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, SuccessResponse("查询成功", ScoreResponse{
		ID:         id,
		Score:      score,
		IsComplete: score == completion.MaxScore,
	}))
}

// GetMissingFields 根据已取得的记录属性计算缺失的完整字段
// @Summary 计算缺失字段
// @Description 请求体为记录属性（列名 -> 值），关联字段以字段名给出成员数或列表
// @Tags 资料完整度
// @Accept json
// @Produce json
// @Param id path int true "记录ID"
// @Param record body map[string]interface{} true "记录属性"
// @Param field query string false "逗号分隔的字段名或组合字段的底层列名，返回各自是否仍需补全"
// @Success 200 {object} APIResponse{data=MissingFieldsResponse}
// @Failure 400 {object} APIResponse
// @Router /completion/records/{id}/missing-fields [post]
func (c *CompletionController) GetMissingFields(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, err)
		return
	}

	var record completion.Record
	if err := render.DecodeJSON(r.Body, &record); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}

	missing := c.scores.MissingFieldsFor(id, record)
	response := MissingFieldsResponse{
		ID:            id,
		MissingFields: missing,
		Labels:        completion.FieldLabels(missing),
	}
	if fields := splitParam(r.URL.Query().Get("field")); len(fields) > 0 {
		response.Needed = make(map[string]bool, len(fields))
		for _, field := range fields {
			response.Needed[field] = c.scores.NeededForCompletion(field, record)
		}
	}
	render.JSON(w, r, SuccessResponse("查询成功", response))
}

// GetAverage 获取平均完整度
// @Summary 获取平均完整度
// @Description 不传 ids 或传空时统计全部记录，保留两位小数
// @Tags 资料完整度
// @Produce json
// @Param ids query string false "逗号分隔的记录ID"
// @Success 200 {object} APIResponse{data=AverageResponse}
// @Failure 400 {object} APIResponse
// @Failure 500 {object} APIResponse
// @Router /completion/average [get]
func (c *CompletionController) GetAverage(w http.ResponseWriter, r *http.Request) {
	ids, err := parseIDList(r.URL.Query().Get("ids"))
	if err != nil {
		renderError(w, r, err)
		return
	}

	avg, err := c.scores.AverageScore(r.Context(), ids)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, SuccessResponse("查询成功", AverageResponse{
		AverageScore: avg,
		Filtered:     len(ids) > 0,
	}))
}

// GetDistribution 获取完整度分桶分布
// @Summary 获取完整度分布
// @Description 按配置的分数段统计记录数，没有记录的分数段返回0
// @Tags 资料完整度
// @Produce json
// @Success 200 {object} APIResponse{data=DistributionResponse}
// @Failure 500 {object} APIResponse
// @Router /completion/distribution [get]
func (c *CompletionController) GetDistribution(w http.ResponseWriter, r *http.Request) {
	dist, err := c.scores.BucketedDistribution(r.Context())
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, SuccessResponse("查询成功", DistributionResponse{
		Labels:       c.scores.Buckets().Labels(),
		Distribution: dist,
		Total:        dist.Total(),
	}))
}

// GetInadequate 获取资料不足的记录列表
// @Summary 资料不足记录列表
// @Description 任一必填字段缺失的记录，按邮箱排序分页返回
// @Tags 资料完整度
// @Produce json
// @Param page query int false "页码" default(1)
// @Param size query int false "每页数量" default(20)
// @Success 200 {object} PaginatedResponse{data=[]completion.RecordSummary}
// @Failure 400 {object} APIResponse
// @Failure 500 {object} APIResponse
// @Router /completion/inadequate [get]
func (c *CompletionController) GetInadequate(w http.ResponseWriter, r *http.Request) {
	page, err := parsePositiveInt(r.URL.Query().Get("page"), "page", defaultPage)
	if err != nil {
		renderError(w, r, err)
		return
	}
	size, err := parsePositiveInt(r.URL.Query().Get("size"), "size", defaultSize)
	if err != nil {
		renderError(w, r, err)
		return
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	records, total, err := c.scores.InadequateRecords(r.Context(), page, size)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, &PaginatedResponse{
		Status: 0,
		Msg:    "查询成功",
		Data:   records,
		Total:  total,
		Page:   page,
		Size:   size,
	})
}

// GetCoverage 获取字段覆盖率
// @Summary 字段覆盖率
// @Description 每个字段有值的记录占比（[0,1]，两位小数），不传 fields 时统计全部完整字段
// @Tags 资料完整度
// @Produce json
// @Param fields query string false "逗号分隔的字段名"
// @Success 200 {object} APIResponse{data=completion.Coverage}
// @Failure 400 {object} APIResponse
// @Failure 500 {object} APIResponse
// @Router /completion/coverage [get]
func (c *CompletionController) GetCoverage(w http.ResponseWriter, r *http.Request) {
	fields := splitParam(r.URL.Query().Get("fields"))

	coverage, err := c.scores.FieldCoverage(r.Context(), fields...)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, SuccessResponse("查询成功", coverage))
}

// GetPolicy 获取当前完整度策略
// @Summary 完整度策略
// @Description 返回必填字段、完整字段、分桶定义及字段展示名称
// @Tags 资料完整度
// @Produce json
// @Success 200 {object} APIResponse{data=PolicyResponse}
// @Router /completion/policy [get]
func (c *CompletionController) GetPolicy(w http.ResponseWriter, r *http.Request) {
	policy := c.scores.Policy()
	full := policy.FullFields()

	render.JSON(w, r, SuccessResponse("查询成功", PolicyResponse{
		Table:          policy.Table(),
		AdequateFields: policy.AdequateFields(),
		FullFields:     full,
		Buckets:        c.scores.Buckets().Buckets(),
		Labels:         completion.FieldLabels(full),
	}))
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, &completion.ValidationError{Field: "id", Reason: "必须为正整数: " + raw}
	}
	return id, nil
}

func parseIDList(raw string) ([]int64, error) {
	parts := splitParam(raw)
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, &completion.ValidationError{Field: "ids", Reason: "无法解析的记录ID: " + p}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parsePositiveInt(raw, field string, defaultValue int) (int, error) {
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, &completion.ValidationError{Field: field, Reason: "必须为正整数"}
	}
	return n, nil
}

func splitParam(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
