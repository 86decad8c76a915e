/*
 * @module api/controllers/completion_controller_test
 * @description 资料完整度控制器单元测试
 * @architecture 测试层
 * @stateFlow 测试准备 -> 请求构建 -> 响应验证
 * @rules 覆盖参数校验、记录不存在、存储失败等错误到状态码的映射
 * @dependencies testing, net/http/httptest, stretchr/testify
 */

package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"completion-service/service/completion"
	"completion-service/service/store"
	"completion-service/testutil"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type controllerFixture struct {
	tdb     *testutil.TestDB
	factory *testutil.TestDataFactory
	router  chi.Router
	helper  *testutil.HTTPTestHelper
}

func newControllerFixture(t *testing.T) *controllerFixture {
	t.Helper()
	tdb := testutil.NewTestDB()
	t.Cleanup(tdb.Close)

	gs, err := store.NewGormStore(tdb.DB, 5*time.Second)
	require.NoError(t, err)
	scores, err := completion.NewScoreService(gs, completion.DefaultPolicy(), completion.DefaultBucketDefinition())
	require.NoError(t, err)

	return &controllerFixture{
		tdb:     tdb,
		factory: testutil.NewTestDataFactory(tdb.DB),
		router:  newCompletionRouter(NewCompletionController(scores)),
		helper:  testutil.NewHTTPTestHelper(),
	}
}

func newCompletionRouter(c *CompletionController) chi.Router {
	r := chi.NewRouter()
	r.Get("/completion/records/{id}/score", c.GetScore)
	r.Post("/completion/records/{id}/missing-fields", c.GetMissingFields)
	r.Get("/completion/average", c.GetAverage)
	r.Get("/completion/distribution", c.GetDistribution)
	r.Get("/completion/inadequate", c.GetInadequate)
	r.Get("/completion/coverage", c.GetCoverage)
	r.Get("/completion/policy", c.GetPolicy)
	return r
}

func (f *controllerFixture) do(t *testing.T, method, url string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	req, err := f.helper.CreateJSONRequest(method, url, body)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestGetScore(t *testing.T) {
	f := newControllerFixture(t)
	person := f.factory.CreateCompletePerson("a@example.com")

	w := f.do(t, http.MethodGet, fmt.Sprintf("/completion/records/%d/score", person.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Status int           `json:"status"`
		Data   ScoreResponse `json:"data"`
	}
	f.helper.DecodeJSON(t, w, &response)
	assert.Equal(t, 0, response.Status)
	assert.Equal(t, person.ID, response.Data.ID)
	assert.Equal(t, 100, response.Data.Score)
	assert.True(t, response.Data.IsComplete)
}

func TestGetScore_Errors(t *testing.T) {
	f := newControllerFixture(t)

	tests := []struct {
		name string
		url  string
		code int
	}{
		{"非数字ID", "/completion/records/abc/score", http.StatusBadRequest},
		{"非正数ID", "/completion/records/0/score", http.StatusBadRequest},
		{"记录不存在", "/completion/records/999/score", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodGet, tt.url, nil)
			assert.Equal(t, tt.code, w.Code)

			var response APIResponse
			f.helper.DecodeJSON(t, w, &response)
			assert.Equal(t, tt.code, response.Status)
			assert.NotEmpty(t, response.Msg)
		})
	}
}

func TestGetMissingFields(t *testing.T) {
	f := newControllerFixture(t)

	w := f.do(t, http.MethodPost, "/completion/records/7/missing-fields", map[string]interface{}{
		"building":             "A座",
		"city":                 "上海",
		"location_in_building": "3F",
		"primary_phone_number": "13800138000",
		"profile_photo_id":     0,
		"email":                "a@example.com",
		"given_name":           "三",
		"groups":               2,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data MissingFieldsResponse `json:"data"`
	}
	f.helper.DecodeJSON(t, w, &response)
	assert.Equal(t, int64(7), response.Data.ID)
	assert.Equal(t, []string{"surname"}, response.Data.MissingFields)
	assert.Equal(t, "Surname", response.Data.Labels["surname"])
}

func TestGetMissingFields_NeededForCompletion(t *testing.T) {
	f := newControllerFixture(t)
	record := map[string]interface{}{
		"email":            "a@example.com",
		"image":            "",
		"profile_photo_id": nil,
		"description":      "",
	}

	w := f.do(t, http.MethodPost, "/completion/records/7/missing-fields?field=email,city,image,description", record)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data MissingFieldsResponse `json:"data"`
	}
	f.helper.DecodeJSON(t, w, &response)
	assert.Equal(t, map[string]bool{
		"email":       false,
		"city":        true,
		"image":       true,
		"description": false,
	}, response.Data.Needed)
	assert.Contains(t, response.Data.MissingFields, "city")

	w = f.do(t, http.MethodPost, "/completion/records/7/missing-fields", record)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `"needed"`)
}

func TestGetMissingFields_BadBody(t *testing.T) {
	f := newControllerFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/completion/records/7/missing-fields", nil)
	req.Body = http.NoBody
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAverage(t *testing.T) {
	f := newControllerFixture(t)
	complete := f.factory.CreateCompletePerson("a@example.com")
	empty := f.factory.CreatePerson()

	var response struct {
		Data AverageResponse `json:"data"`
	}

	w := f.do(t, http.MethodGet, "/completion/average", nil)
	require.Equal(t, http.StatusOK, w.Code)
	f.helper.DecodeJSON(t, w, &response)
	assert.Equal(t, 50.0, response.Data.AverageScore)
	assert.False(t, response.Data.Filtered)

	w = f.do(t, http.MethodGet, fmt.Sprintf("/completion/average?ids=%d", complete.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	f.helper.DecodeJSON(t, w, &response)
	assert.Equal(t, 100.0, response.Data.AverageScore)
	assert.True(t, response.Data.Filtered)

	w = f.do(t, http.MethodGet, fmt.Sprintf("/completion/average?ids=%d,x", empty.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetDistribution(t *testing.T) {
	f := newControllerFixture(t)
	f.factory.CreateCompletePerson("a@example.com")
	f.factory.CreatePerson()

	w := f.do(t, http.MethodGet, "/completion/distribution", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data DistributionResponse `json:"data"`
	}
	f.helper.DecodeJSON(t, w, &response)
	assert.Equal(t, []string{"[0,19]", "[20,49]", "[50,79]", "[80,100]"}, response.Data.Labels)
	assert.Equal(t, completion.Distribution{"[0,19]": 1, "[20,49]": 0, "[50,79]": 0, "[80,100]": 1}, response.Data.Distribution)
	assert.Equal(t, int64(2), response.Data.Total)
}

func TestGetInadequate(t *testing.T) {
	f := newControllerFixture(t)
	f.factory.CreateCompletePerson("z@example.com")
	f.factory.CreatePerson(testutil.WithEmail("b@example.com"))
	f.factory.CreatePerson(testutil.WithEmail("a@example.com"))

	w := f.do(t, http.MethodGet, "/completion/inadequate?page=1&size=1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data  []completion.RecordSummary `json:"data"`
		Total int64                      `json:"total"`
		Page  int                        `json:"page"`
		Size  int                        `json:"size"`
	}
	f.helper.DecodeJSON(t, w, &response)
	assert.Equal(t, int64(2), response.Total)
	assert.Equal(t, 1, response.Size)
	require.Len(t, response.Data, 1)
	assert.Equal(t, "a@example.com", response.Data[0].Email)

	w = f.do(t, http.MethodGet, "/completion/inadequate?size=5000", nil)
	require.Equal(t, http.StatusOK, w.Code)
	f.helper.DecodeJSON(t, w, &response)
	assert.Equal(t, maxPageSize, response.Size)
	assert.Equal(t, defaultPage, response.Page)

	w = f.do(t, http.MethodGet, "/completion/inadequate?page=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetCoverage(t *testing.T) {
	f := newControllerFixture(t)
	f.factory.CreatePerson(testutil.WithPhoto("a.png"))
	f.factory.CreatePerson()

	w := f.do(t, http.MethodGet, "/completion/coverage?fields=profile_photo,%20email", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data completion.Coverage `json:"data"`
	}
	f.helper.DecodeJSON(t, w, &response)
	assert.Equal(t, int64(2), response.Data.Total)
	assert.Equal(t, 0.5, response.Data.Fields["profile_photo"])
	assert.Equal(t, 0.0, response.Data.Fields["email"])

	w = f.do(t, http.MethodGet, "/completion/coverage?fields=nickname", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPolicy(t *testing.T) {
	f := newControllerFixture(t)

	w := f.do(t, http.MethodGet, "/completion/policy", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data PolicyResponse `json:"data"`
	}
	f.helper.DecodeJSON(t, w, &response)
	assert.Equal(t, "people", response.Data.Table)
	assert.Equal(t, completion.DefaultAdequateFields, response.Data.AdequateFields)
	assert.Equal(t, completion.DefaultCompletionFields, response.Data.FullFields)
	assert.Len(t, response.Data.Buckets, 4)
	assert.Equal(t, "Primary Phone Number", response.Data.Labels["primary_phone_number"])
}

// failingStore 始终返回给定错误的记录存储
type failingStore struct {
	err error
}

func (s failingStore) Dialect() completion.Dialect { return completion.SQLite }

func (s failingStore) Query(context.Context, string, ...interface{}) ([]map[string]interface{}, error) {
	return nil, s.err
}

func TestStorageErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"查询超时", context.DeadlineExceeded, http.StatusServiceUnavailable},
		{"连接失败", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scores, err := completion.NewScoreService(failingStore{err: tt.err}, completion.DefaultPolicy(), completion.DefaultBucketDefinition())
			require.NoError(t, err)
			router := newCompletionRouter(NewCompletionController(scores))

			req := httptest.NewRequest(http.MethodGet, "/completion/distribution", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.code, w.Code)
			var response APIResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.code, response.Status)
		})
	}
}

// MockPinger Mock存储探活
type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestHealthController(t *testing.T) {
	pinger := new(MockPinger)
	pinger.On("Ping", mock.Anything).Return(nil).Once()
	pinger.On("Ping", mock.Anything).Return(errors.New("database is closed")).Once()
	controller := NewHealthController(pinger)

	w := httptest.NewRecorder()
	controller.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	controller.Ready(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	controller.Ready(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var response HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "unavailable", response.Status)
	assert.Equal(t, "database is closed", response.Error)
	pinger.AssertExpectations(t)
}
