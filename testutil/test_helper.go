/*
 * @module testutil/test_helper
 * @description 测试工具和辅助函数
 * @architecture 测试基础设施 - 提供测试通用工具和数据工厂
 * @stateFlow 测试环境初始化 -> 测试数据创建 -> 测试执行 -> 清理资源
 * @rules 提供可重用的测试工具，确保测试环境的一致性
 * @dependencies gorm, sqlite, testify
 * @refs service/models
 */

package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"completion-service/service/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB 测试数据库配置
type TestDB struct {
	DB *gorm.DB
}

// NewTestDB 创建测试数据库
// 内存库按连接隔离，连接池限制为单连接保证所有查询看到同一份数据
func NewTestDB() *TestDB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect test database: %v", err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		panic(fmt.Sprintf("failed to get test database pool: %v", err))
	}
	sqlDB.SetMaxOpenConns(1)

	// 自动迁移所有模型
	err = db.AutoMigrate(
		&models.Person{},
		&models.Group{},
		&models.Membership{},
		&models.CompletionReport{},
	)
	if err != nil {
		panic(fmt.Sprintf("failed to migrate test database: %v", err))
	}

	return &TestDB{DB: db}
}

// CleanDB 清理数据库
func (tdb *TestDB) CleanDB() {
	tables := []string{
		"memberships",
		"groups",
		"people",
		"completion_reports",
	}

	for _, table := range tables {
		tdb.DB.Exec(fmt.Sprintf("DELETE FROM %s", table))
	}
}

// Close 关闭数据库连接
func (tdb *TestDB) Close() {
	if db, err := tdb.DB.DB(); err == nil {
		db.Close()
	}
}

// TestDataFactory 测试数据工厂
type TestDataFactory struct {
	DB *gorm.DB
}

// NewTestDataFactory 创建测试数据工厂
func NewTestDataFactory(db *gorm.DB) *TestDataFactory {
	return &TestDataFactory{DB: db}
}

// PersonOption 人员选项函数类型
type PersonOption func(*models.Person)

// Str 返回字符串指针
func Str(s string) *string {
	return &s
}

// WithEmail 设置邮箱
func WithEmail(email string) PersonOption {
	return func(p *models.Person) { p.Email = Str(email) }
}

// WithName 设置名与姓
func WithName(given, surname string) PersonOption {
	return func(p *models.Person) {
		p.GivenName = Str(given)
		p.Surname = Str(surname)
	}
}

// WithAdequateInfo 填写全部必填字段
func WithAdequateInfo() PersonOption {
	return func(p *models.Person) {
		p.Building = Str("A座")
		p.City = Str("上海")
		p.LocationInBuilding = Str("3F-301")
		p.PrimaryPhoneNumber = Str("13800138000")
	}
}

// WithPhoto 设置头像
func WithPhoto(image string) PersonOption {
	return func(p *models.Person) { p.Image = Str(image) }
}

// WithPhotoID 设置头像记录ID
func WithPhotoID(id int64) PersonOption {
	return func(p *models.Person) { p.ProfilePhotoID = &id }
}

// WithDescription 设置个人简介
func WithDescription(desc string) PersonOption {
	return func(p *models.Person) { p.Description = Str(desc) }
}

// WithField 以列名设置任意字符串列，nil 表示写入 NULL
func WithField(column string, value *string) PersonOption {
	return func(p *models.Person) {
		switch column {
		case "email":
			p.Email = value
		case "given_name":
			p.GivenName = value
		case "surname":
			p.Surname = value
		case "building":
			p.Building = value
		case "city":
			p.City = value
		case "location_in_building":
			p.LocationInBuilding = value
		case "primary_phone_number":
			p.PrimaryPhoneNumber = value
		case "description":
			p.Description = value
		case "current_project":
			p.CurrentProject = value
		case "image":
			p.Image = value
		default:
			panic("unknown person column: " + column)
		}
	}
}

// CreatePerson 创建测试人员，默认所有资料字段为空
func (f *TestDataFactory) CreatePerson(opts ...PersonOption) *models.Person {
	person := &models.Person{}

	// 应用选项
	for _, opt := range opts {
		opt(person)
	}

	if err := f.DB.Create(person).Error; err != nil {
		panic(fmt.Sprintf("failed to create test person: %v", err))
	}
	return person
}

// CreateCompletePerson 创建资料完整的测试人员
func (f *TestDataFactory) CreateCompletePerson(email string, opts ...PersonOption) *models.Person {
	base := []PersonOption{
		WithEmail(email),
		WithName("测试", "用户"),
		WithAdequateInfo(),
		WithPhoto("avatar.png"),
	}
	person := f.CreatePerson(append(base, opts...)...)
	f.AddMembership(person.ID)
	return person
}

// AddMembership 为人员添加一个分组成员关系
func (f *TestDataFactory) AddMembership(personID int64) *models.Membership {
	group := &models.Group{Name: fmt.Sprintf("group_%d", personID)}
	if err := f.DB.Create(group).Error; err != nil {
		panic(fmt.Sprintf("failed to create test group: %v", err))
	}
	membership := &models.Membership{PersonID: personID, GroupID: group.ID}
	if err := f.DB.Create(membership).Error; err != nil {
		panic(fmt.Sprintf("failed to create test membership: %v", err))
	}
	return membership
}

// HTTPTestHelper HTTP测试辅助工具
type HTTPTestHelper struct{}

// NewHTTPTestHelper 创建HTTP测试辅助工具
func NewHTTPTestHelper() *HTTPTestHelper {
	return &HTTPTestHelper{}
}

// CreateJSONRequest 创建JSON请求
func (h *HTTPTestHelper) CreateJSONRequest(method, url string, body interface{}) (*http.Request, error) {
	var reqBody io.Reader

	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// DecodeJSON 解析响应体
func (h *HTTPTestHelper) DecodeJSON(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}
