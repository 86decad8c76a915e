/*
 * @module service/models/person
 * @description 人员目录实体：人员、分组与成员关系
 * @architecture DDD领域驱动设计 - 实体模型
 * @stateFlow 资料录入 -> 完整度聚合统计
 * @rules 资料字段允许为空，空值与空字符串均视为缺失
 * @dependencies gorm.io/gorm
 * @refs service/completion/field_registry.go
 */

package models

import (
	"time"
)

// Person 人员资料，对应完整度统计的记录表
type Person struct {
	ID                 int64        `json:"id" gorm:"primaryKey;autoIncrement"`
	Email              *string      `json:"email" gorm:"size:255;index"`
	GivenName          *string      `json:"given_name" gorm:"size:100"`
	Surname            *string      `json:"surname" gorm:"size:100"`
	Building           *string      `json:"building" gorm:"size:100"`
	City               *string      `json:"city" gorm:"size:100"`
	LocationInBuilding *string      `json:"location_in_building" gorm:"size:100"`
	PrimaryPhoneNumber *string      `json:"primary_phone_number" gorm:"size:50"`
	Description        *string      `json:"description" gorm:"type:text"`
	CurrentProject     *string      `json:"current_project" gorm:"size:255"`
	ProfilePhotoID     *int64       `json:"profile_photo_id"`
	Image              *string      `json:"image" gorm:"size:500"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
	Memberships        []Membership `json:"memberships,omitempty" gorm:"foreignKey:PersonID"`
}

// TableName 表名
func (Person) TableName() string {
	return "people"
}

// Group 分组
type Group struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"not null;size:255"`
	Description string    `json:"description" gorm:"size:1000"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName 表名
func (Group) TableName() string {
	return "groups"
}

// Membership 人员与分组的成员关系
type Membership struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	PersonID  int64     `json:"person_id" gorm:"not null;index"`
	GroupID   int64     `json:"group_id" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 表名
func (Membership) TableName() string {
	return "memberships"
}
