package completion

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValuePresent(t *testing.T) {
	var nilString *string
	empty := ""
	zero := "0"

	tests := []struct {
		name  string
		value interface{}
		want  bool
	}{
		{"nil", nil, false},
		{"空字符串", "", false},
		{"空格仍视为存在", " ", true},
		{"普通字符串", "上海", true},
		{"整数0", 0, true},
		{"浮点0.0", 0.0, true},
		{"false", false, true},
		{"nil指针", nilString, false},
		{"指向空字符串", &empty, false},
		{"指向字符串0", &zero, true},
		{"无效的NullString", sql.NullString{}, false},
		{"有效的NullString", sql.NullString{String: "a", Valid: true}, true},
		{"有效但为空的NullString", sql.NullString{String: "", Valid: true}, false},
		{"NullInt64为0", sql.NullInt64{Int64: 0, Valid: true}, true},
		{"空切片", []string{}, false},
		{"非空切片", []string{"x"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, valuePresent(tt.value))
		})
	}
}

func TestRelationPresent(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  bool
	}{
		{"nil", nil, false},
		{"true", true, true},
		{"false", false, false},
		{"成员数为0", 0, false},
		{"成员数为2", 2, true},
		{"JSON数值", float64(1), true},
		{"空列表", []interface{}{}, false},
		{"非空列表", []interface{}{map[string]interface{}{"id": 1}}, true},
		{"非空字符串", "g1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, relationPresent(tt.value))
		})
	}
}

func TestFieldPresent_Composite(t *testing.T) {
	spec := CompositeField("profile_photo", "profile_photo_id", "image")

	assert.False(t, fieldPresent(spec, Record{}))
	assert.False(t, fieldPresent(spec, Record{"profile_photo_id": nil, "image": ""}))
	assert.True(t, fieldPresent(spec, Record{"profile_photo_id": 12}))
	assert.True(t, fieldPresent(spec, Record{"image": "avatar.png"}))
	assert.True(t, fieldPresent(spec, Record{"profile_photo": "avatar.png"}))
}
