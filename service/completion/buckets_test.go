package completion

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBucketDefinition_Validation(t *testing.T) {
	tests := []struct {
		name    string
		buckets []Bucket
	}{
		{"分桶为空", nil},
		{"下界大于上界", []Bucket{{Lo: 0, Hi: 50}, {Lo: 51, Hi: 40}}},
		{"不从0开始", []Bucket{{Lo: 1, Hi: 100}}},
		{"存在空隙", []Bucket{{Lo: 0, Hi: 49}, {Lo: 51, Hi: 100}}},
		{"存在重叠", []Bucket{{Lo: 0, Hi: 50}, {Lo: 50, Hi: 100}}},
		{"未覆盖到100", []Bucket{{Lo: 0, Hi: 99}}},
		{"超过100", []Bucket{{Lo: 0, Hi: 101}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBucketDefinition(tt.buckets...)
			require.Error(t, err)
			var cfgErr *ConfigurationError
			assert.True(t, errors.As(err, &cfgErr))
		})
	}
}

func TestBucketDefinition_Find(t *testing.T) {
	def := DefaultBucketDefinition()

	assert.Equal(t, []string{"[0,19]", "[20,49]", "[50,79]", "[80,100]"}, def.Labels())

	for score := MinScore; score <= MaxScore; score++ {
		b, ok := def.Find(score)
		require.True(t, ok, "分数 %d 应落在某个桶内", score)
		assert.True(t, b.Contains(score))
	}
	_, ok := def.Find(101)
	assert.False(t, ok)
}

func TestParseBucketedResults_ZeroFill(t *testing.T) {
	def := DefaultBucketDefinition()

	dist, err := def.ParseBucketedResults(nil)
	require.NoError(t, err)
	assert.Equal(t, Distribution{"[0,19]": 0, "[20,49]": 0, "[50,79]": 0, "[80,100]": 0}, dist)

	dist, err = def.ParseBucketedResults([]map[string]interface{}{
		{"bucket": "[0,19]", "record_count": int64(1)},
		{"bucket": []byte("[80,100]"), "record_count": "2"},
	})
	require.NoError(t, err)
	assert.Equal(t, Distribution{"[0,19]": 1, "[20,49]": 0, "[50,79]": 0, "[80,100]": 2}, dist)
	assert.Equal(t, int64(3), dist.Total())
}

func TestParseBucketedResults_DuplicateLabelsAreSummed(t *testing.T) {
	def := DefaultBucketDefinition()

	dist, err := def.ParseBucketedResults([]map[string]interface{}{
		{"bucket": "[50,79]", "record_count": 2},
		{"bucket": "[50,79]", "record_count": float64(3)},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), dist["[50,79]"])
}

func TestParseBucketedResults_MalformedRows(t *testing.T) {
	def := DefaultBucketDefinition()

	tests := []struct {
		name string
		row  map[string]interface{}
	}{
		{"缺少标签", map[string]interface{}{"record_count": 1}},
		{"标签未配置", map[string]interface{}{"bucket": "[0,100]", "record_count": 1}},
		{"计数无法解析", map[string]interface{}{"bucket": "[0,19]", "record_count": "many"}},
		{"计数为负数", map[string]interface{}{"bucket": "[0,19]", "record_count": -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := def.ParseBucketedResults([]map[string]interface{}{tt.row})
			assert.Error(t, err)
		})
	}
}
