package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"completion-service/service/completion"

	"gopkg.in/yaml.v3"
)

// PolicyFile 完整度策略文件，字段名必须来自注册表
//
//	adequate_fields: [building, city]
//	completion_fields: [building, city, email]
//	buckets:
//	  - {lo: 0, hi: 49}
//	  - {lo: 50, hi: 100}
type PolicyFile struct {
	AdequateFields   []string            `yaml:"adequate_fields"`
	CompletionFields []string            `yaml:"completion_fields"`
	Buckets          []completion.Bucket `yaml:"buckets"`
}

// ParsePolicyFile 解析策略文件，未知键返回 ValidationError
func ParsePolicyFile(r io.Reader) (*PolicyFile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var pf PolicyFile
	if err := dec.Decode(&pf); err != nil {
		if errors.Is(err, io.EOF) {
			return &pf, nil
		}
		return nil, &completion.ValidationError{Field: "policy_file", Reason: err.Error()}
	}
	return &pf, nil
}

// LoadPolicyFile 读取策略文件
func LoadPolicyFile(path string) (*PolicyFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取策略文件失败: %w", err)
	}
	return ParsePolicyFile(bytes.NewReader(data))
}

// Build 基于注册表构造策略与分桶定义，未给出的部分使用默认值
func (pf *PolicyFile) Build(registry *completion.Registry) (*completion.CompletionPolicy, *completion.BucketDefinition, error) {
	adequate := pf.AdequateFields
	if len(adequate) == 0 {
		adequate = completion.DefaultAdequateFields
	}
	full := pf.CompletionFields
	if len(full) == 0 {
		full = completion.DefaultCompletionFields
	}
	policy, err := completion.NewCompletionPolicy(registry, adequate, full)
	if err != nil {
		return nil, nil, err
	}

	buckets := pf.Buckets
	if len(buckets) == 0 {
		buckets = completion.DefaultBuckets
	}
	def, err := completion.NewBucketDefinition(buckets...)
	if err != nil {
		return nil, nil, err
	}
	return policy, def, nil
}

// ResolvePolicy 按配置得到策略与分桶定义，未配置策略文件时使用默认值
func (c *Config) ResolvePolicy(registry *completion.Registry) (*completion.CompletionPolicy, *completion.BucketDefinition, error) {
	if c.PolicyFile == "" {
		return (&PolicyFile{}).Build(registry)
	}
	pf, err := LoadPolicyFile(c.PolicyFile)
	if err != nil {
		return nil, nil, err
	}
	return pf.Build(registry)
}
