package completion

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FieldLabel 字段的展示名称，用于提示用户补全资料，如 primary_phone_number -> Primary Phone Number
func FieldLabel(name string) string {
	caser := cases.Title(language.English)
	return caser.String(strings.ReplaceAll(name, "_", " "))
}

// FieldLabels 批量获取展示名称
func FieldLabels(names []string) map[string]string {
	labels := make(map[string]string, len(names))
	for _, name := range names {
		labels[name] = FieldLabel(name)
	}
	return labels
}
