package service

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

const dateLayout = "2006-01-02"

// parseOptionalDate 解析 YYYY-MM-DD，空字符串返回 nil
func parseOptionalDate(value string) (*datatypes.Date, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, true
	}
	parsed, err := time.ParseInLocation(dateLayout, value, time.Local)
	if err != nil {
		return nil, false
	}
	date := datatypes.Date(parsed)
	return &date, true
}

// formatDate 输出 YYYY-MM-DD
func formatDate(date *datatypes.Date) string {
	if date == nil {
		return ""
	}
	return time.Time(*date).Format(dateLayout)
}
