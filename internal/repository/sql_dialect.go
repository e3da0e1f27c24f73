package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// dbDialectName 获取数据库方言名称，默认按 sqlite 处理。
func dbDialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	name := strings.ToLower(strings.TrimSpace(db.Dialector.Name()))
	if name == "" {
		return "sqlite"
	}
	return name
}

func isPostgresDialect(dialect string) bool {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql":
		return true
	default:
		return false
	}
}

// tagMatchConditionByDialect 构建标签精确匹配条件（忽略大小写与首尾空白）。
// sqlite 使用 json_each 展开，postgres 使用 jsonb_array_elements_text。
func tagMatchConditionByDialect(dialect, table, column string) string {
	if isPostgresDialect(dialect) {
		return fmt.Sprintf(
			"EXISTS (SELECT 1 FROM jsonb_array_elements_text(COALESCE(%s.%s::jsonb, '[]'::jsonb)) AS tag(value) WHERE lower(trim(tag.value)) = lower(trim(?)))",
			table, column,
		)
	}
	return fmt.Sprintf(
		"EXISTS (SELECT 1 FROM json_each(%s.%s) WHERE lower(trim(CAST(json_each.value AS TEXT))) = lower(trim(?)))",
		table, column,
	)
}

// buildLikeCondition 构建多列 LIKE 条件，并返回参数数量。
func buildLikeCondition(db *gorm.DB, columns []string) (string, int) {
	return buildLikeConditionByDialect(dbDialectName(db), columns)
}

func buildLikeConditionByDialect(dialect string, columns []string) (string, int) {
	parts := make([]string, 0, len(columns))
	operator := likeOperatorByDialect(dialect)
	for _, column := range columns {
		trimmed := strings.TrimSpace(column)
		if trimmed == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s ?", trimmed, operator))
	}
	return strings.Join(parts, " OR "), len(parts)
}

func likeOperatorByDialect(dialect string) string {
	if isPostgresDialect(dialect) {
		return "ILIKE"
	}
	return "LIKE"
}

// repeatLikeArgs 生成重复的 LIKE 参数列表。
func repeatLikeArgs(like string, count int) []interface{} {
	args := make([]interface{}, 0, count)
	for i := 0; i < count; i++ {
		args = append(args, like)
	}
	return args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike 转义 LIKE 通配符，配合 ESCAPE '\' 使用。
func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}

// escapeLikePrefix 生成前缀匹配参数
func escapeLikePrefix(prefix string) string {
	return escapeLike(prefix) + "%"
}
