package obsidian

import (
	"path"
	"strings"
	"unicode"

	"github.com/openingclouds/internal/constants"
)

type categoryRule struct {
	category string
	keywords []string
}

// pathRules 路径关键词规则，按 life → tech → learning 顺序匹配
var pathRules = []categoryRule{
	{category: constants.PostCategoryLife, keywords: []string{"日记", "daily", "journal", "旅行", "travel", "生活", "life"}},
	{category: constants.PostCategoryTech, keywords: []string{"技术", "tech", "programming", "编程", "开发", "dev", "计算机"}},
	{category: constants.PostCategoryLearning, keywords: []string{"知识", "knowledge", "resource", "资源", "学习", "learning", "读书", "reading"}},
}

// tagRules 标签关键词规则
var tagRules = []categoryRule{
	{category: constants.PostCategoryLife, keywords: []string{"life", "daily", "travel", "family"}},
	{category: constants.PostCategoryLearning, keywords: []string{"learning", "study", "productivity", "efficiency"}},
}

// IsValidCategory 是否为合法文章分类
func IsValidCategory(category string) bool {
	for _, item := range constants.PostCategories {
		if item == category {
			return true
		}
	}
	return false
}

// NormalizeCategory 规范化分类，非法时返回 fallback
func NormalizeCategory(category, fallback string) string {
	normalized := strings.ToLower(strings.TrimSpace(category))
	if IsValidCategory(normalized) {
		return normalized
	}
	if IsValidCategory(fallback) {
		return fallback
	}
	return constants.DefaultPostCategory
}

// ResolveCategory 推断文章分类
// 优先级：显式 category > 路径关键词 > 中图法首字母 > 标签关键词 > 默认分类
func ResolveCategory(meta Metadata, relativePath, defaultCategory string) string {
	if explicit := strings.ToLower(strings.TrimSpace(meta.Category)); IsValidCategory(explicit) {
		return explicit
	}
	if category, ok := categoryFromPath(relativePath); ok {
		return category
	}
	if category, ok := MapCLC(meta.CLC); ok {
		return category
	}
	if category, ok := categoryFromTags(NormalizeTags(meta.Tags)); ok {
		return category
	}
	return NormalizeCategory(defaultCategory, constants.DefaultPostCategory)
}

// MapCLC 中图法首字母映射分类，未知字母返回 false
func MapCLC(code string) (string, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", false
	}
	switch code[0] {
	case 'N', 'O', 'P', 'Q', 'R', 'S', 'T', 'U', 'V', 'X':
		return constants.PostCategoryTech, true
	case 'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H', 'K', 'Z':
		return constants.PostCategoryLearning, true
	case 'I', 'J':
		return constants.PostCategoryLife, true
	}
	return "", false
}

func categoryFromPath(relativePath string) (string, bool) {
	normalized := strings.ToLower(NormalizeRelativePath(relativePath))
	if normalized == "" {
		return "", false
	}
	dir := path.Dir(normalized)
	if dir == "." || dir == "/" {
		return "", false
	}
	segments := strings.Split(dir, "/")
	for _, rule := range pathRules {
		for _, segment := range segments {
			for _, keyword := range rule.keywords {
				if segmentMatches(segment, keyword) {
					return rule.category, true
				}
			}
		}
	}
	return "", false
}

// segmentMatches 目录名匹配关键词：ASCII 关键词按单词匹配，中文关键词按包含匹配
func segmentMatches(segment, keyword string) bool {
	if segment == keyword {
		return true
	}
	if !isASCII(keyword) {
		return strings.Contains(segment, keyword)
	}
	tokens := strings.FieldsFunc(segment, func(r rune) bool {
		return r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r))
	})
	for _, token := range tokens {
		if token == keyword {
			return true
		}
	}
	return false
}

func categoryFromTags(tags []string) (string, bool) {
	normalized := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		normalized[normalizeTagName(tag)] = struct{}{}
	}
	for _, rule := range tagRules {
		for _, keyword := range rule.keywords {
			if _, ok := normalized[keyword]; ok {
				return rule.category, true
			}
		}
	}
	return "", false
}

// ResolveSlug 生成文章 slug：显式 slug > 标题 > 文件名；结果为空时使用摘要兜底
func ResolveSlug(meta Metadata, filePath, title, fallbackKey string) string {
	source := strings.TrimSpace(meta.Slug)
	if source == "" {
		source = strings.TrimSpace(title)
	}
	if source == "" {
		source = fileStem(filePath)
	}
	if slug := Slugify(source); slug != "" {
		return slug
	}
	if strings.TrimSpace(fallbackKey) == "" {
		fallbackKey = filePath
	}
	return FallbackSlug(fallbackKey)
}

// NormalizeRelativePath 统一为 / 分隔的相对路径
func NormalizeRelativePath(value string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(value), `\`, "/")
	return strings.TrimPrefix(normalized, "./")
}

func isASCII(value string) bool {
	for i := 0; i < len(value); i++ {
		if value[i] >= 0x80 {
			return false
		}
	}
	return true
}
