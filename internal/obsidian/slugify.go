package obsidian

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// MaxSlugLength slug 最大长度
const MaxSlugLength = 255

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9_\s-]`)
	slugSeparators   = regexp.MustCompile(`[-\s]+`)
)

// Slugify 生成 ASCII slug：NFKD 分解后丢弃非 ASCII 字符
func Slugify(value string) string {
	decomposed := norm.NFKD.String(value)
	var builder strings.Builder
	builder.Grow(len(decomposed))
	for _, r := range decomposed {
		if r < 0x80 {
			builder.WriteRune(r)
		}
	}
	slug := strings.ToLower(builder.String())
	slug = slugInvalidChars.ReplaceAllString(slug, "")
	slug = slugSeparators.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-_")
}

// PathDigest 路径 sha1 的前 12 位十六进制
func PathDigest(value string) string {
	sum := sha1.Sum([]byte(value))
	return hex.EncodeToString(sum[:])[:12]
}

// FallbackSlug 标题无法生成 slug 时的兜底值
func FallbackSlug(key string) string {
	return "obs-" + PathDigest(key)
}

// SlugWithPathDigest 为冲突 slug 追加路径摘要后缀，attempt>0 时再追加序号
func SlugWithPathDigest(base, path string, attempt int) string {
	suffix := PathDigest(path)
	if attempt > 0 {
		suffix += "-" + strconv.Itoa(attempt)
	}
	budget := MaxSlugLength - len(suffix) - 1
	if budget <= 0 {
		return truncateBytes("obs-"+suffix, MaxSlugLength)
	}
	prefix := base
	if prefix == "" {
		prefix = "obs"
	}
	return truncateBytes(prefix, budget) + "-" + suffix
}

func truncateBytes(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit]
}
