package obsidian

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/adrg/frontmatter"
	"github.com/openingclouds/internal/constants"
	"github.com/openingclouds/internal/logger"
)

// ExcerptMaxRunes 自动摘要最大字符数
const ExcerptMaxRunes = 150

// ErrFrontMatter front matter 无法解析
var ErrFrontMatter = errors.New("invalid front matter")

var (
	fencedCodePattern = regexp.MustCompile("(?s)(```|~~~).*?(```|~~~)")
	inlineCodePattern = regexp.MustCompile("`[^`\n]*`")
	imagePattern      = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	embedPattern      = regexp.MustCompile(`!\[\[[^\]]*\]\]`)
	wikiLinkPattern   = regexp.MustCompile(`\[\[([^\]|]+)(?:\|([^\]]+))?\]\]`)
	linkPattern       = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	htmlTagPattern    = regexp.MustCompile(`<[^>]+>`)
	headingPattern    = regexp.MustCompile(`(?m)^\s{0,3}#{1,6}\s+`)
	listMarkerPattern = regexp.MustCompile(`(?m)^\s*(?:[-+*]|\d+\.)\s+`)
	markdownPunct     = regexp.MustCompile("[*_~>#|`]+")
	whitespacePattern = regexp.MustCompile(`\s+`)
	firstHeading      = regexp.MustCompile(`^\s*#\s+(.+?)\s*$`)
)

// ParseOptions 解析参数
type ParseOptions struct {
	// Root 笔记库根目录，用于计算相对路径
	Root            string
	PublishTag      string
	DefaultCategory string
}

// Note 解析后的笔记
type Note struct {
	Path          string
	RelativePath  string
	Title         string
	SlugHint      string
	Category      string
	Metadata      Metadata
	Tags          []string
	Content       string
	Excerpt       string
	HasPublishTag bool
	ModTime       time.Time
	RawHash       string
}

// Publishable 带发布标签且未显式 publish: false
func (n *Note) Publishable() bool {
	return n != nil && n.HasPublishTag && !n.Metadata.PublishDisabled()
}

// ParseFile 读取并解析笔记文件
func ParseFile(path string, opts ParseOptions) (*Note, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read note %s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat note %s: %w", path, err)
	}
	note, err := ParseNote(DecodeText(raw), path, opts)
	if err != nil {
		return nil, err
	}
	note.ModTime = info.ModTime()
	return note, nil
}

// DecodeText 按 UTF-8 解码，丢弃非法字节与 BOM
func DecodeText(raw []byte) string {
	text := string(raw)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "")
	}
	return strings.TrimPrefix(text, "\ufeff")
}

// ParseNote 解析笔记文本
func ParseNote(raw, path string, opts ParseOptions) (*Note, error) {
	var meta Metadata
	body, err := frontmatter.Parse(strings.NewReader(raw), &meta, yamlFormat)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFrontMatter, path, err)
	}

	content := string(body)
	relative := RelativePath(opts.Root, path)
	if len(meta.InvalidFlags) > 0 {
		logger.Warnw("obsidian_front_matter_flag_ignored", "path", relative, "flags", meta.InvalidFlags)
	}
	stem := fileStem(path)
	title := ResolveTitle(meta, content, stem)
	tags := NormalizeTags(meta.Tags)

	fallbackKey := relative
	if fallbackKey == "" {
		fallbackKey = path
	}

	return &Note{
		Path:          path,
		RelativePath:  relative,
		Title:         title,
		SlugHint:      ResolveSlug(meta, path, title, fallbackKey),
		Category:      ResolveCategory(meta, relative, opts.DefaultCategory),
		Metadata:      meta,
		Tags:          tags,
		Content:       content,
		Excerpt:       BuildExcerpt(meta, content),
		HasPublishTag: ContainsPublishTag(tags, opts.PublishTag),
		RawHash:       HashText(raw),
	}, nil
}

// HashText 原文 sha1
func HashText(raw string) string {
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// RelativePath 计算相对根目录的 / 分隔路径，无法计算时返回规范化后的原路径
func RelativePath(root, path string) string {
	if strings.TrimSpace(root) == "" {
		return NormalizeRelativePath(filepath.ToSlash(path))
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return NormalizeRelativePath(filepath.ToSlash(path))
	}
	return NormalizeRelativePath(filepath.ToSlash(rel))
}

// NormalizeTags 去除首尾空白与空标签，保持原有顺序
func NormalizeTags(tags []string) []string {
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// WithoutPublishTag 移除发布标签
func WithoutPublishTag(tags []string, publishTag string) []string {
	target := normalizeTagName(publishTagOrDefault(publishTag))
	result := make([]string, 0, len(tags))
	for _, tag := range NormalizeTags(tags) {
		if normalizeTagName(tag) == target {
			continue
		}
		result = append(result, tag)
	}
	return result
}

// ContainsPublishTag 标签中是否包含发布标签（忽略大小写与前导 #）
func ContainsPublishTag(tags []string, publishTag string) bool {
	target := normalizeTagName(publishTagOrDefault(publishTag))
	for _, tag := range tags {
		if normalizeTagName(tag) == target {
			return true
		}
	}
	return false
}

func publishTagOrDefault(publishTag string) string {
	if strings.TrimSpace(publishTag) == "" {
		return constants.DefaultPublishTag
	}
	return publishTag
}

func normalizeTagName(tag string) string {
	return strings.TrimLeft(strings.ToLower(strings.TrimSpace(tag)), "#")
}

// BuildExcerpt 生成摘要：description > excerpt > 正文纯文本前 150 字
func BuildExcerpt(meta Metadata, body string) string {
	if description := strings.TrimSpace(meta.Description); description != "" {
		return description
	}
	if excerpt := strings.TrimSpace(meta.Excerpt); excerpt != "" {
		return excerpt
	}
	return truncateRunes(PlainText(body), ExcerptMaxRunes)
}

// PlainText 去除 Markdown 标记后的纯文本
func PlainText(body string) string {
	text := fencedCodePattern.ReplaceAllString(body, " ")
	text = inlineCodePattern.ReplaceAllString(text, " ")
	text = embedPattern.ReplaceAllString(text, " ")
	text = imagePattern.ReplaceAllString(text, " ")
	text = wikiLinkPattern.ReplaceAllStringFunc(text, func(match string) string {
		parts := wikiLinkPattern.FindStringSubmatch(match)
		if len(parts) > 2 && strings.TrimSpace(parts[2]) != "" {
			return parts[2]
		}
		return parts[1]
	})
	text = linkPattern.ReplaceAllString(text, "$1")
	text = htmlTagPattern.ReplaceAllString(text, " ")
	text = headingPattern.ReplaceAllString(text, "")
	text = listMarkerPattern.ReplaceAllString(text, "")
	text = markdownPunct.ReplaceAllString(text, "")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// ResolveTitle 标题：front matter title > 首个一级标题 > 文件名 > untitled
func ResolveTitle(meta Metadata, body, fileStem string) string {
	if title := strings.TrimSpace(meta.Title); title != "" {
		return title
	}
	if heading := ExtractFirstHeading(body); heading != "" {
		return heading
	}
	if stem := strings.TrimSpace(fileStem); stem != "" {
		return stem
	}
	return "untitled"
}

// ExtractFirstHeading 提取代码块之外的首个一级标题
func ExtractFirstHeading(body string) string {
	inFence := false
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		match := firstHeading.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if match == nil {
			continue
		}
		if heading := strings.TrimSpace(strings.Trim(match[1], "#")); heading != "" {
			return heading
		}
	}
	return ""
}

func truncateRunes(value string, limit int) string {
	if utf8.RuneCountInString(value) <= limit {
		return value
	}
	runes := []rune(value)
	return strings.TrimSpace(string(runes[:limit]))
}

func fileStem(path string) string {
	base := filepath.Base(filepath.FromSlash(strings.ReplaceAll(path, `\`, "/")))
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
