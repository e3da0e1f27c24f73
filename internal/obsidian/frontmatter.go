package obsidian

import (
	"strconv"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

// clcKeys 中图法分类号可用的元数据键，按优先级排列
var clcKeys = []string{"clc", "zhongtufa", "clc_code", "中图法"}

// yamlFormat 使用 yaml.v3 解析 --- 包裹的 front matter
var yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// Metadata 笔记 front matter 的类型化记录
type Metadata struct {
	Title       string    `yaml:"title"`
	Slug        string    `yaml:"slug"`
	Description string    `yaml:"description"`
	Excerpt     string    `yaml:"excerpt"`
	Category    string    `yaml:"category"`
	Cover       string    `yaml:"cover"`
	Tags        TagList   `yaml:"tags"`
	Publish     *FlexBool `yaml:"publish"`
	Draft       *FlexBool `yaml:"draft"`
	CLC         string    `yaml:"-"`

	// InvalidFlags 无法识别的布尔字段，形如 "publish: later"
	InvalidFlags []string `yaml:"-"`
}

// UnmarshalYAML 解析已知字段，并按优先级读取中图法分类号
func (m *Metadata) UnmarshalYAML(node *yaml.Node) error {
	type plain Metadata
	var decoded plain
	if err := node.Decode(&decoded); err != nil {
		return err
	}
	*m = Metadata(decoded)
	m.Publish = dropInvalidFlag(m.Publish, "publish", &m.InvalidFlags)
	m.Draft = dropInvalidFlag(m.Draft, "draft", &m.InvalidFlags)

	if node.Kind != yaml.MappingNode {
		return nil
	}
	found := make(map[string]string, len(clcKeys))
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(key.Value))
		if _, exists := found[name]; !exists {
			found[name] = strings.TrimSpace(value.Value)
		}
	}
	for _, key := range clcKeys {
		if value, ok := found[key]; ok {
			m.CLC = value
			break
		}
	}
	return nil
}

// PublishDisabled front matter 显式声明 publish: false
func (m Metadata) PublishDisabled() bool {
	return m.Publish != nil && !m.Publish.Bool()
}

// TagList 标签，兼容标量与列表两种写法
type TagList []string

// UnmarshalYAML 实现 yaml.Unmarshaler
func (t *TagList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*t = TagList{}
			return nil
		}
		*t = TagList{node.Value}
	case yaml.SequenceNode:
		items := make(TagList, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind == yaml.ScalarNode && item.Tag != "!!null" {
				items = append(items, item.Value)
			}
		}
		*t = items
	default:
		*t = TagList{}
	}
	return nil
}

// FlexBool 宽松布尔值，兼容 true/false/yes/no/on/off/1/0
// 无法识别的取值不报错，由 Metadata 记录后按未设置处理
type FlexBool struct {
	value   bool
	invalid bool
	raw     string
}

// Bool 返回布尔值
func (b FlexBool) Bool() bool {
	return b.value
}

// UnmarshalYAML 实现 yaml.Unmarshaler
func (b *FlexBool) UnmarshalYAML(node *yaml.Node) error {
	b.raw = strings.TrimSpace(node.Value)
	if node.Kind != yaml.ScalarNode {
		b.invalid = true
		return nil
	}
	switch value := strings.ToLower(b.raw); value {
	case "yes", "y", "on":
		b.value = true
	case "no", "n", "off", "":
		b.value = false
	default:
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			b.invalid = true
			return nil
		}
		b.value = parsed
	}
	return nil
}

// dropInvalidFlag 无法识别的取值记入 invalid 并返回 nil
func dropInvalidFlag(flag *FlexBool, key string, invalid *[]string) *FlexBool {
	if flag == nil || !flag.invalid {
		return flag
	}
	*invalid = append(*invalid, key+": "+flag.raw)
	return nil
}
