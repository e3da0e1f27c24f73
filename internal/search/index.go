package search

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/openingclouds/internal/models"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/lang/cjk"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
)

// DefaultLimit 默认返回条数
const DefaultLimit = 20

// MaxLimit 单次检索最大条数
const MaxLimit = 50

// Index 文章全文检索索引（bleve）
type Index struct {
	index bleve.Index
}

// PostDocument 索引中的文章文档，以 slug 为文档 ID
type PostDocument struct {
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Excerpt   string    `json:"excerpt"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	Tags      []string  `json:"tags"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Hit 检索结果
type Hit struct {
	Slug      string              `json:"slug"`
	Title     string              `json:"title"`
	Excerpt   string              `json:"excerpt"`
	Category  string              `json:"category"`
	Score     float64             `json:"score"`
	Fragments map[string][]string `json:"fragments"`
}

// Open 打开或创建索引；path 为空时使用内存索引
func Open(path string) (*Index, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		idx, err := bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create memory index: %w", err)
		}
		return &Index{index: idx}, nil
	}

	idx, err := bleve.Open(path)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		if mkErr := os.MkdirAll(filepath.Dir(path), 0o755); mkErr != nil {
			return nil, fmt.Errorf("create index dir: %w", mkErr)
		}
		idx, err = bleve.New(path, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	return &Index{index: idx}, nil
}

// buildIndexMapping 正文类字段使用 cjk 分词，分类与标签按关键字精确匹配
func buildIndexMapping() mapping.IndexMapping {
	textField := bleve.NewTextFieldMapping()
	textField.Analyzer = cjk.AnalyzerName

	contentField := bleve.NewTextFieldMapping()
	contentField.Analyzer = cjk.AnalyzerName
	contentField.Store = false

	keywordField := bleve.NewKeywordFieldMapping()

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("slug", keywordField)
	docMapping.AddFieldMappingsAt("title", textField)
	docMapping.AddFieldMappingsAt("excerpt", textField)
	docMapping.AddFieldMappingsAt("content", contentField)
	docMapping.AddFieldMappingsAt("category", keywordField)
	docMapping.AddFieldMappingsAt("tags", keywordField)
	docMapping.AddFieldMappingsAt("updated_at", bleve.NewDateTimeFieldMapping())

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", docMapping)
	indexMapping.DefaultAnalyzer = cjk.AnalyzerName
	return indexMapping
}

// DocumentFromPost 文章转索引文档
func DocumentFromPost(post *models.Post) PostDocument {
	return PostDocument{
		Slug:      post.Slug,
		Title:     post.Title,
		Excerpt:   post.Excerpt,
		Content:   post.Content,
		Category:  post.Category,
		Tags:      append([]string(nil), post.Tags...),
		UpdatedAt: post.UpdatedAt,
	}
}

// Close 关闭索引
func (i *Index) Close() error {
	return i.index.Close()
}

// IndexPost 写入或更新文档
func (i *Index) IndexPost(doc PostDocument) error {
	if strings.TrimSpace(doc.Slug) == "" {
		return errors.New("empty slug")
	}
	return i.index.Index(doc.Slug, doc)
}

// Delete 删除文档，不存在时忽略
func (i *Index) Delete(slug string) error {
	if strings.TrimSpace(slug) == "" {
		return nil
	}
	return i.index.Delete(slug)
}

// Search 在标题、摘要、正文与标签中检索，标题权重更高
func (i *Index) Search(keyword string, limit int) ([]Hit, uint64, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return []Hit{}, 0, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	req := bleve.NewSearchRequestOptions(buildQuery(keyword), limit, 0, false)
	req.Highlight = bleve.NewHighlightWithStyle("html")
	req.Fields = []string{"title", "excerpt", "category"}

	result, err := i.index.Search(req)
	if err != nil {
		return nil, 0, fmt.Errorf("search: %w", err)
	}

	hits := make([]Hit, 0, len(result.Hits))
	for _, match := range result.Hits {
		hit := Hit{
			Slug:      match.ID,
			Score:     match.Score,
			Fragments: match.Fragments,
		}
		if title, ok := match.Fields["title"].(string); ok {
			hit.Title = title
		}
		if excerpt, ok := match.Fields["excerpt"].(string); ok {
			hit.Excerpt = excerpt
		}
		if category, ok := match.Fields["category"].(string); ok {
			hit.Category = category
		}
		hits = append(hits, hit)
	}
	return hits, result.Total, nil
}

func buildQuery(keyword string) query.Query {
	title := bleve.NewMatchQuery(keyword)
	title.SetField("title")
	title.SetBoost(3)

	excerpt := bleve.NewMatchQuery(keyword)
	excerpt.SetField("excerpt")
	excerpt.SetBoost(1.5)

	content := bleve.NewMatchQuery(keyword)
	content.SetField("content")

	tag := bleve.NewTermQuery(keyword)
	tag.SetField("tags")
	tag.SetBoost(2)

	return bleve.NewDisjunctionQuery(title, excerpt, content, tag)
}

// Rebuild 以给定文档集合重建索引，删除集合之外的旧文档
func (i *Index) Rebuild(docs []PostDocument) error {
	existing, err := i.documentIDs()
	if err != nil {
		return err
	}

	batch := i.index.NewBatch()
	keep := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		if strings.TrimSpace(doc.Slug) == "" {
			continue
		}
		keep[doc.Slug] = struct{}{}
		if err := batch.Index(doc.Slug, doc); err != nil {
			return fmt.Errorf("batch index %s: %w", doc.Slug, err)
		}
	}
	for _, id := range existing {
		if _, ok := keep[id]; !ok {
			batch.Delete(id)
		}
	}
	if err := i.index.Batch(batch); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

func (i *Index) documentIDs() ([]string, error) {
	count, err := i.index.DocCount()
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}
	if count == 0 {
		return nil, nil
	}
	req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), int(count), 0, false)
	result, err := i.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	ids := make([]string, 0, len(result.Hits))
	for _, hit := range result.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

// Count 索引中的文档数
func (i *Index) Count() (uint64, error) {
	return i.index.DocCount()
}
