package service

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/openingclouds/internal/config"
	"github.com/openingclouds/internal/models"
	"github.com/openingclouds/internal/repository"
)

const (
	defaultHeroTitle     = "openingClouds"
	defaultHeroSubtitle  = "Tech · Efficiency · Life"
	defaultContactEmail  = "openingclouds@outlook.com"
	defaultContactGithub = "https://github.com/hqy2020/openingcloud-blog"
	heroFallbackImage    = "/media/hero/hero-fallback.png"
	heroFallbackVideo    = "/media/hero/hero-fallback.mp4"
)

var heroSlogans = []string{
	"用代码丈量世界的边界",
	"记录即存在，分享即生长",
	"每一次优化都是向自由迈进",
	"在云端看自己的脚印",
	"技术是手段，思考是目的",
	"把日常过成实验，把生活活成作品",
}

// HomeStats 首页统计
type HomeStats struct {
	PostsTotal           int64 `json:"posts_total"`
	PublishedPostsTotal  int64 `json:"published_posts_total"`
	TimelineTotal        int64 `json:"timeline_total"`
	TravelTotal          int64 `json:"travel_total"`
	SocialTotal          int64 `json:"social_total"`
	HighlightStagesTotal int64 `json:"highlight_stages_total"`
	HighlightItemsTotal  int64 `json:"highlight_items_total"`
	TagsTotal            int   `json:"tags_total"`
	ViewsTotal           int64 `json:"views_total"`
	TotalWords           int   `json:"total_words"`
	SiteDays             int   `json:"site_days"`
}

// HomeHero 首页头图
type HomeHero struct {
	Title         string   `json:"title"`
	Subtitle      string   `json:"subtitle"`
	Slogans       []string `json:"slogans"`
	FallbackImage string   `json:"fallback_image"`
	FallbackVideo string   `json:"fallback_video"`
}

// HomeContact 联系方式
type HomeContact struct {
	Email  string `json:"email"`
	Github string `json:"github"`
}

// HomePayload 首页聚合数据
type HomePayload struct {
	Hero        HomeHero                `json:"hero"`
	Timeline    []models.TimelineNode   `json:"timeline"`
	Highlights  []models.HighlightStage `json:"highlights"`
	Travel      []TravelProvinceGroup   `json:"travel"`
	SocialGraph *SocialGraph            `json:"social_graph"`
	Stats       *HomeStats              `json:"stats"`
	Contact     HomeContact             `json:"contact"`
}

// HomeService 首页聚合服务
type HomeService struct {
	site      config.SiteConfig
	statsRepo repository.StatsRepository
	timeline  *TimelineService
	highlight *HighlightService
	travel    *TravelService
	social    *SocialService
	now       func() time.Time
}

// NewHomeService 创建首页聚合服务
func NewHomeService(site config.SiteConfig, statsRepo repository.StatsRepository, timeline *TimelineService, highlight *HighlightService, travel *TravelService, social *SocialService) *HomeService {
	return &HomeService{
		site:      site,
		statsRepo: statsRepo,
		timeline:  timeline,
		highlight: highlight,
		travel:    travel,
		social:    social,
		now:       time.Now,
	}
}

// Home 组装首页数据
func (s *HomeService) Home() (*HomePayload, error) {
	timeline, err := s.timeline.List()
	if err != nil {
		return nil, err
	}
	highlights, err := s.highlight.ListStages()
	if err != nil {
		return nil, err
	}
	travel, err := s.travel.Grouped()
	if err != nil {
		return nil, err
	}
	graph, err := s.social.Graph()
	if err != nil {
		return nil, err
	}
	stats, err := s.Stats()
	if err != nil {
		return nil, err
	}
	return &HomePayload{
		Hero: HomeHero{
			Title:         valueOrDefault(s.site.HeroTitle, defaultHeroTitle),
			Subtitle:      valueOrDefault(s.site.HeroSubtitle, defaultHeroSubtitle),
			Slogans:       append([]string(nil), heroSlogans...),
			FallbackImage: heroFallbackImage,
			FallbackVideo: heroFallbackVideo,
		},
		Timeline:    timeline,
		Highlights:  highlights,
		Travel:      travel,
		SocialGraph: graph,
		Stats:       stats,
		Contact: HomeContact{
			Email:  valueOrDefault(s.site.ContactEmail, defaultContactEmail),
			Github: valueOrDefault(s.site.GithubURL, defaultContactGithub),
		},
	}, nil
}

// Stats 首页统计
func (s *HomeService) Stats() (*HomeStats, error) {
	overview, err := s.statsRepo.GetOverview()
	if err != nil {
		return nil, err
	}
	contents, err := s.statsRepo.ListPublishedContent()
	if err != nil {
		return nil, err
	}
	tags := make(map[string]struct{})
	words := 0
	for _, row := range contents {
		for _, tag := range row.Tags {
			if trimmed := strings.TrimSpace(tag); trimmed != "" {
				tags[trimmed] = struct{}{}
			}
		}
		words += CountWords(row.Content)
	}
	return &HomeStats{
		PostsTotal:           overview.PostsTotal,
		PublishedPostsTotal:  overview.PublishedPostsTotal,
		TimelineTotal:        overview.TimelineTotal,
		TravelTotal:          overview.TravelTotal,
		SocialTotal:          overview.SocialTotal,
		HighlightStagesTotal: overview.HighlightStagesTotal,
		HighlightItemsTotal:  overview.HighlightItemsTotal,
		TagsTotal:            len(tags),
		ViewsTotal:           overview.ViewsTotal,
		TotalWords:           words,
		SiteDays:             SiteDays(s.launchDate(overview.FirstPublishedAt), s.now()),
	}, nil
}

// launchDate 配置的上线日期 > 首篇已发布文章创建日期 > 今天
func (s *HomeService) launchDate(firstPublished *time.Time) time.Time {
	if value := strings.TrimSpace(s.site.LaunchDate); value != "" {
		if parsed, err := time.ParseInLocation(dateLayout, value, time.Local); err == nil {
			return parsed
		}
	}
	if firstPublished != nil {
		return *firstPublished
	}
	return s.now()
}

// CountWords 去除空格、换行、制表符后的字符数
func CountWords(content string) int {
	count := utf8.RuneCountInString(content)
	for _, r := range content {
		switch r {
		case ' ', '\n', '\r', '\t':
			count--
		}
	}
	return count
}

// SiteDays 建站天数，含首尾，至少为 1
func SiteDays(launch, today time.Time) int {
	start := time.Date(launch.Year(), launch.Month(), launch.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	days := int(end.Sub(start).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}

func valueOrDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
