package service

import (
	"errors"
	"testing"

	"github.com/openingclouds/internal/constants"
	"github.com/openingclouds/internal/models"
	"github.com/openingclouds/internal/repository"
)

const importYAML = `
timeline_nodes:
  - title: 入职
    start_date: "2021-07-01"
    type: career
    links:
      - label: 公司
        url: https://example.com
travel_places:
  - province: 浙江
    city: 杭州
    latitude: 30.27
    longitude: 120.15
social_friends:
  - public_label: Z
    stage_key: unknown
highlight_stages:
  - title: 大学
    start_date: "2015-09-01"
    items:
      - title: 奖学金
        achieved_at: "2016-06-01"
      - title: 竞赛
`

const importJSON = `{
  "timeline_nodes": [{"title": "毕业", "start_date": "2021-06-30"}],
  "social_friends": [{"name": "李四", "public_label": "L", "stage_key": "tongji", "is_public": false}]
}`

func TestDecodeContentImportFormats(t *testing.T) {
	file, err := DecodeContentImport([]byte(importYAML), "data.yml")
	if err != nil {
		t.Fatalf("decode yaml failed: %v", err)
	}
	if len(file.TimelineNodes) != 1 || len(file.HighlightStages[0].Items) != 2 {
		t.Fatalf("yaml content mismatch: %+v", file)
	}
	if file.TimelineNodes[0].Links[0].URL != "https://example.com" {
		t.Fatalf("yaml links mismatch: %+v", file.TimelineNodes[0].Links)
	}
	if file.TravelPlaces[0].Latitude == nil || *file.TravelPlaces[0].Latitude != 30.27 {
		t.Fatalf("yaml latitude mismatch")
	}

	file, err = DecodeContentImport([]byte(importJSON), "data.json")
	if err != nil {
		t.Fatalf("decode json failed: %v", err)
	}
	if len(file.SocialFriends) != 1 || file.SocialFriends[0].IsPublic == nil || *file.SocialFriends[0].IsPublic {
		t.Fatalf("json content mismatch: %+v", file.SocialFriends)
	}

	if _, err := DecodeContentImport([]byte("{"), "broken.json"); err == nil {
		t.Fatalf("broken json should fail")
	}
}

func TestContentImportIsIdempotent(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewContentImportService(repository.NewContentImportRepository(db))
	file, err := DecodeContentImport([]byte(importYAML), "data.yaml")
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	for round := 0; round < 2; round++ {
		result, err := svc.Import(file, false, false)
		if err != nil {
			t.Fatalf("import round %d failed: %v", round, err)
		}
		if result.Timeline != 1 || result.Travel != 1 || result.Social != 1 || result.HighlightStages != 1 || result.HighlightItems != 2 {
			t.Fatalf("import counters mismatch: %+v", result)
		}
	}

	if countRows(t, db, &models.TimelineNode{}) != 1 || countRows(t, db, &models.TravelPlace{}) != 1 ||
		countRows(t, db, &models.SocialFriend{}) != 1 || countRows(t, db, &models.HighlightStage{}) != 1 ||
		countRows(t, db, &models.HighlightItem{}) != 2 {
		t.Fatalf("re-import should update rows in place")
	}

	var friend models.SocialFriend
	if err := db.First(&friend).Error; err != nil {
		t.Fatalf("load friend failed: %v", err)
	}
	if friend.StageKey != constants.SocialStageCareer || friend.Name != "Z" || !friend.IsPublic {
		t.Fatalf("imported friend defaults mismatch: %+v", friend)
	}
}

func TestContentImportDryRunAndTruncate(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewContentImportService(repository.NewContentImportRepository(db))
	yamlFile, _ := DecodeContentImport([]byte(importYAML), "data.yaml")

	result, err := svc.Import(yamlFile, true, false)
	if err != nil {
		t.Fatalf("dry-run failed: %v", err)
	}
	if !result.DryRun || result.HighlightItems != 2 {
		t.Fatalf("dry-run counters mismatch: %+v", result)
	}
	if countRows(t, db, &models.TimelineNode{}) != 0 {
		t.Fatalf("dry-run must not write")
	}

	if _, err := svc.Import(yamlFile, false, false); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	jsonFile, _ := DecodeContentImport([]byte(importJSON), "data.json")
	if _, err := svc.Import(jsonFile, false, true); err != nil {
		t.Fatalf("truncate import failed: %v", err)
	}
	if countRows(t, db, &models.TimelineNode{}) != 1 || countRows(t, db, &models.HighlightStage{}) != 0 {
		t.Fatalf("truncate should drop previous content")
	}
	var node models.TimelineNode
	if err := db.First(&node).Error; err != nil {
		t.Fatalf("load node failed: %v", err)
	}
	if node.Title != "毕业" || node.Type != constants.TimelineTypeLearning {
		t.Fatalf("timeline type should default to learning: %+v", node)
	}
}

func TestContentImportRollsBackOnInvalidEntry(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewContentImportService(repository.NewContentImportRepository(db))
	file := &ContentImportFile{
		TimelineNodes: []ImportTimelineNode{{Title: "ok", StartDate: "2020-01-01"}},
		TravelPlaces:  []ImportTravelPlace{{Province: "浙江"}},
	}
	_, err := svc.Import(file, false, false)
	if !errors.Is(err, ErrBadTravelPlace) {
		t.Fatalf("want ErrBadTravelPlace got %v", err)
	}
	if countRows(t, db, &models.TimelineNode{}) != 0 {
		t.Fatalf("failed import should roll back")
	}
}
