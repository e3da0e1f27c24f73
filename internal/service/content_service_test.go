package service

import (
	"errors"
	"testing"

	"github.com/openingclouds/internal/constants"
	"github.com/openingclouds/internal/models"
	"github.com/openingclouds/internal/repository"

	"github.com/shopspring/decimal"
)

func TestTimelineValidationAndReorder(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewTimelineService(repository.NewTimelineRepository(db))

	invalid := []TimelineInput{
		{StartDate: "2020-01-01", Type: constants.TimelineTypeCareer},
		{Title: "No Date", Type: constants.TimelineTypeCareer},
		{Title: "Bad Date", StartDate: "2020/01/01", Type: constants.TimelineTypeCareer},
		{Title: "Bad Type", StartDate: "2020-01-01", Type: "party"},
		{Title: "Bad Impact", StartDate: "2020-01-01", Type: constants.TimelineTypeCareer, Impact: "huge"},
	}
	for i, input := range invalid {
		if _, err := svc.Create(input); !errors.Is(err, ErrInvalidTimelineNode) {
			t.Fatalf("case %d want ErrInvalidTimelineNode got %v", i, err)
		}
	}

	first, err := svc.Create(TimelineInput{
		Title:     "入职",
		StartDate: "2021-07-01",
		Type:      "Career",
		Links:     []models.TimelineLink{{URL: " https://example.com "}, {Label: "empty"}},
	})
	if err != nil {
		t.Fatalf("create first failed: %v", err)
	}
	if first.Impact != constants.TimelineImpactMedium || first.Type != constants.TimelineTypeCareer {
		t.Fatalf("defaults mismatch: %+v", first)
	}
	if len(first.Links) != 1 || first.Links[0].Label != "https://example.com" {
		t.Fatalf("links should drop empty urls and default labels: %+v", first.Links)
	}
	second, err := svc.Create(TimelineInput{Title: "毕业", StartDate: "2021-06-30", Type: constants.TimelineTypeLearning})
	if err != nil {
		t.Fatalf("create second failed: %v", err)
	}

	nodes, err := svc.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(nodes) != 2 || nodes[0].ID != second.ID {
		t.Fatalf("equal sort order should fall back to start_date: %+v", nodes)
	}

	if err := svc.Reorder([]repository.SortOrderUpdate{{ID: first.ID, SortOrder: 1}, {ID: second.ID, SortOrder: 2}}); err != nil {
		t.Fatalf("reorder failed: %v", err)
	}
	nodes, _ = svc.List()
	if nodes[0].ID != first.ID {
		t.Fatalf("reorder should win over start_date: %+v", nodes)
	}

	if err := svc.Delete(9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete missing want ErrNotFound got %v", err)
	}
}

func TestTravelUniquenessAndGrouping(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewTravelService(repository.NewTravelRepository(db))

	lat := decimal.NewNullDecimal(decimal.RequireFromString("30.27"))
	if _, err := svc.Create(TravelInput{Province: "浙江", City: "杭州", VisitedAt: "2023-04-01", Latitude: lat}); err != nil {
		t.Fatalf("create hangzhou failed: %v", err)
	}
	if _, err := svc.Create(TravelInput{Province: "上海", City: "上海"}); err != nil {
		t.Fatalf("create shanghai failed: %v", err)
	}
	if _, err := svc.Create(TravelInput{Province: "浙江", City: "宁波"}); err != nil {
		t.Fatalf("create ningbo failed: %v", err)
	}
	if _, err := svc.Create(TravelInput{Province: " 浙江 ", City: "杭州"}); !errors.Is(err, ErrTravelPlaceExists) {
		t.Fatalf("duplicate city want ErrTravelPlaceExists got %v", err)
	}

	badLat := decimal.NewNullDecimal(decimal.NewFromInt(91))
	if _, err := svc.Create(TravelInput{Province: "北京", City: "北京", Latitude: badLat}); !errors.Is(err, ErrBadTravelPlace) {
		t.Fatalf("latitude out of range want ErrBadTravelPlace got %v", err)
	}
	if _, err := svc.Create(TravelInput{Province: "北京"}); !errors.Is(err, ErrBadTravelPlace) {
		t.Fatalf("missing city want ErrBadTravelPlace got %v", err)
	}

	groups, err := svc.Grouped()
	if err != nil {
		t.Fatalf("grouped failed: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("want 2 provinces got %d", len(groups))
	}
	var zhejiang *TravelProvinceGroup
	for i := range groups {
		if groups[i].Province == "浙江" {
			zhejiang = &groups[i]
		}
	}
	if zhejiang == nil || zhejiang.Count != 2 || len(zhejiang.Cities) != 2 {
		t.Fatalf("zhejiang group mismatch: %+v", groups)
	}
	for _, city := range zhejiang.Cities {
		if city.City == "杭州" && city.VisitedAt != "2023-04-01" {
			t.Fatalf("visited_at should be formatted as date: %v", city.VisitedAt)
		}
		if city.City == "宁波" && city.VisitedAt != nil {
			t.Fatalf("empty visited_at should be nil: %v", city.VisitedAt)
		}
	}
}

func TestSocialGraphOnlyShowsPublicFriends(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewSocialService(repository.NewSocialFriendRepository(db))

	hidden := false
	if _, err := svc.Create(SocialFriendInput{Name: "张三", PublicLabel: "Z", StageKey: constants.SocialStageTongji, SortOrder: 2}); err != nil {
		t.Fatalf("create public friend failed: %v", err)
	}
	if _, err := svc.Create(SocialFriendInput{Name: "李四", PublicLabel: "L", IsPublic: &hidden}); err != nil {
		t.Fatalf("create hidden friend failed: %v", err)
	}
	if _, err := svc.Create(SocialFriendInput{Name: "王五", PublicLabel: "W", StageKey: "mars"}); !errors.Is(err, ErrInvalidSocialFriend) {
		t.Fatalf("unknown stage want ErrInvalidSocialFriend got %v", err)
	}
	if _, err := svc.Create(SocialFriendInput{Name: "赵六"}); !errors.Is(err, ErrInvalidSocialFriend) {
		t.Fatalf("missing label want ErrInvalidSocialFriend got %v", err)
	}

	all, err := svc.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("admin list should include hidden friends, got %d", len(all))
	}
	for _, friend := range all {
		if friend.Name == "李四" && friend.StageKey != constants.SocialStageCareer {
			t.Fatalf("stage should default to career: %+v", friend)
		}
	}

	graph, err := svc.Graph()
	if err != nil {
		t.Fatalf("graph failed: %v", err)
	}
	if len(graph.Nodes) != len(constants.SocialStages)+1 {
		t.Fatalf("graph should hold every stage plus one public friend, got %d nodes", len(graph.Nodes))
	}
	if len(graph.Links) != 1 || graph.Links[0].Source != "stage-"+constants.SocialStageTongji {
		t.Fatalf("graph links mismatch: %+v", graph.Links)
	}
	friendNode := graph.Nodes[len(graph.Nodes)-1]
	if friendNode.Type != "friend" || friendNode.Label != "Z" || friendNode.Order != friendNodeOrderBase+2 {
		t.Fatalf("friend node mismatch: %+v", friendNode)
	}
}

func TestHighlightStagesAndItems(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewHighlightService(repository.NewHighlightRepository(db))

	if _, err := svc.CreateStage(HighlightStageInput{Title: " "}); !errors.Is(err, ErrInvalidHighlight) {
		t.Fatalf("empty title want ErrInvalidHighlight got %v", err)
	}
	stage, err := svc.CreateStage(HighlightStageInput{Title: "大学", StartDate: "2015-09-01"})
	if err != nil {
		t.Fatalf("create stage failed: %v", err)
	}
	if stage.Items == nil {
		t.Fatalf("new stage should carry an empty item list")
	}

	if _, err := svc.CreateItem(9999, HighlightItemInput{Title: "orphan"}); !errors.Is(err, ErrHighlightStageNotFound) {
		t.Fatalf("missing stage want ErrHighlightStageNotFound got %v", err)
	}
	if _, err := svc.CreateItem(stage.ID, HighlightItemInput{Title: "奖学金", AchievedAt: "bad"}); !errors.Is(err, ErrInvalidHighlight) {
		t.Fatalf("bad date want ErrInvalidHighlight got %v", err)
	}
	second, err := svc.CreateItem(stage.ID, HighlightItemInput{Title: "竞赛", SortOrder: 2})
	if err != nil {
		t.Fatalf("create item failed: %v", err)
	}
	first, err := svc.CreateItem(stage.ID, HighlightItemInput{Title: "奖学金", AchievedAt: "2016-06-01", SortOrder: 1})
	if err != nil {
		t.Fatalf("create item failed: %v", err)
	}

	stages, err := svc.ListStages()
	if err != nil {
		t.Fatalf("list stages failed: %v", err)
	}
	if len(stages) != 1 || len(stages[0].Items) != 2 || stages[0].Items[0].ID != first.ID {
		t.Fatalf("items should be ordered by sort_order: %+v", stages)
	}

	err = svc.Reorder(HighlightReorderInput{Items: []repository.SortOrderUpdate{{ID: second.ID, SortOrder: 0}}})
	if err != nil {
		t.Fatalf("reorder failed: %v", err)
	}
	stages, _ = svc.ListStages()
	if stages[0].Items[0].ID != second.ID {
		t.Fatalf("reorder not applied: %+v", stages[0].Items)
	}

	if err := svc.DeleteStage(stage.ID); err != nil {
		t.Fatalf("delete stage failed: %v", err)
	}
	if countRows(t, db, &models.HighlightItem{}) != 0 {
		t.Fatalf("deleting a stage should remove its items")
	}
}
