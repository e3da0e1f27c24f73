package service

import (
	"sort"
	"strings"

	"github.com/openingclouds/internal/models"
	"github.com/openingclouds/internal/repository"

	"github.com/shopspring/decimal"
)

var (
	maxLatitude  = decimal.NewFromInt(90)
	maxLongitude = decimal.NewFromInt(180)
)

// TravelService 旅行足迹服务
type TravelService struct {
	repo repository.TravelRepository
}

// NewTravelService 创建旅行足迹服务
func NewTravelService(repo repository.TravelRepository) *TravelService {
	return &TravelService{repo: repo}
}

// TravelInput 创建/更新旅行足迹输入
type TravelInput struct {
	Province  string
	City      string
	Notes     string
	VisitedAt string
	Latitude  decimal.NullDecimal
	Longitude decimal.NullDecimal
	Cover     string
	SortOrder int
}

// TravelProvinceGroup 按省份聚合的足迹
type TravelProvinceGroup struct {
	Province string             `json:"province"`
	Count    int                `json:"count"`
	Cities   []TravelCityOutput `json:"cities"`
}

// TravelCityOutput 公开展示的城市足迹
type TravelCityOutput struct {
	City      string              `json:"city"`
	Notes     string              `json:"notes"`
	VisitedAt interface{}         `json:"visited_at"`
	Latitude  decimal.NullDecimal `json:"latitude"`
	Longitude decimal.NullDecimal `json:"longitude"`
	Cover     string              `json:"cover"`
	SortOrder int                 `json:"sort_order"`
}

// List 按 sort_order、province、city 排序
func (s *TravelService) List() ([]models.TravelPlace, error) {
	return s.repo.List()
}

// Grouped 按省份名升序分组，组内保持列表顺序
func (s *TravelService) Grouped() ([]TravelProvinceGroup, error) {
	places, err := s.repo.List()
	if err != nil {
		return nil, err
	}
	return GroupTravelPlaces(places), nil
}

// Create 创建足迹
func (s *TravelService) Create(input TravelInput) (*models.TravelPlace, error) {
	place := &models.TravelPlace{}
	if err := applyTravelInput(place, input); err != nil {
		return nil, err
	}
	if err := s.ensureUnique(place, 0); err != nil {
		return nil, err
	}
	if err := s.repo.Create(place); err != nil {
		return nil, err
	}
	return place, nil
}

// Update 更新足迹
func (s *TravelService) Update(id uint, input TravelInput) (*models.TravelPlace, error) {
	place, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if place == nil {
		return nil, ErrNotFound
	}
	if err := applyTravelInput(place, input); err != nil {
		return nil, err
	}
	if err := s.ensureUnique(place, id); err != nil {
		return nil, err
	}
	if err := s.repo.Update(place); err != nil {
		return nil, err
	}
	return place, nil
}

// Delete 删除足迹
func (s *TravelService) Delete(id uint) error {
	place, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if place == nil {
		return ErrNotFound
	}
	return s.repo.Delete(id)
}

func (s *TravelService) ensureUnique(place *models.TravelPlace, selfID uint) error {
	existing, err := s.repo.GetByProvinceCity(place.Province, place.City)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return ErrTravelPlaceExists
	}
	return nil
}

func applyTravelInput(place *models.TravelPlace, input TravelInput) error {
	province := strings.TrimSpace(input.Province)
	city := strings.TrimSpace(input.City)
	if province == "" || city == "" {
		return ErrBadTravelPlace
	}
	visitedAt, ok := parseOptionalDate(input.VisitedAt)
	if !ok {
		return ErrBadTravelPlace
	}
	if input.Latitude.Valid && input.Latitude.Decimal.Abs().GreaterThan(maxLatitude) {
		return ErrBadTravelPlace
	}
	if input.Longitude.Valid && input.Longitude.Decimal.Abs().GreaterThan(maxLongitude) {
		return ErrBadTravelPlace
	}

	place.Province = province
	place.City = city
	place.Notes = strings.TrimSpace(input.Notes)
	place.VisitedAt = visitedAt
	place.Latitude = input.Latitude
	place.Longitude = input.Longitude
	place.Cover = strings.TrimSpace(input.Cover)
	place.SortOrder = input.SortOrder
	return nil
}

// GroupTravelPlaces 按省份分组
func GroupTravelPlaces(places []models.TravelPlace) []TravelProvinceGroup {
	index := make(map[string]int)
	groups := make([]TravelProvinceGroup, 0)
	for _, place := range places {
		pos, ok := index[place.Province]
		if !ok {
			pos = len(groups)
			index[place.Province] = pos
			groups = append(groups, TravelProvinceGroup{Province: place.Province, Cities: []TravelCityOutput{}})
		}
		var visitedAt interface{}
		if place.VisitedAt != nil {
			visitedAt = formatDate(place.VisitedAt)
		}
		groups[pos].Cities = append(groups[pos].Cities, TravelCityOutput{
			City:      place.City,
			Notes:     place.Notes,
			VisitedAt: visitedAt,
			Latitude:  place.Latitude,
			Longitude: place.Longitude,
			Cover:     place.Cover,
			SortOrder: place.SortOrder,
		})
		groups[pos].Count++
	}
	sortTravelGroups(groups)
	return groups
}

func sortTravelGroups(groups []TravelProvinceGroup) {
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Province < groups[j].Province
	})
}
