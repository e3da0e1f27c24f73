package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/openingclouds/internal/models"
)

const authStateCacheTTL = 10 * time.Minute

// AdminAuthState 管理员鉴权快照，JWT 校验优先读取缓存，未命中时回源数据库
// token_invalid_before 为 Unix 秒时间戳，0 表示未设置
type AdminAuthState struct {
	AdminID            uint   `json:"admin_id"`
	Username           string `json:"username"`
	TokenVersion       uint64 `json:"token_version"`
	TokenInvalidBefore int64  `json:"token_invalid_before"`
	IsSuper            bool   `json:"is_super"`
	UpdatedAt          int64  `json:"updated_at"`
}

// AdminLoader 按 ID 读取管理员，未找到时返回 nil
type AdminLoader func(adminID uint) (*models.Admin, error)

// Accepts 令牌版本一致且签发时间不早于失效时间点
func (s *AdminAuthState) Accepts(tokenVersion uint64, issuedAt time.Time) bool {
	if s == nil || s.TokenVersion != tokenVersion {
		return false
	}
	if s.TokenInvalidBefore <= 0 {
		return true
	}
	if issuedAt.IsZero() {
		return false
	}
	return issuedAt.Unix() >= s.TokenInvalidBefore
}

func adminAuthStateKey(adminID uint) string {
	return fmt.Sprintf("auth:admin:%d", adminID)
}

// BuildAdminAuthState 从管理员模型构建鉴权快照
func BuildAdminAuthState(admin *models.Admin) *AdminAuthState {
	if admin == nil {
		return nil
	}
	state := &AdminAuthState{
		AdminID:      admin.ID,
		Username:     admin.Username,
		TokenVersion: admin.TokenVersion,
		IsSuper:      admin.IsSuper,
		UpdatedAt:    time.Now().Unix(),
	}
	if admin.TokenInvalidBefore != nil {
		state.TokenInvalidBefore = admin.TokenInvalidBefore.Unix()
	}
	return state
}

// LoadAdminAuthState 读取鉴权快照，缓存未命中或不可用时经 loader 回源并回写
func LoadAdminAuthState(ctx context.Context, adminID uint, loader AdminLoader) (*AdminAuthState, error) {
	if adminID == 0 {
		return nil, nil
	}
	var cached AdminAuthState
	if hit, err := GetJSON(ctx, adminAuthStateKey(adminID), &cached); err == nil && hit {
		return &cached, nil
	}
	if loader == nil {
		return nil, nil
	}
	admin, err := loader(adminID)
	if err != nil || admin == nil {
		return nil, err
	}
	state := BuildAdminAuthState(admin)
	_ = SetAdminAuthState(ctx, state)
	return state, nil
}

// SetAdminAuthState 写入管理员鉴权快照
func SetAdminAuthState(ctx context.Context, state *AdminAuthState) error {
	if state == nil || state.AdminID == 0 {
		return nil
	}
	return SetJSON(ctx, adminAuthStateKey(state.AdminID), state, authStateCacheTTL)
}
