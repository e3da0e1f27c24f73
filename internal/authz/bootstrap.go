package authz

import "fmt"

// 预置角色
const (
	RoleReadonlyAuditor = "readonly_auditor"
	RoleEditor          = "editor"
	RoleSyncOperator    = "sync_operator"
)

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds 系统预置角色矩阵
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: RoleReadonlyAuditor,
			Policies: []Policy{
				{Object: "/admin/*", Action: "GET"},
			},
		},
		{
			Role:     RoleEditor,
			Inherits: []string{RoleReadonlyAuditor},
			Policies: []Policy{
				{Object: "/admin/posts", Action: "*"},
				{Object: "/admin/posts/:id", Action: "*"},
				{Object: "/admin/posts/:id/status", Action: "PATCH"},
				{Object: "/admin/timeline", Action: "*"},
				{Object: "/admin/timeline/:id", Action: "*"},
				{Object: "/admin/timeline/reorder", Action: "POST"},
				{Object: "/admin/travel", Action: "*"},
				{Object: "/admin/travel/:id", Action: "*"},
				{Object: "/admin/social", Action: "*"},
				{Object: "/admin/social/:id", Action: "*"},
				{Object: "/admin/highlights/stages", Action: "*"},
				{Object: "/admin/highlights/stages/:id", Action: "*"},
				{Object: "/admin/highlights/stages/:id/items", Action: "POST"},
				{Object: "/admin/highlights/items/:id", Action: "*"},
				{Object: "/admin/highlights/reorder", Action: "POST"},
			},
		},
		{
			Role:     RoleSyncOperator,
			Inherits: []string{RoleReadonlyAuditor},
			Policies: []Policy{
				{Object: "/admin/obsidian-sync", Action: "POST"},
				{Object: "/admin/obsidian-sync/reconcile", Action: "POST"},
				{Object: "/admin/obsidian-sync/vault", Action: "POST"},
				{Object: "/admin/obsidian-documents/index", Action: "POST"},
				{Object: "/admin/search/rebuild", Action: "POST"},
			},
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略，可重复执行
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	for _, seed := range BuiltinRoleSeeds() {
		role, err := s.ensureRole(seed.Role)
		if err != nil {
			return err
		}
		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}
		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			if _, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
	}
	return nil
}
