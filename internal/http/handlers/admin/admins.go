package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/openingclouds/internal/http/handlers/shared"
	"github.com/openingclouds/internal/http/response"
	"github.com/openingclouds/internal/logger"
	"github.com/openingclouds/internal/models"
	"github.com/openingclouds/internal/repository"
	"github.com/openingclouds/internal/service"

	"github.com/gin-gonic/gin"
)

type createAdminPayload struct {
	Username string   `json:"username" binding:"required"`
	Password string   `json:"password" binding:"required"`
	IsSuper  *bool    `json:"is_super"`
	Roles    []string `json:"roles"`
}

type setAdminRolesPayload struct {
	Roles []string `json:"roles"`
}

// ListAdmins 管理员列表
func (h *Handler) ListAdmins(c *gin.Context) {
	admins, err := h.AuthService.ListAdmins()
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	type adminItem struct {
		models.Admin
		Roles []string `json:"roles"`
	}
	items := make([]adminItem, 0, len(admins))
	for _, admin := range admins {
		roles, err := h.AuthzService.GetAdminRoles(admin.ID)
		if err != nil {
			respondError(c, response.CodeInternal, "error.fetch_failed", err)
			return
		}
		items = append(items, adminItem{Admin: admin, Roles: roles})
	}
	response.Success(c, items)
}

// CreateAdmin 创建管理员，可同时分配角色
func (h *Handler) CreateAdmin(c *gin.Context) {
	var req createAdminPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	isSuper := req.IsSuper != nil && *req.IsSuper
	admin, err := h.AuthService.CreateAdmin(req.Username, req.Password, isSuper)
	if err != nil {
		if respondPasswordPolicyError(c, err) {
			return
		}
		respondMappedError(c, err, response.CodeInternal, "error.save_failed",
			handlershared.MappedError{Target: service.ErrInvalidCredentials, Code: response.CodeBadRequest, Key: "error.bad_request"},
		)
		return
	}
	if len(req.Roles) > 0 {
		if err := h.AuthzService.SetAdminRoles(admin.ID, req.Roles); err != nil {
			respondMappedError(c, err, response.CodeInternal, "error.save_failed")
			return
		}
	}

	h.recordAuthzAudit(c, service.AuthzAuditRecordInput{
		OperatorAdminID:  currentAdminID(c),
		OperatorUsername: currentUsername(c),
		TargetAdminID:    &admin.ID,
		TargetUsername:   admin.Username,
		Action:           models.AuthzAuditActionAdminCreate,
		Role:             strings.Join(req.Roles, ","),
		Object:           "/admin/admins",
		Method:           "POST",
		RequestID:        currentRequestID(c),
		Detail: models.JSON{
			"target_admin_id": admin.ID,
			"target_username": admin.Username,
			"is_super":        admin.IsSuper,
			"roles":           req.Roles,
		},
	})

	logger.Infow("admin_created",
		"operator_admin_id", currentAdminID(c),
		"target_admin_id", admin.ID,
		"target_username", admin.Username,
		"is_super", admin.IsSuper,
	)
	response.Success(c, admin)
}

// GetAdminRoles 获取管理员角色
func (h *Handler) GetAdminRoles(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if _, err := h.AuthService.GetAdmin(id); err != nil {
		respondMappedError(c, err, response.CodeInternal, "error.fetch_failed",
			handlershared.MappedError{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.admin_not_found"},
		)
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(id)
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.Success(c, gin.H{"admin_id": id, "roles": roles})
}

// SetAdminRoles 覆盖设置管理员角色
func (h *Handler) SetAdminRoles(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req setAdminRolesPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	target, err := h.AuthService.GetAdmin(id)
	if err != nil {
		respondMappedError(c, err, response.CodeInternal, "error.fetch_failed",
			handlershared.MappedError{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.admin_not_found"},
		)
		return
	}
	if err := h.AuthzService.SetAdminRoles(id, req.Roles); err != nil {
		respondMappedError(c, err, response.CodeInternal, "error.save_failed")
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(id)
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}

	if operator, err := h.AuthService.GetAdmin(currentAdminID(c)); err == nil {
		if err := h.AuthzAuditService.RecordRoleAssignment(operator, target, roles, currentRequestID(c)); err != nil {
			requestLog(c).Warnw("admin_authz_audit_record_failed", "error", err, "target_admin_id", id)
		}
	}
	response.Success(c, gin.H{"admin_id": id, "roles": roles})
}

// ListRoles 内置角色列表
func (h *Handler) ListRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.Success(c, roles)
}

// ListAuthzAuditLogs 获取权限审计日志列表
func (h *Handler) ListAuthzAuditLogs(c *gin.Context) {
	page, pageSize := handlershared.PaginationFromQuery(c)

	var operatorAdminID, targetAdminID uint
	for key, dest := range map[string]*uint{"operator_admin_id": &operatorAdminID, "target_admin_id": &targetAdminID} {
		raw := strings.TrimSpace(c.Query(key))
		if raw == "" {
			continue
		}
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		*dest = uint(parsed)
	}
	createdFrom, err := parseTimeNullable(c.Query("created_from"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	createdTo, err := parseTimeNullable(c.Query("created_to"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	items, total, err := h.AuthzAuditService.ListForAdmin(repository.AuthzAuditLogListFilter{
		Page:            page,
		PageSize:        pageSize,
		OperatorAdminID: operatorAdminID,
		TargetAdminID:   targetAdminID,
		Action:          strings.TrimSpace(c.Query("action")),
		Role:            strings.TrimSpace(c.Query("role")),
		Object:          strings.TrimSpace(c.Query("object")),
		Method:          strings.TrimSpace(c.Query("method")),
		CreatedFrom:     createdFrom,
		CreatedTo:       createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, items, handlershared.BuildPagination(page, pageSize, total))
}

func (h *Handler) recordAuthzAudit(c *gin.Context, input service.AuthzAuditRecordInput) {
	if h == nil || h.AuthzAuditService == nil {
		return
	}
	if input.OperatorAdminID == 0 || strings.TrimSpace(input.Action) == "" {
		return
	}
	if err := h.AuthzAuditService.Record(input); err != nil {
		logger.Warnw("admin_authz_audit_record_failed",
			"error", err,
			"action", input.Action,
			"operator_admin_id", input.OperatorAdminID,
		)
	}
}
