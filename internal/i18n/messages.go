package i18n

import "github.com/openingclouds/internal/constants"

var messages = map[string]map[string]string{
	constants.LocaleZhCN: {
		"error.bad_request":                "请求参数错误",
		"error.unauthorized":               "未授权",
		"error.forbidden":                  "没有权限访问该资源",
		"error.not_found":                  "资源不存在",
		"error.internal":                   "服务器内部错误",
		"error.jwt_secret_missing":         "服务端未配置 JWT 密钥",
		"error.auth_header_missing":        "缺少 Authorization 请求头",
		"error.auth_header_invalid":        "Authorization 格式错误",
		"error.token_invalid":              "登录凭证无效",
		"error.token_revoked":              "登录凭证已失效，请重新登录",
		"error.admin_id_invalid":           "管理员 ID 无效",
		"error.admin_id_type_invalid":      "管理员 ID 类型错误",
		"error.admin_login_invalid":        "用户名或密码错误",
		"error.login_failed":               "登录失败",
		"error.login_too_many":             "登录尝试过于频繁，请 %d 秒后再试",
		"error.rate_limited":               "请求过于频繁，请 %d 秒后再试",
		"error.rate_limit_unavailable":     "限流服务暂不可用",
		"error.password_old_invalid":       "原密码错误",
		"error.password_weak":              "密码强度不足",
		"error.password_min_length":        "密码长度至少 %d 位",
		"error.password_require_upper":     "密码需包含大写字母",
		"error.password_require_lower":     "密码需包含小写字母",
		"error.password_require_number":    "密码需包含数字",
		"error.password_require_special":   "密码需包含特殊字符",
		"error.password_contains_username": "密码不能包含账号名",
		"error.save_failed":                "保存失败",
		"error.delete_failed":              "删除失败",
		"error.fetch_failed":               "查询失败",
		"error.admin_not_found":            "管理员不存在",
		"error.admin_exists":               "管理员已存在",
		"error.role_invalid":               "角色无效",
		"error.post_not_found":             "文章不存在",
		"error.post_fetch_failed":          "获取文章失败",
		"error.slug_exists":                "slug 已存在",
		"error.slug_required":              "slug 或 title 至少提供一个",
		"error.category_invalid":           "分类无效",
		"error.timeline_invalid":           "时间线参数无效",
		"error.travel_exists":              "该省市已存在",
		"error.travel_invalid":             "旅行足迹参数无效",
		"error.social_invalid":             "社交关系参数无效",
		"error.highlight_stage_not_found":  "高光阶段不存在",
		"error.highlight_invalid":          "高光时刻参数无效",
		"error.sync_failed":                "同步失败",
		"error.sync_token_invalid":         "同步令牌无效",
		"error.vault_locked":               "笔记库正在同步中，请稍后再试",
		"error.vault_path_invalid":         "笔记库路径无效",
		"error.index_failed":               "文档池索引失败",
		"error.queue_unavailable":          "异步队列未启用",
		"error.task_duplicate":             "相同任务已在队列中",
		"error.search_unavailable":         "全文检索未启用",
		"error.search_failed":              "检索失败",
		"message.sync_skipped_mode":        "mode=skip 且文章已存在，已跳过",
		"message.sync_dry_run":             "dry-run 仅预览，不写入数据库",
		"message.index_queued":             "文档池索引任务已加入队列",
		"message.vault_sync_queued":        "笔记库同步任务已加入队列",
	},
	constants.LocaleEnUS: {
		"error.bad_request":                "Invalid request",
		"error.unauthorized":               "Unauthorized",
		"error.forbidden":                  "Forbidden",
		"error.not_found":                  "Not found",
		"error.internal":                   "Internal server error",
		"error.jwt_secret_missing":         "JWT secret is not configured",
		"error.auth_header_missing":        "Missing Authorization header",
		"error.auth_header_invalid":        "Invalid Authorization header",
		"error.token_invalid":              "Invalid token",
		"error.token_revoked":              "Token revoked, please sign in again",
		"error.admin_id_invalid":           "Invalid admin id",
		"error.admin_id_type_invalid":      "Invalid admin id type",
		"error.admin_login_invalid":        "Invalid username or password",
		"error.login_failed":               "Login failed",
		"error.login_too_many":             "Too many login attempts, retry in %d seconds",
		"error.rate_limited":               "Too many requests, retry in %d seconds",
		"error.rate_limit_unavailable":     "Rate limiter unavailable",
		"error.password_old_invalid":       "Old password is incorrect",
		"error.password_weak":              "Password is too weak",
		"error.password_min_length":        "Password must be at least %d characters",
		"error.password_require_upper":     "Password must contain an uppercase letter",
		"error.password_require_lower":     "Password must contain a lowercase letter",
		"error.password_require_number":    "Password must contain a digit",
		"error.password_require_special":   "Password must contain a special character",
		"error.password_contains_username": "Password must not contain the username",
		"error.save_failed":                "Save failed",
		"error.delete_failed":              "Delete failed",
		"error.fetch_failed":               "Fetch failed",
		"error.admin_not_found":            "Admin not found",
		"error.admin_exists":               "Admin already exists",
		"error.role_invalid":               "Invalid role",
		"error.post_not_found":             "Post not found",
		"error.post_fetch_failed":          "Failed to fetch posts",
		"error.slug_exists":                "Slug already exists",
		"error.slug_required":              "Either slug or title is required",
		"error.category_invalid":           "Invalid category",
		"error.timeline_invalid":           "Invalid timeline node",
		"error.travel_exists":              "Province and city already exist",
		"error.travel_invalid":             "Invalid travel place",
		"error.social_invalid":             "Invalid social friend",
		"error.highlight_stage_not_found":  "Highlight stage not found",
		"error.highlight_invalid":          "Invalid highlight",
		"error.sync_failed":                "Sync failed",
		"error.sync_token_invalid":         "Invalid sync token",
		"error.vault_locked":               "Vault sync in progress, retry later",
		"error.vault_path_invalid":         "Invalid vault path",
		"error.index_failed":               "Document pool index failed",
		"error.queue_unavailable":          "Queue is disabled",
		"error.task_duplicate":             "An identical task is already queued",
		"error.search_unavailable":         "Search is disabled",
		"error.search_failed":              "Search failed",
		"message.sync_skipped_mode":        "mode=skip and post exists, skipped",
		"message.sync_dry_run":             "dry-run preview, nothing written",
		"message.index_queued":             "Document index task queued",
		"message.vault_sync_queued":        "Vault sync task queued",
	},
}
