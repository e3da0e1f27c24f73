package repository

import (
	"testing"
	"time"

	"github.com/openingclouds/internal/models"
)

func TestAdminTouchLastLoginKeepsTokenFields(t *testing.T) {
	db := setupRepositoryTestDB(t)
	if err := db.AutoMigrate(&models.Admin{}); err != nil {
		t.Fatalf("migrate admin failed: %v", err)
	}
	repo := NewAdminRepository(db)
	admin := &models.Admin{Username: "root", PasswordHash: "x", TokenVersion: 3}
	if err := repo.Create(admin); err != nil {
		t.Fatalf("create admin failed: %v", err)
	}

	at := time.Now().Truncate(time.Second)
	if err := repo.TouchLastLogin(admin.ID, at); err != nil {
		t.Fatalf("touch last login failed: %v", err)
	}
	got, err := repo.GetByUsername("  root ")
	if err != nil || got == nil {
		t.Fatalf("get by username failed: %v", err)
	}
	if got.TokenVersion != 3 || got.LastLoginAt == nil || !got.LastLoginAt.Equal(at) {
		t.Fatalf("unexpected admin after touch: %+v", got)
	}
	if missing, err := repo.GetByUsername(""); err != nil || missing != nil {
		t.Fatalf("blank username should return nil, got %+v err=%v", missing, err)
	}
}

func TestAuthzAuditLogRoleFilter(t *testing.T) {
	db := setupRepositoryTestDB(t)
	if err := db.AutoMigrate(&models.AuthzAuditLog{}); err != nil {
		t.Fatalf("migrate audit log failed: %v", err)
	}
	repo := NewAuthzAuditLogRepository(db)
	rows := []models.AuthzAuditLog{
		{OperatorAdminID: 1, Action: models.AuthzAuditActionRolesSet, Role: "editor,sync_operator", Method: "PUT"},
		{OperatorAdminID: 1, Action: models.AuthzAuditActionRolesSet, Role: "readonly_auditor", Method: "PUT"},
		{OperatorAdminID: 2, Action: models.AuthzAuditActionAdminCreate, Role: "syncXoperator", Method: "POST"},
	}
	for i := range rows {
		if err := repo.Create(&rows[i]); err != nil {
			t.Fatalf("create audit log failed: %v", err)
		}
	}

	logs, total, err := repo.ListAdmin(AuthzAuditLogListFilter{Role: "sync_operator", Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("list by role failed: %v", err)
	}
	if total != 1 || len(logs) != 1 || logs[0].ID != rows[0].ID {
		t.Fatalf("role filter mismatch: total=%d logs=%+v", total, logs)
	}

	_, total, err = repo.ListAdmin(AuthzAuditLogListFilter{Method: "put", OperatorAdminID: 1})
	if err != nil || total != 2 {
		t.Fatalf("method filter want 2 got %d err=%v", total, err)
	}
}
