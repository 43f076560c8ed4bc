package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin            = "admin"
	RoleLogisticsManager = "logistics_manager"
	RoleInstaller        = "installer"
	RoleFinanceManager   = "finance_manager"
	RoleTenderManager    = "tender_manager"
)

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleLogisticsManager, RoleInstaller, RoleFinanceManager, RoleTenderManager:
		return true
	}
	return false
}

type User struct {
	ID       uuid.UUID `db:"id" json:"id"`
	Username string    `db:"username" json:"username"`
	Email    string    `db:"email" json:"email"`
	Roles    []string  `db:"roles" json:"roles"`
	IsActive bool      `db:"is_active" json:"isActive"`
}

type AuditEntry struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	UserID     *uuid.UUID `db:"user_id" json:"userId,omitempty"`
	Action     string     `db:"action" json:"action"`
	EntityType string     `db:"entity_type" json:"entityType"`
	EntityID   *uuid.UUID `db:"entity_id" json:"entityId,omitempty"`
	OldValues  any        `db:"old_values" json:"oldValues"`
	NewValues  any        `db:"new_values" json:"newValues"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
}
