// Package audit records before/after snapshots of entity mutations. The
// writer is transaction-scoped, so an audit entry never survives a rolled
// back mutation.
package audit

import (
	"context"

	"github.com/google/uuid"

	"equiptrack/internal/types"
)

type Writer interface {
	InsertAuditLog(ctx context.Context, entry *types.AuditEntry) error
}

func Log(ctx context.Context, w Writer, userID *uuid.UUID, action string, entityType string, entityID *uuid.UUID, oldValues any, newValues any) error {
	if oldValues == nil {
		oldValues = map[string]any{}
	}
	if newValues == nil {
		newValues = map[string]any{}
	}

	entry := &types.AuditEntry{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		OldValues:  oldValues,
		NewValues:  newValues,
	}
	return w.InsertAuditLog(ctx, entry)
}
