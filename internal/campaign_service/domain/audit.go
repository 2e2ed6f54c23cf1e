package domain

import (
	"time"

	"github.com/google/uuid"
)

type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
	AuditActionSend   AuditAction = "send"
	AuditActionImport AuditAction = "import"
)

// AuditLog is one entry of the tenant activity trail.
type AuditLog struct {
	TenantID    uuid.UUID
	EntityName  string
	EntityID    uuid.UUID
	Action      AuditAction
	Values      any
	CreatedByID uuid.UUID
	Timestamp   time.Time
}
