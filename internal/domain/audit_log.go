package domain

import "time"

// AuditAction — тип события аудита.
type AuditAction string

const (
	AuditActionCreated  AuditAction = "created"
	AuditActionUpdated  AuditAction = "updated"
	AuditActionDeleted  AuditAction = "deleted"
	AuditActionRestored AuditAction = "restored"
)

// AuditLog — запись append-only журнала изменений отслеживаемых сущностей.
type AuditLog struct {
	ID         int64
	UserID     *int64
	Action     AuditAction
	EntityType string
	EntityID   int64
	Metadata   map[string]any // before/after диффы без секретов
	IPAddress  string
	UserAgent  string
	CreatedAt  time.Time
}
