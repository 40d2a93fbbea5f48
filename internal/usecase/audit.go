package usecase

import (
	"context"

	"github.com/DRSN-tech/shop-backend/internal/domain"
)

type auditMetaKey struct{}

// AuditMeta — сведения об акторе запроса для журнала аудита.
// Заполняется HTTP middleware и переносится через контекст.
type AuditMeta struct {
	UserID    *int64
	IPAddress string
	UserAgent string
}

func WithAuditMeta(ctx context.Context, meta AuditMeta) context.Context {
	return context.WithValue(ctx, auditMetaKey{}, meta)
}

func AuditMetaFrom(ctx context.Context) AuditMeta {
	if meta, ok := ctx.Value(auditMetaKey{}).(AuditMeta); ok {
		return meta
	}
	return AuditMeta{}
}

// secretFields — поля, которые никогда не попадают в метаданные аудита.
var secretFields = []string{"password", "remember_token"}

// filterSecrets возвращает копию диффа без секретных полей.
func filterSecrets(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}

	filtered := make(map[string]any, len(data))
	for k, v := range data {
		filtered[k] = v
	}
	for _, field := range secretFields {
		delete(filtered, field)
	}

	return filtered
}

// newAuditLog собирает запись аудита из контекста запроса и диффа изменений.
func newAuditLog(ctx context.Context, action domain.AuditAction, entityType string, entityID int64, changes map[string]any) *domain.AuditLog {
	meta := AuditMetaFrom(ctx)

	metadata := make(map[string]any, len(changes))
	for k, v := range changes {
		if m, ok := v.(map[string]any); ok {
			metadata[k] = filterSecrets(m)
			continue
		}
		metadata[k] = v
	}

	return &domain.AuditLog{
		UserID:     meta.UserID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   metadata,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	}
}
