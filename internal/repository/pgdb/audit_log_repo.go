package pgdb

import (
	"context"
	"encoding/json"

	"github.com/DRSN-tech/shop-backend/internal/domain"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/tr"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// AuditLogRepo пишет append-only журнал изменений в PostgreSQL.
type AuditLogRepo struct {
	pool *pgxpool.Pool
}

func NewAuditLogRepo(pool *pgxpool.Pool) *AuditLogRepo {
	return &AuditLogRepo{pool: pool}
}

func (a *AuditLogRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO audit_logs (user_id, action, entity_type, entity_id, metadata, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`

	_, err = tr.Tr(ctx, a.pool).Exec(ctx, query,
		entry.UserID,
		string(entry.Action),
		entry.EntityType,
		entry.EntityID,
		metadata,
		entry.IPAddress,
		entry.UserAgent,
	)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
