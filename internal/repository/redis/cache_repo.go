package redis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/DRSN-tech/shop-backend/internal/cfg"
	"github.com/DRSN-tech/shop-backend/internal/usecase"
	"github.com/DRSN-tech/shop-backend/pkg/clients"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/logger"
	"github.com/jimlawless/whereami"
	goredis "github.com/redis/go-redis/v9"
)

const dashboardKey = "dashboard:snapshot"

// CacheRepo хранит снэпшот дашборда в Redis с ограниченным TTL.
type CacheRepo struct {
	client *clients.RedisClient
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, cfg *cfg.RedisCfg, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// Get возвращает закэшированный снэпшот либо (nil, nil) при промахе.
func (r *CacheRepo) Get(ctx context.Context) (*usecase.DashboardRes, error) {
	data, err := r.client.Client.Get(ctx, dashboardKey).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var res usecase.DashboardRes
	if err := json.Unmarshal(data, &res); err != nil {
		r.logger.Warnf("Dashboard cache unmarshal failed, dropping key: %v", e.Wrap(whereami.WhereAmI(), err))
		if delErr := r.client.Client.Del(ctx, dashboardKey).Err(); delErr != nil {
			r.logger.Warnf("Redis DEL failed: %v", e.Wrap(whereami.WhereAmI(), delErr))
		}
		return nil, nil
	}

	return &res, nil
}

// Set кэширует снэпшот с TTL из конфигурации.
func (r *CacheRepo) Set(ctx context.Context, res *usecase.DashboardRes) error {
	data, err := json.Marshal(res)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := r.client.Client.Set(ctx, dashboardKey, data, r.cfg.DashboardTTL).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
