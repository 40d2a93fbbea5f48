package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/shop-backend/internal/cfg"
	v1Http "github.com/DRSN-tech/shop-backend/internal/delivery/v1/http"
	"github.com/DRSN-tech/shop-backend/internal/infrastructure/kafka"
	"github.com/DRSN-tech/shop-backend/internal/infrastructure/mailer"
	minioInfra "github.com/DRSN-tech/shop-backend/internal/infrastructure/minio"
	"github.com/DRSN-tech/shop-backend/internal/infrastructure/outbox"
	"github.com/DRSN-tech/shop-backend/internal/infrastructure/scheduler"
	s3Repo "github.com/DRSN-tech/shop-backend/internal/repository/minio"
	"github.com/DRSN-tech/shop-backend/internal/repository/pgdb"
	pgdbConv "github.com/DRSN-tech/shop-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/shop-backend/internal/repository/redis"
	"github.com/DRSN-tech/shop-backend/internal/usecase"
	"github.com/DRSN-tech/shop-backend/pkg/clients"
	"github.com/DRSN-tech/shop-backend/pkg/closer"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/logger"
	"github.com/DRSN-tech/shop-backend/pkg/postgres"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

// App собирает зависимости и управляет жизненным циклом приложения.
type App struct {
	cfg     *config.Config
	logger  logger.Logger
	closer  *closer.Closer
	httpSrv *v1Http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	cl := closer.NewCloser(2 * time.Second)

	db, err := initPGDB(log, cfg)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cl.Add(func(ctx context.Context) error {
		db.Close()
		log.Infof("postgres pool closed")
		return nil
	})

	prodConv := pgdbConv.ProductConverter{}
	cartConv := pgdbConv.CartConverter{}
	orderConv := pgdbConv.OrderConverter{}
	outboxConv := pgdbConv.OutboxEventConverter{}

	productRepo := pgdb.NewProductRepo(db.Pool, prodConv)
	cartRepo := pgdb.NewCartRepo(db.Pool, cartConv, prodConv)
	orderRepo := pgdb.NewOrderRepo(db.Pool, orderConv)
	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool, outboxConv)
	auditRepo := pgdb.NewAuditLogRepo(db.Pool)
	reportRepo := pgdb.NewReportRepo(db.Pool)

	minioClient, err := clients.NewMinIOClient(cfg)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minioCtx, minioCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := clients.EnsureBucket(minioCtx, minioClient, cfg.Minio.BucketName); err != nil {
		minioCancel()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	minioCancel()

	imageRepo := s3Repo.NewImageRepo(minioClient, cfg.Minio)

	redisClient := clients.NewRedisClient(cfg.Redis)
	redisCtx, redisCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer redisCancel()
	if err := redisClient.Ping(redisCtx); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cl.Add(func(ctx context.Context) error {
		return redisClient.Client.Close()
	})
	cacheRepo := redis.NewCacheRepo(redisClient, cfg.Redis, log)

	producer, err := kafka.NewProducer(log, cfg.Kafka)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if err := producer.EnsureTopic(10 * time.Second); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cl.Add(func(ctx context.Context) error {
		return producer.Close()
	})

	mail := mailer.NewMailer(cfg.Smtp, log)

	// Контекст фоновых задач живёт до соответствующей функции closer'а
	backgroundCtx, backgroundCancel := context.WithCancel(context.Background())

	imagesInfra := minioInfra.NewMinioInfrastructure(imageRepo, cfg.Minio, log, backgroundCtx)
	cl.Add(func(ctx context.Context) error {
		return imagesInfra.WaitForCleanup(ctx)
	})

	txManager := manager.Must(trmpgx.NewDefaultFactory(db.Pool))

	cartUC := usecase.NewCartUC(cartRepo, productRepo, orderRepo, outboxRepo, auditRepo, txManager, imagesInfra, log)
	productUC := usecase.NewProductUC(productRepo, auditRepo, txManager, imagesInfra, log)
	orderUC := usecase.NewOrderUC(orderRepo, log)
	reportUC := usecase.NewReportUC(reportRepo, cacheRepo, mail, log)

	worker := outbox.NewWorker(outboxRepo, log, producer, mail, db.Dsn)
	worker.Start(backgroundCtx)
	cl.Add(func(ctx context.Context) error {
		backgroundCancel()
		worker.Stop()
		log.Infof("outbox worker stopped")
		return nil
	})

	sched := scheduler.NewScheduler(reportUC, cfg.Jobs, log)
	if err := sched.Start(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cl.Add(func(ctx context.Context) error {
		sched.Stop()
		log.Infof("scheduler stopped")
		return nil
	})

	r := chi.NewRouter()
	router := v1Http.NewRouter(r, log)
	router.Init(productUC, cartUC, orderUC, reportUC)

	httpSrv := v1Http.NewServer(r, cfg.Http)
	cl.Add(func(ctx context.Context) error {
		return httpSrv.Stop(ctx)
	})

	return &App{
		cfg:     cfg,
		logger:  log,
		closer:  cl,
		httpSrv: httpSrv,
	}, nil
}

// Run запускает HTTP-сервер и блокируется до сигнала завершения
// или фатальной ошибки сервера.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Errorf(err, "HTTP server failed")
			errCh <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "HTTP server fatal error")
	case <-shutdown:
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.closer.Close(shutdownCtx); err != nil {
		a.logger.Warnf("shutdown finished with errors: %v", err)
	} else {
		a.logger.Infof("Application shutdown complete")
	}

	return appErr
}

func initPGDB(logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		logger.Errorf(err, "failed to run migrations")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.Ping(); err != nil {
		logger.Errorf(err, "failed to ping database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
