package scheduler

import (
	"context"
	"time"

	"github.com/DRSN-tech/shop-backend/internal/cfg"
	"github.com/DRSN-tech/shop-backend/internal/usecase"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Scheduler запускает фоновые задачи по cron-расписанию.
// Сейчас единственная задача — ежедневный отчёт о продажах.
type Scheduler struct {
	cron     *cron.Cron
	reportUC usecase.ReportUC
	cfg      *cfg.JobsCfg
	logger   logger.Logger
}

func NewScheduler(reportUC usecase.ReportUC, cfg *cfg.JobsCfg, logger logger.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		reportUC: reportUC,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start регистрирует задачи и запускает планировщик.
func (s *Scheduler) Start() error {
	const op = "Scheduler.Start"

	if s.cfg.DailyReportEnabled {
		if _, err := s.cron.AddFunc(s.cfg.DailyReportCron, s.runDailyReport); err != nil {
			return e.Wrap(op, err)
		}
		s.logger.Infof("Daily sales report scheduled. cron: %s", s.cfg.DailyReportCron)
	}

	s.cron.Start()
	return nil
}

// Stop останавливает планировщик и дожидается выполняющихся задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// runDailyReport отправляет отчёт за текущий день. Срабатывает до полуночи,
// поэтому день отчёта — день запуска.
func (s *Scheduler) runDailyReport() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := s.reportUC.SendDailySalesReport(ctx, time.Now().UTC()); err != nil {
		s.logger.Errorf(err, "daily sales report failed")
	}
}
