package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/logger"
)

// ReportUseCase собирает дашборд и рассылает ежедневный отчёт о продажах.
type ReportUseCase struct {
	reportRepo ReportRepository
	cacheRepo  DashboardCacheRepository
	mailer     Mailer
	logger     logger.Logger
}

func NewReportUC(
	reportRepo ReportRepository,
	cacheRepo DashboardCacheRepository,
	mailer Mailer,
	logger logger.Logger,
) *ReportUseCase {
	return &ReportUseCase{
		reportRepo: reportRepo,
		cacheRepo:  cacheRepo,
		mailer:     mailer,
		logger:     logger,
	}
}

const (
	dashboardDays         = 14
	dashboardRecentOrders = 10
)

// GetDashboard возвращает снэпшот дашборда. Снэпшот мемоизируется в Redis;
// ошибки кэша логируются и не влияют на ответ.
func (r *ReportUseCase) GetDashboard(ctx context.Context) (*DashboardRes, error) {
	const op = "ReportUseCase.GetDashboard"

	cached, err := r.cacheRepo.Get(ctx)
	if err != nil {
		r.logger.Warnf("Failed to read dashboard cache. error: %v", err)
	}
	if cached != nil {
		return cached, nil
	}

	counts, err := r.reportRepo.DashboardCounts(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	since := time.Now().UTC().AddDate(0, 0, -dashboardDays+1).Truncate(24 * time.Hour)
	byDay, err := r.reportRepo.OrdersByDay(ctx, since)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	recent, err := r.reportRepo.RecentOrders(ctx, dashboardRecentOrders)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	res := &DashboardRes{
		Counts:       *counts,
		OrdersByDay:  byDay,
		RecentOrders: recent,
		GeneratedAt:  time.Now().UTC(),
	}

	if err := r.cacheRepo.Set(ctx, res); err != nil {
		r.logger.Warnf("Failed to store dashboard cache. error: %v", err)
	}

	return res, nil
}

// SendDailySalesReport агрегирует продажи за календарный день и отправляет
// одно письмо-сводку администратору.
func (r *ReportUseCase) SendDailySalesReport(ctx context.Context, day time.Time) error {
	const op = "ReportUseCase.SendDailySalesReport"

	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	report, err := r.reportRepo.DailySales(ctx, start, end)
	if err != nil {
		return e.Wrap(op, err)
	}
	report.Date = start

	if err := r.mailer.SendDailySalesReport(ctx, report); err != nil {
		return e.Wrap(op, err)
	}

	r.logger.Infof(
		"Daily sales report sent. date: %s, orders: %d, items: %d",
		start.Format("2006-01-02"),
		report.OrdersCount,
		report.ItemsSold,
	)

	return nil
}
