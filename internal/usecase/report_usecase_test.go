package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DRSN-tech/shop-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReportRepo struct {
	counts     DashboardCounts
	byDay      []DashboardDayStat
	recent     []RecentOrder
	daily      DailySalesReport
	dailyStart time.Time
	dailyEnd   time.Time
	calls      int
}

func (r *fakeReportRepo) DashboardCounts(_ context.Context) (*DashboardCounts, error) {
	r.calls++
	c := r.counts
	return &c, nil
}

func (r *fakeReportRepo) OrdersByDay(_ context.Context, _ time.Time) ([]DashboardDayStat, error) {
	return r.byDay, nil
}

func (r *fakeReportRepo) RecentOrders(_ context.Context, _ int) ([]RecentOrder, error) {
	return r.recent, nil
}

func (r *fakeReportRepo) DailySales(_ context.Context, start, end time.Time) (*DailySalesReport, error) {
	r.dailyStart = start
	r.dailyEnd = end
	d := r.daily
	return &d, nil
}

type fakeCacheRepo struct {
	stored *DashboardRes
	getErr error
	setErr error
	setCnt int
}

func (c *fakeCacheRepo) Get(_ context.Context) (*DashboardRes, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.stored, nil
}

func (c *fakeCacheRepo) Set(_ context.Context, res *DashboardRes) error {
	c.setCnt++
	if c.setErr != nil {
		return c.setErr
	}
	c.stored = res
	return nil
}

type fakeMailer struct {
	lowStock []*LowStockPayload
	daily    []*DailySalesReport
	sendErr  error
}

func (m *fakeMailer) SendLowStockAlert(_ context.Context, payload *LowStockPayload) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.lowStock = append(m.lowStock, payload)
	return nil
}

func (m *fakeMailer) SendDailySalesReport(_ context.Context, report *DailySalesReport) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.daily = append(m.daily, report)
	return nil
}

func newReportFixture() (*ReportUseCase, *fakeReportRepo, *fakeCacheRepo, *fakeMailer) {
	repo := &fakeReportRepo{
		counts: DashboardCounts{Orders: 3, Revenue: 450000, Products: 7, Customers: 2},
		byDay:  []DashboardDayStat{{Date: "2026-08-31", Orders: 3, Revenue: 450000}},
		recent: []RecentOrder{{ID: 1, CustomerName: "Alice", TotalAmount: 150000}},
	}
	cache := &fakeCacheRepo{}
	mailer := &fakeMailer{}
	uc := NewReportUC(repo, cache, mailer, logger.NewSlogLogger())
	return uc, repo, cache, mailer
}

func TestReportUseCase_GetDashboardCachesSnapshot(t *testing.T) {
	uc, repo, cache, _ := newReportFixture()
	ctx := context.Background()

	res, err := uc.GetDashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Counts.Orders)
	assert.Equal(t, 1, repo.calls)
	assert.Equal(t, 1, cache.setCnt)

	// Повторный запрос отдаётся из кэша без похода в базу
	res2, err := uc.GetDashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, res, res2)
	assert.Equal(t, 1, repo.calls)
}

func TestReportUseCase_GetDashboardIgnoresCacheErrors(t *testing.T) {
	uc, repo, cache, _ := newReportFixture()
	cache.getErr = errors.New("redis down")
	cache.setErr = errors.New("redis down")

	res, err := uc.GetDashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(450000), res.Counts.Revenue)
	assert.Equal(t, 1, repo.calls)
}

func TestReportUseCase_SendDailySalesReport(t *testing.T) {
	uc, repo, _, mailer := newReportFixture()
	repo.daily = DailySalesReport{
		OrdersCount:  2,
		ItemsSold:    5,
		GrossRevenue: 750000,
		Rows:         []DailySalesRow{{ProductID: 1, ProductName: "Teapot", QtySold: 5, Gross: 750000}},
	}

	day := time.Date(2026, 8, 31, 15, 42, 0, 0, time.UTC)
	require.NoError(t, uc.SendDailySalesReport(context.Background(), day))

	// Окно агрегации — календарные сутки UTC
	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), repo.dailyStart)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), repo.dailyEnd)

	require.Len(t, mailer.daily, 1)
	assert.Equal(t, repo.dailyStart, mailer.daily[0].Date)
	assert.Equal(t, int64(2), mailer.daily[0].OrdersCount)
}

func TestReportUseCase_SendDailySalesReportMailerFailure(t *testing.T) {
	uc, _, _, mailer := newReportFixture()
	mailer.sendErr = errors.New("smtp unreachable")

	err := uc.SendDailySalesReport(context.Background(), time.Now().UTC())
	require.Error(t, err)
}
