package pgdb

import (
	"context"
	"time"

	"github.com/DRSN-tech/shop-backend/internal/usecase"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/tr"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// ReportRepo считает агрегаты дашборда и ежедневного отчёта. Только чтение.
type ReportRepo struct {
	pool *pgxpool.Pool
}

func NewReportRepo(pool *pgxpool.Pool) *ReportRepo {
	return &ReportRepo{pool: pool}
}

func (r *ReportRepo) DashboardCounts(ctx context.Context) (*usecase.DashboardCounts, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM orders WHERE deleted_at IS NULL),
			(SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE deleted_at IS NULL),
			(SELECT COUNT(*) FROM products WHERE deleted_at IS NULL),
			(SELECT COUNT(DISTINCT user_id) FROM orders WHERE deleted_at IS NULL);
	`

	var counts usecase.DashboardCounts
	err := tr.Tr(ctx, r.pool).QueryRow(ctx, query).Scan(
		&counts.Orders, &counts.Revenue, &counts.Products, &counts.Customers,
	)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &counts, nil
}

func (r *ReportRepo) OrdersByDay(ctx context.Context, since time.Time) ([]usecase.DashboardDayStat, error) {
	query := `
		SELECT
			to_char(created_at::date, 'YYYY-MM-DD') AS day,
			COUNT(*),
			COALESCE(SUM(total_amount), 0)
		FROM orders
		WHERE deleted_at IS NULL AND created_at >= $1
		GROUP BY day
		ORDER BY day;
	`

	rows, err := tr.Tr(ctx, r.pool).Query(ctx, query, since)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	stats := make([]usecase.DashboardDayStat, 0)
	for rows.Next() {
		var stat usecase.DashboardDayStat
		if err := rows.Scan(&stat.Date, &stat.Orders, &stat.Revenue); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		stats = append(stats, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return stats, nil
}

func (r *ReportRepo) RecentOrders(ctx context.Context, limit int) ([]usecase.RecentOrder, error) {
	query := `
		SELECT o.id, u.name, o.total_amount, o.created_at
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.deleted_at IS NULL
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT $1;
	`

	rows, err := tr.Tr(ctx, r.pool).Query(ctx, query, limit)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	orders := make([]usecase.RecentOrder, 0, limit)
	for rows.Next() {
		var order usecase.RecentOrder
		if err := rows.Scan(&order.ID, &order.CustomerName, &order.TotalAmount, &order.CreatedAt); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return orders, nil
}

// DailySales собирает итог календарного дня [start, end) и разбивку по товарам.
func (r *ReportRepo) DailySales(ctx context.Context, start, end time.Time) (*usecase.DailySalesReport, error) {
	summary := `
		SELECT
			COUNT(DISTINCT o.id),
			COALESCE(SUM(oi.quantity), 0),
			COALESCE(SUM(oi.quantity * oi.unit_price), 0)
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		WHERE o.deleted_at IS NULL
		  AND o.created_at >= $1 AND o.created_at < $2;
	`

	report := &usecase.DailySalesReport{}
	err := tr.Tr(ctx, r.pool).QueryRow(ctx, summary, start, end).Scan(
		&report.OrdersCount, &report.ItemsSold, &report.GrossRevenue,
	)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	breakdown := `
		SELECT oi.product_id, p.name, SUM(oi.quantity), SUM(oi.quantity * oi.unit_price)
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		JOIN products p ON p.id = oi.product_id
		WHERE o.deleted_at IS NULL
		  AND o.created_at >= $1 AND o.created_at < $2
		GROUP BY oi.product_id, p.name
		ORDER BY SUM(oi.quantity) DESC, p.name;
	`

	rows, err := tr.Tr(ctx, r.pool).Query(ctx, breakdown, start, end)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	for rows.Next() {
		var row usecase.DailySalesRow
		if err := rows.Scan(&row.ProductID, &row.ProductName, &row.QtySold, &row.Gross); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		report.Rows = append(report.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return report, nil
}
