package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/DRSN-tech/shop-backend/internal/cfg"
	"github.com/DRSN-tech/shop-backend/internal/usecase"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gopkg.in/gomail.v2"
)

// Mailer отправляет служебные письма магазина через SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	cfg    *cfg.SMTPCfg
	logger logger.Logger
}

func NewMailer(cfg *cfg.SMTPCfg, logger logger.Logger) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		cfg:    cfg,
		logger: logger,
	}
}

// SendLowStockAlert отправляет администратору алерт о низком остатке товара.
func (m *Mailer) SendLowStockAlert(ctx context.Context, payload *usecase.LowStockPayload) error {
	const op = "Mailer.SendLowStockAlert"

	subject := fmt.Sprintf("Low stock alert: %s", payload.ProductName)
	body := fmt.Sprintf(
		"Product %q (id %d) is running low.\n\nStock remaining: %d\nThreshold: %d\n",
		payload.ProductName,
		payload.ProductID,
		payload.StockQuantity,
		payload.Threshold,
	)

	if err := m.send(ctx, subject, body); err != nil {
		return e.Wrap(op, err)
	}

	m.logger.Infof("Low stock alert sent. product_id: %d, stock: %d", payload.ProductID, payload.StockQuantity)
	return nil
}

// SendDailySalesReport отправляет сводку продаж за день одним письмом.
func (m *Mailer) SendDailySalesReport(ctx context.Context, report *usecase.DailySalesReport) error {
	const op = "Mailer.SendDailySalesReport"

	date := report.Date.Format("2006-01-02")
	subject := fmt.Sprintf("Daily sales report for %s", date)

	var b strings.Builder
	fmt.Fprintf(&b, "Sales summary for %s\n\n", date)
	fmt.Fprintf(&b, "Orders: %d\n", report.OrdersCount)
	fmt.Fprintf(&b, "Items sold: %d\n", report.ItemsSold)
	fmt.Fprintf(&b, "Gross revenue: %s\n", formatMoney(report.GrossRevenue))

	if len(report.Rows) > 0 {
		b.WriteString("\nBy product:\n")
		for _, row := range report.Rows {
			fmt.Fprintf(&b, "  %s: %d pcs, %s\n", row.ProductName, row.QtySold, formatMoney(row.Gross))
		}
	}

	if err := m.send(ctx, subject, b.String()); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

func (m *Mailer) send(ctx context.Context, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", m.cfg.AdminEmail)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	return m.dialer.DialAndSend(msg)
}

// formatMoney переводит сумму из копеек в строку с двумя знаками.
func formatMoney(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}
