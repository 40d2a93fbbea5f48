package http

import (
	"net/http"
	"time"

	"github.com/DRSN-tech/shop-backend/internal/usecase"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/logger"
)

type DashboardHandler struct {
	reportUsecase usecase.ReportUC
	logger        logger.Logger
}

func NewDashboardHandler(reportUsecase usecase.ReportUC, logger logger.Logger) *DashboardHandler {
	return &DashboardHandler{reportUsecase: reportUsecase, logger: logger}
}

// getDashboard
//
//	@Summary		Дашборд магазина
//	@Description	Счётчики, динамика заказов за две недели и последние заказы. Снэпшот кэшируется на 5 минут
//	@Tags			admin
//	@Produce		json
//	@Success		200	{object}	usecase.DashboardRes
//	@Router			/admin/dashboard [get]
func (d *DashboardHandler) getDashboard(w http.ResponseWriter, r *http.Request) {
	res, err := d.reportUsecase.GetDashboard(r.Context())
	if err != nil {
		d.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, res)
}

// sendDailyReport
//
//	@Summary		Ручной запуск дневного отчёта
//	@Description	Отправляет отчёт о продажах за указанную дату (по умолчанию сегодня)
//	@Tags			admin
//	@Produce		json
//	@Param			date	query	string	false	"Дата в формате YYYY-MM-DD"
//	@Success		202
//	@Router			/admin/reports/daily-sales [post]
func (d *DashboardHandler) sendDailyReport(w http.ResponseWriter, r *http.Request) {
	day := time.Now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			WriteError(w, e.ErrStatusBadRequest)
			return
		}
		day = parsed
	}

	if err := d.reportUsecase.SendDailySalesReport(r.Context(), day); err != nil {
		d.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}
