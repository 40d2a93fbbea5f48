package http

import (
	"net/http"
	"strconv"

	"github.com/DRSN-tech/shop-backend/internal/usecase"
	"github.com/DRSN-tech/shop-backend/pkg/logger"
)

type OrderHandler struct {
	orderUsecase usecase.OrderUC
	cartUsecase  usecase.CartUC
	logger       logger.Logger
}

func NewOrderHandler(orderUsecase usecase.OrderUC, cartUsecase usecase.CartUC, logger logger.Logger) *OrderHandler {
	return &OrderHandler{orderUsecase: orderUsecase, cartUsecase: cartUsecase, logger: logger}
}

// listOrders
//
//	@Summary		История заказов пользователя
//	@Tags			orders
//	@Produce		json
//	@Param			X-User-ID	header		string	true	"ID пользователя"
//	@Param			page		query		int		false	"Номер страницы"
//	@Success		200			{object}	usecase.ListOrdersRes
//	@Router			/orders [get]
func (o *OrderHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	res, err := o.orderUsecase.ListForUser(r.Context(), identity.UserID, page)
	if err != nil {
		o.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, res)
}

// adminListOrders
//
//	@Summary		Заказы магазина
//	@Description	Поиск по номеру заказа, имени или email покупателя
//	@Tags			admin
//	@Produce		json
//	@Param			search	query		string	false	"Поисковая строка"
//	@Param			page	query		int		false	"Номер страницы"
//	@Success		200		{object}	usecase.ListOrdersRes
//	@Router			/admin/orders [get]
func (o *OrderHandler) adminListOrders(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	res, err := o.orderUsecase.List(r.Context(), &usecase.ListOrdersReq{
		Search:  r.URL.Query().Get("search"),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		o.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, res)
}

// adminListCarts
//
//	@Summary		Корзины магазина
//	@Description	Фильтр по статусу, поиск по владельцу
//	@Tags			admin
//	@Produce		json
//	@Param			status	query		string	false	"Статус корзины"
//	@Param			search	query		string	false	"Поисковая строка"
//	@Param			page	query		int		false	"Номер страницы"
//	@Success		200		{object}	usecase.ListCartsRes
//	@Router			/admin/carts [get]
func (o *OrderHandler) adminListCarts(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	res, err := o.cartUsecase.ListCarts(r.Context(), &usecase.ListCartsReq{
		Status:  r.URL.Query().Get("status"),
		Search:  r.URL.Query().Get("search"),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		o.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, res)
}
