package usecase

import (
	"context"

	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/logger"
)

// OrderUseCase отдаёт историю заказов; заказы создаются только в Checkout.
type OrderUseCase struct {
	orderRepo OrderRepository
	logger    logger.Logger
}

func NewOrderUC(orderRepo OrderRepository, logger logger.Logger) *OrderUseCase {
	return &OrderUseCase{
		orderRepo: orderRepo,
		logger:    logger,
	}
}

// ListForUser возвращает страницу заказов пользователя, новые сверху.
func (o *OrderUseCase) ListForUser(ctx context.Context, userID int64, page int) (*ListOrdersRes, error) {
	const op = "OrderUseCase.ListForUser"

	if userID <= 0 {
		return nil, e.Wrap(op, e.ErrUserRequired)
	}

	const perPage = 6
	if page < 1 {
		page = 1
	}

	orders, total, err := o.orderRepo.ListForUser(ctx, userID, page, perPage)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	res := &ListOrdersRes{
		Orders:  make([]OrderRes, 0, len(orders)),
		Total:   total,
		Page:    page,
		PerPage: perPage,
	}
	for i := range orders {
		res.Orders = append(res.Orders, *NewOrderRes(&orders[i]))
	}

	return res, nil
}

// List возвращает страницу заказов для админки с поиском по номеру заказа,
// имени или email покупателя.
func (o *OrderUseCase) List(ctx context.Context, req *ListOrdersReq) (*ListOrdersRes, error) {
	const op = "OrderUseCase.List"

	normalizePage(&req.Page, &req.PerPage)

	orders, total, err := o.orderRepo.List(ctx, req)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	res := &ListOrdersRes{
		Orders:  make([]OrderRes, 0, len(orders)),
		Total:   total,
		Page:    req.Page,
		PerPage: req.PerPage,
	}
	for i := range orders {
		res.Orders = append(res.Orders, *NewOrderRes(&orders[i]))
	}

	return res, nil
}
