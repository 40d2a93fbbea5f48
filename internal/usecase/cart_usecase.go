package usecase

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/DRSN-tech/shop-backend/internal/domain"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/logger"
	"github.com/avito-tech/go-transaction-manager/trm/v2"
	"github.com/google/uuid"
)

// CartUseCase реализует бизнес-логику корзины и оформления заказа.
// Остаток товара никогда не меняется операциями корзины: единственная точка
// списания — создание позиций заказа внутри Checkout.
type CartUseCase struct {
	cartRepo    CartRepository
	productRepo ProductRepository
	orderRepo   OrderRepository
	outboxRepo  OutboxRepository
	auditRepo   AuditLogRepository
	txManager   trm.Manager
	imagesInfra ImagesInfra
	logger      logger.Logger
}

func NewCartUC(
	cartRepo CartRepository,
	productRepo ProductRepository,
	orderRepo OrderRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditLogRepository,
	txManager trm.Manager,
	imagesInfra ImagesInfra,
	logger logger.Logger,
) *CartUseCase {
	return &CartUseCase{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		outboxRepo:  outboxRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		imagesInfra: imagesInfra,
		logger:      logger,
	}
}

// AddItem добавляет товар в активную корзину пользователя, создавая корзину
// при необходимости. Повторное добавление того же товара увеличивает
// количество позиции. Итоговое количество проверяется против текущего остатка.
func (c *CartUseCase) AddItem(ctx context.Context, req *AddCartItemReq) (*CartRes, error) {
	const op = "CartUseCase.AddItem"

	// Валидация до взятия блокировок
	if req.UserID <= 0 {
		return nil, e.Wrap(op, e.ErrUserRequired)
	}
	if req.Quantity < 1 {
		return nil, e.Wrap(op, e.ErrInvalidQuantity)
	}

	var res *CartRes
	err := c.txManager.Do(ctx, func(ctx context.Context) error {
		product, err := c.productRepo.GetForUpdate(ctx, req.ProductID)
		if err != nil {
			return err
		}

		cart, created, err := c.cartRepo.GetOrCreateActive(ctx, req.UserID)
		if err != nil {
			return err
		}
		if created {
			if err := c.auditRepo.Create(ctx, newAuditLog(ctx, domain.AuditActionCreated, "cart", cart.ID, map[string]any{
				"after": map[string]any{"user_id": cart.UserID, "status": string(cart.Status)},
			})); err != nil {
				return err
			}
		}

		item, err := c.cartRepo.GetItemForUpdate(ctx, cart.ID, req.ProductID)
		if err != nil {
			return err
		}

		newQuantity := req.Quantity
		if item != nil {
			newQuantity += item.Quantity
		}

		if newQuantity > product.StockQuantity {
			return e.ErrStockExceeded
		}

		if err := c.cartRepo.UpsertItem(ctx, cart.ID, req.ProductID, newQuantity); err != nil {
			return err
		}

		if err := c.auditRepo.Create(ctx, newAuditLog(ctx, domain.AuditActionUpdated, "cart", cart.ID, map[string]any{
			"after": map[string]any{"product_id": req.ProductID, "quantity": newQuantity},
		})); err != nil {
			return err
		}

		refreshed, err := c.cartRepo.GetWithItems(ctx, cart.ID)
		if err != nil {
			return err
		}

		res = NewCartRes(refreshed, c.imagesInfra.ObjectURL)
		return nil
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return res, nil
}

// RemoveItem удаляет позицию из активной корзины. Операция идемпотентна:
// отсутствие корзины или позиции — не ошибка. Опустевшая корзина удаляется.
func (c *CartUseCase) RemoveItem(ctx context.Context, req *RemoveCartItemReq) error {
	const op = "CartUseCase.RemoveItem"

	if req.UserID <= 0 {
		return e.Wrap(op, e.ErrUserRequired)
	}

	err := c.txManager.Do(ctx, func(ctx context.Context) error {
		cart, err := c.cartRepo.GetActiveForUpdate(ctx, req.UserID)
		if err != nil {
			return err
		}
		if cart == nil {
			return nil
		}

		item, err := c.cartRepo.GetItemForUpdate(ctx, cart.ID, req.ProductID)
		if err != nil {
			return err
		}
		if item == nil {
			return nil
		}

		if err := c.cartRepo.SoftDeleteItem(ctx, item.ID); err != nil {
			return err
		}

		if err := c.auditRepo.Create(ctx, newAuditLog(ctx, domain.AuditActionUpdated, "cart", cart.ID, map[string]any{
			"before": map[string]any{"product_id": item.ProductID, "quantity": item.Quantity},
		})); err != nil {
			return err
		}

		remaining, err := c.cartRepo.CountLiveItems(ctx, cart.ID)
		if err != nil {
			return err
		}

		if remaining == 0 {
			if err := c.cartRepo.SoftDeleteCart(ctx, cart.ID); err != nil {
				return err
			}
			if err := c.auditRepo.Create(ctx, newAuditLog(ctx, domain.AuditActionDeleted, "cart", cart.ID, map[string]any{
				"before": map[string]any{"status": string(domain.CartStatusActive)},
			})); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

// GetActiveCart возвращает активную корзину пользователя с позициями и
// текущими ценами. Отсутствие корзины отдаётся как пустое представление.
func (c *CartUseCase) GetActiveCart(ctx context.Context, userID int64) (*CartRes, error) {
	const op = "CartUseCase.GetActiveCart"

	if userID <= 0 {
		return nil, e.Wrap(op, e.ErrUserRequired)
	}

	var res *CartRes
	err := c.txManager.Do(ctx, func(ctx context.Context) error {
		cart, err := c.cartRepo.GetActiveForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if cart == nil {
			res = &CartRes{Status: string(domain.CartStatusActive), Items: []CartItemRes{}}
			return nil
		}

		refreshed, err := c.cartRepo.GetWithItems(ctx, cart.ID)
		if err != nil {
			return err
		}

		res = NewCartRes(refreshed, c.imagesInfra.ObjectURL)
		return nil
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return res, nil
}

// Checkout атомарно превращает активную непустую корзину в заказ:
// фиксирует цену каждой позиции, списывает остатки и помечает корзину
// оформленной. Любая ошибка откатывает транзакцию целиком — корзина
// остаётся активной и пригодной для повтора.
func (c *CartUseCase) Checkout(ctx context.Context, userID int64) (*OrderRes, error) {
	const op = "CartUseCase.Checkout"

	if userID <= 0 {
		return nil, e.Wrap(op, e.ErrUserRequired)
	}

	var res *OrderRes
	err := c.txManager.Do(ctx, func(ctx context.Context) error {
		cart, err := c.cartRepo.GetActiveForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if cart == nil {
			return e.ErrNoActiveCart
		}
		if !cart.IsActive() {
			return e.ErrCartNotActive
		}

		items, err := c.cartRepo.ListItems(ctx, cart.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return e.ErrEmptyCart
		}

		products, err := c.lockProducts(ctx, items)
		if err != nil {
			return err
		}

		// Снэпшот цен: итог заказа считается по зафиксированным ценам
		// позиций, а не по живым ценам товаров.
		var total int64
		orderItems := make([]domain.OrderItem, 0, len(items))
		for _, item := range items {
			product, ok := products[item.ProductID]
			if !ok {
				return e.ErrProductNotFound
			}
			if item.Quantity > product.StockQuantity {
				return e.ErrStockExceeded
			}

			orderItems = append(orderItems, domain.OrderItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: product.Price,
			})
			total += int64(item.Quantity) * product.Price
		}

		now := time.Now().UTC()
		if err := c.cartRepo.MarkOrdered(ctx, cart.ID, now); err != nil {
			return err
		}

		order := domain.NewOrder(userID, &cart.ID)
		order.TotalAmount = total
		order.Items = orderItems

		created, err := c.orderRepo.Create(ctx, order)
		if err != nil {
			return err
		}

		// Списание остатков и фиксация пересечений порога: уменьшение
		// происходит до оценки, оценка — до постановки уведомления.
		for _, item := range items {
			product := products[item.ProductID]
			before := product.StockQuantity

			after, err := c.productRepo.DecrementStock(ctx, item.ProductID, item.Quantity)
			if err != nil {
				return err
			}

			if product.CrossedLowStock(before, after) && product.LowStockNotifiedAt == nil {
				if err := c.enqueueLowStock(ctx, product, after, now); err != nil {
					return err
				}
			}
		}

		if err := c.enqueueOrderPlaced(ctx, created, len(items)); err != nil {
			return err
		}

		if err := c.auditRepo.Create(ctx, newAuditLog(ctx, domain.AuditActionCreated, "order", created.ID, map[string]any{
			"after": map[string]any{"cart_id": cart.ID, "total_amount": created.TotalAmount},
		})); err != nil {
			return err
		}

		loaded, err := c.orderRepo.GetWithItems(ctx, created.ID)
		if err != nil {
			return err
		}

		res = NewOrderRes(loaded)
		return nil
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return res, nil
}

// ListCarts возвращает страницу корзин для админки.
func (c *CartUseCase) ListCarts(ctx context.Context, req *ListCartsReq) (*ListCartsRes, error) {
	const op = "CartUseCase.ListCarts"

	normalizePage(&req.Page, &req.PerPage)

	carts, total, err := c.cartRepo.List(ctx, req)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	res := &ListCartsRes{
		Carts:   make([]CartRes, 0, len(carts)),
		Total:   total,
		Page:    req.Page,
		PerPage: req.PerPage,
	}
	for i := range carts {
		res.Carts = append(res.Carts, *NewCartRes(&carts[i], c.imagesInfra.ObjectURL))
	}

	return res, nil
}

// lockProducts блокирует все товары корзины одним запросом в порядке id.
func (c *CartUseCase) lockProducts(ctx context.Context, items []domain.CartItem) (map[int64]*domain.Product, error) {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	products, err := c.productRepo.LockByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]*domain.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}

	return byID, nil
}

// enqueueLowStock проставляет отметку уведомления и кладёт событие в outbox
// в той же транзакции: отметка и постановка либо фиксируются вместе,
// либо откатываются вместе.
func (c *CartUseCase) enqueueLowStock(ctx context.Context, product *domain.Product, after int, now time.Time) error {
	if err := c.productRepo.MarkLowStockNotified(ctx, product.ID, now); err != nil {
		return err
	}

	payload, err := json.Marshal(&LowStockPayload{
		ProductID:     product.ID,
		ProductName:   product.Name,
		StockQuantity: after,
		Threshold:     product.LowStockThreshold,
	})
	if err != nil {
		return err
	}

	_, err = c.outboxRepo.Create(ctx, NewOutboxEvent(uuid.NewString(), EventLowStock, product.ID, payload))
	return err
}

func (c *CartUseCase) enqueueOrderPlaced(ctx context.Context, order *domain.Order, itemsCount int) error {
	payload, err := json.Marshal(&OrderPlacedPayload{
		OrderID:     order.ID,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		ItemsCount:  itemsCount,
	})
	if err != nil {
		return err
	}

	_, err = c.outboxRepo.Create(ctx, NewOutboxEvent(uuid.NewString(), EventOrderPlaced, order.ID, payload))
	return err
}

// normalizePage приводит параметры пагинации к допустимым значениям.
func normalizePage(page, perPage *int) {
	const defaultPerPage = 10

	if *page < 1 {
		*page = 1
	}
	if *perPage < 1 {
		*perPage = defaultPerPage
	}
}
