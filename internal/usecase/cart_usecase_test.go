package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/DRSN-tech/shop-backend/internal/domain"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartUseCase_AddItemCreatesCartAndIncrements(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	product := f.env.addProduct("Teapot", 150000, 10, 2)

	res, err := f.cartUC.AddItem(ctx, &AddCartItemReq{UserID: 1, ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, 2, res.Items[0].Quantity)
	assert.Equal(t, int64(300000), res.TotalPrice)

	// Повторное добавление того же товара увеличивает количество позиции
	res, err = f.cartUC.AddItem(ctx, &AddCartItemReq{UserID: 1, ProductID: product.ID, Quantity: 3})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, 5, res.Items[0].Quantity)
	assert.Equal(t, int64(750000), res.TotalPrice)
	assert.Equal(t, 5, res.TotalItems)

	// Операции корзины остаток не трогают
	assert.Equal(t, 10, f.env.store.products[product.ID].StockQuantity)

	// Обе операции прошли через одну и ту же корзину
	assert.Len(t, f.env.store.carts, 1)
}

func TestCartUseCase_AddItemRejectsOverStock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	product := f.env.addProduct("Mug", 50000, 5, 0)

	_, err := f.cartUC.AddItem(ctx, &AddCartItemReq{UserID: 1, ProductID: product.ID, Quantity: 4})
	require.NoError(t, err)

	// Итоговое количество 4+2 превысило бы остаток 5
	_, err = f.cartUC.AddItem(ctx, &AddCartItemReq{UserID: 1, ProductID: product.ID, Quantity: 2})
	require.ErrorIs(t, err, e.ErrStockExceeded)

	res, err := f.cartUC.GetActiveCart(ctx, 1)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, 4, res.Items[0].Quantity)
}

func TestCartUseCase_AddItemValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	product := f.env.addProduct("Plate", 30000, 3, 0)

	_, err := f.cartUC.AddItem(ctx, &AddCartItemReq{UserID: 0, ProductID: product.ID, Quantity: 1})
	require.ErrorIs(t, err, e.ErrUserRequired)

	_, err = f.cartUC.AddItem(ctx, &AddCartItemReq{UserID: 1, ProductID: product.ID, Quantity: 0})
	require.ErrorIs(t, err, e.ErrInvalidQuantity)

	_, err = f.cartUC.AddItem(ctx, &AddCartItemReq{UserID: 1, ProductID: 999, Quantity: 1})
	require.ErrorIs(t, err, e.ErrProductNotFound)

	// Ни одна корзина не появилась
	assert.Empty(t, f.env.store.carts)
}

func TestCartUseCase_GetActiveCartWithoutCart(t *testing.T) {
	f := newFixture()

	res, err := f.cartUC.GetActiveCart(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, string(domain.CartStatusActive), res.Status)
	assert.Empty(t, res.Items)
	assert.Zero(t, res.TotalPrice)

	// Чтение корзину не создаёт
	assert.Empty(t, f.env.store.carts)
}

func TestCartUseCase_RemoveItemIsIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	teapot := f.env.addProduct("Teapot", 150000, 10, 0)
	mug := f.env.addProduct("Mug", 50000, 10, 0)

	// Удаление без корзины и из чужой позиции — не ошибка
	require.NoError(t, f.cartUC.RemoveItem(ctx, &RemoveCartItemReq{UserID: 1, ProductID: teapot.ID}))

	_, err := f.cartUC.AddItem(ctx, &AddCartItemReq{UserID: 1, ProductID: teapot.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = f.cartUC.AddItem(ctx, &AddCartItemReq{UserID: 1, ProductID: mug.ID, Quantity: 2})
	require.NoError(t, err)

	require.NoError(t, f.cartUC.RemoveItem(ctx, &RemoveCartItemReq{UserID: 1, ProductID: teapot.ID}))
	require.NoError(t, f.cartUC.RemoveItem(ctx, &RemoveCartItemReq{UserID: 1, ProductID: teapot.ID}))

	res, err := f.cartUC.GetActiveCart(ctx, 1)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, mug.ID, res.Items[0].ProductID)
}

func TestCartUseCase_RemoveLastItemDeletesCart(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	product := f.env.addProduct("Teapot", 150000, 10, 0)

	_, err := f.cartUC.AddItem(ctx, &AddCartItemReq{UserID: 1, ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, f.cartUC.RemoveItem(ctx, &RemoveCartItemReq{UserID: 1, ProductID: product.ID}))

	for _, cart := range f.env.store.carts {
		assert.Equal(t, domain.CartStatusDeleted, cart.Status)
	}

	// Следующее добавление заводит новую корзину
	_, err = f.cartUC.AddItem(ctx, &AddCartItemReq{UserID: 1, ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)
	assert.Len(t, f.env.store.carts, 2)
}

func TestCartUseCase_CheckoutDecrementsStockAndSnapshotsPrice(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	product := f.env.addProduct("Teapot", 150000, 10, 2)

	_, err := f.cartUC.AddItem(ctx, &AddCartItemReq{UserID: 1, ProductID: product.ID, Quantity: 3})
	require.NoError(t, err)

	// Цена меняется между добавлением и оформлением:
	// заказ фиксирует цену на момент оформления
	f.env.store.products[product.ID].Price = 200000

	res, err := f.cartUC.Checkout(ctx, 1)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, int64(200000), res.Items[0].UnitPrice)
	assert.Equal(t, int64(600000), res.TotalAmount)

	assert.Equal(t, 7, f.env.store.products[product.ID].StockQuantity)

	cart := f.cartRepo.activeCart(1)
	assert.Nil(t, cart)
	for _, c := range f.env.store.carts {
		assert.Equal(t, domain.CartStatusOrdered, c.Status)
		require.NotNil(t, c.OrderedAt)
	}

	placed := f.outboxRepo.eventsOfType(EventOrderPlaced)
	require.Len(t, placed, 1)
	assert.Equal(t, Pending, placed[0].Status)
}

func TestCartUseCase_CheckoutWithoutCart(t *testing.T) {
	f := newFixture()

	_, err := f.cartUC.Checkout(context.Background(), 1)
	require.ErrorIs(t, err, e.ErrNoActiveCart)
}

func TestCartUseCase_CheckoutEmptyCart(t *testing.T) {
	f := newFixture()

	// Активная корзина без живых позиций
	cart := domain.NewCart(5)
	cart.ID = f.env.store.id()
	f.env.store.carts[cart.ID] = cart

	_, err := f.cartUC.Checkout(context.Background(), 5)
	require.ErrorIs(t, err, e.ErrEmptyCart)

	assert.Equal(t, domain.CartStatusActive, f.env.store.carts[cart.ID].Status)
}

func TestCartUseCase_CheckoutRejectsWhenStockDroppedBelowCart(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	product := f.env.addProduct("Mug", 50000, 5, 0)

	_, err := f.cartUC.AddItem(ctx, &AddCartItemReq{UserID: 1, ProductID: product.ID, Quantity: 5})
	require.NoError(t, err)

	// Остаток упал после добавления (конкурентное оформление)
	f.env.store.products[product.ID].StockQuantity = 3

	_, err = f.cartUC.Checkout(ctx, 1)
	require.ErrorIs(t, err, e.ErrStockExceeded)

	// Корзина осталась активной и пригодной для повтора
	require.NotNil(t, f.cartRepo.activeCart(1))
	assert.Equal(t, 3, f.env.store.products[product.ID].StockQuantity)
	assert.Empty(t, f.env.store.orders)
	assert.Empty(t, f.env.store.events)
}

func TestCartUseCase_CheckoutRollsBackOnOrderFailure(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	product := f.env.addProduct("Teapot", 150000, 10, 0)

	_, err := f.cartUC.AddItem(ctx, &AddCartItemReq{UserID: 1, ProductID: product.ID, Quantity: 4})
	require.NoError(t, err)

	f.orderRepo.failCreate = true
	_, err = f.cartUC.Checkout(ctx, 1)
	require.Error(t, err)

	// Откат целиком: остаток не списан, корзина активна, outbox пуст
	assert.Equal(t, 10, f.env.store.products[product.ID].StockQuantity)
	require.NotNil(t, f.cartRepo.activeCart(1))
	assert.Empty(t, f.env.store.orders)
	assert.Empty(t, f.env.store.events)

	// Повтор после устранения сбоя проходит
	f.orderRepo.failCreate = false
	res, err := f.cartUC.Checkout(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(600000), res.TotalAmount)
	assert.Equal(t, 6, f.env.store.products[product.ID].StockQuantity)
}

func TestCartUseCase_LowStockNotifiesOnceUntilRestocked(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	product := f.env.addProduct("Teapot", 150000, 12, 10)

	// 12 -> 8 пересекает порог 10: ровно одно событие
	_, err := f.cartUC.AddItem(ctx, &AddCartItemReq{UserID: 1, ProductID: product.ID, Quantity: 4})
	require.NoError(t, err)
	_, err = f.cartUC.Checkout(ctx, 1)
	require.NoError(t, err)

	require.Len(t, f.outboxRepo.eventsOfType(EventLowStock), 1)
	require.NotNil(t, f.env.store.products[product.ID].LowStockNotifiedAt)

	// 8 -> 5 порог уже пересечён: нового события нет
	_, err = f.cartUC.AddItem(ctx, &AddCartItemReq{UserID: 2, ProductID: product.ID, Quantity: 3})
	require.NoError(t, err)
	_, err = f.cartUC.Checkout(ctx, 2)
	require.NoError(t, err)

	require.Len(t, f.outboxRepo.eventsOfType(EventLowStock), 1)

	// Пополнение выше порога снимает отметку
	stock := 15
	_, err = f.productUC.UpdateProduct(ctx, &UpdateProductReq{ID: product.ID, StockQuantity: &stock})
	require.NoError(t, err)
	require.Nil(t, f.env.store.products[product.ID].LowStockNotifiedAt)

	// Следующее пересечение 15 -> 9 оповещает снова
	_, err = f.cartUC.AddItem(ctx, &AddCartItemReq{UserID: 3, ProductID: product.ID, Quantity: 6})
	require.NoError(t, err)
	_, err = f.cartUC.Checkout(ctx, 3)
	require.NoError(t, err)

	require.Len(t, f.outboxRepo.eventsOfType(EventLowStock), 2)
}

func TestCartUseCase_LowStockSkippedWhenAlreadyNotified(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	product := f.env.addProduct("Teapot", 150000, 12, 10)

	// Отметка уже стоит: пересечение порога события не порождает
	notified := time.Now().UTC()
	f.env.store.products[product.ID].LowStockNotifiedAt = &notified

	_, err := f.cartUC.AddItem(ctx, &AddCartItemReq{UserID: 1, ProductID: product.ID, Quantity: 4})
	require.NoError(t, err)
	_, err = f.cartUC.Checkout(ctx, 1)
	require.NoError(t, err)

	assert.Empty(t, f.outboxRepo.eventsOfType(EventLowStock))
}

func TestCartUseCase_CheckoutMultipleProducts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	teapot := f.env.addProduct("Teapot", 150000, 10, 0)
	mug := f.env.addProduct("Mug", 50000, 20, 0)

	_, err := f.cartUC.AddItem(ctx, &AddCartItemReq{UserID: 1, ProductID: teapot.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = f.cartUC.AddItem(ctx, &AddCartItemReq{UserID: 1, ProductID: mug.ID, Quantity: 3})
	require.NoError(t, err)

	res, err := f.cartUC.Checkout(ctx, 1)
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, int64(2*150000+3*50000), res.TotalAmount)

	assert.Equal(t, 8, f.env.store.products[teapot.ID].StockQuantity)
	assert.Equal(t, 17, f.env.store.products[mug.ID].StockQuantity)
}

func TestCartUseCase_AuditTrail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	product := f.env.addProduct("Teapot", 150000, 10, 0)

	_, err := f.cartUC.AddItem(ctx, &AddCartItemReq{UserID: 1, ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = f.cartUC.Checkout(ctx, 1)
	require.NoError(t, err)

	actions := make([]string, 0, len(f.env.store.audits))
	for _, entry := range f.env.store.audits {
		actions = append(actions, string(entry.Action)+":"+entry.EntityType)
	}
	assert.Contains(t, actions, "created:cart")
	assert.Contains(t, actions, "updated:cart")
	assert.Contains(t, actions, "created:order")
}
