package usecase

import (
	"context"
	"testing"

	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderUseCase_ListForUser(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	product := f.env.addProduct("Teapot", 150000, 10, 0)

	_, err := f.cartUC.AddItem(ctx, &AddCartItemReq{UserID: 1, ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = f.cartUC.Checkout(ctx, 1)
	require.NoError(t, err)

	orderUC := NewOrderUC(f.orderRepo, logger.NewSlogLogger())

	res, err := orderUC.ListForUser(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, res.Orders, 1)
	assert.Equal(t, int64(300000), res.Orders[0].TotalAmount)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 6, res.PerPage)

	// Чужие заказы не видны
	res, err = orderUC.ListForUser(ctx, 2, 1)
	require.NoError(t, err)
	assert.Empty(t, res.Orders)
}

func TestOrderUseCase_ListForUserRequiresIdentity(t *testing.T) {
	f := newFixture()
	orderUC := NewOrderUC(f.orderRepo, logger.NewSlogLogger())

	_, err := orderUC.ListForUser(context.Background(), 0, 1)
	require.ErrorIs(t, err, e.ErrUserRequired)
}
