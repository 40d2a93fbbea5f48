package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProductCrossedLowStock(t *testing.T) {
	p := NewProduct("Teapot", 150000, 12, 10)

	assert.True(t, p.CrossedLowStock(12, 8))
	assert.True(t, p.CrossedLowStock(11, 10)) // приземление ровно на порог
	assert.False(t, p.CrossedLowStock(8, 5))  // старт уже под порогом
	assert.False(t, p.CrossedLowStock(12, 11))
	assert.False(t, p.CrossedLowStock(10, 9))
}

func TestCartIsActive(t *testing.T) {
	c := NewCart(1)
	assert.True(t, c.IsActive())

	c.Status = CartStatusOrdered
	assert.False(t, c.IsActive())

	c.Status = CartStatusDeleted
	assert.False(t, c.IsActive())
}

func TestCartTotalItems(t *testing.T) {
	c := NewCart(1)
	assert.Zero(t, c.TotalItems())

	c.Items = []CartItem{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 3},
	}
	assert.Equal(t, 5, c.TotalItems())
}

func TestOrderItemSubtotal(t *testing.T) {
	item := OrderItem{Quantity: 3, UnitPrice: 150000}
	assert.Equal(t, int64(450000), item.Subtotal())
}
