package domain

import "time"

// CartStatus — состояние корзины. Переходы однонаправленные:
// active -> ordered либо active -> deleted; дальше корзина неизменяема.
type CartStatus string

const (
	CartStatusActive  CartStatus = "active"
	CartStatusOrdered CartStatus = "ordered"
	CartStatusDeleted CartStatus = "deleted"
)

// Cart — единственный черновик заказа пользователя.
// Инвариант: не более одной корзины в статусе active на пользователя.
type Cart struct {
	ID        int64
	UserID    int64
	Status    CartStatus
	OrderedAt *time.Time
	Items     []CartItem
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
}

// CartItem — позиция корзины. Количество всегда >= 1;
// позиция, чьё количество упало бы до нуля, удаляется.
type CartItem struct {
	ID        int64
	CartID    int64
	ProductID int64
	Quantity  int
	Product   *Product
}

func NewCart(userID int64) *Cart {
	return &Cart{
		UserID: userID,
		Status: CartStatusActive,
	}
}

// IsActive сообщает, принимает ли корзина изменения.
func (c *Cart) IsActive() bool {
	return c.Status == CartStatusActive
}

// TotalItems возвращает суммарное количество единиц в корзине.
func (c *Cart) TotalItems() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}
