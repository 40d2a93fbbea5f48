package domain

import "time"

// Order — неизменяемый результат оформления корзины.
type Order struct {
	ID          int64
	UserID      int64
	CartID      *int64 // не все пути создания требуют корзину
	TotalAmount int64  // сумма в копейках, производная от снэпшотов позиций
	Items       []OrderItem
	CreatedAt   time.Time
	DeletedAt   *time.Time
}

// OrderItem фиксирует количество и цену за единицу на момент заказа,
// отвязывая историю заказов от будущих изменений цен.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int
	UnitPrice int64
	Product   *Product
}

func NewOrder(userID int64, cartID *int64) *Order {
	return &Order{
		UserID: userID,
		CartID: cartID,
	}
}

// Subtotal возвращает стоимость позиции по снэпшоту цены.
func (i *OrderItem) Subtotal() int64 {
	return int64(i.Quantity) * i.UnitPrice
}
