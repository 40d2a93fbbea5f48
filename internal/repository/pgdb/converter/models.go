package converter

import "time"

// ProductModel представляет запись таблицы products в PostgreSQL.
type ProductModel struct {
	ID                 int64      `db:"id"`
	Name               string     `db:"name"`
	Price              int64      `db:"price"`
	StockQuantity      int        `db:"stock_quantity"`
	LowStockThreshold  int        `db:"low_stock_threshold"`
	LowStockNotifiedAt *time.Time `db:"low_stock_notified_at"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          *time.Time `db:"updated_at"`
	DeletedAt          *time.Time `db:"deleted_at"`
}

// ProductImageModel представляет запись таблицы product_images в PostgreSQL.
type ProductImageModel struct {
	ID        int64  `db:"id"`
	ProductID int64  `db:"product_id"`
	ObjectKey string `db:"object_key"`
	SortOrder int    `db:"sort_order"`
}

// CartModel представляет запись таблицы carts в PostgreSQL.
type CartModel struct {
	ID        int64      `db:"id"`
	UserID    int64      `db:"user_id"`
	Status    string     `db:"status"`
	OrderedAt *time.Time `db:"ordered_at"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt *time.Time `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

// CartItemModel представляет запись таблицы cart_items в PostgreSQL.
type CartItemModel struct {
	ID        int64      `db:"id"`
	CartID    int64      `db:"cart_id"`
	ProductID int64      `db:"product_id"`
	Quantity  int        `db:"quantity"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt *time.Time `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

// OrderModel представляет запись таблицы orders в PostgreSQL.
type OrderModel struct {
	ID          int64      `db:"id"`
	UserID      int64      `db:"user_id"`
	CartID      *int64     `db:"cart_id"`
	TotalAmount int64      `db:"total_amount"`
	CreatedAt   time.Time  `db:"created_at"`
	DeletedAt   *time.Time `db:"deleted_at"`
}

// OrderItemModel представляет запись таблицы order_items в PostgreSQL.
type OrderItemModel struct {
	ID        int64 `db:"id"`
	OrderID   int64 `db:"order_id"`
	ProductID int64 `db:"product_id"`
	Quantity  int   `db:"quantity"`
	UnitPrice int64 `db:"unit_price"`
}

// OutboxEventModel представляет запись таблицы outbox_events в PostgreSQL.
type OutboxEventModel struct {
	ID                  int64      `db:"id"`
	EventID             string     `db:"event_id"`
	EventType           string     `db:"event_type"`
	AggregateID         int64      `db:"aggregate_id"`
	Payload             []byte     `db:"payload"`
	Status              string     `db:"status"`
	CreatedAt           time.Time  `db:"created_at"`
	ProcessingStartedAt *time.Time `db:"processing_started_at"`
	ProcessedAt         *time.Time `db:"processed_at"`
}
