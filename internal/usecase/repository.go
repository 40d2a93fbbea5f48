package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/shop-backend/internal/domain"
)

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	GetForUpdate(ctx context.Context, id int64) (*domain.Product, error)
	// LockByIDs блокирует строки товаров в порядке возрастания id,
	// чтобы конкурентные оформления брали блокировки в одном порядке.
	LockByIDs(ctx context.Context, ids []int64) ([]*domain.Product, error)
	List(ctx context.Context, req *ListProductsReq) ([]domain.Product, int64, error)
	Update(ctx context.Context, product *domain.Product) (*domain.Product, error)
	// DecrementStock уменьшает остаток при условии достаточности;
	// возвращает e.ErrStockExceeded, если остатка не хватает.
	DecrementStock(ctx context.Context, productID int64, quantity int) (int, error)
	MarkLowStockNotified(ctx context.Context, productID int64, at time.Time) error
	AddImages(ctx context.Context, productID int64, images []ProductImage, keys []string) error
	// DeleteImages помечает строки вложений удалёнными и возвращает их ключи в S3.
	DeleteImages(ctx context.Context, productID int64) ([]string, error)
	SoftDelete(ctx context.Context, id int64) error
}

type CartRepository interface {
	// GetOrCreateActive возвращает активную корзину пользователя под
	// блокировкой строки, создавая её при отсутствии. Частичный уникальный
	// индекс по (user_id, status='active') страхует от гонки создания.
	GetOrCreateActive(ctx context.Context, userID int64) (*domain.Cart, bool, error)
	// GetActiveForUpdate возвращает (nil, nil), если активной корзины нет.
	GetActiveForUpdate(ctx context.Context, userID int64) (*domain.Cart, error)
	GetItemForUpdate(ctx context.Context, cartID, productID int64) (*domain.CartItem, error)
	UpsertItem(ctx context.Context, cartID, productID int64, quantity int) error
	SoftDeleteItem(ctx context.Context, itemID int64) error
	CountLiveItems(ctx context.Context, cartID int64) (int, error)
	SoftDeleteCart(ctx context.Context, cartID int64) error
	MarkOrdered(ctx context.Context, cartID int64, at time.Time) error
	// ListItems возвращает живые позиции корзины с данными товаров.
	ListItems(ctx context.Context, cartID int64) ([]domain.CartItem, error)
	GetWithItems(ctx context.Context, cartID int64) (*domain.Cart, error)
	List(ctx context.Context, req *ListCartsReq) ([]domain.Cart, int64, error)
}

type OrderRepository interface {
	// Create вставляет заказ вместе с позициями и возвращает его с проставленными id.
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetWithItems(ctx context.Context, orderID int64) (*domain.Order, error)
	ListForUser(ctx context.Context, userID int64, page, perPage int) ([]domain.Order, int64, error)
	List(ctx context.Context, req *ListOrdersReq) ([]domain.Order, int64, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
}

type AuditLogRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
}

type ReportRepository interface {
	DashboardCounts(ctx context.Context) (*DashboardCounts, error)
	OrdersByDay(ctx context.Context, since time.Time) ([]DashboardDayStat, error)
	RecentOrders(ctx context.Context, limit int) ([]RecentOrder, error)
	DailySales(ctx context.Context, start, end time.Time) (*DailySalesReport, error)
}

// DashboardCacheRepository — единственная кэширующая прослойка приложения:
// ограниченная по времени мемоизация снэпшота дашборда.
type DashboardCacheRepository interface {
	Get(ctx context.Context) (*DashboardRes, error)
	Set(ctx context.Context, res *DashboardRes) error
}
