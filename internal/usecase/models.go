package usecase

import (
	"time"

	"github.com/DRSN-tech/shop-backend/internal/domain"
)

// CART USECASE

// AddCartItemReq — команда добавления товара в активную корзину пользователя.
type AddCartItemReq struct {
	UserID    int64
	ProductID int64
	Quantity  int
}

// RemoveCartItemReq — команда удаления позиции из активной корзины.
type RemoveCartItemReq struct {
	UserID    int64
	ProductID int64
}

// CartRes — представление корзины для внешнего использования.
type CartRes struct {
	ID         int64         `json:"id"`
	Status     string        `json:"status"`
	Items      []CartItemRes `json:"items"`
	TotalPrice int64         `json:"total_price"`
	TotalItems int           `json:"total_items"`
}

// CartItemRes — позиция корзины с данными товара по текущей цене.
type CartItemRes struct {
	ProductID int64    `json:"product_id"`
	Name      string   `json:"name"`
	Quantity  int      `json:"quantity"`
	UnitPrice int64    `json:"unit_price"`
	Subtotal  int64    `json:"subtotal"`
	ImageURLs []string `json:"image_urls,omitempty"`
}

// OrderRes — представление заказа с зафиксированными ценами позиций.
type OrderRes struct {
	ID          int64          `json:"id"`
	CartID      *int64         `json:"cart_id,omitempty"`
	TotalAmount int64          `json:"total_amount"`
	CreatedAt   time.Time      `json:"created_at"`
	Items       []OrderItemRes `json:"items"`
}

type OrderItemRes struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	Subtotal  int64  `json:"subtotal"`
}

// PRODUCT USECASE

// ProductImage представляет изображение, загруженное через multipart/form-data.
type ProductImage struct {
	Data     []byte // байты изображения
	MimeType string // Content-Type из multipart (image/jpeg)
	Size     int64  // фактический размер в байтах
	Name     string // оригинальное имя файла (для логов)
}

// CreateProductReq — запрос на создание товара.
type CreateProductReq struct {
	Name              string
	Price             int64 // в копейках
	StockQuantity     int
	LowStockThreshold int
	Images            []ProductImage
}

// UpdateProductReq — частичное обновление товара; nil-поля не трогаются.
type UpdateProductReq struct {
	ID                int64
	Name              *string
	Price             *int64
	StockQuantity     *int
	LowStockThreshold *int
	Images            []ProductImage // непустой список полностью заменяет вложения
}

// ListProductsReq — каталожный запрос с поиском по имени.
type ListProductsReq struct {
	Search  string
	Page    int
	PerPage int
}

// ProductInfo — DTO с информацией о товаре для внешнего использования.
type ProductInfo struct {
	ID                 int64      `json:"id"`
	Name               string     `json:"name"`
	Price              int64      `json:"price"`
	StockQuantity      int        `json:"stock_quantity"`
	LowStockThreshold  int        `json:"low_stock_threshold"`
	LowStockNotifiedAt *time.Time `json:"low_stock_notified_at,omitempty"`
	ImageURLs          []string   `json:"image_urls,omitempty"`
}

// ListProductsRes — страница каталога.
type ListProductsRes struct {
	Products []ProductInfo `json:"products"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PerPage  int           `json:"per_page"`
}

// ORDER / CART ADMIN USECASE

// ListOrdersReq — админский запрос заказов: поиск по id заказа,
// имени или email покупателя.
type ListOrdersReq struct {
	Search  string
	Page    int
	PerPage int
}

type ListOrdersRes struct {
	Orders  []OrderRes `json:"orders"`
	Total   int64      `json:"total"`
	Page    int        `json:"page"`
	PerPage int        `json:"per_page"`
}

// ListCartsReq — админский запрос корзин с фильтром по статусу.
type ListCartsReq struct {
	Status  string
	Search  string
	Page    int
	PerPage int
}

type ListCartsRes struct {
	Carts   []CartRes `json:"carts"`
	Total   int64     `json:"total"`
	Page    int       `json:"page"`
	PerPage int       `json:"per_page"`
}

// REPORT USECASE

// DashboardCounts — агрегаты для карточек дашборда.
type DashboardCounts struct {
	Orders    int64 `json:"orders"`
	Revenue   int64 `json:"revenue"`
	Products  int64 `json:"products"`
	Customers int64 `json:"customers"`
}

// DashboardDayStat — заказы и выручка за один календарный день.
type DashboardDayStat struct {
	Date    string `json:"date"`
	Orders  int64  `json:"orders"`
	Revenue int64  `json:"revenue"`
}

// RecentOrder — строка списка последних заказов.
type RecentOrder struct {
	ID           int64     `json:"id"`
	CustomerName string    `json:"customer_name"`
	TotalAmount  int64     `json:"total_amount"`
	CreatedAt    time.Time `json:"created_at"`
}

// DashboardRes — снэпшот дашборда; кэшируется целиком.
type DashboardRes struct {
	Counts       DashboardCounts    `json:"counts"`
	OrdersByDay  []DashboardDayStat `json:"orders_by_day"`
	RecentOrders []RecentOrder      `json:"recent_orders"`
	GeneratedAt  time.Time          `json:"generated_at"`
}

// DailySalesRow — продажи одного товара за день.
type DailySalesRow struct {
	ProductID   int64
	ProductName string
	QtySold     int64
	Gross       int64 // в копейках
}

// DailySalesReport — итог дня для письма-отчёта.
type DailySalesReport struct {
	Date         time.Time
	OrdersCount  int64
	ItemsSold    int64
	GrossRevenue int64
	Rows         []DailySalesRow
}

// OUTBOX

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

type OutboxEventType string

const (
	EventLowStock    OutboxEventType = "product.low_stock"
	EventOrderPlaced OutboxEventType = "order.placed"
)

// OutboxEvent — запись transactional outbox; вставляется в той же транзакции,
// что и породившее её изменение.
type OutboxEvent struct {
	ID                  int64
	EventID             string
	EventType           OutboxEventType
	AggregateID         int64
	Payload             []byte
	Status              OutboxStatus
	CreatedAt           time.Time
	ProcessingStartedAt *time.Time
	ProcessedAt         *time.Time
}

// LowStockPayload — полезная нагрузка события product.low_stock.
type LowStockPayload struct {
	ProductID     int64  `json:"product_id"`
	ProductName   string `json:"product_name"`
	StockQuantity int    `json:"stock_quantity"`
	Threshold     int    `json:"threshold"`
}

// OrderPlacedPayload — полезная нагрузка события order.placed.
type OrderPlacedPayload struct {
	OrderID     int64 `json:"order_id"`
	UserID      int64 `json:"user_id"`
	TotalAmount int64 `json:"total_amount"`
	ItemsCount  int   `json:"items_count"`
}

// INFRASTRUCTURE

// UploadImagesReq — запрос на загрузку изображений товара.
type UploadImagesReq struct {
	Name   string
	Images []ProductImage
}

// UploadImagesRes — результат загрузки изображений (ключи в MinIO).
type UploadImagesRes struct {
	ImagesKeys []string
}

// WriteRawMessageReq — запрос на публикацию готовой полезной нагрузки в брокер.
type WriteRawMessageReq struct {
	Key     string
	Payload []byte
}

// MAPPERS

func NewCartRes(cart *domain.Cart, imageURL func(key string) string) *CartRes {
	res := &CartRes{
		ID:     cart.ID,
		Status: string(cart.Status),
		Items:  make([]CartItemRes, 0, len(cart.Items)),
	}

	for _, item := range cart.Items {
		itemRes := CartItemRes{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
		if item.Product != nil {
			itemRes.Name = item.Product.Name
			itemRes.UnitPrice = item.Product.Price
			itemRes.Subtotal = int64(item.Quantity) * item.Product.Price
			for _, img := range item.Product.Images {
				itemRes.ImageURLs = append(itemRes.ImageURLs, imageURL(img.ObjectKey))
			}
		}
		res.Items = append(res.Items, itemRes)
		res.TotalPrice += itemRes.Subtotal
		res.TotalItems += item.Quantity
	}

	return res
}

func NewOrderRes(order *domain.Order) *OrderRes {
	res := &OrderRes{
		ID:          order.ID,
		CartID:      order.CartID,
		TotalAmount: order.TotalAmount,
		CreatedAt:   order.CreatedAt,
		Items:       make([]OrderItemRes, 0, len(order.Items)),
	}

	for _, item := range order.Items {
		itemRes := OrderItemRes{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal(),
		}
		if item.Product != nil {
			itemRes.Name = item.Product.Name
		}
		res.Items = append(res.Items, itemRes)
	}

	return res
}

func NewProductInfo(product *domain.Product, imageURL func(key string) string) ProductInfo {
	info := ProductInfo{
		ID:                 product.ID,
		Name:               product.Name,
		Price:              product.Price,
		StockQuantity:      product.StockQuantity,
		LowStockThreshold:  product.LowStockThreshold,
		LowStockNotifiedAt: product.LowStockNotifiedAt,
	}
	for _, img := range product.Images {
		info.ImageURLs = append(info.ImageURLs, imageURL(img.ObjectKey))
	}

	return info
}

func NewOutboxEvent(eventID string, eventType OutboxEventType, aggregateID int64, payload []byte) *OutboxEvent {
	return &OutboxEvent{
		EventID:     eventID,
		EventType:   eventType,
		AggregateID: aggregateID,
		Payload:     payload,
		Status:      Pending,
		CreatedAt:   time.Now().UTC(),
	}
}

func NewUploadImagesReq(name string, images []ProductImage) *UploadImagesReq {
	return &UploadImagesReq{
		Name:   name,
		Images: images,
	}
}

func NewUploadImagesRes(imagesKeys []string) *UploadImagesRes {
	return &UploadImagesRes{
		ImagesKeys: imagesKeys,
	}
}

func NewWriteRawMessageReq(key string, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		Key:     key,
		Payload: payload,
	}
}

func NewProductImage(data []byte, mimeType string, size int64, name string) *ProductImage {
	return &ProductImage{
		Data:     data,
		MimeType: mimeType,
		Size:     size,
		Name:     name,
	}
}
