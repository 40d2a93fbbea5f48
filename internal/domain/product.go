package domain

import "time"

// Product описывает товар витрины.
type Product struct {
	ID                 int64
	Name               string
	Price              int64 // Цена хранится в копейках
	StockQuantity      int
	LowStockThreshold  int
	LowStockNotifiedAt *time.Time
	Images             []ProductImage
	CreatedAt          time.Time
	UpdatedAt          *time.Time
	DeletedAt          *time.Time
}

// ProductImage — упорядоченное вложение товара; сам объект лежит в S3.
type ProductImage struct {
	ID        int64
	ProductID int64
	ObjectKey string
	SortOrder int
}

func NewProduct(name string, price int64, stockQuantity, lowStockThreshold int) *Product {
	return &Product{
		Name:              name,
		Price:             price,
		StockQuantity:     stockQuantity,
		LowStockThreshold: lowStockThreshold,
	}
}

// CrossedLowStock сообщает, пересёк ли остаток порог сверху вниз.
func (p *Product) CrossedLowStock(before, after int) bool {
	return before > p.LowStockThreshold && after <= p.LowStockThreshold
}
