package usecase

import (
	"context"
	"time"
)

type CartUC interface {
	AddItem(ctx context.Context, req *AddCartItemReq) (*CartRes, error)
	RemoveItem(ctx context.Context, req *RemoveCartItemReq) error
	GetActiveCart(ctx context.Context, userID int64) (*CartRes, error)
	Checkout(ctx context.Context, userID int64) (*OrderRes, error)
	ListCarts(ctx context.Context, req *ListCartsReq) (*ListCartsRes, error)
}

type ProductUC interface {
	List(ctx context.Context, req *ListProductsReq) (*ListProductsRes, error)
	GetProduct(ctx context.Context, id int64) (*ProductInfo, error)
	CreateProduct(ctx context.Context, req *CreateProductReq) (*ProductInfo, error)
	UpdateProduct(ctx context.Context, req *UpdateProductReq) (*ProductInfo, error)
	DeleteProduct(ctx context.Context, id int64) error
}

type OrderUC interface {
	ListForUser(ctx context.Context, userID int64, page int) (*ListOrdersRes, error)
	List(ctx context.Context, req *ListOrdersReq) (*ListOrdersRes, error)
}

type ReportUC interface {
	GetDashboard(ctx context.Context) (*DashboardRes, error)
	SendDailySalesReport(ctx context.Context, day time.Time) error
}
