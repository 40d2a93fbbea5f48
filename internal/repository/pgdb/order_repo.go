package pgdb

import (
	"context"
	"errors"

	"github.com/DRSN-tech/shop-backend/internal/domain"
	"github.com/DRSN-tech/shop-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/shop-backend/internal/usecase"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// OrderRepo реализует репозиторий заказов поверх PostgreSQL.
type OrderRepo struct {
	pool *pgxpool.Pool
	conv converter.OrderConverter
}

func NewOrderRepo(pool *pgxpool.Pool, conv converter.OrderConverter) *OrderRepo {
	return &OrderRepo{
		pool: pool,
		conv: conv,
	}
}

// Create вставляет заказ вместе с позициями в текущей транзакции.
func (o *OrderRepo) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	query := `
		INSERT INTO orders (user_id, cart_id, total_amount)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, cart_id, total_amount, created_at, deleted_at;
	`

	var model converter.OrderModel
	err := tr.Tr(ctx, o.pool).QueryRow(ctx, query, order.UserID, order.CartID, order.TotalAmount).Scan(
		&model.ID, &model.UserID, &model.CartID, &model.TotalAmount,
		&model.CreatedAt, &model.DeletedAt,
	)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)
		RETURNING id;
	`

	created := o.conv.ToEntity(&model)
	created.Items = make([]domain.OrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		item.OrderID = created.ID
		err := tr.Tr(ctx, o.pool).QueryRow(ctx, itemQuery,
			created.ID, item.ProductID, item.Quantity, item.UnitPrice,
		).Scan(&item.ID)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		created.Items = append(created.Items, item)
	}

	return created, nil
}

func (o *OrderRepo) GetWithItems(ctx context.Context, orderID int64) (*domain.Order, error) {
	query := `
		SELECT id, user_id, cart_id, total_amount, created_at, deleted_at
		FROM orders
		WHERE id = $1 AND deleted_at IS NULL;
	`

	var model converter.OrderModel
	err := tr.Tr(ctx, o.pool).QueryRow(ctx, query, orderID).Scan(
		&model.ID, &model.UserID, &model.CartID, &model.TotalAmount,
		&model.CreatedAt, &model.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.ErrOrderNotFound
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	order := o.conv.ToEntity(&model)
	order.Items, err = o.listItems(ctx, order.ID)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return order, nil
}

func (o *OrderRepo) ListForUser(ctx context.Context, userID int64, page, perPage int) ([]domain.Order, int64, error) {
	query := `
		SELECT id, user_id, cart_id, total_amount, created_at, deleted_at,
			COUNT(*) OVER() AS total
		FROM orders
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3;
	`

	offset := (page - 1) * perPage
	return o.listPage(ctx, query, userID, perPage, offset)
}

// List возвращает страницу заказов для админки с поиском по номеру заказа,
// имени или email покупателя.
func (o *OrderRepo) List(ctx context.Context, req *usecase.ListOrdersReq) ([]domain.Order, int64, error) {
	query := `
		SELECT o.id, o.user_id, o.cart_id, o.total_amount, o.created_at, o.deleted_at,
			COUNT(*) OVER() AS total
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.deleted_at IS NULL
		  AND ($1 = ''
			OR o.id::text = $1
			OR u.name ILIKE '%' || $1 || '%'
			OR u.email ILIKE '%' || $1 || '%')
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT $2 OFFSET $3;
	`

	offset := (req.Page - 1) * req.PerPage
	return o.listPage(ctx, query, req.Search, req.PerPage, offset)
}

func (o *OrderRepo) listPage(ctx context.Context, query string, args ...any) ([]domain.Order, int64, error) {
	rows, err := tr.Tr(ctx, o.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	var total int64
	orders := make([]domain.Order, 0)
	for rows.Next() {
		var model converter.OrderModel
		if err := rows.Scan(
			&model.ID, &model.UserID, &model.CartID, &model.TotalAmount,
			&model.CreatedAt, &model.DeletedAt, &total,
		); err != nil {
			return nil, 0, e.Wrap(whereami.WhereAmI(), err)
		}
		orders = append(orders, *o.conv.ToEntity(&model))
	}
	if err := rows.Err(); err != nil {
		return nil, 0, e.Wrap(whereami.WhereAmI(), err)
	}

	for i := range orders {
		orders[i].Items, err = o.listItems(ctx, orders[i].ID)
		if err != nil {
			return nil, 0, e.Wrap(whereami.WhereAmI(), err)
		}
	}

	return orders, total, nil
}

// listItems возвращает позиции заказа с названиями товаров.
func (o *OrderRepo) listItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	query := `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.unit_price, p.name
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id;
	`

	rows, err := tr.Tr(ctx, o.pool).Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var model converter.OrderItemModel
		var productName string
		if err := rows.Scan(
			&model.ID, &model.OrderID, &model.ProductID, &model.Quantity,
			&model.UnitPrice, &productName,
		); err != nil {
			return nil, err
		}

		item := o.conv.ItemToEntity(&model)
		item.Product = &domain.Product{ID: model.ProductID, Name: productName}
		items = append(items, item)
	}

	return items, rows.Err()
}
