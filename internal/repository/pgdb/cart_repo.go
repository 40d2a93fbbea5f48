package pgdb

import (
	"context"
	"errors"
	"time"

	"github.com/DRSN-tech/shop-backend/internal/domain"
	"github.com/DRSN-tech/shop-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/shop-backend/internal/usecase"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// CartRepo реализует репозиторий корзин поверх PostgreSQL.
type CartRepo struct {
	pool     *pgxpool.Pool
	conv     converter.CartConverter
	prodConv converter.ProductConverter
}

func NewCartRepo(pool *pgxpool.Pool, conv converter.CartConverter, prodConv converter.ProductConverter) *CartRepo {
	return &CartRepo{
		pool:     pool,
		conv:     conv,
		prodConv: prodConv,
	}
}

const cartColumns = `id, user_id, status, ordered_at, created_at, updated_at, deleted_at`

// GetOrCreateActive возвращает активную корзину пользователя под блокировкой
// строки, создавая её при отсутствии. Гонку двух создателей разрешает
// частичный уникальный индекс по (user_id) WHERE status = 'active':
// проигравший получает duplicate и перечитывает корзину победителя.
func (c *CartRepo) GetOrCreateActive(ctx context.Context, userID int64) (*domain.Cart, bool, error) {
	cart, err := c.GetActiveForUpdate(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if cart != nil {
		return cart, false, nil
	}

	insert := `
		INSERT INTO carts (user_id, status)
		VALUES ($1, 'active')
		RETURNING ` + cartColumns + `;
	`

	model, err := c.scanOne(tr.Tr(ctx, c.pool).QueryRow(ctx, insert, userID))
	if err != nil {
		if postgresDuplicate(err) {
			cart, retryErr := c.GetActiveForUpdate(ctx, userID)
			if retryErr != nil {
				return nil, false, retryErr
			}
			return cart, false, nil
		}
		return nil, false, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.conv.ToEntity(model), true, nil
}

// GetActiveForUpdate возвращает активную корзину под блокировкой строки
// либо (nil, nil), если её нет.
func (c *CartRepo) GetActiveForUpdate(ctx context.Context, userID int64) (*domain.Cart, error) {
	query := `
		SELECT ` + cartColumns + `
		FROM carts
		WHERE user_id = $1 AND status = 'active' AND deleted_at IS NULL
		FOR UPDATE;
	`

	model, err := c.scanOne(tr.Tr(ctx, c.pool).QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.conv.ToEntity(model), nil
}

// GetItemForUpdate возвращает живую позицию корзины под блокировкой строки
// либо (nil, nil), если её нет.
func (c *CartRepo) GetItemForUpdate(ctx context.Context, cartID, productID int64) (*domain.CartItem, error) {
	query := `
		SELECT id, cart_id, product_id, quantity, created_at, updated_at, deleted_at
		FROM cart_items
		WHERE cart_id = $1 AND product_id = $2 AND deleted_at IS NULL
		FOR UPDATE;
	`

	var model converter.CartItemModel
	err := tr.Tr(ctx, c.pool).QueryRow(ctx, query, cartID, productID).Scan(
		&model.ID, &model.CartID, &model.ProductID, &model.Quantity,
		&model.CreatedAt, &model.UpdatedAt, &model.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	item := c.conv.ItemToEntity(&model)
	return &item, nil
}

// UpsertItem записывает итоговое количество позиции. Конфликт разрешает
// частичный уникальный индекс по (cart_id, product_id) для живых строк.
func (c *CartRepo) UpsertItem(ctx context.Context, cartID, productID int64, quantity int) error {
	query := `
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, product_id) WHERE deleted_at IS NULL
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = NOW();
	`

	if _, err := tr.Tr(ctx, c.pool).Exec(ctx, query, cartID, productID, quantity); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (c *CartRepo) SoftDeleteItem(ctx context.Context, itemID int64) error {
	query := `
		UPDATE cart_items
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL;
	`

	if _, err := tr.Tr(ctx, c.pool).Exec(ctx, query, itemID); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (c *CartRepo) CountLiveItems(ctx context.Context, cartID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM cart_items
		WHERE cart_id = $1 AND deleted_at IS NULL;
	`

	var count int
	if err := tr.Tr(ctx, c.pool).QueryRow(ctx, query, cartID).Scan(&count); err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return count, nil
}

func (c *CartRepo) SoftDeleteCart(ctx context.Context, cartID int64) error {
	query := `
		UPDATE carts
		SET status = 'deleted', deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'active';
	`

	result, err := tr.Tr(ctx, c.pool).Exec(ctx, query, cartID)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if result.RowsAffected() == 0 {
		return e.ErrCartNotActive
	}

	return nil
}

func (c *CartRepo) MarkOrdered(ctx context.Context, cartID int64, at time.Time) error {
	query := `
		UPDATE carts
		SET status = 'ordered', ordered_at = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'active';
	`

	result, err := tr.Tr(ctx, c.pool).Exec(ctx, query, cartID, at)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if result.RowsAffected() == 0 {
		return e.ErrCartNotActive
	}

	return nil
}

// ListItems возвращает живые позиции корзины вместе с данными товаров.
func (c *CartRepo) ListItems(ctx context.Context, cartID int64) ([]domain.CartItem, error) {
	query := `
		SELECT
			ci.id, ci.cart_id, ci.product_id, ci.quantity,
			p.id, p.name, p.price, p.stock_quantity, p.low_stock_threshold,
			p.low_stock_notified_at, p.created_at, p.updated_at, p.deleted_at
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1 AND ci.deleted_at IS NULL
		ORDER BY ci.id;
	`

	rows, err := tr.Tr(ctx, c.pool).Query(ctx, query, cartID)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	items := make([]domain.CartItem, 0)
	for rows.Next() {
		var item converter.CartItemModel
		var product converter.ProductModel
		if err := rows.Scan(
			&item.ID, &item.CartID, &item.ProductID, &item.Quantity,
			&product.ID, &product.Name, &product.Price, &product.StockQuantity,
			&product.LowStockThreshold, &product.LowStockNotifiedAt,
			&product.CreatedAt, &product.UpdatedAt, &product.DeletedAt,
		); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		entity := c.conv.ItemToEntity(&item)
		entity.Product = c.prodConv.ToEntity(&product)
		items = append(items, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := c.loadItemImages(ctx, items); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return items, nil
}

func (c *CartRepo) GetWithItems(ctx context.Context, cartID int64) (*domain.Cart, error) {
	query := `
		SELECT ` + cartColumns + `
		FROM carts
		WHERE id = $1;
	`

	model, err := c.scanOne(tr.Tr(ctx, c.pool).QueryRow(ctx, query, cartID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.ErrCartNotFound
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	cart := c.conv.ToEntity(model)
	cart.Items, err = c.ListItems(ctx, cartID)
	if err != nil {
		return nil, err
	}

	return cart, nil
}

// List возвращает страницу корзин для админки с фильтром по статусу
// и поиском по имени или email владельца.
func (c *CartRepo) List(ctx context.Context, req *usecase.ListCartsReq) ([]domain.Cart, int64, error) {
	query := `
		SELECT c.id, c.user_id, c.status, c.ordered_at, c.created_at, c.updated_at, c.deleted_at,
			COUNT(*) OVER() AS total
		FROM carts c
		JOIN users u ON u.id = c.user_id
		WHERE ($1 = '' OR c.status = $1)
		  AND ($2 = '' OR u.name ILIKE '%' || $2 || '%' OR u.email ILIKE '%' || $2 || '%')
		ORDER BY c.updated_at DESC NULLS LAST, c.id DESC
		LIMIT $3 OFFSET $4;
	`

	offset := (req.Page - 1) * req.PerPage
	rows, err := tr.Tr(ctx, c.pool).Query(ctx, query, req.Status, req.Search, req.PerPage, offset)
	if err != nil {
		return nil, 0, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	var total int64
	carts := make([]domain.Cart, 0, req.PerPage)
	for rows.Next() {
		var model converter.CartModel
		if err := rows.Scan(
			&model.ID, &model.UserID, &model.Status, &model.OrderedAt,
			&model.CreatedAt, &model.UpdatedAt, &model.DeletedAt, &total,
		); err != nil {
			return nil, 0, e.Wrap(whereami.WhereAmI(), err)
		}
		carts = append(carts, *c.conv.ToEntity(&model))
	}
	if err := rows.Err(); err != nil {
		return nil, 0, e.Wrap(whereami.WhereAmI(), err)
	}

	for i := range carts {
		carts[i].Items, err = c.ListItems(ctx, carts[i].ID)
		if err != nil {
			return nil, 0, err
		}
	}

	return carts, total, nil
}

func (c *CartRepo) scanOne(row pgx.Row) (*converter.CartModel, error) {
	var model converter.CartModel
	err := row.Scan(
		&model.ID, &model.UserID, &model.Status, &model.OrderedAt,
		&model.CreatedAt, &model.UpdatedAt, &model.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	return &model, nil
}

// loadItemImages дозагружает вложения товаров одним запросом.
func (c *CartRepo) loadItemImages(ctx context.Context, items []domain.CartItem) error {
	if len(items) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	query := `
		SELECT id, product_id, object_key, sort_order
		FROM product_images
		WHERE product_id = ANY($1)
		ORDER BY product_id, sort_order;
	`

	rows, err := tr.Tr(ctx, c.pool).Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	byProduct := make(map[int64][]domain.ProductImage)
	for rows.Next() {
		var model converter.ProductImageModel
		if err := rows.Scan(&model.ID, &model.ProductID, &model.ObjectKey, &model.SortOrder); err != nil {
			return err
		}
		byProduct[model.ProductID] = append(byProduct[model.ProductID], c.prodConv.ImageToEntity(&model))
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range items {
		if items[i].Product != nil {
			items[i].Product.Images = byProduct[items[i].ProductID]
		}
	}

	return nil
}
