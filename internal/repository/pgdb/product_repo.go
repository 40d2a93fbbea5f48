package pgdb

import (
	"context"
	"errors"
	"fmt"
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

// ProductRepo реализует репозиторий товаров поверх PostgreSQL.
type ProductRepo struct {
	pool *pgxpool.Pool
	conv converter.ProductConverter
}

func NewProductRepo(pool *pgxpool.Pool, conv converter.ProductConverter) *ProductRepo {
	return &ProductRepo{
		pool: pool,
		conv: conv,
	}
}

const productColumns = `id, name, price, stock_quantity, low_stock_threshold, low_stock_notified_at, created_at, updated_at, deleted_at`

func (p *ProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
		INSERT INTO products (name, price, stock_quantity, low_stock_threshold)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + productColumns + `;
	`

	model, err := p.scanOne(tr.Tr(ctx, p.pool).QueryRow(ctx, query,
		product.Name,
		product.Price,
		product.StockQuantity,
		product.LowStockThreshold,
	))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(model), nil
}

func (p *ProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1 AND deleted_at IS NULL;
	`

	model, err := p.scanOne(tr.Tr(ctx, p.pool).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.ErrProductNotFound
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	product := p.conv.ToEntity(model)
	if err := p.loadImages(ctx, product); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return product, nil
}

// GetForUpdate возвращает товар под блокировкой строки.
func (p *ProductRepo) GetForUpdate(ctx context.Context, id int64) (*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1 AND deleted_at IS NULL
		FOR UPDATE;
	`

	model, err := p.scanOne(tr.Tr(ctx, p.pool).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.ErrProductNotFound
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(model), nil
}

// LockByIDs блокирует строки товаров. ORDER BY id выравнивает порядок взятия
// блокировок между конкурентными транзакциями.
func (p *ProductRepo) LockByIDs(ctx context.Context, ids []int64) ([]*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = ANY($1) AND deleted_at IS NULL
		ORDER BY id
		FOR UPDATE;
	`

	rows, err := tr.Tr(ctx, p.pool).Query(ctx, query, ids)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	products := make([]*domain.Product, 0, len(ids))
	for rows.Next() {
		var model converter.ProductModel
		if err := rows.Scan(
			&model.ID, &model.Name, &model.Price, &model.StockQuantity,
			&model.LowStockThreshold, &model.LowStockNotifiedAt,
			&model.CreatedAt, &model.UpdatedAt, &model.DeletedAt,
		); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		products = append(products, p.conv.ToEntity(&model))
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return products, nil
}

func (p *ProductRepo) List(ctx context.Context, req *usecase.ListProductsReq) ([]domain.Product, int64, error) {
	query := `
		SELECT ` + productColumns + `, COUNT(*) OVER() AS total
		FROM products
		WHERE deleted_at IS NULL
		  AND ($1 = '' OR name ILIKE '%' || $1 || '%')
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3;
	`

	offset := (req.Page - 1) * req.PerPage
	rows, err := tr.Tr(ctx, p.pool).Query(ctx, query, req.Search, req.PerPage, offset)
	if err != nil {
		return nil, 0, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	var total int64
	products := make([]domain.Product, 0, req.PerPage)
	for rows.Next() {
		var model converter.ProductModel
		if err := rows.Scan(
			&model.ID, &model.Name, &model.Price, &model.StockQuantity,
			&model.LowStockThreshold, &model.LowStockNotifiedAt,
			&model.CreatedAt, &model.UpdatedAt, &model.DeletedAt, &total,
		); err != nil {
			return nil, 0, e.Wrap(whereami.WhereAmI(), err)
		}
		products = append(products, *p.conv.ToEntity(&model))
	}
	if err := rows.Err(); err != nil {
		return nil, 0, e.Wrap(whereami.WhereAmI(), err)
	}

	for i := range products {
		if err := p.loadImages(ctx, &products[i]); err != nil {
			return nil, 0, e.Wrap(whereami.WhereAmI(), err)
		}
	}

	return products, total, nil
}

func (p *ProductRepo) Update(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
		UPDATE products
		SET name = $2,
			price = $3,
			stock_quantity = $4,
			low_stock_threshold = $5,
			low_stock_notified_at = $6,
			updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING ` + productColumns + `;
	`

	model, err := p.scanOne(tr.Tr(ctx, p.pool).QueryRow(ctx, query,
		product.ID,
		product.Name,
		product.Price,
		product.StockQuantity,
		product.LowStockThreshold,
		product.LowStockNotifiedAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.ErrProductNotFound
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(model), nil
}

// DecrementStock уменьшает остаток только при его достаточности и возвращает
// новое значение. Ноль затронутых строк означает нехватку остатка.
func (p *ProductRepo) DecrementStock(ctx context.Context, productID int64, quantity int) (int, error) {
	query := `
		UPDATE products
		SET stock_quantity = stock_quantity - $2,
			updated_at = NOW()
		WHERE id = $1
		  AND deleted_at IS NULL
		  AND stock_quantity >= $2
		RETURNING stock_quantity;
	`

	var after int
	err := tr.Tr(ctx, p.pool).QueryRow(ctx, query, productID, quantity).Scan(&after)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, e.ErrStockExceeded
		}
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return after, nil
}

func (p *ProductRepo) MarkLowStockNotified(ctx context.Context, productID int64, at time.Time) error {
	query := `
		UPDATE products
		SET low_stock_notified_at = $2, updated_at = NOW()
		WHERE id = $1 AND low_stock_notified_at IS NULL;
	`

	if _, err := tr.Tr(ctx, p.pool).Exec(ctx, query, productID, at); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (p *ProductRepo) AddImages(ctx context.Context, productID int64, images []usecase.ProductImage, keys []string) error {
	if len(images) != len(keys) {
		return fmt.Errorf("%s: images/keys length mismatch: %d != %d", whereami.WhereAmI(), len(images), len(keys))
	}

	query := `
		INSERT INTO product_images (product_id, object_key, sort_order)
		VALUES ($1, $2, $3);
	`

	for i, key := range keys {
		if _, err := tr.Tr(ctx, p.pool).Exec(ctx, query, productID, key, i); err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
	}

	return nil
}

// DeleteImages удаляет строки вложений товара и возвращает их ключи
// для последующей зачистки объектов в S3.
func (p *ProductRepo) DeleteImages(ctx context.Context, productID int64) ([]string, error) {
	query := `
		DELETE FROM product_images
		WHERE product_id = $1
		RETURNING object_key;
	`

	rows, err := tr.Tr(ctx, p.pool).Query(ctx, query, productID)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return keys, nil
}

func (p *ProductRepo) SoftDelete(ctx context.Context, id int64) error {
	query := `
		UPDATE products
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL;
	`

	result, err := tr.Tr(ctx, p.pool).Exec(ctx, query, id)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if result.RowsAffected() == 0 {
		return e.ErrProductNotFound
	}

	return nil
}

func (p *ProductRepo) scanOne(row pgx.Row) (*converter.ProductModel, error) {
	var model converter.ProductModel
	err := row.Scan(
		&model.ID, &model.Name, &model.Price, &model.StockQuantity,
		&model.LowStockThreshold, &model.LowStockNotifiedAt,
		&model.CreatedAt, &model.UpdatedAt, &model.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	return &model, nil
}

func (p *ProductRepo) loadImages(ctx context.Context, product *domain.Product) error {
	query := `
		SELECT id, product_id, object_key, sort_order
		FROM product_images
		WHERE product_id = $1
		ORDER BY sort_order;
	`

	rows, err := tr.Tr(ctx, p.pool).Query(ctx, query, product.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var model converter.ProductImageModel
		if err := rows.Scan(&model.ID, &model.ProductID, &model.ObjectKey, &model.SortOrder); err != nil {
			return err
		}
		product.Images = append(product.Images, p.conv.ImageToEntity(&model))
	}

	return rows.Err()
}
