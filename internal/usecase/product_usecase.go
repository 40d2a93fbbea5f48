package usecase

import (
	"context"
	"strings"

	"github.com/DRSN-tech/shop-backend/internal/domain"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/logger"
	"github.com/avito-tech/go-transaction-manager/trm/v2"
)

// ProductUseCase реализует бизнес-логику каталога и админского управления товарами.
type ProductUseCase struct {
	productRepo ProductRepository
	auditRepo   AuditLogRepository
	txManager   trm.Manager
	imagesInfra ImagesInfra
	logger      logger.Logger
}

func NewProductUC(
	productRepo ProductRepository,
	auditRepo AuditLogRepository,
	txManager trm.Manager,
	imagesInfra ImagesInfra,
	logger logger.Logger,
) *ProductUseCase {
	return &ProductUseCase{
		productRepo: productRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		imagesInfra: imagesInfra,
		logger:      logger,
	}
}

// List возвращает страницу каталога с поиском по имени, новые сверху.
func (p *ProductUseCase) List(ctx context.Context, req *ListProductsReq) (*ListProductsRes, error) {
	const op = "ProductUseCase.List"

	normalizePage(&req.Page, &req.PerPage)

	products, total, err := p.productRepo.List(ctx, req)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	res := &ListProductsRes{
		Products: make([]ProductInfo, 0, len(products)),
		Total:    total,
		Page:     req.Page,
		PerPage:  req.PerPage,
	}
	for i := range products {
		res.Products = append(res.Products, NewProductInfo(&products[i], p.imagesInfra.ObjectURL))
	}

	return res, nil
}

// GetProduct возвращает один товар с вложениями.
func (p *ProductUseCase) GetProduct(ctx context.Context, id int64) (*ProductInfo, error) {
	const op = "ProductUseCase.GetProduct"

	product, err := p.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	info := NewProductInfo(product, p.imagesInfra.ObjectURL)
	return &info, nil
}

// CreateProduct создаёт товар с изображениями. Изображения загружаются в S3
// внутри транзакционной секции; при откате загруженные объекты зачищаются
// компенсирующей фоновой задачей.
func (p *ProductUseCase) CreateProduct(ctx context.Context, req *CreateProductReq) (*ProductInfo, error) {
	const op = "ProductUseCase.CreateProduct"

	if err := p.validateProduct(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	var (
		imagesRes *UploadImagesRes
		uploaded  bool
		info      ProductInfo
	)

	err := p.txManager.Do(ctx, func(ctx context.Context) error {
		product, err := p.productRepo.Create(ctx, domain.NewProduct(req.Name, req.Price, req.StockQuantity, req.LowStockThreshold))
		if err != nil {
			return err
		}

		if len(req.Images) > 0 {
			imagesRes, err = p.imagesInfra.UploadImages(ctx, NewUploadImagesReq(req.Name, req.Images))
			if err != nil {
				return err
			}
			uploaded = true

			if err := p.productRepo.AddImages(ctx, product.ID, req.Images, imagesRes.ImagesKeys); err != nil {
				return err
			}
		}

		if err := p.auditRepo.Create(ctx, newAuditLog(ctx, domain.AuditActionCreated, "product", product.ID, map[string]any{
			"after": map[string]any{
				"name":                product.Name,
				"price":               product.Price,
				"stock_quantity":      product.StockQuantity,
				"low_stock_threshold": product.LowStockThreshold,
			},
		})); err != nil {
			return err
		}

		loaded, err := p.productRepo.GetByID(ctx, product.ID)
		if err != nil {
			return err
		}

		info = NewProductInfo(loaded, p.imagesInfra.ObjectURL)
		return nil
	})
	if err != nil {
		if uploaded && imagesRes != nil {
			p.logger.Warnf(
				"Cleaning up orphaned images after transaction failure. product_name: %s, error: %v",
				req.Name,
				e.Wrap(op, err),
			)
			p.imagesInfra.CleanupImages(imagesRes.ImagesKeys)
		}
		return nil, e.Wrap(op, err)
	}

	return &info, nil
}

// UpdateProduct частично обновляет товар под блокировкой строки.
// Повышение остатка выше порога снимает отметку уведомления, заново
// взводя алерт о низком остатке. Новые изображения полностью заменяют
// старые; старые объекты зачищаются после коммита.
func (p *ProductUseCase) UpdateProduct(ctx context.Context, req *UpdateProductReq) (*ProductInfo, error) {
	const op = "ProductUseCase.UpdateProduct"

	if err := p.validateUpdate(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	var (
		imagesRes *UploadImagesRes
		uploaded  bool
		oldKeys   []string
		info      ProductInfo
	)

	err := p.txManager.Do(ctx, func(ctx context.Context) error {
		product, err := p.productRepo.GetForUpdate(ctx, req.ID)
		if err != nil {
			return err
		}

		before := map[string]any{
			"name":                product.Name,
			"price":               product.Price,
			"stock_quantity":      product.StockQuantity,
			"low_stock_threshold": product.LowStockThreshold,
		}

		if req.Name != nil {
			product.Name = *req.Name
		}
		if req.Price != nil {
			product.Price = *req.Price
		}
		if req.StockQuantity != nil {
			product.StockQuantity = *req.StockQuantity
		}
		if req.LowStockThreshold != nil {
			product.LowStockThreshold = *req.LowStockThreshold
		}

		// Сброс отметки уведомления при пополнении: товар снова сможет
		// оповестить при следующем пересечении порога.
		if product.StockQuantity > product.LowStockThreshold {
			product.LowStockNotifiedAt = nil
		}

		updated, err := p.productRepo.Update(ctx, product)
		if err != nil {
			return err
		}

		if len(req.Images) > 0 {
			oldKeys, err = p.productRepo.DeleteImages(ctx, product.ID)
			if err != nil {
				return err
			}

			imagesRes, err = p.imagesInfra.UploadImages(ctx, NewUploadImagesReq(updated.Name, req.Images))
			if err != nil {
				return err
			}
			uploaded = true

			if err := p.productRepo.AddImages(ctx, product.ID, req.Images, imagesRes.ImagesKeys); err != nil {
				return err
			}
		}

		if err := p.auditRepo.Create(ctx, newAuditLog(ctx, domain.AuditActionUpdated, "product", product.ID, map[string]any{
			"before": before,
			"after": map[string]any{
				"name":                updated.Name,
				"price":               updated.Price,
				"stock_quantity":      updated.StockQuantity,
				"low_stock_threshold": updated.LowStockThreshold,
			},
		})); err != nil {
			return err
		}

		loaded, err := p.productRepo.GetByID(ctx, product.ID)
		if err != nil {
			return err
		}

		info = NewProductInfo(loaded, p.imagesInfra.ObjectURL)
		return nil
	})
	if err != nil {
		if uploaded && imagesRes != nil {
			p.logger.Warnf(
				"Cleaning up orphaned images after transaction failure. product_id: %d, error: %v",
				req.ID,
				e.Wrap(op, err),
			)
			p.imagesInfra.CleanupImages(imagesRes.ImagesKeys)
		}
		return nil, e.Wrap(op, err)
	}

	// Старые объекты зачищаются только после успешного коммита.
	if len(oldKeys) > 0 {
		p.imagesInfra.CleanupImages(oldKeys)
	}

	return &info, nil
}

// DeleteProduct мягко удаляет товар вместе со строками вложений.
// Объекты в S3 остаются: мягкое удаление обратимо.
func (p *ProductUseCase) DeleteProduct(ctx context.Context, id int64) error {
	const op = "ProductUseCase.DeleteProduct"

	err := p.txManager.Do(ctx, func(ctx context.Context) error {
		product, err := p.productRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if _, err := p.productRepo.DeleteImages(ctx, id); err != nil {
			return err
		}

		if err := p.productRepo.SoftDelete(ctx, id); err != nil {
			return err
		}

		return p.auditRepo.Create(ctx, newAuditLog(ctx, domain.AuditActionDeleted, "product", id, map[string]any{
			"before": map[string]any{
				"name":           product.Name,
				"price":          product.Price,
				"stock_quantity": product.StockQuantity,
			},
		}))
	})
	if err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

// validateProduct проверяет корректность входных данных запроса на создание товара.
func (p *ProductUseCase) validateProduct(req *CreateProductReq) error {
	if strings.TrimSpace(req.Name) == "" {
		return e.ErrProductNameRequired
	}

	if req.Price <= 0 {
		return e.ErrPriceMustBePositive
	}

	if req.StockQuantity < 0 {
		return e.ErrInvalidStock
	}

	if req.LowStockThreshold < 0 {
		return e.ErrInvalidThreshold
	}

	return nil
}

func (p *ProductUseCase) validateUpdate(req *UpdateProductReq) error {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return e.ErrProductNameRequired
	}

	if req.Price != nil && *req.Price <= 0 {
		return e.ErrPriceMustBePositive
	}

	if req.StockQuantity != nil && *req.StockQuantity < 0 {
		return e.ErrInvalidStock
	}

	if req.LowStockThreshold != nil && *req.LowStockThreshold < 0 {
		return e.ErrInvalidThreshold
	}

	return nil
}
