package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductUseCase_CreateProduct(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	info, err := f.productUC.CreateProduct(ctx, &CreateProductReq{
		Name:              "Teapot",
		Price:             150000,
		StockQuantity:     10,
		LowStockThreshold: 2,
		Images: []ProductImage{
			{Data: []byte{0xFF, 0xD8}, MimeType: "image/jpeg", Size: 2, Name: "teapot.jpg"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Teapot", info.Name)
	assert.Equal(t, int64(150000), info.Price)
	require.Len(t, info.ImageURLs, 1)

	require.Len(t, f.images.uploaded, 1)
	assert.Empty(t, f.images.cleaned)

	// Товар виден в каталоге
	list, err := f.productUC.List(ctx, &ListProductsReq{})
	require.NoError(t, err)
	require.Len(t, list.Products, 1)
	assert.Equal(t, info.ID, list.Products[0].ID)
}

func TestProductUseCase_CreateProductValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.productUC.CreateProduct(ctx, &CreateProductReq{Name: "  ", Price: 100})
	require.ErrorIs(t, err, e.ErrProductNameRequired)

	_, err = f.productUC.CreateProduct(ctx, &CreateProductReq{Name: "Teapot", Price: 0})
	require.ErrorIs(t, err, e.ErrPriceMustBePositive)

	_, err = f.productUC.CreateProduct(ctx, &CreateProductReq{Name: "Teapot", Price: 100, StockQuantity: -1})
	require.ErrorIs(t, err, e.ErrInvalidStock)

	_, err = f.productUC.CreateProduct(ctx, &CreateProductReq{Name: "Teapot", Price: 100, LowStockThreshold: -1})
	require.ErrorIs(t, err, e.ErrInvalidThreshold)

	assert.Empty(t, f.env.store.products)
}

func TestProductUseCase_CreateProductRollsBackOnUploadFailure(t *testing.T) {
	f := newFixture()
	f.images.failUpload = true

	_, err := f.productUC.CreateProduct(context.Background(), &CreateProductReq{
		Name:   "Teapot",
		Price:  150000,
		Images: []ProductImage{{Data: []byte{1}, MimeType: "image/png", Size: 1, Name: "x.png"}},
	})
	require.Error(t, err)

	// Вставка товара откатилась вместе с транзакцией
	assert.Empty(t, f.env.store.products)
}

func TestProductUseCase_UpdateProductPartial(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	product := f.env.addProduct("Teapot", 150000, 10, 2)

	price := int64(180000)
	info, err := f.productUC.UpdateProduct(ctx, &UpdateProductReq{ID: product.ID, Price: &price})
	require.NoError(t, err)
	assert.Equal(t, int64(180000), info.Price)

	// Незаданные поля не тронуты
	assert.Equal(t, "Teapot", info.Name)
	assert.Equal(t, 10, info.StockQuantity)
}

func TestProductUseCase_UpdateProductRearmsLowStockAlert(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	product := f.env.addProduct("Teapot", 150000, 5, 10)

	notified := time.Now().UTC()
	f.env.store.products[product.ID].LowStockNotifiedAt = &notified

	// Пополнение до уровня не выше порога отметку сохраняет
	stock := 9
	info, err := f.productUC.UpdateProduct(ctx, &UpdateProductReq{ID: product.ID, StockQuantity: &stock})
	require.NoError(t, err)
	require.NotNil(t, info.LowStockNotifiedAt)

	// Пополнение выше порога снимает отметку
	stock = 11
	info, err = f.productUC.UpdateProduct(ctx, &UpdateProductReq{ID: product.ID, StockQuantity: &stock})
	require.NoError(t, err)
	assert.Nil(t, info.LowStockNotifiedAt)
}

func TestProductUseCase_UpdateProductReplacesImages(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	info, err := f.productUC.CreateProduct(ctx, &CreateProductReq{
		Name:   "Teapot",
		Price:  150000,
		Images: []ProductImage{{Data: []byte{1}, MimeType: "image/png", Size: 1, Name: "old.png"}},
	})
	require.NoError(t, err)

	updated, err := f.productUC.UpdateProduct(ctx, &UpdateProductReq{
		ID: info.ID,
		Images: []ProductImage{
			{Data: []byte{2}, MimeType: "image/png", Size: 1, Name: "new-1.png"},
			{Data: []byte{3}, MimeType: "image/png", Size: 1, Name: "new-2.png"},
		},
	})
	require.NoError(t, err)
	require.Len(t, updated.ImageURLs, 2)

	// Старые объекты зачищены после коммита
	require.Len(t, f.images.cleaned, 1)
	assert.Len(t, f.images.cleaned[0], 1)
}

func TestProductUseCase_UpdateMissingProduct(t *testing.T) {
	f := newFixture()

	name := "Teapot"
	_, err := f.productUC.UpdateProduct(context.Background(), &UpdateProductReq{ID: 42, Name: &name})
	require.ErrorIs(t, err, e.ErrProductNotFound)
}

func TestProductUseCase_DeleteProduct(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	product := f.env.addProduct("Teapot", 150000, 10, 2)

	require.NoError(t, f.productUC.DeleteProduct(ctx, product.ID))

	_, err := f.productUC.GetProduct(ctx, product.ID)
	require.ErrorIs(t, err, e.ErrProductNotFound)

	// Повторное удаление — уже not found
	err = f.productUC.DeleteProduct(ctx, product.ID)
	require.ErrorIs(t, err, e.ErrProductNotFound)

	// Каталог удалённый товар не отдаёт
	list, err := f.productUC.List(ctx, &ListProductsReq{})
	require.NoError(t, err)
	assert.Empty(t, list.Products)
}
