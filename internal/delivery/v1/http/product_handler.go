package http

import (
	"net/http"
	"strconv"

	"github.com/DRSN-tech/shop-backend/internal/usecase"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type ProductHandler struct {
	productUsecase usecase.ProductUC
	logger         logger.Logger
}

func NewProductHandler(productUsecase usecase.ProductUC, logger logger.Logger) *ProductHandler {
	return &ProductHandler{productUsecase: productUsecase, logger: logger}
}

// listProducts
//
//	@Summary		Каталог товаров
//	@Description	Страница каталога с поиском по названию
//	@Tags			products
//	@Produce		json
//	@Param			search	query		string	false	"Поиск по названию"
//	@Param			page	query		int		false	"Номер страницы"
//	@Param			per_page	query	int		false	"Размер страницы"
//	@Success		200		{object}	usecase.ListProductsRes
//	@Router			/products [get]
func (p *ProductHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	res, err := p.productUsecase.List(r.Context(), &usecase.ListProductsReq{
		Search:  r.URL.Query().Get("search"),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, res)
}

// getProduct
//
//	@Summary		Карточка товара
//	@Tags			products
//	@Produce		json
//	@Param			id	path		int	true	"ID товара"
//	@Success		200	{object}	usecase.ProductInfo
//	@Failure		404	{object}	ErrorResponse
//	@Router			/products/{id} [get]
func (p *ProductHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteError(w, e.ErrStatusBadRequest)
		return
	}

	product, err := p.productUsecase.GetProduct(r.Context(), id)
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, product)
}

// createProduct
//
//	@Summary		Создание товара
//	@Description	Создает товар в каталоге с изображениями
//	@Tags			products
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			name				formData	string	true	"Название товара"
//	@Param			price				formData	number	true	"Цена"
//	@Param			stock_quantity		formData	int		false	"Остаток"
//	@Param			low_stock_threshold	formData	int		false	"Порог низкого остатка"
//	@Param			images				formData	file	false	"Изображения товара"
//	@Success		201					{object}	usecase.ProductInfo
//	@Failure		400					{object}	ErrorResponse	"Ошибка валидации"
//	@Router			/admin/products [post]
func (p *ProductHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	const (
		maxTotalRequestSize = 150 << 20
		maxMemory           = 32 << 20
	)

	r.Body = http.MaxBytesReader(w, r.Body, maxTotalRequestSize)

	if err := ensureMultipartForm(r, maxMemory); err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), r.Header.Get("Content-Type"))
		WriteError(w, err)
		return
	}

	prMeta, err := parseProductForm(r)
	if err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	images, err := parseImages(r.MultipartForm.File["images"])
	if err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	product, err := p.productUsecase.CreateProduct(r.Context(), &usecase.CreateProductReq{
		Name:              prMeta.Name,
		Price:             prMeta.Price,
		StockQuantity:     prMeta.StockQuantity,
		LowStockThreshold: prMeta.LowStockThreshold,
		Images:            images,
	})
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, product)
}

// updateProduct
//
//	@Summary		Обновление товара
//	@Description	Частично обновляет товар; переданные изображения заменяют старые
//	@Tags			products
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			id					path		int		true	"ID товара"
//	@Param			name				formData	string	false	"Название товара"
//	@Param			price				formData	number	false	"Цена"
//	@Param			stock_quantity		formData	int		false	"Остаток"
//	@Param			low_stock_threshold	formData	int		false	"Порог низкого остатка"
//	@Param			images				formData	file	false	"Новые изображения"
//	@Success		200					{object}	usecase.ProductInfo
//	@Failure		404					{object}	ErrorResponse
//	@Router			/admin/products/{id} [put]
func (p *ProductHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	const (
		maxTotalRequestSize = 150 << 20
		maxMemory           = 32 << 20
	)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteError(w, e.ErrStatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxTotalRequestSize)

	if err := ensureMultipartForm(r, maxMemory); err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), r.Header.Get("Content-Type"))
		WriteError(w, err)
		return
	}

	req := &usecase.UpdateProductReq{ID: id}

	if name := r.FormValue("name"); name != "" {
		req.Name = &name
	}
	if priceStr := r.FormValue("price"); priceStr != "" {
		price, err := parsePriceToCents(priceStr)
		if err != nil {
			WriteError(w, err)
			return
		}
		req.Price = &price
	}
	if v := r.FormValue("stock_quantity"); v != "" {
		stock, err := strconv.Atoi(v)
		if err != nil {
			WriteError(w, e.ErrStatusBadRequest)
			return
		}
		req.StockQuantity = &stock
	}
	if v := r.FormValue("low_stock_threshold"); v != "" {
		threshold, err := strconv.Atoi(v)
		if err != nil {
			WriteError(w, e.ErrStatusBadRequest)
			return
		}
		req.LowStockThreshold = &threshold
	}

	req.Images, err = parseImages(r.MultipartForm.File["images"])
	if err != nil {
		WriteError(w, err)
		return
	}

	product, err := p.productUsecase.UpdateProduct(r.Context(), req)
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, product)
}

// deleteProduct
//
//	@Summary		Удаление товара
//	@Tags			products
//	@Param			id	path	int	true	"ID товара"
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Router			/admin/products/{id} [delete]
func (p *ProductHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteError(w, e.ErrStatusBadRequest)
		return
	}

	if err := p.productUsecase.DeleteProduct(r.Context(), id); err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
