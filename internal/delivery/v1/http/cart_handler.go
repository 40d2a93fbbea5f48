package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/DRSN-tech/shop-backend/internal/usecase"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	cartUsecase usecase.CartUC
	logger      logger.Logger
}

func NewCartHandler(cartUsecase usecase.CartUC, logger logger.Logger) *CartHandler {
	return &CartHandler{cartUsecase: cartUsecase, logger: logger}
}

type addItemBody struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// getCart
//
//	@Summary		Активная корзина
//	@Description	Возвращает активную корзину пользователя с позициями и текущими ценами
//	@Tags			cart
//	@Produce		json
//	@Param			X-User-ID	header		string	true	"ID пользователя"
//	@Success		200			{object}	usecase.CartRes
//	@Failure		401			{object}	ErrorResponse
//	@Router			/cart [get]
func (c *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())

	cart, err := c.cartUsecase.GetActiveCart(r.Context(), identity.UserID)
	if err != nil {
		c.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, cart)
}

// addItem
//
//	@Summary		Добавление товара в корзину
//	@Description	Добавляет товар в активную корзину; повторное добавление увеличивает количество
//	@Tags			cart
//	@Accept			json
//	@Produce		json
//	@Param			X-User-ID	header		string		true	"ID пользователя"
//	@Param			body		body		addItemBody	true	"Товар и количество"
//	@Success		200			{object}	usecase.CartRes
//	@Failure		400			{object}	ErrorResponse	"Некорректное количество"
//	@Failure		409			{object}	ErrorResponse	"Недостаточно остатка"
//	@Router			/cart/items [post]
func (c *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())

	var body addItemBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteError(w, e.ErrStatusBadRequest)
		return
	}

	cart, err := c.cartUsecase.AddItem(r.Context(), &usecase.AddCartItemReq{
		UserID:    identity.UserID,
		ProductID: body.ProductID,
		Quantity:  body.Quantity,
	})
	if err != nil {
		c.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, cart)
}

// removeItem
//
//	@Summary		Удаление позиции из корзины
//	@Description	Убирает товар из активной корзины; повторный вызов безвреден
//	@Tags			cart
//	@Produce		json
//	@Param			X-User-ID	header	string	true	"ID пользователя"
//	@Param			productID	path	int		true	"ID товара"
//	@Success		204
//	@Router			/cart/items/{productID} [delete]
func (c *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())

	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		WriteError(w, e.ErrStatusBadRequest)
		return
	}

	if err := c.cartUsecase.RemoveItem(r.Context(), &usecase.RemoveCartItemReq{
		UserID:    identity.UserID,
		ProductID: productID,
	}); err != nil {
		c.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// checkout
//
//	@Summary		Оформление заказа
//	@Description	Атомарно превращает активную корзину в заказ с фиксацией цен и списанием остатков
//	@Tags			cart
//	@Produce		json
//	@Param			X-User-ID	header		string	true	"ID пользователя"
//	@Success		201			{object}	usecase.OrderRes
//	@Failure		409			{object}	ErrorResponse	"Пустая корзина или нехватка остатка"
//	@Router			/cart/checkout [post]
func (c *CartHandler) checkout(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())

	order, err := c.cartUsecase.Checkout(r.Context(), identity.UserID)
	if err != nil {
		c.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, order)
}
