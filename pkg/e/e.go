package e

import "fmt"

var (
	// Ошибки валидации (отклоняются до взятия блокировок)
	ErrInvalidQuantity     = fmt.Errorf("quantity must be at least 1")
	ErrUserRequired        = fmt.Errorf("user identity is required")
	ErrProductNameRequired = fmt.Errorf("product name is required")
	ErrPriceMustBePositive = fmt.Errorf("price must be positive")
	ErrInvalidPrice        = fmt.Errorf("invalid price")
	ErrPricePrecision      = fmt.Errorf("price must have at most 2 decimal places")
	ErrInvalidStock        = fmt.Errorf("stock quantity must not be negative")
	ErrInvalidThreshold    = fmt.Errorf("low stock threshold must not be negative")
	ErrTooManyImages       = fmt.Errorf("too many images")
	ErrFileTooLarge        = fmt.Errorf("file too large")

	// Конфликты состояния (откатывают транзакцию целиком)
	ErrStockExceeded = fmt.Errorf("requested quantity exceeds available stock")
	ErrEmptyCart     = fmt.Errorf("cannot checkout an empty cart")
	ErrCartNotActive = fmt.Errorf("only active carts can be checked out")
	ErrNoActiveCart  = fmt.Errorf("no active cart")

	// Отсутствующие сущности
	ErrProductNotFound = fmt.Errorf("product not found")
	ErrCartNotFound    = fmt.Errorf("cart not found")
	ErrOrderNotFound   = fmt.Errorf("order not found")

	// Инфраструктурные ошибки
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect env variable")
	ErrUnsupportedMediaType = fmt.Errorf("unsupported media type")
	ErrExpectedMultipart    = fmt.Errorf("expected multipart/form-data")
	ErrMissingFields        = fmt.Errorf("missing required fields")
	ErrStatusBadRequest     = fmt.Errorf("bad request")
	ErrInternalServerError  = fmt.Errorf("internal server error")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
