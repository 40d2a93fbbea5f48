package http

import (
	"errors"
	"net/http"
	"testing"

	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriceToCents(t *testing.T) {
	cents, err := parsePriceToCents("599.99")
	require.NoError(t, err)
	assert.Equal(t, int64(59999), cents)

	cents, err = parsePriceToCents("600")
	require.NoError(t, err)
	assert.Equal(t, int64(60000), cents)

	cents, err = parsePriceToCents("0.01")
	require.NoError(t, err)
	assert.Equal(t, int64(1), cents)

	_, err = parsePriceToCents("")
	require.Error(t, err)

	_, err = parsePriceToCents("abc")
	require.ErrorIs(t, err, e.ErrInvalidPrice)

	_, err = parsePriceToCents("-5")
	require.ErrorIs(t, err, e.ErrInvalidPrice)

	_, err = parsePriceToCents("599.999")
	require.ErrorIs(t, err, e.ErrPricePrecision)

	_, err = parsePriceToCents("1000000001")
	require.ErrorIs(t, err, e.ErrInvalidPrice)
}

func TestToHTTPResponse(t *testing.T) {
	code, _ := ToHTTPResponse(e.ErrInvalidQuantity)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = ToHTTPResponse(e.ErrUserRequired)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = ToHTTPResponse(e.ErrStockExceeded)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = ToHTTPResponse(e.ErrEmptyCart)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = ToHTTPResponse(e.ErrNoActiveCart)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = ToHTTPResponse(e.ErrProductNotFound)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = ToHTTPResponse(e.ErrUnsupportedMediaType)
	assert.Equal(t, http.StatusUnsupportedMediaType, code)

	// Обёрнутая ошибка сохраняет статус исходной
	code, _ = ToHTTPResponse(e.Wrap("CartUseCase.Checkout", e.ErrStockExceeded))
	assert.Equal(t, http.StatusConflict, code)

	code, msg := ToHTTPResponse(errors.New("pg connection lost"))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, e.ErrInternalServerError.Error(), msg)
}
