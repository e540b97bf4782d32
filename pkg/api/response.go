package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "restaurant-orders/pkg/errors"
)

type Response[T any] struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Body    T           `json:"body,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

type ListBody[T any] struct {
	List  []T `json:"list"`
	Total int `json:"total"`
}

// SuccessOne - для возврата одного объекта
func SuccessOne[T any](c echo.Context, code int, message string, data T) error {
	return c.JSON(code, Response[T]{
		Status:  true,
		Message: message,
		Body:    data,
	})
}

// SuccessList always answers with a JSON array, never null.
func SuccessList[T any](c echo.Context, message string, list []T) error {
	if list == nil {
		list = make([]T, 0)
	}

	return c.JSON(http.StatusOK, Response[ListBody[T]]{
		Status:  true,
		Message: message,
		Body:    ListBody[T]{List: list, Total: len(list)},
	})
}

// StatusFor picks the HTTP status for err: classified errors keep their own
// code, token problems are 401, everything else is a 500.
func StatusFor(err error) (int, string, interface{}) {
	var httpErr *apperrors.HttpError
	if errors.As(err, &httpErr) {
		return httpErr.Code, httpErr.Message, httpErr.Details
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		if msg, ok := echoErr.Message.(string); ok {
			return echoErr.Code, msg, nil
		}
		return echoErr.Code, http.StatusText(echoErr.Code), nil
	}

	switch {
	case errors.Is(err, apperrors.ErrUnauthorized),
		errors.Is(err, apperrors.ErrInvalidToken),
		errors.Is(err, apperrors.ErrTokenExpired),
		errors.Is(err, apperrors.ErrTokenNotYetValid),
		errors.Is(err, apperrors.ErrInvalidSigningMethod),
		errors.Is(err, apperrors.ErrEmptyAuthHeader),
		errors.Is(err, apperrors.ErrInvalidAuthHeader):
		return http.StatusUnauthorized, err.Error(), nil
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden, err.Error(), nil
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, err.Error(), nil
	case errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, err.Error(), nil
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, err.Error(), nil
	}
	return http.StatusInternalServerError, err.Error(), nil
}

func ErrorResponse(c echo.Context, err error) error {
	code, msg, details := StatusFor(err)

	// Для HttpError отдаем только пользовательское сообщение, без технических деталей
	return c.JSON(code, Response[any]{
		Status:  false,
		Message: msg,
		Errors:  details,
	})
}
