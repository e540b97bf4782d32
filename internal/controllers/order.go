package controllers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"restaurant-orders/internal/dto"
	"restaurant-orders/internal/entities"
	"restaurant-orders/internal/services"
	"restaurant-orders/pkg/api"
	apperrors "restaurant-orders/pkg/errors"
	"restaurant-orders/pkg/utils"
)

const HeaderIdempotencyKey = "Idempotency-Key"

// OrderCreator is satisfied by *services.IdempotentOrderCreator.
type OrderCreator interface {
	Create(ctx context.Context, key string, order dto.CreateOrderDTO, user dto.UserClaims) (*entities.Order, bool, error)
}

type OrderController struct {
	orderService services.OrderServiceInterface
	creator      OrderCreator
	logger       *zap.Logger
}

func NewOrderController(
	orderService services.OrderServiceInterface,
	creator OrderCreator,
	logger *zap.Logger,
) *OrderController {
	return &OrderController{
		orderService: orderService,
		creator:      creator,
		logger:       logger,
	}
}

// fail logs at the edge and answers with the error envelope. Client errors are
// warnings, anything unclassified is an error.
func (c *OrderController) fail(ctx echo.Context, op string, err error) error {
	fields := []zap.Field{
		zap.String("request_id", utils.GetRequestID(ctx.Request().Context())),
		zap.Error(err),
	}
	if code, _, _ := api.StatusFor(err); code < http.StatusInternalServerError {
		c.logger.Warn(op+": запрос отклонен", fields...)
	} else {
		c.logger.Error(op+": ошибка сервиса заказов", fields...)
	}
	return api.ErrorResponse(ctx, err)
}

func (c *OrderController) CreateOrder(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	claims, err := utils.GetClaimsFromContext(reqCtx)
	if err != nil {
		return c.fail(ctx, "CreateOrder", err)
	}

	var body dto.CreateOrderDTO
	if err := ctx.Bind(&body); err != nil {
		return c.fail(ctx, "CreateOrder", apperrors.NewHttpError(http.StatusBadRequest, "некорректный JSON в теле запроса", err, nil))
	}

	order, replay, err := c.creator.Create(reqCtx, ctx.Request().Header.Get(HeaderIdempotencyKey), body, *claims)
	if err != nil {
		return c.fail(ctx, "CreateOrder", err)
	}
	if replay {
		return api.SuccessOne(ctx, http.StatusOK, "Заказ уже был создан", order)
	}
	return api.SuccessOne(ctx, http.StatusCreated, "Заказ успешно создан", order)
}

func (c *OrderController) GetOrders(ctx echo.Context) error {
	orders, err := c.orderService.GetOrders(ctx.Request().Context())
	if err != nil {
		return c.fail(ctx, "GetOrders", err)
	}
	return api.SuccessList(ctx, "Заказы успешно получены", orders)
}

func (c *OrderController) FindOrder(ctx echo.Context) error {
	order, err := c.orderService.GetOrderByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return c.fail(ctx, "FindOrder", err)
	}
	if order == nil {
		return api.ErrorResponse(ctx, apperrors.NewNotFoundError("order not found"))
	}
	return api.SuccessOne(ctx, http.StatusOK, "Заказ найден", order)
}

func (c *OrderController) UpdateOrder(ctx echo.Context) error {
	var patch dto.UpdateOrderDTO
	if err := ctx.Bind(&patch); err != nil {
		return c.fail(ctx, "UpdateOrder", apperrors.NewHttpError(http.StatusBadRequest, "некорректный JSON в теле запроса", err, nil))
	}

	res, err := c.orderService.UpdateOrder(ctx.Request().Context(), ctx.Param("id"), patch)
	if err != nil {
		return c.fail(ctx, "UpdateOrder", err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Заказ обновлен", res)
}

func (c *OrderController) DeleteOrder(ctx echo.Context) error {
	res, err := c.orderService.DeleteOrder(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return c.fail(ctx, "DeleteOrder", err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Заказ удален", res)
}

