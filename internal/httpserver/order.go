package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) PlaceOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "place_order")

	id, ok := authmw.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("place_order_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Svc.PlaceOrder(ctx, id.ID, req)
	if err != nil {
		var short *service.InsufficientStockError
		switch {
		case errors.As(err, &short):
			l.Warn("place_order_error", "status", 400, "reason", "insufficient stock", "product_id", short.ProductID)
			return echo.NewHTTPError(http.StatusBadRequest, echo.Map{
				"message":    "insufficient stock",
				"product_id": short.ProductID,
				"available":  short.Available,
				"requested":  short.Requested,
			})
		case errors.Is(err, service.ErrEmptyCart):
			l.Warn("place_order_error", "status", 400, "reason", "empty cart")
			return echo.NewHTTPError(http.StatusBadRequest, "cart is empty")
		case errors.Is(err, service.ErrMissingField),
			errors.Is(err, service.ErrValidation),
			errors.Is(err, service.ErrProductNotFound):
			l.Warn("place_order_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			l.Error("place_order_error", "status", 500, "error", err)
			return internalError("order could not be saved", err)
		}
	}

	return c.JSON(http.StatusCreated, transport.PlacedOrder{
		Message:    "order placed",
		OrderID:    order.ID,
		TotalPrice: order.TotalPrice,
	})
}
