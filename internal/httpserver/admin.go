package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type AdminHTTP struct {
	Orders *service.OrderService
}

func (h *AdminHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.list_orders")

	orders, err := h.Orders.ListOrders(ctx)
	if err != nil {
		l.Error("list_orders_error", "status", 500, "error", err)
		return internalError("cannot list orders", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *AdminHTTP) UpdateOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.update_order_status")

	id, err := parseID(c)
	if err != nil {
		l.Warn("update_status_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req transport.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_status_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Orders.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("update_status_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrNotFound):
			l.Warn("update_status_error", "status", 404, "order_id", id)
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		default:
			l.Error("update_status_error", "status", 500, "error", err)
			return internalError("cannot update order status", err)
		}
	}

	l.Info("order_status_updated", "order_id", order.ID, "new_status", order.Status)
	return c.JSON(http.StatusOK, echo.Map{"message": "order status updated", "order": order})
}
