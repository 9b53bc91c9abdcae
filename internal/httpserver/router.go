package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/models"
)

type Deps struct {
	Auth      *authmw.Auth
	Ready     func(ctx context.Context) error
	UploadDir string

	AuthHandler      *AuthHTTP
	CatalogHandler   *CatalogHTTP
	OrderHandler     *OrderHTTP
	AdminHandler     *AdminHTTP
	DashboardHandler *DashboardHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready == nil {
			return c.NoContent(http.StatusOK)
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := d.Ready(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"message": "database unavailable", "error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "ok"})
	})

	if d.UploadDir != "" {
		e.Static("/uploads", d.UploadDir)
	}

	api := e.Group("/api")

	api.GET("/products", d.CatalogHandler.GetProducts)
	api.GET("/products/search", d.CatalogHandler.SearchProducts)
	api.GET("/products/:id", d.CatalogHandler.GetProduct)

	api.POST("/signup", d.AuthHandler.Signup)
	api.POST("/login", d.AuthHandler.Login)

	private := api.Group("", d.Auth.RequireAuth)
	private.POST("/logout", d.AuthHandler.Logout)
	private.GET("/dashboard", d.DashboardHandler.Dashboard)
	private.POST("/orders", d.OrderHandler.PlaceOrder)

	admin := private.Group("/admin", authmw.RequireRole(models.RoleAdmin))
	admin.POST("/products", d.CatalogHandler.CreateProduct)
	admin.PATCH("/products/:id", d.CatalogHandler.PatchProduct)
	admin.DELETE("/products/:id", d.CatalogHandler.DeleteProduct)
	admin.GET("/orders", d.AdminHandler.ListOrders)
	admin.PUT("/orders/:id/status", d.AdminHandler.UpdateOrderStatus)
}
