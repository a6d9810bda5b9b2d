package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mveljko/komoda-shop/internal/handlers"
	"github.com/mveljko/komoda-shop/internal/service/token"
)

type Deps struct {
	DB              *gorm.DB
	AuthHandler     *handlers.AuthHandler
	ProductHandler  *handlers.ProductHandler
	CategoryHandler *handlers.CategoryHandler
	CustomerHandler *handlers.CustomerHandler
	OrderHandler    *handlers.OrderHandler
	ExpenseHandler  *handlers.ExpenseHandler
	ReportHandler   *handlers.ReportHandler
	SearchHandler   *handlers.SearchHandler
	ServiceHandler  *token.TokenService
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/register", d.AuthHandler.Register)
	v1.POST("/login", d.AuthHandler.Login)
	v1.POST("/logout", d.AuthHandler.LogOut)
	v1.GET("/search", d.SearchHandler.SearchProducts)

	// storefront
	v1.GET("/categories", d.CategoryHandler.GetCategories)
	v1.GET("/categories/:id", d.CategoryHandler.GetCategory)
	v1.GET("/products", d.ProductHandler.GetProducts)
	v1.GET("/products/:id", d.ProductHandler.GetProduct)
	v1.POST("/orders", d.OrderHandler.CreateOrder)

	admin := v1.Group("/admin", d.ServiceHandler.AutoRefreshMiddlewareAdmin)

	admin.POST("/categories", d.CategoryHandler.CreateCategory)
	admin.PATCH("/categories/:id", d.CategoryHandler.PatchCategory)
	admin.DELETE("/categories/:id", d.CategoryHandler.DeleteCategory)

	admin.POST("/products", d.ProductHandler.CreateProduct)
	admin.PATCH("/products/:id", d.ProductHandler.PatchProduct)
	admin.DELETE("/products/:id", d.ProductHandler.DeleteProduct)

	admin.GET("/customers", d.CustomerHandler.GetCustomers)
	admin.GET("/customers/:id", d.CustomerHandler.GetCustomer)

	admin.GET("/orders", d.OrderHandler.GetOrders)
	admin.GET("/orders/export", d.OrderHandler.ExportOrders)
	admin.GET("/orders/:id", d.OrderHandler.GetOrder)
	admin.PATCH("/orders/:id/status", d.OrderHandler.PatchOrderStatus)

	admin.GET("/expenses", d.ExpenseHandler.GetExpenses)
	admin.GET("/expenses/categories", d.ExpenseHandler.GetExpenseCategories)
	admin.GET("/expenses/:id", d.ExpenseHandler.GetExpense)
	admin.POST("/expenses", d.ExpenseHandler.CreateExpense)
	admin.PATCH("/expenses/:id", d.ExpenseHandler.PatchExpense)
	admin.DELETE("/expenses/:id", d.ExpenseHandler.DeleteExpense)

	admin.GET("/revenue", d.ReportHandler.GetRevenue)
	admin.GET("/revenue/export", d.ReportHandler.ExportRevenue)
	admin.GET("/statistics", d.ReportHandler.GetStatistics)
}
