package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/kuldeepsaindane/BiteBuddy-New/internal/handlers"
	"github.com/kuldeepsaindane/BiteBuddy-New/internal/service/token"
)

type Deps struct {
	DB                 *gorm.DB
	AuthHandler        *handlers.AuthHandler
	RestaurantHandler  *handlers.RestaurantHandler
	CartHandler        *handlers.CartHandler
	OrderHandler       *handlers.OrderHandler
	PaymentHandler     *handlers.PaymentHandler
	ReservationHandler *handlers.ReservationHandler
	RatingHandler      *handlers.RatingHandler
	SupportHandler     *handlers.SupportHandler
	CampaignHandler    *handlers.CampaignHandler
	SearchHandler      *handlers.SearchHandler
	TokenService       *token.Service
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	api := e.Group("/api")

	api.POST("/auth/register", d.AuthHandler.Register)
	api.POST("/auth/login", d.AuthHandler.Login)
	api.POST("/auth/logout", d.AuthHandler.LogOut)

	api.GET("/search", d.SearchHandler.Search)

	restaurants := api.Group("/restaurants")
	restaurants.GET("", d.RestaurantHandler.List)
	restaurants.GET("/:id", d.RestaurantHandler.Get)

	owner := restaurants.Group("", d.TokenService.AutoRefreshMiddleware, d.TokenService.RequireOwner)
	owner.GET("/profile/:id", d.RestaurantHandler.Profile)
	owner.PUT("/profile/:id", d.RestaurantHandler.UpdateProfile)
	owner.GET("/:id/menu", d.RestaurantHandler.GetMenu)
	owner.POST("/:id/menu", d.RestaurantHandler.AddMenuItem)
	owner.PUT("/:id/menu/:itemId", d.RestaurantHandler.UpdateMenuItem)
	owner.DELETE("/:id/menu/:itemId", d.RestaurantHandler.DeleteMenuItem)

	cart := api.Group("/cart", d.TokenService.AutoRefreshMiddleware)
	cart.GET("", d.CartHandler.GetCart)
	cart.GET("/summary", d.CartHandler.Summary)
	cart.POST("/add", d.CartHandler.AddToCart)
	cart.PUT("/update", d.CartHandler.UpdateQuantity)
	cart.DELETE("/items/:id", d.CartHandler.DeleteOneFromCart)
	cart.DELETE("/items/:id/all", d.CartHandler.DeleteAllFromCart)
	cart.DELETE("", d.CartHandler.ClearCart)

	orders := api.Group("/orders", d.TokenService.AutoRefreshMiddleware)
	orders.POST("", d.OrderHandler.Create)
	orders.GET("/user", d.OrderHandler.UserOrders)
	orders.GET("/restaurant/:id", d.OrderHandler.RestaurantOrders, d.TokenService.RequireOwner)
	orders.GET("/:id", d.OrderHandler.Get)
	orders.PUT("/:id/status", d.OrderHandler.UpdateStatus, d.TokenService.RequireOwner)
	orders.POST("/:id/payment", d.OrderHandler.RetryPayment)
	orders.PUT("/:id/payment-status", d.OrderHandler.UpdatePaymentStatus)

	// Webhook is signature-authenticated by the provider, no cookie auth.
	api.POST("/payments/webhook", d.PaymentHandler.Webhook)

	reservations := api.Group("/reservations", d.TokenService.AutoRefreshMiddleware)
	reservations.POST("", d.ReservationHandler.Create)
	reservations.GET("/user", d.ReservationHandler.UserReservations)
	reservations.GET("/restaurant/:id", d.ReservationHandler.RestaurantReservations, d.TokenService.RequireOwner)
	reservations.PUT("/:id/status", d.ReservationHandler.UpdateStatus, d.TokenService.RequireOwner)

	api.POST("/ratings", d.RatingHandler.Create, d.TokenService.AutoRefreshMiddleware)

	support := api.Group("/support", d.TokenService.AutoRefreshMiddleware)
	support.POST("", d.SupportHandler.Create)
	support.GET("/restaurant", d.SupportHandler.RestaurantTickets, d.TokenService.RequireOwner)

	api.GET("/campaigns/restaurant/:id", d.CampaignHandler.RestaurantCampaigns,
		d.TokenService.AutoRefreshMiddleware, d.TokenService.RequireOwner)
}
