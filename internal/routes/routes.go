package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/yemak/internal/config"
	"github.com/example/yemak/internal/handlers"
	"github.com/example/yemak/internal/middleware"
	"github.com/example/yemak/internal/models"
	"github.com/example/yemak/internal/services"
	"github.com/example/yemak/internal/store"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	orders := store.NewGorm(db)
	transitions := services.NewTransitionService(orders)
	stats := services.NewStatisticsService(orders, cfg.PageSize)

	authHandler := handlers.NewAuthHandler(db, cfg)
	orderHandler := handlers.NewOrderHandler(db, orders, transitions)
	courierHandler := handlers.NewCourierHandler(orders, transitions, stats)
	branchHandler := handlers.NewBranchHandler(db, orders, transitions, stats)
	restaurantHandler := handlers.NewRestaurantHandler(db, stats)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/login-staff", authHandler.LoginStaff)

	// Protected routes
	protected := api.Group("", middleware.AuthMiddleware(cfg))

	orderRoutes := protected.Group("/orders")
	orderRoutes.Post("/", middleware.RequireRole(models.RoleUser), orderHandler.CreateOrder)
	orderRoutes.Get("/", middleware.RequireRole(models.RoleUser), orderHandler.ListOrders)
	orderRoutes.Get("/:id", middleware.RequireRole(models.RoleUser), orderHandler.GetOrder)
	orderRoutes.Post("/:id/cancel", middleware.RequireRole(models.RoleUser), orderHandler.CancelOrder)
	orderRoutes.Post("/:id/assign-courier", middleware.RequireRole(models.RoleAdmin), orderHandler.AssignCourier)

	branch := protected.Group("/branch", middleware.RequireRole(models.RoleBranch))
	branch.Get("/pending-orders", branchHandler.PendingOrders)
	branch.Post("/accept-order", branchHandler.AcceptOrder)
	branch.Post("/add-or-remove", branchHandler.AddOrRemoveProducts)
	branch.Get("/statistics", branchHandler.Statistics)

	restaurant := protected.Group("/restaurant", middleware.RequireRole(models.RoleRestaurant))
	restaurant.Get("/branches", restaurantHandler.ListBranches)
	restaurant.Post("/branches", restaurantHandler.CreateBranch)
	restaurant.Post("/add-or-remove", restaurantHandler.AddOrRemoveProducts)
	restaurant.Get("/statistics", restaurantHandler.Statistics)

	courier := protected.Group("/courier", middleware.RequireRole(models.RoleCourier))
	courier.Post("/accept", courierHandler.Accept)
	courier.Post("/mark-delivering", courierHandler.MarkDelivering)
	courier.Post("/mark-delivered", courierHandler.MarkDelivered)
	courier.Get("/delivered", courierHandler.Delivered)
	courier.Get("/statistics", courierHandler.Statistics)
}
