package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/yemak/internal/middleware"
	"github.com/example/yemak/internal/models"
	"github.com/example/yemak/internal/services"
	"github.com/example/yemak/internal/store"
	"github.com/example/yemak/internal/utils"
)

// CourierHandler manages the courier side of the order lifecycle. The
// courier transitions never name an order id: each acts on the courier's
// oldest order sitting in the required source state.
type CourierHandler struct {
	orders      store.OrderStore
	transitions *services.TransitionService
	stats       *services.StatisticsService
}

// NewCourierHandler constructs a CourierHandler.
func NewCourierHandler(orders store.OrderStore, transitions *services.TransitionService, stats *services.StatisticsService) *CourierHandler {
	return &CourierHandler{orders: orders, transitions: transitions, stats: stats}
}

// Accept takes the courier's oldest order waiting for a courier and hands
// it to the restaurant queue.
func (h *CourierHandler) Accept(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	order, err := h.transitions.CourierAccept(c.Context(), actor)
	if err != nil {
		return respondServiceError(c, err, "No pending orders found for this courier")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Order accepted for delivery",
		"data":    order,
	})
}

// MarkDelivering moves the courier's oldest restaurant-confirmed order
// into delivery.
func (h *CourierHandler) MarkDelivering(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	order, err := h.transitions.MarkDelivering(c.Context(), actor)
	if err != nil {
		return respondServiceError(c, err, "No confirmed from restaurant orders found")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Order marked as delivering",
		"data":    order,
	})
}

// MarkDelivered completes the courier's order currently being delivered.
func (h *CourierHandler) MarkDelivered(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	order, err := h.transitions.MarkDelivered(c.Context(), actor)
	if err != nil {
		return respondServiceError(c, err, "No pending delivery order found for this courier")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Order marked as delivered",
		"data":    order,
	})
}

// Delivered lists the courier's delivered orders.
func (h *CourierHandler) Delivered(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)
	filter := store.OrderFilter{CourierID: actor.ID, Status: models.StatusDelivered}

	orders, total, err := h.orders.Find(c.Context(), filter, pg.Page, pg.Limit)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Delivered orders",
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// Statistics returns the courier statistics view. Only the fbd date filter
// is honored; couriers have no status filter.
func (h *CourierHandler) Statistics(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	result, err := h.stats.CourierStatistics(c.Context(), actor.ID, statisticsQuery(c))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Courier statistics",
		"data":    result,
	})
}
