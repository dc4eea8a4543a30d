package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/yemak/internal/middleware"
	"github.com/example/yemak/internal/models"
	"github.com/example/yemak/internal/services"
	"github.com/example/yemak/internal/store"
	"github.com/example/yemak/internal/utils"
)

// OrderHandler manages order placement and the customer-facing order views.
type OrderHandler struct {
	db          *gorm.DB
	orders      store.OrderStore
	transitions *services.TransitionService
}

// NewOrderHandler constructs an OrderHandler.
func NewOrderHandler(db *gorm.DB, orders store.OrderStore, transitions *services.TransitionService) *OrderHandler {
	return &OrderHandler{db: db, orders: orders, transitions: transitions}
}

type orderItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type createOrderRequest struct {
	BranchID          string             `json:"branch_id"`
	DeliveryAddressID string             `json:"delivery_address_id"`
	Items             []orderItemRequest `json:"items"`
}

// CreateOrder places a new order for the authenticated customer. Item
// prices are snapshotted from the catalog; later price changes never
// affect a placed order.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if len(req.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid data",
			"errors":  fiber.Map{"items": "at least one item is required"},
		})
	}

	order := models.Order{
		UserID: actor.ID,
		Status: models.StatusPendingCourier,
	}

	if req.BranchID != "" {
		branchID, err := uuid.Parse(req.BranchID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid data",
				"errors":  fiber.Map{"branch_id": "must be a valid id"},
			})
		}

		var branch models.Branch
		if err := h.db.First(&branch, "id = ? AND is_deleted = ?", branchID, false).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "branch not found")
			}
			return err
		}
		order.BranchID = &branch.ID
		order.RestaurantID = &branch.RestaurantID
	}

	if req.DeliveryAddressID != "" {
		if addressID, err := uuid.Parse(req.DeliveryAddressID); err == nil {
			order.DeliveryAddressID = &addressID
		}
	}

	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid data",
				"errors":  fiber.Map{"items": "product_id must be a valid id"},
			})
		}

		quantity := item.Quantity
		if quantity == 0 {
			quantity = 1
		}
		if quantity < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid data",
				"errors":  fiber.Map{"items": "quantity must be positive"},
			})
		}

		var product models.Product
		err = h.db.First(&product, "id = ? AND is_active = ? AND is_deleted = ?", productID, true, false).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "product not found")
			}
			return err
		}

		order.Items = append(order.Items, models.OrderItem{
			ProductID:    &product.ID,
			Quantity:     quantity,
			PricePerItem: product.Price,
			TotalPrice:   quantity * product.Price,
		})
	}

	if err := h.orders.Create(c.Context(), &order); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Order placed",
		"data":    order,
	})
}

// ListOrders returns the authenticated customer's orders.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)
	filter := store.OrderFilter{UserID: actor.ID}
	if status := models.OrderStatus(c.Query("status")); status.Valid() {
		filter.Status = status
	}

	orders, total, err := h.orders.Find(c.Context(), filter, pg.Page, pg.Limit)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Orders",
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetOrder returns a single order owned by the authenticated customer.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	order, err := h.orders.Get(c.Context(), id)
	if err != nil || order.UserID != actor.ID {
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		return fiber.NewError(fiber.StatusNotFound, "order not found")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Order",
		"data":    order,
	})
}

// CancelOrder cancels the customer's own order while it is still waiting
// for a courier.
func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	order, err := h.transitions.CancelOrder(c.Context(), actor, id)
	if err != nil {
		return respondServiceError(c, err, "No cancellable order found")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Order cancelled",
		"data":    order,
	})
}

type assignCourierRequest struct {
	CourierID string `json:"courier_id"`
}

// AssignCourier attaches a courier to an order that is still waiting for
// one. Admin only; the courier flows are unreachable without it.
func (h *OrderHandler) AssignCourier(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req assignCourierRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	courierID, err := uuid.Parse(req.CourierID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid data",
			"errors":  fiber.Map{"courier_id": "must be a valid id"},
		})
	}

	var courier models.User
	err = h.db.First(&courier, "id = ? AND role = ? AND is_deleted = ?", courierID, models.RoleCourier, false).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "courier not found")
		}
		return err
	}

	order, err := h.orders.AssignCourier(c.Context(), orderID, courierID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "no order waiting for a courier")
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Courier assigned",
		"data":    order,
	})
}
