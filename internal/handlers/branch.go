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

// BranchHandler manages the branch side: confirming orders, curating the
// branch product set and the branch statistics view.
type BranchHandler struct {
	db          *gorm.DB
	orders      store.OrderStore
	transitions *services.TransitionService
	stats       *services.StatisticsService
}

// NewBranchHandler constructs a BranchHandler.
func NewBranchHandler(db *gorm.DB, orders store.OrderStore, transitions *services.TransitionService, stats *services.StatisticsService) *BranchHandler {
	return &BranchHandler{db: db, orders: orders, transitions: transitions, stats: stats}
}

// currentBranch resolves the branch managed by the authenticated actor.
func (h *BranchHandler) currentBranch(c *fiber.Ctx) (*models.Branch, error) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var branch models.Branch
	err := h.db.First(&branch, "manager_id = ? AND is_deleted = ?", actor.ID, false).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "no branch found for this account")
		}
		return nil, err
	}
	return &branch, nil
}

// PendingOrders lists the branch's orders waiting for confirmation.
func (h *BranchHandler) PendingOrders(c *fiber.Ctx) error {
	branch, err := h.currentBranch(c)
	if err != nil {
		return err
	}

	pg := utils.ParsePagination(c)
	filter := store.OrderFilter{BranchID: branch.ID, Status: models.StatusPendingRestaurant}

	orders, total, err := h.orders.Find(c.Context(), filter, pg.Page, pg.Limit)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Pending orders",
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

type acceptOrderRequest struct {
	OrderID string `json:"order_id"`
}

// AcceptOrder confirms one of the branch's pending orders.
func (h *BranchHandler) AcceptOrder(c *fiber.Ctx) error {
	actor, _ := middleware.CurrentActor(c)

	var req acceptOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid data",
			"errors":  fiber.Map{"order_id": "must be a valid id"},
		})
	}

	branch, err := h.currentBranch(c)
	if err != nil {
		return err
	}

	order, err := h.transitions.ConfirmOrder(c.Context(), actor, branch.ID, orderID)
	if err != nil {
		return respondServiceError(c, err, "No pending order found for this branch")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Order accepted",
		"data":    order,
	})
}

// AddOrRemoveProducts adds products from the parent restaurant's catalog
// to this branch, or removes them. Requested IDs outside the restaurant
// catalog are ignored; if none match, nothing is mutated.
func (h *BranchHandler) AddOrRemoveProducts(c *fiber.Ctx) error {
	var req addOrRemoveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	action := models.Action(req.Action)
	if req.Action == "" {
		action = models.ActionAdd
	}
	if !action.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid action.",
		})
	}

	productIDs := parseProductIDs(req.ProductIDs)
	if len(productIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid data",
			"errors":  fiber.Map{"product_ids": "at least one valid product id is required"},
		})
	}

	branch, err := h.currentBranch(c)
	if err != nil {
		return err
	}

	var matched []uuid.UUID
	err = h.db.Model(&models.RestaurantProduct{}).
		Where("restaurant_id = ? AND product_id IN ? AND is_deleted = ?", branch.RestaurantID, productIDs, false).
		Pluck("product_id", &matched).Error
	if err != nil {
		return err
	}
	if len(matched) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "No matching products found for the branch.",
		})
	}

	message := "Products added successfully."
	if action == models.ActionAdd {
		for _, productID := range matched {
			link := models.BranchProduct{BranchID: branch.ID, ProductID: productID}
			if err := h.db.Where(models.BranchProduct{BranchID: branch.ID, ProductID: productID}).
				FirstOrCreate(&link).Error; err != nil {
				return err
			}
		}
	} else {
		message = "Products removed successfully."
		if err := h.db.Where("branch_id = ? AND product_id IN ?", branch.ID, matched).
			Delete(&models.BranchProduct{}).Error; err != nil {
			return err
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": message,
	})
}

// Statistics returns the branch statistics view filtered by fbd/fbt/fbm.
func (h *BranchHandler) Statistics(c *fiber.Ctx) error {
	branch, err := h.currentBranch(c)
	if err != nil {
		return err
	}

	result, err := h.stats.BranchStatistics(c.Context(), branch.ID, statisticsQuery(c))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Branch statistics",
		"data":    result,
	})
}
