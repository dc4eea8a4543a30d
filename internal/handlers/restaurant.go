package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/yemak/internal/middleware"
	"github.com/example/yemak/internal/models"
	"github.com/example/yemak/internal/services"
)

// RestaurantHandler manages the restaurant manager's surface: branches,
// the restaurant catalog and the restaurant statistics view.
type RestaurantHandler struct {
	db    *gorm.DB
	stats *services.StatisticsService
}

// NewRestaurantHandler constructs a RestaurantHandler.
func NewRestaurantHandler(db *gorm.DB, stats *services.StatisticsService) *RestaurantHandler {
	return &RestaurantHandler{db: db, stats: stats}
}

// currentRestaurant resolves the restaurant managed by the actor.
func (h *RestaurantHandler) currentRestaurant(c *fiber.Ctx) (*models.Restaurant, error) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var restaurant models.Restaurant
	err := h.db.First(&restaurant, "manager_id = ? AND is_deleted = ?", actor.ID, false).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "no restaurant found for this account")
		}
		return nil, err
	}
	return &restaurant, nil
}

// ListBranches lists the branches of the manager's restaurant.
func (h *RestaurantHandler) ListBranches(c *fiber.Ctx) error {
	restaurant, err := h.currentRestaurant(c)
	if err != nil {
		return err
	}

	var branches []models.Branch
	if err := h.db.Where("restaurant_id = ? AND is_deleted = ?", restaurant.ID, false).
		Find(&branches).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Branches",
		"data":    branches,
	})
}

type createBranchRequest struct {
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	PhoneNumber string  `json:"phone_number"`
	Longitude   float64 `json:"longitude"`
	Latitude    float64 `json:"latitude"`
	ManagerID   string  `json:"manager_id"`
}

// CreateBranch creates a branch under the manager's restaurant.
func (h *RestaurantHandler) CreateBranch(c *fiber.Ctx) error {
	restaurant, err := h.currentRestaurant(c)
	if err != nil {
		return err
	}

	var req createBranchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if errs := requireFields(fiber.Map{"name": req.Name, "address": req.Address}); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid data",
			"errors":  errs,
		})
	}

	branch := models.Branch{
		Name:         req.Name,
		Address:      req.Address,
		PhoneNumber:  req.PhoneNumber,
		Longitude:    req.Longitude,
		Latitude:     req.Latitude,
		RestaurantID: restaurant.ID,
		IsActive:     true,
	}

	if req.ManagerID != "" {
		if managerID, err := uuid.Parse(req.ManagerID); err == nil {
			branch.ManagerID = &managerID
		}
	}

	if err := h.db.Create(&branch).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Branch created",
		"data":    branch,
	})
}

// AddOrRemoveProducts adds catalog products to the manager's restaurant,
// or removes them. Requested IDs that are not in the catalog are ignored;
// if none resolve, nothing is mutated.
func (h *RestaurantHandler) AddOrRemoveProducts(c *fiber.Ctx) error {
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

	restaurant, err := h.currentRestaurant(c)
	if err != nil {
		return err
	}

	var matched []uuid.UUID
	err = h.db.Model(&models.Product{}).
		Where("id IN ? AND is_deleted = ?", productIDs, false).
		Pluck("id", &matched).Error
	if err != nil {
		return err
	}
	if len(matched) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "No matching products found for the restaurant.",
		})
	}

	message := "Products added successfully."
	if action == models.ActionAdd {
		for _, productID := range matched {
			link := models.RestaurantProduct{RestaurantID: restaurant.ID, ProductID: productID}
			if err := h.db.Where(models.RestaurantProduct{RestaurantID: restaurant.ID, ProductID: productID}).
				FirstOrCreate(&link).Error; err != nil {
				return err
			}
		}
	} else {
		message = "Products removed successfully."
		if err := h.db.Where("restaurant_id = ? AND product_id IN ?", restaurant.ID, matched).
			Delete(&models.RestaurantProduct{}).Error; err != nil {
			return err
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": message,
	})
}

// Statistics returns the restaurant statistics view filtered by fbd/fbt/fbm.
func (h *RestaurantHandler) Statistics(c *fiber.Ctx) error {
	restaurant, err := h.currentRestaurant(c)
	if err != nil {
		return err
	}

	result, err := h.stats.RestaurantStatistics(c.Context(), restaurant.ID, statisticsQuery(c))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Restaurant statistics",
		"data":    result,
	})
}
