package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/yemak/internal/config"
	"github.com/example/yemak/internal/models"
	"github.com/example/yemak/internal/utils"
)

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	db  *gorm.DB
	cfg *config.Config
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg}
}

type loginRequest struct {
	Phone    string `json:"phone_number"`
	Password string `json:"password"`
}

// Login authenticates a customer by phone number. An unknown phone number
// creates a fresh customer account on the spot.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if errs := requireFields(fiber.Map{"phone_number": req.Phone, "password": req.Password}); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid data",
			"errors":  errs,
		})
	}

	var user models.User
	err := h.db.Where("phone = ?", req.Phone).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		passwordHash, hashErr := utils.HashPassword(req.Password)
		if hashErr != nil {
			return hashErr
		}

		user = models.User{
			Phone:        req.Phone,
			Username:     "user" + req.Phone,
			PasswordHash: passwordHash,
			Role:         models.RoleUser,
			Status:       models.UserStatusActive,
		}
		if err := h.db.Create(&user).Error; err != nil {
			return err
		}

		return h.respondWithToken(c, &user, "Login successful but another datas necessary!")
	}
	if err != nil {
		return err
	}

	if user.Status != models.UserStatusActive || !utils.CheckPassword(user.PasswordHash, req.Password) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "User does not exist or password is incorrect",
		})
	}

	return h.respondWithToken(c, &user, "Login successful")
}

type staffLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginStaff authenticates staff accounts (restaurant, branch, courier,
// admin) by username. Plain customer accounts are rejected.
func (h *AuthHandler) LoginStaff(c *fiber.Ctx) error {
	var req staffLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if errs := requireFields(fiber.Map{"username": req.Username, "password": req.Password}); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid data",
			"errors":  errs,
		})
	}

	var user models.User
	if err := h.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "User does not exist",
			})
		}
		return err
	}

	if !isStaff(user.Role) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "User is not allowed",
		})
	}

	if user.Status != models.UserStatusActive || !utils.CheckPassword(user.PasswordHash, req.Password) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "User does not exist or password is incorrect",
		})
	}

	return h.respondWithToken(c, &user, "Login successful")
}

func (h *AuthHandler) respondWithToken(c *fiber.Ctx, user *models.User, message string) error {
	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, user.Role, h.cfg.TokenExpires)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": message,
		"data": fiber.Map{
			"token":        token,
			"user_id":      user.ID,
			"phone_number": user.Phone,
			"role":         user.Role,
		},
	})
}

func isStaff(role models.Role) bool {
	for _, staff := range models.StaffRoles {
		if role == staff {
			return true
		}
	}
	return false
}

// requireFields reports the names of empty required fields.
func requireFields(fields fiber.Map) fiber.Map {
	errs := fiber.Map{}
	for name, value := range fields {
		if s, ok := value.(string); ok && s == "" {
			errs[name] = fmt.Sprintf("%s is required", name)
		}
	}
	return errs
}
