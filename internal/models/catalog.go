package models

import "github.com/google/uuid"

// Product is a catalog entry. Its price is a snapshot source for order
// items; changing it never affects already-placed orders.
type Product struct {
	BaseModel
	Name     string `json:"name"`
	Price    int    `json:"price"`
	IsActive bool   `gorm:"default:true" json:"is_active"`
}

// Restaurant groups branches under a single manager account.
type Restaurant struct {
	BaseModel
	Name        string     `gorm:"uniqueIndex" json:"name"`
	ManagerID   *uuid.UUID `gorm:"type:uuid;index" json:"manager_id"`
	PhoneNumber string     `json:"phone_number"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`
}

// Branch is a physical location of a restaurant with its own manager.
type Branch struct {
	BaseModel
	Name         string     `gorm:"uniqueIndex" json:"name"`
	Address      string     `json:"address"`
	PhoneNumber  string     `json:"phone_number"`
	Longitude    float64    `json:"longitude"`
	Latitude     float64    `json:"latitude"`
	ManagerID    *uuid.UUID `gorm:"type:uuid;index" json:"manager_id"`
	RestaurantID uuid.UUID  `gorm:"type:uuid;index" json:"restaurant_id"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
}

// RestaurantProduct links a product into a restaurant's catalog.
type RestaurantProduct struct {
	BaseModel
	RestaurantID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_restaurant_product" json:"restaurant_id"`
	ProductID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_restaurant_product" json:"product_id"`
}

// BranchProduct links a product from the restaurant catalog into a branch.
type BranchProduct struct {
	BaseModel
	BranchID  uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_branch_product" json:"branch_id"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_branch_product" json:"product_id"`
}

// Action selects how a product-association request mutates the set.
type Action string

const (
	ActionAdd    Action = "add"
	ActionRemove Action = "remove"
)

// Valid reports whether a is a recognized action.
func (a Action) Valid() bool {
	return a == ActionAdd || a == ActionRemove
}
