package models

// Role identifies what kind of actor an account represents.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleUser       Role = "user"
	RoleRestaurant Role = "restaurant"
	RoleBranch     Role = "branch"
	RoleCourier    Role = "courier"
)

// StaffRoles lists the roles allowed through the staff login endpoint.
var StaffRoles = []Role{RoleRestaurant, RoleBranch, RoleCourier, RoleAdmin}

// UserStatus reflects whether an account may authenticate.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
	UserStatusDeleted  UserStatus = "deleted"
)

// User represents any authenticated account: customers, couriers,
// restaurant and branch managers, admins.
type User struct {
	BaseModel
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Phone        string     `gorm:"uniqueIndex" json:"phone"`
	Username     string     `gorm:"index" json:"username"`
	PasswordHash string     `json:"-"`
	Role         Role       `gorm:"default:user" json:"role"`
	Status       UserStatus `gorm:"default:active" json:"status"`
}
