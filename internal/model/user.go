package model

import (
	"time"
)

// User types carried in the token "role" claim
const (
	TypeAdmin    = "admin"
	TypePartner  = "partner"
	TypeEmployee = "employee"
	TypeClient   = "client"
)

// User is any account of the platform. Employees and clients belong to the
// partner referenced by TenantID; partners and admins have no tenant.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Email       string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone       string    `gorm:"type:varchar(30);not null" json:"phone"`
	Password    string    `gorm:"type:varchar(255);not null" json:"-"`
	CompanyName string    `gorm:"type:varchar(255)" json:"companyName"`
	FullName    string    `gorm:"type:varchar(255)" json:"fullName"`
	Type        string    `gorm:"type:varchar(20);not null;index" json:"type"`
	TenantID    *uint     `gorm:"index" json:"tenantId"`
	IsDeleted   bool      `gorm:"not null" json:"isDeleted"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// OwnerID is the tenant scoping key: the tenant when set, the user otherwise.
func (u User) OwnerID() uint {
	if u.TenantID != nil {
		return *u.TenantID
	}
	return u.ID
}

// UserRoleLink binds a user to a role. Resolution uses the first link found.
type UserRoleLink struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;index" json:"userId"`
	RoleID uint `gorm:"not null;index" json:"roleId"`
}

func (UserRoleLink) TableName() string { return "user_roles" }
