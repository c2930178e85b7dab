package model

import (
	"time"
)

// Role is a tenant-owned set of button grants. Roles are never hard-deleted.
type Role struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	CreatedBy uint      `gorm:"not null;index" json:"createdBy"`
	IsDeleted bool      `gorm:"not null" json:"isDeleted"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PermissionAssignment grants or denies one button of one menu to one role.
type PermissionAssignment struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	RoleID   uint `gorm:"not null;index" json:"roleId"`
	MenuID   uint `gorm:"not null;index" json:"menuId"`
	ButtonID uint `gorm:"not null;index" json:"buttonId"`
	Checked  bool `gorm:"not null" json:"checked"`
}

func (PermissionAssignment) TableName() string { return "menus_role" }
