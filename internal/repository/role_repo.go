package repository

import (
	"context"

	"repairshop/internal/model"

	"gorm.io/gorm"
)

type RoleRepository interface {
	Create(ctx context.Context, role *model.Role) error
	Rename(ctx context.Context, id uint, name string) error
	SoftDelete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Role, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]model.Role, error)

	CreateAssignments(ctx context.Context, assignments []model.PermissionAssignment) error
	// SetChecked toggles an existing assignment and reports how many rows matched.
	// It never inserts.
	SetChecked(ctx context.Context, roleID, menuID, buttonID uint, checked bool) (int64, error)
	ListAssignments(ctx context.Context, roleID uint) ([]model.PermissionAssignment, error)

	LinkUser(ctx context.Context, link *model.UserRoleLink) error
	FindUserLink(ctx context.Context, userID uint) (*model.UserRoleLink, error)
}

type roleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) Create(ctx context.Context, role *model.Role) error {
	return GetDB(ctx, r.db).Create(role).Error
}

func (r *roleRepository) Rename(ctx context.Context, id uint, name string) error {
	return GetDB(ctx, r.db).Model(&model.Role{}).Where("id = ?", id).Update("name", name).Error
}

func (r *roleRepository) SoftDelete(ctx context.Context, id uint) error {
	return GetDB(ctx, r.db).Model(&model.Role{}).Where("id = ?", id).Update("is_deleted", true).Error
}

func (r *roleRepository) FindByID(ctx context.Context, id uint) (*model.Role, error) {
	var role model.Role
	if err := GetDB(ctx, r.db).First(&role, id).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) ListByOwner(ctx context.Context, ownerID uint) ([]model.Role, error) {
	var roles []model.Role
	if err := GetDB(ctx, r.db).
		Where("created_by = ? AND is_deleted = ?", ownerID, false).
		Order("id asc").
		Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *roleRepository) CreateAssignments(ctx context.Context, assignments []model.PermissionAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(&assignments).Error
}

func (r *roleRepository) SetChecked(ctx context.Context, roleID, menuID, buttonID uint, checked bool) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.PermissionAssignment{}).
		Where("role_id = ? AND menu_id = ? AND button_id = ?", roleID, menuID, buttonID).
		Update("checked", checked)
	return res.RowsAffected, res.Error
}

// ListAssignments returns the rows of a role ordered by menu, then insertion order.
func (r *roleRepository) ListAssignments(ctx context.Context, roleID uint) ([]model.PermissionAssignment, error) {
	var rows []model.PermissionAssignment
	if err := GetDB(ctx, r.db).
		Where("role_id = ?", roleID).
		Order("menu_id asc").Order("id asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *roleRepository) LinkUser(ctx context.Context, link *model.UserRoleLink) error {
	return GetDB(ctx, r.db).Create(link).Error
}

func (r *roleRepository) FindUserLink(ctx context.Context, userID uint) (*model.UserRoleLink, error) {
	var link model.UserRoleLink
	if err := GetDB(ctx, r.db).Where("user_id = ?", userID).Order("id asc").First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}
