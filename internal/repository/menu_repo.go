package repository

import (
	"context"

	"repairshop/internal/model"

	"gorm.io/gorm"
)

type MenuRepository interface {
	Create(ctx context.Context, menu *model.Menu) error
	Update(ctx context.Context, menu *model.Menu) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
	FindByID(ctx context.Context, id uint) (*model.Menu, error)
	FindByIDWithButtons(ctx context.Context, id uint) (*model.Menu, error)
	FindByIDs(ctx context.Context, ids []uint) ([]model.Menu, error)
	// FindConflict returns a menu other than excludeID using name or actionID.
	FindConflict(ctx context.Context, name, actionID string, excludeID uint) (*model.Menu, error)
	ListWithButtons(ctx context.Context) ([]model.Menu, error)

	CreateButton(ctx context.Context, button *model.Button) error
	UpdateButton(ctx context.Context, button *model.Button) error
	DeleteButtons(ctx context.Context, menuID uint, ids []uint) error
	FindButtonInMenu(ctx context.Context, menuID, buttonID uint) (*model.Button, error)
	FindButtonsByIDs(ctx context.Context, ids []uint) ([]model.Button, error)
	// FindButtonConflict looks for a button using name or actionID; an empty value is
	// not matched. menuID 0 searches every menu.
	FindButtonConflict(ctx context.Context, menuID uint, name, actionID string) (*model.Button, error)
}

type menuRepository struct {
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) MenuRepository {
	return &menuRepository{db: db}
}

func (r *menuRepository) Create(ctx context.Context, menu *model.Menu) error {
	return GetDB(ctx, r.db).Create(menu).Error
}

func (r *menuRepository) Update(ctx context.Context, menu *model.Menu) error {
	return GetDB(ctx, r.db).Model(menu).Select("name", "action_id").Updates(menu).Error
}

// Delete removes the menu with its buttons and every assignment referencing it.
func (r *menuRepository) Delete(ctx context.Context, id uint) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("menu_id = ?", id).Delete(&model.PermissionAssignment{}).Error; err != nil {
		return err
	}
	if err := db.Where("menu_id = ?", id).Delete(&model.Button{}).Error; err != nil {
		return err
	}
	return db.Delete(&model.Menu{}, id).Error
}

func (r *menuRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.Menu{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *menuRepository) FindByID(ctx context.Context, id uint) (*model.Menu, error) {
	var menu model.Menu
	if err := GetDB(ctx, r.db).First(&menu, id).Error; err != nil {
		return nil, err
	}
	return &menu, nil
}

func (r *menuRepository) FindByIDWithButtons(ctx context.Context, id uint) (*model.Menu, error) {
	var menu model.Menu
	if err := GetDB(ctx, r.db).Preload("Buttons", orderByID).First(&menu, id).Error; err != nil {
		return nil, err
	}
	return &menu, nil
}

func (r *menuRepository) FindByIDs(ctx context.Context, ids []uint) ([]model.Menu, error) {
	var menus []model.Menu
	if len(ids) == 0 {
		return menus, nil
	}
	if err := GetDB(ctx, r.db).Where("id IN ?", ids).Order("id asc").Find(&menus).Error; err != nil {
		return nil, err
	}
	return menus, nil
}

func (r *menuRepository) FindConflict(ctx context.Context, name, actionID string, excludeID uint) (*model.Menu, error) {
	var menu model.Menu
	q := GetDB(ctx, r.db).Where("(name = ? OR action_id = ?)", name, actionID)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.First(&menu).Error; err != nil {
		return nil, err
	}
	return &menu, nil
}

func (r *menuRepository) ListWithButtons(ctx context.Context) ([]model.Menu, error) {
	var menus []model.Menu
	if err := GetDB(ctx, r.db).Preload("Buttons", orderByID).Order("id asc").Find(&menus).Error; err != nil {
		return nil, err
	}
	return menus, nil
}

func (r *menuRepository) CreateButton(ctx context.Context, button *model.Button) error {
	return GetDB(ctx, r.db).Create(button).Error
}

func (r *menuRepository) UpdateButton(ctx context.Context, button *model.Button) error {
	return GetDB(ctx, r.db).Model(button).Select("name", "action_id").Updates(button).Error
}

// DeleteButtons removes the given buttons of a menu and their assignments.
// Ids belonging to another menu are ignored.
func (r *menuRepository) DeleteButtons(ctx context.Context, menuID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	db := GetDB(ctx, r.db)
	if err := db.Where("menu_id = ? AND button_id IN ?", menuID, ids).Delete(&model.PermissionAssignment{}).Error; err != nil {
		return err
	}
	return db.Where("menu_id = ? AND id IN ?", menuID, ids).Delete(&model.Button{}).Error
}

func (r *menuRepository) FindButtonInMenu(ctx context.Context, menuID, buttonID uint) (*model.Button, error) {
	var button model.Button
	if err := GetDB(ctx, r.db).Where("menu_id = ? AND id = ?", menuID, buttonID).First(&button).Error; err != nil {
		return nil, err
	}
	return &button, nil
}

func (r *menuRepository) FindButtonsByIDs(ctx context.Context, ids []uint) ([]model.Button, error) {
	var buttons []model.Button
	if len(ids) == 0 {
		return buttons, nil
	}
	if err := GetDB(ctx, r.db).Where("id IN ?", ids).Order("id asc").Find(&buttons).Error; err != nil {
		return nil, err
	}
	return buttons, nil
}

func (r *menuRepository) FindButtonConflict(ctx context.Context, menuID uint, name, actionID string) (*model.Button, error) {
	var button model.Button
	db := GetDB(ctx, r.db)

	var q *gorm.DB
	switch {
	case name != "" && actionID != "":
		q = db.Where("(name = ? OR action_id = ?)", name, actionID)
	case name != "":
		q = db.Where("name = ?", name)
	case actionID != "":
		q = db.Where("action_id = ?", actionID)
	default:
		return nil, gorm.ErrRecordNotFound
	}

	if menuID != 0 {
		q = q.Where("menu_id = ?", menuID)
	}
	if err := q.First(&button).Error; err != nil {
		return nil, err
	}
	return &button, nil
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id asc")
}
