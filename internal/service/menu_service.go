package service

import (
	"context"
	"fmt"
	"strings"

	"repairshop/internal/model"
	"repairshop/internal/repository"
	"repairshop/pkg/response"

	"github.com/sirupsen/logrus"
)

// --- DTOs ---

type CreateButtonInput struct {
	ButtonName string `json:"buttonName" binding:"required"`
	ActionID   string `json:"actionId" binding:"required"`
}

type CreateMenuInput struct {
	MenuName string              `json:"menuName" binding:"required"`
	ActionID string              `json:"actionId" binding:"required"`
	Buttons  []CreateButtonInput `json:"buttons" binding:"required,dive"`
}

type CreateMenusRequest struct {
	Menus []CreateMenuInput `json:"menus" binding:"required,dive"`
}

type UpdateButtonInput struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	ActionID string `json:"actionId"`
}

type UpdateMenuRequest struct {
	Name       string              `json:"name"`
	ActionID   string              `json:"actionId"`
	Buttons    []UpdateButtonInput `json:"buttons"`
	IDsDeleted []uint              `json:"idsDeleted"`
}

type ButtonResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	ActionID string `json:"actionId"`
	MenuID   uint   `json:"menuId"`
}

type MenuResponse struct {
	ID       uint             `json:"id"`
	Name     string           `json:"name"`
	ActionID string           `json:"actionId"`
	Buttons  []ButtonResponse `json:"buttons"`
}

// ButtonPermission is a button annotated with the grant flag of a role
type ButtonPermission struct {
	ID       uint   `json:"id"`
	ActionID string `json:"actionId"`
	Name     string `json:"name"`
	MenuID   uint   `json:"menuId"`
	Checked  bool   `json:"checked"`
}

// MenuPermission is one node of a resolved permission tree
type MenuPermission struct {
	ID       uint               `json:"id"`
	Name     string             `json:"name"`
	ActionID string             `json:"actionId"`
	Buttons  []ButtonPermission `json:"buttons"`
}

// --- Interface ---

type MenuService interface {
	CreateMenus(ctx context.Context, req CreateMenusRequest) ([]MenuResponse, error)
	UpdateMenu(ctx context.Context, id uint, req UpdateMenuRequest) (*MenuResponse, error)
	DeleteMenu(ctx context.Context, id uint) error
	GetAllMenus(ctx context.Context) ([]MenuResponse, error)
	// GetAllMenusPartner returns the whole catalog with every button unchecked.
	GetAllMenusPartner(ctx context.Context) ([]MenuPermission, error)
	SeedDefaultCatalog(ctx context.Context) error
}

type menuService struct {
	repo   repository.MenuRepository
	tx     repository.TransactionManager
	cache  PermissionCache
	logger *logrus.Logger
}

func NewMenuService(repo repository.MenuRepository, tx repository.TransactionManager, cache PermissionCache, logger *logrus.Logger) MenuService {
	return &menuService{repo: repo, tx: tx, cache: cache, logger: logger}
}

// --- Implementation ---

func (s *menuService) CreateMenus(ctx context.Context, req CreateMenusRequest) ([]MenuResponse, error) {
	if len(req.Menus) == 0 {
		return nil, validationError()
	}
	for _, m := range req.Menus {
		if blank(m.MenuName) || blank(m.ActionID) || m.Buttons == nil {
			return nil, validationError()
		}
		for _, b := range m.Buttons {
			if blank(b.ButtonName) || blank(b.ActionID) {
				return nil, validationError()
			}
		}
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		batchButtons := make(map[string]bool)
		batchMenus := make(map[string]bool)
		for _, m := range req.Menus {
			// Button names and action ids are global on creation, batch included.
			for _, b := range m.Buttons {
				if batchButtons["name:"+b.ButtonName] || batchButtons["action:"+b.ActionID] {
					return conflict(response.MsgButtonAlreadyExists)
				}
				if taken, err := s.buttonTaken(txCtx, 0, b.ButtonName, b.ActionID); err != nil || taken {
					return orConflict(err, taken)
				}
				batchButtons["name:"+b.ButtonName] = true
				batchButtons["action:"+b.ActionID] = true
			}
			if batchMenus["name:"+m.MenuName] || batchMenus["action:"+m.ActionID] {
				return conflict(response.MsgMenuAlreadyExists)
			}
			batchMenus["name:"+m.MenuName] = true
			batchMenus["action:"+m.ActionID] = true
			if _, err := s.repo.FindConflict(txCtx, m.MenuName, m.ActionID, 0); err == nil {
				return conflict(response.MsgMenuAlreadyExists)
			} else if !isNotFound(err) {
				return fmt.Errorf("failed to check menu uniqueness: %w", err)
			}

			menu := &model.Menu{Name: m.MenuName, ActionID: m.ActionID}
			if err := s.repo.Create(txCtx, menu); err != nil {
				return fmt.Errorf("failed to create menu: %w", err)
			}
			for _, b := range m.Buttons {
				button := &model.Button{Name: b.ButtonName, ActionID: b.ActionID, MenuID: menu.ID}
				if err := s.repo.CreateButton(txCtx, button); err != nil {
					return fmt.Errorf("failed to create button: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Flush(ctx)
	return s.GetAllMenus(ctx)
}

func (s *menuService) UpdateMenu(ctx context.Context, id uint, req UpdateMenuRequest) (*MenuResponse, error) {
	for _, b := range req.Buttons {
		if blank(b.Name) || blank(b.ActionID) {
			return nil, validationError()
		}
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		menu, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			if isNotFound(err) {
				return notFound(response.MsgNotFound)
			}
			return fmt.Errorf("failed to fetch menu: %w", err)
		}

		if !blank(req.Name) {
			menu.Name = req.Name
		}
		if !blank(req.ActionID) {
			menu.ActionID = req.ActionID
		}
		if _, err := s.repo.FindConflict(txCtx, menu.Name, menu.ActionID, menu.ID); err == nil {
			return conflict(response.MsgMenuAlreadyExists)
		} else if !isNotFound(err) {
			return fmt.Errorf("failed to check menu uniqueness: %w", err)
		}
		if err := s.repo.Update(txCtx, menu); err != nil {
			return fmt.Errorf("failed to update menu: %w", err)
		}

		if err := s.repo.DeleteButtons(txCtx, menu.ID, req.IDsDeleted); err != nil {
			return fmt.Errorf("failed to delete buttons: %w", err)
		}

		for _, b := range req.Buttons {
			if err := s.upsertButton(txCtx, menu.ID, b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Flush(ctx)

	menu, err := s.repo.FindByIDWithButtons(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload menu: %w", err)
	}
	resp := toMenuResponse(*menu)
	return &resp, nil
}

// upsertButton renames a button of the menu or creates a new one.
// Collisions are only looked for among the buttons of the same menu.
func (s *menuService) upsertButton(ctx context.Context, menuID uint, in UpdateButtonInput) error {
	if in.ID != 0 {
		existing, err := s.repo.FindButtonInMenu(ctx, menuID, in.ID)
		if err != nil && !isNotFound(err) {
			return fmt.Errorf("failed to fetch button: %w", err)
		}
		if existing != nil {
			if existing.Name != in.Name {
				if taken, err := s.buttonTaken(ctx, menuID, in.Name, ""); err != nil || taken {
					return orConflict(err, taken)
				}
			}
			if existing.ActionID != in.ActionID {
				if taken, err := s.buttonTaken(ctx, menuID, "", in.ActionID); err != nil || taken {
					return orConflict(err, taken)
				}
			}
			existing.Name = in.Name
			existing.ActionID = in.ActionID
			if err := s.repo.UpdateButton(ctx, existing); err != nil {
				return fmt.Errorf("failed to update button: %w", err)
			}
			return nil
		}
	}

	if taken, err := s.buttonTaken(ctx, menuID, in.Name, in.ActionID); err != nil || taken {
		return orConflict(err, taken)
	}
	button := &model.Button{Name: in.Name, ActionID: in.ActionID, MenuID: menuID}
	if err := s.repo.CreateButton(ctx, button); err != nil {
		return fmt.Errorf("failed to create button: %w", err)
	}
	return nil
}

func (s *menuService) buttonTaken(ctx context.Context, menuID uint, name, actionID string) (bool, error) {
	_, err := s.repo.FindButtonConflict(ctx, menuID, name, actionID)
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check button uniqueness: %w", err)
}

func orConflict(err error, taken bool) error {
	if err != nil {
		return err
	}
	if taken {
		return conflict(response.MsgButtonAlreadyExists)
	}
	return nil
}

func (s *menuService) DeleteMenu(ctx context.Context, id uint) error {
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.FindByID(txCtx, id); err != nil {
			if isNotFound(err) {
				return notFound(response.MsgMenuNotFound)
			}
			return fmt.Errorf("failed to fetch menu: %w", err)
		}
		if err := s.repo.Delete(txCtx, id); err != nil {
			return fmt.Errorf("failed to delete menu: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.cache.Flush(ctx)
	return nil
}

func (s *menuService) GetAllMenus(ctx context.Context) ([]MenuResponse, error) {
	menus, err := s.repo.ListWithButtons(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch menus: %w", err)
	}
	res := make([]MenuResponse, 0, len(menus))
	for _, m := range menus {
		res = append(res, toMenuResponse(m))
	}
	return res, nil
}

func (s *menuService) GetAllMenusPartner(ctx context.Context) ([]MenuPermission, error) {
	menus, err := s.repo.ListWithButtons(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch menus: %w", err)
	}
	res := make([]MenuPermission, 0, len(menus))
	for _, m := range menus {
		node := MenuPermission{ID: m.ID, Name: m.Name, ActionID: m.ActionID, Buttons: make([]ButtonPermission, 0, len(m.Buttons))}
		for _, b := range m.Buttons {
			node.Buttons = append(node.Buttons, ButtonPermission{
				ID:       b.ID,
				ActionID: b.ActionID,
				Name:     b.Name,
				MenuID:   b.MenuID,
				Checked:  false,
			})
		}
		res = append(res, node)
	}
	return res, nil
}

// SeedDefaultCatalog inserts the default menus and buttons when the catalog is empty
func (s *menuService) SeedDefaultCatalog(ctx context.Context) error {
	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		count, err := s.repo.Count(txCtx)
		if err != nil {
			return fmt.Errorf("failed to count menus: %w", err)
		}
		if count > 0 {
			return nil
		}

		for _, m := range defaultCatalog {
			menu := &model.Menu{Name: m.MenuName, ActionID: m.ActionID}
			if err := s.repo.Create(txCtx, menu); err != nil {
				return fmt.Errorf("failed to seed menu %s: %w", m.ActionID, err)
			}
			for _, b := range m.Buttons {
				button := &model.Button{Name: b.ButtonName, ActionID: b.ActionID, MenuID: menu.ID}
				if err := s.repo.CreateButton(txCtx, button); err != nil {
					return fmt.Errorf("failed to seed button %s: %w", b.ActionID, err)
				}
			}
		}
		s.logger.WithField("menus", len(defaultCatalog)).Info("default menu catalog seeded")
		return nil
	})
}

func toMenuResponse(m model.Menu) MenuResponse {
	buttons := make([]ButtonResponse, 0, len(m.Buttons))
	for _, b := range m.Buttons {
		buttons = append(buttons, ButtonResponse{ID: b.ID, Name: b.Name, ActionID: b.ActionID, MenuID: b.MenuID})
	}
	return MenuResponse{ID: m.ID, Name: m.Name, ActionID: m.ActionID, Buttons: buttons}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
