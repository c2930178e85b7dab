package service

import (
	"context"
	"fmt"
	"sort"

	"repairshop/internal/model"
	"repairshop/internal/repository"
	"repairshop/pkg/response"

	"github.com/sirupsen/logrus"
)

// --- DTOs ---

type RoleButtonInput struct {
	ID       *uint  `json:"id" binding:"required"`
	MenuID   uint   `json:"menuId"`
	Name     string `json:"name"`
	ActionID string `json:"actionId"`
	Checked  *bool  `json:"checked" binding:"required"`
}

type RoleMenuInput struct {
	ID       *uint             `json:"id" binding:"required"`
	Name     string            `json:"name"`
	ActionID string            `json:"actionId"`
	Buttons  []RoleButtonInput `json:"buttons" binding:"required,dive"`
}

type CreateRoleRequest struct {
	Name  string          `json:"name" binding:"required"`
	Menus []RoleMenuInput `json:"menus" binding:"required,dive"`
}

// UpdateRoleRequest renames the role and toggles existing grants only
type UpdateRoleRequest struct {
	Name  string          `json:"name" binding:"required"`
	Menus []RoleMenuInput `json:"menus" binding:"required,dive"`
}

type RoleResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	CreatedBy uint   `json:"createdBy"`
	IsDeleted bool   `json:"isDeleted"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// --- Interface ---

type RoleService interface {
	CreateRole(ctx context.Context, caller model.Identity, req CreateRoleRequest) (*RoleResponse, error)
	UpdateRole(ctx context.Context, caller model.Identity, id uint, req UpdateRoleRequest) (*RoleResponse, error)
	DeleteRole(ctx context.Context, caller model.Identity, id uint) error
	GetAllRoles(ctx context.Context, ownerID uint) ([]RoleResponse, error)
	// GetAllMenusRole resolves a role owned by the caller's tenant.
	GetAllMenusRole(ctx context.Context, caller model.Identity, roleID uint) ([]MenuPermission, error)
	// GetPermissions resolves the role linked to the user.
	GetPermissions(ctx context.Context, userID uint) ([]MenuPermission, error)
	ResolvePermissionsForRole(ctx context.Context, roleID uint) ([]MenuPermission, error)
}

type roleService struct {
	roles  repository.RoleRepository
	menus  repository.MenuRepository
	users  repository.UserRepository
	tx     repository.TransactionManager
	audit  AuditService
	cache  PermissionCache
	logger *logrus.Logger
}

func NewRoleService(
	roles repository.RoleRepository,
	menus repository.MenuRepository,
	users repository.UserRepository,
	tx repository.TransactionManager,
	audit AuditService,
	cache PermissionCache,
	logger *logrus.Logger,
) RoleService {
	return &roleService{roles: roles, menus: menus, users: users, tx: tx, audit: audit, cache: cache, logger: logger}
}

// --- Implementation ---

func validRoleMenus(menus []RoleMenuInput) bool {
	if menus == nil {
		return false
	}
	for _, m := range menus {
		if m.ID == nil || *m.ID == 0 || m.Buttons == nil {
			return false
		}
		for _, b := range m.Buttons {
			if b.ID == nil || *b.ID == 0 || b.Checked == nil {
				return false
			}
		}
	}
	return true
}

func (s *roleService) CreateRole(ctx context.Context, caller model.Identity, req CreateRoleRequest) (*RoleResponse, error) {
	if blank(req.Name) || !validRoleMenus(req.Menus) {
		return nil, validationError()
	}

	role := &model.Role{Name: req.Name, CreatedBy: caller.OwnerID()}
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.roles.Create(txCtx, role); err != nil {
			return fmt.Errorf("failed to create role: %w", err)
		}

		var assignments []model.PermissionAssignment
		for _, m := range req.Menus {
			for _, b := range m.Buttons {
				assignments = append(assignments, model.PermissionAssignment{
					RoleID:   role.ID,
					MenuID:   *m.ID,
					ButtonID: *b.ID,
					Checked:  *b.Checked,
				})
			}
		}
		if err := s.roles.CreateAssignments(txCtx, assignments); err != nil {
			return fmt.Errorf("failed to create role assignments: %w", err)
		}

		return s.audit.Record(txCtx, caller.ID, model.ActionCreateRole, role.ID, role.Name,
			map[string]interface{}{"assignments": len(assignments)})
	})
	if err != nil {
		return nil, err
	}

	resp := toRoleResponse(*role)
	return &resp, nil
}

func (s *roleService) UpdateRole(ctx context.Context, caller model.Identity, id uint, req UpdateRoleRequest) (*RoleResponse, error) {
	if blank(req.Name) || !validRoleMenus(req.Menus) {
		return nil, validationError()
	}

	var role *model.Role
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		role, err = s.roles.FindByID(txCtx, id)
		if err != nil {
			if isNotFound(err) {
				return notFound(response.MsgRoleNotFound)
			}
			return fmt.Errorf("failed to fetch role: %w", err)
		}

		if err := s.roles.Rename(txCtx, role.ID, req.Name); err != nil {
			return fmt.Errorf("failed to rename role: %w", err)
		}
		role.Name = req.Name

		var toggled int64
		for _, m := range req.Menus {
			for _, b := range m.Buttons {
				// Unknown pairs match no row and are left alone.
				n, err := s.roles.SetChecked(txCtx, role.ID, *m.ID, *b.ID, *b.Checked)
				if err != nil {
					return fmt.Errorf("failed to toggle assignment: %w", err)
				}
				toggled += n
			}
		}

		return s.audit.Record(txCtx, caller.ID, model.ActionUpdateRole, role.ID, role.Name,
			map[string]interface{}{"toggled": toggled})
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, id)

	resp := toRoleResponse(*role)
	return &resp, nil
}

func (s *roleService) DeleteRole(ctx context.Context, caller model.Identity, id uint) error {
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		role, err := s.roles.FindByID(txCtx, id)
		if err != nil {
			if isNotFound(err) {
				return notFound(response.MsgNotFound)
			}
			return fmt.Errorf("failed to fetch role: %w", err)
		}
		if role.CreatedBy != caller.OwnerID() {
			return forbidden(response.MsgForbidden)
		}
		if err := s.roles.SoftDelete(txCtx, role.ID); err != nil {
			return fmt.Errorf("failed to delete role: %w", err)
		}
		return s.audit.Record(txCtx, caller.ID, model.ActionDeleteRole, role.ID, role.Name, nil)
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, id)
	return nil
}

func (s *roleService) GetAllRoles(ctx context.Context, ownerID uint) ([]RoleResponse, error) {
	roles, err := s.roles.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roles: %w", err)
	}
	res := make([]RoleResponse, 0, len(roles))
	for _, r := range roles {
		res = append(res, toRoleResponse(r))
	}
	return res, nil
}

func (s *roleService) GetAllMenusRole(ctx context.Context, caller model.Identity, roleID uint) ([]MenuPermission, error) {
	role, err := s.roles.FindByID(ctx, roleID)
	if err != nil {
		if isNotFound(err) {
			return nil, notFound(response.MsgNotFound)
		}
		return nil, fmt.Errorf("failed to fetch role: %w", err)
	}
	if role.CreatedBy != caller.OwnerID() {
		return nil, unauthorized(response.MsgUnauthorized)
	}
	return s.ResolvePermissionsForRole(ctx, role.ID)
}

func (s *roleService) GetPermissions(ctx context.Context, userID uint) ([]MenuPermission, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if isNotFound(err) {
			return nil, notFound(response.MsgNotFound)
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	link, err := s.roles.FindUserLink(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, notFound(response.MsgNotFound)
		}
		return nil, fmt.Errorf("failed to fetch user role: %w", err)
	}

	role, err := s.roles.FindByID(ctx, link.RoleID)
	if err != nil {
		if isNotFound(err) {
			return nil, notFound(response.MsgNotFound)
		}
		return nil, fmt.Errorf("failed to fetch role: %w", err)
	}
	return s.ResolvePermissionsForRole(ctx, role.ID)
}

// ResolvePermissionsForRole rebuilds the menu -> buttons tree of a role.
// Menus and buttons come out ascending by id; for a repeated (menu, button)
// pair the last row wins. Rows pointing at deleted menus or buttons are skipped.
func (s *roleService) ResolvePermissionsForRole(ctx context.Context, roleID uint) ([]MenuPermission, error) {
	gen, cacheable := s.cache.Generation(ctx, roleID)
	if cacheable {
		if tree, ok := s.cache.Get(ctx, roleID, gen); ok {
			return tree, nil
		}
	}

	rows, err := s.roles.ListAssignments(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}

	menuIDs := make([]uint, 0, len(rows))
	buttonIDs := make([]uint, 0, len(rows))
	seenMenu := make(map[uint]bool)
	seenButton := make(map[uint]bool)
	for _, row := range rows {
		if !seenMenu[row.MenuID] {
			seenMenu[row.MenuID] = true
			menuIDs = append(menuIDs, row.MenuID)
		}
		if !seenButton[row.ButtonID] {
			seenButton[row.ButtonID] = true
			buttonIDs = append(buttonIDs, row.ButtonID)
		}
	}

	menus, err := s.menus.FindByIDs(ctx, menuIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch menus: %w", err)
	}
	buttons, err := s.menus.FindButtonsByIDs(ctx, buttonIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch buttons: %w", err)
	}

	menuByID := make(map[uint]model.Menu, len(menus))
	for _, m := range menus {
		menuByID[m.ID] = m
	}
	buttonByID := make(map[uint]model.Button, len(buttons))
	for _, b := range buttons {
		buttonByID[b.ID] = b
	}

	nodes := make(map[uint]*MenuPermission)
	grants := make(map[uint]map[uint]ButtonPermission)
	for _, row := range rows {
		menu, ok := menuByID[row.MenuID]
		if !ok {
			continue
		}
		if _, ok := nodes[row.MenuID]; !ok {
			nodes[row.MenuID] = &MenuPermission{ID: row.MenuID, Name: menu.Name, ActionID: menu.ActionID, Buttons: []ButtonPermission{}}
			grants[row.MenuID] = make(map[uint]ButtonPermission)
		}
		button, ok := buttonByID[row.ButtonID]
		if !ok {
			continue
		}
		grants[row.MenuID][row.ButtonID] = ButtonPermission{
			ID:       row.ButtonID,
			ActionID: button.ActionID,
			Name:     button.Name,
			MenuID:   row.MenuID,
			Checked:  row.Checked,
		}
	}

	tree := make([]MenuPermission, 0, len(nodes))
	for menuID, node := range nodes {
		for _, b := range grants[menuID] {
			node.Buttons = append(node.Buttons, b)
		}
		sort.Slice(node.Buttons, func(i, j int) bool { return node.Buttons[i].ID < node.Buttons[j].ID })
		tree = append(tree, *node)
	}
	sort.Slice(tree, func(i, j int) bool { return tree[i].ID < tree[j].ID })

	if cacheable {
		s.cache.Set(ctx, roleID, gen, tree)
	}
	return tree, nil
}

func toRoleResponse(r model.Role) RoleResponse {
	return RoleResponse{
		ID:        r.ID,
		Name:      r.Name,
		CreatedBy: r.CreatedBy,
		IsDeleted: r.IsDeleted,
		CreatedAt: r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: r.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
