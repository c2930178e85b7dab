package service

import (
	"context"
	"testing"
	"time"

	"repairshop/internal/model"
	"repairshop/pkg/response"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createMenusRequest(menus ...CreateMenuInput) CreateMenusRequest {
	return CreateMenusRequest{Menus: menus}
}

func customerMenu() CreateMenuInput {
	return CreateMenuInput{
		MenuName: "Customer",
		ActionID: "customer",
		Buttons: []CreateButtonInput{
			{ButtonName: "View customer", ActionID: "view_customer"},
			{ButtonName: "Edit customer", ActionID: "edit_customer"},
		},
	}
}

func TestCreateMenus(t *testing.T) {
	env := newTestEnv(t)
	svc := env.menuService(NewPermissionCache(nil, 0, env.log, env.metrics))

	menus, err := svc.CreateMenus(context.Background(), createMenusRequest(customerMenu()))
	require.NoError(t, err)
	require.Len(t, menus, 1)
	assert.Equal(t, "customer", menus[0].ActionID)
	require.Len(t, menus[0].Buttons, 2)
	assert.Equal(t, "view_customer", menus[0].Buttons[0].ActionID)
	assert.Equal(t, menus[0].ID, menus[0].Buttons[1].MenuID)
}

func TestCreateMenus_Conflicts(t *testing.T) {
	tests := []struct {
		name    string
		menu    CreateMenuInput
		message string
	}{
		{
			name: "button name used by another menu",
			menu: CreateMenuInput{MenuName: "Invoice", ActionID: "invoice", Buttons: []CreateButtonInput{
				{ButtonName: "View customer", ActionID: "view_invoice"},
			}},
			message: response.MsgButtonAlreadyExists,
		},
		{
			name: "button action id used by another menu",
			menu: CreateMenuInput{MenuName: "Invoice", ActionID: "invoice", Buttons: []CreateButtonInput{
				{ButtonName: "View invoice", ActionID: "edit_customer"},
			}},
			message: response.MsgButtonAlreadyExists,
		},
		{
			name:    "menu action id taken",
			menu:    CreateMenuInput{MenuName: "Clients", ActionID: "customer", Buttons: []CreateButtonInput{}},
			message: response.MsgMenuAlreadyExists,
		},
		{
			name: "button conflict reported before menu conflict",
			menu: CreateMenuInput{MenuName: "Customer", ActionID: "customer", Buttons: []CreateButtonInput{
				{ButtonName: "View customer", ActionID: "view_customer"},
			}},
			message: response.MsgButtonAlreadyExists,
		},
		{
			name: "same button twice in one menu",
			menu: CreateMenuInput{MenuName: "Invoice", ActionID: "invoice", Buttons: []CreateButtonInput{
				{ButtonName: "Add", ActionID: "add"},
				{ButtonName: "Add", ActionID: "add"},
			}},
			message: response.MsgButtonAlreadyExists,
		},
		{
			name: "button action id repeated in one menu",
			menu: CreateMenuInput{MenuName: "Invoice", ActionID: "invoice", Buttons: []CreateButtonInput{
				{ButtonName: "Add", ActionID: "add"},
				{ButtonName: "Create", ActionID: "add"},
			}},
			message: response.MsgButtonAlreadyExists,
		},
		{
			name:    "menu repeated in the batch",
			menu:    CreateMenuInput{MenuName: "Stock", ActionID: "stock_again", Buttons: []CreateButtonInput{}},
			message: response.MsgMenuAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			svc := env.menuService(NewPermissionCache(nil, 0, env.log, env.metrics))
			_, err := svc.CreateMenus(context.Background(), createMenusRequest(customerMenu()))
			require.NoError(t, err)

			fresh := CreateMenuInput{MenuName: "Stock", ActionID: "stock", Buttons: []CreateButtonInput{}}
			_, err = svc.CreateMenus(context.Background(), createMenusRequest(fresh, tt.menu))
			assertDomainError(t, err, ErrConflict, tt.message)

			// the whole batch is rolled back
			all, err := svc.GetAllMenus(context.Background())
			require.NoError(t, err)
			require.Len(t, all, 1)
			assert.Len(t, all[0].Buttons, 2)
		})
	}
}

func TestCreateMenus_Validation(t *testing.T) {
	env := newTestEnv(t)
	svc := env.menuService(NewPermissionCache(nil, 0, env.log, env.metrics))

	_, err := svc.CreateMenus(context.Background(), createMenusRequest())
	assertDomainError(t, err, ErrValidation, response.MsgDataMissing)

	_, err = svc.CreateMenus(context.Background(), createMenusRequest(CreateMenuInput{MenuName: "X", ActionID: " "}))
	assertDomainError(t, err, ErrValidation, response.MsgDataMissing)
}

func TestUpdateMenu(t *testing.T) {
	env := newTestEnv(t)
	svc := env.menuService(NewPermissionCache(nil, 0, env.log, env.metrics))
	ctx := context.Background()

	created, err := svc.CreateMenus(ctx, createMenusRequest(customerMenu(), CreateMenuInput{
		MenuName: "Ticket",
		ActionID: "ticket",
		Buttons:  []CreateButtonInput{{ButtonName: "View tickets", ActionID: "view_tickets"}},
	}))
	require.NoError(t, err)
	customer := created[0]
	ticket := created[1]

	t.Run("button names only collide within the menu", func(t *testing.T) {
		// "View tickets" exists under Ticket; adding it under Customer is allowed.
		menu, err := svc.UpdateMenu(ctx, customer.ID, UpdateMenuRequest{
			Buttons: []UpdateButtonInput{{Name: "View tickets", ActionID: "customer_view_tickets"}},
		})
		require.NoError(t, err)
		assert.Equal(t, "Customer", menu.Name, "blank name keeps the current one")
		assert.Len(t, menu.Buttons, 3)
	})

	t.Run("collision inside the menu", func(t *testing.T) {
		_, err := svc.UpdateMenu(ctx, customer.ID, UpdateMenuRequest{
			Buttons: []UpdateButtonInput{{Name: "Edit customer", ActionID: "other"}},
		})
		assertDomainError(t, err, ErrConflict, response.MsgButtonAlreadyExists)
	})

	t.Run("renaming an existing button", func(t *testing.T) {
		edit := customer.Buttons[1]
		menu, err := svc.UpdateMenu(ctx, customer.ID, UpdateMenuRequest{
			Buttons: []UpdateButtonInput{{ID: edit.ID, Name: "Modify customer", ActionID: edit.ActionID}},
		})
		require.NoError(t, err)
		assert.Equal(t, "Modify customer", menu.Buttons[1].Name)
	})

	t.Run("menu name taken", func(t *testing.T) {
		_, err := svc.UpdateMenu(ctx, customer.ID, UpdateMenuRequest{Name: "Ticket"})
		assertDomainError(t, err, ErrConflict, response.MsgMenuAlreadyExists)
	})

	t.Run("deleted buttons are scoped to the menu", func(t *testing.T) {
		menu, err := svc.UpdateMenu(ctx, customer.ID, UpdateMenuRequest{
			IDsDeleted: []uint{customer.Buttons[0].ID, ticket.Buttons[0].ID},
		})
		require.NoError(t, err)
		assert.Len(t, menu.Buttons, 2)

		all, err := svc.GetAllMenus(ctx)
		require.NoError(t, err)
		assert.Len(t, all[1].Buttons, 1)
	})

	t.Run("unknown menu", func(t *testing.T) {
		_, err := svc.UpdateMenu(ctx, 9999, UpdateMenuRequest{Name: "X"})
		assertDomainError(t, err, ErrNotFound, response.MsgNotFound)
	})
}

func TestDeleteMenu_RemovesButtonsAndAssignments(t *testing.T) {
	env := newTestEnv(t)
	seedCustomerMenus(t, env.db)
	owner, _ := env.createPartner(t, "a@shop.test", 0)
	cache := NewPermissionCache(nil, 0, env.log, env.metrics)
	roles := env.roleService(cache)
	svc := env.menuService(cache)
	ctx := context.Background()

	role, err := roles.CreateRole(ctx, owner, CreateRoleRequest{
		Name:  "Technician",
		Menus: []RoleMenuInput{menuGrants(1, grant(10, true)), menuGrants(2, grant(20, true))},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteMenu(ctx, 1))
	err = svc.DeleteMenu(ctx, 1)
	assertDomainError(t, err, ErrNotFound, response.MsgMenuNotFound)

	var buttons int64
	require.NoError(t, env.db.Model(&model.Button{}).Where("menu_id = ?", 1).Count(&buttons).Error)
	assert.Zero(t, buttons)
	assert.EqualValues(t, 1, countAssignments(t, env.db))

	tree, err := roles.ResolvePermissionsForRole(ctx, role.ID)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, uint(2), tree[0].ID)
}

func TestGetAllMenusPartner_AllUnchecked(t *testing.T) {
	env := newTestEnv(t)
	seedCustomerMenus(t, env.db)
	svc := env.menuService(NewPermissionCache(nil, 0, env.log, env.metrics))

	menus, err := svc.GetAllMenusPartner(context.Background())
	require.NoError(t, err)
	require.Len(t, menus, 2)
	for _, m := range menus {
		for _, b := range m.Buttons {
			assert.False(t, b.Checked)
		}
	}
	assert.Len(t, menus[0].Buttons, 3)
	assert.Equal(t, uint(10), menus[0].Buttons[0].ID)
}

func TestSeedDefaultCatalog(t *testing.T) {
	env := newTestEnv(t)
	svc := env.menuService(NewPermissionCache(nil, 0, env.log, env.metrics))
	ctx := context.Background()

	require.NoError(t, svc.SeedDefaultCatalog(ctx))
	menus, err := svc.GetAllMenus(ctx)
	require.NoError(t, err)
	assert.Len(t, menus, len(defaultCatalog))

	// seeding twice is a no-op
	require.NoError(t, svc.SeedDefaultCatalog(ctx))
	again, err := svc.GetAllMenus(ctx)
	require.NoError(t, err)
	assert.Equal(t, menus, again)
}

func TestMenuChangesFlushPermissionCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	env := newTestEnv(t)
	seedCustomerMenus(t, env.db)
	owner, _ := env.createPartner(t, "a@shop.test", 0)
	cache := NewPermissionCache(client, time.Minute, env.log, env.metrics)
	roles := env.roleService(cache)
	menus := env.menuService(cache)
	ctx := context.Background()

	role, err := roles.CreateRole(ctx, owner, CreateRoleRequest{
		Name:  "Technician",
		Menus: []RoleMenuInput{menuGrants(1, grant(10, true))},
	})
	require.NoError(t, err)
	_, err = roles.ResolvePermissionsForRole(ctx, role.ID)
	require.NoError(t, err)
	require.True(t, mr.Exists(currentPermissionKey(t, cache, role.ID)))

	_, err = menus.UpdateMenu(ctx, 1, UpdateMenuRequest{Name: "Clients"})
	require.NoError(t, err)
	assert.False(t, mr.Exists(currentPermissionKey(t, cache, role.ID)))

	tree, err := roles.ResolvePermissionsForRole(ctx, role.ID)
	require.NoError(t, err)
	assert.Equal(t, "Clients", tree[0].Name)
}
