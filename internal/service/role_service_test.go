package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"repairshop/internal/model"
	"repairshop/pkg/response"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// seedCustomerMenus inserts menu 1 "Customer" with buttons 10, 11, 12 and
// menu 2 "Ticket" with buttons 20, 21.
func seedCustomerMenus(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Create(&model.Menu{ID: 1, Name: "Customer", ActionID: "customer"}).Error)
	require.NoError(t, db.Create(&model.Menu{ID: 2, Name: "Ticket", ActionID: "ticket"}).Error)
	for _, b := range []model.Button{
		{ID: 10, Name: "View customer", ActionID: "view_customer", MenuID: 1},
		{ID: 11, Name: "Edit customer", ActionID: "edit_customer", MenuID: 1},
		{ID: 12, Name: "Delete customer", ActionID: "delete_customer", MenuID: 1},
		{ID: 20, Name: "View tickets", ActionID: "view_tickets", MenuID: 2},
		{ID: 21, Name: "Add ticket", ActionID: "add_ticket", MenuID: 2},
	} {
		require.NoError(t, db.Create(&b).Error)
	}
}

func grant(id uint, checked bool) RoleButtonInput {
	return RoleButtonInput{ID: uintPtr(id), Checked: boolPtr(checked)}
}

func menuGrants(id uint, buttons ...RoleButtonInput) RoleMenuInput {
	return RoleMenuInput{ID: uintPtr(id), Buttons: buttons}
}

func countAssignments(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&model.PermissionAssignment{}).Count(&n).Error)
	return n
}

func TestRole_CreateResolveToggle(t *testing.T) {
	env := newTestEnv(t)
	seedCustomerMenus(t, env.db)
	owner, _ := env.createPartner(t, "a@shop.test", 0)
	svc := env.roleService(NewPermissionCache(nil, 0, env.log, env.metrics))
	ctx := context.Background()

	role, err := svc.CreateRole(ctx, owner, CreateRoleRequest{
		Name:  "Technician",
		Menus: []RoleMenuInput{menuGrants(1, grant(10, true), grant(11, false))},
	})
	require.NoError(t, err)
	assert.Equal(t, owner.ID, role.CreatedBy)

	tree, err := svc.ResolvePermissionsForRole(ctx, role.ID)
	require.NoError(t, err)
	assert.Equal(t, []MenuPermission{{
		ID:       1,
		Name:     "Customer",
		ActionID: "customer",
		Buttons: []ButtonPermission{
			{ID: 10, ActionID: "view_customer", Name: "View customer", MenuID: 1, Checked: true},
			{ID: 11, ActionID: "edit_customer", Name: "Edit customer", MenuID: 1, Checked: false},
		},
	}}, tree)

	before := countAssignments(t, env.db)
	_, err = svc.UpdateRole(ctx, owner, role.ID, UpdateRoleRequest{
		Name:  "Technician",
		Menus: []RoleMenuInput{menuGrants(1, grant(10, false), grant(99, true))},
	})
	require.NoError(t, err)
	assert.Equal(t, before, countAssignments(t, env.db), "update never inserts")

	tree, err = svc.ResolvePermissionsForRole(ctx, role.ID)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Buttons, 2)
	assert.False(t, tree[0].Buttons[0].Checked)
	assert.Equal(t, uint(11), tree[0].Buttons[1].ID)
}

func TestRole_UpdateUnknownPairLeavesTableUnchanged(t *testing.T) {
	env := newTestEnv(t)
	seedCustomerMenus(t, env.db)
	owner, _ := env.createPartner(t, "a@shop.test", 0)
	svc := env.roleService(NewPermissionCache(nil, 0, env.log, env.metrics))

	role, err := svc.CreateRole(context.Background(), owner, CreateRoleRequest{
		Name:  "Cashier",
		Menus: []RoleMenuInput{menuGrants(1, grant(10, true))},
	})
	require.NoError(t, err)

	var before []model.PermissionAssignment
	require.NoError(t, env.db.Order("id").Find(&before).Error)

	_, err = svc.UpdateRole(context.Background(), owner, role.ID, UpdateRoleRequest{
		Name:  "Cashier",
		Menus: []RoleMenuInput{menuGrants(2, grant(20, true)), menuGrants(1, grant(11, true))},
	})
	require.NoError(t, err)

	var after []model.PermissionAssignment
	require.NoError(t, env.db.Order("id").Find(&after).Error)
	assert.Equal(t, before, after)
}

func TestRole_ResolveOrdersByIDs(t *testing.T) {
	env := newTestEnv(t)
	seedCustomerMenus(t, env.db)
	owner, _ := env.createPartner(t, "a@shop.test", 0)
	svc := env.roleService(NewPermissionCache(nil, 0, env.log, env.metrics))

	role, err := svc.CreateRole(context.Background(), owner, CreateRoleRequest{
		Name: "Manager",
		Menus: []RoleMenuInput{
			menuGrants(2, grant(21, true), grant(20, false)),
			menuGrants(1, grant(12, true), grant(10, true), grant(11, false)),
		},
	})
	require.NoError(t, err)

	tree, err := svc.ResolvePermissionsForRole(context.Background(), role.ID)
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, uint(1), tree[0].ID)
	assert.Equal(t, uint(2), tree[1].ID)

	var ids []uint
	for _, b := range tree[0].Buttons {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []uint{10, 11, 12}, ids)
	assert.Equal(t, uint(20), tree[1].Buttons[0].ID)
	assert.Equal(t, uint(21), tree[1].Buttons[1].ID)
}

func TestRole_ResolveSkipsMissingAndLastRowWins(t *testing.T) {
	env := newTestEnv(t)
	seedCustomerMenus(t, env.db)
	owner, _ := env.createPartner(t, "a@shop.test", 0)
	svc := env.roleService(NewPermissionCache(nil, 0, env.log, env.metrics))

	role := &model.Role{Name: "Legacy", CreatedBy: owner.ID}
	require.NoError(t, env.db.Create(role).Error)
	rows := []model.PermissionAssignment{
		{RoleID: role.ID, MenuID: 1, ButtonID: 10, Checked: true},
		{RoleID: role.ID, MenuID: 1, ButtonID: 10, Checked: false},
		{RoleID: role.ID, MenuID: 1, ButtonID: 77, Checked: true},
		{RoleID: role.ID, MenuID: 5, ButtonID: 11, Checked: true},
	}
	require.NoError(t, env.db.Create(&rows).Error)

	tree, err := svc.ResolvePermissionsForRole(context.Background(), role.ID)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, uint(1), tree[0].ID)
	require.Len(t, tree[0].Buttons, 1)
	assert.Equal(t, uint(10), tree[0].Buttons[0].ID)
	assert.False(t, tree[0].Buttons[0].Checked)
}

func TestRole_ResolveEmptyRole(t *testing.T) {
	env := newTestEnv(t)
	owner, _ := env.createPartner(t, "a@shop.test", 0)
	svc := env.roleService(NewPermissionCache(nil, 0, env.log, env.metrics))

	role, err := svc.CreateRole(context.Background(), owner, CreateRoleRequest{Name: "Empty", Menus: []RoleMenuInput{}})
	require.NoError(t, err)

	tree, err := svc.ResolvePermissionsForRole(context.Background(), role.ID)
	require.NoError(t, err)
	assert.Empty(t, tree)
}

func TestRole_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	owner, _ := env.createPartner(t, "a@shop.test", 0)
	svc := env.roleService(NewPermissionCache(nil, 0, env.log, env.metrics))

	_, err := svc.CreateRole(context.Background(), owner, CreateRoleRequest{Name: "", Menus: []RoleMenuInput{}})
	assertDomainError(t, err, ErrValidation, response.MsgDataMissing)

	_, err = svc.CreateRole(context.Background(), owner, CreateRoleRequest{
		Name:  "No checked flag",
		Menus: []RoleMenuInput{menuGrants(1, RoleButtonInput{ID: uintPtr(10)})},
	})
	assertDomainError(t, err, ErrValidation, response.MsgDataMissing)
}

func TestRole_UpdateUnknownRole(t *testing.T) {
	env := newTestEnv(t)
	owner, _ := env.createPartner(t, "a@shop.test", 0)
	svc := env.roleService(NewPermissionCache(nil, 0, env.log, env.metrics))

	_, err := svc.UpdateRole(context.Background(), owner, 9999, UpdateRoleRequest{Name: "X", Menus: []RoleMenuInput{}})
	assertDomainError(t, err, ErrNotFound, response.MsgRoleNotFound)
}

func TestRole_DeleteAndList(t *testing.T) {
	env := newTestEnv(t)
	owner, _ := env.createPartner(t, "a@shop.test", 0)
	other, _ := env.createPartner(t, "b@shop.test", 0)
	employee := env.createEmployee(t, "e@shop.test", owner.ID)
	svc := env.roleService(NewPermissionCache(nil, 0, env.log, env.metrics))
	ctx := context.Background()

	keep, err := svc.CreateRole(ctx, owner, CreateRoleRequest{Name: "Keep", Menus: []RoleMenuInput{}})
	require.NoError(t, err)
	drop, err := svc.CreateRole(ctx, employee, CreateRoleRequest{Name: "Drop", Menus: []RoleMenuInput{}})
	require.NoError(t, err)
	assert.Equal(t, owner.ID, drop.CreatedBy, "employees create roles for their tenant")

	err = svc.DeleteRole(ctx, owner, 9999)
	assertDomainError(t, err, ErrNotFound, response.MsgNotFound)

	err = svc.DeleteRole(ctx, other, drop.ID)
	assertDomainError(t, err, ErrForbidden, response.MsgForbidden)

	require.NoError(t, svc.DeleteRole(ctx, owner, drop.ID))

	roles, err := svc.GetAllRoles(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, keep.ID, roles[0].ID)

	stored, err := env.roles.FindByID(ctx, drop.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsDeleted)
}

func TestRole_GetAllMenusRoleAndPermissions(t *testing.T) {
	env := newTestEnv(t)
	seedCustomerMenus(t, env.db)
	owner, _ := env.createPartner(t, "a@shop.test", 0)
	other, _ := env.createPartner(t, "b@shop.test", 0)
	employee := env.createEmployee(t, "e@shop.test", owner.ID)
	svc := env.roleService(NewPermissionCache(nil, 0, env.log, env.metrics))
	ctx := context.Background()

	role, err := svc.CreateRole(ctx, owner, CreateRoleRequest{
		Name:  "Technician",
		Menus: []RoleMenuInput{menuGrants(1, grant(10, true))},
	})
	require.NoError(t, err)

	tree, err := svc.GetAllMenusRole(ctx, employee, role.ID)
	require.NoError(t, err)
	require.Len(t, tree, 1)

	_, err = svc.GetAllMenusRole(ctx, other, role.ID)
	assertDomainError(t, err, ErrUnauthorized, response.MsgUnauthorized)

	_, err = svc.GetAllMenusRole(ctx, owner, 9999)
	assertDomainError(t, err, ErrNotFound, response.MsgNotFound)

	_, err = svc.GetPermissions(ctx, employee.ID)
	assertDomainError(t, err, ErrNotFound, response.MsgNotFound)

	require.NoError(t, env.roles.LinkUser(ctx, &model.UserRoleLink{UserID: employee.ID, RoleID: role.ID}))
	perms, err := svc.GetPermissions(ctx, employee.ID)
	require.NoError(t, err)
	assert.Equal(t, tree, perms)

	_, err = svc.GetPermissions(ctx, 9999)
	assertDomainError(t, err, ErrNotFound, response.MsgNotFound)
}

func TestRole_PermissionCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	env := newTestEnv(t)
	seedCustomerMenus(t, env.db)
	owner, _ := env.createPartner(t, "a@shop.test", 0)
	cache := NewPermissionCache(client, 5*time.Minute, env.log, env.metrics)
	svc := env.roleService(cache)
	ctx := context.Background()

	role, err := svc.CreateRole(ctx, owner, CreateRoleRequest{
		Name:  "Technician",
		Menus: []RoleMenuInput{menuGrants(1, grant(10, true))},
	})
	require.NoError(t, err)

	first, err := svc.ResolvePermissionsForRole(ctx, role.ID)
	require.NoError(t, err)
	assert.True(t, mr.Exists(currentPermissionKey(t, cache, role.ID)))

	// Changed behind the service's back: the cached tree is still served.
	require.NoError(t, env.db.Model(&model.PermissionAssignment{}).Where("role_id = ?", role.ID).Update("checked", false).Error)
	cached, err := svc.ResolvePermissionsForRole(ctx, role.ID)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	_, err = svc.UpdateRole(ctx, owner, role.ID, UpdateRoleRequest{
		Name:  "Technician",
		Menus: []RoleMenuInput{menuGrants(1, grant(10, false))},
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists(currentPermissionKey(t, cache, role.ID)))

	fresh, err := svc.ResolvePermissionsForRole(ctx, role.ID)
	require.NoError(t, err)
	assert.False(t, fresh[0].Buttons[0].Checked)
}

func currentPermissionKey(t *testing.T, cache PermissionCache, roleID uint) string {
	t.Helper()
	gen, ok := cache.Generation(context.Background(), roleID)
	require.True(t, ok)
	return permissionKey(roleID, gen)
}

// pausingCache holds the first Set until released.
type pausingCache struct {
	PermissionCache
	once    sync.Once
	reached chan struct{}
	release chan struct{}
}

func (c *pausingCache) Set(ctx context.Context, roleID uint, gen string, tree []MenuPermission) {
	first := false
	c.once.Do(func() { first = true })
	if first {
		close(c.reached)
		<-c.release
	}
	c.PermissionCache.Set(ctx, roleID, gen, tree)
}

func TestRole_LateCacheWriteDoesNotOutliveUpdate(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	env := newTestEnv(t)
	seedCustomerMenus(t, env.db)
	owner, _ := env.createPartner(t, "a@shop.test", 0)
	cache := &pausingCache{
		PermissionCache: NewPermissionCache(client, 5*time.Minute, env.log, env.metrics),
		reached:         make(chan struct{}),
		release:         make(chan struct{}),
	}
	svc := env.roleService(cache)
	ctx := context.Background()

	role, err := svc.CreateRole(ctx, owner, CreateRoleRequest{
		Name:  "Technician",
		Menus: []RoleMenuInput{menuGrants(1, grant(10, true))},
	})
	require.NoError(t, err)

	stale := make(chan []MenuPermission, 1)
	go func() {
		tree, err := svc.ResolvePermissionsForRole(ctx, role.ID)
		assert.NoError(t, err)
		stale <- tree
	}()

	select {
	case <-cache.reached:
	case <-time.After(2 * time.Second):
		t.Fatal("resolve never reached the cache write")
	}

	_, err = svc.UpdateRole(ctx, owner, role.ID, UpdateRoleRequest{
		Name:  "Technician",
		Menus: []RoleMenuInput{menuGrants(1, grant(10, false))},
	})
	require.NoError(t, err)

	close(cache.release)
	old := <-stale
	require.Len(t, old, 1)
	assert.True(t, old[0].Buttons[0].Checked)

	tree, err := svc.ResolvePermissionsForRole(ctx, role.ID)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.False(t, tree[0].Buttons[0].Checked)

	again, err := svc.ResolvePermissionsForRole(ctx, role.ID)
	require.NoError(t, err)
	assert.False(t, again[0].Buttons[0].Checked)
}
