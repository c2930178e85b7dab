package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"repairshop/internal/database"
	"repairshop/internal/logger"
	"repairshop/internal/metrics"
	"repairshop/internal/model"
	"repairshop/internal/queue"
	"repairshop/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// recordingPublisher keeps published events in memory
type recordingPublisher struct {
	mu        sync.Mutex
	movements []queue.MovementCreatedEvent
	sweeps    []queue.CashRegisterSweptEvent
}

func (p *recordingPublisher) PublishMovementCreated(_ context.Context, event queue.MovementCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.movements = append(p.movements, event)
	return nil
}

func (p *recordingPublisher) PublishCashRegisterSwept(_ context.Context, event queue.CashRegisterSweptEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sweeps = append(p.sweeps, event)
	return nil
}

type testEnv struct {
	db        *gorm.DB
	tx        repository.TransactionManager
	users     repository.UserRepository
	roles     repository.RoleRepository
	menus     repository.MenuRepository
	registers repository.CashRegisterRepository
	movements repository.MovementRepository
	invoices  repository.InvoiceRepository
	products  repository.ProductRepository
	audit     AuditService
	publisher *recordingPublisher
	metrics   *metrics.Metrics
	log       *logrus.Logger
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// A second connection would open a second, empty in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	return &testEnv{
		db:        db,
		tx:        repository.NewTransactionManager(db),
		users:     repository.NewUserRepository(db),
		roles:     repository.NewRoleRepository(db),
		menus:     repository.NewMenuRepository(db),
		registers: repository.NewCashRegisterRepository(db),
		movements: repository.NewMovementRepository(db),
		invoices:  repository.NewInvoiceRepository(db),
		products:  repository.NewProductRepository(db),
		audit:     NewAuditService(repository.NewAuditRepository(db)),
		publisher: &recordingPublisher{},
		metrics:   metrics.New(nil),
		log:       logger.Discard(),
	}
}

func (e *testEnv) registerService() CashRegisterService {
	return NewCashRegisterService(e.registers, e.movements, e.users, e.tx, e.audit, e.publisher, e.metrics, e.log)
}

func (e *testEnv) movementService() MovementService {
	return NewMovementService(e.registers, e.movements, e.invoices, e.tx, e.audit, e.publisher, e.metrics, e.log)
}

func (e *testEnv) roleService(cache PermissionCache) RoleService {
	return NewRoleService(e.roles, e.menus, e.users, e.tx, e.audit, cache, e.log)
}

func (e *testEnv) menuService(cache PermissionCache) MenuService {
	return NewMenuService(e.menus, e.tx, cache, e.log)
}

func (e *testEnv) userService() UserService {
	return NewUserService(e.users, e.roles, e.tx, []byte("test-secret"), time.Hour, e.log)
}

func (e *testEnv) partnerService() PartnerService {
	return NewPartnerService(e.users, e.registerService(), e.tx, e.log)
}

// createPartner inserts a partner account with its main register
func (e *testEnv) createPartner(t *testing.T, email string, mainTotal float64) (model.Identity, *model.CashRegister) {
	t.Helper()
	user := &model.User{Email: email, Phone: email, Password: "x", CompanyName: "Shop", Type: model.TypePartner}
	require.NoError(t, e.db.Create(user).Error)

	main := &model.CashRegister{
		Name:         model.MainCashRegisterName,
		InitialValue: decimal.Zero,
		Status:       true,
		Main:         true,
		Total:        decimal.NewFromFloat(mainTotal),
		UserID:       user.ID,
	}
	require.NoError(t, e.db.Create(main).Error)
	return model.Identity{ID: user.ID, Role: model.TypePartner}, main
}

// createEmployee inserts an employee of the given tenant
func (e *testEnv) createEmployee(t *testing.T, email string, tenantID uint) model.Identity {
	t.Helper()
	user := &model.User{Email: email, Phone: email, Password: "x", Type: model.TypeEmployee, TenantID: &tenantID}
	require.NoError(t, e.db.Create(user).Error)
	return model.Identity{ID: user.ID, TenantID: &tenantID, Role: model.TypeEmployee}
}

func (e *testEnv) createRegister(t *testing.T, ownerID uint, name string, initial, total float64, status bool) *model.CashRegister {
	t.Helper()
	register := &model.CashRegister{
		Name:         name,
		BankAccount:  "FR76" + name,
		InitialValue: decimal.NewFromFloat(initial),
		Status:       status,
		Total:        decimal.NewFromFloat(total),
		UserID:       ownerID,
	}
	require.NoError(t, e.db.Create(register).Error)
	return register
}

// createInvoice inserts a product, its ticket and an unpaid invoice of the partner
func (e *testEnv) createInvoice(t *testing.T, partnerID uint, num string, total float64) *model.Invoice {
	t.Helper()
	product := &model.Product{Name: "Phone " + num, Status: model.ProductStatusClosedSuccess, PartnerID: partnerID}
	require.NoError(t, e.db.Create(product).Error)
	ticket := &model.RepairTicket{
		Code:          "T-" + num,
		ProductID:     product.ID,
		EstimatedCost: decimal.NewFromFloat(total),
		TotalCost:     decimal.NewFromFloat(total),
	}
	require.NoError(t, e.db.Create(ticket).Error)
	invoice := &model.Invoice{
		Num:            num,
		Date:           time.Now(),
		Total:          decimal.NewFromFloat(total),
		PaymentMethode: model.PaymentMethodCash,
		TicketID:       ticket.ID,
	}
	require.NoError(t, e.db.Create(invoice).Error)
	return invoice
}

func (e *testEnv) reload(t *testing.T, id uint) *model.CashRegister {
	t.Helper()
	register, err := e.registers.FindByID(context.Background(), id)
	require.NoError(t, err)
	return register
}

func (e *testEnv) countMovements(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&model.Movement{}).Count(&n).Error)
	return n
}

func boolPtr(v bool) *bool          { return &v }
func floatPtr(v float64) *float64   { return &v }
func stringPtr(v string) *string    { return &v }
func uintPtr(v uint) *uint          { return &v }
func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }
