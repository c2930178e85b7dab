package service

import (
	"context"
	"errors"
	"testing"

	"repairshop/internal/model"
	"repairshop/internal/queue"
	"repairshop/pkg/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMovement_CreditsRegisterAndPaysInvoice(t *testing.T) {
	env := newTestEnv(t)
	owner, _ := env.createPartner(t, "a@shop.test", 0)
	petty := env.createRegister(t, owner.ID, "Petty Cash", 50, 50, true)
	invoice := env.createInvoice(t, owner.ID, "FACT-2401010900", 30)

	res, err := env.movementService().CreateMovement(context.Background(), owner, CreateMovementRequest{
		Value:          floatPtr(30),
		CashRegisterID: petty.ID,
		InvoiceID:      invoice.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 30.0, res.Value)
	assert.Equal(t, petty.ID, res.CashRegisterID)
	assert.Nil(t, res.MainCashRegisterID)
	require.NotNil(t, res.ProductID)

	assert.True(t, env.reload(t, petty.ID).Total.Equal(dec(80)))
	paid, err := env.invoices.FindByID(context.Background(), invoice.ID)
	require.NoError(t, err)
	assert.True(t, paid.Status)

	require.Len(t, env.publisher.movements, 1)
	assert.Equal(t, 80.0, env.publisher.movements[0].RegisterTotal)
	assert.Equal(t, invoice.ID, env.publisher.movements[0].InvoiceID)
}

// total == initialValue + sum(values) after every movement
func TestCreateMovement_LedgerConservation(t *testing.T) {
	env := newTestEnv(t)
	owner, _ := env.createPartner(t, "a@shop.test", 0)
	petty := env.createRegister(t, owner.ID, "Petty Cash", 50, 50, true)
	svc := env.movementService()

	values := []float64{30, 12.5, 0.25, 100}
	expected := dec(50)
	for i, v := range values {
		invoice := env.createInvoice(t, owner.ID, "FACT-24010109"+string(rune('a'+i)), v)
		_, err := svc.CreateMovement(context.Background(), owner, CreateMovementRequest{
			Value:          floatPtr(v),
			CashRegisterID: petty.ID,
			InvoiceID:      invoice.ID,
		})
		require.NoError(t, err)

		expected = expected.Add(dec(v))
		assert.True(t, env.reload(t, petty.ID).Total.Equal(expected), "after movement %d", i)
	}
}

func TestCreateMovement_Errors(t *testing.T) {
	env := newTestEnv(t)
	owner, _ := env.createPartner(t, "a@shop.test", 0)
	other, _ := env.createPartner(t, "b@shop.test", 0)
	petty := env.createRegister(t, owner.ID, "Petty Cash", 0, 0, true)
	foreignInvoice := env.createInvoice(t, other.ID, "FACT-X1", 10)
	invoice := env.createInvoice(t, owner.ID, "FACT-X2", 10)
	svc := env.movementService()

	tests := []struct {
		name    string
		caller  model.Identity
		req     CreateMovementRequest
		kind    error
		message string
	}{
		{
			name:    "missing value",
			caller:  owner,
			req:     CreateMovementRequest{CashRegisterID: petty.ID, InvoiceID: invoice.ID},
			kind:    ErrValidation,
			message: response.MsgDataMissing,
		},
		{
			name:    "unknown register",
			caller:  owner,
			req:     CreateMovementRequest{Value: floatPtr(10), CashRegisterID: 9999, InvoiceID: invoice.ID},
			kind:    ErrNotFound,
			message: response.MsgNotFound,
		},
		{
			name:    "register of another tenant",
			caller:  other,
			req:     CreateMovementRequest{Value: floatPtr(10), CashRegisterID: petty.ID, InvoiceID: invoice.ID},
			kind:    ErrUnauthorized,
			message: response.MsgUnauthorized,
		},
		{
			name:    "unknown invoice",
			caller:  owner,
			req:     CreateMovementRequest{Value: floatPtr(10), CashRegisterID: petty.ID, InvoiceID: 9999},
			kind:    ErrNotFound,
			message: response.MsgNotFound,
		},
		{
			name:    "invoice of another tenant",
			caller:  owner,
			req:     CreateMovementRequest{Value: floatPtr(10), CashRegisterID: petty.ID, InvoiceID: foreignInvoice.ID},
			kind:    ErrUnauthorized,
			message: response.MsgUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateMovement(context.Background(), tt.caller, tt.req)
			assertDomainError(t, err, tt.kind, tt.message)
		})
	}

	assert.Zero(t, env.countMovements(t))
	assert.True(t, env.reload(t, petty.ID).Total.Equal(dec(0)))
}

func TestCreateMovement_RejectsPaidInvoice(t *testing.T) {
	env := newTestEnv(t)
	owner, _ := env.createPartner(t, "a@shop.test", 0)
	petty := env.createRegister(t, owner.ID, "Petty Cash", 0, 0, true)
	invoice := env.createInvoice(t, owner.ID, "FACT-P1", 10)
	svc := env.movementService()

	req := CreateMovementRequest{Value: floatPtr(10), CashRegisterID: petty.ID, InvoiceID: invoice.ID}
	_, err := svc.CreateMovement(context.Background(), owner, req)
	require.NoError(t, err)

	_, err = svc.CreateMovement(context.Background(), owner, req)
	assertDomainError(t, err, ErrConflict, response.MsgInvoiceAlreadyPaid)
	assert.True(t, env.reload(t, petty.ID).Total.Equal(dec(10)))
	assert.EqualValues(t, 1, env.countMovements(t))
}

// failingAudit makes the last step of the movement transaction fail
type failingAudit struct{ AuditService }

func (failingAudit) Record(context.Context, uint, string, uint, string, interface{}) error {
	return errors.New("audit store down")
}

func TestCreateMovement_RollsBackOnFailure(t *testing.T) {
	env := newTestEnv(t)
	owner, _ := env.createPartner(t, "a@shop.test", 0)
	petty := env.createRegister(t, owner.ID, "Petty Cash", 50, 50, true)
	invoice := env.createInvoice(t, owner.ID, "FACT-R1", 30)

	svc := NewMovementService(env.registers, env.movements, env.invoices, env.tx, failingAudit{}, env.publisher, env.metrics, env.log)
	_, err := svc.CreateMovement(context.Background(), owner, CreateMovementRequest{
		Value:          floatPtr(30),
		CashRegisterID: petty.ID,
		InvoiceID:      invoice.ID,
	})
	require.Error(t, err)

	var de *DomainError
	assert.False(t, errors.As(err, &de))
	assert.True(t, env.reload(t, petty.ID).Total.Equal(dec(50)))
	unpaid, err := env.invoices.FindByID(context.Background(), invoice.ID)
	require.NoError(t, err)
	assert.False(t, unpaid.Status)
	assert.Zero(t, env.countMovements(t))
	assert.Empty(t, env.publisher.movements)
}

func TestGetAllMovements(t *testing.T) {
	env := newTestEnv(t)
	owner, main := env.createPartner(t, "a@shop.test", 0)
	other, _ := env.createPartner(t, "b@shop.test", 0)
	petty := env.createRegister(t, owner.ID, "Petty Cash", 0, 0, true)
	movements := env.movementService()

	for i, num := range []string{"FACT-L1", "FACT-L2", "FACT-L3"} {
		invoice := env.createInvoice(t, owner.ID, num, float64(10*(i+1)))
		_, err := movements.CreateMovement(context.Background(), owner, CreateMovementRequest{
			Value:          floatPtr(float64(10 * (i + 1))),
			CashRegisterID: petty.ID,
			InvoiceID:      invoice.ID,
		})
		require.NoError(t, err)
	}
	_, err := env.registerService().UpdateCashRegister(context.Background(), owner, petty.ID, UpdateCashRegisterRequest{Status: boolPtr(false)})
	require.NoError(t, err)

	credits, err := movements.GetAllMovements(context.Background(), owner, petty.ID, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, credits.Total)
	assert.False(t, credits.IsMain)
	assert.Equal(t, 0.0, credits.AmountTotal)
	for _, m := range credits.List {
		assert.Nil(t, m.MainCashRegisterID)
	}

	sweeps, err := movements.GetAllMovements(context.Background(), owner, main.ID, 0, 0)
	require.NoError(t, err)
	assert.True(t, sweeps.IsMain)
	require.Len(t, sweeps.List, 1)
	assert.Equal(t, 60.0, sweeps.List[0].Value)
	assert.Equal(t, 60.0, sweeps.AmountTotal)

	page, err := movements.GetAllMovements(context.Background(), owner, petty.ID, 1, 2)
	require.NoError(t, err)
	assert.Len(t, page.List, 2)
	assert.EqualValues(t, 3, page.Total)

	_, err = movements.GetAllMovements(context.Background(), other, petty.ID, 0, 0)
	assertDomainError(t, err, ErrUnauthorized, response.MsgUnauthorized)

	_, err = movements.GetAllMovements(context.Background(), owner, 9999, 0, 0)
	assertDomainError(t, err, ErrNotFound, response.MsgNotFound)
}

var _ queue.Publisher = (*recordingPublisher)(nil)
