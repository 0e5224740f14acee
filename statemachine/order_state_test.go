package statemachine

import (
	"testing"

	"burger-order-api/apperr"
	"burger-order-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMachine(t *testing.T, p Policy) *Machine {
	t.Helper()
	m, err := New(p)
	require.NoError(t, err)
	return m
}

func TestAdminHappyPath(t *testing.T) {
	m := mustMachine(t, DefaultPolicy())

	steps := []models.OrderStatus{
		models.StatusPlaced,
		models.StatusPreparing,
		models.StatusPackaging,
		models.StatusOutForDelivery,
		models.StatusDelivered,
	}
	for i := 0; i+1 < len(steps); i++ {
		assert.NoError(t, m.Check(steps[i], steps[i+1], ActorAdmin), "%s → %s", steps[i], steps[i+1])
	}
}

func TestSkipAheadPolicy(t *testing.T) {
	t.Run("allowed", func(t *testing.T) {
		m := mustMachine(t, Policy{AllowSkipAhead: true, CustomerCancelCutoff: models.StatusOutForDelivery})
		assert.NoError(t, m.Check(models.StatusPlaced, models.StatusDelivered, ActorAdmin))
		assert.NoError(t, m.Check(models.StatusPreparing, models.StatusOutForDelivery, ActorAdmin))
	})

	t.Run("rejected", func(t *testing.T) {
		m := mustMachine(t, Policy{AllowSkipAhead: false, CustomerCancelCutoff: models.StatusOutForDelivery})
		err := m.Check(models.StatusPlaced, models.StatusDelivered, ActorAdmin)
		assert.True(t, apperr.Is(err, apperr.CodeInvalidStatus))
		assert.Contains(t, err.Error(), "Valid transitions from placed are: preparing, cancelled")
		assert.NoError(t, m.Check(models.StatusPlaced, models.StatusPreparing, ActorAdmin))
	})
}

func TestBackwardsRejected(t *testing.T) {
	m := mustMachine(t, DefaultPolicy())
	err := m.Check(models.StatusPackaging, models.StatusPreparing, ActorAdmin)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidStatus))
}

func TestUnknownStatus(t *testing.T) {
	m := mustMachine(t, DefaultPolicy())
	err := m.Check(models.StatusPlaced, models.OrderStatus("shipped"), ActorAdmin)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidStatus))
	assert.Contains(t, err.Error(), `invalid status "shipped"`)
}

func TestSameStatusIsNoop(t *testing.T) {
	m := mustMachine(t, DefaultPolicy())
	for _, s := range models.OrderStatuses {
		assert.NoError(t, m.Check(s, s, ActorAdmin), string(s))
	}
}

func TestTerminalStates(t *testing.T) {
	m := mustMachine(t, DefaultPolicy())

	for _, from := range []models.OrderStatus{models.StatusDelivered, models.StatusCancelled} {
		for _, to := range models.OrderStatuses {
			if to == from {
				continue
			}
			assert.Error(t, m.Check(from, to, ActorAdmin), "%s → %s", from, to)
		}
		err := m.Cancel(from, ActorCustomer)
		assert.True(t, apperr.Is(err, apperr.CodeInvalidStatus), string(from))
		err = m.Cancel(from, ActorAdmin)
		assert.True(t, apperr.Is(err, apperr.CodeInvalidStatus), string(from))
	}
}

func TestCustomerCancelCutoff(t *testing.T) {
	tests := []struct {
		name    string
		cutoff  models.OrderStatus
		from    models.OrderStatus
		allowed bool
	}{
		{name: "placed", cutoff: models.StatusOutForDelivery, from: models.StatusPlaced, allowed: true},
		{name: "packaging", cutoff: models.StatusOutForDelivery, from: models.StatusPackaging, allowed: true},
		{name: "out for delivery", cutoff: models.StatusOutForDelivery, from: models.StatusOutForDelivery, allowed: false},
		{name: "strict cutoff", cutoff: models.StatusPreparing, from: models.StatusPreparing, allowed: false},
		{name: "lenient cutoff", cutoff: models.StatusDelivered, from: models.StatusOutForDelivery, allowed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustMachine(t, Policy{AllowSkipAhead: true, CustomerCancelCutoff: tt.cutoff})
			err := m.Cancel(tt.from, ActorCustomer)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.True(t, apperr.Is(err, apperr.CodeInvalidStatus))
			}
		})
	}
}

func TestCustomerCannotAdvance(t *testing.T) {
	m := mustMachine(t, DefaultPolicy())
	err := m.Check(models.StatusPlaced, models.StatusPreparing, ActorCustomer)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidStatus))
}

func TestAdminCancelAnyNonTerminal(t *testing.T) {
	m := mustMachine(t, DefaultPolicy())
	assert.NoError(t, m.Cancel(models.StatusOutForDelivery, ActorAdmin))
	assert.NoError(t, m.Check(models.StatusOutForDelivery, models.StatusCancelled, ActorAdmin))
}

func TestPolicyValidate(t *testing.T) {
	_, err := New(Policy{CustomerCancelCutoff: models.StatusPlaced})
	assert.Error(t, err)
	_, err = New(Policy{CustomerCancelCutoff: models.StatusCancelled})
	assert.Error(t, err)
	_, err = New(Policy{CustomerCancelCutoff: ""})
	assert.Error(t, err)
}

func TestValidTransitionsFrom(t *testing.T) {
	m := mustMachine(t, DefaultPolicy())
	assert.Equal(t,
		[]models.OrderStatus{models.StatusOutForDelivery, models.StatusDelivered, models.StatusCancelled},
		m.ValidTransitionsFrom(models.StatusPackaging, ActorAdmin))
	assert.Equal(t,
		[]models.OrderStatus{models.StatusCancelled},
		m.ValidTransitionsFrom(models.StatusPackaging, ActorCustomer))
	assert.Empty(t, m.ValidTransitionsFrom(models.StatusDelivered, ActorAdmin))
}
