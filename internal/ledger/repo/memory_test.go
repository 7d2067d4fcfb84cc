package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryUnknownAccountReadsZero(t *testing.T) {
	m := NewMemory()

	bal, err := m.GetBalance(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, int64(0), bal)
}

func TestMemoryRejectsNegativeResultingBalance(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, err := m.ApplyDelta(ctx, "1", -500, &Bet{
		ID: "b1", AccountID: "1", Direction: DirectionUp, AmountCents: 500, CreatedAt: time.Now(),
	})
	require.ErrorIs(t, err, ErrInsufficientFunds)

	// nada foi aplicado
	bal, err := m.GetBalance(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), bal)
	assert.Empty(t, m.Bets())
}

func TestMemoryDepositUniqueByPaymentID(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	dep := &DepositConfirmation{
		PaymentID: "pay_1", AccountID: "1", AmountCents: 1000, ExternalRef: "1|tok", CreatedAt: time.Now(),
	}
	bal, err := m.ApplyDelta(ctx, "1", 1000, dep)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), bal)

	_, err = m.ApplyDelta(ctx, "1", 1000, dep)
	require.ErrorIs(t, err, ErrDepositAlreadyApplied)

	// saldo não mudou na reentrega
	bal, err = m.GetBalance(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), bal)

	applied, err := m.HasDepositBeenApplied(ctx, "pay_1")
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = m.HasDepositBeenApplied(ctx, "pay_2")
	require.NoError(t, err)
	assert.False(t, applied)
}
