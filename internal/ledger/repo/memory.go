package repo

import (
	"context"
	"sync"
)

// Memory implementa Store em memória, serializado por um único mutex.
// Usado nos testes e em execução local sem Postgres (STORAGE_DRIVER=memory).
type Memory struct {
	mu          sync.Mutex
	balances    map[string]int64
	bets        []Bet
	deposits    map[string]DepositConfirmation // payment_id -> confirmação
	withdrawals []WithdrawalRequest
}

func NewMemory() *Memory {
	return &Memory{
		balances: make(map[string]int64),
		deposits: make(map[string]DepositConfirmation),
	}
}

func (m *Memory) GetBalance(_ context.Context, accountID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[accountID], nil
}

func (m *Memory) ApplyDelta(_ context.Context, accountID string, deltaCents int64, rec Record) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	bal := m.balances[accountID]
	if bal+deltaCents < 0 {
		return 0, ErrInsufficientFunds
	}

	switch r := rec.(type) {
	case *Bet:
		m.bets = append(m.bets, *r)
	case *DepositConfirmation:
		if _, ok := m.deposits[r.PaymentID]; ok {
			return 0, ErrDepositAlreadyApplied
		}
		m.deposits[r.PaymentID] = *r
	case *WithdrawalRequest:
		m.withdrawals = append(m.withdrawals, *r)
	}

	m.balances[accountID] = bal + deltaCents
	return bal + deltaCents, nil
}

func (m *Memory) HasDepositBeenApplied(_ context.Context, paymentID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.deposits[paymentID]
	return ok, nil
}

// Bets retorna uma cópia dos registros de aposta (inspeção em testes).
func (m *Memory) Bets() []Bet {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Bet, len(m.bets))
	copy(out, m.bets)
	return out
}

// Withdrawals retorna uma cópia dos pedidos de saque.
func (m *Memory) Withdrawals() []WithdrawalRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]WithdrawalRequest, len(m.withdrawals))
	copy(out, m.withdrawals)
	return out
}
