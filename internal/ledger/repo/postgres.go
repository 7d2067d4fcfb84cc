package repo

import (
	"context"
	"database/sql"
	"fmt"
)

// Postgres implementa Store sobre Postgres.
// Toda mutação roda em uma transação com lock pessimista na linha da conta.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// GetBalance retorna o saldo atual da conta. Conta desconhecida lê como 0,
// igual ao comportamento da consulta de saldo original.
func (p *Postgres) GetBalance(ctx context.Context, accountID string) (int64, error) {
	var bal int64
	err := p.db.QueryRowContext(ctx,
		`SELECT balance_cents FROM accounts WHERE id=$1`, accountID).Scan(&bal)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return bal, nil
}

// ApplyDelta aplica a mutação de saldo e insere o registro correspondente
// na mesma transação. A conta é criada no primeiro acesso e travada com
// FOR UPDATE, serializando operações concorrentes sobre o mesmo saldo.
func (p *Postgres) ApplyDelta(ctx context.Context, accountID string, deltaCents int64, rec Record) (int64, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	// Cria a conta se não existir, depois trava a linha
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO accounts(id, balance_cents) VALUES($1, 0) ON CONFLICT (id) DO NOTHING`,
		accountID); err != nil {
		return 0, err
	}

	var bal int64
	if err = tx.QueryRowContext(ctx,
		`SELECT balance_cents FROM accounts WHERE id=$1 FOR UPDATE`, accountID).Scan(&bal); err != nil {
		return 0, err
	}

	if bal+deltaCents < 0 {
		return 0, ErrInsufficientFunds
	}

	if err = insertRecord(ctx, tx, rec); err != nil {
		return 0, err
	}

	newBal := bal + deltaCents
	if _, err = tx.ExecContext(ctx,
		`UPDATE accounts SET balance_cents=$1, updated_at=NOW() WHERE id=$2`,
		newBal, accountID); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return newBal, nil
}

// insertRecord insere o registro append-only dentro da transação corrente.
// Para depósitos, o ON CONFLICT no payment_id fecha a janela entre checagem
// e insert: a duplicata é detectada dentro da mesma unidade atômica.
func insertRecord(ctx context.Context, tx *sql.Tx, rec Record) error {
	switch r := rec.(type) {
	case *Bet:
		_, err := tx.ExecContext(ctx, `
			INSERT INTO bets (id, account_id, direction, amount_cents, created_at)
			VALUES ($1,$2,$3,$4,$5)`,
			r.ID, r.AccountID, r.Direction, r.AmountCents, r.CreatedAt)
		return err

	case *DepositConfirmation:
		res, err := tx.ExecContext(ctx, `
			INSERT INTO deposit_confirmations (payment_id, account_id, amount_cents, external_ref, created_at)
			VALUES ($1,$2,$3,$4,$5)
			ON CONFLICT (payment_id) DO NOTHING`,
			r.PaymentID, r.AccountID, r.AmountCents, r.ExternalRef, r.CreatedAt)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrDepositAlreadyApplied
		}
		return nil

	case *WithdrawalRequest:
		_, err := tx.ExecContext(ctx, `
			INSERT INTO withdrawal_requests (id, account_id, amount_cents, status, created_at)
			VALUES ($1,$2,$3,$4,$5)`,
			r.ID, r.AccountID, r.AmountCents, r.Status, r.CreatedAt)
		return err

	default:
		return fmt.Errorf("unknown ledger record type %T", rec)
	}
}

// HasDepositBeenApplied consulta se um payment_id já consta no ledger.
// Uso informativo; a garantia de unicidade mora no ApplyDelta.
func (p *Postgres) HasDepositBeenApplied(ctx context.Context, paymentID string) (bool, error) {
	var one int
	err := p.db.QueryRowContext(ctx,
		`SELECT 1 FROM deposit_confirmations WHERE payment_id=$1`, paymentID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
