// Package postgres is the durable implementation of
// interfaces.AccountStore over database/sql and lib/pq. Money columns
// are NUMERIC and round-trip through shopspring/decimal; the domain
// works in whole units, so values convert to int64 at the boundary.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/quorumledger/joint-account-ledger/internal/interfaces"
	"github.com/quorumledger/joint-account-ledger/internal/models"
	"github.com/shopspring/decimal"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id         BIGINT PRIMARY KEY,
	balance    NUMERIC NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS account_owners (
	account_id BIGINT NOT NULL REFERENCES accounts(id),
	position   INT NOT NULL,
	owner      TEXT NOT NULL,
	PRIMARY KEY (account_id, position)
);

CREATE INDEX IF NOT EXISTS account_owners_owner_idx ON account_owners(owner);

CREATE TABLE IF NOT EXISTS withdrawal_requests (
	account_id BIGINT NOT NULL REFERENCES accounts(id),
	id         BIGINT NOT NULL,
	requester  TEXT NOT NULL,
	amount     NUMERIC NOT NULL,
	state      TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (account_id, id)
);

CREATE TABLE IF NOT EXISTS request_approvals (
	account_id BIGINT NOT NULL,
	request_id BIGINT NOT NULL,
	position   INT NOT NULL,
	approver   TEXT NOT NULL,
	PRIMARY KEY (account_id, request_id, approver)
);
`

type AccountStore struct {
	db *sql.DB
}

func NewAccountStore(db *sql.DB) *AccountStore {
	return &AccountStore{db: db}
}

// EnsureSchema creates the tables if they do not exist yet.
func (s *AccountStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *AccountStore) CreateAccount(ctx context.Context, acct models.Account) (uint64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	// Ids are sequential from zero across both store backends, so the
	// next id is computed from the table rather than a serial column.
	const insertAccount = `INSERT INTO accounts (id, balance, created_at)
	SELECT COALESCE(MAX(id)+1, 0), 0, $1 FROM accounts RETURNING id`

	var id uint64
	if err = tx.QueryRowContext(ctx, insertAccount, acct.CreatedAt).Scan(&id); err != nil {
		return 0, err
	}

	const insertOwner = `INSERT INTO account_owners (account_id, position, owner) VALUES ($1, $2, $3)`
	for i, o := range acct.Owners {
		if _, err = tx.ExecContext(ctx, insertOwner, id, i, string(o)); err != nil {
			return 0, err
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *AccountStore) GetAccount(ctx context.Context, accountID uint64) (models.Account, error) {
	const accountQuery = `SELECT id, balance, created_at FROM accounts WHERE id = $1`

	var acct models.Account
	var balance decimal.Decimal
	err := s.db.QueryRowContext(ctx, accountQuery, accountID).Scan(&acct.ID, &balance, &acct.CreatedAt)
	if err == sql.ErrNoRows {
		return models.Account{}, models.ErrAccountNotFound
	}
	if err != nil {
		return models.Account{}, err
	}
	acct.Balance = balance.IntPart()

	acct.Owners, err = s.owners(ctx, accountID)
	if err != nil {
		return models.Account{}, err
	}
	acct.Requests, err = s.requests(ctx, accountID)
	if err != nil {
		return models.Account{}, err
	}
	return acct, nil
}

func (s *AccountStore) owners(ctx context.Context, accountID uint64) ([]models.Identity, error) {
	const query = `SELECT owner FROM account_owners WHERE account_id = $1 ORDER BY position`

	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var owners []models.Identity
	for rows.Next() {
		var o string
		if err := rows.Scan(&o); err != nil {
			return nil, err
		}
		owners = append(owners, models.Identity(o))
	}
	return owners, rows.Err()
}

func (s *AccountStore) requests(ctx context.Context, accountID uint64) ([]models.WithdrawalRequest, error) {
	const query = `SELECT id, requester, amount, state, created_at
	FROM withdrawal_requests WHERE account_id = $1 ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []models.WithdrawalRequest
	for rows.Next() {
		var req models.WithdrawalRequest
		var requester, state string
		var amount decimal.Decimal
		if err := rows.Scan(&req.ID, &requester, &amount, &state, &req.CreatedAt); err != nil {
			return nil, err
		}
		req.Requester = models.Identity(requester)
		req.Amount = amount.IntPart()
		req.State = models.RequestState(state)
		reqs = append(reqs, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range reqs {
		approvals, err := s.approvals(ctx, accountID, reqs[i].ID)
		if err != nil {
			return nil, err
		}
		reqs[i].Approvals = approvals
	}
	return reqs, nil
}

func (s *AccountStore) approvals(ctx context.Context, accountID, requestID uint64) ([]models.Identity, error) {
	const query = `SELECT approver FROM request_approvals
	WHERE account_id = $1 AND request_id = $2 ORDER BY position`

	rows, err := s.db.QueryContext(ctx, query, accountID, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var approvals []models.Identity
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		approvals = append(approvals, models.Identity(a))
	}
	return approvals, rows.Err()
}

func (s *AccountStore) AccountIDsByOwner(ctx context.Context, owner models.Identity) ([]uint64, error) {
	const query = `SELECT account_id FROM account_owners WHERE owner = $1 ORDER BY account_id`

	rows, err := s.db.QueryContext(ctx, query, string(owner))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *AccountStore) OwnedCount(ctx context.Context, owner models.Identity) (int, error) {
	const query = `SELECT COUNT(*) FROM account_owners WHERE owner = $1`

	var n int
	if err := s.db.QueryRowContext(ctx, query, string(owner)).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *AccountStore) UpdateBalance(ctx context.Context, accountID uint64, balance int64) error {
	const query = `UPDATE accounts SET balance = $2 WHERE id = $1`

	res, err := s.db.ExecContext(ctx, query, accountID, decimal.NewFromInt(balance))
	if err != nil {
		return err
	}
	return requireRow(res, models.ErrAccountNotFound)
}

func (s *AccountStore) AppendRequest(ctx context.Context, accountID uint64, req models.WithdrawalRequest) (uint64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM accounts WHERE id = $1`, accountID).Scan(&exists)
	if err == sql.ErrNoRows {
		err = models.ErrAccountNotFound
		return 0, err
	}
	if err != nil {
		return 0, err
	}

	const insert = `INSERT INTO withdrawal_requests (account_id, id, requester, amount, state, created_at)
	SELECT $1, COALESCE(MAX(id)+1, 0), $2, $3, $4, $5
	FROM withdrawal_requests WHERE account_id = $1 RETURNING id`

	var id uint64
	err = tx.QueryRowContext(ctx, insert, accountID, string(req.Requester),
		decimal.NewFromInt(req.Amount), string(req.State), req.CreatedAt).Scan(&id)
	if err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *AccountStore) UpdateRequest(ctx context.Context, accountID uint64, req models.WithdrawalRequest) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = updateRequestTx(ctx, tx, accountID, req); err != nil {
		return err
	}
	err = tx.Commit()
	return err
}

// ExecuteWithdrawal commits the debit and the Executed state flip in
// one transaction, mirroring the single atomic effect the workflow
// promises.
func (s *AccountStore) ExecuteWithdrawal(ctx context.Context, accountID uint64, req models.WithdrawalRequest, balance int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = updateRequestTx(ctx, tx, accountID, req); err != nil {
		return err
	}

	const updateBalance = `UPDATE accounts SET balance = $2 WHERE id = $1`
	if _, err = tx.ExecContext(ctx, updateBalance, accountID, decimal.NewFromInt(balance)); err != nil {
		return err
	}
	err = tx.Commit()
	return err
}

func updateRequestTx(ctx context.Context, tx *sql.Tx, accountID uint64, req models.WithdrawalRequest) error {
	const update = `UPDATE withdrawal_requests SET state = $3
	WHERE account_id = $1 AND id = $2`

	res, err := tx.ExecContext(ctx, update, accountID, req.ID, string(req.State))
	if err != nil {
		return err
	}
	if err := requireRow(res, models.ErrRequestNotFound); err != nil {
		return err
	}

	// Approvals are rewritten wholesale; the set only ever grows and
	// stays small (at most three entries).
	const clear = `DELETE FROM request_approvals WHERE account_id = $1 AND request_id = $2`
	if _, err := tx.ExecContext(ctx, clear, accountID, req.ID); err != nil {
		return err
	}
	const insert = `INSERT INTO request_approvals (account_id, request_id, position, approver)
	VALUES ($1, $2, $3, $4)`
	for i, a := range req.Approvals {
		if _, err := tx.ExecContext(ctx, insert, accountID, req.ID, i, string(a)); err != nil {
			return err
		}
	}
	return nil
}

func requireRow(res sql.Result, missing error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return missing
	}
	return nil
}

var _ interfaces.AccountStore = (*AccountStore)(nil)
