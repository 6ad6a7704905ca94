package account

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists accounts.
type Repository interface {
	Create(ctx context.Context, acct Account) error
	FindByHandle(ctx context.Context, handle string) (Account, error)
	FindByID(ctx context.Context, id string) (Account, error)
	UpdateTokenVersion(ctx context.Context, id string, version int) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed account repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new account.
func (r *PostgresRepository) Create(ctx context.Context, acct Account) error {
	id, err := uuid.Parse(acct.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO accounts (id, handle, address, password_hash, token_version, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		id, acct.Handle, acct.Address, acct.PasswordHash, acct.TokenVersion, acct.CreatedAt.UTC())
	return err
}

// FindByHandle fetches an account by its handle.
func (r *PostgresRepository) FindByHandle(ctx context.Context, handle string) (Account, error) {
	row := r.db.QueryRow(ctx, `SELECT id, handle, address, password_hash, token_version, created_at
        FROM accounts WHERE handle = $1`, handle)
	return scanAccount(row.Scan)
}

// FindByID fetches an account by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Account, error) {
	acctID, err := uuid.Parse(id)
	if err != nil {
		return Account{}, err
	}
	row := r.db.QueryRow(ctx, `SELECT id, handle, address, password_hash, token_version, created_at
        FROM accounts WHERE id = $1`, acctID)
	return scanAccount(row.Scan)
}

// UpdateTokenVersion stores a new token version, invalidating older tokens.
func (r *PostgresRepository) UpdateTokenVersion(ctx context.Context, id string, version int) error {
	acctID, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	cmd, err := r.db.Exec(ctx, `UPDATE accounts SET token_version = $1 WHERE id = $2`, version, acctID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return errors.New("account not found")
	}
	return nil
}

func scanAccount(scan func(dest ...any) error) (Account, error) {
	var (
		id        uuid.UUID
		createdAt time.Time
		acct      Account
	)
	if err := scan(&id, &acct.Handle, &acct.Address, &acct.PasswordHash, &acct.TokenVersion, &createdAt); err != nil {
		return Account{}, err
	}
	acct.ID = id.String()
	acct.CreatedAt = createdAt.UTC()
	return acct, nil
}
