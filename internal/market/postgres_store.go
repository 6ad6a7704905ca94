package market

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists listings and proceeds in PostgreSQL. Operations that
// combine internal mutation with an external effect run the effect inside the
// transaction, before commit, so a failed transfer rolls the whole unit back.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Listing(ctx context.Context, nftAddress string, tokenID uint64) (Listing, error) {
	const query = `SELECT seller, price FROM listings WHERE nft_address = $1 AND token_id = $2`
	listing := Listing{NFTAddress: nftAddress, TokenID: tokenID}
	err := s.db.QueryRow(ctx, query, nftAddress, int64(tokenID)).Scan(&listing.Seller, &listing.Price)
	if errors.Is(err, pgx.ErrNoRows) {
		return Listing{}, nil
	}
	if err != nil {
		return Listing{}, err
	}
	return listing, nil
}

func (s *PostgresStore) CreateListing(ctx context.Context, listing Listing) error {
	const query = `INSERT INTO listings (nft_address, token_id, seller, price)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (nft_address, token_id) DO NOTHING`
	cmd, err := s.db.Exec(ctx, query, listing.NFTAddress, int64(listing.TokenID), listing.Seller, listing.Price)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return &AlreadyListedError{NFTAddress: listing.NFTAddress, TokenID: listing.TokenID}
	}
	return nil
}

func (s *PostgresStore) UpdateListingPrice(ctx context.Context, nftAddress string, tokenID uint64, price int64) error {
	const query = `UPDATE listings SET price = $3, updated_at = now()
        WHERE nft_address = $1 AND token_id = $2`
	cmd, err := s.db.Exec(ctx, query, nftAddress, int64(tokenID), price)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return &NotListedError{NFTAddress: nftAddress, TokenID: tokenID}
	}
	return nil
}

func (s *PostgresStore) RemoveListing(ctx context.Context, nftAddress string, tokenID uint64) error {
	const query = `DELETE FROM listings WHERE nft_address = $1 AND token_id = $2`
	cmd, err := s.db.Exec(ctx, query, nftAddress, int64(tokenID))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return &NotListedError{NFTAddress: nftAddress, TokenID: tokenID}
	}
	return nil
}

func (s *PostgresStore) RecordSale(ctx context.Context, nftAddress string, tokenID uint64, offered int64, transfer TransferFunc) (Listing, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Listing{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	const lockQuery = `SELECT seller, price FROM listings
        WHERE nft_address = $1 AND token_id = $2 FOR UPDATE`
	listing := Listing{NFTAddress: nftAddress, TokenID: tokenID}
	err = tx.QueryRow(ctx, lockQuery, nftAddress, int64(tokenID)).Scan(&listing.Seller, &listing.Price)
	if errors.Is(err, pgx.ErrNoRows) {
		return Listing{}, &NotListedError{NFTAddress: nftAddress, TokenID: tokenID}
	}
	if err != nil {
		return Listing{}, err
	}
	if offered < listing.Price {
		return Listing{}, &PriceNotMetError{NFTAddress: nftAddress, TokenID: tokenID, Price: listing.Price}
	}

	const creditQuery = `INSERT INTO proceeds (seller, balance) VALUES ($1, $2)
        ON CONFLICT (seller) DO UPDATE SET balance = proceeds.balance + EXCLUDED.balance`
	if _, err := tx.Exec(ctx, creditQuery, listing.Seller, listing.Price); err != nil {
		return Listing{}, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM listings WHERE nft_address = $1 AND token_id = $2`, nftAddress, int64(tokenID)); err != nil {
		return Listing{}, err
	}

	if err := transfer(ctx, listing); err != nil {
		return Listing{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Listing{}, err
	}
	return listing, nil
}

func (s *PostgresStore) Proceeds(ctx context.Context, seller string) (int64, error) {
	const query = `SELECT COALESCE(SUM(balance), 0) FROM proceeds WHERE seller = $1`
	var balance int64
	if err := s.db.QueryRow(ctx, query, seller).Scan(&balance); err != nil {
		return 0, err
	}
	return balance, nil
}

func (s *PostgresStore) Withdraw(ctx context.Context, seller string, pay PayoutFunc) (int64, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	const lockQuery = `SELECT balance FROM proceeds WHERE seller = $1 FOR UPDATE`
	var amount int64
	err = tx.QueryRow(ctx, lockQuery, seller).Scan(&amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNoProceeds
	}
	if err != nil {
		return 0, err
	}
	if amount <= 0 {
		return 0, ErrNoProceeds
	}

	if _, err := tx.Exec(ctx, `UPDATE proceeds SET balance = 0 WHERE seller = $1`, seller); err != nil {
		return 0, err
	}

	if err := pay(ctx, amount); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return amount, nil
}
