package market

import "context"

// TransferFunc hands the sold listing to the external asset transfer. It runs
// after the sale is recorded internally and before the store commits; an
// error aborts the whole sale.
type TransferFunc func(ctx context.Context, listing Listing) error

// PayoutFunc hands the withdrawn amount to the external funds transfer under
// the same contract as TransferFunc.
type PayoutFunc func(ctx context.Context, amount int64) error

// Store owns the listing map and the proceeds ledger behind one serialization
// boundary. Every operation is atomic: no caller can observe a partially
// applied sale or withdrawal, and the external-effect callbacks are invoked
// only after all internal mutation for the operation is in place. Callbacks
// must not call back into the store.
//
// Implementations: the in-memory store for tests and development, the
// Postgres store for deployments.
type Store interface {
	// Listing returns the active listing, or the zero Listing when absent.
	Listing(ctx context.Context, nftAddress string, tokenID uint64) (Listing, error)

	// CreateListing inserts a listing. Returns *AlreadyListedError when one
	// is already active for the same token.
	CreateListing(ctx context.Context, listing Listing) error

	// UpdateListingPrice replaces the price of an active listing. Returns
	// *NotListedError when there is none.
	UpdateListingPrice(ctx context.Context, nftAddress string, tokenID uint64, price int64) error

	// RemoveListing deletes an active listing. Returns *NotListedError when
	// there is none.
	RemoveListing(ctx context.Context, nftAddress string, tokenID uint64) error

	// RecordSale settles a buy as one unit: it checks the offer against the
	// listing price, credits the listing price to the seller's proceeds,
	// deletes the listing, and invokes transfer. Returns the listing that was
	// sold. Returns *NotListedError, *PriceNotMetError, or the transfer error
	// with no state change.
	RecordSale(ctx context.Context, nftAddress string, tokenID uint64, offered int64, transfer TransferFunc) (Listing, error)

	// Proceeds returns the seller's withdrawable balance, zero when the
	// seller has never sold.
	Proceeds(ctx context.Context, seller string) (int64, error)

	// Withdraw zeroes the seller's balance and invokes pay with the amount
	// withdrawn, as one unit. Returns ErrNoProceeds on an empty balance, or
	// the payout error with the balance left intact.
	Withdraw(ctx context.Context, seller string, pay PayoutFunc) (int64, error)
}
