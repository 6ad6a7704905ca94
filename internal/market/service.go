package market

import (
	"context"
	"fmt"
	"time"

	"github.com/Scannty/nft-marketplace-backend/internal/nft"
	"github.com/Scannty/nft-marketplace-backend/internal/notification"
	"github.com/Scannty/nft-marketplace-backend/internal/payout"
)

// Service implements the marketplace operations over a Store, consulting the
// asset registry for ownership and approval and emitting one event per
// successful mutation. Caller identities are the authenticated account
// addresses handed in by the transport layer, never request fields.
type Service struct {
	store    Store
	registry nft.Registry
	gateway  payout.Gateway
	notifier notification.Notifier
}

// NewService constructs the marketplace service. A nil gateway falls back to
// the static payout simulator.
func NewService(store Store, registry nft.Registry, gateway payout.Gateway, notifier notification.Notifier) *Service {
	if gateway == nil {
		gateway = payout.StaticGateway{}
	}
	return &Service{store: store, registry: registry, gateway: gateway, notifier: notifier}
}

// List creates a listing for the caller's token at the given price. The
// caller must own the token and must have approved the marketplace as its
// transfer operator.
func (s *Service) List(ctx context.Context, nftAddress string, tokenID uint64, price int64, caller string) (Listing, error) {
	if price <= 0 {
		return Listing{}, ErrPriceMustBeAboveZero
	}

	owner, err := s.registry.OwnerOf(ctx, nftAddress, tokenID)
	if err != nil {
		return Listing{}, fmt.Errorf("registry owner lookup: %w", err)
	}
	if owner != caller {
		return Listing{}, ErrNotOwner
	}

	approved, err := s.registry.GetApproved(ctx, nftAddress, tokenID)
	if err != nil {
		return Listing{}, fmt.Errorf("registry approval lookup: %w", err)
	}
	if approved != OperatorAddress {
		return Listing{}, ErrNotApproved
	}

	listing := Listing{NFTAddress: nftAddress, TokenID: tokenID, Seller: caller, Price: price}
	if err := s.store.CreateListing(ctx, listing); err != nil {
		return Listing{}, err
	}

	s.notify(ctx, notification.Event{
		Kind:       notification.KindItemListed,
		Seller:     caller,
		NFTAddress: nftAddress,
		TokenID:    tokenID,
		Price:      price,
	})
	return listing, nil
}

// SaleResult describes a settled purchase. Paid is the amount credited to the
// seller; anything offered above the listing price is forfeited.
type SaleResult struct {
	Listing     Listing
	Buyer       string
	Paid        int64
	CompletedAt time.Time
}

// Buy purchases a listed token for the caller. The proceeds credit and the
// listing removal commit before the registry transfer runs; a transfer
// failure aborts the whole purchase.
func (s *Service) Buy(ctx context.Context, nftAddress string, tokenID uint64, offered int64, caller string) (SaleResult, error) {
	sold, err := s.store.RecordSale(ctx, nftAddress, tokenID, offered, func(ctx context.Context, listing Listing) error {
		if err := s.registry.TransferFrom(ctx, nftAddress, tokenID, listing.Seller, caller); err != nil {
			return fmt.Errorf("registry transfer: %w", err)
		}
		return nil
	})
	if err != nil {
		return SaleResult{}, err
	}

	s.notify(ctx, notification.Event{
		Kind:       notification.KindItemBought,
		Buyer:      caller,
		NFTAddress: nftAddress,
		TokenID:    tokenID,
		Price:      sold.Price,
	})
	return SaleResult{Listing: sold, Buyer: caller, Paid: sold.Price, CompletedAt: time.Now().UTC()}, nil
}

// Cancel removes the caller's listing. The caller must currently own the
// token per the registry.
func (s *Service) Cancel(ctx context.Context, nftAddress string, tokenID uint64, caller string) error {
	listing, err := s.store.Listing(ctx, nftAddress, tokenID)
	if err != nil {
		return err
	}
	if listing.IsZero() {
		return &NotListedError{NFTAddress: nftAddress, TokenID: tokenID}
	}

	owner, err := s.registry.OwnerOf(ctx, nftAddress, tokenID)
	if err != nil {
		return fmt.Errorf("registry owner lookup: %w", err)
	}
	if owner != caller {
		return ErrNotOwner
	}

	if err := s.store.RemoveListing(ctx, nftAddress, tokenID); err != nil {
		return err
	}

	s.notify(ctx, notification.Event{
		Kind:       notification.KindItemCanceled,
		Seller:     caller,
		NFTAddress: nftAddress,
		TokenID:    tokenID,
	})
	return nil
}

// Update replaces the price of the caller's listing and re-publishes it. The
// same positive-price invariant as List applies.
func (s *Service) Update(ctx context.Context, nftAddress string, tokenID uint64, newPrice int64, caller string) (Listing, error) {
	if newPrice <= 0 {
		return Listing{}, ErrPriceMustBeAboveZero
	}

	listing, err := s.store.Listing(ctx, nftAddress, tokenID)
	if err != nil {
		return Listing{}, err
	}
	if listing.IsZero() {
		return Listing{}, &NotListedError{NFTAddress: nftAddress, TokenID: tokenID}
	}

	owner, err := s.registry.OwnerOf(ctx, nftAddress, tokenID)
	if err != nil {
		return Listing{}, fmt.Errorf("registry owner lookup: %w", err)
	}
	if owner != caller {
		return Listing{}, ErrNotOwner
	}

	if err := s.store.UpdateListingPrice(ctx, nftAddress, tokenID, newPrice); err != nil {
		return Listing{}, err
	}
	listing.Price = newPrice

	// Re-publication uses the same event as the initial listing.
	s.notify(ctx, notification.Event{
		Kind:       notification.KindItemListed,
		Seller:     caller,
		NFTAddress: nftAddress,
		TokenID:    tokenID,
		Price:      newPrice,
	})
	return listing, nil
}

// Listing returns the active listing, or the zero Listing when the token is
// not for sale.
func (s *Service) Listing(ctx context.Context, nftAddress string, tokenID uint64) (Listing, error) {
	return s.store.Listing(ctx, nftAddress, tokenID)
}

// Proceeds returns the caller's withdrawable balance.
func (s *Service) Proceeds(ctx context.Context, seller string) (int64, error) {
	return s.store.Proceeds(ctx, seller)
}

// WithdrawalResult describes a completed proceeds withdrawal.
type WithdrawalResult struct {
	Amount      int64
	Reference   string
	CompletedAt time.Time
}

// Withdraw pays out the caller's full balance through the payout gateway. The
// balance is zeroed before the transfer is initiated; a transfer failure
// aborts the withdrawal with the balance intact.
func (s *Service) Withdraw(ctx context.Context, caller string) (WithdrawalResult, error) {
	var receipt payout.Receipt
	amount, err := s.store.Withdraw(ctx, caller, func(ctx context.Context, amount int64) error {
		var err error
		if receipt, err = s.gateway.Transfer(ctx, caller, amount); err != nil {
			return fmt.Errorf("payout transfer: %w", err)
		}
		return nil
	})
	if err != nil {
		return WithdrawalResult{}, err
	}
	return WithdrawalResult{Amount: amount, Reference: receipt.Reference, CompletedAt: time.Now().UTC()}, nil
}

func (s *Service) notify(ctx context.Context, event notification.Event) {
	if s.notifier != nil {
		_ = s.notifier.Send(ctx, event)
	}
}
