package market

import (
	"context"
	"sync"
)

type listingKey struct {
	nft     string
	tokenID uint64
}

type inMemoryStore struct {
	mu       sync.RWMutex
	listings map[listingKey]Listing
	proceeds map[string]int64
}

// NewInMemoryStore creates a concurrency-safe in-memory store used in tests
// and development mode.
func NewInMemoryStore() Store {
	return &inMemoryStore{
		listings: make(map[listingKey]Listing),
		proceeds: make(map[string]int64),
	}
}

func (s *inMemoryStore) Listing(_ context.Context, nftAddress string, tokenID uint64) (Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listings[listingKey{nftAddress, tokenID}], nil
}

func (s *inMemoryStore) CreateListing(_ context.Context, listing Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := listingKey{listing.NFTAddress, listing.TokenID}
	if _, exists := s.listings[key]; exists {
		return &AlreadyListedError{NFTAddress: listing.NFTAddress, TokenID: listing.TokenID}
	}
	s.listings[key] = listing
	return nil
}

func (s *inMemoryStore) UpdateListingPrice(_ context.Context, nftAddress string, tokenID uint64, price int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := listingKey{nftAddress, tokenID}
	listing, exists := s.listings[key]
	if !exists {
		return &NotListedError{NFTAddress: nftAddress, TokenID: tokenID}
	}
	listing.Price = price
	s.listings[key] = listing
	return nil
}

func (s *inMemoryStore) RemoveListing(_ context.Context, nftAddress string, tokenID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := listingKey{nftAddress, tokenID}
	if _, exists := s.listings[key]; !exists {
		return &NotListedError{NFTAddress: nftAddress, TokenID: tokenID}
	}
	delete(s.listings, key)
	return nil
}

func (s *inMemoryStore) RecordSale(ctx context.Context, nftAddress string, tokenID uint64, offered int64, transfer TransferFunc) (Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := listingKey{nftAddress, tokenID}
	listing, exists := s.listings[key]
	if !exists {
		return Listing{}, &NotListedError{NFTAddress: nftAddress, TokenID: tokenID}
	}
	if offered < listing.Price {
		return Listing{}, &PriceNotMetError{NFTAddress: nftAddress, TokenID: tokenID, Price: listing.Price}
	}

	// Internal commit first: credit the seller and drop the listing, then let
	// the external transfer run. The lock stays held throughout, so no other
	// operation observes the intermediate state, and a transfer failure
	// restores both maps exactly.
	s.proceeds[listing.Seller] += listing.Price
	delete(s.listings, key)

	if err := transfer(ctx, listing); err != nil {
		s.proceeds[listing.Seller] -= listing.Price
		s.listings[key] = listing
		return Listing{}, err
	}
	return listing, nil
}

func (s *inMemoryStore) Proceeds(_ context.Context, seller string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.proceeds[seller], nil
}

func (s *inMemoryStore) Withdraw(ctx context.Context, seller string, pay PayoutFunc) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	amount := s.proceeds[seller]
	if amount <= 0 {
		return 0, ErrNoProceeds
	}

	// Zero the balance before the external transfer so a reentrant withdrawal
	// can never drain twice.
	s.proceeds[seller] = 0

	if err := pay(ctx, amount); err != nil {
		s.proceeds[seller] = amount
		return 0, err
	}
	return amount, nil
}
