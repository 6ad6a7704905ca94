package nft

import (
	"context"
	"errors"
)

var (
	// ErrUnknownCollection indicates the collection address is not registered.
	ErrUnknownCollection = errors.New("unknown collection")

	// ErrUnknownToken indicates the token id has not been minted.
	ErrUnknownToken = errors.New("unknown token")

	// ErrNotTokenOwner occurs when a caller acts on a token it does not own.
	ErrNotTokenOwner = errors.New("caller does not own the token")
)

// Registry is the asset ownership and transfer registry the marketplace
// consults. Ownership and approvals live here, never in the marketplace;
// registry failures are fatal to the enclosing marketplace operation.
type Registry interface {
	OwnerOf(ctx context.Context, nftAddress string, tokenID uint64) (string, error)
	GetApproved(ctx context.Context, nftAddress string, tokenID uint64) (string, error)
	TransferFrom(ctx context.Context, nftAddress string, tokenID uint64, from, to string) error
}

// Collection describes a registered token collection.
type Collection struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}
