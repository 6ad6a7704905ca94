package market

import (
	"errors"
	"fmt"
)

var (
	// ErrPriceMustBeAboveZero rejects listings and price updates at or below zero.
	ErrPriceMustBeAboveZero = errors.New("price must be above zero")

	// ErrNotOwner occurs when the caller does not own the token per the registry.
	ErrNotOwner = errors.New("caller is not the owner of the token")

	// ErrNotApproved occurs when the marketplace lacks transfer approval for the token.
	ErrNotApproved = errors.New("marketplace is not approved to transfer the token")

	// ErrNoProceeds occurs when a withdrawal finds an empty balance.
	ErrNoProceeds = errors.New("no proceeds to withdraw")
)

// AlreadyListedError identifies a listing conflict on (nft address, token id).
type AlreadyListedError struct {
	NFTAddress string
	TokenID    uint64
}

func (e *AlreadyListedError) Error() string {
	return fmt.Sprintf("token %d of %s is already listed", e.TokenID, e.NFTAddress)
}

// NotListedError identifies a failed listing lookup.
type NotListedError struct {
	NFTAddress string
	TokenID    uint64
}

func (e *NotListedError) Error() string {
	return fmt.Sprintf("token %d of %s is not listed", e.TokenID, e.NFTAddress)
}

// PriceNotMetError carries the listing price a buy offer failed to meet.
type PriceNotMetError struct {
	NFTAddress string
	TokenID    uint64
	Price      int64
}

func (e *PriceNotMetError) Error() string {
	return fmt.Sprintf("offer for token %d of %s does not meet the listing price %d", e.TokenID, e.NFTAddress, e.Price)
}
