package market

// OperatorAddress identifies the marketplace as a transfer operator in the
// asset registry. A seller must approve it for a token before that token can
// be listed.
const OperatorAddress = "0x00000000000000000000000000006d61726b6574"

// Listing is an active offer to sell one token at a fixed price. The zero
// value means "not listed": an empty seller and a price of zero.
type Listing struct {
	NFTAddress string `json:"nft_address"`
	TokenID    uint64 `json:"token_id"`
	Seller     string `json:"seller"`
	Price      int64  `json:"price"`
}

// IsZero reports whether the listing is absent.
func (l Listing) IsZero() bool {
	return l.Seller == ""
}
