package nft

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
)

type token struct {
	owner    string
	approved string
}

type collectionState struct {
	meta   Collection
	nextID uint64
	tokens map[uint64]*token
}

// InMemoryRegistry is a process-local registry simulator used in development
// and tests. It mirrors the mint/approve/transfer surface of an ERC-721
// collection without any chain behind it.
type InMemoryRegistry struct {
	mu          sync.RWMutex
	collections map[string]*collectionState
}

// NewInMemoryRegistry constructs an empty registry.
func NewInMemoryRegistry() *InMemoryRegistry {
	return &InMemoryRegistry{collections: make(map[string]*collectionState)}
}

// CreateCollection registers a new collection under a fresh address.
func (r *InMemoryRegistry) CreateCollection(_ context.Context, name, symbol string) (Collection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	meta := Collection{Address: newAddress(), Name: name, Symbol: symbol}
	r.collections[meta.Address] = &collectionState{meta: meta, tokens: make(map[uint64]*token)}
	return meta, nil
}

// Collections lists all registered collections.
func (r *InMemoryRegistry) Collections(_ context.Context) ([]Collection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Collection, 0, len(r.collections))
	for _, c := range r.collections {
		out = append(out, c.meta)
	}
	return out, nil
}

// Mint creates the next token in the collection owned by the given address.
func (r *InMemoryRegistry) Mint(_ context.Context, nftAddress, owner string) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.collections[nftAddress]
	if !ok {
		return 0, ErrUnknownCollection
	}
	id := c.nextID
	c.nextID++
	c.tokens[id] = &token{owner: owner}
	return id, nil
}

// Approve authorizes an operator to transfer the token. Only the current
// owner may grant approval; an empty operator clears it.
func (r *InMemoryRegistry) Approve(_ context.Context, nftAddress string, tokenID uint64, caller, operator string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tok, err := r.token(nftAddress, tokenID)
	if err != nil {
		return err
	}
	if tok.owner != caller {
		return ErrNotTokenOwner
	}
	tok.approved = operator
	return nil
}

// OwnerOf returns the current owner of the token.
func (r *InMemoryRegistry) OwnerOf(_ context.Context, nftAddress string, tokenID uint64) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tok, err := r.token(nftAddress, tokenID)
	if err != nil {
		return "", err
	}
	return tok.owner, nil
}

// GetApproved returns the operator approved for the token, empty when none.
func (r *InMemoryRegistry) GetApproved(_ context.Context, nftAddress string, tokenID uint64) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tok, err := r.token(nftAddress, tokenID)
	if err != nil {
		return "", err
	}
	return tok.approved, nil
}

// TransferFrom moves the token from its current owner to the recipient and
// clears any outstanding approval.
func (r *InMemoryRegistry) TransferFrom(_ context.Context, nftAddress string, tokenID uint64, from, to string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tok, err := r.token(nftAddress, tokenID)
	if err != nil {
		return err
	}
	if tok.owner != from {
		return ErrNotTokenOwner
	}
	tok.owner = to
	tok.approved = ""
	return nil
}

// token assumes r.mu is held.
func (r *InMemoryRegistry) token(nftAddress string, tokenID uint64) (*token, error) {
	c, ok := r.collections[nftAddress]
	if !ok {
		return nil, ErrUnknownCollection
	}
	tok, ok := c.tokens[tokenID]
	if !ok {
		return nil, ErrUnknownToken
	}
	return tok, nil
}

// newAddress generates a 20-byte hex address with a 0x prefix.
func newAddress() string {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return "0x" + hex.EncodeToString(buf)
}
