package account

import "time"

// Account represents a registered trader. Address is the platform identity
// used as seller/buyer in listings, proceeds, and the asset registry.
type Account struct {
	ID           string
	Handle       string
	Address      string
	PasswordHash []byte
	TokenVersion int
	CreatedAt    time.Time
}

// Credentials request structure.
type Credentials struct {
	Handle   string
	Password string
}
