package payout

import (
	"context"

	"github.com/google/uuid"
)

// Gateway represents the external funds-transfer rail used to pay sellers
// their accumulated proceeds. A transfer failure aborts the enclosing
// withdrawal; the marketplace never retries on its own.
type Gateway interface {
	Transfer(ctx context.Context, to string, amount int64) (Receipt, error)
}

// Receipt captures the gateway's acknowledgement of a transfer.
type Receipt struct {
	Reference string
	Status    string
}

// StaticGateway simulates a successful payout integration.
type StaticGateway struct{}

// Transfer approves the payout with a synthetic reference.
func (StaticGateway) Transfer(_ context.Context, _ string, _ int64) (Receipt, error) {
	return Receipt{Reference: uuid.NewString(), Status: "completed"}, nil
}
