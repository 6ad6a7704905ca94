package market

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Scannty/nft-marketplace-backend/internal/nft"
	"github.com/Scannty/nft-marketplace-backend/internal/notification"
	"github.com/Scannty/nft-marketplace-backend/internal/payout"
)

type testNotifier struct {
	events []notification.Event
}

func (n *testNotifier) Send(_ context.Context, event notification.Event) error {
	n.events = append(n.events, event)
	return nil
}

func (n *testNotifier) last(t *testing.T) notification.Event {
	t.Helper()
	if len(n.events) == 0 {
		t.Fatalf("expected an event to be emitted")
	}
	return n.events[len(n.events)-1]
}

type recordingGateway struct {
	transfers map[string]int64
}

func (g *recordingGateway) Transfer(_ context.Context, to string, amount int64) (payout.Receipt, error) {
	if g.transfers == nil {
		g.transfers = make(map[string]int64)
	}
	g.transfers[to] += amount
	return payout.Receipt{Reference: "ref-1", Status: "completed"}, nil
}

type failingGateway struct{}

func (failingGateway) Transfer(_ context.Context, _ string, _ int64) (payout.Receipt, error) {
	return payout.Receipt{}, errors.New("rail unavailable")
}

type marketFixture struct {
	svc      *Service
	store    Store
	registry *nft.InMemoryRegistry
	notifier *testNotifier
	gateway  *recordingGateway
}

func newFixture(t *testing.T) *marketFixture {
	t.Helper()
	f := &marketFixture{
		store:    NewInMemoryStore(),
		registry: nft.NewInMemoryRegistry(),
		notifier: &testNotifier{},
		gateway:  &recordingGateway{},
	}
	f.svc = NewService(f.store, f.registry, f.gateway, f.notifier)
	return f
}

// mintApproved mints a token for owner and approves the marketplace for it.
func (f *marketFixture) mintApproved(t *testing.T, owner string) (string, uint64) {
	t.Helper()
	ctx := context.Background()
	collection, err := f.registry.CreateCollection(ctx, "Basic NFT", "BNFT")
	if err != nil {
		t.Fatalf("create collection: %v", err)
	}
	tokenID, err := f.registry.Mint(ctx, collection.Address, owner)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := f.registry.Approve(ctx, collection.Address, tokenID, owner, OperatorAddress); err != nil {
		t.Fatalf("approve: %v", err)
	}
	return collection.Address, tokenID
}

const (
	seller = "0xaaaa000000000000000000000000000000000001"
	buyer  = "0xbbbb000000000000000000000000000000000002"
)

func TestListAndGetListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	nftAddr, tokenID := f.mintApproved(t, seller)

	if _, err := f.svc.List(ctx, nftAddr, tokenID, 10, seller); err != nil {
		t.Fatalf("list: %v", err)
	}

	listing, err := f.svc.Listing(ctx, nftAddr, tokenID)
	if err != nil {
		t.Fatalf("get listing: %v", err)
	}
	if listing.Seller != seller || listing.Price != 10 {
		t.Fatalf("unexpected listing: %+v", listing)
	}

	event := f.notifier.last(t)
	if event.Kind != notification.KindItemListed || event.Seller != seller || event.Price != 10 {
		t.Fatalf("unexpected event: %+v", event)
	}
}

func TestListRejectsZeroPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	nftAddr, tokenID := f.mintApproved(t, seller)

	if _, err := f.svc.List(ctx, nftAddr, tokenID, 0, seller); !errors.Is(err, ErrPriceMustBeAboveZero) {
		t.Fatalf("expected ErrPriceMustBeAboveZero, got %v", err)
	}

	listing, _ := f.svc.Listing(ctx, nftAddr, tokenID)
	if !listing.IsZero() {
		t.Fatalf("expected no listing, got %+v", listing)
	}
}

func TestListRejectsNonOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	nftAddr, tokenID := f.mintApproved(t, seller)

	if _, err := f.svc.List(ctx, nftAddr, tokenID, 10, buyer); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	listing, _ := f.svc.Listing(ctx, nftAddr, tokenID)
	if !listing.IsZero() {
		t.Fatalf("listing store should be unchanged, got %+v", listing)
	}
}

func TestListRequiresApproval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	collection, err := f.registry.CreateCollection(ctx, "Basic NFT", "BNFT")
	if err != nil {
		t.Fatalf("create collection: %v", err)
	}
	tokenID, err := f.registry.Mint(ctx, collection.Address, seller)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := f.svc.List(ctx, collection.Address, tokenID, 10, seller); !errors.Is(err, ErrNotApproved) {
		t.Fatalf("expected ErrNotApproved, got %v", err)
	}
}

func TestListTwiceFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	nftAddr, tokenID := f.mintApproved(t, seller)

	if _, err := f.svc.List(ctx, nftAddr, tokenID, 10, seller); err != nil {
		t.Fatalf("first list: %v", err)
	}

	var alreadyListed *AlreadyListedError
	if _, err := f.svc.List(ctx, nftAddr, tokenID, 20, seller); !errors.As(err, &alreadyListed) {
		t.Fatalf("expected AlreadyListedError, got %v", err)
	}
	if alreadyListed.NFTAddress != nftAddr || alreadyListed.TokenID != tokenID {
		t.Fatalf("unexpected error fields: %+v", alreadyListed)
	}

	listing, _ := f.svc.Listing(ctx, nftAddr, tokenID)
	if listing.Price != 10 {
		t.Fatalf("first listing should be unaffected, got %+v", listing)
	}
}

func TestBuyNotListed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	nftAddr, tokenID := f.mintApproved(t, seller)

	var notListed *NotListedError
	if _, err := f.svc.Buy(ctx, nftAddr, tokenID, 10, buyer); !errors.As(err, &notListed) {
		t.Fatalf("expected NotListedError, got %v", err)
	}
	if notListed.NFTAddress != nftAddr || notListed.TokenID != tokenID {
		t.Fatalf("unexpected error fields: %+v", notListed)
	}
}

func TestBuyPriceNotMet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	nftAddr, tokenID := f.mintApproved(t, seller)
	if _, err := f.svc.List(ctx, nftAddr, tokenID, 10, seller); err != nil {
		t.Fatalf("list: %v", err)
	}

	var priceNotMet *PriceNotMetError
	if _, err := f.svc.Buy(ctx, nftAddr, tokenID, 9, buyer); !errors.As(err, &priceNotMet) {
		t.Fatalf("expected PriceNotMetError, got %v", err)
	}
	if priceNotMet.Price != 10 {
		t.Fatalf("expected listing price 10 in error, got %d", priceNotMet.Price)
	}

	listing, _ := f.svc.Listing(ctx, nftAddr, tokenID)
	if listing.IsZero() {
		t.Fatalf("listing should survive a failed buy")
	}
	if proceeds, _ := f.svc.Proceeds(ctx, seller); proceeds != 0 {
		t.Fatalf("no proceeds expected, got %d", proceeds)
	}
}

func TestBuySettlesSale(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	nftAddr, tokenID := f.mintApproved(t, seller)
	if _, err := f.svc.List(ctx, nftAddr, tokenID, 10, seller); err != nil {
		t.Fatalf("list: %v", err)
	}

	sale, err := f.svc.Buy(ctx, nftAddr, tokenID, 10, buyer)
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	if sale.Paid != 10 || sale.Buyer != buyer {
		t.Fatalf("unexpected sale: %+v", sale)
	}

	listing, _ := f.svc.Listing(ctx, nftAddr, tokenID)
	if !listing.IsZero() {
		t.Fatalf("listing should be empty after sale, got %+v", listing)
	}
	if proceeds, _ := f.svc.Proceeds(ctx, seller); proceeds != 10 {
		t.Fatalf("expected proceeds 10, got %d", proceeds)
	}
	owner, err := f.registry.OwnerOf(ctx, nftAddr, tokenID)
	if err != nil {
		t.Fatalf("owner lookup: %v", err)
	}
	if owner != buyer {
		t.Fatalf("expected ownership transferred to buyer, got %s", owner)
	}

	event := f.notifier.last(t)
	if event.Kind != notification.KindItemBought || event.Buyer != buyer || event.Price != 10 {
		t.Fatalf("unexpected event: %+v", event)
	}
}

func TestBuyOverpaymentForfeited(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	nftAddr, tokenID := f.mintApproved(t, seller)
	if _, err := f.svc.List(ctx, nftAddr, tokenID, 10, seller); err != nil {
		t.Fatalf("list: %v", err)
	}

	sale, err := f.svc.Buy(ctx, nftAddr, tokenID, 15, buyer)
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	if sale.Paid != 10 {
		t.Fatalf("only the listing price is credited, got %d", sale.Paid)
	}
	if proceeds, _ := f.svc.Proceeds(ctx, seller); proceeds != 10 {
		t.Fatalf("expected proceeds 10, got %d", proceeds)
	}
}

func TestBuyTransferFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	nftAddr, tokenID := f.mintApproved(t, seller)
	if _, err := f.svc.List(ctx, nftAddr, tokenID, 10, seller); err != nil {
		t.Fatalf("list: %v", err)
	}

	// Move the token away behind the marketplace's back so the registry
	// transfer on buy fails.
	if err := f.registry.TransferFrom(ctx, nftAddr, tokenID, seller, "0xcccc000000000000000000000000000000000003"); err != nil {
		t.Fatalf("out-of-band transfer: %v", err)
	}

	if _, err := f.svc.Buy(ctx, nftAddr, tokenID, 10, buyer); err == nil {
		t.Fatalf("expected buy to fail")
	}

	listing, _ := f.svc.Listing(ctx, nftAddr, tokenID)
	if listing.IsZero() {
		t.Fatalf("listing must survive a failed transfer")
	}
	if proceeds, _ := f.svc.Proceeds(ctx, seller); proceeds != 0 {
		t.Fatalf("no proceeds may survive a failed transfer, got %d", proceeds)
	}
}

func TestCancelByNonOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	nftAddr, tokenID := f.mintApproved(t, seller)
	if _, err := f.svc.List(ctx, nftAddr, tokenID, 10, seller); err != nil {
		t.Fatalf("list: %v", err)
	}

	if err := f.svc.Cancel(ctx, nftAddr, tokenID, buyer); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	listing, _ := f.svc.Listing(ctx, nftAddr, tokenID)
	if listing.IsZero() {
		t.Fatalf("listing should be unchanged")
	}
}

func TestCancelRemovesListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	nftAddr, tokenID := f.mintApproved(t, seller)
	if _, err := f.svc.List(ctx, nftAddr, tokenID, 10, seller); err != nil {
		t.Fatalf("list: %v", err)
	}

	if err := f.svc.Cancel(ctx, nftAddr, tokenID, seller); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	listing, _ := f.svc.Listing(ctx, nftAddr, tokenID)
	if !listing.IsZero() {
		t.Fatalf("expected empty listing, got %+v", listing)
	}

	event := f.notifier.last(t)
	if event.Kind != notification.KindItemCanceled || event.Seller != seller {
		t.Fatalf("unexpected event: %+v", event)
	}
}

func TestCancelThenBuyFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	nftAddr, tokenID := f.mintApproved(t, seller)
	if _, err := f.svc.List(ctx, nftAddr, tokenID, 10, seller); err != nil {
		t.Fatalf("list: %v", err)
	}
	if err := f.svc.Cancel(ctx, nftAddr, tokenID, seller); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	var notListed *NotListedError
	if _, err := f.svc.Buy(ctx, nftAddr, tokenID, 10, buyer); !errors.As(err, &notListed) {
		t.Fatalf("expected NotListedError, got %v", err)
	}
}

func TestUpdatePrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	nftAddr, tokenID := f.mintApproved(t, seller)
	if _, err := f.svc.List(ctx, nftAddr, tokenID, 10, seller); err != nil {
		t.Fatalf("list: %v", err)
	}

	if _, err := f.svc.Update(ctx, nftAddr, tokenID, 5, seller); err != nil {
		t.Fatalf("update: %v", err)
	}

	listing, _ := f.svc.Listing(ctx, nftAddr, tokenID)
	if listing.Price != 5 || listing.Seller != seller {
		t.Fatalf("unexpected listing after update: %+v", listing)
	}

	// Re-publication uses the listed event again.
	event := f.notifier.last(t)
	if event.Kind != notification.KindItemListed || event.Price != 5 {
		t.Fatalf("unexpected event: %+v", event)
	}
}

func TestUpdateByNonOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	nftAddr, tokenID := f.mintApproved(t, seller)
	if _, err := f.svc.List(ctx, nftAddr, tokenID, 10, seller); err != nil {
		t.Fatalf("list: %v", err)
	}

	if _, err := f.svc.Update(ctx, nftAddr, tokenID, 5, buyer); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	listing, _ := f.svc.Listing(ctx, nftAddr, tokenID)
	if listing.Price != 10 {
		t.Fatalf("price should be unchanged, got %d", listing.Price)
	}
}

func TestUpdateRejectsZeroPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	nftAddr, tokenID := f.mintApproved(t, seller)
	if _, err := f.svc.List(ctx, nftAddr, tokenID, 10, seller); err != nil {
		t.Fatalf("list: %v", err)
	}

	if _, err := f.svc.Update(ctx, nftAddr, tokenID, 0, seller); !errors.Is(err, ErrPriceMustBeAboveZero) {
		t.Fatalf("expected ErrPriceMustBeAboveZero, got %v", err)
	}
}

func TestUpdateUnlisted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	nftAddr, tokenID := f.mintApproved(t, seller)

	var notListed *NotListedError
	if _, err := f.svc.Update(ctx, nftAddr, tokenID, 5, seller); !errors.As(err, &notListed) {
		t.Fatalf("expected NotListedError, got %v", err)
	}
}

func TestWithdrawNoProceeds(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Withdraw(context.Background(), seller); !errors.Is(err, ErrNoProceeds) {
		t.Fatalf("expected ErrNoProceeds, got %v", err)
	}
}

func TestWithdrawPaysFullBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	SeedProceeds(f.store, seller, 2_500)

	res, err := f.svc.Withdraw(ctx, seller)
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if res.Amount != 2_500 {
		t.Fatalf("expected amount 2500, got %d", res.Amount)
	}
	if f.gateway.transfers[seller] != 2_500 {
		t.Fatalf("gateway should have received 2500, got %d", f.gateway.transfers[seller])
	}
	if proceeds, _ := f.svc.Proceeds(ctx, seller); proceeds != 0 {
		t.Fatalf("balance must be zero after withdrawal, got %d", proceeds)
	}
}

func TestWithdrawGatewayFailureKeepsBalance(t *testing.T) {
	store := NewInMemoryStore()
	svc := NewService(store, nft.NewInMemoryRegistry(), failingGateway{}, nil)
	ctx := context.Background()
	SeedProceeds(store, seller, 1_000)

	if _, err := svc.Withdraw(ctx, seller); err == nil {
		t.Fatalf("expected withdrawal to fail")
	}
	if proceeds, _ := svc.Proceeds(ctx, seller); proceeds != 1_000 {
		t.Fatalf("balance must be restored on payout failure, got %d", proceeds)
	}
}

func TestMintListBuyWithdrawFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	nftAddr, tokenID := f.mintApproved(t, seller)

	const price = int64(10)
	if _, err := f.svc.List(ctx, nftAddr, tokenID, price, seller); err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, err := f.svc.Buy(ctx, nftAddr, tokenID, price, buyer); err != nil {
		t.Fatalf("buy: %v", err)
	}

	listing, _ := f.svc.Listing(ctx, nftAddr, tokenID)
	if !listing.IsZero() {
		t.Fatalf("expected empty listing, got %+v", listing)
	}
	if proceeds, _ := f.svc.Proceeds(ctx, seller); proceeds != price {
		t.Fatalf("expected proceeds %d, got %d", price, proceeds)
	}
	if owner, _ := f.registry.OwnerOf(ctx, nftAddr, tokenID); owner != buyer {
		t.Fatalf("expected buyer to own the token, got %s", owner)
	}

	res, err := f.svc.Withdraw(ctx, seller)
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if res.Amount != price {
		t.Fatalf("expected withdrawal %d, got %d", price, res.Amount)
	}
	if proceeds, _ := f.svc.Proceeds(ctx, seller); proceeds != 0 {
		t.Fatalf("expected proceeds reset, got %d", proceeds)
	}
	if f.gateway.transfers[seller] != price {
		t.Fatalf("expected seller funds increased by %d, got %d", price, f.gateway.transfers[seller])
	}
}

func TestRelistAfterSale(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	nftAddr, tokenID := f.mintApproved(t, seller)
	if _, err := f.svc.List(ctx, nftAddr, tokenID, 10, seller); err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, err := f.svc.Buy(ctx, nftAddr, tokenID, 10, buyer); err != nil {
		t.Fatalf("buy: %v", err)
	}

	// The new owner approves and re-lists the same token.
	if err := f.registry.Approve(ctx, nftAddr, tokenID, buyer, OperatorAddress); err != nil {
		t.Fatalf("approve: %v", err)
	}
	listing, err := f.svc.List(ctx, nftAddr, tokenID, 20, buyer)
	if err != nil {
		t.Fatalf("relist: %v", err)
	}
	if listing.Seller != buyer || listing.Price != 20 {
		t.Fatalf("unexpected relisting: %+v", listing)
	}
}

func TestDistinctTokensIndependent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		owner := fmt.Sprintf("0x%040d", i)
		nftAddr, tokenID := f.mintApproved(t, owner)
		if _, err := f.svc.List(ctx, nftAddr, tokenID, int64(10*(i+1)), owner); err != nil {
			t.Fatalf("list %d: %v", i, err)
		}
		listing, _ := f.svc.Listing(ctx, nftAddr, tokenID)
		if listing.Seller != owner {
			t.Fatalf("listing %d has wrong seller: %+v", i, listing)
		}
	}
}
