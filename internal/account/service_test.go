package account

import (
	"context"
	"strings"
	"testing"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	acct, err := svc.Register(ctx, Credentials{Handle: "alice", Password: "correct horse"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if acct.ID == "" {
		t.Fatalf("expected an id to be assigned")
	}
	if !strings.HasPrefix(acct.Address, "0x") || len(acct.Address) != 42 {
		t.Fatalf("unexpected address format: %s", acct.Address)
	}

	got, err := svc.Authenticate(ctx, Credentials{Handle: "alice", Password: "correct horse"})
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != acct.ID || got.Address != acct.Address {
		t.Fatalf("expected the registered account, got %+v", got)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	if _, err := svc.Register(ctx, Credentials{Handle: "", Password: "long enough"}); err == nil {
		t.Fatalf("expected missing handle to fail")
	}
	if _, err := svc.Register(ctx, Credentials{Handle: "bob", Password: "short"}); err == nil {
		t.Fatalf("expected short password to fail")
	}
}

func TestRegisterDuplicateHandle(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	if _, err := svc.Register(ctx, Credentials{Handle: "alice", Password: "correct horse"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, Credentials{Handle: "alice", Password: "another pass"}); err == nil {
		t.Fatalf("expected duplicate handle to fail")
	}
}

func TestAuthenticateWrongPassword(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	if _, err := svc.Register(ctx, Credentials{Handle: "alice", Password: "correct horse"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Authenticate(ctx, Credentials{Handle: "alice", Password: "wrong horse"}); err == nil {
		t.Fatalf("expected wrong password to fail")
	}
	if _, err := svc.Authenticate(ctx, Credentials{Handle: "nobody", Password: "correct horse"}); err == nil {
		t.Fatalf("expected unknown handle to fail")
	}
}

func TestAddressesAreDistinct(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	a, err := svc.Register(ctx, Credentials{Handle: "alice", Password: "correct horse"})
	if err != nil {
		t.Fatalf("register alice: %v", err)
	}
	b, err := svc.Register(ctx, Credentials{Handle: "bob", Password: "correct horse"})
	if err != nil {
		t.Fatalf("register bob: %v", err)
	}
	if a.Address == b.Address {
		t.Fatalf("two accounts received the same address: %s", a.Address)
	}
}
