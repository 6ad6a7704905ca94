package account

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Service manages account lifecycle.
type Service struct {
	repo Repository
}

// NewService creates a new account service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates an account with a fresh platform address and a hashed
// password.
func (s *Service) Register(ctx context.Context, creds Credentials) (Account, error) {
	if creds.Handle == "" {
		return Account{}, errors.New("handle is required")
	}
	if len(creds.Password) < 8 {
		return Account{}, errors.New("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, err
	}

	acct := Account{
		ID:           uuid.New().String(),
		Handle:       creds.Handle,
		Address:      newAddress(),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, acct); err != nil {
		return Account{}, err
	}

	return acct, nil
}

// Authenticate verifies the handle/password pair.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (Account, error) {
	acct, err := s.repo.FindByHandle(ctx, creds.Handle)
	if err != nil {
		return Account{}, err
	}

	if err := bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte(creds.Password)); err != nil {
		return Account{}, errors.New("invalid credentials")
	}

	return acct, nil
}

// newAddress generates a 20-byte hex platform address with a 0x prefix.
func newAddress() string {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return "0x" + hex.EncodeToString(buf)
}
