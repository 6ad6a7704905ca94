package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Scannty/nft-marketplace-backend/internal/account"
	"github.com/Scannty/nft-marketplace-backend/internal/auth"
	"github.com/Scannty/nft-marketplace-backend/internal/config"
)

// JWTAuth validates bearer tokens and establishes the caller identity for
// downstream handlers: the account id and its platform address. Marketplace
// operations trust only this identity, never a request field.
func JWTAuth(cfg config.Config, repo account.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])
		claims, err := auth.ParseAndVerifyHS256(tokenStr, []byte(cfg.JWTSecret))
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}
		sub, _ := claims["sub"].(string)
		verFloat, _ := claims["ver"].(float64)
		ver := int(verFloat)

		acct, err := repo.FindByID(c.UserContext(), sub)
		if err != nil || acct.TokenVersion != ver {
			return fiber.NewError(http.StatusUnauthorized, "token invalidated")
		}

		c.Locals("account_id", acct.ID)
		c.Locals("address", acct.Address)
		return c.Next()
	}
}
