package routes

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/Scannty/nft-marketplace-backend/internal/account"
)

// RegisterAccountRoutes wires account registration.
func RegisterAccountRoutes(r fiber.Router, accounts *account.Service, logger *slog.Logger) {
	r.Post("/accounts/register", func(c *fiber.Ctx) error {
		var req struct {
			Handle   string `json:"handle"`
			Password string `json:"password"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		acct, err := accounts.Register(c.UserContext(), account.Credentials{Handle: req.Handle, Password: req.Password})
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		if logger != nil {
			logger.Info("account registered",
				slog.String("account_id", acct.ID),
				slog.String("handle", acct.Handle),
				slog.String("address", acct.Address),
			)
		}
		return c.Status(http.StatusCreated).JSON(fiber.Map{
			"account_id": acct.ID,
			"handle":     acct.Handle,
			"address":    acct.Address,
			"created_at": acct.CreatedAt,
		})
	})
}
