package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Scannty/nft-marketplace-backend/internal/nft"
)

// RegisterNFTRoutes wires the registry simulator endpoints used to mint and
// approve tokens in development.
func RegisterNFTRoutes(r fiber.Router, h *nft.Handler) {
	r.Post("/nft/collections", h.CreateCollection)
	r.Post("/nft/collections/:address/mint", h.Mint)
	r.Post("/nft/collections/:address/tokens/:tokenId/approve", h.Approve)
	r.Get("/nft/collections/:address/tokens/:tokenId/owner", h.Owner)
}
