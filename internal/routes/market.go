package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Scannty/nft-marketplace-backend/internal/market"
)

// RegisterMarketRoutes wires the listing and proceeds endpoints.
func RegisterMarketRoutes(r fiber.Router, h *market.Handler) {
	r.Post("/listings", h.List)
	r.Get("/listings/:nftAddress/:tokenId", h.Get)
	r.Patch("/listings/:nftAddress/:tokenId", h.Update)
	r.Delete("/listings/:nftAddress/:tokenId", h.Cancel)
	r.Post("/listings/:nftAddress/:tokenId/buy", h.Buy)

	r.Get("/proceeds", h.Proceeds)
	r.Post("/proceeds/withdraw", h.Withdraw)
}
