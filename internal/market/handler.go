package market

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Scannty/nft-marketplace-backend/internal/nft"
)

// Handler exposes the marketplace endpoints. The caller address is always the
// authenticated account established by the JWT middleware.
type Handler struct {
	service *Service
}

// NewHandler constructs a marketplace handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type listRequest struct {
	NFTAddress string `json:"nft_address"`
	TokenID    uint64 `json:"token_id"`
	Price      int64  `json:"price"`
}

// List creates a listing for the caller's token.
func (h *Handler) List(c *fiber.Ctx) error {
	caller, err := callerAddress(c)
	if err != nil {
		return err
	}
	var req listRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	listing, err := h.service.List(c.UserContext(), req.NFTAddress, req.TokenID, req.Price, caller)
	if err != nil {
		return translate(err)
	}
	return c.Status(http.StatusCreated).JSON(listing)
}

// Get returns the active listing for a token, or an empty listing when the
// token is not for sale.
func (h *Handler) Get(c *fiber.Ctx) error {
	nftAddress, tokenID, err := pathToken(c)
	if err != nil {
		return err
	}
	listing, err := h.service.Listing(c.UserContext(), nftAddress, tokenID)
	if err != nil {
		return translate(err)
	}
	return c.Status(http.StatusOK).JSON(listing)
}

type updateRequest struct {
	Price int64 `json:"price"`
}

// Update replaces the listing price.
func (h *Handler) Update(c *fiber.Ctx) error {
	caller, err := callerAddress(c)
	if err != nil {
		return err
	}
	nftAddress, tokenID, err := pathToken(c)
	if err != nil {
		return err
	}
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	listing, err := h.service.Update(c.UserContext(), nftAddress, tokenID, req.Price, caller)
	if err != nil {
		return translate(err)
	}
	return c.Status(http.StatusOK).JSON(listing)
}

// Cancel removes the caller's listing.
func (h *Handler) Cancel(c *fiber.Ctx) error {
	caller, err := callerAddress(c)
	if err != nil {
		return err
	}
	nftAddress, tokenID, err := pathToken(c)
	if err != nil {
		return err
	}
	if err := h.service.Cancel(c.UserContext(), nftAddress, tokenID, caller); err != nil {
		return translate(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "canceled"})
}

type buyRequest struct {
	OfferedAmount int64 `json:"offered_amount"`
}

// Buy purchases a listed token for the caller.
func (h *Handler) Buy(c *fiber.Ctx) error {
	caller, err := callerAddress(c)
	if err != nil {
		return err
	}
	nftAddress, tokenID, err := pathToken(c)
	if err != nil {
		return err
	}
	var req buyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	sale, err := h.service.Buy(c.UserContext(), nftAddress, tokenID, req.OfferedAmount, caller)
	if err != nil {
		return translate(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"nft_address":  nftAddress,
		"token_id":     tokenID,
		"seller":       sale.Listing.Seller,
		"buyer":        sale.Buyer,
		"paid":         sale.Paid,
		"completed_at": sale.CompletedAt,
	})
}

// Proceeds returns the caller's withdrawable balance.
func (h *Handler) Proceeds(c *fiber.Ctx) error {
	caller, err := callerAddress(c)
	if err != nil {
		return err
	}
	balance, err := h.service.Proceeds(c.UserContext(), caller)
	if err != nil {
		return translate(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"seller": caller, "proceeds": balance})
}

// Withdraw pays out the caller's full balance.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	caller, err := callerAddress(c)
	if err != nil {
		return err
	}
	res, err := h.service.Withdraw(c.UserContext(), caller)
	if err != nil {
		return translate(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"amount":       res.Amount,
		"reference":    res.Reference,
		"completed_at": res.CompletedAt,
	})
}

func callerAddress(c *fiber.Ctx) (string, error) {
	address, _ := c.Locals("address").(string)
	if address == "" {
		return "", fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}
	return address, nil
}

func pathToken(c *fiber.Ctx) (string, uint64, error) {
	tokenID, err := strconv.ParseUint(c.Params("tokenId"), 10, 64)
	if err != nil {
		return "", 0, fiber.NewError(http.StatusBadRequest, "invalid token id")
	}
	return c.Params("nftAddress"), tokenID, nil
}

func translate(err error) error {
	var notListed *NotListedError
	var alreadyListed *AlreadyListedError
	var priceNotMet *PriceNotMetError
	switch {
	case errors.Is(err, ErrPriceMustBeAboveZero):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.As(err, &priceNotMet):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotOwner), errors.Is(err, ErrNotApproved):
		return fiber.NewError(http.StatusForbidden, err.Error())
	case errors.As(err, &notListed):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, nft.ErrUnknownCollection), errors.Is(err, nft.ErrUnknownToken):
		// Possible when listings outlive the in-process registry.
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.As(err, &alreadyListed):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrNoProceeds):
		return fiber.NewError(http.StatusConflict, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
