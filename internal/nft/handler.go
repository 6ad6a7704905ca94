package nft

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the registry simulator over HTTP so the mint → approve →
// list flow can be exercised end to end in development.
type Handler struct {
	registry        *InMemoryRegistry
	defaultOperator string
}

// NewHandler builds a registry handler. The default operator is used when an
// approval request names none, so sellers can approve the marketplace in one
// call.
func NewHandler(registry *InMemoryRegistry, defaultOperator string) *Handler {
	return &Handler{registry: registry, defaultOperator: defaultOperator}
}

type createCollectionRequest struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// CreateCollection registers a new collection.
func (h *Handler) CreateCollection(c *fiber.Ctx) error {
	var req createCollectionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Name == "" {
		return fiber.NewError(http.StatusBadRequest, "name is required")
	}
	collection, err := h.registry.CreateCollection(c.UserContext(), req.Name, req.Symbol)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(collection)
}

// Mint creates a token owned by the authenticated caller.
func (h *Handler) Mint(c *fiber.Ctx) error {
	caller, _ := c.Locals("address").(string)
	if caller == "" {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}
	tokenID, err := h.registry.Mint(c.UserContext(), c.Params("address"), caller)
	if err != nil {
		return h.translate(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"nft_address": c.Params("address"),
		"token_id":    tokenID,
		"owner":       caller,
	})
}

type approveRequest struct {
	Operator string `json:"operator"`
}

// Approve grants an operator transfer rights over the caller's token.
func (h *Handler) Approve(c *fiber.Ctx) error {
	caller, _ := c.Locals("address").(string)
	if caller == "" {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}
	tokenID, err := strconv.ParseUint(c.Params("tokenId"), 10, 64)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid token id")
	}
	var req approveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	operator := req.Operator
	if operator == "" {
		operator = h.defaultOperator
	}
	if err := h.registry.Approve(c.UserContext(), c.Params("address"), tokenID, caller, operator); err != nil {
		return h.translate(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"operator": operator})
}

// Owner returns the current owner of a token.
func (h *Handler) Owner(c *fiber.Ctx) error {
	tokenID, err := strconv.ParseUint(c.Params("tokenId"), 10, 64)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid token id")
	}
	owner, err := h.registry.OwnerOf(c.UserContext(), c.Params("address"), tokenID)
	if err != nil {
		return h.translate(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"owner": owner})
}

func (h *Handler) translate(err error) error {
	switch {
	case errors.Is(err, ErrUnknownCollection), errors.Is(err, ErrUnknownToken):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotTokenOwner):
		return fiber.NewError(http.StatusForbidden, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
