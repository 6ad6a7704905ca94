package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"

	// RequestIDKey is the locals key under which the request id is stored.
	RequestIDKey = "request_id"
)

// RequestID tags every request with a stable identifier so a listing or sale
// can be traced through the audit log. An inbound X-Request-ID is honored;
// otherwise a fresh UUID is assigned and echoed back in the response.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqID := c.Get(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(requestIDHeader, reqID)
		c.Locals(RequestIDKey, reqID)
		return c.Next()
	}
}
