package utils

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/arvue/arvue/pkg/logger"
)

// Response is the single envelope every endpoint answers with:
// 2xx -> "success", 4xx -> "fail", 5xx -> "error".
type Response struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ResponseBuilder builds a response with a fluent interface.
type ResponseBuilder struct {
	C       *fiber.Ctx
	Code    int
	Message string
	Data    interface{}
	Err     *CustomError
}

// Success starts a success response with the given HTTP status code.
func Success(c *fiber.Ctx, code int) *ResponseBuilder {
	return &ResponseBuilder{C: c, Code: code}
}

// Error starts an error response from a CustomError.
func Error(c *fiber.Ctx, err *CustomError) *ResponseBuilder {
	return &ResponseBuilder{C: c, Code: err.Code, Err: err, Message: err.Message}
}

// WithMessage adds a custom message to the response.
func (b *ResponseBuilder) WithMessage(msg string) *ResponseBuilder {
	b.Message = msg
	return b
}

// WithData adds data to the response.
func (b *ResponseBuilder) WithData(data interface{}) *ResponseBuilder {
	b.Data = data
	return b
}

// Send sends the response and logs it.
func (b *ResponseBuilder) Send() error {
	resp := Response{
		Status:  statusWord(b.Code),
		Code:    b.Code,
		Message: b.Message,
		Data:    b.Data,
	}

	if log, ok := b.C.Locals("logger").(*logger.Logger); ok {
		meta := map[string]string{
			"status":  fmt.Sprintf("%d", b.Code),
			"path":    b.C.Path(),
			"method":  b.C.Method(),
			"latency": time.Since(b.C.Context().Time()).String(),
		}
		if b.Err == nil {
			log.Info(b.C.UserContext()).WithMeta(meta).Logs("Response sent")
		} else {
			log.Error(b.C.UserContext()).WithMeta(meta).Logs(fmt.Sprintf("Error response sent: %s", b.Err.Error()))
		}
	}

	return b.C.Status(b.Code).JSON(resp)
}

// SendError sends an error response directly. Unknown error values are
// masked as a 500 so internals never leak to the client.
func SendError(c *fiber.Ctx, err error) error {
	appErr, ok := err.(*CustomError)
	if !ok {
		appErr = NewError(fiber.StatusInternalServerError, "Server error").WithCause(err)
	}
	return Error(c, appErr).Send()
}

func statusWord(code int) string {
	switch {
	case code >= 500:
		return "error"
	case code >= 400:
		return "fail"
	default:
		return "success"
	}
}
