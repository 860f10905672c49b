package serverutils

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AppError carries an HTTP status alongside the message so the error
// middleware can translate service failures without type sniffing.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidationError(message string) *AppError {
	return &AppError{Code: fiber.StatusBadRequest, Message: message}
}

// NewDependencyError marks an upstream failure whose retry budget is
// already spent. 502: the request failed beyond this process.
func NewDependencyError(message string, err error) *AppError {
	return &AppError{Code: fiber.StatusBadGateway, Message: message, Err: err}
}

var validate = validator.New()

func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	return nil
}

// ErrorHandlerMiddleware converts errors returned from handlers into
// JSON responses. A single failing request must never take the
// process down, so everything unknown collapses to a 500.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var appErr *AppError
		if errors.As(err, &appErr) {
			return ctx.Status(appErr.Code).JSON(fiber.Map{"error": appErr.Message})
		}

		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": vErrs.Error()})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}
