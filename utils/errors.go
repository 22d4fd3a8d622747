package utils

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/clinic-app/models"
)

type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
	KindNotFound     ErrorKind = "not_found"
	KindInternal     ErrorKind = "internal"
)

// AppError is an expected failure carrying a user-facing message.
type AppError struct {
	Kind    ErrorKind
	Message string
	Details []string
}

func (e *AppError) Error() string {
	return e.Message
}

func Validation(format string, args ...any) *AppError {
	return &AppError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) *AppError {
	return &AppError{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(format string, args ...any) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

func statusFor(kind ErrorKind) int {
	switch kind {
	case KindValidation:
		return fiber.StatusBadRequest
	case KindUnauthorized:
		return fiber.StatusUnauthorized
	case KindForbidden:
		return fiber.StatusForbidden
	case KindNotFound:
		return fiber.StatusNotFound
	}
	return fiber.StatusInternalServerError
}

// ErrorResponse is the envelope for every failed request
type ErrorResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Error   string   `json:"error,omitempty"`
	Details []string `json:"details,omitempty"`
}

// SendError maps err onto a status code and writes the error envelope.
func SendError(c *fiber.Ctx, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return c.Status(statusFor(appErr.Kind)).JSON(ErrorResponse{
			Message: appErr.Message,
			Details: appErr.Details,
		})
	}

	var fieldErr *models.FieldError
	if errors.As(err, &fieldErr) {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "Dữ liệu không hợp lệ",
			Error:   fieldErr.Error(),
		})
	}

	var transitionErr *models.TransitionError
	if errors.As(err, &transitionErr) {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: transitionErr.Error(),
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Message: "Lỗi máy chủ",
		Error:   err.Error(),
	})
}

// SendData writes the success envelope.
func SendData(c *fiber.Ctx, status int, message string, data any) error {
	body := fiber.Map{"success": true, "data": data}
	if message != "" {
		body["message"] = message
	}
	return c.Status(status).JSON(body)
}
