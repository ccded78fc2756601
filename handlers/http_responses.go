package handlers

import (
	"errors"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// ErrorHandler renders errors returned by handlers as JSON
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	} else {
		log.Errorf("Request %s %s failed: %v", c.Method(), c.Path(), err)
	}

	return c.Status(code).JSON(fiber.Map{
		"error": message,
	})
}

// SendBadRequestError sends a bad request error
func SendBadRequestError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": message,
	})
}

// SendNotFoundError sends a not found error
func SendNotFoundError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": message,
	})
}

// SendUnsupportedMediaTypeError sends an unsupported media type error
func SendUnsupportedMediaTypeError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
		"error": message,
	})
}

// SendInternalServerError logs err and sends a generic error
func SendInternalServerError(c *fiber.Ctx, message string, err error) error {
	log.Errorf("%s: %v", message, err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": message,
	})
}
