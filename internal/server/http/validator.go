package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"chessgame/internal/server/board"
	"chessgame/internal/server/core"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names rather than Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// "square" accepts two-character algebraic notation, a1 through h8
	v.RegisterValidation("square", func(fl validator.FieldLevel) bool {
		_, err := board.ParsePosition(strings.TrimSpace(fl.Field().String()))
		return err == nil
	})

	return v
}

// validationMiddleware parses and validates request bodies by route
func validationMiddleware(c *fiber.Ctx) error {
	method := c.Method()
	if method == fiber.MethodGet || method == fiber.MethodDelete || method == fiber.MethodOptions {
		return c.Next()
	}

	path := c.Path()
	var requestType interface{}

	switch {
	case strings.HasSuffix(path, "/games") && method == fiber.MethodPost:
		requestType = &core.CreateGameRequest{}
	case strings.HasSuffix(path, "/moves") && method == fiber.MethodPost:
		requestType = &core.MoveRequest{}
	default:
		return c.Next()
	}

	// An empty body is a valid create request with all defaults
	if len(c.Body()) > 0 {
		if err := c.BodyParser(requestType); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
				Error:   "invalid request body",
				Code:    core.ErrInvalidRequest,
				Details: err.Error(),
			})
		}
	}

	if errs := validate.Struct(requestType); errs != nil {
		var verrs validator.ValidationErrors
		details := errs.Error()
		if errors.As(errs, &verrs) {
			details = describeValidationErrors(verrs)
		}

		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "validation failed",
			Code:    core.ErrInvalidRequest,
			Details: details,
		})
	}

	c.Locals("validatedBody", requestType)
	c.Locals("validated", true)

	return c.Next()
}

func describeValidationErrors(errs validator.ValidationErrors) string {
	var details strings.Builder
	for _, err := range errs {
		if details.Len() > 0 {
			details.WriteString("; ")
		}
		switch err.Tag() {
		case "required":
			details.WriteString(fmt.Sprintf("%s is required", err.Field()))
		case "square":
			details.WriteString(fmt.Sprintf("%s must be a square from a1 to h8", err.Field()))
		case "uuid":
			details.WriteString(fmt.Sprintf("%s must be a valid UUID", err.Field()))
		case "nefield":
			details.WriteString(fmt.Sprintf("%s must differ from %s", err.Field(), strings.ToLower(err.Param())))
		default:
			details.WriteString(fmt.Sprintf("%s failed %s validation", err.Field(), err.Tag()))
		}
	}
	return details.String()
}

func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
