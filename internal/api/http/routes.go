package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"weathersuggest/internal/suggest"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *suggest.Service) {
	v1 := app.Group("/api/v1")

	v1.Get("/suggest", func(c *fiber.Ctx) error {
		var q suggestQuery
		q.City = c.Query("city")
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		rec, err := service.Suggest(c.Context(), q.City)
		if err != nil {
			return errorToHTTP(err)
		}
		return c.JSON(rec)
	})

	v1.Get("/suggestions", func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit")
		if limit < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "limit must not be negative")
		}

		recs, err := service.ListRecent(c.Context(), limit)
		if err != nil {
			return errorToHTTP(err)
		}
		return c.JSON(fiber.Map{
			"count":       len(recs),
			"suggestions": recs,
		})
	})

	v1.Post("/checkout", func(c *fiber.Ctx) error {
		var body checkoutBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid checkout body")
		}
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		orderID, rec, err := service.Checkout(c.Context(), suggest.CheckoutSelector{
			RecordID: body.RecordID,
			City:     body.City,
		})
		if err != nil {
			return errorToHTTP(err)
		}
		return c.JSON(fiber.Map{
			"orderId": orderID,
			"record":  rec,
		})
	})
}

// suggestQuery holds query parameters for the suggest endpoint.
type suggestQuery struct {
	City string `validate:"required"`
}

// checkoutBody selects a record by id, or by city as a fallback to that
// city's most recent record.
type checkoutBody struct {
	RecordID int64  `json:"record_id" validate:"required_without=City,omitempty,gt=0"`
	City     string `json:"city" validate:"required_without=RecordID"`
}

// errorToHTTP maps the core failure taxonomy onto response statuses.
func errorToHTTP(err error) error {
	switch {
	case errors.Is(err, suggest.ErrBadRequest):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, suggest.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, suggest.ErrUpstreamTimeout):
		return fiber.NewError(fiber.StatusGatewayTimeout, err.Error())
	case errors.Is(err, suggest.ErrUpstreamError), errors.Is(err, suggest.ErrInvalidUpstreamData):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	case errors.Is(err, suggest.ErrStorageUnavailable):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}
}
