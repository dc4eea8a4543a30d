// Package handlers contains the fiber HTTP handlers. Every response uses
// the same envelope: success, message, and optional data/errors fields.
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/yemak/internal/services"
	"github.com/example/yemak/internal/utils"
)

// respondServiceError maps domain errors onto the response envelope.
// Anything unrecognized bubbles up to the app-level error handler.
func respondServiceError(c *fiber.Ctx, err error, notFoundMessage string) error {
	switch {
	case errors.Is(err, services.ErrNoMatchingOrder):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": notFoundMessage,
		})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": "forbidden for this role",
		})
	default:
		return err
	}
}

// statisticsQuery reads the fbd/fbt/fbm/page query parameters.
func statisticsQuery(c *fiber.Ctx) services.StatisticsQuery {
	return services.StatisticsQuery{
		DateFilter:   c.Query("fbd"),
		StatusFilter: c.Query("fbt"),
		SortFilter:   c.Query("fbm"),
		Page:         utils.ParsePagination(c).Page,
	}
}

type addOrRemoveRequest struct {
	ProductIDs []string `json:"product_ids"`
	Action     string   `json:"action"`
}

// parseProductIDs keeps the well-formed IDs and drops the rest.
func parseProductIDs(raw []string) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, value := range raw {
		if id, err := uuid.Parse(value); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
