package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// schemaQuery reports whether the promotions table is visible on the search path.
const schemaQuery = `SELECT to_regclass('promotions') IS NOT NULL`

// RowQuerier is satisfied by *pgxpool.Pool.
type RowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// HealthHandler reports whether the promotion store can serve requests.
type HealthHandler struct {
	db RowQuerier
}

// NewHealthHandler creates a new HealthHandler with the given database pool.
func NewHealthHandler(db RowQuerier) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check handles GET /health.
// One round trip checks both that the database answers and that the
// promotions schema has been applied; either failure is a 503.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	var ready bool
	if err := h.db.QueryRow(c.Context(), schemaQuery).Scan(&ready); err != nil {
		log.Error().Err(err).Msg("health check failed: database unreachable")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":   "unhealthy",
			"database": "down",
			"error":    "database connection failed",
		})
	}

	if !ready {
		log.Error().Msg("health check failed: promotions table missing")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":   "unhealthy",
			"database": "up",
			"schema":   "missing",
			"error":    "promotions table not found",
		})
	}

	return c.JSON(fiber.Map{
		"status":   "healthy",
		"database": "up",
		"schema":   "ready",
	})
}
