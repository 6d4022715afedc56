package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

const readyTimeout = 2 * time.Second

// Pinger is satisfied by *pgxpool.Pool
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	engineName string
	db         Pinger
}

// NewHealthHandler creates the health handler. db may be nil when the
// comparison audit is disabled.
func NewHealthHandler(engineName string, db Pinger) *HealthHandler {
	return &HealthHandler{
		engineName: engineName,
		db:         db,
	}
}

type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version,omitempty"`
	Engine   string `json:"engine,omitempty"`
	Database string `json:"database,omitempty"`
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:  "ok",
		Version: "1.0.0",
	})
}

func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	resp := HealthResponse{
		Status: "ready",
		Engine: h.engineName,
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), readyTimeout)
		defer cancel()

		if err := h.db.Ping(ctx); err != nil {
			resp.Status = "unavailable"
			resp.Database = "down"
			return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
		}
		resp.Database = "up"
	}

	return c.JSON(resp)
}
