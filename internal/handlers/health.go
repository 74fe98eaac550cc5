package handlers

import (
	"relais/internal/repositories"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db      *gorm.DB
	redis   *redis.Client
	version string
}

func NewHealthHandler(db *gorm.DB, rdb *redis.Client, version string) *HealthHandler {
	return &HealthHandler{db: db, redis: rdb, version: version}
}

// Check reports 503 when postgres is unreachable. Redis only degrades
// caching and realtime, so it is reported without failing the check.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := fiber.StatusOK
	services := fiber.Map{"database": "connected", "redis": "disabled"}

	if err := repositories.Ping(h.db); err != nil {
		status = fiber.StatusServiceUnavailable
		services["database"] = "unreachable"
	}

	if h.redis != nil {
		services["redis"] = "connected"
		if err := h.redis.Ping(c.UserContext()).Err(); err != nil {
			services["redis"] = "unreachable"
		} else {
			pool := h.redis.PoolStats()
			services["redis_pool"] = fiber.Map{
				"hits":        pool.Hits,
				"misses":      pool.Misses,
				"timeouts":    pool.Timeouts,
				"total_conns": pool.TotalConns,
				"idle_conns":  pool.IdleConns,
			}
		}
	}

	state := "ok"
	if status != fiber.StatusOK {
		state = "degraded"
	}
	return c.Status(status).JSON(fiber.Map{
		"status":   state,
		"version":  h.version,
		"services": services,
	})
}
