package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// HealthCheck is one dependency probed by /health.
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

func DatabaseCheck(db *gorm.DB) HealthCheck {
	return HealthCheck{Name: "db", Ping: func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}}
}

func RedisCheck(rdb *redis.Client) HealthCheck {
	return HealthCheck{Name: "redis", Ping: func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}}
}

// Health reports each dependency as connected or error; it never exposes
// the underlying error text.
func Health(checks ...HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		body := gin.H{}
		status := http.StatusOK
		for _, chk := range checks {
			if err := chk.Ping(ctx); err != nil {
				body[chk.Name] = "error"
				status = http.StatusServiceUnavailable
				continue
			}
			body[chk.Name] = "connected"
		}
		body["ok"] = status == http.StatusOK
		c.JSON(status, body)
	}
}
