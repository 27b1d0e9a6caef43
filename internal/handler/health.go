package handler

import (
	"context"
	"net/http"
	"time"

	"gestionstock/internal/infra"
	"gestionstock/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response. db and rdb are nil on the
// memory backend and reported as "disabled". The printer breaker state is
// informational: an open breaker does not fail the probe. dlq reports the
// dead letter backlog per job queue.
func Health(db *gorm.DB, rdb *redis.Client, printerCB *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "disabled"
		if db != nil {
			dbStatus = "connected"
			sqlDB, err := db.DB()
			if err != nil || sqlDB.PingContext(ctx) != nil {
				dbStatus = "error"
			}
		}

		redisStatus := "disabled"
		dlq := gin.H{}
		if rdb != nil {
			redisStatus = "connected"
			if rdb.Ping(ctx).Err() != nil {
				redisStatus = "error"
			} else {
				d := worker.NewDispatcher(rdb)
				for _, q := range []string{worker.QueueReceipt, worker.QueueEmail} {
					if n, err := d.DLQLength(ctx, q); err == nil {
						dlq[q] = n
					}
				}
			}
		}

		printer := "disabled"
		if printerCB != nil {
			printer = printerCB.State().String()
		}

		status := http.StatusOK
		if dbStatus == "error" || redisStatus == "error" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":      status == http.StatusOK,
			"db":      dbStatus,
			"redis":   redisStatus,
			"printer": printer,
			"dlq":     dlq,
		})
	}
}
