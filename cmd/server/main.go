package main

import (
	"log"
	"net/http"
	"os"
	"strconv"

	"go-easyapply-automation/internal/config"
	"go-easyapply-automation/internal/ledger"
	"go-easyapply-automation/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// openLedger re-reads the ledger file so the API sees records written by a
// concurrently running applier.
type openLedger func() *ledger.Ledger

func newRouter(open openLedger, quota int) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Easy Apply automation API is running!",
			"status":  "healthy",
		})
	})

	r.GET("/applications", func(c *gin.Context) {
		records := open().Snapshot()
		if raw := c.Query("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil || limit < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
				return
			}
			// newest first when limited
			if limit < len(records) {
				records = records[len(records)-limit:]
			}
		}
		if outcome := c.Query("outcome"); outcome != "" {
			filtered := records[:0:0]
			for _, rec := range records {
				if string(rec.Outcome) == outcome {
					filtered = append(filtered, rec)
				}
			}
			records = filtered
		}
		c.JSON(http.StatusOK, gin.H{"count": len(records), "applications": records})
	})

	r.GET("/stats", func(c *gin.Context) {
		l := open()
		byOutcome := map[models.Outcome]int{}
		records := l.Snapshot()
		for _, rec := range records {
			byOutcome[rec.Outcome]++
		}
		today := l.AppliedCountToday()
		remaining := quota - today
		if remaining < 0 {
			remaining = 0
		}
		c.JSON(http.StatusOK, gin.H{
			"total":           len(records),
			"by_outcome":      byOutcome,
			"applied_today":   today,
			"daily_quota":     quota,
			"quota_remaining": remaining,
		})
	})

	return r
}

func main() {
	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.ServerPort
	}

	open := func() *ledger.Ledger { return ledger.Open(cfg.LedgerDir, logger) }
	r := newRouter(open, cfg.MaxApplicationsPerDay)

	logger.Info("server listening", zap.String("port", port))
	if err := r.Run(":" + port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
