package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/liugu2023/nekro-github-analyzer/internal/cache"
	"github.com/liugu2023/nekro-github-analyzer/internal/config"
	apperrors "github.com/liugu2023/nekro-github-analyzer/internal/errors"
	"github.com/liugu2023/nekro-github-analyzer/internal/evaluation"
	"github.com/liugu2023/nekro-github-analyzer/internal/githubapi"
	"github.com/liugu2023/nekro-github-analyzer/internal/history"
	"github.com/liugu2023/nekro-github-analyzer/internal/monitoring"
	"github.com/liugu2023/nekro-github-analyzer/internal/security"
	"github.com/liugu2023/nekro-github-analyzer/internal/types"
)

func main() {
	appLogger := monitoring.NewLogger()
	slog.SetDefault(appLogger.Logger)

	cfg := config.LoadOrDefault()
	appMetrics := monitoring.NewMetrics()

	client := githubapi.New(githubapi.Options{
		Token:             cfg.GitHub.Token,
		RequestsPerSecond: cfg.GitHub.RequestsPerSecond,
		Burst:             cfg.GitHub.Burst,
		Logger:            appLogger,
		Metrics:           appMetrics,
	})

	resultCache := cache.New[*types.Evaluation](cfg.Cache.MaxSize, time.Duration(cfg.Cache.TTLSeconds)*time.Second)
	evaluator := evaluation.NewEvaluator(client, resultCache, appLogger, appMetrics)

	var store *history.Store
	if cfg.History.Enabled {
		var err error
		store, err = history.Open(cfg.History.Dir)
		if err != nil {
			slog.Error("Failed to open history store", "error", err)
			os.Exit(1)
		}
		defer store.Close()
	}

	secMiddleware := security.New(security.Config{
		MaxRequestsPerMin: cfg.Server.MaxRequestsPerMin,
		RequestTimeout:    time.Duration(cfg.Server.RequestTimeoutSeconds) * time.Second,
	})

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	r.Use(cors.New(corsConfig))

	r.Use(monitoring.Middleware(appMetrics, appLogger))
	r.Use(apperrors.ErrorHandler())
	r.Use(apperrors.RecoveryHandler())
	r.Use(secMiddleware.Headers())
	r.Use(secMiddleware.RequestTimeout())
	r.Use(secMiddleware.RateLimitByIP())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	r.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, appMetrics.GetStats())
	})

	evaluate := func(c *gin.Context, owner, repo, format string) {
		switch format {
		case "", "json":
			ev, err := evaluator.Evaluate(c.Request.Context(), owner, repo)
			if err != nil {
				c.Error(err)
				c.Abort()
				return
			}
			saveHistory(c, store, ev)
			c.JSON(http.StatusOK, ev)
		case "markdown", "report", "card":
			card, err := evaluator.Card(c.Request.Context(), owner, repo)
			if err != nil {
				c.Error(err)
				c.Abort()
				return
			}
			saveHistory(c, store, card.Result)
			switch format {
			case "markdown":
				c.String(http.StatusOK, card.Markdown)
			case "report":
				c.String(http.StatusOK, card.PlainText)
			default:
				c.JSON(http.StatusOK, card)
			}
		default:
			c.Error(apperrors.NewValidationError("unknown format: " + format))
			c.Abort()
		}
	}

	r.POST("/evaluate", func(c *gin.Context) {
		var req types.EvaluateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(apperrors.NewValidationError("request body must contain a url field"))
			c.Abort()
			return
		}
		if err := secMiddleware.ValidateInput(req.URL); err != nil {
			c.Error(apperrors.NewValidationError(err.Error()))
			c.Abort()
			return
		}
		owner, repo, err := githubapi.ParseRepoURL(req.URL)
		if err != nil {
			c.Error(err)
			c.Abort()
			return
		}
		evaluate(c, owner, repo, c.Query("format"))
	})

	r.GET("/evaluate/:owner/:repo", func(c *gin.Context) {
		owner, repo, err := githubapi.ParseRepoURL(c.Param("owner") + "/" + c.Param("repo"))
		if err != nil {
			c.Error(err)
			c.Abort()
			return
		}
		evaluate(c, owner, repo, c.Query("format"))
	})

	r.GET("/history/:owner/:repo", func(c *gin.Context) {
		if store == nil {
			c.JSON(http.StatusOK, gin.H{"records": []history.Record{}})
			return
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
		records, err := store.Recent(c.Request.Context(), c.Param("owner")+"/"+c.Param("repo"), limit)
		if err != nil {
			c.Error(apperrors.NewInternalError("failed to read history", err))
			c.Abort()
			return
		}
		if records == nil {
			records = []history.Record{}
		}
		c.JSON(http.StatusOK, gin.H{"records": records})
	})

	r.GET("/cache/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, evaluator.CacheStats())
	})

	r.POST("/cache/clear", func(c *gin.Context) {
		evaluator.ClearCache()
		c.JSON(http.StatusOK, gin.H{"cleared": true})
	})

	r.POST("/cache/cleanup", func(c *gin.Context) {
		removed := evaluator.CleanupExpiredCache()
		c.JSON(http.StatusOK, gin.H{"removed": removed})
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}

// saveHistory records the evaluation when the store is enabled. History is
// best effort; a write failure never fails the request.
func saveHistory(c *gin.Context, store *history.Store, ev *types.Evaluation) {
	if store == nil || ev == nil {
		return
	}
	if err := store.Save(c.Request.Context(), ev); err != nil {
		slog.Warn("Failed to save evaluation history", "repo", ev.RepoFullName, "error", err)
	}
}
