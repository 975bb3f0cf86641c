package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"classroll/internal/analytics"
	"classroll/internal/attendance"
	"classroll/internal/auth"
	"classroll/internal/broadcast"
	"classroll/internal/config"
	"classroll/internal/httpmiddleware"
	"classroll/internal/metrics"
	"classroll/internal/realtime"
	"classroll/internal/session"
	"classroll/internal/store"
)

func main() {
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	users, err := store.SeedUsers()
	if err != nil {
		return err
	}
	sessions := store.NewSessions()
	roster := store.SeedRoster()

	collector := metrics.NewCollector(prometheus.DefaultRegisterer)

	// Redis is only dialed when it backs the broadcast bus.
	var redisBus *broadcast.RedisBus
	var bus broadcast.Bus
	if cfg.BroadcastBackend == "redis" {
		redisBus = broadcast.NewRedisBus(cfg.RedisAddr, cfg.BroadcastChannel)
		bus = redisBus
		log.Println("broadcast backend: redis", cfg.RedisAddr)
	} else {
		bus = broadcast.NewMemory()
		log.Println("broadcast backend: memory")
	}

	login := auth.NewService(users, cfg.JWTIssuer, cfg.JWTSigningKey, cfg.TokenTTL)
	lifecycle := session.NewService(sessions, collector)
	recorder := attendance.NewService(sessions, bus, collector)
	dashboards := analytics.NewService(roster)
	rt := realtime.NewServer(bus, collector)

	limiter := httpmiddleware.NewIPRateLimiter(cfg.RateLimitPerMin)
	defer limiter.Stop()

	r := gin.New()

	r.Use(gin.Recovery())

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))

	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(limiter.Middleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		status := http.StatusOK
		resp := gin.H{"status": "ok"}
		if redisBus != nil {
			healthy := redisBus.Healthy(c.Request.Context())
			resp["redis"] = healthy
			if !healthy {
				status = http.StatusServiceUnavailable
			}
		}
		c.JSON(status, resp)
	})

	r.POST("/api/login", func(c *gin.Context) {
		var req struct {
			Username  string `json:"username" binding:"required"`
			Password  string `json:"password" binding:"required"`
			Role      string `json:"role" binding:"required"`
			ExpiresIn string `json:"expiresIn"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var ttl time.Duration
		if req.ExpiresIn != "" {
			parsed, err := time.ParseDuration(req.ExpiresIn)
			if err != nil || parsed <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid expiresIn"})
				return
			}
			ttl = parsed
		}
		res, err := login.Login(req.Username, req.Password, store.Role(req.Role), ttl)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
			return
		}
		c.JSON(http.StatusOK, res)
	})

	// Marking is deliberately unauthenticated: a valid active session code is
	// the only credential.
	r.POST("/api/attendance/mark", func(c *gin.Context) {
		var req struct {
			SessionCode string `json:"sessionCode" binding:"required"`
			StudentID   string `json:"studentId" binding:"required"`
			StudentName string `json:"studentName"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		res, err := recorder.Mark(c.Request.Context(), req.SessionCode, req.StudentID, req.StudentName)
		if err != nil {
			if errors.Is(err, attendance.ErrSessionNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "session not found or ended"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, res)
	})

	r.GET("/ws", gin.WrapH(rt.Handler()))

	api := r.Group("/api", auth.Bearer(cfg.JWTSigningKey, cfg.JWTIssuer))

	api.POST("/sessions", func(c *gin.Context) {
		var req struct {
			ClassName string `json:"className"`
		}
		// Body is optional; an empty class label falls back to the default.
		_ = c.ShouldBindJSON(&req)
		if req.ClassName == "" {
			req.ClassName = cfg.DefaultClassName
		}
		claims, _ := auth.FromContext(c)
		sess, err := lifecycle.Start(requester(claims), req.ClassName)
		if err != nil {
			abortSessionErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, sess)
	})

	api.GET("/sessions/active", func(c *gin.Context) {
		claims, _ := auth.FromContext(c)
		list, err := lifecycle.ListActive(requester(claims))
		if err != nil {
			abortSessionErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"sessions": list})
	})

	api.POST("/sessions/:id/end", func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
			return
		}
		claims, _ := auth.FromContext(c)
		if err := lifecycle.End(requester(claims), id); err != nil {
			abortSessionErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	api.GET("/analytics/principal", auth.RequireRole(store.RolePrincipal), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"departments": dashboards.DepartmentSummaries()})
	})

	api.GET("/analytics/hod", auth.RequireRole(store.RoleHOD), func(c *gin.Context) {
		claims, _ := auth.FromContext(c)
		c.JSON(http.StatusOK, dashboards.DepartmentHead(claims.Department))
	})

	api.GET("/analytics/faculty", auth.RequireRole(store.RoleFaculty), func(c *gin.Context) {
		claims, _ := auth.FromContext(c)
		c.JSON(http.StatusOK, dashboards.Faculty(claims.Department))
	})

	api.GET("/analytics/student", auth.RequireRole(store.RoleStudent), func(c *gin.Context) {
		claims, _ := auth.FromContext(c)
		view, err := dashboards.Student(claims.RollNo)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no roster entry"})
			return
		}
		c.JSON(http.StatusOK, view)
	})

	// Graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

func requester(claims auth.Claims) session.Requester {
	return session.Requester{Username: claims.Username, Name: claims.Name, Role: claims.Role}
}

func abortSessionErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, session.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
