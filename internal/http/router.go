package api

import (
	"database/sql"
	"log"
	stdhttp "net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"mybus/internal/auth"
	intconfig "mybus/internal/config"
	h "mybus/internal/http/handlers"
	"mybus/internal/http/middleware"
	"mybus/internal/services"
)

// Deps groups the constructed services for the route table. The process
// entry point owns construction and lifecycle.
type Deps struct {
	DB        *sql.DB
	Tokens    auth.TokenService
	Users     services.UserService
	Fleet     services.FleetService
	Schedules services.ScheduleService
}

func NewRouter(env intconfig.Env, deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), corsMiddleware(env))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	system := h.SystemHandler{DB: deps.DB}
	authHandler := h.AuthHandler{Users: deps.Users}
	usersHandler := h.UsersHandler{Users: deps.Users}
	busesHandler := h.BusesHandler{Fleet: deps.Fleet}
	schedulesHandler := h.SchedulesHandler{Schedules: deps.Schedules}
	timetableHandler := h.TimetableHandler{Schedules: deps.Schedules, Fleet: deps.Fleet}

	requireAuth := middleware.RequireAuth(deps.Tokens)
	requireAdmin := middleware.RequireAdmin()

	r.GET("/", system.Health)
	r.GET("/db-check", system.DBCheck)

	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/logout", authHandler.Logout)
		authRoutes.GET("/profile", requireAuth, authHandler.Profile)
		authRoutes.PUT("/profile", requireAuth, authHandler.UpdateProfile)
	}

	admin := r.Group("/admin", requireAuth, requireAdmin)
	{
		admin.GET("/users", usersHandler.List)
		admin.GET("/users/:id", usersHandler.Get)
		admin.POST("/users", usersHandler.Create)
		admin.PUT("/users/:id", usersHandler.Update)
		admin.DELETE("/users/:id", usersHandler.Delete)
	}

	buses := r.Group("/buses", requireAuth)
	{
		buses.GET("", busesHandler.List)
		buses.GET("/:id", busesHandler.Get)
		buses.POST("", requireAdmin, busesHandler.Create)
		buses.PUT("/:id", requireAdmin, busesHandler.Update)
		buses.DELETE("/:id", requireAdmin, busesHandler.Delete)
	}

	schedules := r.Group("/schedules", requireAuth)
	{
		schedules.GET("", schedulesHandler.List)
		schedules.GET("/:id", schedulesHandler.Get)
		schedules.GET("/:id/timetable", timetableHandler.ScheduleTimetablePDF)
		schedules.POST("", requireAdmin, schedulesHandler.Create)
		schedules.PUT("/:id", requireAdmin, schedulesHandler.Update)
		schedules.DELETE("/:id", requireAdmin, schedulesHandler.Delete)
	}

	return r
}

func corsMiddleware(env intconfig.Env) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       24 * time.Hour,
	}
	if len(env.CORSOrigins) == 1 && env.CORSOrigins[0] == "*" {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = env.CORSOrigins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}
