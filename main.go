package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"mybus/internal/auth"
	intconfig "mybus/internal/config"
	router "mybus/internal/http"
	"mybus/internal/repositories"
	"mybus/internal/services"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	db, err := intconfig.ConnectDB(env.DBDSN)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	tokens := auth.NewTokenService(env.JWTSecret, env.TokenTTL)

	userRepo := repositories.UserRepository{DB: db}
	busRepo := repositories.BusRepository{DB: db}
	scheduleRepo := repositories.ScheduleRepository{DB: db}

	deps := router.Deps{
		DB:        db,
		Tokens:    tokens,
		Users:     services.UserService{Users: userRepo, Tokens: tokens},
		Fleet:     services.FleetService{Buses: busRepo, Schedules: scheduleRepo},
		Schedules: services.ScheduleService{Schedules: scheduleRepo},
	}

	r := router.NewRouter(env, deps)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server shutdown failed: %v", err)
	}

	log.Println("server stopped cleanly.")
}
