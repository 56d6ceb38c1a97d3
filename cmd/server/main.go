package main

import (
	"context"
	"log"

	"subcatalog/internal/app"
	"subcatalog/internal/config"
	"subcatalog/internal/handlers"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Init DB + engine
	a, err := app.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to init catalog: %v", err)
	}

	// 3. API Server
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	api := e.Group("/api")
	handlers.RegisterRoutes(api, a.Engine)

	log.Printf("subcatalog API starting on %s...", cfg.HTTPAddr)
	e.Logger.Fatal(e.Start(cfg.HTTPAddr))
}
