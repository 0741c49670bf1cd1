package main // Entry point package

import (
    "log"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/cleanwatercheck/waterreport/internal/config"
    "github.com/cleanwatercheck/waterreport/internal/database"
    "github.com/cleanwatercheck/waterreport/internal/handler"
    "github.com/cleanwatercheck/waterreport/internal/middleware"
    "github.com/cleanwatercheck/waterreport/internal/queue"
    "github.com/cleanwatercheck/waterreport/internal/repository"
    "github.com/cleanwatercheck/waterreport/internal/router"
    "github.com/cleanwatercheck/waterreport/internal/upload"
)

func main() {
    // Load a local .env if present; real deployments set the variables
    // directly and the file is simply absent.
    if err := godotenv.Load(); err == nil {
        log.Println("loaded configuration from .env")
    }

    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    store, err := upload.NewStore(cfg.UploadDir, cfg.MaxUploadBytes)
    if err != nil {
        log.Fatalf("upload store: %v", err)
    }

    // Redis backs the response cache and the rate limiter.  Both
    // degrade to pass-through when it is unreachable.
    rdb := config.NewRedisClient()

    users := repository.NewUserRepo(db)
    tokens := repository.NewTokenRepo(db)
    reports := repository.NewReportRepo(db)
    regions := repository.NewRegionRepo(db)
    stations := repository.NewStationRepo(db)

    authHandler := handler.NewAuthHandler(cfg, users, tokens)
    reportHandler := handler.NewReportHandler(reports, store)
    refHandler := handler.NewReferenceHandler(regions, stations)

    e := echo.New()
    e.HideBanner = true

    if rlCfg := config.LoadRateLimitConfig(); rlCfg.Enabled && rdb != nil {
        e.Use(middleware.NewTokenBucket(rlCfg, rdb))
    }
    var cacheMW echo.MiddlewareFunc
    if cCfg := config.LoadCacheConfig(); cCfg.Enabled && rdb != nil {
        cacheMW = middleware.NewRedisCache(cCfg, rdb)
    }

    router.RegisterRoutes(e)
    router.RegisterAuth(e, authHandler, cfg.JWTSecret)
    router.RegisterReports(e, reportHandler, cfg.JWTSecret)
    router.RegisterReference(e, refHandler, cfg.JWTSecret, cacheMW)

    // Stored photos are served straight from disk under the same
    // relative path the API records ("uploads/<file>").
    e.Static("/uploads", cfg.UploadDir)

    // The moderation consumer runs for the lifetime of the process and
    // reconnects on its own; a missing broker only disables it.
    go func() {
        if err := queue.StartReportConsumer(); err != nil {
            log.Printf("report consumer disabled: %v", err)
        }
    }()

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)

    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
