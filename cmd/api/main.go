package main

import (
	"context"
	"log"
	"net/http"

	"homelist/auth"
	"homelist/config"
	"homelist/db"
	"homelist/httpapi"
	"homelist/property"
	"homelist/storage"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("bootstrap config: %v", err)
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("bootstrap database pool: %v", err)
	}
	defer pool.Close()

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.SessionTTL)
	authService := auth.NewService(auth.NewRepository(pool), tokens)
	propertyService := property.NewService(property.NewRepository(pool))
	store := storage.NewDiskStore(cfg.UploadDir)

	server := httpapi.NewServer(authService, propertyService, store, httpapi.Options{
		CORSOrigin: cfg.CORSOrigin,
		DevMode:    cfg.Development(),
	})

	log.Printf("listening on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, server.Routes()); err != nil {
		log.Fatalf("server: %v", err)
	}
}
