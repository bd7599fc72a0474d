package main

import (
	"context"
	"log"

	"doc-intelligence-be/internal/bootstrap"
	"doc-intelligence-be/internal/config"
	"doc-intelligence-be/internal/server"
	"doc-intelligence-be/internal/tracer"
	"doc-intelligence-be/pkg/database"
)

func main() {
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	cfg := config.Load()

	gormDB, err := database.NewGormDB(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)

	// The consumer keeps the vector index in sync with document writes.
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	srv := server.New(cfg, container)

	log.Fatal(srv.Run())
}
