package main

import (
	"context"
	"log"

	"peermatch-be/internal/bootstrap"
	"peermatch-be/internal/config"
	"peermatch-be/internal/server"
	"peermatch-be/internal/tracer"
)

func main() {
	// 1. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 2. Load Configuration
	cfg := config.Load()

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(cfg)

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Presence Consumer...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
