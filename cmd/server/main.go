package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hollowsphere/core/internal/api"
	"github.com/hollowsphere/core/internal/config"
	"github.com/hollowsphere/core/internal/db"
	"github.com/hollowsphere/core/internal/sim"
	"github.com/hollowsphere/core/internal/sim/worldgen"
	"github.com/hollowsphere/core/internal/ws"
)

const defaultWorldID = "default"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	devMode := flag.Bool("dev", false, "enable development mode (adds the /api/dev/pause and /api/dev/resume routes)")
	noDB := flag.Bool("no-db", false, "run without a database (in-memory only)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("Failed to load config from %s, using defaults: %v", *configPath, err)
		cfg = config.Default()
	}

	if *devMode {
		cfg.Dev.Enabled = true
		log.Println("Development mode enabled")
	}

	var postgres *db.Postgres
	var redis *db.Redis

	if *noDB || cfg.Dev.NoDB {
		log.Println("Running without database (in-memory mode)")
	} else {
		postgres, err = db.NewPostgres(cfg.Database.PostgresURL)
		if err != nil {
			log.Printf("Warning: failed to connect to PostgreSQL: %v", err)
		}

		redis, err = db.NewRedis(cfg.Database.RedisURL)
		if err != nil {
			log.Printf("Warning: failed to connect to Redis: %v", err)
		}
	}
	defer postgres.Close()
	defer redis.Close()

	store := sim.NewSpatialStore(cfg.Sim.Subdivisions)
	worldgen.Generate(store, cfg.Sim.WorldSeed, cfg.Sim.Subdivisions, worldgen.DefaultConfig())
	log.Printf("Generated world: seed=%d subdivisions=%d faces=%d", cfg.Sim.WorldSeed, cfg.Sim.Subdivisions, sim.FaceCount)

	var persistence sim.Persistence
	if postgres.IsConnected() {
		persistence = db.NewSimAdapter(postgres, redis, defaultWorldID)
	}

	driver := sim.NewDriver(cfg, store, persistence)

	hub := ws.NewHub()
	go hub.Run()
	go pumpDeltas(driver, hub)

	if !cfg.Dev.PauseTick {
		driver.Start(context.Background())
	} else {
		driver.Start(context.Background())
		driver.Pause()
		log.Println("Pause tick enabled: world starts paused (use /api/dev/resume)")
	}

	router := api.NewRouter(driver, hub, cfg)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	driver.Stop()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// pumpDeltas drains the Tick Driver's Event Bus and republishes each
// delta to the hub grouped by face, the one point where the core's
// emitted events cross into the broadcast collaborator (spec.md §4.8,
// Design Note §9 "Broadcast decoupling": the core never imports ws).
func pumpDeltas(driver *sim.Driver, hub *ws.Hub) {
	for batch := range driver.Events() {
		byFace := make(map[int][]sim.Delta)
		for _, d := range batch {
			byFace[d.Face] = append(byFace[d.Face], d)
		}
		for face, deltas := range byFace {
			hub.BroadcastFace(face, deltas)
		}
	}
}
