// Command parcelsim generates a procedural parcel world and runs the
// resource simulation over it, serving state and tick deltas over HTTP.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"parcelforge/internal/api"
	"parcelforge/internal/config"
	"parcelforge/internal/persistence"
	"parcelforge/internal/sim"
	"parcelforge/internal/world"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	seed := flag.Int64("seed", 0, "world seed (0 = derive from current time)")
	parcels := flag.Int("parcels", 0, "number of parcels (0 = config value)")
	port := flag.Int("port", 0, "HTTP port (0 = config value)")
	dbPath := flag.String("db", "", "SQLite path (empty = config value)")
	loadID := flag.String("load", "", "load a saved world by id instead of generating")
	list := flag.Bool("list", false, "list saved worlds and exit")
	exportPath := flag.String("export", "", "after generating, export the world to a JSON file and exit")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Flags override the file.
	if *seed != 0 {
		cfg.Map.Seed = *seed
	}
	if *parcels != 0 {
		cfg.Map.NumParcels = *parcels
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if cfg.Map.Seed == 0 {
		cfg.Map.Seed = time.Now().UnixNano()
		slog.Info("no seed given, using time-derived seed", "seed", cfg.Map.Seed)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(cfg.DBPath), 0755)
	store, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	if *list {
		infos, err := store.ListWorlds()
		if err != nil {
			slog.Error("failed to list worlds", "error", err)
			os.Exit(1)
		}
		for _, info := range infos {
			fmt.Printf("%s  %-20s seed=%-12d parcels=%d\n", info.ID, info.Name, info.Seed, info.Parcels)
		}
		return
	}

	// ── World Map ─────────────────────────────────────────────────────
	var worldMap *world.WorldMap
	worldID := *loadID

	if worldID != "" {
		slog.Info("loading saved world", "id", worldID)
		worldMap, err = store.LoadWorld(worldID)
		if err != nil {
			slog.Error("failed to load world", "id", worldID, "error", err)
			os.Exit(1)
		}
	} else {
		slog.Info("generating world map...")
		worldMap, err = world.Generate(cfg.Map)
		if err != nil {
			slog.Error("world generation failed", "error", err)
			os.Exit(1)
		}

		for terrain, count := range world.TerrainCounts(worldMap) {
			slog.Info("terrain", "type", terrain, "count", count)
		}

		if *exportPath != "" {
			if err := persistence.ExportFile(*exportPath, worldMap); err != nil {
				slog.Error("export failed", "error", err)
				os.Exit(1)
			}
			return
		}

		name := fmt.Sprintf("world-%d", cfg.Map.Seed)
		worldID, err = store.SaveWorld(name, cfg.Map.Seed, worldMap)
		if err != nil {
			slog.Error("initial save failed", "error", err)
			os.Exit(1)
		}
	}

	// ── Simulation ────────────────────────────────────────────────────
	simulator := sim.New(worldMap)
	simulator.Start()

	eng := sim.NewEngine(worldMap, simulator)
	eng.Interval = time.Duration(cfg.TickIntervalMS) * time.Millisecond

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.AdminKey == "" {
		cfg.AdminKey = os.Getenv("PARCELSIM_ADMIN_KEY")
	}
	if cfg.AdminKey == "" {
		slog.Warn("no admin key configured, control endpoints disabled")
	}

	apiServer := &api.Server{
		Map:      worldMap,
		Sim:      simulator,
		Eng:      eng,
		Store:    store,
		Port:     cfg.Port,
		AdminKey: cfg.AdminKey,
	}
	eng.OnDelta = func(tick uint64, deltas []sim.ParcelDelta) {
		apiServer.Publish(deltas)
	}
	apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	fmt.Printf("\nWorld %s: %d parcels, %d boundaries on a %.0fx%.0f torus.\n",
		worldID, len(worldMap.Parcels), len(worldMap.Boundaries), worldMap.Width, worldMap.Height)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.Port)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run()

	// Final save on shutdown.
	eng.Mu.Lock()
	err = store.UpdateWorld(worldID, worldMap)
	eng.Mu.Unlock()
	if err != nil {
		slog.Error("final save failed", "error", err)
	}

	fmt.Println("Simulation stopped. World state saved.")
}
