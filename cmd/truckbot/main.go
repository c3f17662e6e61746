package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/lastwar-tools/truckbot/internal/adb"
	"github.com/lastwar-tools/truckbot/internal/bot"
	"github.com/lastwar-tools/truckbot/internal/config"
	"github.com/lastwar-tools/truckbot/internal/events"
	"github.com/lastwar-tools/truckbot/internal/ledger"
	"github.com/lastwar-tools/truckbot/internal/logging"
	"github.com/lastwar-tools/truckbot/internal/monitor"
	"github.com/lastwar-tools/truckbot/internal/ocr"
	"github.com/lastwar-tools/truckbot/internal/store"
	"github.com/lastwar-tools/truckbot/internal/vision"
	"github.com/lastwar-tools/truckbot/pkg/templates"
)

// statsAdapter narrows the stats store to what the truck loop needs.
type statsAdapter struct {
	stats *store.Stats
}

func (a *statsAdapter) RecordShare(strength, server, actor string) error {
	_, err := a.stats.RecordShare(strength, server, actor)
	return err
}

func main() {
	configPath := flag.String("config", "Settings.ini", "Path to Settings.ini")
	botName := flag.String("bot", "truck", "Bot to run: truck or zombie")
	owner := flag.String("owner", "cli", "Owner name recorded with the run")
	dataDir := flag.String("data", "data", "Directory for ledger, stats and flags")
	templateDir := flag.String("templates", "config/templates", "Template definition directory")
	flag.Parse()

	settings, err := config.LoadFromINI(*configPath)
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}
	if err := settings.Validate(); err != nil {
		log.Fatalf("Invalid settings: %v", err)
	}

	if err := os.MkdirAll(*dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	rootLog := logging.New("truckbot").SetMinLevel(logging.ParseLevel(settings.LogLevel))
	if settings.LogFile != "" {
		logFile, err := logging.OpenLogFile(settings.LogFile)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		defer logFile.Close()
		rootLog.AddOutput(logFile)
	}

	bus := events.NewBus(256)
	defer bus.Stop()

	device := adb.NewController(settings.ADBPath, settings.DevicePort).
		WithTapSettle(time.Duration(settings.TapSettleMS) * time.Millisecond)

	registry := templates.NewRegistry(*templateDir)
	if err := registry.LoadFromDirectory(*templateDir); err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}

	tesseract, err := ocr.NewTesseractClient()
	if err != nil {
		log.Fatalf("Failed to initialize OCR: %v", err)
	}
	defer tesseract.Close()
	game := vision.NewGame(ocr.NewReader(tesseract), registry)

	var runner bot.Runner
	switch *botName {
	case "truck":
		shared, err := ledger.New(filepath.Join(*dataDir, "shared_strengths.txt"))
		if err != nil {
			log.Fatalf("Failed to open dedup ledger: %v", err)
		}
		stats, err := store.OpenStats(filepath.Join(*dataDir, "stats.db"))
		if err != nil {
			log.Fatalf("Failed to open stats store: %v", err)
		}
		defer stats.Close()

		maintFlag := store.NewMaintenanceFlag(filepath.Join(*dataDir, "maintenance.json"))
		liveness := monitor.NewLiveness(maintFlag, time.Duration(settings.NoTruckSeconds)*time.Second).
			OnChange(func(enabled bool) {
				bus.Publish(events.NewMaintenanceChangedEvent(enabled))
			})

		truck := bot.NewTruckBot(device, game, shared, &statsAdapter{stats: stats}, liveness,
			settings, rootLog.Named("truck"), bus)
		truck.SetActor(*owner)
		runner = truck
	case "zombie":
		runner = bot.NewZombieBot(device, game, settings, rootLog.Named("zombie"), bus)
	default:
		log.Fatalf("Unknown bot %q (want truck or zombie)", *botName)
	}

	controller := bot.NewController(runner, device, rootLog.Named("controller"), bus)
	if settings.TimerEnabled {
		controller.SetAutoStop(time.Duration(settings.TimerMinutes) * time.Minute)
	}

	if err := controller.Start(*owner, false); err != nil {
		log.Fatalf("Failed to start bot: %v", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	for controller.Running() {
		select {
		case <-sigCh:
			fmt.Println("Shutting down...")
			if err := controller.Stop(); err != nil {
				log.Printf("Stop failed: %v", err)
			}
		case <-time.After(500 * time.Millisecond):
		}
	}
}
