
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mask1381/ketabrooz/internal/bot"
	"github.com/mask1381/ketabrooz/internal/config"
)

func main() {
	cfgPath := flag.String("config", config.DefaultConfigPath(), "path to config.json")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		log.Fatalf("data dir %s: %v", cfg.DataDir, err)
	}

	app, err := bot.New(cfg)
	if err != nil {
		log.Fatalf("init error: %v", err)
	}
	defer app.Close()

	// Graceful stop
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Printf("Shutting down...")
		app.Close()
		os.Exit(0)
	}()

	log.Printf("ketabrooz starting (data dir %s)", cfg.DataDir)
	if err := app.Run(); err != nil {
		log.Fatalf("run error: %v", err)
	}
}
