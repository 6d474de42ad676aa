package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"goldybot/internal/config"
	"goldybot/internal/discord"
	"goldybot/internal/ext/core"
	"goldybot/internal/ext/mod"
	"goldybot/internal/registry"
	"goldybot/internal/storage"
	v "goldybot/internal/version"
)

func main() {
	log.Printf("[INFO] Starting %v bot...", v.AppName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.New()
	if err != nil {
		log.Fatal(err)
	}

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	reg := registry.New()
	if err := loadExtensions(reg); err != nil {
		log.Fatal("[ERR] Failed to load extensions: ", err)
	}

	bot := discord.NewBot(cfg, store, reg)

	errCh := make(chan error, 1)
	go func() {
		if err := bot.Run(ctx); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Printf("[INFO] Received signal %s, shutting down...", s)
		cancel()
	case err := <-errCh:
		if err != nil {
			log.Println("[ERR] Discord bot error:", err)
		}
		cancel()
	}

	log.Println("[INFO] Discord bot exited cleanly")
}

// loadExtensions builds the built-in extensions and registers them. Any
// declaration error (bad option name, duplicate command) aborts startup.
func loadExtensions(reg *registry.Registry) error {
	coreExt, err := core.New()
	if err != nil {
		return err
	}
	if err := reg.Add(coreExt); err != nil {
		return err
	}

	modExt, err := mod.New()
	if err != nil {
		return err
	}
	return reg.Add(modExt)
}
