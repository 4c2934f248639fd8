package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/restodash/api/internal/catalog"
	"github.com/restodash/api/internal/config"
	"github.com/restodash/api/internal/enum"
	"github.com/restodash/api/internal/staff"
	"github.com/restodash/api/internal/storage"
	"github.com/restodash/api/internal/tables"
)

func main() {
	cfg := config.Load()

	// CLI flags; defaults come from the environment
	driver := flag.String("driver", cfg.StorageDriver, "Storage driver: memory, file, sqlite or postgres")
	tableCount := flag.Int("tables", cfg.TableCount, "Number of tables to seed")
	force := flag.Bool("force", false, "Overwrite slots that already hold data")
	flag.Parse()

	ctx := context.Background()
	kv, err := storage.Open(ctx, storage.Options{
		Driver:      *driver,
		DataDir:     cfg.DataDir,
		SQLitePath:  cfg.SQLitePath,
		DatabaseURL: cfg.DatabaseURL,
	})
	if err != nil {
		log.Fatalf("Unable to open %s storage: %v", *driver, err)
	}
	defer kv.Close()
	log.Printf("Seeding %s storage", *driver)

	steps := []struct {
		slot string
		seed func(context.Context, storage.KV) error
	}{
		{enum.SlotMenuByDay, catalog.Seed},
		{enum.SlotEmployees, staff.Seed},
		{enum.SlotTables, func(ctx context.Context, kv storage.KV) error {
			return storage.SaveJSON(ctx, kv, enum.SlotTables, tables.Defaults(*tableCount))
		}},
	}
	for _, step := range steps {
		if err := seedSlot(ctx, kv, step.slot, *force, step.seed); err != nil {
			log.Fatalf("Failed to seed %s: %v", step.slot, err)
		}
	}

	log.Println("Seed completed successfully")
}

// seedSlot runs seed unless slot already holds data and force is off.
func seedSlot(ctx context.Context, kv storage.KV, slot string, force bool, seed func(context.Context, storage.KV) error) error {
	if !force {
		_, err := kv.Get(ctx, slot)
		if err == nil {
			log.Printf("Slot '%s' already exists, skipping", slot)
			return nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("check slot: %w", err)
		}
	}
	if err := seed(ctx, kv); err != nil {
		return err
	}
	log.Printf("Seeded slot '%s'", slot)
	return nil
}
