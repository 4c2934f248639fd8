package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/restodash/api/internal/catalog"
	"github.com/restodash/api/internal/config"
	"github.com/restodash/api/internal/editor"
	"github.com/restodash/api/internal/enum"
	"github.com/restodash/api/internal/order"
	"github.com/restodash/api/internal/router"
	"github.com/restodash/api/internal/service"
	"github.com/restodash/api/internal/staff"
	"github.com/restodash/api/internal/storage"
	"github.com/restodash/api/internal/tables"
	"github.com/restodash/api/internal/ws"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, err := storage.Open(ctx, storage.Options{
		Driver:      cfg.StorageDriver,
		DataDir:     cfg.DataDir,
		SQLitePath:  cfg.SQLitePath,
		DatabaseURL: cfg.DatabaseURL,
	})
	if err != nil {
		log.Fatalf("Unable to open %s storage: %v", cfg.StorageDriver, err)
	}
	defer kv.Close()
	log.Printf("Using %s storage", cfg.StorageDriver)

	orders := order.NewRepository(ctx, order.NewSlotStore(kv, enum.SlotOrders))
	menu := catalog.NewRepository(ctx, kv)
	set := tables.Load(ctx, kv, cfg.TableCount)
	people := staff.NewRepository(ctx, kv)

	hub := ws.NewHub()
	go hub.Run()

	dash := service.NewDashboard(orders, menu, set, hub, cfg.MenuDay)
	log.Printf("Dashboard showing the %s menu", dash.SelectedDay())

	srv := &http.Server{
		Addr: fmt.Sprintf(":%s", cfg.Port),
		Handler: router.New(cfg, router.Deps{
			Dashboard: dash,
			Editor:    editor.New(dash),
			Staff:     people,
			Hub:       hub,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("ERROR: shutdown: %v", err)
		}
	}()

	log.Printf("Starting server on :%s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	log.Println("Server stopped")
}
