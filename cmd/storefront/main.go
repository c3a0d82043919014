package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/AbduManaam/F.E-Commerce-sub000/internal/admin"
	"github.com/AbduManaam/F.E-Commerce-sub000/internal/audit"
	"github.com/AbduManaam/F.E-Commerce-sub000/internal/authstate"
	"github.com/AbduManaam/F.E-Commerce-sub000/internal/config"
	"github.com/AbduManaam/F.E-Commerce-sub000/internal/httpserver"
	"github.com/AbduManaam/F.E-Commerce-sub000/internal/shop"
	"github.com/AbduManaam/F.E-Commerce-sub000/pkg/api"
	"github.com/AbduManaam/F.E-Commerce-sub000/pkg/logging"
	"github.com/AbduManaam/F.E-Commerce-sub000/pkg/session"
	"github.com/AbduManaam/F.E-Commerce-sub000/pkg/tokenstore"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel)
	slog.SetDefault(log)

	store, err := tokenstore.Open(cfg.StateDBPath, log)
	if err != nil {
		log.Error("cannot open state db", "path", cfg.StateDBPath, "error", err)
		os.Exit(1)
	}

	bus := session.NewSignal()
	client := api.NewClient(cfg.BackendURL, store, bus, api.WithTimeout(cfg.HTTPTimeout))

	events := audit.New(cfg.KafkaBrokers, log)
	defer events.Close()

	auth := authstate.New(client, store, bus, events)
	defer auth.Close()

	cart := &shop.Cart{Client: client}
	deps := &httpserver.Deps{
		Auth:     auth,
		Catalog:  &shop.Catalog{Client: client},
		Cart:     cart,
		Wishlist: &shop.Wishlist{Client: client, Cart: cart},
		Orders:   &shop.Orders{Client: client, Events: events},
		Admin:    &admin.Service{Client: client},
		Log:      log,
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	httpserver.Register(e, deps)

	// Restore the stored session before user-facing traffic is declared
	// ready; /health/ready stays 503 until this resolves.
	initCtx, cancel := context.WithTimeout(logging.IntoContext(context.Background(), log), 30*time.Second)
	auth.Initialize(initCtx)
	cancel()

	go func() {
		if err := e.Start(cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
			log.Error("server start failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
}
