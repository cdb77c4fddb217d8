package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rathgar/idlebot/internal/config"
	"github.com/rathgar/idlebot/internal/data"
	"github.com/rathgar/idlebot/internal/engine"
	"github.com/rathgar/idlebot/internal/experience"
	"github.com/rathgar/idlebot/internal/guide"
	"github.com/rathgar/idlebot/internal/loot"
	"github.com/rathgar/idlebot/internal/model"
	"github.com/rathgar/idlebot/internal/nav"
	"github.com/rathgar/idlebot/internal/quest"
	"github.com/rathgar/idlebot/internal/server"
	"github.com/rathgar/idlebot/internal/zone"
)

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadServer(os.Getenv("IDLEBOT_CONFIG"))
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	store, err := data.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	book, err := guide.Load(cfg.GuidePath)
	if err != nil {
		return err
	}
	navigator := nav.NewNavigator(book, store)

	char, err := buildCharacter(cfg.Character, navigator)
	if err != nil {
		return err
	}
	logger.Info("character ready",
		"name", char.Name,
		"race", char.Race,
		"class", char.Class,
		"position", fmt.Sprintf("%.1f, %.1f", char.Position.X, char.Position.Y))

	eng := engine.New(engine.Deps{
		Logger:    logger,
		Store:     store,
		Executor:  quest.NewExecutor(store),
		Loot:      loot.NewGenerator(store),
		Navigator: navigator,
		Zones:     zone.NewRegistry(),
		Ledger:    experience.NewLedger(store.ExperienceTable()),
		Character: char,
		Inventory: model.NewInventory(),
	})
	if cfg.Character.Mode == "manual" {
		if err := eng.SetMode(engine.ModeManual); err != nil {
			return err
		}
	}

	srv := server.New(eng, logger)
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", srv.Handler())
	httpSrv := &http.Server{Addr: cfg.Addr(), Handler: mux}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return eng.Run(ctx)
	})
	g.Go(func() error {
		logger.Info("listening", "addr", cfg.Addr())
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// buildCharacter turns the config block into a placed level-1
// character, generating a name when none is set.
func buildCharacter(cc config.CharacterConfig, navigator *nav.Navigator) (*model.Character, error) {
	if !model.ClassAllowed(cc.Race, cc.Class) {
		return nil, fmt.Errorf("race %s cannot be a %s", cc.Race, cc.Class)
	}
	name := cc.Name
	if name == "" {
		name = model.GenerateName(cc.Race)
	}
	pos, err := navigator.StartPosition(cc.Race, cc.Class)
	if err != nil {
		return nil, err
	}
	return &model.Character{
		Name:     name,
		Race:     cc.Race,
		Class:    cc.Class,
		Level:    1,
		Position: *pos,
	}, nil
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
