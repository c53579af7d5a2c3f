package main

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/minhvu/portfolio-hub/adapters/event"
	"github.com/minhvu/portfolio-hub/adapters/persistence"
	documentUC "github.com/minhvu/portfolio-hub/internal/application/usecase/document"
	"github.com/minhvu/portfolio-hub/internal/config"
	"github.com/minhvu/portfolio-hub/internal/domain/portfolio"
	"github.com/minhvu/portfolio-hub/internal/metrics"
	"github.com/minhvu/portfolio-hub/internal/render"
	"github.com/minhvu/portfolio-hub/pkg/logger"
)

// The render worker keeps the fragment cache warm. It re-renders on every
// document change event and on a periodic tick, so a missed event heals
// within one interval.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	appLogger.Info("Starting Portfolio Hub render worker...")

	redisClient, err := persistence.NewRedisClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot connect Redis", err)
	}
	defer redisClient.Close()

	durableStore := persistence.NewRedisLocalStore(redisClient)

	var remoteStore portfolio.RemoteStore
	if cfg.DB.DSN != "" {
		dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
		if err != nil {
			appLogger.Warn("Remote document store unreachable, rendering from local tier", zap.Error(err))
			remoteStore = persistence.NewUnavailableDocumentStore()
		} else {
			defer dbPool.Close()
			remoteStore = persistence.NewPostgresDocumentStore(dbPool, cfg.DB.DocumentID, appLogger)
		}
	} else {
		remoteStore = persistence.NewUnavailableDocumentStore()
	}

	manager := documentUC.NewManager(durableStore, remoteStore, nil, nil, cfg.App.Origin, appLogger)
	if _, err := manager.Load(context.Background()); err != nil {
		appLogger.Fatal("Cannot load portfolio document", err)
	}

	cache := render.NewCache(durableStore)

	ctx := context.Background()

	// Warm the cache before consuming anything.
	refresh(ctx, manager, cache, appLogger)

	events := make(chan portfolio.ChangeEvent)
	if len(cfg.Kafka.Brokers) > 0 {
		consumer := event.NewDocumentEventsReader(cfg, "render-worker-group")
		defer consumer.Close()
		go consume(ctx, consumer, events, appLogger)
	} else {
		appLogger.Warn("No Kafka brokers configured, relying on the refresh tick only")
	}

	ticker := time.NewTicker(cfg.Render.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case ev := <-events:
			appLogger.Info("Document changed, re-rendering",
				zap.String("reason", ev.Reason),
				zap.String("source", ev.Source),
			)
			refresh(ctx, manager, cache, appLogger)
		case <-ticker.C:
			refresh(ctx, manager, cache, appLogger)
		}
	}
}

func consume(ctx context.Context, consumer *kafka.Reader, events chan<- portfolio.ChangeEvent, log logger.Logger) {
	for {
		msg, err := consumer.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("Failed to read message from Kafka", err)
			// A persistent error (broker down, reader closed) must not
			// spin; the refresh tick covers the gap anyway.
			time.Sleep(5 * time.Second)
			continue
		}

		var ev portfolio.ChangeEvent
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			log.Error("Failed to unmarshal change event, skipping", err)
			continue
		}
		events <- ev
	}
}

func refresh(ctx context.Context, manager *documentUC.Manager, cache *render.Cache, log logger.Logger) {
	doc, err := manager.Reload(ctx)
	if err != nil {
		log.Error("Failed to reload document", err)
		return
	}

	fragments, err := render.RenderAll(doc)
	if err != nil {
		log.Error("Failed to render fragments", err)
		return
	}
	if err := cache.PutAll(ctx, fragments); err != nil {
		log.Error("Failed to store rendered fragments", err)
		return
	}

	metrics.RecordRender()
	log.Info("Fragment cache refreshed", zap.Int("sections", len(fragments)))
}
