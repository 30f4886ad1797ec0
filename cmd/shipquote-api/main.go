// README: Entry point; loads config, loads static data, wires services, starts HTTP server.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"shipquote/data"
	"shipquote/internal/config"
	httptransport "shipquote/internal/http"
	"shipquote/internal/infra"
	"shipquote/internal/modules/quote"
	"shipquote/internal/modules/tariff"
	"shipquote/internal/modules/zone"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher := infra.NewSourceFetcher(data.FS, cfg.Load.Timeout)
	directory := zone.NewDirectory(fetcher)

	var presetStore tariff.PresetStore
	if cfg.DB.DSN != "" {
		dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			log.Fatal(err)
		}
		defer dbPool.Close()
		presetStore = tariff.NewStore(dbPool)
	}
	model := tariff.NewModel(fetcher, presetStore)
	model.SetConfidencePct(cfg.Tariff.ConfidencePct)

	loadSources(ctx, cfg, directory, model)

	var mirror quote.Mirror
	if cfg.Redis.Addr != "" {
		redisClient := infra.NewRedis(cfg.Redis.Addr)
		defer redisClient.Close()
		mirror = quote.NewStore(redisClient)
	}
	quoteSvc := quote.NewService(quote.NewEngine(directory, model), mirror)

	handler := httptransport.NewServer(httptransport.ServerDeps{
		Zones:  directory,
		Tariff: model,
		Quotes: quoteSvc,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler.Routes()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Printf("shipquote-api listening on %s", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

// loadSources runs the three static loads concurrently, each under its own
// timeout. Failures are logged by the loaders and never stop startup.
func loadSources(ctx context.Context, cfg config.Config, directory *zone.Directory, model *tariff.Model) {
	var wg sync.WaitGroup
	run := func(load func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			loadCtx, cancel := context.WithTimeout(ctx, cfg.Load.Timeout)
			defer cancel()
			load(loadCtx)
		}()
	}
	run(func(ctx context.Context) { directory.LoadZones(ctx, cfg.Sources.Zones) })
	run(func(ctx context.Context) { directory.LoadDistanceMatrix(ctx, cfg.Sources.Matrix) })
	run(func(ctx context.Context) { model.LoadPresets(ctx, cfg.Sources.Presets) })
	wg.Wait()

	// Stored presets come after the static list, and overrides win over
	// whichever preset was applied.
	model.LoadStoredPresets(ctx)
	if cfg.Tariff.Overrides != "" {
		values, err := url.ParseQuery(cfg.Tariff.Overrides)
		if err == nil {
			err = model.ApplyOverrides(values)
		}
		if err != nil {
			log.Printf("tariff: ignoring overrides %q: %v", cfg.Tariff.Overrides, err)
		}
	}

	zones, matrix := directory.Status()
	log.Printf("loaded %d zones, %d distance pairs, %d presets", zones.Count, matrix.Count, model.Status().Count)
}
