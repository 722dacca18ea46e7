// Package app wires the estimator core to its shells: settings store, HTTP
// API, MQTT publisher and metric sinks.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/lbarthe/socwatch/api/estimate"
	"github.com/lbarthe/socwatch/config"
	coremetrics "github.com/lbarthe/socwatch/core/metrics"
	"github.com/lbarthe/socwatch/core/settings"
	"github.com/lbarthe/socwatch/core/state"
	"github.com/lbarthe/socwatch/infra/logger"
	"github.com/lbarthe/socwatch/infra/metrics"
	"github.com/lbarthe/socwatch/infra/mqtt"
	"github.com/lbarthe/socwatch/infra/store"
	"github.com/lbarthe/socwatch/internal/eventbus"
)

// Service orchestrates the state store and its collaborators.
type Service struct {
	State *state.Store

	cfg       *config.Config
	bus       *eventbus.Bus[state.Update]
	persist   settings.Store
	sqlite    *store.SQLiteStore
	publisher *mqtt.Publisher
	handler   http.Handler
	log       logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	var persist settings.Store
	var sqlite *store.SQLiteStore
	switch cfg.Store.Backend {
	case "memory":
		persist = store.NewMemoryStore()
	default:
		st, err := store.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			// Persistence failures never take the estimator down; the
			// session runs on in-memory defaults instead.
			logg.Errorf("open settings store: %v", err)
		} else {
			persist = st
			sqlite = st
		}
	}

	var sinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sink := metrics.NewInfluxSinkWithFallback(
			cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken,
			cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket)
		sinks = append(sinks, sink)
	}
	var sink coremetrics.Sink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = coremetrics.NewMultiSink(sinks...)
	}

	bus := eventbus.New[state.Update]()
	st := state.New(bus, persist, sink, logg)

	var publisher *mqtt.Publisher
	if cfg.MQTT.Enabled {
		pub, err := mqtt.NewPublisher(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		publisher = pub
	}

	router := estimate.NewRouter(st, logg)
	var handler http.Handler = router
	if len(cfg.HTTP.AllowedOrigins) > 0 {
		handler = cors.New(cors.Options{
			AllowedOrigins: cfg.HTTP.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost},
			AllowedHeaders: []string{"Content-Type"},
		}).Handler(router)
	}

	return &Service{
		State:     st,
		cfg:       cfg,
		bus:       bus,
		persist:   persist,
		sqlite:    sqlite,
		publisher: publisher,
		handler:   handler,
		log:       logg,
	}, nil
}

// Run starts the service and blocks until the context is cancelled. The API
// serves estimates from in-memory defaults immediately; persisted settings
// are folded in as soon as the load resolves.
func (s *Service) Run(ctx context.Context) error {
	go s.State.ApplySettings(ctx)

	if s.publisher != nil {
		sub := s.bus.Subscribe()
		go func() {
			for up := range sub {
				if err := s.publisher.PublishUpdate(up); err != nil {
					s.log.Warnf("publish estimate: %v", err)
				}
			}
		}()
	}

	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	srv := &http.Server{Addr: s.cfg.HTTP.Addr, Handler: s.handler}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("http shutdown: %v", err)
		}
	}()
	s.log.Infof("listening on %s", s.cfg.HTTP.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if err := s.State.Close(); err != nil {
		return err
	}
	if s.publisher != nil {
		s.publisher.Close()
	}
	s.bus.Close()
	if s.sqlite != nil {
		return s.sqlite.Close()
	}
	return nil
}
