package main

import (
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/probeq/profiledb/pkg/capped"
	"github.com/probeq/profiledb/pkg/config"
	"github.com/probeq/profiledb/pkg/gauges"
	"github.com/probeq/profiledb/pkg/logging"
	"github.com/probeq/profiledb/pkg/metrics"
	"github.com/probeq/profiledb/pkg/scheduler"
	"github.com/probeq/profiledb/pkg/shutdown"
)

func main() {
	configPath := flag.String("config", "profiledb.yml", "path to the config file")
	metricsAddr := flag.String("metrics-addr", ":9187", "listen address for /metrics")
	flag.Parse()

	logger := logging.DefaultLogger()

	svc, err := config.NewService(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := svc.Get()

	clock := scheduler.SystemClock{}
	sched := scheduler.New(logger)
	defer sched.Stop()

	store, err := capped.Open(cfg.Store.Path, cfg.Store.SizeKb, sched, clock, logger)
	if err != nil {
		log.Fatalf("Failed to open capped store: %v", err)
	}
	defer store.Close()
	logger.Info("capped store opened",
		logging.Path(cfg.Store.Path), logging.SizeKb(cfg.Store.SizeKb))

	// config updates resize the ring in place
	svc.OnChange(func(updated *config.Config) {
		if err := store.Resize(updated.Store.SizeKb); err != nil {
			logger.Error("store resize failed",
				logging.SizeKb(updated.Store.SizeKb), logging.Error(err))
		}
	})

	repo := gauges.NewStoreRepository(store)
	collector := gauges.NewCollector(
		func() []gauges.Gauge {
			current := svc.Get()
			defs := make([]gauges.Gauge, 0, len(current.Gauges.Definitions))
			for _, d := range current.Gauges.Definitions {
				defs = append(defs, gauges.Gauge{
					Name:       d.Name,
					ObjectName: d.ObjectName,
					Attributes: d.Attributes,
				})
			}
			return defs
		},
		gauges.RuntimeReader{},
		repo,
		clock,
		time.Duration(cfg.Gauges.NotFoundDelaySeconds)*time.Second,
		logger,
	)
	sched.Schedule("gauge-collection",
		time.Duration(cfg.Gauges.IntervalSeconds)*time.Second, func() {
			if err := collector.Collect(); err != nil {
				logger.Error("gauge collection failed", logging.Error(err))
			}
		})

	startTime := time.Now()
	sched.Schedule("system-metrics", 15*time.Second, func() {
		metrics.Default().UpdateSystemMetrics(startTime)
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Default().Handler())
	go func() {
		logger.Info("metrics listening", logging.String("addr", *metricsAddr))
		if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
			logger.Error("metrics server failed", logging.Error(err))
		}
	}()

	shutdown.Listen()
	logger.Info("profiledb started")
	select {}
}
