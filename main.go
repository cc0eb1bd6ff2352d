package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/prebid/tcf-adgate/config"
	"github.com/prebid/tcf-adgate/consent"
	"github.com/prebid/tcf-adgate/logger"
	prometheusmetrics "github.com/prebid/tcf-adgate/metrics/prometheus"
	"github.com/prebid/tcf-adgate/prefs"
	"github.com/prebid/tcf-adgate/prefs/memory"
	"github.com/prebid/tcf-adgate/prefs/postgres"
	"github.com/prebid/tcf-adgate/prefs/redisprefs"
	"github.com/prebid/tcf-adgate/router"
	"github.com/prebid/tcf-adgate/server"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

// Rev holds binary revision string and Version the release tag.
// Set manually at build time using:
//
//	go build -ldflags "-X main.Rev=`git rev-parse --short HEAD` -X main.Version=`git describe --tags`"
var (
	Rev     string
	Version string
)

func main() {
	flag.Parse() // required for glog flags and testing package flags

	// A missing .env is fine; the environment and the config file still apply.
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		logger.Fatalf("Configuration could not be loaded or did not pass validation: %v", err)
	}

	if err := serve(cfg); err != nil {
		logger.Fatalf("tcf-adgate failed: %v", err)
	}
}

const configFileName = "tcf"

func loadConfig() (*config.Configuration, error) {
	v := viper.New()
	config.SetupViper(v, configFileName)
	return config.New(v)
}

func serve(cfg *config.Configuration) error {
	store, closeStore, err := newStore(context.Background(), cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()

	m := prometheusmetrics.NewMetrics(cfg.Metrics.Prometheus)
	svc := consent.NewService(store, cfg.Consent, m)
	r := router.New(cfg, svc, m, m.Registry, Version, Rev)

	return server.Listen(cfg, router.NoCache{Handler: router.SupportCORS(r)}, m.Registry, m)
}

// newStore connects the configured preferences backend. The returned func releases it.
func newStore(ctx context.Context, cfg config.Store) (prefs.Store, func(), error) {
	switch cfg.Type {
	case config.StoreTypeMemory:
		return memory.NewStore(), func() {}, nil

	case config.StoreTypeRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("redis %s: %v", cfg.Redis.Addr, err)
		}
		logger.Infof("Using redis preferences store at %s", cfg.Redis.Addr)
		return redisprefs.NewStore(client, cfg.Redis.KeyPrefix), func() { client.Close() }, nil

	case config.StoreTypePostgres:
		db, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		logger.Infof("Using postgres preferences store %s", cfg.Postgres.Database)
		return postgres.NewStore(db), func() { db.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown store.type: %s", cfg.Type)
}
