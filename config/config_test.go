package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fullConfig = []byte(`
host: 127.0.0.1
port: 9000
enable_gzip: true
consent:
  vendor_requirement: "1010001"
  max_age_days: 390
store:
  type: redis
  redis:
    addr: redis.internal:6379
    password: secret
    db: 2
    key_prefix: consent
  postgres:
    dbname: prefs
    host: db.internal
    port: 5433
    user: tcf
    password: pw
metrics:
  prometheus:
    port: 9100
    timeout_ms: 500
    namespace: ads
    subsystem: consent
`)

func cmpStrings(t *testing.T, key string, a string, b string) {
	t.Helper()
	assert.Equal(t, a, b, "%s: %s != %s", key, a, b)
}

func cmpInts(t *testing.T, key string, a int, b int) {
	t.Helper()
	assert.Equal(t, a, b, "%s: %d != %d", key, a, b)
}

func newDefaultConfig(t *testing.T) (*Configuration, *viper.Viper) {
	v := viper.New()
	SetupViper(v, "")
	v.Set("consent.vendor_requirement", "1")
	cfg, err := New(v)
	assert.NoError(t, err, "Setting up config should work but it doesn't")
	return cfg, v
}

func TestDefaults(t *testing.T) {
	cfg, _ := newDefaultConfig(t)

	cmpStrings(t, "host", cfg.Host, "")
	cmpInts(t, "port", cfg.Port, 8000)
	cmpInts(t, "consent.max_age_days", cfg.Consent.MaxAgeDays, 365)
	cmpStrings(t, "store.type", string(cfg.Store.Type), "memory")
	cmpStrings(t, "store.redis.key_prefix", cfg.Store.Redis.KeyPrefix, "tcf")
	cmpStrings(t, "store.postgres.sslmode", cfg.Store.Postgres.SSLMode, "disable")
	cmpStrings(t, "metrics.prometheus.namespace", cfg.Metrics.Prometheus.Namespace, "tcf")
	cmpStrings(t, "metrics.prometheus.subsystem", cfg.Metrics.Prometheus.Subsystem, "adgate")
	cmpInts(t, "metrics.prometheus.port", cfg.Metrics.Prometheus.Port, 0)
	assert.Equal(t, 10*time.Second, cfg.Metrics.Prometheus.Timeout())
	assert.False(t, cfg.EnableGzip)
}

func TestFullConfig(t *testing.T) {
	v := viper.New()
	SetupViper(v, "")
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBuffer(fullConfig)))

	cfg, err := New(v)
	assert.NoError(t, err, "Setting up config should work but it doesn't")

	cmpStrings(t, "host", cfg.Host, "127.0.0.1")
	cmpInts(t, "port", cfg.Port, 9000)
	cmpStrings(t, "consent.vendor_requirement", cfg.Consent.VendorRequirement, "1010001")
	cmpInts(t, "consent.max_age_days", cfg.Consent.MaxAgeDays, 390)
	cmpStrings(t, "store.type", string(cfg.Store.Type), "redis")
	cmpStrings(t, "store.redis.addr", cfg.Store.Redis.Addr, "redis.internal:6379")
	cmpStrings(t, "store.redis.password", cfg.Store.Redis.Password, "secret")
	cmpInts(t, "store.redis.db", cfg.Store.Redis.DB, 2)
	cmpStrings(t, "store.redis.key_prefix", cfg.Store.Redis.KeyPrefix, "consent")
	cmpStrings(t, "store.postgres.dbname", cfg.Store.Postgres.Database, "prefs")
	cmpInts(t, "store.postgres.port", cfg.Store.Postgres.Port, 5433)
	cmpStrings(t, "metrics.prometheus.namespace", cfg.Metrics.Prometheus.Namespace, "ads")
	cmpStrings(t, "metrics.prometheus.subsystem", cfg.Metrics.Prometheus.Subsystem, "consent")
	cmpInts(t, "metrics.prometheus.port", cfg.Metrics.Prometheus.Port, 9100)
	assert.Equal(t, 500*time.Millisecond, cfg.Metrics.Prometheus.Timeout())
	assert.True(t, cfg.EnableGzip)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("TCF_CONSENT_VENDOR_REQUIREMENT", "0011")
	t.Setenv("TCF_STORE_TYPE", "postgres")
	t.Setenv("TCF_STORE_POSTGRES_DBNAME", "prefs")

	v := viper.New()
	SetupViper(v, "")
	cfg, err := New(v)

	assert.NoError(t, err)
	cmpStrings(t, "consent.vendor_requirement", cfg.Consent.VendorRequirement, "0011")
	cmpStrings(t, "store.type", string(cfg.Store.Type), "postgres")
	cmpStrings(t, "store.postgres.dbname", cfg.Store.Postgres.Database, "prefs")
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		description string
		modify      func(cfg *Configuration)
		wantErrors  []string
	}{
		{
			description: "valid defaults",
			modify:      func(cfg *Configuration) {},
		},
		{
			description: "missing vendor requirement",
			modify:      func(cfg *Configuration) { cfg.Consent.VendorRequirement = "" },
			wantErrors:  []string{"consent.vendor_requirement is required and must be specified"},
		},
		{
			description: "placeholder vendor requirement",
			modify:      func(cfg *Configuration) { cfg.Consent.VendorRequirement = "TODO" },
			wantErrors:  []string{`consent.vendor_requirement must only contain 0 and 1. Got "TODO"`},
		},
		{
			description: "zero max age",
			modify:      func(cfg *Configuration) { cfg.Consent.MaxAgeDays = 0 },
		},
		{
			description: "negative max age",
			modify:      func(cfg *Configuration) { cfg.Consent.MaxAgeDays = -1 },
			wantErrors:  []string{"consent.max_age_days must not be negative. Got -1"},
		},
		{
			description: "port out of range",
			modify:      func(cfg *Configuration) { cfg.Port = 70000 },
			wantErrors:  []string{"port must be in the range [1, 65535]. Got 70000"},
		},
		{
			description: "metrics port clashes with main port",
			modify:      func(cfg *Configuration) { cfg.Metrics.Prometheus.Port = cfg.Port },
			wantErrors:  []string{"metrics.prometheus.port must differ from port. Got 8000"},
		},
		{
			description: "unknown store type",
			modify:      func(cfg *Configuration) { cfg.Store.Type = "sqlite" },
			wantErrors:  []string{`store.type must be one of memory, redis or postgres. Got "sqlite"`},
		},
		{
			description: "redis without address",
			modify:      func(cfg *Configuration) { cfg.Store.Type = StoreTypeRedis },
			wantErrors:  []string{"store.redis.addr is required when store.type is redis"},
		},
		{
			description: "postgres without database",
			modify:      func(cfg *Configuration) { cfg.Store.Type = StoreTypePostgres },
			wantErrors:  []string{"store.postgres.dbname is required when store.type is postgres"},
		},
		{
			description: "several errors",
			modify: func(cfg *Configuration) {
				cfg.Consent.VendorRequirement = ""
				cfg.Consent.MaxAgeDays = -5
			},
			wantErrors: []string{
				"consent.vendor_requirement is required and must be specified",
				"consent.max_age_days must not be negative. Got -5",
			},
		},
	}

	for _, test := range tests {
		cfg, _ := newDefaultConfig(t)
		test.modify(cfg)

		errs := cfg.validate()

		var got []string
		for _, err := range errs {
			got = append(got, err.Error())
		}
		assert.Equal(t, test.wantErrors, got, test.description)
	}
}

func TestNewReturnsAggregateErrors(t *testing.T) {
	v := viper.New()
	SetupViper(v, "")

	_, err := New(v)

	assert.EqualError(t, err, "validation errors (1 error):\n  1: consent.vendor_requirement is required and must be specified\n")
}

func TestPostgresConnString(t *testing.T) {
	tests := []struct {
		description string
		cfg         PostgresConnection
		want        string
	}{
		{
			description: "empty",
			cfg:         PostgresConnection{},
			want:        "sslmode=disable",
		},
		{
			description: "full",
			cfg: PostgresConnection{
				Database: "prefs",
				Host:     "db.internal",
				Port:     5433,
				Username: "tcf",
				Password: "pw",
				SSLMode:  "require",
			},
			want: "host=db.internal port=5433 user=tcf password=pw dbname=prefs sslmode=require",
		},
	}

	for _, test := range tests {
		assert.Equal(t, test.want, test.cfg.ConnString(), test.description)
	}
}
