package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prebid/tcf-adgate/errortypes"
	"github.com/spf13/viper"
)

// Configuration specifies the static application config.
type Configuration struct {
	Host       string  `mapstructure:"host"`
	Port       int     `mapstructure:"port"`
	EnableGzip bool    `mapstructure:"enable_gzip"`
	Consent    Consent `mapstructure:"consent"`
	Store      Store   `mapstructure:"store"`
	Metrics    Metrics `mapstructure:"metrics"`
}

// Consent configures how stored consent is classified and expired.
type Consent struct {
	// VendorRequirement is the IABTCF_VendorConsents value of a known good configuration of
	// this deployment, with '0' at every vendor that does not matter. Run the app once, log the
	// stored vendor string and copy it here; repeat whenever the ad setup changes.
	VendorRequirement string `mapstructure:"vendor_requirement"`
	// MaxAgeDays is the age after which a stored TC string is removed.
	MaxAgeDays int `mapstructure:"max_age_days"`
}

type StoreType string

const (
	StoreTypeMemory   StoreType = "memory"
	StoreTypeRedis    StoreType = "redis"
	StoreTypePostgres StoreType = "postgres"
)

// Store selects and configures the preferences backend.
type Store struct {
	Type     StoreType          `mapstructure:"type"`
	Redis    RedisConnection    `mapstructure:"redis"`
	Postgres PostgresConnection `mapstructure:"postgres"`
}

type RedisConnection struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type PostgresConnection struct {
	Database string `mapstructure:"dbname"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// ConnString returns the lib/pq keyword/value connection string. Empty fields are left out so
// that the driver falls back to its own defaults.
func (cfg PostgresConnection) ConnString() string {
	var b strings.Builder
	if cfg.Host != "" {
		fmt.Fprintf(&b, "host=%s ", cfg.Host)
	}
	if cfg.Port > 0 {
		fmt.Fprintf(&b, "port=%d ", cfg.Port)
	}
	if cfg.Username != "" {
		fmt.Fprintf(&b, "user=%s ", cfg.Username)
	}
	if cfg.Password != "" {
		fmt.Fprintf(&b, "password=%s ", cfg.Password)
	}
	if cfg.Database != "" {
		fmt.Fprintf(&b, "dbname=%s ", cfg.Database)
	}
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	b.WriteString("sslmode=" + sslMode)
	return b.String()
}

type Metrics struct {
	Prometheus PrometheusMetrics `mapstructure:"prometheus"`
}

type PrometheusMetrics struct {
	// Port of a dedicated metrics listener. When 0, /metrics is served by the main router.
	Port             int    `mapstructure:"port"`
	Namespace        string `mapstructure:"namespace"`
	Subsystem        string `mapstructure:"subsystem"`
	TimeoutMillisRaw int    `mapstructure:"timeout_ms"`
}

func (cfg *PrometheusMetrics) Timeout() time.Duration {
	return time.Duration(cfg.TimeoutMillisRaw) * time.Millisecond
}

// New uses viper to get our server configurations.
func New(v *viper.Viper) (*Configuration, error) {
	var c Configuration
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("viper failed to unmarshal app config: %v", err)
	}

	if errs := c.validate(); len(errs) > 0 {
		return &c, errortypes.NewAggregateErrors("validation errors", errs)
	}
	return &c, nil
}

func (cfg *Configuration) validate() []error {
	var errs []error
	if cfg.Port < 1 || cfg.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be in the range [1, 65535]. Got %d", cfg.Port))
	}
	if cfg.Metrics.Prometheus.Port < 0 || cfg.Metrics.Prometheus.Port > 65535 {
		errs = append(errs, fmt.Errorf("metrics.prometheus.port must be in the range [0, 65535]. Got %d", cfg.Metrics.Prometheus.Port))
	} else if cfg.Metrics.Prometheus.Port != 0 && cfg.Metrics.Prometheus.Port == cfg.Port {
		errs = append(errs, fmt.Errorf("metrics.prometheus.port must differ from port. Got %d", cfg.Port))
	}
	errs = cfg.Consent.validate(errs)
	errs = cfg.Store.validate(errs)
	return errs
}

func (cfg *Consent) validate(errs []error) []error {
	if cfg.VendorRequirement == "" {
		errs = append(errs, errors.New("consent.vendor_requirement is required and must be specified"))
	} else if strings.Trim(cfg.VendorRequirement, "01") != "" {
		errs = append(errs, fmt.Errorf("consent.vendor_requirement must only contain 0 and 1. Got %q", cfg.VendorRequirement))
	}
	if cfg.MaxAgeDays < 0 {
		errs = append(errs, fmt.Errorf("consent.max_age_days must not be negative. Got %d", cfg.MaxAgeDays))
	}
	return errs
}

func (cfg *Store) validate(errs []error) []error {
	switch cfg.Type {
	case StoreTypeMemory:
	case StoreTypeRedis:
		if cfg.Redis.Addr == "" {
			errs = append(errs, errors.New("store.redis.addr is required when store.type is redis"))
		}
	case StoreTypePostgres:
		if cfg.Postgres.Database == "" {
			errs = append(errs, errors.New("store.postgres.dbname is required when store.type is postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.type must be one of memory, redis or postgres. Got %q", cfg.Type))
	}
	return errs
}

// SetupViper sets the defaults and the config file and environment lookups. The filename
// is looked up in the working directory and /etc/config; an empty filename skips the file.
func SetupViper(v *viper.Viper, filename string) {
	if filename != "" {
		v.SetConfigName(filename)
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/config")
	}

	v.SetDefault("host", "")
	v.SetDefault("port", 8000)
	v.SetDefault("enable_gzip", false)
	v.SetDefault("consent.vendor_requirement", "")
	v.SetDefault("consent.max_age_days", 365)
	v.SetDefault("store.type", string(StoreTypeMemory))
	v.SetDefault("store.redis.addr", "")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.key_prefix", "tcf")
	v.SetDefault("store.postgres.dbname", "")
	v.SetDefault("store.postgres.host", "")
	v.SetDefault("store.postgres.port", 0)
	v.SetDefault("store.postgres.user", "")
	v.SetDefault("store.postgres.password", "")
	v.SetDefault("store.postgres.sslmode", "disable")
	v.SetDefault("metrics.prometheus.port", 0)
	v.SetDefault("metrics.prometheus.timeout_ms", 10000)
	v.SetDefault("metrics.prometheus.namespace", "tcf")
	v.SetDefault("metrics.prometheus.subsystem", "adgate")

	v.SetEnvPrefix("TCF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if filename != "" {
		v.ReadInConfig()
	}
}
