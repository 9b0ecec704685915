package config

import (
	"strings"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Cache     CacheConfig     `yaml:"cache"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Importer  ImporterConfig  `yaml:"importer"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"PORT"                    env-default:"4002"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL settings. An empty DSN serves listings
// from the embedded catalog only.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"PG_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"2"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"30m"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"5m"`
	// Backend chooses who answers listing searches: "memory" or "postgres".
	Backend     string `yaml:"backend"      env:"LISTINGS_BACKEND"  env-default:"memory"`
	SeedOnStart bool   `yaml:"seed_on_start" env:"DATABASE_SEED"    env-default:"false"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"     env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db"       env:"REDIS_DB" env-default:"0"`
}

func (r RedisConfig) Enabled() bool { return r.Addr != "" }

type CacheConfig struct {
	TTL             time.Duration `yaml:"ttl"              env:"CACHE_TTL"              env-default:"1h"`
	StaleAfter      time.Duration `yaml:"stale_after"      env:"CACHE_STALE_AFTER"      env-default:"5m"`
	RefreshWorkers  int           `yaml:"refresh_workers"  env:"CACHE_REFRESH_WORKERS"  env-default:"2"`
	RefreshCapacity int           `yaml:"refresh_capacity" env:"CACHE_REFRESH_CAPACITY" env-default:"256"`
	IndexReload     time.Duration `yaml:"index_reload"     env:"INDEX_RELOAD_INTERVAL"  env-default:"5m"`
	FavoritesTTL    time.Duration `yaml:"favorites_ttl"    env:"FAVORITES_TTL"          env-default:"720h"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"http://localhost:5173"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Content-Type,X-Session-ID"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

type RateLimitConfig struct {
	Requests int           `yaml:"requests" env:"RATE_LIMIT_REQUESTS" env-default:"100"`
	Window   time.Duration `yaml:"window"   env:"RATE_LIMIT_WINDOW"   env-default:"1m"`
}

// ImporterConfig drives the partner feed importer. No feeds, no importer.
type ImporterConfig struct {
	FeedsRaw       string        `yaml:"feeds"            env:"IMPORT_FEEDS"`
	Token          string        `yaml:"token"            env:"IMPORT_TOKEN"`
	Provider       string        `yaml:"provider"         env:"IMPORT_PROVIDER"         env-default:"partner-feed"`
	Interval       time.Duration `yaml:"interval"         env:"IMPORT_INTERVAL"         env-default:"6h"`
	PageSize       int           `yaml:"page_size"        env:"IMPORT_PAGE_SIZE"        env-default:"50"`
	MaxPages       int           `yaml:"max_pages"        env:"IMPORT_MAX_PAGES"        env-default:"5"`
	Pause          time.Duration `yaml:"pause"            env:"IMPORT_PAUSE"            env-default:"1500ms"`
	RequestTimeout time.Duration `yaml:"request_timeout"  env:"IMPORT_REQUEST_TIMEOUT"  env-default:"12s"`
	RequestsPerSec float64       `yaml:"requests_per_sec" env:"IMPORT_REQUESTS_PER_SEC" env-default:"2"`
	// InServer runs the importer inside the API process instead of estatectl.
	InServer bool `yaml:"in_server" env:"IMPORT_IN_SERVER" env-default:"false"`
}

// Feeds splits the configured feed list on commas, semicolons and newlines.
func (c ImporterConfig) Feeds() []string {
	return SplitList(c.FeedsRaw)
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

func SplitList(v string) []string {
	if v == "" {
		return nil
	}
	fields := strings.FieldsFunc(v, func(r rune) bool {
		switch r {
		case ',', ';', '\n', '\r', '\t':
			return true
		default:
			return false
		}
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
