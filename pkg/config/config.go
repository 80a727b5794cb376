package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	EnvPrefix = "ORDERLY"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv = "ORDERLY_APP_ENV"
	EnvDBDSN  = "ORDERLY_DB_DSN"
	EnvDBHost = "ORDERLY_DB_HOST"
	EnvDBUser = "ORDERLY_DB_USER"
	EnvDBName = "ORDERLY_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Recon        ReconConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Recon.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ORDERLY_APP_ENV" required:"true"`
	LogLevel     string `envconfig:"ORDERLY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ORDERLY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"ORDERLY_SERVICE_KIND" default:"reconciler"`
}

type DBConfig struct {
	DSN    string `envconfig:"ORDERLY_DB_DSN"`
	Driver string `envconfig:"ORDERLY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ORDERLY_DB_HOST"`
	LegacyPort     int    `envconfig:"ORDERLY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ORDERLY_DB_USER"`
	LegacyPassword string `envconfig:"ORDERLY_DB_PASSWORD"`
	LegacyName     string `envconfig:"ORDERLY_DB_NAME"`
	LegacySSLMode  string `envconfig:"ORDERLY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ORDERLY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ORDERLY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ORDERLY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ORDERLY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ORDERLY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ORDERLY_REDIS_ADDR"`
	Password     string        `envconfig:"ORDERLY_REDIS_PASSWORD"`
	DB           int           `envconfig:"ORDERLY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ORDERLY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ORDERLY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ORDERLY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ORDERLY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ORDERLY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// ReconConfig holds the tunables for the reconciliation engine.
type ReconConfig struct {
	PriceToleranceCents int64  `envconfig:"ORDERLY_RECON_PRICE_TOLERANCE_CENTS" default:"0"`
	QuantityTolerance   string `envconfig:"ORDERLY_RECON_QUANTITY_TOLERANCE" default:"0"`

	MediumSeverityCents int64 `envconfig:"ORDERLY_RECON_MEDIUM_SEVERITY_CENTS" default:"2500"`
	HighSeverityCents   int64 `envconfig:"ORDERLY_RECON_HIGH_SEVERITY_CENTS" default:"10000"`

	LockTTL     time.Duration `envconfig:"ORDERLY_RECON_LOCK_TTL" default:"5m"`
	LoadTimeout time.Duration `envconfig:"ORDERLY_RECON_LOAD_TIMEOUT" default:"30s"`
}

func (r ReconConfig) validate() error {
	if r.PriceToleranceCents < 0 {
		return fmt.Errorf("price tolerance must not be negative")
	}
	qty, err := decimal.NewFromString(r.QuantityTolerance)
	if err != nil {
		return fmt.Errorf("parsing quantity tolerance %q: %w", r.QuantityTolerance, err)
	}
	if qty.IsNegative() {
		return fmt.Errorf("quantity tolerance must not be negative")
	}
	if r.MediumSeverityCents < 0 || r.HighSeverityCents < r.MediumSeverityCents {
		return fmt.Errorf("severity thresholds must be ordered: 0 <= medium <= high")
	}
	return nil
}

// QuantityToleranceDecimal returns the parsed quantity tolerance. Load
// validates the raw value, so parse failures here fall back to zero.
func (r ReconConfig) QuantityToleranceDecimal() decimal.Decimal {
	qty, err := decimal.NewFromString(r.QuantityTolerance)
	if err != nil {
		return decimal.Zero
	}
	return qty
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ORDERLY_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
